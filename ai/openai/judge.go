package openai

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// ClauseJudge implements ai.ClauseJudge using OpenAI-compatible chat APIs.
type ClauseJudge struct {
	chat *chat
}

var _ ai.ClauseJudge = (*ClauseJudge)(nil)

// verdict mirrors the JSON verdict requested from the model.
type verdict struct {
	Clause  string `json:"clause"`
	Status  string `json:"status" validate:"required"`
	Message string `json:"message"`
}

func newClauseJudge(config *ai.Config) (*ClauseJudge, error) {
	if config == nil {
		return nil, ai.ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, config.JudgeModel)
	if err != nil {
		return nil, err
	}
	return newClauseJudgeWithModel(client, config), nil
}

func newClauseJudgeWithModel(client llms.Model, config *ai.Config) *ClauseJudge {
	return &ClauseJudge{chat: newChat(client, config, "openai-judge")}
}

// NewClauseJudge creates a clause judge using config.JudgeModel.
func NewClauseJudge(config *ai.Config) (ai.ClauseJudge, error) {
	return newClauseJudge(config)
}

// JudgeClause validates one clause. The returned verdict always names
// clauseText, whatever the model echoed back.
func (j *ClauseJudge) JudgeClause(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error) {
	v, err := generateJSON[verdict](ctx, j.chat, judgeSystemPrompt, buildJudgePrompt(clauseText, retrievedContext))
	if err != nil {
		return core.Verdict{}, err
	}
	return core.Verdict{
		Clause:  clauseText,
		Status:  core.ParseVerdictStatus(v.Status),
		Message: v.Message,
	}, nil
}
