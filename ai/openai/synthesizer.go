package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// AnswerSynthesizer implements ai.AnswerSynthesizer using OpenAI-compatible chat APIs.
type AnswerSynthesizer struct {
	chat *chat
}

var _ ai.AnswerSynthesizer = (*AnswerSynthesizer)(nil)

func newAnswerSynthesizer(config *ai.Config) (*AnswerSynthesizer, error) {
	if config == nil {
		return nil, ai.ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, config.AnswerModel)
	if err != nil {
		return nil, err
	}
	return newAnswerSynthesizerWithModel(client, config), nil
}

func newAnswerSynthesizerWithModel(client llms.Model, config *ai.Config) *AnswerSynthesizer {
	return &AnswerSynthesizer{chat: newChat(client, config, "openai-synthesizer")}
}

// NewAnswerSynthesizer creates an answer synthesizer using config.AnswerModel.
func NewAnswerSynthesizer(config *ai.Config) (ai.AnswerSynthesizer, error) {
	return newAnswerSynthesizer(config)
}

// SynthesizeAnswer writes a plain-text answer.
func (s *AnswerSynthesizer) SynthesizeAnswer(ctx context.Context, question, evidenceText, documentLabel string) (string, error) {
	text, err := s.chat.generate(ctx, answerSystemPrompt, buildAnswerPrompt(question, evidenceText, documentLabel), false)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return "", fmt.Errorf("%w: %w", core.ErrCollaborator, ai.ErrEmptyResponse)
	}
	return answer, nil
}
