package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/knowledge"
)

// Gate judges ranked clauses against context retrieved for a query and keeps
// the valid ones.
type Gate struct {
	retriever       knowledge.Retriever
	judge           ai.ClauseJudge
	limit           int
	minScore        float64
	contextPassages int
	logger          *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateRetrievalLimit sets how many passages are requested. Default 2.
func WithGateRetrievalLimit(limit int) GateOption {
	return func(g *Gate) {
		if limit > 0 {
			g.limit = limit
		}
	}
}

// WithGateMinScore sets the minimum passage score. Default 0.4.
func WithGateMinScore(min float64) GateOption {
	return func(g *Gate) {
		g.minScore = min
	}
}

// WithGateContextPassages sets how many surviving passages form the
// supporting text. Default 1.
func WithGateContextPassages(n int) GateOption {
	return func(g *Gate) {
		if n > 0 {
			g.contextPassages = n
		}
	}
}

// WithGateLogger sets the gate logger.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates a validation gate.
func NewGate(retriever knowledge.Retriever, judge ai.ClauseJudge, opts ...GateOption) (*Gate, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if judge == nil {
		return nil, ErrJudgeRequired
	}
	g := &Gate{
		retriever:       retriever,
		judge:           judge,
		limit:           knowledge.DefaultLimit,
		minScore:        knowledge.DefaultMinScore,
		contextPassages: 1,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gate")
	return g, nil
}

// Validate judges every clause, in order, against the supporting text
// retrieved for query. A judge failure ends validation.
func (g *Gate) Validate(ctx context.Context, clauses []core.Clause, query string) (*core.Evidence, error) {
	if len(clauses) == 0 {
		return nil, core.ErrNoClausesToValidate
	}
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrMissingQuery
	}

	passages, err := g.retriever.Retrieve(ctx, query, g.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieval: %w", core.ErrCollaborator, err)
	}
	supporting := knowledge.JoinTexts(knowledge.FilterByScore(passages, g.minScore), g.contextPassages)
	if supporting == "" {
		return nil, core.ErrNoRetrievedContext
	}

	kept := make([]core.Clause, 0, len(clauses))
	verdicts := make([]core.Verdict, 0, len(clauses))
	for _, c := range clauses {
		verdict, err := g.judge.JudgeClause(ctx, c.Text, supporting)
		if err != nil {
			return nil, fmt.Errorf("%w: judging clause %q: %w", core.ErrCollaborator, c.Text, err)
		}
		verdicts = append(verdicts, verdict)
		if verdict.Valid() {
			kept = append(kept, c)
			continue
		}
		g.logger.Debug("clause rejected", "clause", c.Text, "status", verdict.Status, "message", verdict.Message)
	}

	if len(kept) == 0 {
		return nil, core.ErrNoValidClauses
	}
	g.logger.Debug("validated clauses", "judged", len(clauses), "kept", len(kept))
	return core.NewEvidence(kept, verdicts), nil
}
