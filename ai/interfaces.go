package ai

import (
	"context"

	"github.com/poiesic/clausewise/core"
)

// ClauseExtractor turns a document section into candidate clauses.
// Implementations must be thread-safe for concurrent use.
type ClauseExtractor interface {
	// ExtractClauses analyzes one section and returns clauses classified into
	// areas, each with a relevance score in [0, 1] relative to contextHint.
	// An empty contextHint means no context was provided.
	// Returns an empty slice if the section yields no clauses.
	ExtractClauses(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error)
}

// ClauseJudge decides whether a clause is supported by retrieved context.
// Implementations must be thread-safe for concurrent use.
type ClauseJudge interface {
	// JudgeClause returns a verdict for clauseText against retrievedContext.
	JudgeClause(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error)
}

// AnswerSynthesizer writes the final answer from validated evidence.
type AnswerSynthesizer interface {
	// SynthesizeAnswer answers question using evidenceText and ends the
	// answer with a reference to documentLabel.
	SynthesizeAnswer(ctx context.Context, question, evidenceText, documentLabel string) (string, error)
}

// AIProvider aggregates the model-backed collaborators for convenient
// initialization and lifecycle management.
type AIProvider interface {
	// ClauseExtractor returns the clause extraction service.
	ClauseExtractor() ClauseExtractor

	// ClauseJudge returns the clause validation service.
	ClauseJudge() ClauseJudge

	// AnswerSynthesizer returns the answer synthesis service.
	AnswerSynthesizer() AnswerSynthesizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
