// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.ClauseExtractor,
// ai.ClauseJudge, ai.AnswerSynthesizer and ai.AIProvider for use in unit
// tests. The mocks let pipeline tests run without a language model and are
// safe for concurrent use by the ingestion worker pool.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	clauses, err := provider.ClauseExtractor().ExtractClauses(ctx, "Badges are worn.", core.Areas, "")
//
//	// Custom behavior
//	judge := mock.NewMockClauseJudge()
//	judge.JudgeClauseFunc = func(ctx context.Context, clause, context string) (core.Verdict, error) {
//	    return core.Verdict{Clause: clause, Status: core.VerdictInvalid}, nil
//	}
//
//	// Check call counts
//	count := judge.CallCount()
//
// # Default Behavior
//
// The mock implementations provide deterministic defaults:
//
//   - MockClauseExtractor: One compliance clause per non-blank line, relevance decreasing from 1.0
//   - MockClauseJudge: Every clause is valid
//   - MockAnswerSynthesizer: Echoes the evidence followed by the document label
//   - MockProvider: Aggregates the three mocks
package mock
