package mock

import (
	"context"
	"sync"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// MockClauseJudge is a test double for ai.ClauseJudge.
type MockClauseJudge struct {
	// JudgeClauseFunc is called by JudgeClause if set.
	// If nil, every clause is judged valid.
	JudgeClauseFunc func(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error)

	mu        sync.Mutex
	callCount int
	contexts  []string
}

var _ ai.ClauseJudge = (*MockClauseJudge)(nil)

// NewMockClauseJudge creates a judge that accepts everything.
func NewMockClauseJudge() *MockClauseJudge {
	return &MockClauseJudge{}
}

// NewMockClauseJudgeWithVerdicts creates a judge that looks verdicts up by
// clause text; clauses not in the map are judged invalid.
func NewMockClauseJudgeWithVerdicts(statuses map[string]core.VerdictStatus) *MockClauseJudge {
	return &MockClauseJudge{
		JudgeClauseFunc: func(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error) {
			status, ok := statuses[clauseText]
			if !ok {
				status = core.VerdictInvalid
			}
			return core.Verdict{Clause: clauseText, Status: status, Message: "mock verdict"}, nil
		},
	}
}

// JudgeClause records the call and delegates to JudgeClauseFunc or the default.
func (m *MockClauseJudge) JudgeClause(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error) {
	m.mu.Lock()
	m.callCount++
	m.contexts = append(m.contexts, retrievedContext)
	fn := m.JudgeClauseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clauseText, retrievedContext)
	}
	return core.Verdict{Clause: clauseText, Status: core.VerdictValid, Message: "mock verdict"}, nil
}

// CallCount returns the number of JudgeClause calls.
func (m *MockClauseJudge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Contexts returns the retrieved context passed to each call.
func (m *MockClauseJudge) Contexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.contexts...)
}

// Reset clears the call history and any injected behavior.
func (m *MockClauseJudge) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.contexts = nil
	m.JudgeClauseFunc = nil
}
