package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/core"
)

func TestMockClauseExtractor_Default(t *testing.T) {
	m := NewMockClauseExtractor()

	clauses, err := m.ExtractClauses(context.Background(), "First rule.\n\n  Second rule.  \n", core.Areas, "")
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, "First rule.", clauses[0].Text)
	assert.Equal(t, "Second rule.", clauses[1].Text)
	assert.Equal(t, core.AreaCompliance, clauses[0].Area)
	assert.Greater(t, clauses[0].Relevance, clauses[1].Relevance)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockClauseExtractor_CustomAndReset(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockClauseExtractor()
	m.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		return nil, boom
	}

	_, err := m.ExtractClauses(context.Background(), "x", nil, "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"x"}, m.Sections())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Nil(t, m.ExtractClausesFunc)
	assert.Empty(t, m.Sections())
}

func TestMockClauseJudge(t *testing.T) {
	m := NewMockClauseJudge()
	v, err := m.JudgeClause(context.Background(), "c", "ctx")
	require.NoError(t, err)
	assert.True(t, v.Valid())
	assert.Equal(t, []string{"ctx"}, m.Contexts())

	m = NewMockClauseJudgeWithVerdicts(map[string]core.VerdictStatus{"good": core.VerdictValid})
	v, _ = m.JudgeClause(context.Background(), "good", "")
	assert.True(t, v.Valid())
	v, _ = m.JudgeClause(context.Background(), "other", "")
	assert.False(t, v.Valid())
	assert.Equal(t, 2, m.CallCount())
}

func TestMockAnswerSynthesizer(t *testing.T) {
	m := NewMockAnswerSynthesizer()
	answer, err := m.SynthesizeAnswer(context.Background(), "q", "- a", "policy")
	require.NoError(t, err)
	assert.Equal(t, "- a\n\nSource: policy", answer)
	assert.Equal(t, "- a", m.LastEvidence())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.LastEvidence())
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()
	defer provider.Close()

	mp, ok := provider.(*MockProvider)
	require.True(t, ok)
	assert.Same(t, mp.GetMockExtractor(), provider.ClauseExtractor())
	assert.Same(t, mp.GetMockJudge(), provider.ClauseJudge())
	assert.Same(t, mp.GetMockSynthesizer(), provider.AnswerSynthesizer())
}

func TestMockClauseJudge_ConcurrentCalls(t *testing.T) {
	m := NewMockClauseJudge()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.JudgeClause(context.Background(), "c", "")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.CallCount())
}
