package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/ai/mock"
	"github.com/poiesic/clausewise/core"
)

var gateClauses = []core.Clause{
	{Text: "A", Area: core.AreaHR, Relevance: 0.9},
	{Text: "B", Area: core.AreaHR, Relevance: 0.8},
	{Text: "C", Area: core.AreaHR, Relevance: 0.7},
}

func TestNewGate_Required(t *testing.T) {
	_, err := NewGate(nil, mock.NewMockClauseJudge())
	assert.ErrorIs(t, err, ErrRetrieverRequired)
	_, err = NewGate(policyRetriever(), nil)
	assert.ErrorIs(t, err, ErrJudgeRequired)
}

func TestGate_KeepsValidInOrder(t *testing.T) {
	judge := mock.NewMockClauseJudgeWithVerdicts(map[string]core.VerdictStatus{
		"A": core.VerdictValid,
		"B": core.VerdictInvalid,
		"C": core.VerdictValid,
	})
	retriever := policyRetriever()
	g, err := NewGate(retriever, judge)
	require.NoError(t, err)

	evidence, err := g.Validate(context.Background(), gateClauses, "hiring rules")
	require.NoError(t, err)
	assert.Equal(t, "- A\n- C", evidence.Text)
	assert.Equal(t, []string{"A", "C"}, clauseTexts(evidence.Clauses))
	require.Len(t, evidence.Verdicts, 3)
	assert.False(t, evidence.Verdicts[1].Valid())
	assert.Equal(t, []string{"hiring rules"}, retriever.queries)
}

func TestGate_ContextPassages(t *testing.T) {
	retriever := &fakeRetriever{passages: []core.Passage{
		{Text: "one", Score: 0.9},
		{Text: "low", Score: 0.1},
		{Text: "two", Score: 0.5},
	}}
	judge := mock.NewMockClauseJudge()
	g, err := NewGate(retriever, judge, WithGateRetrievalLimit(3), WithGateContextPassages(2))
	require.NoError(t, err)

	_, err = g.Validate(context.Background(), gateClauses[:1], "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"one\n\ntwo"}, judge.Contexts())
}

func TestGate_SkipsBlankTopPassage(t *testing.T) {
	retriever := &fakeRetriever{passages: []core.Passage{
		{Text: "  ", Score: 0.9},
		{Text: "real context", Score: 0.8},
	}}
	judge := mock.NewMockClauseJudge()
	g, err := NewGate(retriever, judge, WithGateContextPassages(1))
	require.NoError(t, err)

	_, err = g.Validate(context.Background(), gateClauses[:1], "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"real context"}, judge.Contexts())
}

func TestGate_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		clauses   []core.Clause
		query     string
		retriever *fakeRetriever
		judge     *mock.MockClauseJudge
		wantErrs  []error
		judged    int
	}{
		{name: "no clauses", query: "q", wantErrs: []error{core.ErrNoClausesToValidate, core.ErrInvalidInput}},
		{name: "blank query", clauses: gateClauses, query: "  ", wantErrs: []error{core.ErrMissingQuery, core.ErrInvalidInput}},
		{
			name: "retriever failure", clauses: gateClauses, query: "q",
			retriever: &fakeRetriever{err: boom},
			wantErrs:  []error{core.ErrCollaborator, boom},
		},
		{
			name: "nothing above min score", clauses: gateClauses, query: "q",
			retriever: &fakeRetriever{passages: []core.Passage{{Text: "weak", Score: 0.39}}},
			wantErrs:  []error{core.ErrNoRetrievedContext},
		},
		{
			name: "blank passage text", clauses: gateClauses, query: "q",
			retriever: &fakeRetriever{passages: []core.Passage{{Text: "  ", Score: 0.9}}},
			wantErrs:  []error{core.ErrNoRetrievedContext},
		},
		{
			name: "all invalid", clauses: gateClauses, query: "q",
			judge:    mock.NewMockClauseJudgeWithVerdicts(nil),
			wantErrs: []error{core.ErrNoValidClauses, core.ErrEmptyResult},
			judged:   3,
		},
		{
			name: "judge failure is terminal", clauses: gateClauses, query: "q",
			judge: &mock.MockClauseJudge{JudgeClauseFunc: func(ctx context.Context, clauseText, retrievedContext string) (core.Verdict, error) {
				return core.Verdict{}, boom
			}},
			wantErrs: []error{core.ErrCollaborator, boom},
			judged:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retriever := tt.retriever
			if retriever == nil {
				retriever = policyRetriever()
			}
			judge := tt.judge
			if judge == nil {
				judge = mock.NewMockClauseJudge()
			}
			g, err := NewGate(retriever, judge)
			require.NoError(t, err)

			evidence, err := g.Validate(context.Background(), tt.clauses, tt.query)
			assert.Nil(t, evidence)
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			assert.Equal(t, tt.judged, judge.CallCount())
		})
	}
}
