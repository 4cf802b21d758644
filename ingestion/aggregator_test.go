package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/ai/mock"
	"github.com/poiesic/clausewise/core"
)

func newTestAggregator(t *testing.T, extractor *mock.MockClauseExtractor, size int) *Aggregator {
	t.Helper()
	pool, err := ants.NewPool(size)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	a, err := NewAggregator(extractor, pool, nil)
	require.NoError(t, err)
	return a
}

func TestNewAggregator_Required(t *testing.T) {
	_, err := NewAggregator(nil, nil, nil)
	assert.ErrorIs(t, err, ErrExtractorRequired)
	_, err = NewAggregator(mock.NewMockClauseExtractor(), nil, nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestAggregator_RankingIndependentOfCompletionOrder(t *testing.T) {
	extractor := mock.NewMockClauseExtractor()
	extractor.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		// earlier sections finish last
		switch sectionText {
		case "first":
			time.Sleep(30 * time.Millisecond)
		case "second":
			time.Sleep(10 * time.Millisecond)
		}
		return []core.Clause{
			{Text: sectionText + " a", Area: core.AreaLegal, Relevance: 0.5},
			{Text: sectionText + " b", Area: core.AreaLegal, Relevance: 0.5},
		}, nil
	}
	a := newTestAggregator(t, extractor, 3)

	sections := []core.Section{
		{Title: "One", Content: "first"},
		{Title: "Two", Content: "second"},
		{Title: "Three", Content: "third"},
	}
	ranked, err := a.ExtractAndRank(context.Background(), sections, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"first a", "first b", "second a", "second b", "third a", "third b"}, clauseTexts(ranked))
	assert.Equal(t, "One", ranked[0].SectionTitle)
	assert.Equal(t, "Three", ranked[5].SectionTitle)
}

func TestAggregator_SkipsBlankAndFailingSections(t *testing.T) {
	boom := errors.New("boom")
	extractor := mock.NewMockClauseExtractor()
	extractor.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		assert.Equal(t, core.Areas, areas)
		assert.Equal(t, "security audit", contextHint)
		switch sectionText {
		case "fails":
			return nil, boom
		case "empty":
			return nil, nil
		}
		return []core.Clause{
			{Text: "kept", Area: core.AreaSecurity, Relevance: 0.8},
			{Text: "bad area", Area: core.Area("perks"), Relevance: 0.9},
			{Text: "bad relevance", Area: core.AreaSecurity, Relevance: 1.5},
			{Text: "  ", Area: core.AreaSecurity, Relevance: 0.9},
		}, nil
	}
	a := newTestAggregator(t, extractor, 2)

	sections := []core.Section{
		{Title: "Blank", Content: " \n\t"},
		{Title: "Fails", Content: "fails"},
		{Title: "Empty", Content: "empty"},
		{Title: "", Content: "good\n"},
	}
	ranked, err := a.ExtractAndRank(context.Background(), sections, "security audit")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "kept", ranked[0].Text)
	assert.Equal(t, untitledSection, ranked[0].SectionTitle)
	assert.Equal(t, 3, extractor.CallCount(), "blank section is not sent")
}

// sharedClauses is handed out unchanged for every section.
var sharedClauses = []core.Clause{
	{Text: "Access is logged.", Area: core.AreaSecurity, Relevance: 0.9},
}

func TestAggregator_TitlesDoNotLeakBetweenSections(t *testing.T) {
	extractor := mock.NewMockClauseExtractor()
	extractor.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		return sharedClauses, nil
	}
	a := newTestAggregator(t, extractor, 2)

	sections := []core.Section{
		{Title: "Scope", Content: "scope body"},
		{Title: "Commitments", Content: "commitments body"},
	}
	ranked, err := a.ExtractAndRank(context.Background(), sections, "")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Scope", ranked[0].SectionTitle)
	assert.Equal(t, "Commitments", ranked[1].SectionTitle)
	assert.Empty(t, sharedClauses[0].SectionTitle, "extractor's slice must not be modified")
}

func TestAggregator_TopTen(t *testing.T) {
	extractor := mock.NewMockClauseExtractor()
	extractor.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		var clauses []core.Clause
		for i := range 8 {
			clauses = append(clauses, core.Clause{
				Text:      sectionText + strings.Repeat("+", i),
				Area:      core.AreaFinance,
				Relevance: float64(i) / 10,
			})
		}
		return clauses, nil
	}
	a := newTestAggregator(t, extractor, 2)

	ranked, err := a.ExtractAndRank(context.Background(), []core.Section{{Content: "x"}, {Content: "y"}}, "")
	require.NoError(t, err)
	require.Len(t, ranked, core.MaxRankedClauses)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Relevance, ranked[i].Relevance)
	}
	assert.Equal(t, "x+++++++", ranked[0].Text)
	assert.Equal(t, "y+++++++", ranked[1].Text)
}

func TestAggregator_Empty(t *testing.T) {
	a := newTestAggregator(t, mock.NewMockClauseExtractor(), 1)

	_, err := a.ExtractAndRank(context.Background(), nil, "")
	assert.ErrorIs(t, err, core.ErrNoClauses)

	_, err = a.ExtractAndRank(context.Background(), []core.Section{{Title: "A", Content: "   "}}, "")
	assert.ErrorIs(t, err, core.ErrNoClauses)
}

func TestAggregator_Cancelled(t *testing.T) {
	a := newTestAggregator(t, mock.NewMockClauseExtractor(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ExtractAndRank(ctx, []core.Section{{Content: "a"}}, "")
	assert.ErrorIs(t, err, context.Canceled)
}
