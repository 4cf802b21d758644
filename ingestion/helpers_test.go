package ingestion

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/ai/mock"
	"github.com/poiesic/clausewise/convert"
	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/storage"
	"github.com/poiesic/clausewise/storage/badger"
)

const policyMarkdown = "## Access\nPasswords rotate every 90 days.\n## Visitors\nVisitors sign in at reception.\n## Devices\nLaptops are encrypted.\n"

// relevances drives the extractor in the policy scenario.
var relevances = map[string]float64{
	"Passwords rotate every 90 days.": 0.9,
	"Visitors sign in at reception.":  0.4,
	"Laptops are encrypted.":          0.7,
}

type fakeRawSource struct {
	mu    sync.Mutex
	docs  map[string]*storage.RawDocument
	calls int
}

func newFakeRawSource() *fakeRawSource {
	return &fakeRawSource{docs: map[string]*storage.RawDocument{
		"policy": {Name: "raw/policy.pdf", Data: []byte("%PDF-1.4 policy")},
	}}
}

func (f *fakeRawSource) FetchRaw(ctx context.Context, base string) (*storage.RawDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	doc, ok := f.docs[base]
	if !ok {
		return nil, fmt.Errorf("%s: %w", base, storage.ErrNotFound)
	}
	return &storage.RawDocument{Name: doc.Name, Data: slices.Clone(doc.Data)}, nil
}

func (f *fakeRawSource) set(base string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[base] = &storage.RawDocument{Name: "raw/" + base + ".pdf", Data: data}
}

type fakeConverter struct {
	mu       sync.Mutex
	markdown string
	err      error
	calls    int
}

func (f *fakeConverter) Convert(ctx context.Context, name string, raw []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.markdown, nil
}

func (f *fakeConverter) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var _ convert.Converter = (*fakeConverter)(nil)

type fakeRetriever struct {
	mu       sync.Mutex
	passages []core.Passage
	err      error
	queries  []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int) ([]core.Passage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.passages) > limit {
		return slices.Clone(f.passages[:limit]), nil
	}
	return slices.Clone(f.passages), nil
}

func policyRetriever() *fakeRetriever {
	return &fakeRetriever{passages: []core.Passage{
		{Source: "s3://kb/docs/policy.pdf", Text: "Security policy: passwords, visitors and devices.", Score: 0.8},
		{Source: "s3://kb/docs/other.pdf", Text: "Unrelated.", Score: 0.2},
	}}
}

// relevanceExtractor returns one compliance clause per line with the
// relevance from relevances.
func relevanceExtractor() *mock.MockClauseExtractor {
	m := mock.NewMockClauseExtractor()
	m.ExtractClausesFunc = func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
		var clauses []core.Clause
		for _, line := range strings.Split(sectionText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			clauses = append(clauses, core.Clause{Text: line, Area: core.AreaSecurity, Relevance: relevances[line]})
		}
		return clauses, nil
	}
	return m
}

type fixture struct {
	repo      storage.ArtifactRepository
	raw       *fakeRawSource
	converter *fakeConverter
	retriever *fakeRetriever
	extractor *mock.MockClauseExtractor
	judge     *mock.MockClauseJudge
	synth     *mock.MockAnswerSynthesizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, backend, err := badger.NewMemoryArtifactRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return &fixture{
		repo:      repo,
		raw:       newFakeRawSource(),
		converter: &fakeConverter{markdown: policyMarkdown},
		retriever: policyRetriever(),
		extractor: relevanceExtractor(),
		judge:     mock.NewMockClauseJudge(),
		synth:     mock.NewMockAnswerSynthesizer(),
	}
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	provider := mock.NewMockProviderWithServices(f.extractor, f.judge, f.synth)
	p, err := NewPipeline(f.repo, f.raw, f.converter, provider, f.retriever, append([]Option{WithPoolSize(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func clauseTexts(clauses []core.Clause) []string {
	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}
	return texts
}
