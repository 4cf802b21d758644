package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/segment"
	"github.com/poiesic/clausewise/storage"
)

// LexicalRetriever scores title sections of stored markdown artifacts by
// query-word overlap. Each passage's Source is the markdown artifact name.
type LexicalRetriever struct {
	repo   storage.ArtifactRepository
	logger *slog.Logger
}

var _ Retriever = (*LexicalRetriever)(nil)

// NewLexicalRetriever creates a retriever over the markdown artifacts in repo.
func NewLexicalRetriever(repo storage.ArtifactRepository, logger *slog.Logger) (*LexicalRetriever, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LexicalRetriever{
		repo:   repo,
		logger: logger.With("component", "lexical_retriever"),
	}, nil
}

// Retrieve returns up to limit passages with a non-zero score, best first.
// Ties keep document then section order.
func (r *LexicalRetriever) Retrieve(ctx context.Context, query string, limit int) ([]core.Passage, error) {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	names, err := r.repo.ListArtifacts(ctx, core.ArtifactMarkdown)
	if err != nil {
		return nil, fmt.Errorf("failed to list markdown artifacts: %w", err)
	}

	var passages []core.Passage
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		artifact, err := r.repo.GetArtifact(ctx, core.ArtifactMarkdown, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read markdown %s: %w", name, err)
		}
		for _, section := range passagesOf(string(artifact.Data)) {
			score := overlapScore(section, queryWords)
			if score == 0 {
				continue
			}
			passages = append(passages, core.Passage{Source: name, Text: section, Score: score})
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > limit {
		passages = passages[:limit]
	}

	r.logger.Debug("retrieved passages", "query", query, "documents", len(names), "count", len(passages))
	return passages, nil
}

// passagesOf splits markdown into section texts; untitled documents form one passage.
func passagesOf(markdown string) []string {
	sections := segment.ByTitle(markdown)
	if len(sections) == 0 {
		if strings.TrimSpace(markdown) == "" {
			return nil
		}
		return []string{strings.TrimSpace(markdown)}
	}
	texts := make([]string, 0, len(sections))
	for _, s := range sections {
		text := strings.TrimSpace(s.Title + "\n" + s.Content)
		texts = append(texts, text)
	}
	return texts
}
