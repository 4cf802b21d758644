package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// untitledSection is the section title recorded for clauses of headingless sections.
const untitledSection = "Untitled"

// Aggregator extracts clause candidates from every section and ranks them.
type Aggregator struct {
	extractor ai.ClauseExtractor
	pool      *ants.Pool
	areas     []core.Area
	progress  io.Writer
	metrics   *Metrics
	logger    *slog.Logger
}

// NewAggregator creates an aggregator that runs extraction on pool.
// The caller owns the pool.
func NewAggregator(extractor ai.ClauseExtractor, pool *ants.Pool, logger *slog.Logger) (*Aggregator, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		extractor: extractor,
		pool:      pool,
		areas:     core.Areas,
		logger:    logger.With("component", "aggregator"),
	}, nil
}

type sectionResult struct {
	clauses []core.Clause
	err     error
}

// ExtractAndRank extracts clauses from the non-blank sections concurrently and
// returns the top core.MaxRankedClauses by relevance. Candidates are pooled in
// section order, so the ranking does not depend on completion order.
// A failing section is logged and skipped.
func (a *Aggregator) ExtractAndRank(ctx context.Context, sections []core.Section, contextHint string) ([]core.Clause, error) {
	var pending []int
	for i, s := range sections {
		if strings.TrimSpace(s.Content) != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil, core.ErrNoClauses
	}

	var tracker *ProgressTracker
	if a.progress != nil {
		tracker = NewProgressTracker(a.progress, len(pending), 1)
		tracker.Start()
		defer tracker.Finish()
	}

	results := make([]sectionResult, len(sections))
	var wg sync.WaitGroup
	for _, i := range pending {
		section := sections[i]
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			results[i] = a.extractSection(ctx, section, contextHint)
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			results[i] = sectionResult{err: fmt.Errorf("failed to schedule extraction: %w", err)}
		}
	}
	wg.Wait()
	if tracker != nil {
		a.logger.Debug("extraction finished", "sections", tracker.Current(), "elapsed", tracker.Elapsed())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		candidates []core.Clause
		errs       []error
		dropped    int
	)
	for _, i := range pending {
		r := results[i]
		title := sections[i].Title
		if r.err != nil {
			a.logger.Warn("error processing section", "section", title, "err", r.err)
			a.metrics.sectionFailed()
			errs = append(errs, fmt.Errorf("section %q: %w", title, r.err))
			continue
		}
		if len(r.clauses) == 0 {
			a.logger.Info("no clauses generated for section", "section", title)
			continue
		}
		for _, c := range r.clauses {
			if err := core.ValidateClause(&c); err != nil {
				a.logger.Warn("dropping invalid clause", "section", title, "err", err)
				dropped++
				continue
			}
			candidates = append(candidates, c)
		}
	}
	a.metrics.clausesDropped(dropped)

	if len(candidates) == 0 {
		if len(errs) == len(pending) {
			return nil, fmt.Errorf("%w: %w", core.ErrNoClauses, errors.Join(errs...))
		}
		return nil, core.ErrNoClauses
	}

	ranked := core.RankClauses(candidates, core.MaxRankedClauses)
	a.logger.Debug("ranked clauses", "sections", len(pending), "candidates", len(candidates), "kept", len(ranked))
	return ranked, nil
}

func (a *Aggregator) extractSection(ctx context.Context, section core.Section, contextHint string) sectionResult {
	if err := ctx.Err(); err != nil {
		return sectionResult{err: err}
	}
	clauses, err := a.extractor.ExtractClauses(ctx, strings.TrimSpace(section.Content), a.areas, contextHint)
	if err != nil {
		return sectionResult{err: err}
	}
	title := section.Title
	if title == "" {
		title = untitledSection
	}
	// the extractor owns the returned slice
	out := slices.Clone(clauses)
	for i := range out {
		out[i].SectionTitle = title
	}
	return sectionResult{clauses: out}
}
