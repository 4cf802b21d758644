package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/convert"
	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/knowledge"
	"github.com/poiesic/clausewise/segment"
	"github.com/poiesic/clausewise/storage"
	"github.com/poiesic/clausewise/turn"
)

// Pipeline coordinates the stages of a turn for one document.
type Pipeline struct {
	artifacts       storage.ArtifactRepository
	raw             storage.RawSource
	converter       convert.Converter
	provider        ai.AIProvider
	retriever       knowledge.Retriever
	pool            *ants.Pool
	poolSize        int
	aggregator      *Aggregator
	gate            *Gate
	window          segment.Params
	digestCheck     bool
	minScore        float64
	retrievalLimit  int
	contextPassages int
	metrics         *Metrics
	progress        io.Writer
	tracer          trace.Tracer
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the extraction worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithDigestCheck makes Plan compare each stored artifact's source digest with
// its upstream artifact. A mismatch re-runs the stage and every later stage.
// Default is presence only.
func WithDigestCheck(enabled bool) Option {
	return func(p *Pipeline) error {
		p.digestCheck = enabled
		return nil
	}
}

// WithMetrics records stage executions in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithProgress reports extraction progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithWindow sets window segmentation parameters.
func WithWindow(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size <= 0 || overlap < 0 || size-overlap <= 0 {
			return core.ErrInvalidWindow
		}
		p.window.WindowSize = size
		p.window.Overlap = overlap
		return nil
	}
}

// WithMinScore sets the minimum retrieval score for validation context and
// document discovery. Default 0.4.
func WithMinScore(min float64) Option {
	return func(p *Pipeline) error {
		if min < 0 || min > 1 {
			return fmt.Errorf("%w: minimum score %v outside [0,1]", core.ErrInvalidInput, min)
		}
		p.minScore = min
		return nil
	}
}

// WithRetrievalLimit sets the number of passages requested per retrieval. Default 2.
func WithRetrievalLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 1 {
			return fmt.Errorf("%w: retrieval limit must be positive", core.ErrInvalidInput)
		}
		p.retrievalLimit = limit
		return nil
	}
}

// WithContextPassages sets how many retrieved passages ground clause judgement. Default 1.
func WithContextPassages(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("%w: context passages must be positive", core.ErrInvalidInput)
		}
		p.contextPassages = n
		return nil
	}
}

// WithTracer sets the tracer for stage spans.
// Default is the global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) error {
		if tracer != nil {
			p.tracer = tracer
		}
		return nil
	}
}

// NewPipeline creates a new pipeline.
func NewPipeline(
	artifacts storage.ArtifactRepository,
	raw storage.RawSource,
	converter convert.Converter,
	provider ai.AIProvider,
	retriever knowledge.Retriever,
	opts ...Option,
) (*Pipeline, error) {
	if artifacts == nil {
		return nil, ErrArtifactRepositoryRequired
	}
	if raw == nil {
		return nil, ErrRawSourceRequired
	}
	if converter == nil {
		return nil, ErrConverterRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	p := &Pipeline{
		artifacts:       artifacts,
		raw:             raw,
		converter:       converter,
		provider:        provider,
		retriever:       retriever,
		poolSize:        poolSize,
		window:          segment.DefaultParams(),
		minScore:        knowledge.DefaultMinScore,
		retrievalLimit:  knowledge.DefaultLimit,
		contextPassages: 1,
		tracer:          otel.Tracer("github.com/poiesic/clausewise/ingestion"),
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	pool, err := ants.NewPool(p.poolSize)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	aggregator, err := NewAggregator(provider.ClauseExtractor(), pool, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	aggregator.progress = p.progress
	aggregator.metrics = p.metrics
	p.aggregator = aggregator

	gate, err := NewGate(retriever, provider.ClauseJudge(),
		WithGateRetrievalLimit(p.retrievalLimit),
		WithGateMinScore(p.minScore),
		WithGateContextPassages(p.contextPassages),
		WithGateLogger(p.logger),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.gate = gate

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Request describes one turn.
type Request struct {
	// Question is required by Ask.
	Question string
	// Document names the document to work on. Ask discovers it from the
	// knowledge base when empty; Ingest requires it.
	Document string
	// Strategy selects segmentation when sections must be produced.
	// Only StrategyWindow changes the default title mode.
	Strategy segment.Strategy
	// ContextHint is passed to clause extraction.
	ContextHint string
}

// Ingest brings the document's markdown, sections and ranked clauses up to
// date and returns the turn state after the clauses stage.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (turn.State, error) {
	return p.run(ctx, newState(req), req, false, nil)
}

// Ask ingests the document, validates the ranked clauses against context
// retrieved for the question and synthesizes an answer from the evidence.
func (p *Pipeline) Ask(ctx context.Context, req Request) (turn.State, error) {
	return p.run(ctx, newState(req), req, true, nil)
}

// Plan reports which artifact-producing stages would run for document.
func (p *Pipeline) Plan(ctx context.Context, document string) (Plan, error) {
	base, err := core.NormalizeBaseName(document)
	if err != nil {
		return Plan{}, err
	}
	return p.plan(ctx, base)
}

// Split segments the document's markdown with strategy and stores the
// sections artifact, converting the raw document first when no markdown is
// stored. Clauses are left untouched.
func (p *Pipeline) Split(ctx context.Context, document string, strategy segment.Strategy) ([]core.Section, error) {
	base, err := core.NormalizeBaseName(document)
	if err != nil {
		return nil, err
	}

	markdown, err := p.artifacts.GetArtifact(ctx, core.ArtifactMarkdown, core.MarkdownName(base))
	if errors.Is(err, core.ErrNotFound) {
		err = p.runStage(ctx, StageMarkdown, true, func(ctx context.Context) error {
			var err error
			markdown, err = p.convertDocument(ctx, base)
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	var sections []core.Section
	err = p.runStage(ctx, StageSections, true, func(ctx context.Context) error {
		var err error
		_, sections, err = p.segmentDocument(ctx, base, markdown, strategy)
		return err
	})
	return sections, err
}

// Clauses returns the stored ranked clause set for document.
func (p *Pipeline) Clauses(ctx context.Context, document string) ([]core.Clause, error) {
	base, err := core.NormalizeBaseName(document)
	if err != nil {
		return nil, err
	}
	return p.loadClauses(ctx, core.ClausesName(base))
}

func newState(req Request) turn.State {
	return turn.New(req.Question).WithContextHint(req.ContextHint)
}

// run executes a turn starting from state. publish, when set, receives every
// intermediate state.
func (p *Pipeline) run(ctx context.Context, state turn.State, req Request, answer bool, publish func(turn.State)) (turn.State, error) {
	if publish == nil {
		publish = func(turn.State) {}
	}
	publish(state)

	if answer && strings.TrimSpace(req.Question) == "" {
		return state, core.ErrMissingQuestion
	}

	ctx, span := p.tracer.Start(ctx, "clausewise.turn",
		trace.WithAttributes(
			attribute.String("turn.id", state.ID().String()),
			attribute.Bool("turn.answer", answer),
		))
	defer span.End()

	state, err := p.execute(ctx, state, req, answer, publish)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return state, err
}

func (p *Pipeline) execute(ctx context.Context, state turn.State, req Request, answer bool, publish func(turn.State)) (turn.State, error) {
	document := strings.TrimSpace(req.Document)
	if document == "" {
		if !answer {
			return state, core.ErrMissingDocumentName
		}
		err := p.runStage(ctx, StageRaw, true, func(ctx context.Context) error {
			var err error
			document, err = p.discoverDocument(ctx, req.Question)
			return err
		})
		if err != nil {
			return state, err
		}
	}

	base, err := core.NormalizeBaseName(document)
	if err != nil {
		return state, err
	}
	state = state.WithPrimaryDocument(base)
	publish(state)
	logger := p.logger.With("turn", state.ID().String(), "document", base)

	plan, err := p.plan(ctx, base)
	if err != nil {
		return state, &StageError{Stage: StageRaw, Err: err}
	}
	logger.Debug("planned turn",
		"markdown", plan.Markdown.Reason,
		"sections", plan.Sections.Reason,
		"clauses", plan.Clauses.Reason)

	// pollers see a stage while it runs; state itself only advances once it completes
	enter := func(stage Stage, run bool) {
		if run {
			publish(state.WithStage(stage))
		}
	}

	// RAW -> MARKDOWN
	var markdown *core.Artifact
	enter(StageMarkdown, plan.Markdown.Run)
	err = p.runStage(ctx, StageMarkdown, plan.Markdown.Run, func(ctx context.Context) error {
		var err error
		markdown, err = p.convertDocument(ctx, base)
		return err
	})
	if err != nil {
		return state, err
	}
	state = state.WithStage(StageMarkdown)
	publish(state)

	// MARKDOWN -> SECTIONS
	var (
		sectionsArtifact *core.Artifact
		sections         []core.Section
	)
	enter(StageSections, plan.Sections.Run)
	err = p.runStage(ctx, StageSections, plan.Sections.Run, func(ctx context.Context) error {
		var err error
		if markdown == nil {
			markdown, err = p.artifacts.GetArtifact(ctx, core.ArtifactMarkdown, plan.Markdown.Artifact)
			if err != nil {
				return err
			}
		}
		sectionsArtifact, sections, err = p.segmentDocument(ctx, base, markdown, req.Strategy)
		return err
	})
	if err != nil {
		return state, err
	}
	state = state.WithStage(StageSections)
	publish(state)

	// SECTIONS -> CLAUSES
	var ranked []core.Clause
	enter(StageClauses, plan.Clauses.Run)
	err = p.runStage(ctx, StageClauses, plan.Clauses.Run, func(ctx context.Context) error {
		if sectionsArtifact == nil {
			var err error
			sectionsArtifact, err = p.artifacts.GetArtifact(ctx, core.ArtifactSections, plan.Sections.Artifact)
			if err != nil {
				return err
			}
			if sections, err = core.UnmarshalSections(sectionsArtifact.Data); err != nil {
				return err
			}
		}
		var err error
		ranked, err = p.extractClauses(ctx, base, sectionsArtifact, sections, req.ContextHint)
		return err
	})
	if err != nil {
		return state, err
	}
	if !plan.Clauses.Run {
		if ranked, err = p.loadClauses(ctx, plan.Clauses.Artifact); err != nil {
			return state, &StageError{Stage: StageClauses, Err: err}
		}
	}
	state = state.WithRankedClauses(ranked).WithStage(StageClauses)
	publish(state)
	logger.Info("clauses ready", "count", len(ranked), "extracted", plan.Clauses.Run)

	if !answer {
		return state, nil
	}

	// CLAUSES -> VALIDATED
	var evidence *core.Evidence
	enter(StageValidated, true)
	err = p.runStage(ctx, StageValidated, true, func(ctx context.Context) error {
		var err error
		evidence, err = p.gate.Validate(ctx, ranked, req.Question)
		return err
	})
	if err != nil {
		return state, err
	}
	state = state.WithEvidence(evidence).WithStage(StageValidated)
	publish(state)

	// VALIDATED -> ANSWERED
	var text string
	enter(StageAnswered, true)
	err = p.runStage(ctx, StageAnswered, true, func(ctx context.Context) error {
		var err error
		text, err = p.provider.AnswerSynthesizer().SynthesizeAnswer(ctx, req.Question, evidence.Text, documentLabel(document))
		if err != nil {
			return fmt.Errorf("%w: answer synthesis: %w", core.ErrCollaborator, err)
		}
		return nil
	})
	if err != nil {
		return state, err
	}
	state = state.WithAnswer(text).WithStage(StageAnswered)
	publish(state)
	logger.Info("answered question", "evidence", len(evidence.Clauses))

	return state, nil
}

// runStage runs fn inside a span when run is set and records the outcome.
func (p *Pipeline) runStage(ctx context.Context, stage Stage, run bool, fn func(context.Context) error) error {
	if !run {
		p.logger.Debug("skipping stage", "stage", stage.String())
		p.metrics.observeStage(stage, outcomeSkip, 0)
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "clausewise.stage."+stage.String())
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.observeStage(stage, outcomeError, elapsed)
		p.logger.Error("stage failed", "stage", stage.String(), "err", err)
		return &StageError{Stage: stage, Err: err}
	}
	p.metrics.observeStage(stage, outcomeRun, elapsed)
	p.logger.Debug("stage complete", "stage", stage.String(), "elapsed", elapsed)
	return nil
}

// discoverDocument returns the file name of the best passage retrieved for question.
func (p *Pipeline) discoverDocument(ctx context.Context, question string) (string, error) {
	passages, err := p.retriever.Retrieve(ctx, question, p.retrievalLimit)
	if err != nil {
		return "", fmt.Errorf("%w: retrieval: %w", core.ErrCollaborator, err)
	}
	name, ok := knowledge.PrimaryDocument(knowledge.FilterByScore(passages, p.minScore))
	if !ok {
		return "", core.ErrNoDocument
	}
	p.logger.Info("discovered document", "document", name)
	return name, nil
}

func (p *Pipeline) convertDocument(ctx context.Context, base string) (*core.Artifact, error) {
	raw, err := p.raw.FetchRaw(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("fetching raw document %q: %w", base, err)
	}
	text, err := p.converter.Convert(ctx, raw.Name, raw.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCollaborator, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyDocument
	}
	artifact := core.NewArtifact(core.ArtifactMarkdown, core.MarkdownName(base), []byte(text), core.DigestBytes(raw.Data))
	return p.artifacts.PutArtifact(ctx, artifact)
}

func (p *Pipeline) segmentDocument(ctx context.Context, base string, markdown *core.Artifact, strategy segment.Strategy) (*core.Artifact, []core.Section, error) {
	params := p.window
	params.Strategy = segment.StrategyTitle
	if strategy == segment.StrategyWindow {
		params.Strategy = segment.StrategyWindow
	}

	if strings.TrimSpace(string(markdown.Data)) == "" {
		return nil, nil, core.ErrEmptyDocument
	}
	sections, err := segment.Split(string(markdown.Data), params)
	if err != nil {
		return nil, nil, err
	}
	if len(sections) == 0 {
		return nil, nil, core.ErrNoSections
	}

	data, err := core.MarshalSections(sections)
	if err != nil {
		return nil, nil, err
	}
	artifact, err := p.artifacts.PutArtifact(ctx, core.NewArtifact(core.ArtifactSections, params.ArtifactName(base), data, markdown.Digest))
	if err != nil {
		return nil, nil, err
	}
	return artifact, sections, nil
}

func (p *Pipeline) extractClauses(ctx context.Context, base string, sectionsArtifact *core.Artifact, sections []core.Section, contextHint string) ([]core.Clause, error) {
	ranked, err := p.aggregator.ExtractAndRank(ctx, sections, contextHint)
	if err != nil {
		return nil, err
	}
	data, err := core.MarshalClauses(ranked)
	if err != nil {
		return nil, err
	}
	if _, err := p.artifacts.PutArtifact(ctx, core.NewArtifact(core.ArtifactClauses, core.ClausesName(base), data, sectionsArtifact.Digest)); err != nil {
		return nil, err
	}
	return ranked, nil
}

func (p *Pipeline) loadClauses(ctx context.Context, name string) ([]core.Clause, error) {
	artifact, err := p.artifacts.GetArtifact(ctx, core.ArtifactClauses, name)
	if err != nil {
		return nil, err
	}
	clauses, err := core.UnmarshalClauses(artifact.Data)
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return nil, core.ErrNoClauses
	}
	return clauses, nil
}

// plan is the transition guard. A stage runs when a later stage needs its
// artifact and it is missing, or when digest checking finds it stale.
func (p *Pipeline) plan(ctx context.Context, base string) (Plan, error) {
	pl := Plan{
		Document: base,
		Markdown: StagePlan{Stage: StageMarkdown, Artifact: core.MarkdownName(base)},
		Sections: StagePlan{Stage: StageSections, Artifact: core.SectionsName(string(segment.StrategyTitle), base)},
		Clauses:  StagePlan{Stage: StageClauses, Artifact: core.ClausesName(base)},
	}

	var err error
	if pl.Markdown.Exists, err = p.artifacts.HasArtifact(ctx, core.ArtifactMarkdown, pl.Markdown.Artifact); err != nil {
		return pl, err
	}
	if pl.Sections.Exists, err = p.artifacts.HasArtifact(ctx, core.ArtifactSections, pl.Sections.Artifact); err != nil {
		return pl, err
	}
	if !pl.Sections.Exists {
		window := core.SectionsName(string(segment.StrategyWindow), base)
		exists, err := p.artifacts.HasArtifact(ctx, core.ArtifactSections, window)
		if err != nil {
			return pl, err
		}
		if exists {
			pl.Sections.Artifact = window
			pl.Sections.Exists = true
		}
	}
	if pl.Clauses.Exists, err = p.artifacts.HasArtifact(ctx, core.ArtifactClauses, pl.Clauses.Artifact); err != nil {
		return pl, err
	}

	var mdStale, secStale, clStale bool
	if p.digestCheck {
		if mdStale, secStale, clStale, err = p.staleness(ctx, pl); err != nil {
			return pl, err
		}
	}
	secRefresh := secStale || mdStale
	clRefresh := clStale || secRefresh

	pl.Clauses.Run = !pl.Clauses.Exists || clRefresh
	pl.Sections.Run = (pl.Clauses.Run && !pl.Sections.Exists) || secRefresh
	pl.Markdown.Run = (pl.Sections.Run && !pl.Markdown.Exists) || mdStale

	for _, sp := range []*StagePlan{&pl.Markdown, &pl.Sections, &pl.Clauses} {
		sp.Reason = reason(*sp)
	}
	return pl, nil
}

func reason(sp StagePlan) string {
	switch {
	case sp.Run && !sp.Exists:
		return ReasonMissing
	case sp.Run:
		return ReasonStale
	case sp.Exists:
		return ReasonPresent
	default:
		return ReasonNotNeeded
	}
}

// staleness compares stored source digests with their upstream artifacts.
// A zero source digest is unknown and never stale.
func (p *Pipeline) staleness(ctx context.Context, pl Plan) (markdown, sections, clauses bool, err error) {
	var md, sec *core.Artifact

	if pl.Markdown.Exists {
		if md, err = p.artifacts.GetArtifact(ctx, core.ArtifactMarkdown, pl.Markdown.Artifact); err != nil {
			return false, false, false, err
		}
		if md.SourceDigest != 0 {
			raw, err := p.raw.FetchRaw(ctx, pl.Document)
			switch {
			case err == nil:
				markdown = core.DigestBytes(raw.Data) != md.SourceDigest
			case errors.Is(err, core.ErrNotFound):
				// raw document gone; keep the markdown
			default:
				return false, false, false, err
			}
		}
	}

	if pl.Sections.Exists {
		if sec, err = p.artifacts.GetArtifact(ctx, core.ArtifactSections, pl.Sections.Artifact); err != nil {
			return false, false, false, err
		}
		if md != nil && sec.SourceDigest != 0 {
			sections = sec.SourceDigest != md.Digest
		}
	}

	if pl.Clauses.Exists && sec != nil {
		cl, err := p.artifacts.GetArtifact(ctx, core.ArtifactClauses, pl.Clauses.Artifact)
		if err != nil {
			return false, false, false, err
		}
		if cl.SourceDigest != 0 {
			clauses = cl.SourceDigest != sec.Digest
		}
	}
	return markdown, sections, clauses, nil
}

// documentLabel is the file name used to cite the document in answers.
func documentLabel(document string) string {
	return path.Base(strings.ReplaceAll(document, "\\", "/"))
}
