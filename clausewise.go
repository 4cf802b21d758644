// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clausewise answers compliance questions from clauses extracted out
// of policy documents.
//
// An Engine wires storage, the language model provider, the knowledge base
// retriever and the ingestion pipeline from a config.Config:
//
//	engine, err := clausewise.NewEngine(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	state, err := engine.Ask(ctx, clausewise.Request{Question: "How often do passwords rotate?"})
//
// Turns submitted to one Engine run one at a time in submission order.
package clausewise

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/ai/openai"
	"github.com/poiesic/clausewise/config"
	"github.com/poiesic/clausewise/convert"
	"github.com/poiesic/clausewise/convert/pdftext"
	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/ingestion"
	"github.com/poiesic/clausewise/knowledge"
	"github.com/poiesic/clausewise/knowledge/weaviate"
	"github.com/poiesic/clausewise/segment"
	"github.com/poiesic/clausewise/storage"
	"github.com/poiesic/clausewise/storage/badger"
	"github.com/poiesic/clausewise/storage/gcs"
	"github.com/poiesic/clausewise/storage/localfs"
	"github.com/poiesic/clausewise/turn"
)

// Request describes one turn.
type Request = ingestion.Request

// Engine runs turns against one artifact store and knowledge base.
type Engine struct {
	backend   *badger.Backend
	artifacts storage.ArtifactRepository
	raw       storage.RawSource
	provider  ai.AIProvider
	retriever knowledge.Retriever
	pipeline  *ingestion.Pipeline
	worker    *ingestion.Worker
	strategy  segment.Strategy
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider  ai.AIProvider
	retriever knowledge.Retriever
	raw       storage.RawSource
	registry  prometheus.Registerer
	progress  io.Writer
	logger    *slog.Logger
}

// WithProvider replaces the OpenAI-compatible provider built from the config.
// The engine closes it.
func WithProvider(p ai.AIProvider) EngineOption {
	return func(o *engineOptions) { o.provider = p }
}

// WithRetriever replaces the retriever selected by the knowledge config.
func WithRetriever(r knowledge.Retriever) EngineOption {
	return func(o *engineOptions) { o.retriever = r }
}

// WithRawSource replaces the raw document source selected by the storage config.
func WithRawSource(src storage.RawSource) EngineOption {
	return func(o *engineOptions) { o.raw = src }
}

// WithRegisterer exports pipeline metrics to reg.
func WithRegisterer(reg prometheus.Registerer) EngineOption {
	return func(o *engineOptions) { o.registry = reg }
}

// WithProgress reports extraction progress to w.
func WithProgress(w io.Writer) EngineOption {
	return func(o *engineOptions) { o.progress = w }
}

// WithLogger sets the logger for the engine and everything it builds.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = logger }
}

// NewEngine validates cfg and opens everything it names. A nil cfg uses
// config.Default.
func NewEngine(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	e := &Engine{
		strategy: segment.Strategy(cfg.Pipeline.Strategy),
		logger:   options.logger.With("component", "engine"),
	}
	if err := e.open(ctx, cfg, options); err != nil {
		if cerr := e.Close(); cerr != nil {
			e.logger.Error("error closing partially opened engine", "err", cerr)
		}
		return nil, err
	}
	return e, nil
}

func (e *Engine) open(ctx context.Context, cfg *config.Config, options *engineOptions) error {
	if err := e.openStorage(ctx, cfg.Storage, options.raw); err != nil {
		return err
	}

	e.provider = options.provider
	if e.provider == nil {
		provider, err := openai.NewProvider(aiConfig(cfg.AI))
		if err != nil {
			return err
		}
		e.provider = provider
	}

	e.retriever = options.retriever
	if e.retriever == nil {
		retriever, err := e.openRetriever(cfg.Knowledge, options.logger)
		if err != nil {
			return err
		}
		e.retriever = retriever
	}

	converter := convert.NewDispatcher(convert.WithFormat(".pdf", pdftext.New(options.logger)))

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(options.logger),
		ingestion.WithDigestCheck(cfg.Pipeline.DigestCheck),
		ingestion.WithWindow(cfg.Pipeline.WindowSize, cfg.Pipeline.Overlap),
		ingestion.WithMinScore(cfg.Pipeline.MinScore),
		ingestion.WithRetrievalLimit(cfg.Pipeline.RetrievalLimit),
		ingestion.WithContextPassages(cfg.Pipeline.ContextPassages),
	}
	if cfg.Pipeline.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Pipeline.PoolSize))
	}
	if options.progress != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(options.progress))
	}
	if options.registry != nil {
		metrics, err := ingestion.NewMetrics(options.registry)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, ingestion.WithMetrics(metrics))
	}

	pipeline, err := ingestion.NewPipeline(e.artifacts, e.raw, converter, e.provider, e.retriever, pipelineOpts...)
	if err != nil {
		return err
	}
	e.pipeline = pipeline

	worker, err := ingestion.NewWorker(pipeline, cfg.Pipeline.QueueSize)
	if err != nil {
		return err
	}
	e.worker = worker
	return nil
}

func (e *Engine) openStorage(ctx context.Context, cfg config.StorageConfig, raw storage.RawSource) error {
	switch cfg.Backend {
	case config.StorageGCS:
		client, err := gcs.NewClient(ctx, gcs.Config{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
			Prefix:          cfg.Prefix,
		})
		if err != nil {
			return err
		}
		// the repository owns the client from here on
		repo, err := gcs.NewArtifactRepository(client)
		if err != nil {
			client.Close()
			return err
		}
		e.artifacts = repo
		if raw == nil && cfg.RawDir == "" {
			if raw, err = gcs.NewRawSource(client); err != nil {
				return err
			}
		}
	default:
		backend, err := badger.OpenBackend(cfg.Path, cfg.InMemory)
		if err != nil {
			return err
		}
		e.backend = backend
		repo, err := badger.NewArtifactRepository(backend)
		if err != nil {
			return err
		}
		e.artifacts = repo
	}

	if raw == nil {
		src, err := localfs.NewRawSource(cfg.RawDir)
		if err != nil {
			return err
		}
		raw = src
	}
	e.raw = raw
	return nil
}

func (e *Engine) openRetriever(cfg config.KnowledgeConfig, logger *slog.Logger) (knowledge.Retriever, error) {
	if cfg.Backend == config.KnowledgeWeaviate {
		return weaviate.NewRetriever(weaviate.Config{
			URL:            cfg.URL,
			APIKey:         cfg.APIKey,
			Class:          cfg.Class,
			TextProperty:   cfg.TextProperty,
			SourceProperty: cfg.SourceProperty,
		}, logger)
	}
	return knowledge.NewLexicalRetriever(e.artifacts, logger)
}

func aiConfig(c config.AIConfig) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.Host),
		ai.WithToken(c.Token),
		ai.WithModel(c.Model),
		ai.WithJudgeModel(c.JudgeModel),
		ai.WithAnswerModel(c.AnswerModel),
		ai.WithTemperature(c.Temperature),
		ai.WithMaxRetries(c.MaxRetries),
		ai.WithRetryDelay(c.RetryDelay),
	)
}

// Ask queues a question and waits for its answer. When req.Document is empty
// the document is discovered from the knowledge base.
func (e *Engine) Ask(ctx context.Context, req Request) (turn.State, error) {
	tracker, err := e.SubmitAsk(ctx, req)
	if err != nil {
		return turn.State{}, err
	}
	return tracker.Wait()
}

// Ingest queues a document and waits until its ranked clauses are stored.
func (e *Engine) Ingest(ctx context.Context, req Request) (turn.State, error) {
	tracker, err := e.SubmitIngest(ctx, req)
	if err != nil {
		return turn.State{}, err
	}
	return tracker.Wait()
}

// SubmitAsk queues a question and returns a tracker that can be polled for
// intermediate states.
func (e *Engine) SubmitAsk(ctx context.Context, req Request) (*turn.Tracker, error) {
	return e.worker.SubmitAsk(ctx, e.withDefaults(req))
}

// SubmitIngest queues a document for ingestion.
func (e *Engine) SubmitIngest(ctx context.Context, req Request) (*turn.Tracker, error) {
	return e.worker.SubmitIngest(ctx, e.withDefaults(req))
}

func (e *Engine) withDefaults(req Request) Request {
	if req.Strategy == "" {
		req.Strategy = e.strategy
	}
	return req
}

// Plan reports which stages an Ingest of document would run.
func (e *Engine) Plan(ctx context.Context, document string) (ingestion.Plan, error) {
	return e.pipeline.Plan(ctx, document)
}

// Split segments the stored markdown of document. An empty strategy uses the
// configured one.
func (e *Engine) Split(ctx context.Context, document string, strategy segment.Strategy) ([]core.Section, error) {
	if strategy == "" {
		strategy = e.strategy
	}
	return e.pipeline.Split(ctx, document, strategy)
}

// Clauses returns the stored ranked clauses of document.
func (e *Engine) Clauses(ctx context.Context, document string) ([]core.Clause, error) {
	return e.pipeline.Clauses(ctx, document)
}

// Markdown returns the stored markdown of document.
func (e *Engine) Markdown(ctx context.Context, document string) (string, error) {
	base, err := core.NormalizeBaseName(document)
	if err != nil {
		return "", err
	}
	artifact, err := e.artifacts.GetArtifact(ctx, core.ArtifactMarkdown, core.MarkdownName(base))
	if err != nil {
		return "", err
	}
	return string(artifact.Data), nil
}

// Artifacts lists the stored artifact names of kind.
func (e *Engine) Artifacts(ctx context.Context, kind core.ArtifactKind) ([]string, error) {
	return e.artifacts.ListArtifacts(ctx, kind)
}

// Close drains queued turns and releases everything the engine opened.
func (e *Engine) Close() error {
	if e.worker != nil {
		e.worker.Close()
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}

	var errs []error
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if e.artifacts != nil {
		if err := e.artifacts.Close(); err != nil {
			e.logger.Error("error closing artifact repository", "err", err)
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
