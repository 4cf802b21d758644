package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/knowledge"
)

// Retriever queries a Weaviate class by semantic similarity.
type Retriever struct {
	search searcher
	config Config
	tracer trace.Tracer
	logger *slog.Logger
}

var _ knowledge.Retriever = (*Retriever)(nil)

// NewRetriever connects to Weaviate. No request is made until Retrieve.
func NewRetriever(cfg Config, logger *slog.Logger) (*Retriever, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return newRetriever(&clientSearcher{client: client}, cfg, logger), nil
}

func newRetriever(s searcher, cfg Config, logger *slog.Logger) *Retriever {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		search: s,
		config: cfg,
		tracer: otel.Tracer("github.com/poiesic/clausewise/knowledge/weaviate"),
		logger: logger.With("component", "weaviate_retriever"),
	}
}

// Retrieve returns up to limit passages ordered as Weaviate ranked them.
// Score is the certainty, or derived from the cosine distance when only that is returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]core.Passage, error) {
	if limit <= 0 {
		limit = knowledge.DefaultLimit
	}

	ctx, span := r.tracer.Start(ctx, "weaviate.Retrieve",
		trace.WithAttributes(
			attribute.String("weaviate.class", r.config.Class),
			attribute.Int("weaviate.limit", limit),
		))
	defer span.End()

	fields := []graphql.Field{
		{Name: r.config.TextProperty},
		{Name: r.config.SourceProperty},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}, {Name: "distance"}}},
	}

	resp, err := r.search.nearText(ctx, r.config.Class, fields, []string{query}, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if resp == nil {
		return nil, nil
	}
	if len(resp.Errors) > 0 {
		err := fmt.Errorf("%w: %s", ErrQueryFailed, resp.Errors[0].Message)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	passages, err := r.parse(resp)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(passages) > limit {
		passages = passages[:limit]
	}

	span.SetAttributes(attribute.Int("weaviate.results", len(passages)))
	r.logger.Debug("retrieved passages", "class", r.config.Class, "count", len(passages))
	return passages, nil
}

type additional struct {
	Certainty *float64 `json:"certainty"`
	Distance  *float64 `json:"distance"`
}

func (r *Retriever) parse(resp *models.GraphQLResponse) ([]core.Passage, error) {
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var parsed struct {
		Get map[string][]map[string]json.RawMessage `json:"Get"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}

	objects := parsed.Get[r.config.Class]
	passages := make([]core.Passage, 0, len(objects))
	for _, obj := range objects {
		text := stringField(obj, r.config.TextProperty)
		if strings.TrimSpace(text) == "" {
			continue
		}
		var extra additional
		if rawExtra, ok := obj["_additional"]; ok {
			// a malformed _additional leaves the score at zero
			_ = json.Unmarshal(rawExtra, &extra)
		}
		passages = append(passages, core.Passage{
			Source: stringField(obj, r.config.SourceProperty),
			Text:   text,
			Score:  score(extra),
		})
	}
	return passages, nil
}

func stringField(obj map[string]json.RawMessage, name string) string {
	raw, ok := obj[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func score(extra additional) float64 {
	switch {
	case extra.Certainty != nil:
		return *extra.Certainty
	case extra.Distance != nil:
		return 1 - *extra.Distance/2
	default:
		return 0
	}
}
