// Package weaviate implements knowledge.Retriever with Weaviate nearText queries.
//
// Objects of the configured class must carry a text property and a source
// property. The source is conventionally the URI of the document the chunk
// was taken from; its final path element names the primary document.
package weaviate

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Default class layout.
const (
	DefaultClass          = "Document"
	DefaultTextProperty   = "content"
	DefaultSourceProperty = "source"
)

// Config holds connection and schema settings.
type Config struct {
	// URL is "host:port" or a full http(s) URL.
	URL string
	// APIKey is sent as a bearer token when set.
	APIKey string

	Class          string
	TextProperty   string
	SourceProperty string
}

func (c *Config) applyDefaults() {
	if c.Class == "" {
		c.Class = DefaultClass
	}
	if c.TextProperty == "" {
		c.TextProperty = DefaultTextProperty
	}
	if c.SourceProperty == "" {
		c.SourceProperty = DefaultSourceProperty
	}
}

// searcher runs a nearText query; the client-backed implementation is the only
// production one.
type searcher interface {
	nearText(ctx context.Context, class string, fields []graphql.Field, concepts []string, limit int) (*models.GraphQLResponse, error)
}

type clientSearcher struct {
	client *weaviate.Client
}

func (s *clientSearcher) nearText(ctx context.Context, class string, fields []graphql.Field, concepts []string, limit int) (*models.GraphQLResponse, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts(concepts)

	return s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
}

// newClient builds the underlying Weaviate client from cfg.URL.
func newClient(cfg Config) (*weaviate.Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrURLRequired
	}

	wc := weaviate.Config{
		Host:   cfg.URL,
		Scheme: "http",
	}
	if rest, ok := strings.CutPrefix(cfg.URL, "https://"); ok {
		wc.Scheme = "https"
		wc.Host = rest
	} else if rest, ok := strings.CutPrefix(cfg.URL, "http://"); ok {
		wc.Host = rest
	}
	wc.Host = strings.TrimRight(wc.Host, "/")
	if cfg.APIKey != "" {
		wc.Headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}

	client, err := weaviate.NewClient(wc)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return client, nil
}
