package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorageBadger, cfg.Storage.Backend)
	assert.Equal(t, KnowledgeLexical, cfg.Knowledge.Backend)
	assert.Equal(t, "title", cfg.Pipeline.Strategy)
	assert.Equal(t, 0.4, cfg.Pipeline.MinScore)
	assert.Equal(t, 2, cfg.Pipeline.RetrievalLimit)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clausewise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  host: http://llm:8000/v1
  model: gpt-4o-mini
  judge_model: gpt-4o
  retry_delay: 2s
storage:
  backend: gcs
  bucket: acme-compliance
knowledge:
  backend: weaviate
  url: http://weaviate:8080
  class: Policy
pipeline:
  pool_size: 8
  digest_check: true
  strategy: window
  window_size: 500
  overlap: 50
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://llm:8000/v1", cfg.AI.Host)
	assert.Equal(t, "gpt-4o", cfg.AI.JudgeModel)
	assert.Equal(t, 2*time.Second, cfg.AI.RetryDelay)
	assert.Equal(t, 3, cfg.AI.MaxRetries, "unset keys keep defaults")
	assert.Equal(t, "acme-compliance", cfg.Storage.Bucket)
	assert.Equal(t, "Policy", cfg.Knowledge.Class)
	assert.Equal(t, 8, cfg.Pipeline.PoolSize)
	assert.True(t, cfg.Pipeline.DigestCheck)
	assert.Equal(t, 500, cfg.Pipeline.WindowSize)
	assert.Equal(t, 1, cfg.Pipeline.ContextPassages)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("pipeline:\n  pool_sise: 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "missing host", mutate: func(c *Config) { c.AI.Host = "" }, wantErr: "ai.host is required"},
		{name: "host not a url", mutate: func(c *Config) { c.AI.Host = "not a url" }, wantErr: "ai.host must be a URL"},
		{name: "missing model", mutate: func(c *Config) { c.AI.Model = "" }, wantErr: "ai.model is required"},
		{name: "temperature", mutate: func(c *Config) { c.AI.Temperature = 2.5 }, wantErr: "ai.temperature"},
		{name: "no retries", mutate: func(c *Config) { c.AI.MaxRetries = 0 }, wantErr: "ai.max_retries"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: "storage.backend must be one of [badger gcs]"},
		{name: "badger needs path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "storage.path is required"},
		{name: "badger needs raw dir", mutate: func(c *Config) { c.Storage.RawDir = "" }, wantErr: "storage.raw_dir is required"},
		{name: "gcs needs bucket", mutate: func(c *Config) { c.Storage.Backend = StorageGCS }, wantErr: "storage.bucket is required"},
		{name: "weaviate needs url", mutate: func(c *Config) { c.Knowledge.Backend = KnowledgeWeaviate }, wantErr: "knowledge.url is required"},
		{name: "unknown strategy", mutate: func(c *Config) { c.Pipeline.Strategy = "pages" }, wantErr: "pipeline.strategy"},
		{name: "overlap too large", mutate: func(c *Config) { c.Pipeline.Overlap = c.Pipeline.WindowSize }, wantErr: "pipeline.overlap must be less than"},
		{name: "min score range", mutate: func(c *Config) { c.Pipeline.MinScore = 1.5 }, wantErr: "pipeline.min_score"},
		{name: "retrieval limit", mutate: func(c *Config) { c.Pipeline.RetrievalLimit = 0 }, wantErr: "pipeline.retrieval_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_InMemoryBadgerNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Path = ""
	cfg.Storage.InMemory = true
	assert.NoError(t, cfg.Validate())
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.AI.RetryDelay = 1500 * time.Millisecond
	cfg.Pipeline.DigestCheck = true

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retry_delay: 1.5s")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
