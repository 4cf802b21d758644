package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "qwen2.5:7b", cfg.Model)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Zero(t, cfg.Temperature)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
		assert.Empty(t, cfg.JudgeModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithToken("sk-test"),
			WithModel("extract"),
			WithJudgeModel("judge"),
			WithAnswerModel("answer"),
			WithTemperature(0.2),
			WithMaxRetries(5),
			WithRetryDelay(time.Second),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.Host)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.Equal(t, "extract", cfg.Model)
		assert.Equal(t, "judge", cfg.JudgeModel)
		assert.Equal(t, "answer", cfg.AnswerModel)
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.RetryDelay)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.Host)
		})
	}
}

func TestConfigNormalize_ModelFallbacks(t *testing.T) {
	cfg := &Config{Model: "base", AnswerModel: "big"}
	cfg.Normalize()

	assert.Equal(t, "base", cfg.JudgeModel)
	assert.Equal(t, "big", cfg.AnswerModel)
	assert.Equal(t, "none", cfg.Token)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid default", mutate: func(c *Config) {}},
		{name: "host normalized", mutate: func(c *Config) { c.Host = "http://h:1" }},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: "Host is required"},
		{name: "missing model", mutate: func(c *Config) { c.Model = "" }, wantErr: "Model is required"},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 3 }, wantErr: "Temperature"},
		{name: "no retries", mutate: func(c *Config) { c.MaxRetries = 0 }, wantErr: "MaxRetries"},
		{name: "negative delay", mutate: func(c *Config) { c.RetryDelay = -time.Second }, wantErr: "RetryDelay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, len(cfg.Host) > 3 && cfg.Host[len(cfg.Host)-3:] == "/v1")
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
