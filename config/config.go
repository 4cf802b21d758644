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

// Package config loads the clausewise configuration file.
//
// The file is YAML with four sections:
//
//	ai:
//	  host: http://localhost:11434/v1
//	  model: qwen2.5:7b
//	storage:
//	  backend: badger
//	  path: ./data
//	  raw_dir: ./docs
//	knowledge:
//	  backend: lexical
//	pipeline:
//	  pool_size: 4
//	  min_score: 0.4
//
// Keys missing from the file keep their Default values. Unknown keys are
// rejected so that typos surface at load time.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/clausewise/segment"
)

// Storage backends.
const (
	StorageBadger = "badger"
	StorageGCS    = "gcs"
)

// Knowledge backends.
const (
	KnowledgeLexical  = "lexical"
	KnowledgeWeaviate = "weaviate"
)

// Config is the complete application configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// AIConfig configures the OpenAI-compatible model endpoint.
type AIConfig struct {
	Host        string        `yaml:"host" validate:"required,url"`
	Token       string        `yaml:"token"`
	Model       string        `yaml:"model" validate:"required"`
	JudgeModel  string        `yaml:"judge_model"`
	AnswerModel string        `yaml:"answer_model"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=1"`
	RetryDelay  time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

// StorageConfig selects where artifacts and raw documents live.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=badger gcs"`

	// Path is the BadgerDB directory.
	Path     string `yaml:"path" validate:"required_if=Backend badger InMemory false"`
	InMemory bool   `yaml:"in_memory"`

	Bucket          string `yaml:"bucket" validate:"required_if=Backend gcs"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`

	// RawDir is a local directory of raw documents. With the gcs backend an
	// empty RawDir reads raw documents from the bucket.
	RawDir string `yaml:"raw_dir" validate:"required_if=Backend badger"`
}

// KnowledgeConfig selects the retriever.
type KnowledgeConfig struct {
	Backend        string `yaml:"backend" validate:"oneof=lexical weaviate"`
	URL            string `yaml:"url" validate:"required_if=Backend weaviate"`
	APIKey         string `yaml:"api_key"`
	Class          string `yaml:"class"`
	TextProperty   string `yaml:"text_property"`
	SourceProperty string `yaml:"source_property"`
}

// PipelineConfig tunes the ingestion pipeline.
type PipelineConfig struct {
	// PoolSize is the extraction fan-out; 0 uses half the CPUs.
	PoolSize        int     `yaml:"pool_size" validate:"gte=0"`
	QueueSize       int     `yaml:"queue_size" validate:"gte=0"`
	DigestCheck     bool    `yaml:"digest_check"`
	Strategy        string  `yaml:"strategy" validate:"oneof=title window"`
	WindowSize      int     `yaml:"window_size" validate:"gt=0"`
	Overlap         int     `yaml:"overlap" validate:"gte=0,ltfield=WindowSize"`
	MinScore        float64 `yaml:"min_score" validate:"gte=0,lte=1"`
	RetrievalLimit  int     `yaml:"retrieval_limit" validate:"gte=1"`
	ContextPassages int     `yaml:"context_passages" validate:"gte=1"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Host:       "http://localhost:11434/v1",
			Model:      "qwen2.5:7b",
			MaxRetries: 3,
			RetryDelay: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Backend: StorageBadger,
			Path:    "./data",
			RawDir:  "./docs",
		},
		Knowledge: KnowledgeConfig{
			Backend: KnowledgeLexical,
		},
		Pipeline: PipelineConfig{
			Strategy:        string(segment.StrategyTitle),
			WindowSize:      segment.DefaultWindowSize,
			Overlap:         segment.DefaultOverlap,
			MinScore:        0.4,
			RetrievalLimit:  2,
			ContextPassages: 1,
		},
	}
}

// Load reads the file at path over Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their YAML keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every section. Field problems are reported by YAML path,
// e.g. "pipeline.overlap".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}
