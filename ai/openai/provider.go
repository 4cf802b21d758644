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
package openai

import (
	"log/slog"

	"github.com/poiesic/clausewise/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the extractor, judge and synthesizer instances.
type Provider struct {
	config      *ai.Config
	extractor   *ClauseExtractor
	judge       *ClauseJudge
	synthesizer *AnswerSynthesizer
	logger      *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		return nil, ai.ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extractor, err := newClauseExtractor(config)
	if err != nil {
		return nil, err
	}

	judge, err := newClauseJudge(config)
	if err != nil {
		return nil, err
	}

	synthesizer, err := newAnswerSynthesizer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		extractor:   extractor,
		judge:       judge,
		synthesizer: synthesizer,
		logger:      slog.Default().With("component", "openai-provider"),
	}, nil
}

// ClauseExtractor returns the clause extraction service.
func (p *Provider) ClauseExtractor() ai.ClauseExtractor {
	return p.extractor
}

// ClauseJudge returns the clause validation service.
func (p *Provider) ClauseJudge() ai.ClauseJudge {
	return p.judge
}

// AnswerSynthesizer returns the answer synthesis service.
func (p *Provider) AnswerSynthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider", "model", p.config.Model, "judge", p.config.JudgeModel)
	return nil
}
