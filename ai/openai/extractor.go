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
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// ClauseExtractor implements ai.ClauseExtractor using OpenAI-compatible chat APIs.
type ClauseExtractor struct {
	chat *chat
}

var _ ai.ClauseExtractor = (*ClauseExtractor)(nil)

// extractedClause is an internal type used for JSON unmarshaling.
// It matches the structure requested from the model.
type extractedClause struct {
	ClauseText string  `json:"clause_text" validate:"required"`
	Area       string  `json:"area"`
	Relevance  float64 `json:"relevance"`
}

// extraction is the wrapper structure for the model's JSON response.
type extraction struct {
	Clauses []extractedClause `json:"clauses" validate:"dive"`
}

// newClauseExtractor is an internal constructor that returns the concrete type.
func newClauseExtractor(config *ai.Config) (*ClauseExtractor, error) {
	if config == nil {
		return nil, ai.ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, config.Model)
	if err != nil {
		return nil, err
	}
	return newClauseExtractorWithModel(client, config), nil
}

func newClauseExtractorWithModel(client llms.Model, config *ai.Config) *ClauseExtractor {
	return &ClauseExtractor{chat: newChat(client, config, "openai-extractor")}
}

// NewClauseExtractor creates a new clause extractor using the provided configuration.
//
// Returns ai.ClauseExtractor interface to enforce abstraction.
func NewClauseExtractor(config *ai.Config) (ai.ClauseExtractor, error) {
	return newClauseExtractor(config)
}

// ExtractClauses asks the model for the clauses in one section.
// Areas are normalized but not validated; callers drop out-of-range candidates.
func (e *ClauseExtractor) ExtractClauses(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
	prompt := buildExtractionPrompt(sectionText, areas, contextHint)
	result, err := generateJSON[extraction](ctx, e.chat, extractionSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	clauses := make([]core.Clause, 0, len(result.Clauses))
	for _, c := range result.Clauses {
		area, err := core.ParseArea(c.Area)
		if err != nil {
			area = core.Area(c.Area)
		}
		clauses = append(clauses, core.Clause{
			Text:      c.ClauseText,
			Area:      area,
			Relevance: c.Relevance,
		})
	}

	e.chat.logger.Debug("extracted clauses", "count", len(clauses))
	return clauses, nil
}
