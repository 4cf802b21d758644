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

package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/clausewise/ai"
	"github.com/poiesic/clausewise/core"
)

// MockClauseExtractor is a test double for ai.ClauseExtractor.
// It is safe for concurrent use.
type MockClauseExtractor struct {
	// ExtractClausesFunc is called by ExtractClauses if set.
	// If nil, each non-blank line of the section becomes a compliance clause.
	ExtractClausesFunc func(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error)

	mu        sync.Mutex
	callCount int
	sections  []string
}

var _ ai.ClauseExtractor = (*MockClauseExtractor)(nil)

// NewMockClauseExtractor creates an extractor with the default line-per-clause behavior.
func NewMockClauseExtractor() *MockClauseExtractor {
	return &MockClauseExtractor{}
}

// ExtractClauses records the call and delegates to ExtractClausesFunc or the default.
func (m *MockClauseExtractor) ExtractClauses(ctx context.Context, sectionText string, areas []core.Area, contextHint string) ([]core.Clause, error) {
	m.mu.Lock()
	m.callCount++
	m.sections = append(m.sections, sectionText)
	fn := m.ExtractClausesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sectionText, areas, contextHint)
	}

	var clauses []core.Clause
	relevance := 1.0
	for _, line := range strings.Split(sectionText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		clauses = append(clauses, core.Clause{
			Text:      line,
			Area:      core.AreaCompliance,
			Relevance: relevance,
		})
		// Decrease relevance for each subsequent clause
		if relevance > 0.1 {
			relevance -= 0.1
		}
	}
	return clauses, nil
}

// CallCount returns the number of ExtractClauses calls.
func (m *MockClauseExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Sections returns the section texts received, in call order.
func (m *MockClauseExtractor) Sections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sections...)
}

// Reset clears the call history and any injected behavior.
func (m *MockClauseExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.sections = nil
	m.ExtractClausesFunc = nil
}
