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

import "github.com/poiesic/clausewise/ai"

// MockProvider implements ai.AIProvider with mock services.
type MockProvider struct {
	extractor   *MockClauseExtractor
	judge       *MockClauseJudge
	synthesizer *MockAnswerSynthesizer
}

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockClauseExtractor(), NewMockClauseJudge(), NewMockAnswerSynthesizer())
}

// NewMockProviderWithServices creates a provider around the given mocks.
func NewMockProviderWithServices(extractor *MockClauseExtractor, judge *MockClauseJudge, synthesizer *MockAnswerSynthesizer) ai.AIProvider {
	return &MockProvider{
		extractor:   extractor,
		judge:       judge,
		synthesizer: synthesizer,
	}
}

func (p *MockProvider) ClauseExtractor() ai.ClauseExtractor {
	return p.extractor
}

func (p *MockProvider) ClauseJudge() ai.ClauseJudge {
	return p.judge
}

func (p *MockProvider) AnswerSynthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

func (p *MockProvider) Close() error {
	return nil
}

// GetMockExtractor returns the concrete extractor for assertions.
func (p *MockProvider) GetMockExtractor() *MockClauseExtractor {
	return p.extractor
}

// GetMockJudge returns the concrete judge for assertions.
func (p *MockProvider) GetMockJudge() *MockClauseJudge {
	return p.judge
}

// GetMockSynthesizer returns the concrete synthesizer for assertions.
func (p *MockProvider) GetMockSynthesizer() *MockAnswerSynthesizer {
	return p.synthesizer
}
