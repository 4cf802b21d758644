package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/clausewise/ai"
)

// MockAnswerSynthesizer is a test double for ai.AnswerSynthesizer.
type MockAnswerSynthesizer struct {
	// SynthesizeAnswerFunc is called by SynthesizeAnswer if set.
	// If nil, the answer echoes the evidence and the document label.
	SynthesizeAnswerFunc func(ctx context.Context, question, evidenceText, documentLabel string) (string, error)

	mu           sync.Mutex
	callCount    int
	lastEvidence string
}

var _ ai.AnswerSynthesizer = (*MockAnswerSynthesizer)(nil)

// NewMockAnswerSynthesizer creates a synthesizer with the echo behavior.
func NewMockAnswerSynthesizer() *MockAnswerSynthesizer {
	return &MockAnswerSynthesizer{}
}

// SynthesizeAnswer records the call and delegates to SynthesizeAnswerFunc or the default.
func (m *MockAnswerSynthesizer) SynthesizeAnswer(ctx context.Context, question, evidenceText, documentLabel string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastEvidence = evidenceText
	fn := m.SynthesizeAnswerFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question, evidenceText, documentLabel)
	}
	return fmt.Sprintf("%s\n\nSource: %s", evidenceText, documentLabel), nil
}

// CallCount returns the number of SynthesizeAnswer calls.
func (m *MockAnswerSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastEvidence returns the evidence text of the most recent call.
func (m *MockAnswerSynthesizer) LastEvidence() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastEvidence
}

// Reset clears the call history and any injected behavior.
func (m *MockAnswerSynthesizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastEvidence = ""
	m.SynthesizeAnswerFunc = nil
}
