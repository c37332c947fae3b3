package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/retrievit/ai"
)

// Summarizer is a test double for ai.Summarizer.
type Summarizer struct {
	// SummarizeFunc is called by Summarize if set.
	SummarizeFunc func(ctx context.Context, prompt string, docs []string) (*ai.Summary, error)

	mu        sync.Mutex
	callCount int
}

// NewSummarizer creates a mock summarizer with default canned behavior.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns a canned summary naming the document count, or
// delegates to SummarizeFunc when set.
func (m *Summarizer) Summarize(ctx context.Context, prompt string, docs []string) (*ai.Summary, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, prompt, docs)
	}

	return &ai.Summary{
		Text:   fmt.Sprintf("mock summary over %d documents", len(docs)),
		Tokens: 10,
	}, nil
}

// CallCount returns the number of Summarize calls made so far.
func (m *Summarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
