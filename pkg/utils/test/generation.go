package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/generation"
)

// ErrMockGeneration is returned by MockGenerator when Fail is set.
var ErrMockGeneration = errors.New("mock generation failure")

// MockGenerator is a test text generator that records prompts and returns a
// fixed response.
type MockGenerator struct {
	mu sync.Mutex

	// Response is returned for every prompt.
	Response string

	// Prompts accumulates every prompt received.
	Prompts []string

	// Fail causes calls to return ErrMockGeneration.
	Fail bool
}

// NewMockGenerator creates a generator answering with response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// Call implements generation.CallFunc.
func (m *MockGenerator) Call(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Fail {
		return "", ErrMockGeneration
	}
	return m.Response, nil
}

// Func returns m.Call as a generation.CallFunc.
func (m *MockGenerator) Func() generation.CallFunc {
	return m.Call
}
