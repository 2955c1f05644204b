package testutils

import (
	"context"

	"github.com/papercomputeco/verbatim/pkg/llm"
)

// MockGenerator is a test generator that returns a canned response and
// records every prompt it receives
type MockGenerator struct {
	Response string
	Err      error

	// Prompts holds every prompt passed to Generate, in order
	Prompts []string
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{
		Response: response,
	}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGenerator) Model() string {
	return "mock-llm"
}

func (m *MockGenerator) Close() error {
	return nil
}

var _ llm.Generator = (*MockGenerator)(nil)
