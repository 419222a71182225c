package llm

import (
	"context"

	"finhypo/ports"
)

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors

	Requests []ports.CompletionRequest // Records every call
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req ports.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return "Analysis complete. The data supports the hypothesis.\nConfidence: 80%\n- Observed effect is consistent across instruments", nil
}
