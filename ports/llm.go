package ports

import "context"

// Message is one ordered role/content pair in a chat completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest carries everything a model completion call needs
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// LLMClient is the contract to the model-serving backend. Failures must
// be distinguishable: implementations return an AppError carrying the
// MODEL_CLIENT_ERROR code.
type LLMClient interface {
	ChatCompletion(ctx context.Context, req CompletionRequest) (string, error)
}
