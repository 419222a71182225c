package llm

import (
	"context"
	"testing"

	apperrors "finhypo/internal/errors"
	"finhypo/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	client, err := NewOpenAIClient(Config{})

	assert.Nil(t, client)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestChatCompletionRequiresModel(t *testing.T) {
	client, err := NewOpenAIClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{{Role: ports.RoleUser, Content: "hello"}},
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestMockRecordsRequests(t *testing.T) {
	mock := &MockLLMClient{Response: "fine"}

	out, err := mock.ChatCompletion(context.Background(), ports.CompletionRequest{Model: "gpt-4o"})

	require.NoError(t, err)
	assert.Equal(t, "fine", out)
	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "gpt-4o", mock.Requests[0].Model)
}
