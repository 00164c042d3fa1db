// Package llm provides an OpenAI-compatible chat-completions client. It is
// the concrete collaborator satisfying memory.LLM for both the chat model
// and the summarizer model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AndreDVil/p05-chat-memory/internal/memory"
)

// wireMessage is the JSON shape of a chat message on the wire.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request is the chat-completions request payload.
type request struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// response is the chat-completions response payload.
type response struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message wireMessage `json:"message"`
}

// Client is satisfied by any chat-completions transport; memory.LLM
// declares this same method.
type Client interface {
	Complete(ctx context.Context, messages []memory.Message, model string, temperature float64) (string, error)
}

// OpenAIClient is an OpenAI chat-completions-compatible HTTP client.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOpenAIClient constructs a client against baseURL (an OpenAI
// chat-completions-compatible endpoint) using apiKey for bearer auth. An
// empty baseURL defaults to a local OpenAI-compatible server.
func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:1234/v1/chat/completions"
	}
	return &OpenAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete sends messages to the configured endpoint and returns the
// assistant's reply text. A missing/null content field is returned as an
// empty string rather than an error.
func (c *OpenAIClient) Complete(ctx context.Context, messages []memory.Message, model string, temperature float64) (string, error) {
	wireMessages := make([]wireMessage, len(messages))
	for i, m := range messages {
		wireMessages[i] = wireMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(request{Model: model, Messages: wireMessages, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("llm: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm: API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: failed to decode response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}
