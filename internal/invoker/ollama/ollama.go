// Package ollama implements the Invoker interface over the model runtime's
// HTTP API instead of a child process.
//
// It supports Ollama's /api/generate and any OpenAI-compatible
// /v1/chat/completions endpoint (vLLM, llama.cpp server).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/shelfd/internal/config"
	"github.com/nadzzz/shelfd/internal/invoker"
)

// Client sends prompts to a model server.
type Client struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *http.Client
}

// New creates a new HTTP model client from config.
func New(cfg config.ModelConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Name,
		timeout:  cfg.Timeout,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "ollama" }

// Model returns the model identifier.
func (c *Client) Model() string { return c.model }

// Invoke sends the prompt as a single non-streaming generation and returns
// the generated text. Cancelling ctx aborts the request.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	bodyBytes, err := json.Marshal(c.requestBody(prompt))
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := invoker.ContextError(ctx, c.model); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("model request failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := invoker.ContextError(ctx, c.model); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("reading model response: %w", err)
	}

	content := extractContent(respData)
	slog.Debug("model request complete", "model", c.model, "bytes", len(content))
	return content, nil
}

// Close drops idle keep-alive connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// --- Internal helpers ---

// requestBody picks the wire format from the endpoint path. The prompt
// already carries the full instruction, so it is sent as a single user turn.
func (c *Client) requestBody(prompt string) map[string]any {
	if strings.HasSuffix(c.endpoint, "/api/generate") {
		return map[string]any{
			"model":  c.model,
			"prompt": prompt,
			"stream": false,
		}
	}
	return map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}
}

func extractContent(data []byte) string {
	// Try OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Try Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return string(data)
}
