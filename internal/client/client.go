// Package client is the consumer side of the mediator: it sends one query
// over the network and always hands back something that can be spoken.
package client

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
	"github.com/nadzzz/shelfd/internal/message"
	grpctransport "github.com/nadzzz/shelfd/internal/transport/grpc"
)

// FallbackSpeech is spoken when the mediator could not be reached or
// answered with something other than a JSON response.
const FallbackSpeech = "Sorry, I couldn't connect to the inventory system"

// DefaultTimeout bounds a single round trip when none is configured.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes bounds the size of a decoded response body.
const maxResponseBytes = 1 << 20

// Fallback returns the degraded response used for every transport failure.
func Fallback() *message.QueryResponse {
	return &message.QueryResponse{Success: false, Spoken: FallbackSpeech}
}

// Client queries a remote mediator over HTTP or gRPC.
type Client struct {
	base    string
	timeout time.Duration
	http    *http.Client
	grpc    *grpctransport.Client
}

// New creates a client for the mediator described by cfg.
func New(cfg config.ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		base:    "http://" + cfg.Addr(),
		timeout: timeout,
		http:    &http.Client{},
	}

	if cfg.Transport == "grpc" {
		gc, err := grpctransport.Dial(cfg.Addr())
		if err != nil {
			return nil, err
		}
		c.grpc = gc
	}
	return c, nil
}

// NewHTTP creates an HTTP client for the mediator at base, e.g.
// "http://192.168.0.215:28080".
func NewHTTP(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: strings.TrimSuffix(base, "/"), timeout: timeout, http: &http.Client{}}
}

// Query sends text with its intent category and returns the mediator's
// response. It never fails: any transport or decode error yields Fallback.
func (c *Client) Query(ctx context.Context, text, intent string) *message.QueryResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &message.QueryRequest{Query: text, Intent: intent}

	var (
		resp *message.QueryResponse
		err  error
	)
	if c.grpc != nil {
		resp, err = c.grpc.Query(ctx, req)
	} else {
		resp, err = c.post(ctx, req)
	}
	if err != nil {
		slog.Error("failed to query mediator", "intent", intent, "error", err)
		return Fallback()
	}
	return resp
}

func (c *Client) post(ctx context.Context, req *message.QueryRequest) (*message.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting query: %w", err)
	}
	defer httpResp.Body.Close()

	// The mediator answers 400 with a full response body, so the status
	// code alone does not decide success.
	var resp message.QueryResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseBytes)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", httpResp.StatusCode, err)
	}
	return &resp, nil
}

// Ready reports whether the mediator has finished warming up and accepts
// queries. Over HTTP it asks /readyz; over gRPC the standard health service.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.grpc != nil {
		return c.grpc.Serving(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/readyz", nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking readiness: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	if c.grpc != nil {
		return c.grpc.Close()
	}
	return nil
}
