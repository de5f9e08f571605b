// Package invoker defines the interface for running the language model.
//
// An invoker takes a complete prompt and returns the model's raw text.
// shelfd ships with two backends: cli (the model runtime as a child
// process, one per prompt) and ollama (the runtime's HTTP API).
package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrTimeout is returned when an invocation does not finish before its deadline.
var ErrTimeout = errors.New("model invocation timed out")

// ProcessError reports a model process that exited with a non-zero status.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("model process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("model process exited with code %d: %s", e.ExitCode, stderr)
}

// Invoker is the interface every model backend implements.
type Invoker interface {
	// Name returns the backend identifier (e.g., "cli", "ollama").
	Name() string

	// Model returns the model identifier the backend runs.
	Model() string

	// Invoke runs the model on prompt and returns its output untouched.
	// It returns ErrTimeout (wrapped) when the deadline elapses and a
	// *ProcessError when the runtime reports failure.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Warmup runs a throwaway prompt so the model is resident before the first
// real query. It blocks for at most timeout. The error is returned for
// logging only; callers keep starting up when warm-up fails.
func Warmup(ctx context.Context, inv Invoker, prompt string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Info("loading model into memory", "backend", inv.Name(), "model", inv.Model())

	if _, err := inv.Invoke(ctx, prompt); err != nil {
		slog.Error("model warm-up failed", "model", inv.Model(), "error", err)
		return fmt.Errorf("warm-up: %w", err)
	}

	slog.Info("model loaded", "model", inv.Model(), "duration", time.Since(start))
	return nil
}

// ContextError maps a finished context to the invoker error taxonomy.
// It returns nil while ctx is still live.
func ContextError(ctx context.Context, model string) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrTimeout, model)
	default:
		return fmt.Errorf("model invocation cancelled: %w", err)
	}
}
