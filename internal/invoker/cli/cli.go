// Package cli implements the Invoker interface by running the model runtime
// as a child process.
//
// Each invocation starts `<runtime> run <model>`, writes the prompt to its
// standard input and collects standard output until the process exits. The
// child is killed when the invocation deadline elapses or the caller gives up.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/nadzzz/shelfd/internal/config"
	"github.com/nadzzz/shelfd/internal/invoker"
)

// waitDelay bounds how long Wait keeps draining pipes after the child is killed.
const waitDelay = 2 * time.Second

// Runner runs the model through the runtime's command line.
type Runner struct {
	runtime string
	model   string
	timeout time.Duration

	// commandContext is overridable for testing.
	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New creates a new cli runner from config.
func New(cfg config.ModelConfig) *Runner {
	runtime := cfg.Runtime
	if runtime == "" {
		runtime = "ollama"
	}
	return &Runner{
		runtime:        runtime,
		model:          cfg.Name,
		timeout:        cfg.Timeout,
		commandContext: exec.CommandContext,
	}
}

// Name returns the backend identifier.
func (r *Runner) Name() string { return "cli" }

// Model returns the model identifier.
func (r *Runner) Model() string { return r.model }

// Invoke runs one single-turn generation and returns stdout untouched.
func (r *Runner) Invoke(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := r.commandContext(ctx, r.runtime, "run", r.model)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if ctxErr := invoker.ContextError(ctx, r.model); ctxErr != nil {
			slog.Warn("model process killed", "model", r.model, "after", time.Since(start), "error", ctxErr)
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &invoker.ProcessError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("running %s: %w", r.runtime, err)
	}

	slog.Debug("model process complete", "model", r.model, "duration", time.Since(start), "bytes", stdout.Len())
	return stdout.String(), nil
}

// Close is a no-op; no process outlives its invocation.
func (r *Runner) Close() error { return nil }
