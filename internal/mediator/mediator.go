// Package mediator implements the inventory query pipeline.
//
// The mediator receives a query from a transport, builds the intent-specific
// prompt, runs the model and extracts a structured result from its output
// (prompt → invoke → extract). Every call yields exactly one response with
// non-empty spoken text; failures are turned into speech here and never
// reach the transport as errors.
package mediator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/shelfd/internal/extract"
	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/invoker"
	"github.com/nadzzz/shelfd/internal/message"
	"github.com/nadzzz/shelfd/internal/prompt"
)

// ErrorSpeech is spoken when the model could not be run at all.
const ErrorSpeech = "Sorry, I encountered an error"

// Mediator is the central query engine.
type Mediator struct {
	invoker invoker.Invoker
	health  *health.Tracker
}

// New creates a Mediator around the given backend. The health tracker is
// owned by the mediator and updated after every query.
func New(inv invoker.Invoker, tracker *health.Tracker) *Mediator {
	return &Mediator{
		invoker: inv,
		health:  tracker,
	}
}

// Health returns the tracker read by the health endpoints.
func (m *Mediator) Health() *health.Tracker { return m.health }

// Warmup loads the model before the first query and then marks the service
// ready. A failed warm-up is logged and tolerated: the first real query will
// simply be slow.
func (m *Mediator) Warmup(ctx context.Context, prompt string, timeout time.Duration) {
	_ = invoker.Warmup(ctx, m.invoker, prompt, timeout)
	m.health.SetReady(true)
}

// Handle processes a single query through the full pipeline.
// This function is passed as the transport.Handler to each transport.
func (m *Mediator) Handle(ctx context.Context, req *message.QueryRequest) *message.QueryResponse {
	q := message.Query{
		ID:       uuid.NewString(),
		Text:     req.Query,
		Category: message.Category(req.Intent),
	}
	if q.Category == "" {
		q.Category = message.General
	}

	start := time.Now()
	logger := slog.With("query_id", q.ID, "intent", q.Category)
	logger.Info("query received", "query", q.Text)
	if q.Category != message.General && !q.Category.Known() {
		logger.Warn("unknown intent category, using the generic instruction")
	}

	defer m.health.Touch()

	// Step 1: Build the prompt.
	p := prompt.Build(q.Text, string(q.Category))

	// Step 2: Run the model.
	raw, err := m.invoker.Invoke(ctx, p)
	if err != nil {
		logger.Error("model invocation failed", "error", err, "duration", time.Since(start))
		return &message.QueryResponse{
			Success: false,
			Error:   err.Error(),
			Spoken:  ErrorSpeech,
		}
	}

	// Step 3: Recover the structured result.
	result := extract.Extract(raw, q.Category)

	spoken := result.SpokenText()
	if spoken == "" {
		spoken = q.Category.Apology()
	}

	logger.Info("query complete",
		"structured", result.Structured,
		"duration", time.Since(start),
		"raw_bytes", len(raw))

	return &message.QueryResponse{
		Success:  true,
		Response: result,
		Spoken:   spoken,
	}
}
