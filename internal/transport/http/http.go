// Package http implements the HTTP transport for shelfd.
//
// This transport exposes the query API used by the voice assistant host
// (POST /query), the service health report (GET /health), the liveness and
// readiness probes, and the Swagger UI for the API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/shelfd/docs" // registers the OpenAPI document
	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/mediator"
	"github.com/nadzzz/shelfd/internal/message"
	"github.com/nadzzz/shelfd/internal/transport"
)

// maxBodyBytes bounds the size of a query request body.
const maxBodyBytes = 1 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	addr    string
	tracker *health.Tracker

	mu     sync.Mutex
	server *http.Server
}

// New creates a new HTTP transport listening on addr (host:port).
func New(addr string, tracker *health.Tracker) *Transport {
	return &Transport{addr: addr, tracker: tracker}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	server := &http.Server{
		Addr:              t.addr,
		Handler:           NewMux(handler, t.tracker),
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.mu.Lock()
	t.server = server
	t.mu.Unlock()

	slog.Info("http transport listening", "addr", t.addr)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// NewMux builds the route table served by the transport.
func NewMux(handler transport.Handler, tracker *health.Tracker) *http.ServeMux {
	mux := http.NewServeMux()

	// POST /query: free-text inventory query, always answered with speech.
	mux.HandleFunc("POST /query", func(w http.ResponseWriter, r *http.Request) {
		handleQuery(w, r, handler)
	})

	// GET /health: model name and time since the last query.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(w, r, tracker)
	})

	// GET /healthz, GET /readyz: container probes.
	tracker.Register(mux)

	// Swagger UI serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// handleQuery processes a POST /query request.
//
// @Summary     Ask the inventory a question
// @Description The query is turned into an intent-specific prompt, run through the local model,
// @Description and the model's JSON answer is returned verbatim in "response". When the model
// @Description answers in prose, "response" holds {"action", "spoken_text"} with the trimmed text.
// @Description "spoken" is always present and safe to read aloud.
// @Tags        query
// @Accept      json
// @Produce     json
// @Param       query  body      message.QueryRequest   true  "Query and intent category (find_item, list_container, add_item, find_space, general)"
// @Success     200    {object}  message.QueryResponse  "Answer, or success=false with an error and an apology"
// @Failure     400    {object}  message.QueryResponse  "Request body is not a JSON query"
// @Router      /query [post]
func handleQuery(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var req message.QueryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		slog.Warn("rejecting query", "error", err)
		writeJSON(w, http.StatusBadRequest, &message.QueryResponse{
			Success: false,
			Error:   "invalid json: " + err.Error(),
			Spoken:  mediator.ErrorSpeech,
		})
		return
	}

	writeJSON(w, http.StatusOK, handler(r.Context(), &req))
}

// handleHealth processes a GET /health request.
//
// @Summary     Service health
// @Description Reports the served model and the number of seconds since the last completed query.
// @Tags        health
// @Produce     json
// @Success     200  {object}  message.HealthResponse
// @Router      /health [get]
func handleHealth(w http.ResponseWriter, _ *http.Request, tracker *health.Tracker) {
	writeJSON(w, http.StatusOK, tracker.Snapshot())
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	t.mu.Lock()
	server := t.server
	t.mu.Unlock()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}
