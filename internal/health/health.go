// Package health tracks service liveness for the mediator.
//
// The Tracker records which model is served and when the last query
// completed. The health endpoint reads it on demand; nothing is cached.
// Docker and Kubernetes probes use /healthz (liveness) and /readyz, which
// reports ready once the model warm-up has finished.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nadzzz/shelfd/internal/message"
)

// Tracker is the process-wide service health state. It has a single owner
// (the mediator) and is safe for concurrent use.
type Tracker struct {
	model string
	now   func() time.Time
	ready atomic.Bool

	mu        sync.Mutex
	lastQuery time.Time
}

// NewTracker creates a tracker for model. The last-query timestamp starts
// at construction time.
func NewTracker(model string) *Tracker {
	return newTracker(model, time.Now)
}

func newTracker(model string, now func() time.Time) *Tracker {
	return &Tracker{model: model, now: now, lastQuery: now()}
}

// Model returns the model name reported by the health endpoint.
func (t *Tracker) Model() string { return t.model }

// Touch records that a query just completed. The timestamp never moves backwards.
func (t *Tracker) Touch() {
	now := t.now()
	t.mu.Lock()
	if now.After(t.lastQuery) {
		t.lastQuery = now
	}
	t.mu.Unlock()
}

// LastQuery returns when the last query completed.
func (t *Tracker) LastQuery() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastQuery
}

// Snapshot computes the health report as of now.
func (t *Tracker) Snapshot() message.HealthResponse {
	since := t.now().Sub(t.LastQuery())
	if since < 0 {
		since = 0
	}
	return message.HealthResponse{
		Status:    "healthy",
		Model:     t.model,
		LastQuery: since.Seconds(),
	}
}

// SetReady marks the service as ready to accept queries.
func (t *Tracker) SetReady(ready bool) {
	t.ready.Store(ready)
}

// Ready reports whether warm-up has finished.
func (t *Tracker) Ready() bool {
	return t.ready.Load()
}

// Register adds the liveness and readiness probes to mux.
func (t *Tracker) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !t.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
