// Package intent adapts the voice assistant's recognised intents to
// inventory queries.
//
// Each intent type owns a canonical phrasing built from its slots and a
// category tag. The adapter sends the phrase through a Querier and turns the
// answer into speech, falling back to a per-intent phrase when the answer
// carries none.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nadzzz/shelfd/internal/message"
)

// Intent type names as registered with the voice assistant.
const (
	FindItem      = "FindItem"
	ListContainer = "ListContainer"
	AddItem       = "AddItem"
	FindSpace     = "FindSpace"
)

// ErrUnknownIntent is returned for an intent type with no handler.
var ErrUnknownIntent = errors.New("unknown intent")

// Querier sends one query to the mediator. Implementations never fail; a
// transport problem comes back as a response with fallback speech.
type Querier interface {
	Query(ctx context.Context, text, intent string) *message.QueryResponse
}

// Slot is one recognised value in an intent.
type Slot struct {
	Value string `json:"value"`
}

// Slots maps slot names to values.
type Slots map[string]Slot

// Get returns the value of a slot, or "" when it was not recognised.
func (s Slots) Get(name string) string {
	return s[name].Value
}

// Intent is a recognised voice intent.
type Intent struct {
	Type  string `json:"type"`
	Slots Slots  `json:"slots"`
}

// Response is the speech handed back to the voice assistant.
type Response struct {
	Speech string `json:"speech"`
}

// SetSpeech sets the text to be spoken.
func (r *Response) SetSpeech(text string) {
	r.Speech = text
}

// Handler describes how one intent type becomes a query.
type Handler struct {
	// Type is the intent type name.
	Type string

	// Slots names the slots the phrase is built from.
	Slots []string

	// Category is sent alongside the phrase.
	Category message.Category

	// Phrase builds the query text. Missing slots arrive as "".
	Phrase func(s Slots) string
}

// Handlers is the built-in intent table.
var Handlers = []Handler{
	{
		Type:     FindItem,
		Slots:    []string{"item_description"},
		Category: message.FindItem,
		Phrase:   func(s Slots) string { return s.Get("item_description") },
	},
	{
		Type:     ListContainer,
		Slots:    []string{"container"},
		Category: message.ListContainer,
		Phrase:   func(s Slots) string { return "list " + s.Get("container") },
	},
	{
		Type:     AddItem,
		Slots:    []string{"item_description", "location"},
		Category: message.AddItem,
		Phrase: func(s Slots) string {
			return fmt.Sprintf("add %s to %s", s.Get("item_description"), s.Get("location"))
		},
	},
	{
		Type:     FindSpace,
		Slots:    []string{"item_description"},
		Category: message.FindSpace,
		Phrase:   func(s Slots) string { return "find space for " + s.Get("item_description") },
	},
}

// Adapter dispatches intents to a Querier.
type Adapter struct {
	querier  Querier
	handlers map[string]Handler
}

// New creates an Adapter with the built-in handlers.
func New(q Querier) *Adapter {
	a := &Adapter{
		querier:  q,
		handlers: make(map[string]Handler, len(Handlers)),
	}
	for _, h := range Handlers {
		a.handlers[h.Type] = h
	}
	return a
}

// Types returns the registered intent types in sorted order.
func (a *Adapter) Types() []string {
	types := make([]string, 0, len(a.handlers))
	for t := range a.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Lookup returns the handler for an intent type.
func (a *Adapter) Lookup(intentType string) (Handler, bool) {
	h, ok := a.handlers[intentType]
	return h, ok
}

// Handle runs one intent and returns the speech for it. The only error is
// ErrUnknownIntent; missing slots are sent as empty strings.
func (a *Adapter) Handle(ctx context.Context, in Intent) (*Response, error) {
	h, ok := a.handlers[in.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}

	text := h.Phrase(in.Slots)
	slog.Debug("intent triggered", "intent", in.Type, "query", text)

	result := a.querier.Query(ctx, text, string(h.Category))

	speech := h.Category.Apology()
	if result != nil && result.Spoken != "" {
		speech = result.Spoken
	}

	resp := &Response{}
	resp.SetSpeech(speech)
	return resp, nil
}

// Query forwards a free-text question. An empty category means general.
func (a *Adapter) Query(ctx context.Context, text, category string) *message.QueryResponse {
	if category == "" {
		category = string(message.General)
	}
	return a.querier.Query(ctx, text, category)
}
