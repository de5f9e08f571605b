// Package message defines the core data types flowing through the shelfd pipeline.
package message

import (
	"encoding/json"
	"fmt"
)

// Category is the coarse intent label that selects a prompt template and
// the default speech used when the model gives nothing usable back.
type Category string

const (
	// FindItem asks where an item is stored.
	FindItem Category = "find_item"

	// ListContainer asks what a drawer or shelf holds.
	ListContainer Category = "list_container"

	// AddItem records that an item was put somewhere.
	AddItem Category = "add_item"

	// FindSpace asks where a new item would fit.
	FindSpace Category = "find_space"

	// General is used when the caller did not name a category.
	General Category = "general"
)

// Categories lists every category with a dedicated response schema.
var Categories = []Category{FindItem, AddItem, ListContainer, FindSpace}

// Known reports whether c has a dedicated response schema.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Apology returns the default speech for a category when no usable
// spoken text could be recovered from the model.
func (c Category) Apology() string {
	switch c {
	case FindItem:
		return "I couldn't find that item"
	case ListContainer:
		return "I couldn't access that container"
	case AddItem:
		return "I couldn't add that item"
	case FindSpace:
		return "I couldn't find space"
	default:
		return "I processed your request"
	}
}

// Query is a single inventory question. It is created per request and never stored.
type Query struct {
	// ID correlates log lines for one query (UUID).
	ID string `json:"id"`

	// Text is the free-text question, passed to the model verbatim.
	Text string `json:"text"`

	// Category selects the response schema.
	Category Category `json:"category"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query  string `json:"query" example:"47k resistor"`
	Intent string `json:"intent" example:"find_item"`
}

// QueryResponse is the body returned by POST /query, in both the success
// and the failure shape. Spoken is always present.
type QueryResponse struct {
	Success  bool    `json:"success"`
	Response *Result `json:"response,omitempty" swaggertype:"object"`
	Error    string  `json:"error,omitempty"`
	Spoken   string  `json:"spoken"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Model  string `json:"model" example:"qwen2.5:3b-instruct-q4_K_M"`

	// LastQuery is the number of seconds since the last completed query.
	LastQuery float64 `json:"last_query" example:"0.42"`
}

// Result is the value recovered from the model output.
//
// Fields holds the decoded JSON object verbatim when the model produced one
// (Structured is true). Otherwise it holds the fallback shape
// {"action": <category>, "spoken_text": <raw text>}. It marshals as Fields.
type Result struct {
	Fields     map[string]any
	Structured bool
}

// NewStructured wraps an object decoded from model output.
func NewStructured(fields map[string]any) *Result {
	return &Result{Fields: fields, Structured: true}
}

// NewUnstructured builds the fallback result for output that could not be decoded.
func NewUnstructured(category Category, spoken string) *Result {
	return &Result{
		Fields: map[string]any{
			"action":      string(category),
			"spoken_text": spoken,
		},
	}
}

// SpokenText returns the spoken_text field if it is a non-empty string.
func (r *Result) SpokenText() string {
	if r == nil {
		return ""
	}
	s, _ := r.Fields["spoken_text"].(string)
	return s
}

// Action returns the action field if it is a string.
func (r *Result) Action() string {
	if r == nil {
		return ""
	}
	s, _ := r.Fields["action"].(string)
	return s
}

// MarshalJSON encodes the verbatim fields.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Fields)
}

// UnmarshalJSON decodes an object received over the wire. The origin of the
// object is unknown to the receiver, so it is treated as structured.
func (r *Result) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Fields = fields
	r.Structured = true
	return nil
}

// as re-decodes the verbatim fields into a typed view.
func (r *Result) as(v any) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding result view: %w", err)
	}
	return nil
}
