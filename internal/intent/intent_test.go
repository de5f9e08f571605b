package intent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/shelfd/internal/message"
)

type call struct {
	text   string
	intent string
}

// recorder is a Querier that remembers every call and answers with resp.
type recorder struct {
	mu    sync.Mutex
	calls []call
	resp  *message.QueryResponse
}

func (r *recorder) Query(_ context.Context, text, intent string) *message.QueryResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{text: text, intent: intent})
	return r.resp
}

func (r *recorder) last(t *testing.T) call {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.calls)
	return r.calls[len(r.calls)-1]
}

func TestHandle_Phrasing(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   call
	}{
		{
			name:   "find item",
			intent: Intent{Type: FindItem, Slots: Slots{"item_description": {Value: "47k resistor"}}},
			want:   call{text: "47k resistor", intent: "find_item"},
		},
		{
			name:   "list container",
			intent: Intent{Type: ListContainer, Slots: Slots{"container": {Value: "drawer 1.2"}}},
			want:   call{text: "list drawer 1.2", intent: "list_container"},
		},
		{
			name: "add item",
			intent: Intent{Type: AddItem, Slots: Slots{
				"item_description": {Value: "2.2uF capacitor"},
				"location":         {Value: "shelf 1.3"},
			}},
			want: call{text: "add 2.2uF capacitor to shelf 1.3", intent: "add_item"},
		},
		{
			name:   "find space",
			intent: Intent{Type: FindSpace, Slots: Slots{"item_description": {Value: "oscilloscope"}}},
			want:   call{text: "find space for oscilloscope", intent: "find_space"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recorder{resp: &message.QueryResponse{Success: true, Spoken: "ok"}}
			resp, err := New(q).Handle(context.Background(), tt.intent)
			require.NoError(t, err)

			assert.Equal(t, tt.want, q.last(t))
			assert.Equal(t, "ok", resp.Speech)
		})
	}
}

func TestHandle_MissingSlots(t *testing.T) {
	q := &recorder{resp: &message.QueryResponse{Success: true, Spoken: "Where should it go?"}}
	a := New(q)

	resp, err := a.Handle(context.Background(), Intent{Type: AddItem, Slots: Slots{"item_description": {Value: "solder"}}})
	require.NoError(t, err)
	assert.Equal(t, call{text: "add solder to ", intent: "add_item"}, q.last(t))
	assert.Equal(t, "Where should it go?", resp.Speech)

	_, err = a.Handle(context.Background(), Intent{Type: FindItem})
	require.NoError(t, err)
	assert.Equal(t, call{text: "", intent: "find_item"}, q.last(t))
}

func TestHandle_DefaultSpeech(t *testing.T) {
	want := map[string]string{
		FindItem:      "I couldn't find that item",
		ListContainer: "I couldn't access that container",
		AddItem:       "I couldn't add that item",
		FindSpace:     "I couldn't find space",
	}

	for intentType, speech := range want {
		t.Run(intentType, func(t *testing.T) {
			q := &recorder{resp: &message.QueryResponse{Success: true}}
			resp, err := New(q).Handle(context.Background(), Intent{Type: intentType})
			require.NoError(t, err)
			assert.Equal(t, speech, resp.Speech)

			q.resp = nil
			resp, err = New(q).Handle(context.Background(), Intent{Type: intentType})
			require.NoError(t, err)
			assert.Equal(t, speech, resp.Speech)
		})
	}
}

func TestHandle_FallbackSpeechPassesThrough(t *testing.T) {
	q := &recorder{resp: &message.QueryResponse{Success: false, Spoken: "Sorry, I couldn't connect to the inventory system"}}

	resp, err := New(q).Handle(context.Background(), Intent{Type: FindItem, Slots: Slots{"item_description": {Value: "47k resistor"}}})
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't connect to the inventory system", resp.Speech)
}

func TestHandle_UnknownIntent(t *testing.T) {
	q := &recorder{}
	_, err := New(q).Handle(context.Background(), Intent{Type: "TurnOnLights"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownIntent))
	assert.Contains(t, err.Error(), "TurnOnLights")
	assert.Empty(t, q.calls)
}

func TestQuery_DefaultCategory(t *testing.T) {
	q := &recorder{resp: &message.QueryResponse{Success: true, Spoken: "done"}}
	a := New(q)

	resp := a.Query(context.Background(), "what is in the blue bin", "")
	assert.Equal(t, "done", resp.Spoken)
	assert.Equal(t, call{text: "what is in the blue bin", intent: "general"}, q.last(t))

	a.Query(context.Background(), "47k resistor", "find_item")
	assert.Equal(t, call{text: "47k resistor", intent: "find_item"}, q.last(t))
}

func TestTypes(t *testing.T) {
	a := New(&recorder{})
	assert.Equal(t, []string{AddItem, FindItem, FindSpace, ListContainer}, a.Types())

	h, ok := a.Lookup(AddItem)
	require.True(t, ok)
	assert.Equal(t, []string{"item_description", "location"}, h.Slots)

	_, ok = a.Lookup("Nope")
	assert.False(t, ok)
}
