package mediator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/invoker"
	"github.com/nadzzz/shelfd/internal/message"
)

// fakeInvoker returns canned output and records the prompts it received.
type fakeInvoker struct {
	mu      sync.Mutex
	prompts []string
	out     string
	err     error
	delay   time.Duration
}

func (f *fakeInvoker) Name() string  { return "fake" }
func (f *fakeInvoker) Model() string { return "fake-model" }
func (f *fakeInvoker) Close() error  { return nil }

func (f *fakeInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", invoker.ContextError(ctx, f.Model())
		}
	}
	return f.out, f.err
}

func (f *fakeInvoker) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newMediator(inv invoker.Invoker) *Mediator {
	return New(inv, health.NewTracker(inv.Model()))
}

func TestHandle_StructuredAnswer(t *testing.T) {
	inv := &fakeInvoker{out: `Here you go: {"action":"find","item":"47k resistor","locations":[{"container":"drawer 3.5","position":"northwest","quantity":25}],"spoken_text":"I found 47k resistor in drawer 3.5 northwest"}`}
	m := newMediator(inv)

	resp := m.Handle(context.Background(), &message.QueryRequest{Query: "47k resistor", Intent: "find_item"})

	require.True(t, resp.Success)
	assert.Equal(t, "I found 47k resistor in drawer 3.5 northwest", resp.Spoken)
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Response)
	assert.True(t, resp.Response.Structured)
	assert.Equal(t, "find", resp.Response.Action())

	assert.Contains(t, inv.lastPrompt(), `Current query: "47k resistor"`)
	assert.Contains(t, inv.lastPrompt(), "Intent type: find_item")
}

func TestHandle_MissingSpokenTextUsesApology(t *testing.T) {
	tests := []struct {
		intent string
		want   string
	}{
		{"find_item", "I couldn't find that item"},
		{"list_container", "I couldn't access that container"},
		{"add_item", "I couldn't add that item"},
		{"find_space", "I couldn't find space"},
		{"general", "I processed your request"},
	}
	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			m := newMediator(&fakeInvoker{out: `{"action":"x"}`})
			resp := m.Handle(context.Background(), &message.QueryRequest{Query: "q", Intent: tt.intent})
			assert.True(t, resp.Success)
			assert.Equal(t, tt.want, resp.Spoken)
		})
	}
}

func TestHandle_ProseFallback(t *testing.T) {
	raw := strings.Repeat("The resistor is somewhere near the left side. ", 12)
	m := newMediator(&fakeInvoker{out: raw})

	resp := m.Handle(context.Background(), &message.QueryRequest{Query: "47k", Intent: "find_item"})

	require.True(t, resp.Success)
	assert.False(t, resp.Response.Structured)
	assert.Equal(t, "find_item", resp.Response.Action())
	assert.Len(t, resp.Spoken, 200)
	assert.Equal(t, strings.TrimSpace(raw)[:200], resp.Spoken)
}

func TestHandle_ProcessFailure(t *testing.T) {
	inv := &fakeInvoker{err: &invoker.ProcessError{ExitCode: 1, Stderr: "Error: pull model manifest"}}
	m := newMediator(inv)

	resp := m.Handle(context.Background(), &message.QueryRequest{Query: "x", Intent: "find_item"})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrorSpeech, resp.Spoken)
	assert.Contains(t, resp.Error, "exited with code 1")
	assert.Nil(t, resp.Response)
}

func TestHandle_TimeoutBounded(t *testing.T) {
	inv := invoker.Invoker(&fakeInvoker{out: "late", delay: time.Minute})
	m := newMediator(inv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	resp := m.Handle(ctx, &message.QueryRequest{Query: "x", Intent: "find_space"})

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Spoken)
	assert.Contains(t, resp.Error, invoker.ErrTimeout.Error())
}

func TestHandle_EmptyIntentIsGeneral(t *testing.T) {
	inv := &fakeInvoker{out: "ok"}
	m := newMediator(inv)

	resp := m.Handle(context.Background(), &message.QueryRequest{Query: "hello"})
	assert.Equal(t, "general", resp.Response.Action())
	assert.Contains(t, inv.lastPrompt(), "Intent type: general")
}

func TestHandle_AlwaysSpeaks(t *testing.T) {
	outcomes := []*fakeInvoker{
		{out: ""},
		{out: "   "},
		{out: "{}"},
		{out: `{"spoken_text": ""}`},
		{out: `{"spoken_text": 12}`},
		{out: "{broken"},
		{err: errors.New("exec: \"ollama\": executable file not found in $PATH")},
		{err: fmt.Errorf("%w: m", invoker.ErrTimeout)},
	}
	intents := []string{"find_item", "list_container", "add_item", "find_space", "general", "", "bogus"}

	for i, inv := range outcomes {
		for _, intent := range intents {
			m := newMediator(inv)
			resp := m.Handle(context.Background(), &message.QueryRequest{Query: "q", Intent: intent})
			assert.NotEmpty(t, resp.Spoken, "outcome %d intent %q", i, intent)
		}
	}
}

func TestHandle_TouchesHealth(t *testing.T) {
	m := newMediator(&fakeInvoker{out: "ok"})
	prev := m.Health().LastQuery()

	time.Sleep(5 * time.Millisecond)
	m.Handle(context.Background(), &message.QueryRequest{Query: "a", Intent: "find_item"})
	afterSuccess := m.Health().LastQuery()
	assert.True(t, afterSuccess.After(prev))

	m.invoker = &fakeInvoker{err: errors.New("boom")}
	time.Sleep(5 * time.Millisecond)
	m.Handle(context.Background(), &message.QueryRequest{Query: "b", Intent: "find_item"})
	assert.True(t, m.Health().LastQuery().After(afterSuccess))

	assert.Less(t, m.Health().Snapshot().LastQuery, 1.0)
}

func TestWarmup_MarksReadyEvenOnFailure(t *testing.T) {
	m := newMediator(&fakeInvoker{err: &invoker.ProcessError{ExitCode: 1}})
	assert.False(t, m.Health().Ready())

	m.Warmup(context.Background(), "test", time.Second)
	assert.True(t, m.Health().Ready())
}

func TestWarmup_SendsPrompt(t *testing.T) {
	inv := &fakeInvoker{out: "hi"}
	m := newMediator(inv)

	m.Warmup(context.Background(), "test", time.Second)
	assert.Equal(t, "test", inv.lastPrompt())
}

// selfTimedInvoker enforces its own deadline the way the real backends do and
// holds the slot until it expires.
type selfTimedInvoker struct {
	timeout time.Duration
}

func (s selfTimedInvoker) Name() string  { return "self-timed" }
func (s selfTimedInvoker) Model() string { return "fake-model" }
func (s selfTimedInvoker) Close() error  { return nil }

func (s selfTimedInvoker) Invoke(ctx context.Context, _ string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	<-ctx.Done()
	return "", invoker.ContextError(ctx, s.Model())
}

func TestHandle_QueuedQueriesBoundedByModelTimeout(t *testing.T) {
	const timeout = 100 * time.Millisecond
	m := newMediator(invoker.Limit(selfTimedInvoker{timeout: timeout}, 1, timeout))

	const queries = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		worst time.Duration
	)
	for i := 0; i < queries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			resp := m.Handle(context.Background(), &message.QueryRequest{Query: "47k resistor", Intent: "find_item"})
			elapsed := time.Since(start)

			assert.False(t, resp.Success)
			assert.Equal(t, ErrorSpeech, resp.Spoken)

			mu.Lock()
			if elapsed > worst {
				worst = elapsed
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Less(t, worst, 3*timeout)
}
