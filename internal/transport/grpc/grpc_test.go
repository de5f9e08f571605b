package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/message"
)

// startServer runs the transport on an in-memory listener and returns a
// connected client.
func startServer(t *testing.T, tracker *health.Tracker, handler func(ctx context.Context, req *message.QueryRequest) *message.QueryResponse) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	tr := New(0, tracker)
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, handler) }()

	c, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("grpc server did not stop")
		}
	})
	return c
}

func TestQuery_RoundTrip(t *testing.T) {
	tracker := health.NewTracker("m")
	tracker.SetReady(true)

	var got *message.QueryRequest
	c := startServer(t, tracker, func(ctx context.Context, req *message.QueryRequest) *message.QueryResponse {
		got = req
		return &message.QueryResponse{
			Success: true,
			Response: message.NewStructured(map[string]any{
				"action":      "list",
				"container":   "drawer 1.2",
				"spoken_text": "Drawer 1.2 contains 10k resistors",
			}),
			Spoken: "Drawer 1.2 contains 10k resistors",
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.Query(ctx, &message.QueryRequest{Query: "list drawer 1.2", Intent: "list_container"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Drawer 1.2 contains 10k resistors", resp.Spoken)
	require.NotNil(t, resp.Response)
	assert.Equal(t, "drawer 1.2", resp.Response.Fields["container"])

	require.NotNil(t, got)
	assert.Equal(t, "list drawer 1.2", got.Query)
	assert.Equal(t, "list_container", got.Intent)
}

func TestQuery_FailureShape(t *testing.T) {
	tracker := health.NewTracker("m")
	c := startServer(t, tracker, func(ctx context.Context, req *message.QueryRequest) *message.QueryResponse {
		return &message.QueryResponse{Error: "boom", Spoken: "Sorry, I encountered an error"}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.Query(ctx, &message.QueryRequest{Query: "x", Intent: "find_item"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Error)
	assert.Nil(t, resp.Response)
}

func TestHealthService(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ready := health.NewTracker("m")
	ready.SetReady(true)
	c := startServer(t, ready, nil)
	serving, err := c.Serving(ctx)
	require.NoError(t, err)
	assert.True(t, serving)

	c = startServer(t, health.NewTracker("m"), nil)
	serving, err = c.Serving(ctx)
	require.NoError(t, err)
	assert.False(t, serving)
}

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&message.QueryRequest{Query: "q", Intent: "find_item"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"q","intent":"find_item"}`, string(data))

	var req message.QueryRequest
	require.NoError(t, codec.Unmarshal(data, &req))
	assert.Equal(t, "q", req.Query)
}

func TestServe_CloseConcurrently(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	tr := New(0, health.NewTracker("m"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, nil) }()

	for i := 0; i < 3; i++ {
		assert.NoError(t, tr.Close())
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}
