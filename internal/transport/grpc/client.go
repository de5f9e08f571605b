package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nadzzz/shelfd/internal/message"
)

// Client calls the Inventory service of a remote mediator.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for target (host:port or any gRPC target URI).
// The connection is established lazily on the first call.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Query sends one query and returns the mediator's response. Only this
// call uses the json codec; the health service keeps protobuf.
func (c *Client) Query(ctx context.Context, req *message.QueryRequest) (*message.QueryResponse, error) {
	resp := new(message.QueryResponse)
	if err := c.conn.Invoke(ctx, QueryMethod, req, resp, grpc.CallContentSubtype(jsonCodec{}.Name())); err != nil {
		return nil, err
	}
	return resp, nil
}

// Serving reports whether the remote health service says the mediator is serving.
func (c *Client) Serving(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
