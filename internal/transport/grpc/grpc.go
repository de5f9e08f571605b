// Package grpc implements the gRPC transport for shelfd.
//
// The Inventory service carries the same JSON request and response bodies
// as the HTTP API, using a "json" codec selected by content-subtype, so no
// generated stubs are needed. The standard grpc.health.v1 service is served
// next to it for orchestrator probes.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/message"
	"github.com/nadzzz/shelfd/internal/transport"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "shelfd.v1.Inventory"

	// QueryMethod is the full method name of the query RPC.
	QueryMethod = "/" + ServiceName + "/Query"
)

// jsonCodec marshals messages as JSON.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// inventoryServer is the handler type checked by grpc.Server.RegisterService.
type inventoryServer interface {
	Query(ctx context.Context, req *message.QueryRequest) (*message.QueryResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*inventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shelfd/v1/inventory",
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(inventoryServer).Query(ctx, req.(*message.QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// service adapts a transport.Handler to inventoryServer.
type service struct {
	handler transport.Handler
}

func (s *service) Query(ctx context.Context, req *message.QueryRequest) (*message.QueryResponse, error) {
	return s.handler(ctx, req), nil
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port    int
	tracker *health.Tracker

	mu     sync.Mutex
	server *grpc.Server
	health *grpchealth.Server
}

// New creates a new gRPC transport on the given port.
func New(port int, tracker *health.Tracker) *Transport {
	return &Transport{port: port, tracker: tracker}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve runs the gRPC server on an existing listener until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	server := grpc.NewServer()
	server.RegisterService(&serviceDesc, &service{handler: handler})

	hs := grpchealth.NewServer()
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if t.tracker.Ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
	healthpb.RegisterHealthServer(server, hs)

	t.mu.Lock()
	t.server, t.health = server, hs
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		hs.Shutdown()
		server.GracefulStop()
	}()

	if err := server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.mu.Lock()
	server, hs := t.server, t.health
	t.mu.Unlock()

	if hs != nil {
		hs.Shutdown()
	}
	if server != nil {
		server.GracefulStop()
	}
	return nil
}
