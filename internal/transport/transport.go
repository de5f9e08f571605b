// Package transport defines the interface for pluggable query transports.
//
// Each transport (HTTP, gRPC) exposes the same query contract and hands
// requests to the mediator. The mediator doesn't care how queries arrive;
// it only works with the Handler contract.
package transport

import (
	"context"

	"github.com/nadzzz/shelfd/internal/message"
)

// Handler processes an incoming query and returns its response. It never
// fails: errors are already folded into the response.
type Handler func(ctx context.Context, req *message.QueryRequest) *message.QueryResponse

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting queries and passes them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
