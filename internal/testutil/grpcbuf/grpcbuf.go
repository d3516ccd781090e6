// Package grpcbuf runs gRPC services over an in-memory bufconn listener for tests.
package grpcbuf

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

// StartServer spins up a bufconn-backed gRPC server after register has
// attached the services under test. Callers stop the server when done.
func StartServer(register func(*grpc.Server), opts ...grpc.ServerOption) (*grpc.Server, *bufconn.Listener) {
	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(opts...)
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	return srv, lis
}

// Dial connects to the provided bufconn listener using the standard gRPC client stack.
func Dial(ctx context.Context, lis *bufconn.Listener, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialer := func(context.Context, string) (net.Conn, error) { return lis.DialContext(ctx) }
	// bufconn does not provide TLS; the passthrough target keeps the custom dialer.
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(dialer),
	}
	base = append(base, opts...)
	return grpc.NewClient("passthrough://bufnet", base...)
}
