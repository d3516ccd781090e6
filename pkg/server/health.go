package server

import (
	"net"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gateway's service name in gRPC health checks.
const HealthService = "skynet.gateway"

// Health serves grpc.health.v1 for the gateway. It reports NOT_SERVING until
// SetServing(true) is called once the session is up.
type Health struct {
	addr string
	hs   *health.Server
	srv  *grpc.Server
}

// NewHealth returns a health service for port. Run is a no-op for port 0.
func NewHealth(port int) *Health {
	h := &Health{hs: health.NewServer(), srv: grpc.NewServer()}
	h.Register(h.srv)
	if port > 0 {
		h.addr = net.JoinHostPort("", strconv.Itoa(port))
	}
	h.SetServing(false)
	return h
}

// Register attaches the health service to s.
func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.hs)
}

// SetServing flips both the overall and the gateway service status.
func (h *Health) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus("", status)
	h.hs.SetServingStatus(HealthService, status)
}

// Run listens on the configured port and blocks until Stop.
func (h *Health) Run() error {
	if h.addr == "" {
		return nil
	}
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return err
	}
	zap.L().Info("grpc health listening", zap.String("addr", h.addr))
	return h.srv.Serve(lis)
}

// Stop marks the service as shutting down and stops the listener.
func (h *Health) Stop() {
	h.hs.Shutdown()
	h.srv.GracefulStop()
}
