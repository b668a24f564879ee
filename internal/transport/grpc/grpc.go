package grpctransport

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the health-checked service name.
const ServiceName = "cafeteria"

// GRPCTransport represents the gRPC transport layer. It serves the
// standard health service only.
type GRPCTransport struct {
	server   *grpc.Server
	listener net.Listener
	health   *health.Server
}

// MustNewGRPCTransport listens on server.grpc.port.
func MustNewGRPCTransport() *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(fmt.Sprintf("failed to listen for gRPC: %v", err))
	}

	return NewGRPCTransport(listener)
}

// NewGRPCTransport serves on an existing listener.
func NewGRPCTransport(listener net.Listener) *GRPCTransport {
	g := &GRPCTransport{
		server:   newGRPCServer(),
		listener: listener,
		health:   health.NewServer(),
	}
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	g.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	g.RegisterServices()

	return g
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// MarkServing reports the service healthy once its tables are loaded.
func (g *GRPCTransport) MarkServing() {
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	g.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown reports NOT_SERVING and gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	healthpb.RegisterHealthServer(g.server, g.health)
}

// newGRPCServer creates a new gRPC server with keepalive settings from config.
func newGRPCServer() *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle:     viper.GetDuration("server.grpc.keepalive.max_connection_idle"),
		MaxConnectionAge:      viper.GetDuration("server.grpc.keepalive.max_connection_age"),
		MaxConnectionAgeGrace: viper.GetDuration("server.grpc.keepalive.max_connection_age_grace"),
		Time:                  viper.GetDuration("server.grpc.keepalive.time"),
		Timeout:               viper.GetDuration("server.grpc.keepalive.timeout"),
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime:             viper.GetDuration("server.grpc.keepalive.min_time"),
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
	}

	return grpc.NewServer(opts...)
}
