// Package health exposes the recognition host's grammar state over the
// standard gRPC health protocol and lets the consumer watch it.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// Service is SERVING while a grammar set is installed on the host.
	Service = "voicecmd.grammar"
	// DefaultAddr is the loopback health endpoint.
	DefaultAddr = "127.0.0.1:48287"
)

// Server serves grpc_health_v1 for Service.
type Server struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *grpchealth.Server
}

// Listen binds addr. Service starts NOT_SERVING.
func Listen(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen health %s: %w", addr, err)
	}

	s := &Server{
		listener: listener,
		grpc:     grpc.NewServer(),
		health:   grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// SetServing reports whether grammars are installed.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(Service, status)
}

// Serve blocks until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	if err := s.grpc.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve health: %w", err)
	}
	return nil
}
