// Package server wires the notation gRPC service and its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	notationservice "github.com/subsigma/rolldice/internal/api/grpc/notation"
	"github.com/subsigma/rolldice/internal/platform/config"
	platformgrpc "github.com/subsigma/rolldice/internal/platform/grpc"
	"github.com/subsigma/rolldice/internal/platform/timeouts"
)

type serverEnv struct {
	LogCalls bool `env:"ROLLDICE_NOTATION_LOG_CALLS" envDefault:"true"`
	// Upper bound on concurrent streams per client connection; Statistics
	// calls are CPU bound.
	MaxStreams uint32 `env:"ROLLDICE_NOTATION_MAX_STREAMS" envDefault:"64"`
}

func loadServerEnv() (serverEnv, error) {
	var cfg serverEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return serverEnv{}, err
	}
	return cfg, nil
}

// Server hosts the notation gRPC API.
type Server struct {
	listener        net.Listener
	grpcServer      *grpc.Server
	health          *health.Server
	shutdownTimeout time.Duration
}

// New creates a notation server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a notation server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	env, err := loadServerEnv()
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	var logf func(string, ...any)
	if env.LogCalls {
		logf = log.Printf
	}
	grpcServer, healthServer := platformgrpc.NewServer(logf, grpc.MaxConcurrentStreams(env.MaxStreams))
	notationservice.RegisterNotationServer(grpcServer, notationservice.NewService())
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(notationservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:        listener,
		grpcServer:      grpcServer,
		health:          healthServer,
		shutdownTimeout: timeouts.Shutdown,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a notation server until context cancellation.
func Run(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("notation server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.stopGracefully()
		return serveResult(<-serveErr)
	case err := <-serveErr:
		return serveResult(err)
	}
}

// stopGracefully drains in-flight calls, forcing a stop once the shutdown
// timeout elapses.
func (s *Server) stopGracefully() {
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(s.shutdownTimeout):
		log.Printf("notation server: graceful stop exceeded %v, forcing stop", s.shutdownTimeout)
		s.grpcServer.Stop()
		<-stopped
	}
}

func serveResult(err error) error {
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}

// Close releases notation server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
