package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"

	notationservice "github.com/subsigma/rolldice/internal/api/grpc/notation"
	platformgrpc "github.com/subsigma/rolldice/internal/platform/grpc"
	"github.com/subsigma/rolldice/internal/platform/timeouts"
)

const (
	serverName    = "rolldice MCP"
	serverVersion = "0.1.0"
)

// Server hosts the MCP server and its connection to the notation service.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New connects to the notation service at grpcAddr and registers the tools.
func New(ctx context.Context, grpcAddr string) (*Server, error) {
	conn, err := dialNotationGRPC(ctx, grpcAddr)
	if err != nil {
		return nil, err
	}
	server, err := newServer(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return server, nil
}

func newServer(conn *grpc.ClientConn) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	if err := registerNotationTools(mcpServer, notationservice.NewClient(conn)); err != nil {
		return nil, fmt.Errorf("register notation tools: %w", err)
	}
	return &Server{mcpServer: mcpServer, conn: conn}, nil
}

// Run connects to the notation service and serves MCP over stdio until ctx ends.
func Run(ctx context.Context, grpcAddr string) error {
	return runWithTransport(ctx, grpcAddr, &mcp.StdioTransport{})
}

func runWithTransport(ctx context.Context, grpcAddr string, transport mcp.Transport) error {
	server, err := New(ctx, grpcAddr)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

// Serve serves MCP over stdio and blocks until it stops or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP session and then closes the gRPC
// connection on every exit path.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func dialNotationGRPC(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	addr = strings.TrimSpace(addr)
	logf := func(format string, args ...any) {
		log.Printf("notation %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(ctx, nil, addr, timeouts.GRPCDial, logf)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to notation server at %s: %w", addr, dialErr.Err)
		}
		return nil, fmt.Errorf("notation server at %s is not healthy: %w", addr, err)
	}
	return conn, nil
}
