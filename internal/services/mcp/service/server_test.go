package service

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	notationservice "github.com/subsigma/rolldice/internal/api/grpc/notation"
	platformgrpc "github.com/subsigma/rolldice/internal/platform/grpc"
)

func startNotationServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcServer, healthServer := platformgrpc.NewServer(nil)
	notationservice.RegisterNotationServer(grpcServer, notationservice.NewService())
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	t.Cleanup(func() {
		grpcServer.GracefulStop()
		_ = listener.Close()
		select {
		case <-serveErr:
		case <-time.After(time.Second):
		}
	})
	return listener.Addr().String()
}

func connectClient(t *testing.T, ctx context.Context, addr string) (*mcp.ClientSession, <-chan error) {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- runWithTransport(ctx, addr, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return session, serveErr
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestRunWithTransportServesNotationTools(t *testing.T) {
	addr := startNotationServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session, serveErr := connectClient(t, ctx, addr)
	defer session.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer callCancel()

	tools, err := session.ListTools(callCtx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	if !names["roll_notation"] || !names["notation_statistics"] {
		t.Fatalf("expected notation tools, got %v", names)
	}

	rolled, err := session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      "roll_notation",
		Arguments: map[string]any{"expression": "3 + 4 * 2", "view": "total", "seed": 5},
	})
	if err != nil {
		t.Fatalf("call roll_notation: %v", err)
	}
	if rolled.IsError {
		t.Fatalf("roll_notation returned tool error: %s", textOf(t, rolled))
	}
	if got := textOf(t, rolled); got != "11" {
		t.Fatalf("roll_notation content = %q, want 11", got)
	}

	summary, err := session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      "notation_statistics",
		Arguments: map[string]any{"expression": "5", "seed": 1},
	})
	if err != nil {
		t.Fatalf("call notation_statistics: %v", err)
	}
	if !strings.HasPrefix(textOf(t, summary), "Statistics for 1000 rolls of: 5") {
		t.Fatalf("unexpected statistics content: %q", textOf(t, summary))
	}

	malformed, err := session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      "roll_notation",
		Arguments: map[string]any{"expression": "(1+2"},
	})
	if err == nil && !malformed.IsError {
		t.Fatal("expected malformed expression to fail")
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunRejectsUnreachableNotationServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, "")
	if err == nil {
		t.Fatal("expected error for empty address")
	}
	if !strings.Contains(err.Error(), "connect to notation server") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServeWithTransportRequiresServer(t *testing.T) {
	var server *Server
	if err := server.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
	if err := server.Close(); err != nil {
		t.Fatalf("close nil server: %v", err)
	}
}
