package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// NewServer builds a traced gRPC server with the standard health service
// registered. Callers flip health status once their services are registered.
func NewServer(logf func(string, ...any), opts ...gogrpc.ServerOption) (*gogrpc.Server, *health.Server) {
	base := []gogrpc.ServerOption{
		gogrpc.StatsHandler(otelgrpc.NewServerHandler()),
		gogrpc.ChainUnaryInterceptor(CallLogInterceptor(logf)),
	}
	server := gogrpc.NewServer(append(base, opts...)...)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	return server, healthServer
}

// CallLogInterceptor logs each unary call with its status code, latency and
// trace id when the request carries a sampled span.
func CallLogInterceptor(logf func(string, ...any)) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if logf == nil {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		traceID := "-"
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		}
		logf("%s %s %s trace=%s", info.FullMethod, code, time.Since(start).Round(time.Microsecond), traceID)
		return resp, err
	}
}
