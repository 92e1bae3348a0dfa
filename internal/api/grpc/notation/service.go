// Package notation exposes the dice notation engine as the
// rolldice.notation.v1.NotationService gRPC service.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code; the field layout is documented on the request and
// response types in this package.
package notation

import (
	"context"
	stderrors "errors"
	"log"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/subsigma/rolldice/internal/core/random"
	engine "github.com/subsigma/rolldice/internal/notation"
	"github.com/subsigma/rolldice/internal/notation/stats"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// Fully qualified names of the service and its methods.
const (
	ServiceName      = "rolldice.notation.v1.NotationService"
	EvaluateMethod   = "/" + ServiceName + "/Evaluate"
	StatisticsMethod = "/" + ServiceName + "/Statistics"
)

const errorLocale = "en-US"

// NotationServer is the server API for NotationService.
type NotationServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Statistics(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes NotationService for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Statistics", Handler: statisticsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rolldice/notation/v1/notation.proto",
}

// RegisterNotationServer registers srv on s.
func RegisterNotationServer(s grpc.ServiceRegistrar, srv NotationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotationServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NotationServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func statisticsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotationServer).Statistics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StatisticsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NotationServer).Statistics(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements NotationServer on top of the notation engine.
type Service struct {
	seedFunc func() (int64, error) // Generates seeds when the caller sends none.
}

// NewService creates a notation service that seeds rolls from crypto/rand.
func NewService() *Service {
	return &Service{seedFunc: random.NewSeed}
}

// Evaluate runs one evaluation and returns every textual view.
func (s *Service) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	expression, requested, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	seed, source, err := s.resolveSeed(requested)
	if err != nil {
		return nil, err
	}

	result, err := engine.Evaluate(expression, engine.NewSource(seed))
	if err != nil {
		return nil, handleError(ctx, err)
	}

	return encodeEvaluateResponse(EvaluateResponse{
		Total:      result.Total(),
		Postfix:    strings.Join(result.Postfix, " "),
		Trace:      strings.Split(strings.TrimSuffix(result.Trace(), "\n"), "\n"),
		Results:    result.Results(),
		Rolls:      rollGroups(result.Rolls()),
		SeedUsed:   seed,
		SeedSource: source,
	}), nil
}

// Statistics samples the expression and returns the aggregates.
func (s *Service) Statistics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	expression, requested, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	seed, _, err := s.resolveSeed(requested)
	if err != nil {
		return nil, err
	}

	summary, err := stats.Compute(ctx, expression, seed)
	if err != nil {
		return nil, handleError(ctx, err)
	}

	return encodeStatisticsResponse(StatisticsResponse{
		Expression: summary.Expression,
		Sum:        summary.Sum,
		Mean:       summary.Mean,
		Median:     summary.Median,
		Mode:       summary.Mode,
		Max:        summary.Max,
		Min:        summary.Min,
		Samples:    len(summary.Samples),
		SeedUsed:   seed,
	}), nil
}

func (s *Service) resolveSeed(requested *int64) (int64, random.SeedSource, error) {
	if s.seedFunc == nil {
		return 0, "", status.Error(codes.Internal, "seed generator is not configured")
	}
	seed, source, err := random.ResolveSeed(requested, s.seedFunc)
	if err != nil {
		return 0, "", apperrors.Wrap(apperrors.CodeSeedUnavailable, "generate seed", err).ToGRPCStatus(errorLocale, "dice could not be seeded")
	}
	return seed, source, nil
}

// handleError converts engine failures to gRPC statuses. Malformed
// expressions keep their code and stage in the ErrorInfo details.
func handleError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status.FromContextError(ctxErr).Err()
	}
	var domainErr *apperrors.Error
	if stderrors.As(err, &domainErr) {
		return domainErr.ToGRPCStatus(errorLocale, domainErr.Error())
	}
	traceID := "-"
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
	}
	log.Printf("notation: unexpected error (trace=%s): %v", traceID, err)
	return status.Error(codes.Internal, "evaluate expression")
}
