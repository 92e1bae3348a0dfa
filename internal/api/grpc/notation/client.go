package notation

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// Client calls NotationService over a gRPC connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Evaluate evaluates an expression remotely. Malformed expressions are
// returned as *apperrors.Error so errors.Is(err, ErrMalformedExpression)
// holds on both sides of the wire.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResponse, error) {
	if c == nil || c.conn == nil {
		return EvaluateResponse{}, fmt.Errorf("notation client is not configured")
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, EvaluateMethod, encodeRequest(req.Expression, req.Seed), out); err != nil {
		return EvaluateResponse{}, remoteError(err)
	}
	return decodeEvaluateResponse(out)
}

// Statistics samples an expression remotely.
func (c *Client) Statistics(ctx context.Context, req StatisticsRequest) (StatisticsResponse, error) {
	if c == nil || c.conn == nil {
		return StatisticsResponse{}, fmt.Errorf("notation client is not configured")
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, StatisticsMethod, encodeRequest(req.Expression, req.Seed), out); err != nil {
		return StatisticsResponse{}, remoteError(err)
	}
	return decodeStatisticsResponse(out)
}

func remoteError(err error) error {
	if domainErr := apperrors.FromGRPCStatus(err); domainErr != nil {
		return domainErr
	}
	return fmt.Errorf("call notation service: %w", err)
}
