package domain

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	notationservice "github.com/subsigma/rolldice/internal/api/grpc/notation"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// NotationClient is the slice of the notation gRPC client the tools use.
type NotationClient interface {
	Evaluate(context.Context, notationservice.EvaluateRequest) (notationservice.EvaluateResponse, error)
	Statistics(context.Context, notationservice.StatisticsRequest) (notationservice.StatisticsResponse, error)
}

// View names accepted by roll_notation.
const (
	ViewTrace   = "trace"
	ViewResults = "results"
	ViewTotal   = "total"
)

// RollNotationInput represents the MCP tool input for evaluating notation.
type RollNotationInput struct {
	Expression string `json:"expression" jsonschema:"dice notation expression, e.g. 4d6x1+2"`
	Seed       *int64 `json:"seed,omitempty" jsonschema:"optional seed to replay a previous evaluation"`
	View       string `json:"view,omitempty" jsonschema:"text view returned as content: trace, results (default) or total"`
}

// RollNotationResult represents the MCP tool output for evaluating notation.
// Totals are decimal strings because division by zero yields +Inf, -Inf or
// NaN, which JSON numbers cannot carry.
type RollNotationResult struct {
	Expression string            `json:"expression" jsonschema:"expression that was evaluated"`
	Total      string            `json:"total" jsonschema:"grand total in decimal form, or +Inf, -Inf, NaN"`
	Postfix    string            `json:"postfix" jsonschema:"postfix instruction sequence"`
	Trace      []string          `json:"trace" jsonschema:"one line per evaluation step"`
	Results    string            `json:"results" jsonschema:"per-roll narration followed by the grand total"`
	Rolls      []RollGroupResult `json:"rolls" jsonschema:"dice groups rolled, in evaluation order"`
	SeedUsed   int64             `json:"seed_used" jsonschema:"seed that reproduces this evaluation"`
	SeedSource string            `json:"seed_source" jsonschema:"CLIENT when the seed was supplied, SERVER when generated"`
}

// RollGroupResult describes one dice group in a roll_notation result.
type RollGroupResult struct {
	Label   string `json:"label" jsonschema:"group description, e.g. 4d6 (Dropping lowest 1)"`
	Kept    []int  `json:"kept" jsonschema:"dice counted toward the group total, before the per-die bonus"`
	Dropped []int  `json:"dropped,omitempty" jsonschema:"lowest dice excluded from the total"`
	Bonus   int    `json:"bonus,omitempty" jsonschema:"bonus added to each kept die"`
	Rerolls int    `json:"rerolls,omitempty" jsonschema:"dice added by explode triggers"`
	Total   int    `json:"total" jsonschema:"group total"`
}

// NotationStatisticsInput represents the MCP tool input for sampling notation.
type NotationStatisticsInput struct {
	Expression string `json:"expression" jsonschema:"dice notation expression to sample"`
	Seed       *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible summary"`
}

// NotationStatisticsResult represents the MCP tool output for sampling
// notation. Aggregates are decimal strings like RollNotationResult.Total.
type NotationStatisticsResult struct {
	Expression string  `json:"expression" jsonschema:"expression that was sampled"`
	Samples    int    `json:"samples" jsonschema:"number of evaluations"`
	Sum        string `json:"sum" jsonschema:"sum of all grand totals"`
	Mean       string `json:"mean" jsonschema:"average grand total"`
	Median     string `json:"median" jsonschema:"median grand total"`
	Mode       string `json:"mode" jsonschema:"most frequent grand total"`
	Max        string `json:"max" jsonschema:"highest grand total"`
	Min        string `json:"min" jsonschema:"lowest grand total"`
	SeedUsed   int64  `json:"seed_used" jsonschema:"seed that reproduces this summary"`
}

// RollNotationTool defines the MCP tool schema for evaluating notation.
func RollNotationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_notation",
		Description: "Evaluates a dice notation expression (arithmetic, d/e/f/g rolls, x drop-lowest, p per-die bonus, r reroll, zCeiling)",
	}
}

// NotationStatisticsTool defines the MCP tool schema for sampling notation.
func NotationStatisticsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "notation_statistics",
		Description: "Evaluates a dice notation expression 1000 times and summarizes the totals",
	}
}

// RollNotationHandler evaluates an expression through the notation service.
func RollNotationHandler(client NotationClient) mcp.ToolHandlerFor[RollNotationInput, RollNotationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollNotationInput) (*mcp.CallToolResult, RollNotationResult, error) {
		expression := strings.TrimSpace(input.Expression)
		if expression == "" {
			return nil, RollNotationResult{}, fmt.Errorf("expression is required")
		}
		view := strings.ToLower(strings.TrimSpace(input.View))
		if view == "" {
			view = ViewResults
		}
		if view != ViewTrace && view != ViewResults && view != ViewTotal {
			return nil, RollNotationResult{}, fmt.Errorf("view %q is not one of trace, results, total", input.View)
		}

		callCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		response, err := client.Evaluate(callCtx, notationservice.EvaluateRequest{Expression: expression, Seed: input.Seed})
		if err != nil {
			return nil, RollNotationResult{}, toolError("evaluate notation", err)
		}

		result := RollNotationResult{
			Expression: expression,
			Total:      notationservice.FormatTotal(response.Total),
			Postfix:    response.Postfix,
			Trace:      response.Trace,
			Results:    response.Results,
			Rolls:      rollGroupResults(response.Rolls),
			SeedUsed:   response.SeedUsed,
			SeedSource: string(response.SeedSource),
		}
		return textResult(renderView(view, result)), result, nil
	}
}

// NotationStatisticsHandler samples an expression through the notation service.
func NotationStatisticsHandler(client NotationClient) mcp.ToolHandlerFor[NotationStatisticsInput, NotationStatisticsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NotationStatisticsInput) (*mcp.CallToolResult, NotationStatisticsResult, error) {
		expression := strings.TrimSpace(input.Expression)
		if expression == "" {
			return nil, NotationStatisticsResult{}, fmt.Errorf("expression is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, grpcLongCallTimeout)
		defer cancel()

		response, err := client.Statistics(callCtx, notationservice.StatisticsRequest{Expression: expression, Seed: input.Seed})
		if err != nil {
			return nil, NotationStatisticsResult{}, toolError("sample notation", err)
		}

		result := NotationStatisticsResult{
			Expression: response.Expression,
			Samples:    response.Samples,
			Sum:        notationservice.FormatTotal(response.Sum),
			Mean:       notationservice.FormatTotal(response.Mean),
			Median:     notationservice.FormatTotal(response.Median),
			Mode:       notationservice.FormatTotal(response.Mode),
			Max:        notationservice.FormatTotal(response.Max),
			Min:        notationservice.FormatTotal(response.Min),
			SeedUsed:   response.SeedUsed,
		}
		return textResult(response.Text()), result, nil
	}
}

func renderView(view string, result RollNotationResult) string {
	switch view {
	case ViewTrace:
		return strings.Join(result.Trace, "\n")
	case ViewTotal:
		return result.Total
	default:
		return result.Results
	}
}

func rollGroupResults(groups []notationservice.RollGroup) []RollGroupResult {
	results := make([]RollGroupResult, 0, len(groups))
	for _, group := range groups {
		results = append(results, RollGroupResult{
			Label:   group.Label,
			Kept:    group.Kept,
			Dropped: group.Dropped,
			Bonus:   group.Bonus,
			Rerolls: group.Rerolls,
			Total:   group.Total,
		})
	}
	return results
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// toolError keeps malformed-expression messages readable for the caller and
// wraps transport failures.
func toolError(action string, err error) error {
	var domainErr *apperrors.Error
	if stderrors.As(err, &domainErr) && stderrors.Is(err, apperrors.ErrMalformedExpression) {
		if stage := domainErr.Stage(); stage != "" {
			return fmt.Errorf("malformed expression (%s): %s", stage, domainErr.Message)
		}
		return fmt.Errorf("malformed expression: %s", domainErr.Message)
	}
	return fmt.Errorf("%s failed: %w", action, err)
}
