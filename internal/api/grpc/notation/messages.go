package notation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/subsigma/rolldice/internal/core/dice"
	"github.com/subsigma/rolldice/internal/core/random"
	"github.com/subsigma/rolldice/internal/notation/stats"
)

// Field names shared by requests and responses. Seeds travel as decimal
// strings because structpb numbers are float64 and cannot hold every int64.
const (
	fieldExpression = "expression"
	fieldSeed       = "seed"
	fieldTotal      = "total"
	fieldPostfix    = "postfix"
	fieldTrace      = "trace"
	fieldResults    = "results"
	fieldSeedUsed   = "seed_used"
	fieldSeedSource = "seed_source"
	fieldSum        = "sum"
	fieldMean       = "mean"
	fieldMedian     = "median"
	fieldMode       = "mode"
	fieldMax        = "max"
	fieldMin        = "min"
	fieldSamples    = "samples"
	fieldRolls      = "rolls"
	fieldLabel      = "label"
	fieldKept       = "kept"
	fieldDropped    = "dropped"
	fieldBonus      = "bonus"
	fieldRerolls    = "rerolls"
)

// EvaluateRequest asks for one evaluation of an expression.
type EvaluateRequest struct {
	Expression string
	Seed       *int64
}

// EvaluateResponse carries the grand total, every textual view and the
// dice groups rolled.
type EvaluateResponse struct {
	Total      float64
	Postfix    string
	Trace      []string
	Results    string
	Rolls      []RollGroup // in evaluation order
	SeedUsed   int64
	SeedSource random.SeedSource
}

// RollGroup is one dice group rolled during an evaluation.
type RollGroup struct {
	Label   string
	Kept    []int
	Dropped []int
	Bonus   int
	Rerolls int
	Total   int
}

func rollGroups(outcomes []dice.Outcome) []RollGroup {
	groups := make([]RollGroup, 0, len(outcomes))
	for _, outcome := range outcomes {
		groups = append(groups, RollGroup{
			Label:   outcome.Label,
			Kept:    outcome.Kept,
			Dropped: outcome.Dropped,
			Bonus:   outcome.Bonus,
			Rerolls: outcome.Rerolls,
			Total:   outcome.Total,
		})
	}
	return groups
}

// StatisticsRequest asks for a sampled summary of an expression.
type StatisticsRequest struct {
	Expression string
	Seed       *int64
}

// StatisticsResponse carries the aggregates of a sampled summary.
type StatisticsResponse struct {
	Expression string
	Sum        float64
	Mean       float64
	Median     float64
	Mode       float64
	Max        float64
	Min        float64
	Samples    int
	SeedUsed   int64
}

// Text renders the response in the same layout as stats.Summary.String.
func (r StatisticsResponse) Text() string {
	return stats.Summary{
		Expression: r.Expression,
		Samples:    make([]float64, r.Samples),
		Sum:        r.Sum,
		Mean:       r.Mean,
		Median:     r.Median,
		Mode:       r.Mode,
		Max:        r.Max,
		Min:        r.Min,
	}.String()
}

func encodeRequest(expression string, seed *int64) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldExpression: structpb.NewStringValue(expression),
	}
	if seed != nil {
		fields[fieldSeed] = structpb.NewStringValue(strconv.FormatInt(*seed, 10))
	}
	return &structpb.Struct{Fields: fields}
}

func decodeRequest(in *structpb.Struct) (string, *int64, error) {
	if in == nil {
		return "", nil, fmt.Errorf("request is required")
	}
	expression := strings.TrimSpace(in.GetFields()[fieldExpression].GetStringValue())
	if expression == "" {
		return "", nil, fmt.Errorf("%s is required", fieldExpression)
	}
	raw, ok := in.GetFields()[fieldSeed]
	if !ok {
		return expression, nil, nil
	}
	seed, err := decodeSeed(raw)
	if err != nil {
		return "", nil, err
	}
	return expression, &seed, nil
}

func decodeSeed(value *structpb.Value) (int64, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		seed, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a decimal integer: %w", fieldSeed, err)
		}
		return seed, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, fmt.Errorf("%s must be an integer", fieldSeed)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s must be a string or number", fieldSeed)
	}
}

func encodeEvaluateResponse(resp EvaluateResponse) *structpb.Struct {
	trace := make([]*structpb.Value, 0, len(resp.Trace))
	for _, line := range resp.Trace {
		trace = append(trace, structpb.NewStringValue(line))
	}
	rolls := make([]*structpb.Value, 0, len(resp.Rolls))
	for _, group := range resp.Rolls {
		rolls = append(rolls, structpb.NewStructValue(encodeRollGroup(group)))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldTotal:      structpb.NewNumberValue(resp.Total),
		fieldPostfix:    structpb.NewStringValue(resp.Postfix),
		fieldTrace:      structpb.NewListValue(&structpb.ListValue{Values: trace}),
		fieldResults:    structpb.NewStringValue(resp.Results),
		fieldRolls:      structpb.NewListValue(&structpb.ListValue{Values: rolls}),
		fieldSeedUsed:   structpb.NewStringValue(strconv.FormatInt(resp.SeedUsed, 10)),
		fieldSeedSource: structpb.NewStringValue(string(resp.SeedSource)),
	}}
}

func decodeEvaluateResponse(out *structpb.Struct) (EvaluateResponse, error) {
	fields := out.GetFields()
	seed, err := decodeSeed(fields[fieldSeedUsed])
	if err != nil {
		return EvaluateResponse{}, err
	}
	var trace []string
	for _, line := range fields[fieldTrace].GetListValue().GetValues() {
		trace = append(trace, line.GetStringValue())
	}
	var rolls []RollGroup
	for _, group := range fields[fieldRolls].GetListValue().GetValues() {
		rolls = append(rolls, decodeRollGroup(group.GetStructValue()))
	}
	return EvaluateResponse{
		Total:      fields[fieldTotal].GetNumberValue(),
		Postfix:    fields[fieldPostfix].GetStringValue(),
		Trace:      trace,
		Results:    fields[fieldResults].GetStringValue(),
		Rolls:      rolls,
		SeedUsed:   seed,
		SeedSource: random.SeedSource(fields[fieldSeedSource].GetStringValue()),
	}, nil
}

func encodeRollGroup(group RollGroup) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldLabel:   structpb.NewStringValue(group.Label),
		fieldKept:    encodeInts(group.Kept),
		fieldDropped: encodeInts(group.Dropped),
		fieldBonus:   structpb.NewNumberValue(float64(group.Bonus)),
		fieldRerolls: structpb.NewNumberValue(float64(group.Rerolls)),
		fieldTotal:   structpb.NewNumberValue(float64(group.Total)),
	}}
}

func decodeRollGroup(in *structpb.Struct) RollGroup {
	fields := in.GetFields()
	return RollGroup{
		Label:   fields[fieldLabel].GetStringValue(),
		Kept:    decodeInts(fields[fieldKept]),
		Dropped: decodeInts(fields[fieldDropped]),
		Bonus:   int(fields[fieldBonus].GetNumberValue()),
		Rerolls: int(fields[fieldRerolls].GetNumberValue()),
		Total:   int(fields[fieldTotal].GetNumberValue()),
	}
}

func encodeInts(values []int) *structpb.Value {
	list := make([]*structpb.Value, 0, len(values))
	for _, value := range values {
		list = append(list, structpb.NewNumberValue(float64(value)))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: list})
}

func decodeInts(value *structpb.Value) []int {
	var out []int
	for _, item := range value.GetListValue().GetValues() {
		out = append(out, int(item.GetNumberValue()))
	}
	return out
}

func encodeStatisticsResponse(resp StatisticsResponse) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldExpression: structpb.NewStringValue(resp.Expression),
		fieldSum:        structpb.NewNumberValue(resp.Sum),
		fieldMean:       structpb.NewNumberValue(resp.Mean),
		fieldMedian:     structpb.NewNumberValue(resp.Median),
		fieldMode:       structpb.NewNumberValue(resp.Mode),
		fieldMax:        structpb.NewNumberValue(resp.Max),
		fieldMin:        structpb.NewNumberValue(resp.Min),
		fieldSamples:    structpb.NewNumberValue(float64(resp.Samples)),
		fieldSeedUsed:   structpb.NewStringValue(strconv.FormatInt(resp.SeedUsed, 10)),
	}}
}

func decodeStatisticsResponse(out *structpb.Struct) (StatisticsResponse, error) {
	fields := out.GetFields()
	seed, err := decodeSeed(fields[fieldSeedUsed])
	if err != nil {
		return StatisticsResponse{}, err
	}
	return StatisticsResponse{
		Expression: fields[fieldExpression].GetStringValue(),
		Sum:        fields[fieldSum].GetNumberValue(),
		Mean:       fields[fieldMean].GetNumberValue(),
		Median:     fields[fieldMedian].GetNumberValue(),
		Mode:       fields[fieldMode].GetNumberValue(),
		Max:        fields[fieldMax].GetNumberValue(),
		Min:        fields[fieldMin].GetNumberValue(),
		Samples:    int(fields[fieldSamples].GetNumberValue()),
		SeedUsed:   seed,
	}, nil
}

// FormatTotal renders a grand total in shortest decimal form.
func FormatTotal(total float64) string {
	return strconv.FormatFloat(total, 'f', -1, 64)
}
