package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/subsigma/rolldice/internal/notation/grammar"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// Instruction is one postfix step: a numeric literal or a grammar symbol.
type Instruction struct {
	Symbol string  // operator or function text; empty for literals
	Value  float64 // literal value
}

// Literal returns a numeric literal instruction.
func Literal(value float64) Instruction {
	return Instruction{Value: value}
}

// Op returns a symbol instruction.
func Op(symbol string) Instruction {
	return Instruction{Symbol: symbol}
}

// IsLiteral reports whether the instruction pushes a number.
func (i Instruction) IsLiteral() bool {
	return i.Symbol == ""
}

func (i Instruction) String() string {
	if i.IsLiteral() {
		return formatNumber(i.Value)
	}
	return i.Symbol
}

// Compile turns postfix token text into instructions. Numeric tokens must
// parse as decimals; symbol tokens are checked when they execute.
func Compile(program []string) ([]Instruction, error) {
	instructions := make([]Instruction, 0, len(program))
	for _, token := range program {
		if grammar.IsNumber(token) {
			value, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageEvaluate,
					"invalid number "+strconv.Quote(token))
			}
			instructions = append(instructions, Literal(value))
			continue
		}
		instructions = append(instructions, Op(token))
	}
	return instructions, nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = formatNumber(value)
	}
	return strings.Join(parts, " ")
}

// maxOperand bounds values converted to integer dice parameters.
const maxOperand = math.MaxInt32

// ceilInt rounds value up to an int, rejecting non-finite or huge values.
func ceilInt(value float64) (int, bool) {
	ceiled := math.Ceil(value)
	if math.IsNaN(ceiled) || ceiled > maxOperand || ceiled < -maxOperand {
		return 0, false
	}
	return int(ceiled), true
}
