package eval

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// faceSource replays die faces; each Intn call returns the next face minus one.
type faceSource struct {
	t     *testing.T
	faces []int
	next  int
}

func (s *faceSource) Intn(n int) int {
	s.t.Helper()
	if s.next >= len(s.faces) {
		s.t.Fatalf("faceSource exhausted after %d draws", s.next)
	}
	face := s.faces[s.next]
	s.next++
	if face < 1 || face > n {
		s.t.Fatalf("face %d outside [1, %d]", face, n)
	}
	return face - 1
}

func faces(t *testing.T, values ...int) *faceSource {
	return &faceSource{t: t, faces: values}
}

func program(text string) []string {
	return strings.Fields(text)
}

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		program string
		want    float64
	}{
		{program: "3 4 2 * +", want: 11},
		{program: "2 3 2 ^ ^", want: 512},
		{program: "2 3 ^ 2 ^", want: 64},
		{program: "1 2 - 3 -", want: -4},
		{program: "8 4 / 2 /", want: 1},
		{program: "7 2 / zCeiling", want: 4},
		{program: "0.5 0.25 +", want: 0.75},
		{program: "5", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			result, err := Evaluate(program(tt.program), faces(t))
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.program, err)
			}
			if result.Total() != tt.want {
				t.Fatalf("Evaluate(%q) = %v, want %v", tt.program, result.Total(), tt.want)
			}
		})
	}
}

func TestEvaluateDivisionByZeroIsInfinite(t *testing.T) {
	result, err := Evaluate(program("1 0 /"), faces(t))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if !math.IsInf(result.Total(), 1) {
		t.Fatalf("total = %v, want +Inf", result.Total())
	}
}

func TestEvaluateTrace(t *testing.T) {
	result, err := Evaluate(program("3 4 2 * +"), faces(t))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}

	want := "Postfix | 3 4 2 * +\n" +
		"4 2 * | 8 3\n" +
		"3 8 + | 11\n" +
		"GT | 11 | Grand Total: 11\n"
	if got := result.Trace(); got != want {
		t.Fatalf("Trace() =\n%s\nwant\n%s", got, want)
	}
	if got := result.Results(); got != "Grand Total: 11" {
		t.Fatalf("Results() = %q", got)
	}

	if _, ok := result.Steps[0].Outcome.(NoOutcome); !ok {
		t.Fatalf("first step outcome = %T, want NoOutcome", result.Steps[0].Outcome)
	}
	last := result.Steps[len(result.Steps)-1]
	if total, ok := last.Outcome.(GrandTotal); !ok || total.Value != 11 {
		t.Fatalf("last step outcome = %#v, want GrandTotal(11)", last.Outcome)
	}
}

func TestEvaluateRoll(t *testing.T) {
	result, err := Evaluate(program("3 6 d 2 +"), faces(t, 3, 4, 5))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if result.Total() != 14 {
		t.Fatalf("total = %v, want 14", result.Total())
	}

	wantTrace := "Postfix | 3 6 d 2 +\n" +
		"3 6 d | 12 | 3d6 | 3 4 5 | Total: 12\n" +
		"12 2 + | 14\n" +
		"GT | 14 | Grand Total: 14\n"
	if got := result.Trace(); got != wantTrace {
		t.Fatalf("Trace() =\n%s\nwant\n%s", got, wantTrace)
	}

	wantResults := "Roll 3d6: 3 4 5 | Total: 12\nGrand Total: 14"
	if got := result.Results(); got != wantResults {
		t.Fatalf("Results() = %q, want %q", got, wantResults)
	}
}

func TestEvaluateExplodeTrace(t *testing.T) {
	result, err := Evaluate(program("1 6 e"), faces(t, 6, 6, 2))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	line := strings.Split(result.Trace(), "\n")[1]
	if want := "1 6 e | 14 | 1e6 | 6 6 2 | Total: 14 | Rerolls: 2"; line != want {
		t.Fatalf("roll line = %q, want %q", line, want)
	}
	if !strings.Contains(result.Results(), "| Total rerolls: 2") {
		t.Fatalf("Results() = %q, missing reroll count", result.Results())
	}
}

func TestEvaluateDropAndBonus(t *testing.T) {
	result, err := Evaluate(program("4 6 1 x 1 p d"), faces(t, 5, 2, 6, 3))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if result.Total() != 17 {
		t.Fatalf("total = %v, want 17", result.Total())
	}

	wantTrace := "Postfix | 4 6 1 x 1 p d\n" +
		"1 x | 6 4\n" +
		"1 p | 6 4\n" +
		"4 6 d | 17 | 4d6 (Dropping lowest 1) | 4[3+1] 6[5+1] 7[6+1] (2) | Total: 17\n" +
		"GT | 17 | Grand Total: 17\n"
	if got := result.Trace(); got != wantTrace {
		t.Fatalf("Trace() =\n%s\nwant\n%s", got, wantTrace)
	}
}

func TestEvaluateTraceOmitsEmptyStack(t *testing.T) {
	result, err := Evaluate(program("1 p 1 6 d"), faces(t, 4))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}

	wantTrace := "Postfix | 1 p 1 6 d\n" +
		"1 p\n" +
		"1 6 d | 5 | 1d6 | 5[4+1] | Total: 5\n" +
		"GT | 5 | Grand Total: 5\n"
	if got := result.Trace(); got != wantTrace {
		t.Fatalf("Trace() =\n%s\nwant\n%s", got, wantTrace)
	}
	for _, line := range strings.Split(result.Trace(), "\n") {
		if strings.HasSuffix(line, "| ") {
			t.Fatalf("trace line %q ends with a dangling separator", line)
		}
	}
}

func TestEvaluateModifiersResetAfterRoll(t *testing.T) {
	// 2d6x1+2d6
	result, err := Evaluate(program("2 6 1 x d 2 6 d +"), faces(t, 1, 5, 3, 4))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	rolls := result.Rolls()
	if len(rolls) != 2 {
		t.Fatalf("rolls = %d, want 2", len(rolls))
	}
	if !reflect.DeepEqual(rolls[0].Dropped, []int{1}) || rolls[0].Total != 5 {
		t.Fatalf("first roll = %+v", rolls[0])
	}
	if len(rolls[1].Dropped) != 0 || rolls[1].Total != 7 {
		t.Fatalf("second roll = %+v", rolls[1])
	}
	if result.Total() != 12 {
		t.Fatalf("total = %v, want 12", result.Total())
	}
}

func TestEvaluateReroll(t *testing.T) {
	// 2d6r1
	result, err := Evaluate(program("2 6 1 r d"), faces(t, 3, 4, 1, 2))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if result.Total() != 10 {
		t.Fatalf("total = %v, want 10", result.Total())
	}

	wantTrace := "Postfix | 2 6 1 r d\n" +
		"2 6 1 r\n" +
		"2 6 d | 7 | 2d6 | 3 4 | Total: 7\n" +
		"2 6 d | 3 7 | 2d6 | 1 2 | Total: 3\n" +
		"7 3 + | 10\n" +
		"GT | 10 | Grand Total: 10\n"
	if got := result.Trace(); got != wantTrace {
		t.Fatalf("Trace() =\n%s\nwant\n%s", got, wantTrace)
	}
}

func TestEvaluateRerollCarriesModifiers(t *testing.T) {
	// 4d6x1r1
	result, err := Evaluate(program("4 6 1 x 1 r d"), faces(t, 5, 2, 6, 3, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	rolls := result.Rolls()
	if len(rolls) != 2 {
		t.Fatalf("rolls = %d, want 2", len(rolls))
	}
	for i, roll := range rolls {
		if len(roll.Dropped) != 1 || len(roll.Kept) != 3 {
			t.Fatalf("roll %d = %+v, want one die dropped", i, roll)
		}
	}
	if result.Total() != 17 {
		t.Fatalf("total = %v, want 17", result.Total())
	}
}

func TestEvaluateRerollSumsIndependentGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for i := 0; i < 200; i++ {
		result, err := Evaluate(program("2 6 1 r d"), rng)
		if err != nil {
			t.Fatalf("Evaluate error = %v", err)
		}
		rolls := result.Rolls()
		if len(rolls) != 2 {
			t.Fatalf("rolls = %d, want 2", len(rolls))
		}
		sum := 0
		for _, roll := range rolls {
			if len(roll.Kept) != 2 || roll.Total < 2 || roll.Total > 12 {
				t.Fatalf("invalid 2d6 group %+v", roll)
			}
			sum += roll.Total
		}
		if float64(sum) != result.Total() {
			t.Fatalf("total %v != sum of groups %d", result.Total(), sum)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name    string
		program string
		code    apperrors.Code
	}{
		{name: "missing operand", program: "3 +", code: apperrors.CodeNotationArity},
		{name: "unary roll", program: "6 d", code: apperrors.CodeNotationArity},
		{name: "leftover values", program: "3 4", code: apperrors.CodeNotationStructure},
		{name: "empty program", program: "", code: apperrors.CodeNotationStructure},
		{name: "unknown symbol", program: "3 q", code: apperrors.CodeNotationSyntax},
		{name: "bad literal", program: "1.2.3", code: apperrors.CodeNotationSyntax},
		{name: "too many dice", program: "1001 6 d", code: apperrors.CodeDiceInvalidSpec},
		{name: "no dice", program: "0 6 d", code: apperrors.CodeDiceInvalidSpec},
		{name: "one face", program: "2 1 d", code: apperrors.CodeDiceInvalidSpec},
		{name: "drop exceeds count", program: "3 6 4 x d", code: apperrors.CodeDiceInvalidSpec},
		{name: "infinite dice", program: "1 0 / 6 d", code: apperrors.CodeDiceInvalidSpec},
		{name: "reroll without roll", program: "2 6 1 r", code: apperrors.CodeNotationStructure},
		{name: "reroll before arithmetic", program: "2 6 1 r +", code: apperrors.CodeNotationStructure},
		{name: "reroll without group", program: "6 1 r d", code: apperrors.CodeNotationArity},
		{name: "negative reroll", program: "2 6 0 1 - r d", code: apperrors.CodeDiceInvalidSpec},
		{name: "huge reroll", program: "2 6 1001 r d", code: apperrors.CodeDiceInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(program(tt.program), rand.New(rand.NewSource(1)))
			if err == nil {
				t.Fatalf("Evaluate(%q) expected error", tt.program)
			}
			if !errors.Is(err, apperrors.ErrMalformedExpression) {
				t.Fatalf("Evaluate(%q) error = %v, want malformed expression", tt.program, err)
			}
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("Evaluate(%q) error type = %T", tt.program, err)
			}
			if appErr.Code != tt.code {
				t.Fatalf("Evaluate(%q) code = %s, want %s", tt.program, appErr.Code, tt.code)
			}
		})
	}
}

func TestEvaluateLeavesSingleValue(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	programs := []string{
		"3 6 d 2 +",
		"4 6 1 x 3 r d 2 *",
		"10 8 g 1 p 2 10 e +",
		"2 6 1 r d zCeiling",
	}
	for _, p := range programs {
		result, err := Evaluate(program(p), rng)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", p, err)
		}
		last := result.Steps[len(result.Steps)-1]
		if last.Expression != GrandTotalLabel || last.Stack != formatNumber(result.Total()) {
			t.Fatalf("Evaluate(%q) last step = %+v", p, last)
		}
	}
}
