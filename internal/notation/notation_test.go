package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/subsigma/rolldice/internal/core/random"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

func TestEvaluateRoundTrip(t *testing.T) {
	result, err := Evaluate("3 + 4 * 2", random.NewSource(1))
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if got := strings.Join(result.Postfix, " "); got != "3 4 2 * +" {
		t.Fatalf("postfix = %q, want %q", got, "3 4 2 * +")
	}
	if result.Total() != 11 {
		t.Fatalf("total = %v, want 11", result.Total())
	}
}

func TestEvaluatePowerIsRightAssociative(t *testing.T) {
	total, err := Total("2 ^ 3 ^ 2", random.NewSource(1))
	if err != nil {
		t.Fatalf("Total error = %v", err)
	}
	if total != 512 {
		t.Fatalf("total = %v, want 512", total)
	}
}

func TestEvaluateDiceBounds(t *testing.T) {
	for _, text := range []string{"1001d6", "0d6", "3d6x4", "2d1"} {
		_, err := Evaluate(text, random.NewSource(1))
		if !errors.Is(err, apperrors.New(apperrors.CodeDiceInvalidSpec, "")) {
			t.Fatalf("Evaluate(%q) error = %v, want roll-parameter error", text, err)
		}
	}
}

func TestEvaluateSyntaxErrors(t *testing.T) {
	for _, text := range []string{"(1 + 2", "1,2", "3d6 + 2", "2 $ 3"} {
		_, err := Evaluate(text, random.NewSource(1))
		if !errors.Is(err, apperrors.ErrMalformedExpression) {
			t.Fatalf("Evaluate(%q) error = %v, want malformed expression", text, err)
		}
	}
}

func TestEvaluateSeededIsReplayable(t *testing.T) {
	first, err := Trace("4d6x1+2e8r2+zCeiling(3/2)", random.NewSource(99))
	if err != nil {
		t.Fatalf("Trace error = %v", err)
	}
	second, err := Trace("4d6x1+2e8r2+zCeiling(3/2)", random.NewSource(99))
	if err != nil {
		t.Fatalf("Trace error = %v", err)
	}
	if first != second {
		t.Fatalf("seeded traces differ:\n%s\n%s", first, second)
	}
}

func TestResultsEndsWithGrandTotal(t *testing.T) {
	results, err := Results("2d6+1", random.NewSource(3))
	if err != nil {
		t.Fatalf("Results error = %v", err)
	}
	lines := strings.Split(results, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Roll 2d6: ") || !strings.HasPrefix(lines[1], "Grand Total: ") {
		t.Fatalf("Results() = %q", results)
	}
}
