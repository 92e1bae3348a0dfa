package lexer

import (
	"errors"
	"io"
	"reflect"
	"testing"

	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "contiguous dice", input: "3d6+2", want: []string{"3", "d", "6", "+", "2"}},
		{name: "multi digit and decimals", input: "10d12*1.5", want: []string{"10", "d", "12", "*", "1.5"}},
		{name: "modifiers", input: "4d6x1r2p1", want: []string{"4", "d", "6", "x", "1", "r", "2", "p", "1"}},
		{name: "function call", input: "zCeiling(7/2)", want: []string{"zCeiling", "(", "7", "/", "2", ")"}},
		{name: "separator", input: "1,2", want: []string{"1", ",", "2"}},
		{name: "whitespace delimited", input: "3 + 4 * 2", want: []string{"3", "+", "4", "*", "2"}},
		{name: "whitespace keeps fields whole", input: " zCeiling ( 2.5 )\t", want: []string{"zCeiling", "(", "2.5", ")"}},
		{name: "surrounding whitespace only", input: "  2^3^2  ", want: []string{"2", "^", "3", "^", "2"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeRejectsUnknownCharacters(t *testing.T) {
	for _, input := range []string{"3d6#", "2q3", "zCeiling"} {
		_, err := Tokenize(input)
		if !errors.Is(err, apperrors.ErrMalformedExpression) {
			t.Fatalf("Tokenize(%q) error = %v, want malformed expression", input, err)
		}
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("Tokenize(%q) error type = %T", input, err)
		}
		if appErr.Code != apperrors.CodeNotationSyntax || appErr.Stage() != apperrors.StageLex {
			t.Fatalf("Tokenize(%q) code=%s stage=%s", input, appErr.Code, appErr.Stage())
		}
	}
}

func TestNextSignalsEnd(t *testing.T) {
	l := New("7")
	token, err := l.Next()
	if err != nil || token != "7" {
		t.Fatalf("Next() = %q, %v", token, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := l.Next(); err != io.EOF {
			t.Fatalf("Next() after end error = %v, want io.EOF", err)
		}
	}
}
