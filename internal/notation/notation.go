// Package notation evaluates dice notation text end to end: lexing,
// postfix conversion and evaluation.
package notation

import (
	"github.com/subsigma/rolldice/internal/core/dice"
	"github.com/subsigma/rolldice/internal/core/random"
	"github.com/subsigma/rolldice/internal/notation/eval"
	"github.com/subsigma/rolldice/internal/notation/postfix"
)

// Evaluate parses text and evaluates it, drawing dice from source.
func Evaluate(text string, source dice.Source) (eval.Result, error) {
	program, err := postfix.FromText(text)
	if err != nil {
		return eval.Result{}, err
	}
	return eval.Evaluate(program, source)
}

// Trace evaluates text and returns the full step listing.
func Trace(text string, source dice.Source) (string, error) {
	result, err := Evaluate(text, source)
	if err != nil {
		return "", err
	}
	return result.Trace(), nil
}

// Results evaluates text and returns the roll narrations and grand total.
func Results(text string, source dice.Source) (string, error) {
	result, err := Evaluate(text, source)
	if err != nil {
		return "", err
	}
	return result.Results(), nil
}

// Total evaluates text and returns only the grand total.
func Total(text string, source dice.Source) (float64, error) {
	result, err := Evaluate(text, source)
	if err != nil {
		return 0, err
	}
	return result.Total(), nil
}

// NewSource returns a deterministic dice source for seed.
func NewSource(seed int64) dice.Source {
	return random.NewSource(seed)
}
