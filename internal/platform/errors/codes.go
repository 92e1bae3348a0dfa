// Package errors provides structured error handling for notation failures.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeMalformedExpression is the umbrella code every notation failure
	// matches through Is.
	CodeMalformedExpression Code = "MALFORMED_EXPRESSION"

	// Notation errors
	CodeNotationSyntax    Code = "NOTATION_SYNTAX"
	CodeNotationArity     Code = "NOTATION_ARITY"
	CodeNotationStructure Code = "NOTATION_STRUCTURE"

	// Dice/mechanics errors
	CodeDiceInvalidSpec     Code = "DICE_INVALID_SPEC"
	CodeDiceUnsupportedMode Code = "DICE_UNSUPPORTED_MODE"

	// Random/seed errors
	CodeSeedUnavailable Code = "SEED_UNAVAILABLE"
)

// Stage names recorded under the "stage" metadata key.
const (
	StageLex      = "lex"
	StageParse    = "parse"
	StageEvaluate = "evaluate"
	StageRoll     = "roll"
)

// Malformed reports whether the code describes a malformed expression.
func (c Code) Malformed() bool {
	switch c {
	case CodeMalformedExpression,
		CodeNotationSyntax,
		CodeNotationArity,
		CodeNotationStructure,
		CodeDiceInvalidSpec,
		CodeDiceUnsupportedMode:
		return true
	default:
		return false
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch {
	// InvalidArgument - the expression itself is bad
	case c.Malformed():
		return codes.InvalidArgument

	// Unavailable - entropy could not be read
	case c == CodeSeedUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
