package grammar

// Class is the lexical category of a single input character.
type Class int

const (
	ClassInvalid Class = iota
	ClassOperand
	ClassOperator
	ClassFunctionPrefix
	ClassSpace
)

// FunctionPrefix starts every function name, e.g. zCeiling.
const FunctionPrefix = 'z'

var classes [128]Class

func init() {
	for _, c := range "0123456789." {
		classes[c] = ClassOperand
	}
	for _, c := range "^+-*/defgxrp,()" {
		classes[c] = ClassOperator
	}
	for _, c := range " \t\n\r\v\f" {
		classes[c] = ClassSpace
	}
	classes[FunctionPrefix] = ClassFunctionPrefix
}

// Classify returns the class of c.
func Classify(c rune) Class {
	if c < 0 || int(c) >= len(classes) {
		return ClassInvalid
	}
	return classes[c]
}

// IsNumber reports whether token is a numeric literal: a non-empty run of
// operand characters.
func IsNumber(token string) bool {
	if token == "" {
		return false
	}
	for _, c := range token {
		if Classify(c) != ClassOperand {
			return false
		}
	}
	return true
}
