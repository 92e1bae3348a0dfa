// Package grammar is the fixed registry of notation operators and functions,
// plus the character classes the lexer scans with.
package grammar

// Associativity decides how equal-precedence operators group.
type Associativity int

const (
	// Left groups a-b-c as (a-b)-c.
	Left Associativity = iota
	// Right groups a^b^c as a^(b^c).
	Right
	// None is used by functions, which are always called explicitly.
	None
)

func (a Associativity) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Symbol texts.
const (
	Power           = "^"
	Add             = "+"
	Subtract        = "-"
	Multiply        = "*"
	Divide          = "/"
	Roll            = "d"
	RollExplodeHigh = "e"
	RollExplodeLow  = "f"
	RollExplodeBoth = "g"
	DropLowest      = "x"
	Reroll          = "r"
	PerDieBonus     = "p"
	Ceiling         = "zCeiling"

	OpenParen  = "("
	CloseParen = ")"
	Separator  = ","
)

// Symbol describes one operator or function.
type Symbol struct {
	Text          string
	Associativity Associativity
	Precedence    int
	Arity         int
	Function      bool
}

var symbols = map[string]Symbol{
	Power:           {Text: Power, Associativity: Right, Precedence: 4, Arity: 2},
	Add:             {Text: Add, Associativity: Left, Precedence: 2, Arity: 2},
	Subtract:        {Text: Subtract, Associativity: Left, Precedence: 2, Arity: 2},
	Multiply:        {Text: Multiply, Associativity: Left, Precedence: 3, Arity: 2},
	Divide:          {Text: Divide, Associativity: Left, Precedence: 3, Arity: 2},
	Roll:            {Text: Roll, Associativity: Left, Precedence: 5, Arity: 2},
	RollExplodeHigh: {Text: RollExplodeHigh, Associativity: Left, Precedence: 5, Arity: 2},
	RollExplodeLow:  {Text: RollExplodeLow, Associativity: Left, Precedence: 5, Arity: 2},
	RollExplodeBoth: {Text: RollExplodeBoth, Associativity: Left, Precedence: 5, Arity: 2},
	DropLowest:      {Text: DropLowest, Associativity: Left, Precedence: 7, Arity: 1},
	Reroll:          {Text: Reroll, Associativity: Left, Precedence: 6, Arity: 1},
	PerDieBonus:     {Text: PerDieBonus, Associativity: Left, Precedence: 7, Arity: 1},
	Ceiling:         {Text: Ceiling, Associativity: None, Precedence: 0, Arity: 1, Function: true},
}

// Lookup returns the symbol registered under text.
func Lookup(text string) (Symbol, bool) {
	symbol, ok := symbols[text]
	return symbol, ok
}

// IsOperator reports whether text names a known non-function operator.
func IsOperator(text string) bool {
	symbol, ok := symbols[text]
	return ok && !symbol.Function
}

// IsFunction reports whether text names a known function.
func IsFunction(text string) bool {
	symbol, ok := symbols[text]
	return ok && symbol.Function
}

// IsRoll reports whether text is one of the dice-roll operators.
func IsRoll(text string) bool {
	switch text {
	case Roll, RollExplodeHigh, RollExplodeLow, RollExplodeBoth:
		return true
	default:
		return false
	}
}

// Precedence returns the precedence of text, or 0 when unknown.
func Precedence(text string) int {
	return symbols[text].Precedence
}
