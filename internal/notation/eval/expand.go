package eval

import "github.com/subsigma/rolldice/internal/notation/grammar"

// MaxRerolls caps the reroll count of a single r operator.
const MaxRerolls = 1000

// Modifiers is the pending per-roll state set by the x and p operators and
// cleared by the next roll.
type Modifiers struct {
	Drop  int // drop-lowest count
	Bonus int // per-die bonus
}

// ExpandReroll lowers "roll count faces with the roll operator, then reroll
// it rerolls more times and sum everything" into plain instructions.
//
// The result is rerolls+1 groups, first group first, each shaped
// [drop x] [bonus p] count faces roll, where the modifier pairs are present
// only when the pending value is set. The groups are followed by rerolls
// addition instructions. Each group re-applies the pending modifiers itself,
// so the caller clears them after splicing.
func ExpandReroll(rerolls int, count, faces float64, roll string, pending Modifiers) []Instruction {
	group := make([]Instruction, 0, 7)
	if pending.Drop > 0 {
		group = append(group, Literal(float64(pending.Drop)), Op(grammar.DropLowest))
	}
	if pending.Bonus != 0 {
		group = append(group, Literal(float64(pending.Bonus)), Op(grammar.PerDieBonus))
	}
	group = append(group, Literal(count), Literal(faces), Op(roll))

	expanded := make([]Instruction, 0, (rerolls+1)*len(group)+rerolls)
	for i := 0; i <= rerolls; i++ {
		expanded = append(expanded, group...)
	}
	for i := 0; i < rerolls; i++ {
		expanded = append(expanded, Op(grammar.Add))
	}
	return expanded
}
