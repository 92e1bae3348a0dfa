package eval

import (
	"fmt"
	"strings"

	"github.com/subsigma/rolldice/internal/core/dice"
)

// Trace renders every step as "expression | stack[ | extra]", one per line.
// Roll steps append the dice label, the dice, the group total and any
// rerolls; the last step appends the grand total. A step that leaves the
// stack empty renders as its expression alone.
func (r Result) Trace() string {
	var b strings.Builder
	for _, step := range r.Steps {
		b.WriteString(step.Expression)
		if step.Stack != "" {
			b.WriteString(" | ")
			b.WriteString(step.Stack)
		}
		switch outcome := step.Outcome.(type) {
		case RollOutcome:
			fmt.Fprintf(&b, " | %s | %s | Total: %d", outcome.Label, formatDice(outcome.Outcome), outcome.Total)
			if outcome.Rerolls > 0 {
				fmt.Fprintf(&b, " | Rerolls: %d", outcome.Rerolls)
			}
		case GrandTotal:
			fmt.Fprintf(&b, " | Grand Total: %s", formatNumber(outcome.Value))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Results renders only the roll narrations followed by the grand total.
func (r Result) Results() string {
	var b strings.Builder
	for _, step := range r.Steps {
		switch outcome := step.Outcome.(type) {
		case RollOutcome:
			fmt.Fprintf(&b, "Roll %s: %s | Total: %d", outcome.Label, formatDice(outcome.Outcome), outcome.Total)
			if outcome.Rerolls > 0 {
				fmt.Fprintf(&b, " | Total rerolls: %d", outcome.Rerolls)
			}
			b.WriteString("\n")
		case GrandTotal:
			fmt.Fprintf(&b, "Grand Total: %s", formatNumber(outcome.Value))
		}
	}
	return b.String()
}

// Total returns the grand total.
func (r Result) Total() float64 {
	return r.Value
}

// formatDice lists kept dice, annotated as total[die+bonus] when a bonus
// applies, followed by dropped dice in parentheses.
func formatDice(outcome dice.Outcome) string {
	parts := make([]string, 0, len(outcome.Kept)+len(outcome.Dropped))
	for _, value := range outcome.Kept {
		if outcome.Bonus != 0 {
			parts = append(parts, fmt.Sprintf("%d[%d%+d]", value+outcome.Bonus, value, outcome.Bonus))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d", value))
	}
	for _, value := range outcome.Dropped {
		parts = append(parts, fmt.Sprintf("(%d)", value))
	}
	return strings.Join(parts, " ")
}
