package eval

import "github.com/subsigma/rolldice/internal/core/dice"

// StepOutcome is what a trace step carries besides its expression and
// stack: NoOutcome, RollOutcome or GrandTotal.
type StepOutcome interface {
	isStepOutcome()
}

// NoOutcome marks steps that did not roll dice.
type NoOutcome struct{}

// RollOutcome carries the dice group rolled by a roll step.
type RollOutcome struct {
	dice.Outcome
}

// GrandTotal carries the final value of the evaluation.
type GrandTotal struct {
	Value float64
}

func (NoOutcome) isStepOutcome()   {}
func (RollOutcome) isStepOutcome() {}
func (GrandTotal) isStepOutcome()  {}

// Step records one evaluator action.
type Step struct {
	Expression string // consumed operands followed by the operator
	Stack      string // stack after the action, top first
	Outcome    StepOutcome
}

// Labels of the first and last trace steps.
const (
	PostfixLabel    = "Postfix"
	GrandTotalLabel = "GT"
)

// Result is a completed evaluation.
type Result struct {
	Postfix []string
	Steps   []Step // starts with the postfix step, ends with the grand total step
	Value   float64
}

// Rolls returns the dice groups rolled, in evaluation order.
func (r Result) Rolls() []dice.Outcome {
	var rolls []dice.Outcome
	for _, step := range r.Steps {
		if roll, ok := step.Outcome.(RollOutcome); ok {
			rolls = append(rolls, roll.Outcome)
		}
	}
	return rolls
}
