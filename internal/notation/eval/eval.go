// Package eval executes postfix dice notation against a value stack.
//
// Most operators are plain arithmetic. The x and p operators only record
// pending drop-lowest and per-die bonus values for the next roll, and the r
// operator rewrites the remaining instructions: it removes the roll that
// follows it and splices in one independent group per roll plus the
// additions that sum them.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/subsigma/rolldice/internal/core/dice"
	"github.com/subsigma/rolldice/internal/notation/grammar"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// machine is the state of one evaluation pass.
type machine struct {
	source  dice.Source
	queue   *queue
	stack   []float64
	pending Modifiers
	steps   []Step
}

// Evaluate runs the postfix program, drawing dice from source.
//
// Evaluation aborts on the first failure; no partial result is returned.
// A successful run leaves exactly one value on the stack, the grand total.
func Evaluate(program []string, source dice.Source) (Result, error) {
	instructions, err := Compile(program)
	if err != nil {
		return Result{}, err
	}

	m := &machine{
		source: source,
		queue:  newQueue(instructions),
	}
	m.steps = append(m.steps, Step{
		Expression: PostfixLabel,
		Stack:      strings.Join(program, " "),
		Outcome:    NoOutcome{},
	})

	for {
		instruction, ok := m.queue.next()
		if !ok {
			break
		}
		if instruction.IsLiteral() {
			m.stack = append(m.stack, instruction.Value)
			continue
		}
		if err := m.execute(instruction.Symbol); err != nil {
			return Result{}, err
		}
	}

	if len(m.stack) != 1 {
		return Result{}, apperrors.AtStage(apperrors.CodeNotationStructure, apperrors.StageEvaluate,
			fmt.Sprintf("expression left %d values on the stack, want 1", len(m.stack)))
	}

	total := m.stack[0]
	m.steps = append(m.steps, Step{
		Expression: GrandTotalLabel,
		Stack:      formatNumber(total),
		Outcome:    GrandTotal{Value: total},
	})

	return Result{
		Postfix: append([]string(nil), program...),
		Steps:   m.steps,
		Value:   total,
	}, nil
}

func (m *machine) execute(symbolText string) error {
	symbol, ok := grammar.Lookup(symbolText)
	if !ok {
		return apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageEvaluate,
			fmt.Sprintf("unknown symbol %q", symbolText))
	}
	if len(m.stack) < symbol.Arity {
		return apperrors.AtStage(apperrors.CodeNotationArity, apperrors.StageEvaluate,
			fmt.Sprintf("%q needs %d operands, have %d", symbol.Text, symbol.Arity, len(m.stack)))
	}
	operands := m.pop(symbol.Arity)
	expression := formatNumbers(operands) + " " + symbol.Text

	var outcome StepOutcome = NoOutcome{}
	switch symbol.Text {
	case grammar.Power:
		m.push(math.Pow(operands[0], operands[1]))
	case grammar.Add:
		m.push(operands[0] + operands[1])
	case grammar.Subtract:
		m.push(operands[0] - operands[1])
	case grammar.Multiply:
		m.push(operands[0] * operands[1])
	case grammar.Divide:
		m.push(operands[0] / operands[1])
	case grammar.Ceiling:
		m.push(math.Ceil(operands[0]))
	case grammar.PerDieBonus:
		bonus, err := diceParameter("per-die bonus", operands[0])
		if err != nil {
			return err
		}
		m.pending.Bonus = bonus
	case grammar.DropLowest:
		drop, err := diceParameter("drop count", operands[0])
		if err != nil {
			return err
		}
		m.pending.Drop = drop
	case grammar.Roll, grammar.RollExplodeHigh, grammar.RollExplodeLow, grammar.RollExplodeBoth:
		roll, err := m.roll(symbol.Text, operands[0], operands[1])
		if err != nil {
			return err
		}
		m.push(float64(roll.Total))
		outcome = RollOutcome{Outcome: roll}
	case grammar.Reroll:
		consumed, err := m.reroll(operands[0])
		if err != nil {
			return err
		}
		expression = consumed
	default:
		return apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageEvaluate,
			fmt.Sprintf("symbol %q cannot be evaluated", symbol.Text))
	}

	m.steps = append(m.steps, Step{
		Expression: expression,
		Stack:      m.snapshot(),
		Outcome:    outcome,
	})
	return nil
}

// roll rolls one group with the pending modifiers and clears them.
func (m *machine) roll(symbol string, countValue, facesValue float64) (dice.Outcome, error) {
	mode, err := dice.ParseMode(symbol)
	if err != nil {
		return dice.Outcome{}, apperrors.WrapAtStage(apperrors.CodeDiceUnsupportedMode, apperrors.StageRoll,
			"unsupported roll", err)
	}
	count, err := diceParameter("dice count", countValue)
	if err != nil {
		return dice.Outcome{}, err
	}
	faces, err := diceParameter("face count", facesValue)
	if err != nil {
		return dice.Outcome{}, err
	}

	request := dice.Request{
		Count: count,
		Sides: faces,
		Mode:  mode,
		Drop:  m.pending.Drop,
		Bonus: m.pending.Bonus,
	}
	m.pending = Modifiers{}

	outcome, err := dice.Roll(m.source, request)
	if err != nil {
		return dice.Outcome{}, apperrors.WrapAtStage(apperrors.CodeDiceInvalidSpec, apperrors.StageRoll,
			"roll "+request.Label(), err)
	}
	return outcome, nil
}

// reroll replaces the roll instruction that follows with its expansion and
// returns the consumed sub-expression for the trace.
func (m *machine) reroll(rerollValue float64) (string, error) {
	rerolls, err := diceParameter("reroll count", rerollValue)
	if err != nil {
		return "", err
	}
	if rerolls < 0 || rerolls > MaxRerolls {
		return "", apperrors.AtStage(apperrors.CodeDiceInvalidSpec, apperrors.StageRoll,
			fmt.Sprintf("reroll count %d outside [0, %d]", rerolls, MaxRerolls))
	}
	if len(m.stack) < 2 {
		return "", apperrors.AtStage(apperrors.CodeNotationArity, apperrors.StageEvaluate,
			fmt.Sprintf("%q needs a dice count and face count, have %d values", grammar.Reroll, len(m.stack)))
	}
	next, ok := m.queue.next()
	if !ok || next.IsLiteral() || !grammar.IsRoll(next.Symbol) {
		return "", apperrors.AtStage(apperrors.CodeNotationStructure, apperrors.StageEvaluate,
			fmt.Sprintf("%q must be followed by a dice roll", grammar.Reroll))
	}

	group := m.pop(2)
	m.queue.pushFront(ExpandReroll(rerolls, group[0], group[1], next.Symbol, m.pending)...)
	m.pending = Modifiers{}

	return fmt.Sprintf("%s %s %s", formatNumbers(group), formatNumber(rerollValue), grammar.Reroll), nil
}

func (m *machine) push(value float64) {
	m.stack = append(m.stack, value)
}

// pop removes the top n values, returned in push order.
func (m *machine) pop(n int) []float64 {
	split := len(m.stack) - n
	values := append([]float64(nil), m.stack[split:]...)
	m.stack = m.stack[:split]
	return values
}

// snapshot renders the stack top first.
func (m *machine) snapshot() string {
	parts := make([]string, len(m.stack))
	for i, value := range m.stack {
		parts[len(m.stack)-1-i] = formatNumber(value)
	}
	return strings.Join(parts, " ")
}

func diceParameter(name string, value float64) (int, error) {
	n, ok := ceilInt(value)
	if !ok {
		return 0, apperrors.AtStage(apperrors.CodeDiceInvalidSpec, apperrors.StageRoll,
			fmt.Sprintf("%s %s is out of range", name, formatNumber(value)))
	}
	return n, nil
}
