// Package dice implements the single-group dice roll used by notation
// evaluation: plain, exploding, drop-lowest and per-die bonus rolls.
package dice

import (
	"errors"
	"fmt"
)

// MaxDice caps the number of dice rolled by a single group.
const MaxDice = 1000

// ErrInvalidDiceSpec indicates a roll request has out-of-range parameters.
var ErrInvalidDiceSpec = errors.New("invalid dice spec")

// ErrUnsupportedMode indicates a roll mode letter outside d, e, f and g.
var ErrUnsupportedMode = errors.New("unsupported roll mode")

// Mode selects how a group treats dice landing on a triggering face.
type Mode byte

const (
	// ModePlain rolls each die once.
	ModePlain Mode = 'd'
	// ModeExplodeHigh rerolls and appends a die whenever the newest die is the maximum face.
	ModeExplodeHigh Mode = 'e'
	// ModeExplodeLow rerolls and appends a die whenever the newest die is a 1.
	ModeExplodeLow Mode = 'f'
	// ModeExplodeBoth applies both triggers, but only for dice with more than two faces.
	ModeExplodeBoth Mode = 'g'
)

// ParseMode maps a roll operator to its Mode.
func ParseMode(symbol string) (Mode, error) {
	if len(symbol) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, symbol)
	}
	mode := Mode(symbol[0])
	switch mode {
	case ModePlain, ModeExplodeHigh, ModeExplodeLow, ModeExplodeBoth:
		return mode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, symbol)
	}
}

func (m Mode) String() string {
	return string(rune(m))
}

// Source draws uniform integers in [0, n). *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Request describes one dice group.
type Request struct {
	Count int  // number of dice, 1..MaxDice
	Sides int  // faces per die, at least 2
	Mode  Mode // explode behavior
	Drop  int  // lowest dice excluded from the total
	Bonus int  // added to every kept die
}

// Validate checks the request bounds.
func (r Request) Validate() error {
	if r.Count < 1 || r.Count > MaxDice {
		return fmt.Errorf("%w: dice count %d outside [1, %d]", ErrInvalidDiceSpec, r.Count, MaxDice)
	}
	if r.Sides <= 1 {
		return fmt.Errorf("%w: dice need at least 2 sides, got %d", ErrInvalidDiceSpec, r.Sides)
	}
	if r.Drop < 0 || r.Drop > r.Count {
		return fmt.Errorf("%w: cannot drop %d of %d dice", ErrInvalidDiceSpec, r.Drop, r.Count)
	}
	if _, err := ParseMode(r.Mode.String()); err != nil {
		return err
	}
	return nil
}

// Label returns the human-readable group description, e.g. "4d6 (Dropping lowest 1)".
func (r Request) Label() string {
	label := fmt.Sprintf("%d%c%d", r.Count, byte(r.Mode), r.Sides)
	if r.Drop > 0 {
		label += fmt.Sprintf(" (Dropping lowest %d)", r.Drop)
	}
	return label
}

// Outcome captures one completed dice group.
type Outcome struct {
	Label   string
	Kept    []int // dice counted toward Total, ascending when dice were dropped
	Dropped []int // lowest dice excluded from Total
	Rerolls int   // dice added by explode triggers
	Bonus   int   // per-die bonus applied to each kept die
	Total   int
}
