package dice

import "sort"

// Roll rolls one dice group drawing from rng.
//
// # Explode
//
// In the exploding modes every die that lands on a triggering face is
// followed by another die, repeated while the newest die still triggers.
// Each added die counts as one reroll. ModeExplodeBoth only triggers when
// Sides > 2, since every face of a two-sided die is both minimum and maximum.
//
// # Drop and bonus
//
// After all dice (including explode additions) are collected, a positive
// Drop sorts the dice ascending and moves the lowest Drop dice to Dropped.
// Total is the sum of every kept die plus Bonus per kept die.
//
// # Errors
//
//   - Count outside [1, MaxDice], Sides <= 1, or Drop outside [0, Count]
//     returns ErrInvalidDiceSpec.
//   - A Mode other than d, e, f or g returns ErrUnsupportedMode.
func Roll(rng Source, request Request) (Outcome, error) {
	if err := request.Validate(); err != nil {
		return Outcome{}, err
	}

	results := make([]int, 0, request.Count)
	rerolls := 0
	for i := 0; i < request.Count; i++ {
		value := rollDie(rng, request.Sides)
		results = append(results, value)
		for request.triggers(value) {
			rerolls++
			value = rollDie(rng, request.Sides)
			results = append(results, value)
		}
	}

	var dropped []int
	if request.Drop > 0 {
		sort.Ints(results)
		dropped = append([]int(nil), results[:request.Drop]...)
		results = results[request.Drop:]
	}

	total := 0
	for _, value := range results {
		total += value + request.Bonus
	}

	return Outcome{
		Label:   request.Label(),
		Kept:    results,
		Dropped: dropped,
		Rerolls: rerolls,
		Bonus:   request.Bonus,
		Total:   total,
	}, nil
}

// triggers reports whether value causes another die to be added.
func (r Request) triggers(value int) bool {
	switch r.Mode {
	case ModeExplodeHigh:
		return value == r.Sides
	case ModeExplodeLow:
		return value == 1
	case ModeExplodeBoth:
		return r.Sides > 2 && (value == r.Sides || value == 1)
	default:
		return false
	}
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(rng Source, sides int) int {
	return rng.Intn(sides) + 1
}
