package eval

// queue holds the instructions not yet executed. Reroll expansion splices
// new instructions at the front; consumed instructions are never revisited.
type queue struct {
	items []Instruction
}

func newQueue(items []Instruction) *queue {
	return &queue{items: append([]Instruction(nil), items...)}
}

func (q *queue) next() (Instruction, bool) {
	if len(q.items) == 0 {
		return Instruction{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *queue) pushFront(items ...Instruction) {
	merged := make([]Instruction, 0, len(items)+len(q.items))
	merged = append(merged, items...)
	q.items = append(merged, q.items...)
}
