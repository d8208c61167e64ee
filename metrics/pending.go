package metrics

// Pending holds counter updates made by work that may still be rolled back. A nil
// Pending applies updates immediately.
type Pending struct {
	ops []func()
}

func (p *Pending) Add(op func()) {
	if p == nil {
		op()
		return
	}
	p.ops = append(p.ops, op)
}

// Mark returns the position to Discard back to.
func (p *Pending) Mark() int {
	return len(p.ops)
}

// Discard drops every update queued after mark.
func (p *Pending) Discard(mark int) {
	if mark < len(p.ops) {
		p.ops = p.ops[:mark]
	}
}

// Flush applies the queued updates in order and empties the queue.
func (p *Pending) Flush() {
	ops := p.ops
	p.ops = nil
	for _, op := range ops {
		op()
	}
}
