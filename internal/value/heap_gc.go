package value

// MarkAndSweep implements §4.7: mark every value reachable from root, then
// delete everything left unmarked and non-essential from the live set.
// Called by the evaluator between top-level REPL turns, when both
// trampoline stacks are empty (see internal/trampoline).
func (h *Heap) MarkAndSweep(root Environment) int {
	mark(root)
	return h.sweep()
}

// mark walks every binding reachable from env (and its ancestors, since a
// binding in an outer scope is reachable from any scope that closes over
// it) and flags each one's transitive closure under Car/Cdr/Params/Body/Env.
func mark(env Environment) {
	for e := env; e != nil; e = e.Outer() {
		e.ForEachLocal(func(_ string, v Value) {
			markValue(v)
		})
	}
}

func markValue(v Value) {
	if v == nil || v.marked() {
		return
	}
	switch o := v.(type) {
	case *Cons:
		o.setMarked(true)
		markValue(o.Car)
		markValue(o.Cdr)
	case *UserFunction:
		o.setMarked(true)
		for _, p := range o.Params {
			markValue(p)
		}
		for _, b := range o.Body {
			markValue(b)
		}
		mark(o.Env)
	default:
		v.setMarked(true)
	}
}

// sweep deletes every unmarked, non-essential value from the live set and
// resets the mark bit on survivors. Returns the number of values removed.
func (h *Heap) sweep() int {
	survivors := h.live[:0]
	removed := 0
	for _, v := range h.live {
		if !v.marked() && !v.essential() {
			removed++
			continue
		}
		v.setMarked(false)
		survivors = append(survivors, v)
	}
	h.live = survivors
	return removed
}
