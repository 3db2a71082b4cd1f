// Package trampoline implements the interpreter's tail-call-safe evaluation
// engine (§3/§4.3): an explicit argument stack and function (continuation)
// stack replace host-language recursion, so arbitrarily deep user
// recursion never grows the Go call stack.
//
// A Step is one bounded unit of work. It takes no explicit parameters —
// it pops whatever it needs off the argument stack — and returns the next
// Step to run, or nil to signal that this Machine's run has finished (the
// "stop" sentinel of spec.md §4.3).
package trampoline

import "github.com/cwbudde/golisp/internal/errors"

// Step is one trampoline unit of work.
type Step func() Step

// Machine holds one interpreter session's trampoline state: the argument
// stack, the function stack, and the last-return slot (§3). Each
// evaluator.Interpreter owns exactly one Machine; nothing here is a
// process-wide global, so multiple sessions can run (never concurrently
// with each other — see §5) without interfering.
type Machine struct {
	args       []any
	funcs      []Step
	lastReturn any
}

// NewMachine creates a Machine with empty stacks.
func NewMachine() *Machine {
	return &Machine{}
}

// PushArg pushes one argument onto the argument stack.
func (m *Machine) PushArg(a any) {
	m.args = append(m.args, a)
}

// PushArgs pushes a slice of arguments such that the first element of args
// is the first one popped (§4.3: "pushed in reverse declaration order").
func (m *Machine) PushArgs(args []any) {
	for i := len(args) - 1; i >= 0; i-- {
		m.PushArg(args[i])
	}
}

// popRaw pops and returns the top of the argument stack.
func (m *Machine) popRaw() any {
	if len(m.args) == 0 {
		errors.Panic("trying to pop argument from empty stack")
	}
	top := m.args[len(m.args)-1]
	m.args = m.args[:len(m.args)-1]
	return top
}

// PopArg pops and type-asserts the top of the argument stack. A type
// mismatch or empty stack is an InternalError: it indicates an evaluator
// bug, never a user-program bug (§4.3).
func PopArg[T any](m *Machine) T {
	raw := m.popRaw()
	v, ok := raw.(T)
	if !ok {
		errors.Panic("argument stack type mismatch: wanted %T, got %T (%v)", v, raw, raw)
	}
	return v
}

// PopArgs pops the top n elements, in the order they were originally
// declared: since PushArgs pushes in reverse declaration order, the LIFO
// pop order already is declaration order.
func PopArgs[T any](m *Machine, n int) []T {
	if len(m.args) < n {
		errors.Panic("argument stack doesn't contain %d values", n)
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = PopArg[T](m)
	}
	return out
}

// PushFunc pushes a continuation onto the function stack.
func (m *Machine) PushFunc(s Step) {
	m.funcs = append(m.funcs, s)
}

// PopFunc pops and returns the top of the function stack. An empty stack
// is an InternalError (§4.3): Run always keeps a sentinel entry until the
// whole evaluation completes, so a legitimate Return() call never sees an
// empty stack.
func (m *Machine) PopFunc() Step {
	if len(m.funcs) == 0 {
		errors.Panic("could not pop from function stack")
	}
	top := m.funcs[len(m.funcs)-1]
	m.funcs = m.funcs[:len(m.funcs)-1]
	return top
}

// Call simulates a tail call to next: it pushes args (in declaration
// order), pushes continuation onto the function stack (unless nil), and
// returns next for the driver loop to invoke. Whatever next eventually
// Returns flows into continuation.
func (m *Machine) Call(next Step, continuation Step, args ...any) Step {
	m.PushArgs(args)
	if continuation != nil {
		m.PushFunc(continuation)
	}
	return next
}

// Return writes value to the last-return slot and pops one entry from the
// function stack, returning it as the next step to run.
func (m *Machine) Return(value any) Step {
	m.lastReturn = value
	return m.PopFunc()
}

// LastReturn returns the value most recently produced by Return.
func (m *Machine) LastReturn() any {
	return m.lastReturn
}

// Snapshot returns the current depth of the argument and function stacks,
// for a caller that wants to restore them with TruncateTo after a user
// error aborts a run partway through (§7: unwind and clear stacks before
// the next top-level turn).
func (m *Machine) Snapshot() (args, funcs int) {
	return len(m.args), len(m.funcs)
}

// TruncateTo restores the stacks to a previously captured Snapshot,
// discarding anything pushed since. It is a no-op after a run that
// completed normally, since Run already leaves both stacks exactly as they
// were found.
func (m *Machine) TruncateTo(args, funcs int) {
	m.args = m.args[:args]
	m.funcs = m.funcs[:funcs]
}

// Empty reports whether both stacks are empty, which spec.md §3 requires
// between top-level evaluations (evaluator.Interpreter.Eval asserts this on
// entry, and the collector only runs when it holds).
func (m *Machine) Empty() bool {
	return len(m.args) == 0 && len(m.funcs) == 0
}

// haltSentinel is pushed once per Run so that the final Return() always has
// something to pop: popping it naturally ends the trampoline loop.
func haltSentinel() Step { return nil }

// Run drives start to completion: it repeatedly invokes the current step
// until the stop sentinel (nil) is returned, then returns the value left
// in the last-return slot. When the run ends through the final Return,
// both stacks are left exactly as Run found them; a step that stops the
// run early by returning nil leaves whatever was pushed since in place
// (TruncateTo discards it).
func (m *Machine) Run(start Step) any {
	m.PushFunc(haltSentinel)
	step := start
	for step != nil {
		next := step()
		if next == nil {
			break
		}
		step = next
	}
	return m.lastReturn
}
