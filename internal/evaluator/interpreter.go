// Package evaluator ties the value heap, the lexical environment, and the
// trampoline together into the interpreter's evaluation core (§4.4), its
// special forms (§4.5), and its primitive operations (§4.6).
package evaluator

import (
	"io"
	"os"

	"github.com/cwbudde/golisp/internal/errors"
	"github.com/cwbudde/golisp/internal/schemeenv"
	"github.com/cwbudde/golisp/internal/trampoline"
	"github.com/cwbudde/golisp/internal/value"
	"github.com/google/uuid"
)

// Interpreter owns one session's heap, root environment, and trampoline
// machine. It is not safe for concurrent use (§5): a session is driven by
// exactly one goroutine at a time.
type Interpreter struct {
	Heap *value.Heap
	Root *schemeenv.Environment
	M    *trampoline.Machine

	// SessionID tags diagnostics (InternalError reports, --selftest output) with a
	// stable identifier for one REPL/script run, the way the teacher's
	// request-scoped logs are tagged.
	SessionID uuid.UUID

	out io.Writer
	err error
}

// New creates an interpreter with every builtin and special form installed
// in its root environment, ready to load a prelude and then evaluate
// top-level forms.
func New() *Interpreter {
	i := &Interpreter{
		Heap:      value.NewHeap(),
		M:         trampoline.NewMachine(),
		SessionID: uuid.New(),
		out:       os.Stdout,
	}
	i.Root = schemeenv.New()
	i.installPrimitives()
	i.installSpecialForms()
	return i
}

// SetOutput redirects `display` output, used by tests and by non-stdout
// embeddings of the interpreter.
func (i *Interpreter) SetOutput(w io.Writer) {
	i.out = w
}

// fail records a user-facing SchemeError and halts the current trampoline
// run immediately by returning the stop sentinel. Eval is responsible for
// noticing i.err afterward and converting it into a returned error.
func (i *Interpreter) fail(e error) trampoline.Step {
	i.err = e
	return nil
}

// Eval evaluates one top-level expression against env, which is Root for a
// REPL/script top-level form and may be another environment when Go code
// evaluates a form in a narrower scope. Per §3, the argument and function
// stacks are always empty before and after Eval: Eval raises an
// InternalError if they are not empty on entry, and any leftover state from
// a user error is discarded here rather than carried into the next
// top-level turn.
func (i *Interpreter) Eval(env *schemeenv.Environment, expr value.Value) (value.Value, error) {
	startArgs, startFuncs := i.M.Snapshot()

	// Internal panics are raised deep in the trampoline (errors.Panic),
	// far from anything that knows which session is running. Stamp the
	// session here, the one place that does, before it reaches the
	// top-level recover() in cmd/golisp/main.go.
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(errors.Internal); ok {
				ie.Session = i.SessionID.String()
				panic(ie)
			}
			panic(r)
		}
	}()

	if startArgs != 0 || startFuncs != 0 {
		errors.Panic("trampoline stacks not empty at start of top-level evaluation (%d arguments, %d continuations)", startArgs, startFuncs)
	}

	i.err = nil
	result := i.M.Run(func() trampoline.Step {
		return i.M.Call(i.stepEval, nil, expr, env)
	})
	i.M.TruncateTo(startArgs, startFuncs)

	if i.err != nil {
		e := i.err
		i.err = nil
		return nil, e
	}
	v, _ := result.(value.Value)
	i.CollectGarbage()
	return v, nil
}

// CollectGarbage runs a mark-and-sweep pass if the trampoline is at rest
// (§5: the collector never runs mid-evaluation). It is called automatically
// at the end of every top-level Eval that completes without an error,
// matching "between top-level REPL turns" in spec.md §5.
func (i *Interpreter) CollectGarbage() int {
	if !i.M.Empty() {
		return 0
	}
	return i.Heap.MarkAndSweep(i.Root)
}

// errTypeMismatch is a small helper for primitives rejecting an operand of
// the wrong tag.
func errTypeMismatch(op string, v value.Value) error {
	return errors.TypeError("%s: unsupported operand of type %s", op, value.TypeName(v))
}
