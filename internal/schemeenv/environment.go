// Package schemeenv implements the interpreter's lexical environment:
// name-to-value bindings chained to an optional parent scope, modeled on
// the teacher's internal/interp/runtime.Environment but case-sensitive
// (this dialect has no DWScript-style case folding) and backed by a plain
// ordered map since §4.2 requires `help` printing to be the only
// order-observable operation.
package schemeenv

import (
	"github.com/cwbudde/golisp/internal/errors"
	"github.com/cwbudde/golisp/internal/value"
)

// entry pairs a name with its value, preserving insertion order for help
// printing (§4.5 `help`).
type entry struct {
	name string
	val  value.Value
}

// Environment is a symbol table for one lexical scope, chained to an
// optional outer (parent) scope.
type Environment struct {
	index map[string]int
	order []entry
	outer *Environment
}

// New creates a root-level environment with no parent scope.
func New() *Environment {
	return &Environment{index: make(map[string]int)}
}

// NewEnclosed creates a new environment whose parent is outer. A new
// environment is created this way on every user-function call (§3), with
// its parent set to the function's captured environment.
func NewEnclosed(outer *Environment) *Environment {
	e := New()
	e.outer = outer
	return e
}

// Outer implements value.Environment.
func (e *Environment) Outer() value.Environment {
	if e.outer == nil {
		return nil
	}
	return e.outer
}

// ForEachLocal implements value.Environment: it is how the garbage
// collector walks bindings without internal/value depending on this
// package.
func (e *Environment) ForEachLocal(f func(name string, v value.Value)) {
	for _, en := range e.order {
		f(en.name, en.val)
	}
}

// Lookup searches this environment, then its ancestors, for name.
// Returns UndefinedVariableError if not found anywhere in the chain.
func (e *Environment) Lookup(name string) (value.Value, error) {
	for env := e; env != nil; env = env.outer {
		if i, ok := env.index[name]; ok {
			return env.order[i].val, nil
		}
	}
	return nil, errors.UndefinedVariableError(name)
}

// Define inserts or overwrites name in THIS environment only.
func (e *Environment) Define(name string, v value.Value) {
	if i, ok := e.index[name]; ok {
		e.order[i].val = v
		return
	}
	e.index[name] = len(e.order)
	e.order = append(e.order, entry{name: name, val: v})
}

// Set writes the binding in this environment AND every ancestor, per the
// deliberate `set!` simplification documented in spec.md §3/§9: this is
// NOT classical Scheme's single-binding mutation, it is define() applied
// at every level of the scope chain.
func (e *Environment) Set(name string, v value.Value) {
	for env := e; env != nil; env = env.outer {
		env.Define(name, v)
	}
}

