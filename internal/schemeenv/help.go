package schemeenv

import (
	"fmt"
	"io"
	"sort"

	"github.com/cwbudde/golisp/internal/value"
)

// Print renders the environment for `help` with no argument (§4.5): bindings
// grouped by kind (syntax, builtin functions, user variables/functions),
// each group sorted and column-aligned by longest name, mirroring the
// teacher's `printEnv` grouping convention.
func (e *Environment) Print(w io.Writer) {
	var syntax, builtins, other []entry
	for _, en := range e.order {
		switch en.val.(type) {
		case *value.Syntax:
			syntax = append(syntax, en)
		case *value.BuiltinFunction:
			builtins = append(builtins, en)
		default:
			other = append(other, en)
		}
	}

	printGroup(w, "Special forms", syntax)
	printGroup(w, "Builtin functions", builtins)
	printGroup(w, "Variables", other)
}

func printGroup(w io.Writer, title string, entries []entry) {
	if len(entries) == 0 {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	longest := 0
	for _, en := range entries {
		if len(en.name) > longest {
			longest = len(en.name)
		}
	}

	fmt.Fprintf(w, "%s:\n", title)
	for _, en := range entries {
		fmt.Fprintf(w, "  %-*s  %s\n", longest, en.name, helpText(en.val))
	}
}

func helpText(v value.Value) string {
	switch t := v.(type) {
	case *value.Syntax:
		return t.Help
	case *value.BuiltinFunction:
		return t.Help
	default:
		return v.String()
	}
}

// Describe renders the `(help name)` form (§4.5): help text for
// primitives, pretty source for user functions.
func Describe(w io.Writer, v value.Value) {
	switch t := v.(type) {
	case *value.Syntax:
		fmt.Fprintln(w, t.Help)
	case *value.BuiltinFunction:
		fmt.Fprintln(w, t.Help)
	default:
		fmt.Fprintln(w, v.String())
	}
}
