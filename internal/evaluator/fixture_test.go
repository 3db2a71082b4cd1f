package evaluator

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/golisp/internal/reader"
	"github.com/cwbudde/golisp/internal/value"
)

// transcript evaluates each line of src as a separate top-level form
// against one interpreter session and renders it the way a REPL would:
// "> form" followed by the printed result (or any error), one pair per
// line. This is the snapshot unit, grounded on the teacher's
// TestDWScriptFixtures (internal/interp/fixture_test.go), which runs whole
// source fixtures through go-snaps rather than asserting individual
// expected strings inline.
func transcript(t *testing.T, lines []string) string {
	t.Helper()
	i := New()
	var out bytes.Buffer
	i.SetOutput(&out)
	for _, line := range lines {
		fmt.Fprintf(&out, "> %s\n", line)
		r := reader.New(i.Heap, line, "<transcript>")
		for {
			form, err := r.Read()
			if err != nil {
				fmt.Fprintf(&out, "%v\n", err)
				break
			}
			if form == value.Eof {
				break
			}
			result, err := i.Eval(i.Root, form)
			if err != nil {
				fmt.Fprintf(&out, "%v\n", err)
				break
			}
			if result != value.Void {
				fmt.Fprintln(&out, result.String())
			}
		}
	}
	return out.String()
}

func TestFixtureTranscripts(t *testing.T) {
	fixtures := []struct {
		name  string
		lines []string
	}{
		{
			name: "arithmetic_and_printing",
			lines: []string{
				`(+ 1 2 3)`,
				`(- 10 4 1)`,
				`(/ 10 4)`,
				`(* 2 3 4)`,
				`(% 7 3)`,
				`(cons 1 2)`,
				`(list 1 2 3)`,
			},
		},
		{
			name: "define_and_recursion",
			lines: []string{
				`(define (fact n) (if (= n 0) 1 (* n (fact (- n 1)))))`,
				`(fact 5)`,
				`(fact 10)`,
			},
		},
		{
			name: "closures_and_mutation",
			lines: []string{
				`(define (make-counter) (define n 0) (lambda () (set! n (+ n 1)) n))`,
				`(define c (make-counter))`,
				`(c)`,
				`(c)`,
				`(c)`,
			},
		},
		{
			name: "prelude_list_procedures",
			lines: []string{
				`(define (iota-helper n acc) (if (= n 0) acc (iota-helper (- n 1) (cons n acc))))`,
				`(define nums (iota-helper 5 '()))`,
				`nums`,
				`(reverse nums)`,
				`(length nums)`,
			},
		},
		{
			name: "runtime_errors",
			lines: []string{
				`(car 5)`,
				`(/ 1 0)`,
				`nope`,
				`(cons 1)`,
			},
		},
		{
			name: "help_output",
			lines: []string{
				`(define my-value 42)`,
				`(help cons)`,
			},
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			got := transcript(t, f.lines)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_transcript", f.name), got)
		})
	}
}
