package evaluator

import (
	"bytes"
	"testing"

	"github.com/cwbudde/golisp/internal/reader"
	"github.com/cwbudde/golisp/internal/value"
)

// run reads and evaluates every top-level form in src against a fresh
// interpreter, returning the last form's result.
func run(t *testing.T, src string) value.Value {
	t.Helper()
	i := New()
	r := reader.New(i.Heap, src, "test")
	var last value.Value = value.Void
	for {
		form, err := r.Read()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		if form == value.Eof {
			return last
		}
		last, err = i.Eval(i.Root, form)
		if err != nil {
			t.Fatalf("Eval(%v) error: %v", form, err)
		}
	}
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	i := New()
	r := reader.New(i.Heap, src, "test")
	for {
		form, err := r.Read()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		if form == value.Eof {
			return nil
		}
		if _, err := i.Eval(i.Root, form); err != nil {
			return err
		}
	}
}

func TestArithmetic(t *testing.T) {
	cases := map[string]int64{
		"(+ 1 2 3)":    6,
		"(- 10 4 1)":   5,
		"(- 5)":        -5,
		"(* 2 3 4)":    24,
		"(% 7 3)":      1,
		"(+ 1 (* 2 3))": 7,
	}
	for src, want := range cases {
		got := run(t, src)
		in, ok := got.(*value.Int)
		if !ok || in.Val != want {
			t.Errorf("%s = %v, want Int %d", src, got, want)
		}
	}
}

func TestDivisionYieldsFloat(t *testing.T) {
	got := run(t, "(/ 10 4)")
	f, ok := got.(*value.Float)
	if !ok || f.Val != 2.5 {
		t.Errorf("(/ 10 4) = %v, want Float 2.5", got)
	}
}

func TestDivisionSingleOperandIsDivisionError(t *testing.T) {
	err := runErr(t, "(/ 5)")
	if err == nil {
		t.Fatalf("expected DivisionError for single-operand /")
	}
}

func TestStringConcatenation(t *testing.T) {
	got := run(t, `(+ "count: " 3)`)
	s, ok := got.(*value.String)
	if !ok || s.Val != "count: 3" {
		t.Errorf(`(+ "count: " 3) = %v, want String "count: 3"`, got)
	}
}

func TestIfBranching(t *testing.T) {
	if got := run(t, `(if #t 1 2)`); got.(*value.Int).Val != 1 {
		t.Errorf("if true branch = %v, want 1", got)
	}
	if got := run(t, `(if #f 1 2)`); got.(*value.Int).Val != 2 {
		t.Errorf("if false branch = %v, want 2", got)
	}
	if got := run(t, `(if 0 1 2)`); got.(*value.Int).Val != 2 {
		t.Errorf("if 0 (falsy) = %v, want 2", got)
	}
}

func TestDefineAndCallUserFunction(t *testing.T) {
	got := run(t, `
		(define (square x) (* x x))
		(square 6)
	`)
	if got.(*value.Int).Val != 36 {
		t.Errorf("(square 6) = %v, want 36", got)
	}
}

func TestLambdaClosureCapture(t *testing.T) {
	got := run(t, `
		(define (make-adder n) (lambda (x) (+ x n)))
		(define add5 (make-adder 5))
		(add5 10)
	`)
	if got.(*value.Int).Val != 15 {
		t.Errorf("(add5 10) = %v, want 15", got)
	}
}

func TestSetBangMutatesThroughClosure(t *testing.T) {
	got := run(t, `
		(define counter 0)
		(define (bump!) (set! counter (+ counter 1)))
		(bump!)
		(bump!)
		(bump!)
		counter
	`)
	if got.(*value.Int).Val != 3 {
		t.Errorf("counter = %v, want 3", got)
	}
}

func TestRecursiveFactorial(t *testing.T) {
	got := run(t, `
		(define (fact n) (if (= n 0) 1 (* n (fact (- n 1)))))
		(fact 10)
	`)
	if got.(*value.Int).Val != 3628800 {
		t.Errorf("(fact 10) = %v, want 3628800", got)
	}
}

func TestDeepTailRecursionDoesNotOverflow(t *testing.T) {
	got := run(t, `
		(define (count-to n acc) (if (= n 0) acc (count-to (- n 1) (+ acc 1))))
		(count-to 200000 0)
	`)
	if got.(*value.Int).Val != 200000 {
		t.Errorf("count-to = %v, want 200000", got)
	}
}

func TestConsCarCdrAndImproperListPrinting(t *testing.T) {
	got := run(t, `(cons 1 2)`)
	if got.String() != "(1 . 2)" {
		t.Errorf("(cons 1 2) printed %q, want %q", got.String(), "(1 . 2)")
	}
	got = run(t, `(car (cons 1 2))`)
	if got.(*value.Int).Val != 1 {
		t.Errorf("car = %v, want 1", got)
	}
	got = run(t, `(list 1 2 3)`)
	if got.String() != "(1 2 3)" {
		t.Errorf("(list 1 2 3) printed %q, want %q", got.String(), "(1 2 3)")
	}
}

func TestAndOrShortCircuit(t *testing.T) {
	if got := run(t, `(and 1 2 #f 3)`); got != value.False {
		t.Errorf("and with a false operand = %v, want False", got)
	}
	if got := run(t, `(and 1 2 3)`); got.(*value.Int).Val != 3 {
		t.Errorf("and with all-truthy = %v, want 3", got)
	}
	if got := run(t, `(or #f #f 5)`); got.(*value.Int).Val != 5 {
		t.Errorf("or first truthy = %v, want 5", got)
	}
	if got := run(t, `(or #f #f)`); got != value.False {
		t.Errorf("or all-falsy = %v, want False", got)
	}
}

func TestUndefinedVariableIsError(t *testing.T) {
	if err := runErr(t, "nope"); err == nil {
		t.Fatalf("expected UndefinedVariableError")
	}
}

func TestArityMismatchIsError(t *testing.T) {
	if err := runErr(t, "(cons 1)"); err == nil {
		t.Fatalf("expected ArityError for (cons 1)")
	}
}

func TestDisplayWritesToConfiguredOutput(t *testing.T) {
	i := New()
	var buf bytes.Buffer
	i.SetOutput(&buf)
	r := reader.New(i.Heap, `(display "hi" 42)`, "test")
	form, _ := r.Read()
	if _, err := i.Eval(i.Root, form); err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if buf.String() != "hi 42\n" {
		t.Errorf("display output = %q, want %q", buf.String(), "hi 42\n")
	}
}

func TestFunctionBodyAndArglist(t *testing.T) {
	got := run(t, `
		(define (f x y) (+ x y))
		(function-arglist f)
	`)
	if got.String() != "(x y)" {
		t.Errorf("function-arglist = %q, want (x y)", got.String())
	}
	got = run(t, `
		(define (f x y) (+ x y))
		(function-body f)
	`)
	if got.String() != "((+ x y))" {
		t.Errorf("function-body = %q, want ((+ x y))", got.String())
	}
}

func TestGarbageCollectionReclaimsUnreachableCons(t *testing.T) {
	i := New()
	r := reader.New(i.Heap, `(cons 1 2)`, "test")
	form, _ := r.Read()
	before := i.Heap.Len()
	if _, err := i.Eval(i.Root, form); err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	after := i.Heap.Len()
	if after > before+3 {
		t.Errorf("heap grew to %d after one unreachable cons cell, collector should have reclaimed it", after)
	}
}
