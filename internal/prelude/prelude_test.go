package prelude

import (
	"testing"

	"github.com/cwbudde/golisp/internal/evaluator"
	"github.com/cwbudde/golisp/internal/reader"
	"github.com/cwbudde/golisp/internal/value"
)

func evalString(t *testing.T, interp *evaluator.Interpreter, src string) value.Value {
	t.Helper()
	r := reader.New(interp.Heap, src, "test")
	var last value.Value = value.Void
	for {
		form, err := r.Read()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		if form == value.Eof {
			return last
		}
		last, err = interp.Eval(interp.Root, form)
		if err != nil {
			t.Fatalf("Eval(%v) error: %v", form, err)
		}
	}
}

func TestLoadInstallsLibraryProcedures(t *testing.T) {
	interp := evaluator.New()
	if err := Load(interp, ""); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	got := evalString(t, interp, `(length (list 1 2 3 4))`)
	if got.(*value.Int).Val != 4 {
		t.Errorf("(length (list 1 2 3 4)) = %v, want 4", got)
	}

	got = evalString(t, interp, `(reverse (list 1 2 3))`)
	if got.String() != "(3 2 1)" {
		t.Errorf("reverse = %q, want (3 2 1)", got.String())
	}

	got = evalString(t, interp, `(append (list 1 2) (list 3 4))`)
	if got.String() != "(1 2 3 4)" {
		t.Errorf("append = %q, want (1 2 3 4)", got.String())
	}

	got = evalString(t, interp, `(map (lambda (x) (* x x)) (list 1 2 3))`)
	if got.String() != "(1 4 9)" {
		t.Errorf("map square = %q, want (1 4 9)", got.String())
	}

	got = evalString(t, interp, `(filter (lambda (x) (> x 2)) (list 1 2 3 4))`)
	if got.String() != "(3 4)" {
		t.Errorf("filter = %q, want (3 4)", got.String())
	}

	got = evalString(t, interp, `(fold-left + 0 (list 1 2 3 4))`)
	if got.(*value.Int).Val != 10 {
		t.Errorf("fold-left + = %v, want 10", got)
	}

	got = evalString(t, interp, `(not #f)`)
	if got != value.True {
		t.Errorf("(not #f) = %v, want True", got)
	}
}
