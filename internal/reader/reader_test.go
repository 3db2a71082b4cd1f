package reader

import (
	"testing"

	"github.com/cwbudde/golisp/internal/value"
)

func readOne(t *testing.T, src string) value.Value {
	t.Helper()
	h := value.NewHeap()
	r := New(h, src, "test")
	v, err := r.Read()
	if err != nil {
		t.Fatalf("Read(%q) error: %v", src, err)
	}
	return v
}

func TestReadAtoms(t *testing.T) {
	if v := readOne(t, "42"); v.(*value.Int).Val != 42 {
		t.Errorf("got %v, want Int 42", v)
	}
	if v := readOne(t, "-7"); v.(*value.Int).Val != -7 {
		t.Errorf("got %v, want Int -7", v)
	}
	if v := readOne(t, "3.5"); v.(*value.Float).Val != 3.5 {
		t.Errorf("got %v, want Float 3.5", v)
	}
	if v := readOne(t, "#t"); v != value.True {
		t.Errorf("got %v, want True", v)
	}
	if v := readOne(t, "#f"); v != value.False {
		t.Errorf("got %v, want False", v)
	}
	if v := readOne(t, `"hello"`); v.(*value.String).Val != "hello" {
		t.Errorf("got %v, want String hello", v)
	}
	if v := readOne(t, "foo-bar?"); v.(*value.Symbol).Name != "foo-bar?" {
		t.Errorf("got %v, want Symbol foo-bar?", v)
	}
}

func TestReadList(t *testing.T) {
	v := readOne(t, "(+ 1 2)")
	elems, ok := value.ToList(v)
	if !ok || len(elems) != 3 {
		t.Fatalf("ToList(%v) = %v, %v", v, elems, ok)
	}
	if elems[0].(*value.Symbol).Name != "+" {
		t.Errorf("elems[0] = %v, want +", elems[0])
	}
	if elems[1].(*value.Int).Val != 1 || elems[2].(*value.Int).Val != 2 {
		t.Errorf("elems = %v, want [+ 1 2]", elems)
	}
}

func TestReadNestedList(t *testing.T) {
	v := readOne(t, "(define (f x) (* x x))")
	elems, ok := value.ToList(v)
	if !ok || len(elems) != 3 {
		t.Fatalf("ToList(%v) = %v, %v", v, elems, ok)
	}
	if elems[0].(*value.Symbol).Name != "define" {
		t.Errorf("elems[0] = %v, want define", elems[0])
	}
	header, ok := value.ToList(elems[1])
	if !ok || len(header) != 2 {
		t.Fatalf("header = %v, %v", header, ok)
	}
}

func TestQuoteDesugars(t *testing.T) {
	v := readOne(t, "'x")
	elems, ok := value.ToList(v)
	if !ok || len(elems) != 2 {
		t.Fatalf("ToList(%v) = %v, %v", v, elems, ok)
	}
	if elems[0].(*value.Symbol).Name != "quote" {
		t.Errorf("elems[0] = %v, want quote", elems[0])
	}
	if elems[1].(*value.Symbol).Name != "x" {
		t.Errorf("elems[1] = %v, want x", elems[1])
	}
}

func TestLineCommentsSkipped(t *testing.T) {
	v := readOne(t, "; a comment\n42")
	if v.(*value.Int).Val != 42 {
		t.Errorf("got %v, want Int 42", v)
	}
}

func TestEmptyInputReturnsEof(t *testing.T) {
	v := readOne(t, "   ; just a comment\n")
	if v != value.Eof {
		t.Errorf("got %v, want Eof", v)
	}
}

func TestUnterminatedListIsReaderError(t *testing.T) {
	h := value.NewHeap()
	r := New(h, "(+ 1 2", "test")
	if _, err := r.Read(); err == nil {
		t.Fatalf("expected ReaderError for unterminated list")
	}
}

func TestUnexpectedCloseParenIsReaderError(t *testing.T) {
	h := value.NewHeap()
	r := New(h, ")", "test")
	if _, err := r.Read(); err == nil {
		t.Fatalf("expected ReaderError for unexpected ')'")
	}
}

func TestMultipleTopLevelForms(t *testing.T) {
	h := value.NewHeap()
	r := New(h, "1 2 3", "test")
	for _, want := range []int64{1, 2, 3} {
		v, err := r.Read()
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if v.(*value.Int).Val != want {
			t.Errorf("got %v, want %d", v, want)
		}
	}
	v, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if v != value.Eof {
		t.Errorf("got %v, want Eof", v)
	}
}
