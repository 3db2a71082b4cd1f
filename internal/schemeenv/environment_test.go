package schemeenv

import (
	"testing"

	"github.com/cwbudde/golisp/internal/value"
)

func TestDefineAndLookup(t *testing.T) {
	env := New()
	h := value.NewHeap()

	env.Define("x", h.NewInt(10))

	got, err := env.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got.(*value.Int).Val != 10 {
		t.Errorf("Lookup(x) = %v, want 10", got)
	}
}

func TestDefineOverwritesSameEnvironment(t *testing.T) {
	env := New()
	h := value.NewHeap()

	env.Define("x", h.NewInt(1))
	env.Define("x", h.NewInt(2))

	got, _ := env.Lookup("x")
	if got.(*value.Int).Val != 2 {
		t.Errorf("Lookup(x) = %v, want 2 (overwritten)", got)
	}
}

func TestLookupUndefinedReturnsError(t *testing.T) {
	env := New()
	if _, err := env.Lookup("nope"); err == nil {
		t.Errorf("expected UndefinedVariableError, got nil")
	}
}

func TestLookupSearchesAncestors(t *testing.T) {
	h := value.NewHeap()
	root := New()
	root.Define("x", h.NewInt(42))

	child := NewEnclosed(root)
	got, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got.(*value.Int).Val != 42 {
		t.Errorf("Lookup(x) in child = %v, want 42", got)
	}
}

func TestSetWritesEveryAncestor(t *testing.T) {
	h := value.NewHeap()
	root := New()
	root.Define("c", h.NewInt(0))
	mid := NewEnclosed(root)
	leaf := NewEnclosed(mid)

	leaf.Set("c", h.NewInt(1))

	for _, env := range []*Environment{root, mid, leaf} {
		got, err := env.Lookup("c")
		if err != nil {
			t.Fatalf("Lookup returned error: %v", err)
		}
		if got.(*value.Int).Val != 1 {
			t.Errorf("Lookup(c) = %v, want 1 propagated to every ancestor", got)
		}
	}
}

func TestDefineShadowsOuterInChild(t *testing.T) {
	h := value.NewHeap()
	root := New()
	root.Define("x", h.NewInt(1))
	child := NewEnclosed(root)
	child.Define("x", h.NewInt(2))

	got, _ := child.Lookup("x")
	if got.(*value.Int).Val != 2 {
		t.Errorf("child Lookup(x) = %v, want 2 (shadowed)", got)
	}
	got, _ = root.Lookup("x")
	if got.(*value.Int).Val != 1 {
		t.Errorf("root Lookup(x) = %v, want 1 (unaffected by shadowing)", got)
	}
}
