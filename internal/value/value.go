// Package value implements the tagged heap value model of the interpreter:
// every runtime object carries one of a closed set of tags, is allocated
// through a constructor that registers it with a Heap (see heap.go) for
// later garbage collection, and renders itself through String().
package value

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tag discriminates the concrete type of a Value, mirroring the original
// interpreter's ObjectTypeTag enum.
type Tag int

const (
	TagInt Tag = iota
	TagFloat
	TagString
	TagSymbol
	TagCons
	TagNil
	TagTrue
	TagFalse
	TagVoid
	TagEof
	TagBuiltinFunction
	TagUserFunction
	TagSyntax
)

func (t Tag) String() string {
	switch t {
	case TagInt:
		return "Int"
	case TagFloat:
		return "Float"
	case TagString:
		return "String"
	case TagSymbol:
		return "Symbol"
	case TagCons:
		return "Cons"
	case TagNil:
		return "Nil"
	case TagTrue:
		return "True"
	case TagFalse:
		return "False"
	case TagVoid:
		return "Void"
	case TagEof:
		return "Eof"
	case TagBuiltinFunction:
		return "BuiltinFunction"
	case TagUserFunction:
		return "UserFunction"
	case TagSyntax:
		return "Syntax"
	default:
		return "Unknown"
	}
}

// Value is a heap-allocated, uniquely identified runtime object. Every
// concrete type below satisfies it by embedding header, which carries the
// bookkeeping the garbage collector needs (see heap.go).
type Value interface {
	Tag() Tag
	String() string

	marked() bool
	setMarked(bool)
	essential() bool
	setEssential(bool)
	id() int64
}

// header supplies the GC bookkeeping shared by every concrete value type.
// It is unexported: only this package constructs values, so only this
// package can flip essential/marked directly.
type header struct {
	objID    int64
	isMarked bool
	isEssen  bool
}

func (h *header) marked() bool          { return h.isMarked }
func (h *header) setMarked(m bool)      { h.isMarked = m }
func (h *header) essential() bool       { return h.isEssen }
func (h *header) setEssential(e bool)   { h.isEssen = e }
func (h *header) id() int64             { return h.objID }

// Environment is the minimal view of a lexical scope that the value
// package needs in order to describe a UserFunction's captured scope and
// that the garbage collector needs in order to mark it, without internal/value
// importing internal/schemeenv (which itself imports internal/value for
// binding types — the interface here breaks what would otherwise be an
// import cycle).
type Environment interface {
	// ForEachLocal calls f for every binding defined directly in this
	// environment (not in any ancestor).
	ForEachLocal(f func(name string, v Value))
	// Outer returns the enclosing environment, or nil at the root.
	Outer() Environment
}

// Int is a signed 64-bit integer value.
type Int struct {
	header
	Val int64
}

func (i *Int) Tag() Tag        { return TagInt }
func (i *Int) String() string  { return strconv.FormatInt(i.Val, 10) }

// Float is a 64-bit IEEE double value. toString always includes a decimal
// point, per §4.1.
type Float struct {
	header
	Val float64
}

// floatPrinter renders Float values through golang.org/x/text/number rather
// than a hand-rolled formatter, so the decimal point is locale-stable
// (always ".", never "," — §9) regardless of the host's locale.
var floatPrinter = message.NewPrinter(language.English)

func (f *Float) Tag() Tag { return TagFloat }
func (f *Float) String() string {
	digits := strconv.FormatFloat(f.Val, 'g', -1, 64)
	if strings.ContainsAny(digits, "eE") {
		// Exponent notation falls outside number.Decimal's scope; render it
		// directly rather than coercing scientific notation into a decimal.
		return digits
	}
	scale := 0
	if dot := strings.IndexByte(digits, '.'); dot >= 0 {
		scale = len(digits) - dot - 1
	}
	s := floatPrinter.Sprint(number.Decimal(f.Val, number.NoSeparator(), number.Scale(scale)))
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// String is an immutable character sequence.
type String struct {
	header
	Val string
}

func (s *String) Tag() Tag       { return TagString }
func (s *String) String() string { return `"` + s.Val + `"` }

// Symbol is an immutable name. Symbols are not interned (see SPEC_FULL.md
// §3): two Symbol values with the same Name are distinct heap objects, so
// eq? on freshly-read occurrences of the same name is false.
type Symbol struct {
	header
	Name string
}

func (s *Symbol) Tag() Tag       { return TagSymbol }
func (s *Symbol) String() string { return s.Name }

// Cons is a pair. Nil terminates a proper list.
type Cons struct {
	header
	Car Value
	Cdr Value
}

func (c *Cons) Tag() Tag { return TagCons }
func (c *Cons) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	cur := Value(c)
	first := true
	for {
		cons, ok := cur.(*Cons)
		if !ok {
			break
		}
		if !first {
			sb.WriteString(" ")
		}
		first = false
		sb.WriteString(cons.Car.String())
		cur = cons.Cdr
	}
	switch cur.Tag() {
	case TagNil:
		// proper list, nothing more to print
	default:
		sb.WriteString(" . ")
		sb.WriteString(cur.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// singleton is the shared base for the five process-wide unique values:
// Nil, True, False, Void, Eof. Identity comparison (pointer equality) is
// meaningful and stable for the process lifetime.
type singleton struct {
	header
	name string
}

func (s *singleton) String() string { return s.name }

// NilValue is the Nil singleton type.
type NilValue struct{ singleton }

func (n *NilValue) Tag() Tag { return TagNil }

// TrueValue is the True singleton type.
type TrueValue struct{ singleton }

func (t *TrueValue) Tag() Tag { return TagTrue }

// FalseValue is the False singleton type.
type FalseValue struct{ singleton }

func (f *FalseValue) Tag() Tag { return TagFalse }

// VoidValue is the Void singleton type, returned by operations with no
// meaningful result (define, display, help, begin with no forms).
type VoidValue struct{ singleton }

func (v *VoidValue) Tag() Tag { return TagVoid }

// EofValue is the Eof singleton type, returned by the reader at end of
// input.
type EofValue struct{ singleton }

func (e *EofValue) Tag() Tag { return TagEof }

// The five process-wide singletons. They are allocated once, outside any
// Heap, and marked essential so no Heap's sweep ever collects them.
var (
	Nil   = &NilValue{singleton{header{isEssen: true}, "()"}}
	True  = &TrueValue{singleton{header{isEssen: true}, "#t"}}
	False = &FalseValue{singleton{header{isEssen: true}, "#f"}}
	Void  = &VoidValue{singleton{header{isEssen: true}, ""}}
	Eof   = &EofValue{singleton{header{isEssen: true}, "#<eof>"}}
)

// BuiltinFunction is a primitive operation whose operands ARE evaluated by
// the evaluator before the operation runs.
type BuiltinFunction struct {
	header
	Name  string
	Arity int // -1 means variadic
	Op    OpCode
	Help  string
}

func (b *BuiltinFunction) Tag() Tag       { return TagBuiltinFunction }
func (b *BuiltinFunction) String() string { return "#<" + b.Name + ">" }

// Syntax is a special form: like BuiltinFunction, but its operands are NOT
// evaluated before the operation runs.
type Syntax struct {
	header
	Name  string
	Arity int
	Op    OpCode
	Help  string
}

func (s *Syntax) Tag() Tag       { return TagSyntax }
func (s *Syntax) String() string { return "#<" + s.Name + ">" }

// OpCode identifies which native operation a BuiltinFunction/Syntax value
// dispatches to. The mapping from OpCode to Go code lives in the evaluator
// package, keeping internal/value free of any evaluation logic.
type OpCode int

// UserFunction is a closure: formal parameters, a body of one or more
// expressions, and the environment captured at creation time.
type UserFunction struct {
	header
	Params []*Symbol
	Body   []Value
	Env    Environment
}

func (u *UserFunction) Tag() Tag { return TagUserFunction }
func (u *UserFunction) String() string {
	var sb strings.Builder
	sb.WriteString("(lambda (")
	for i, p := range u.Params {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.Name)
	}
	sb.WriteString(")")
	for _, e := range u.Body {
		sb.WriteString(" ")
		sb.WriteString(e.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ArgList returns the function's parameter list rendered as a Cons chain
// of Symbols (or Nil if the function takes no arguments), for
// `function-arglist` (§4.6).
func (u *UserFunction) ArgList(h *Heap) Value {
	var result Value = Nil
	for i := len(u.Params) - 1; i >= 0; i-- {
		result = h.NewCons(u.Params[i], result)
	}
	return result
}

// BodyList returns the function's body rendered as a Cons chain of
// expressions, for `function-body` (§4.6).
func (u *UserFunction) BodyList(h *Heap) Value {
	var result Value = Nil
	for i := len(u.Body) - 1; i >= 0; i-- {
		result = h.NewCons(u.Body[i], result)
	}
	return result
}

// TypeName returns the human-readable tag name used in TypeError messages.
func TypeName(v Value) string {
	return v.Tag().String()
}

// ToList walks a proper list, returning its elements and true, or nil and
// false if v is not a proper list (does not end in Nil).
func ToList(v Value) ([]Value, bool) {
	var out []Value
	cur := v
	for {
		switch c := cur.(type) {
		case *NilValue:
			return out, true
		case *Cons:
			out = append(out, c.Car)
			cur = c.Cdr
		default:
			return nil, false
		}
	}
}

// FromSlice builds a proper list out of vs, allocating cons cells on h.
func FromSlice(h *Heap, vs []Value) Value {
	var result Value = Nil
	for i := len(vs) - 1; i >= 0; i-- {
		result = h.NewCons(vs[i], result)
	}
	return result
}

// Truthy implements §4.5's if-truthiness: False and Nil are false, numeric
// zero and the empty string are false, everything else is true.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case *FalseValue, *NilValue:
		return false
	case *Int:
		return t.Val != 0
	case *Float:
		return t.Val != 0
	case *String:
		return t.Val != ""
	default:
		return true
	}
}

// BoolValue converts a Go bool to the True/False singleton.
func BoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

// Eq implements eq?: reference identity. Singletons compare equal to
// themselves because they are process-wide unique pointers; two distinct
// heap allocations (even with identical payloads) are never eq?.
func Eq(a, b Value) bool {
	return a == b
}

// NumEq implements = : numeric equality with int<->float coercion.
func NumEq(a, b Value) (bool, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return false, fmt.Errorf("= requires numeric operands")
	}
	return af == bf, nil
}

// EqualString implements equal-string?: string payload comparison.
func EqualString(a, b Value) (bool, error) {
	as, aok := a.(*String)
	bs, bok := b.(*String)
	if !aok || !bok {
		return false, fmt.Errorf("equal-string? requires string operands")
	}
	return as.Val == bs.Val, nil
}

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case *Int:
		return float64(t.Val), true
	case *Float:
		return t.Val, true
	default:
		return 0, false
	}
}
