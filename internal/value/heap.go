package value

// Heap is the live set of every value allocated by a single interpreter
// session (§3 "Heap registry"). Every constructor below registers its
// result here; MarkAndSweep (heap_gc.go) later reclaims whatever is not
// reachable from a set of roots and not essential.
type Heap struct {
	live   []Value
	nextID int64
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) register(v Value) {
	h.nextID++
	switch o := v.(type) {
	case *Int:
		o.objID = h.nextID
	case *Float:
		o.objID = h.nextID
	case *String:
		o.objID = h.nextID
	case *Symbol:
		o.objID = h.nextID
	case *Cons:
		o.objID = h.nextID
	case *BuiltinFunction:
		o.objID = h.nextID
	case *Syntax:
		o.objID = h.nextID
	case *UserFunction:
		o.objID = h.nextID
	}
	h.live = append(h.live, v)
}

// Len reports how many values are currently registered (live or awaiting
// the next sweep).
func (h *Heap) Len() int {
	return len(h.live)
}

// Live returns a snapshot of the current live set, for tests that assert
// on GC behavior.
func (h *Heap) Live() []Value {
	out := make([]Value, len(h.live))
	copy(out, h.live)
	return out
}

// NewInt allocates an Int.
func (h *Heap) NewInt(n int64) *Int {
	v := &Int{Val: n}
	h.register(v)
	return v
}

// NewFloat allocates a Float.
func (h *Heap) NewFloat(f float64) *Float {
	v := &Float{Val: f}
	h.register(v)
	return v
}

// NewString allocates a String.
func (h *Heap) NewString(s string) *String {
	v := &String{Val: s}
	h.register(v)
	return v
}

// NewSymbol allocates a Symbol. Not interned: see value.go.
func (h *Heap) NewSymbol(name string) *Symbol {
	v := &Symbol{Name: name}
	h.register(v)
	return v
}

// NewCons allocates a Cons pair.
func (h *Heap) NewCons(car, cdr Value) *Cons {
	v := &Cons{Car: car, Cdr: cdr}
	h.register(v)
	return v
}

// NewBuiltinFunction allocates an essential BuiltinFunction binding.
// Primitive bindings installed at startup are essential (§3): they are
// reachable from the root environment for the program's whole lifetime
// and are never worth sweeping.
func (h *Heap) NewBuiltinFunction(name string, arity int, op OpCode, help string) *BuiltinFunction {
	v := &BuiltinFunction{Name: name, Arity: arity, Op: op, Help: help}
	v.isEssen = true
	h.register(v)
	return v
}

// NewSyntax allocates an essential Syntax binding.
func (h *Heap) NewSyntax(name string, arity int, op OpCode, help string) *Syntax {
	v := &Syntax{Name: name, Arity: arity, Op: op, Help: help}
	v.isEssen = true
	h.register(v)
	return v
}

// NewUserFunction allocates a closure capturing env.
func (h *Heap) NewUserFunction(params []*Symbol, body []Value, env Environment) *UserFunction {
	v := &UserFunction{Params: params, Body: body, Env: env}
	h.register(v)
	return v
}
