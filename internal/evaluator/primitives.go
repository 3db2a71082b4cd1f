package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/golisp/internal/errors"
	"github.com/cwbudde/golisp/internal/trampoline"
	"github.com/cwbudde/golisp/internal/value"
)

// builtinFn is the signature every primitive operation satisfies: given its
// already-evaluated arguments, produce the next trampoline step (almost
// always an immediate Return or fail — no primitive needs more than one
// trampoline tick).
type builtinFn func(i *Interpreter, args []value.Value) trampoline.Step

var builtinTable = map[value.OpCode]builtinFn{
	OpAdd:             primAdd,
	OpSub:             primSub,
	OpMul:             primMul,
	OpDiv:             primDiv,
	OpMod:             primMod,
	OpNumEq:           primNumEq,
	OpLess:            primLess,
	OpGreater:         primGreater,
	OpEq:              primEq,
	OpEqualString:     primEqualString,
	OpCons:            primCons,
	OpCar:             primCar,
	OpCdr:             primCdr,
	OpList:            primList,
	OpDisplay:         primDisplay,
	OpStringP:         primStringP,
	OpNumberP:         primNumberP,
	OpConsP:           primConsP,
	OpFunctionP:       primFunctionP,
	OpUserFunctionP:   primUserFunctionP,
	OpBoolP:           primBoolP,
	OpFunctionBody:    primFunctionBody,
	OpFunctionArglist: primFunctionArglist,
}

func isNumeric(v value.Value) bool {
	switch v.(type) {
	case *value.Int, *value.Float:
		return true
	default:
		return false
	}
}

func anyFloat(args []value.Value) bool {
	for _, a := range args {
		if _, ok := a.(*value.Float); ok {
			return true
		}
	}
	return false
}

func displayForm(a value.Value) string {
	if s, ok := a.(*value.String); ok {
		return s.Val
	}
	return a.String()
}

// primAdd implements `+`: numeric addition (with int64 overflow detection,
// §7) or, if any operand is a string, string concatenation with
// non-strings converted to their decimal form first (§4.6/§9).
func primAdd(i *Interpreter, args []value.Value) trampoline.Step {
	anyString := false
	for _, a := range args {
		switch a.(type) {
		case *value.String:
			anyString = true
		case *value.Int, *value.Float:
		default:
			return i.fail(errTypeMismatch("+", a))
		}
	}
	if anyString {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(displayForm(a))
		}
		return i.M.Return(i.Heap.NewString(sb.String()))
	}
	if anyFloat(args) {
		var sum float64
		for _, a := range args {
			f, _ := value.ToFloat(a)
			sum += f
		}
		return i.M.Return(i.Heap.NewFloat(sum))
	}
	var sum int64
	for _, a := range args {
		n := a.(*value.Int).Val
		next := sum + n
		if (n > 0 && next < sum) || (n < 0 && next > sum) {
			return i.fail(errors.OverflowError("+"))
		}
		sum = next
	}
	return i.M.Return(i.Heap.NewInt(sum))
}

// primSub implements `-`: unary negation with one operand, left-fold
// subtraction with more.
func primSub(i *Interpreter, args []value.Value) trampoline.Step {
	if len(args) == 0 {
		return i.fail(errors.ArityError("-", 1, 0))
	}
	for _, a := range args {
		if !isNumeric(a) {
			return i.fail(errTypeMismatch("-", a))
		}
	}
	if anyFloat(args) {
		first, _ := value.ToFloat(args[0])
		if len(args) == 1 {
			return i.M.Return(i.Heap.NewFloat(-first))
		}
		result := first
		for _, a := range args[1:] {
			f, _ := value.ToFloat(a)
			result -= f
		}
		return i.M.Return(i.Heap.NewFloat(result))
	}
	first := args[0].(*value.Int).Val
	if len(args) == 1 {
		return i.M.Return(i.Heap.NewInt(-first))
	}
	result := first
	for _, a := range args[1:] {
		result -= a.(*value.Int).Val
	}
	return i.M.Return(i.Heap.NewInt(result))
}

// primMul implements `*`: variadic multiplication with int64 overflow
// detection (§7).
func primMul(i *Interpreter, args []value.Value) trampoline.Step {
	for _, a := range args {
		if !isNumeric(a) {
			return i.fail(errTypeMismatch("*", a))
		}
	}
	if anyFloat(args) {
		result := 1.0
		for _, a := range args {
			f, _ := value.ToFloat(a)
			result *= f
		}
		return i.M.Return(i.Heap.NewFloat(result))
	}
	var result int64 = 1
	for _, a := range args {
		n := a.(*value.Int).Val
		next := result * n
		if result != 0 && next/result != n {
			return i.fail(errors.OverflowError("*"))
		}
		result = next
	}
	return i.M.Return(i.Heap.NewInt(result))
}

// primDiv implements `/`: always yields a Float, requires at least two
// operands (one operand is a DivisionError per spec.md §7, not an
// ArityError, because `/` is declared variadic so the generic arity check
// never fires).
func primDiv(i *Interpreter, args []value.Value) trampoline.Step {
	if len(args) < 2 {
		return i.fail(errors.DivisionError("/ requires at least 2 operands, got %d", len(args)))
	}
	for _, a := range args {
		if !isNumeric(a) {
			return i.fail(errTypeMismatch("/", a))
		}
	}
	result, _ := value.ToFloat(args[0])
	for _, a := range args[1:] {
		divisor, _ := value.ToFloat(a)
		if divisor == 0 {
			return i.fail(errors.DivisionError("division by zero"))
		}
		result /= divisor
	}
	return i.M.Return(i.Heap.NewFloat(result))
}

// primMod implements `%`: integer modulo when both operands are Int,
// floating modulo otherwise. Modulo by zero is a DivisionError.
func primMod(i *Interpreter, args []value.Value) trampoline.Step {
	a, b := args[0], args[1]
	if !isNumeric(a) {
		return i.fail(errTypeMismatch("%", a))
	}
	if !isNumeric(b) {
		return i.fail(errTypeMismatch("%", b))
	}
	ai, aIsInt := a.(*value.Int)
	bi, bIsInt := b.(*value.Int)
	if aIsInt && bIsInt {
		if bi.Val == 0 {
			return i.fail(errors.DivisionError("modulo by zero"))
		}
		return i.M.Return(i.Heap.NewInt(ai.Val % bi.Val))
	}
	af, _ := value.ToFloat(a)
	bf, _ := value.ToFloat(b)
	if bf == 0 {
		return i.fail(errors.DivisionError("modulo by zero"))
	}
	return i.M.Return(i.Heap.NewFloat(math.Mod(af, bf)))
}

// primNumEq implements `=`: numeric equality with int/float coercion.
func primNumEq(i *Interpreter, args []value.Value) trampoline.Step {
	eq, err := value.NumEq(args[0], args[1])
	if err != nil {
		return i.fail(errors.TypeError("%s", err.Error()))
	}
	return i.M.Return(value.BoolValue(eq))
}

// primLess implements `<`.
func primLess(i *Interpreter, args []value.Value) trampoline.Step {
	if !isNumeric(args[0]) {
		return i.fail(errTypeMismatch("<", args[0]))
	}
	if !isNumeric(args[1]) {
		return i.fail(errTypeMismatch("<", args[1]))
	}
	a, _ := value.ToFloat(args[0])
	b, _ := value.ToFloat(args[1])
	return i.M.Return(value.BoolValue(a < b))
}

// primGreater implements `>`.
func primGreater(i *Interpreter, args []value.Value) trampoline.Step {
	if !isNumeric(args[0]) {
		return i.fail(errTypeMismatch(">", args[0]))
	}
	if !isNumeric(args[1]) {
		return i.fail(errTypeMismatch(">", args[1]))
	}
	a, _ := value.ToFloat(args[0])
	b, _ := value.ToFloat(args[1])
	return i.M.Return(value.BoolValue(a > b))
}

// primEq implements `eq?`: reference identity.
func primEq(i *Interpreter, args []value.Value) trampoline.Step {
	return i.M.Return(value.BoolValue(value.Eq(args[0], args[1])))
}

// primEqualString implements `equal-string?`: string payload comparison.
func primEqualString(i *Interpreter, args []value.Value) trampoline.Step {
	eq, err := value.EqualString(args[0], args[1])
	if err != nil {
		return i.fail(errors.TypeError("%s", err.Error()))
	}
	return i.M.Return(value.BoolValue(eq))
}

// primCons implements `cons`.
func primCons(i *Interpreter, args []value.Value) trampoline.Step {
	return i.M.Return(i.Heap.NewCons(args[0], args[1]))
}

// primCar implements `car`.
func primCar(i *Interpreter, args []value.Value) trampoline.Step {
	c, ok := args[0].(*value.Cons)
	if !ok {
		return i.fail(errTypeMismatch("car", args[0]))
	}
	return i.M.Return(c.Car)
}

// primCdr implements `cdr`.
func primCdr(i *Interpreter, args []value.Value) trampoline.Step {
	c, ok := args[0].(*value.Cons)
	if !ok {
		return i.fail(errTypeMismatch("cdr", args[0]))
	}
	return i.M.Return(c.Cdr)
}

// primList implements `list`: builds a proper list from its operands.
func primList(i *Interpreter, args []value.Value) trampoline.Step {
	return i.M.Return(value.FromSlice(i.Heap, args))
}

// primDisplay implements `display`: prints its operands space-separated
// followed by a newline, returns Void (§4.6/§6).
func primDisplay(i *Interpreter, args []value.Value) trampoline.Step {
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = displayForm(a)
	}
	fmt.Fprintln(i.out, strings.Join(parts, " "))
	return i.M.Return(value.Void)
}

func primStringP(i *Interpreter, args []value.Value) trampoline.Step {
	_, ok := args[0].(*value.String)
	return i.M.Return(value.BoolValue(ok))
}

func primNumberP(i *Interpreter, args []value.Value) trampoline.Step {
	return i.M.Return(value.BoolValue(isNumeric(args[0])))
}

func primConsP(i *Interpreter, args []value.Value) trampoline.Step {
	_, ok := args[0].(*value.Cons)
	return i.M.Return(value.BoolValue(ok))
}

// primFunctionP implements `function?`: true for any callable, builtin or
// user-defined.
func primFunctionP(i *Interpreter, args []value.Value) trampoline.Step {
	switch args[0].(type) {
	case *value.BuiltinFunction, *value.UserFunction:
		return i.M.Return(value.True)
	default:
		return i.M.Return(value.False)
	}
}

// primUserFunctionP implements `user-function?`: true only for closures
// created by `lambda`/`define`.
func primUserFunctionP(i *Interpreter, args []value.Value) trampoline.Step {
	_, ok := args[0].(*value.UserFunction)
	return i.M.Return(value.BoolValue(ok))
}

func primBoolP(i *Interpreter, args []value.Value) trampoline.Step {
	switch args[0].(type) {
	case *value.TrueValue, *value.FalseValue:
		return i.M.Return(value.True)
	default:
		return i.M.Return(value.False)
	}
}

// primFunctionBody implements `function-body`.
func primFunctionBody(i *Interpreter, args []value.Value) trampoline.Step {
	fn, ok := args[0].(*value.UserFunction)
	if !ok {
		return i.fail(errTypeMismatch("function-body", args[0]))
	}
	return i.M.Return(fn.BodyList(i.Heap))
}

// primFunctionArglist implements `function-arglist`.
func primFunctionArglist(i *Interpreter, args []value.Value) trampoline.Step {
	fn, ok := args[0].(*value.UserFunction)
	if !ok {
		return i.fail(errTypeMismatch("function-arglist", args[0]))
	}
	return i.M.Return(fn.ArgList(i.Heap))
}

// installPrimitives binds every builtin operation into the root
// environment.
func (i *Interpreter) installPrimitives() {
	install := func(name string, arity int, op value.OpCode, help string) {
		i.Root.Define(name, i.Heap.NewBuiltinFunction(name, arity, op, help))
	}
	install("+", -1, OpAdd, "(+ n...) - sum, or string concatenation if any operand is a string")
	install("-", -1, OpSub, "(- n...) - negation (1 operand) or left-fold subtraction")
	install("*", -1, OpMul, "(* n...) - product")
	install("/", -1, OpDiv, "(/ n n...) - floating division, at least 2 operands")
	install("%", 2, OpMod, "(% a b) - modulo")
	install("=", 2, OpNumEq, "(= a b) - numeric equality")
	install("<", 2, OpLess, "(< a b) - numeric less-than")
	install(">", 2, OpGreater, "(> a b) - numeric greater-than")
	install("eq?", 2, OpEq, "(eq? a b) - reference identity")
	install("equal-string?", 2, OpEqualString, "(equal-string? a b) - string equality")
	install("cons", 2, OpCons, "(cons a b) - builds a pair")
	install("car", 1, OpCar, "(car pair) - first element of a pair")
	install("cdr", 1, OpCdr, "(cdr pair) - rest of a pair")
	install("list", -1, OpList, "(list e...) - builds a proper list")
	install("display", -1, OpDisplay, "(display e...) - prints its operands")
	install("string?", 1, OpStringP, "(string? v) - is v a string")
	install("number?", 1, OpNumberP, "(number? v) - is v an int or float")
	install("cons?", 1, OpConsP, "(cons? v) - is v a pair")
	install("function?", 1, OpFunctionP, "(function? v) - is v callable")
	install("user-function?", 1, OpUserFunctionP, "(user-function? v) - is v a lambda/define closure")
	install("bool?", 1, OpBoolP, "(bool? v) - is v #t or #f")
	install("function-body", 1, OpFunctionBody, "(function-body f) - f's body as a list")
	install("function-arglist", 1, OpFunctionArglist, "(function-arglist f) - f's parameters as a list")
}
