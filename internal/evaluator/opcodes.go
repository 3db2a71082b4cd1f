package evaluator

import "github.com/cwbudde/golisp/internal/value"

// OpCode constants for every builtin and special form (§4.5/§4.6). These
// are the values stored in value.BuiltinFunction.Op / value.Syntax.Op; the
// tables in primitives.go and special_forms.go map them to Go functions.
const (
	OpAdd value.OpCode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNumEq
	OpLess
	OpGreater
	OpEq
	OpEqualString
	OpCons
	OpCar
	OpCdr
	OpList
	OpDisplay
	OpStringP
	OpNumberP
	OpConsP
	OpFunctionP
	OpUserFunctionP
	OpBoolP
	OpFunctionBody
	OpFunctionArglist

	OpQuote
	OpIf
	OpDefine
	OpSetBang
	OpLambda
	OpBegin
	OpAnd
	OpOr
	OpHelp
)
