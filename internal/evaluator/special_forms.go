package evaluator

import (
	"github.com/cwbudde/golisp/internal/errors"
	"github.com/cwbudde/golisp/internal/schemeenv"
	"github.com/cwbudde/golisp/internal/trampoline"
	"github.com/cwbudde/golisp/internal/value"
)

// syntaxFn is the signature every special form implementation satisfies:
// given the current environment and its UNEVALUATED operand expressions,
// produce the next trampoline step.
type syntaxFn func(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step

var syntaxTable = map[value.OpCode]syntaxFn{
	OpQuote:   quoteForm,
	OpIf:      ifForm,
	OpDefine:  defineForm,
	OpSetBang: setBangForm,
	OpLambda:  lambdaForm,
	OpBegin:   beginForm,
	OpAnd:     andForm,
	OpOr:      orForm,
	OpHelp:    helpForm,
}

// quoteForm implements `(quote expr)`: returns expr unevaluated (§4.5).
func quoteForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	return i.M.Return(operands[0])
}

// ifForm implements `(if test then else)`. The test is the only
// sub-expression evaluated through a continuation; whichever branch is
// chosen is evaluated in true tail position (continuation=nil), so an
// `if`-based loop never grows the function stack.
func ifForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	test, thenExpr, elseExpr := operands[0], operands[1], operands[2]
	return i.M.Call(i.stepEval, func() trampoline.Step {
		testVal, _ := i.M.LastReturn().(value.Value)
		if value.Truthy(testVal) {
			return i.M.Call(i.stepEval, nil, thenExpr, env)
		}
		return i.M.Call(i.stepEval, nil, elseExpr, env)
	}, test, env)
}

// defineForm implements both `(define name expr)` and the lambda-shorthand
// `(define (name arg...) body...)` (§4.5).
func defineForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	if len(operands) < 2 {
		return i.fail(errors.ArityError("define", 2, len(operands)))
	}

	switch head := operands[0].(type) {
	case *value.Symbol:
		if len(operands) != 2 {
			return i.fail(errors.ArityError("define", 2, len(operands)))
		}
		valueExpr := operands[1]
		return i.M.Call(i.stepEval, func() trampoline.Step {
			v, _ := i.M.LastReturn().(value.Value)
			env.Define(head.Name, v)
			return i.M.Return(value.Void)
		}, valueExpr, env)

	case *value.Cons:
		name, ok := head.Car.(*value.Symbol)
		if !ok {
			return i.fail(errors.TypeError("define: function name must be a symbol"))
		}
		paramVals, ok := value.ToList(head.Cdr)
		if !ok {
			return i.fail(errors.TypeError("define: parameter list must be a proper list"))
		}
		params := make([]*value.Symbol, len(paramVals))
		for idx, p := range paramVals {
			sym, ok := p.(*value.Symbol)
			if !ok {
				return i.fail(errors.TypeError("define: parameter %d is not a symbol", idx))
			}
			params[idx] = sym
		}
		body := operands[1:]
		fn := i.Heap.NewUserFunction(params, body, env)
		env.Define(name.Name, fn)
		return i.M.Return(value.Void)

	default:
		return i.fail(errors.TypeError("define: first operand must be a symbol or parameter list"))
	}
}

// setBangForm implements `(set! name expr)`. Per the deliberate deviation
// documented in spec.md §9, schemeenv.Environment.Set propagates the new
// binding to every ancestor scope, not just the nearest one.
func setBangForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	name, ok := operands[0].(*value.Symbol)
	if !ok {
		return i.fail(errors.TypeError("set!: first operand must be a symbol"))
	}
	valueExpr := operands[1]
	return i.M.Call(i.stepEval, func() trampoline.Step {
		v, _ := i.M.LastReturn().(value.Value)
		env.Set(name.Name, v)
		return i.M.Return(v)
	}, valueExpr, env)
}

// lambdaForm implements `(lambda (arg...) body...)`, producing a closure
// over env.
func lambdaForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	if len(operands) < 2 {
		return i.fail(errors.ArityError("lambda", 2, len(operands)))
	}
	paramVals, ok := value.ToList(operands[0])
	if !ok {
		return i.fail(errors.TypeError("lambda: parameter list must be a proper list"))
	}
	params := make([]*value.Symbol, len(paramVals))
	for idx, p := range paramVals {
		sym, ok := p.(*value.Symbol)
		if !ok {
			return i.fail(errors.TypeError("lambda: parameter %d is not a symbol", idx))
		}
		params[idx] = sym
	}
	fn := i.Heap.NewUserFunction(params, operands[1:], env)
	return i.M.Return(fn)
}

// beginForm implements `(begin expr...)`: a sequence evaluated for effect
// except the last, which is in tail position.
func beginForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	return i.evalBody(env, operands)
}

// andForm implements short-circuiting `(and expr...)`: false on the first
// falsy result, otherwise the last expression's value (§9 explains why
// and/or must be special forms rather than prelude procedures — a
// procedure call would evaluate every operand before the call runs).
func andForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	if len(operands) == 0 {
		return i.M.Return(value.True)
	}
	return i.evalAndSeq(env, operands, 0)
}

func (i *Interpreter) evalAndSeq(env *schemeenv.Environment, operands []value.Value, idx int) trampoline.Step {
	isLast := idx == len(operands)-1
	return i.M.Call(i.stepEval, func() trampoline.Step {
		v, _ := i.M.LastReturn().(value.Value)
		if !value.Truthy(v) {
			return i.M.Return(value.False)
		}
		if isLast {
			return i.M.Return(v)
		}
		return i.evalAndSeq(env, operands, idx+1)
	}, operands[idx], env)
}

// orForm implements short-circuiting `(or expr...)`: the first truthy
// result, or false if every operand is falsy.
func orForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	if len(operands) == 0 {
		return i.M.Return(value.False)
	}
	return i.evalOrSeq(env, operands, 0)
}

func (i *Interpreter) evalOrSeq(env *schemeenv.Environment, operands []value.Value, idx int) trampoline.Step {
	isLast := idx == len(operands)-1
	return i.M.Call(i.stepEval, func() trampoline.Step {
		v, _ := i.M.LastReturn().(value.Value)
		if value.Truthy(v) {
			return i.M.Return(v)
		}
		if isLast {
			return i.M.Return(value.False)
		}
		return i.evalOrSeq(env, operands, idx+1)
	}, operands[idx], env)
}

// helpForm implements `(help)` and `(help name)` (§4.5/§6).
func helpForm(i *Interpreter, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	switch len(operands) {
	case 0:
		env.Print(i.out)
		return i.M.Return(value.Void)
	case 1:
		sym, ok := operands[0].(*value.Symbol)
		if !ok {
			return i.fail(errors.TypeError("help: operand must be a symbol"))
		}
		v, err := env.Lookup(sym.Name)
		if err != nil {
			return i.fail(err)
		}
		schemeenv.Describe(i.out, v)
		return i.M.Return(value.Void)
	default:
		return i.fail(errors.ArityError("help", 1, len(operands)))
	}
}

// installSpecialForms binds every special form into the root environment.
func (i *Interpreter) installSpecialForms() {
	install := func(name string, arity int, op value.OpCode, help string) {
		i.Root.Define(name, i.Heap.NewSyntax(name, arity, op, help))
	}
	install("quote", 1, OpQuote, "(quote expr) - returns expr unevaluated")
	install("if", 3, OpIf, "(if test then else) - evaluates then or else depending on test")
	install("define", -1, OpDefine, "(define name expr) or (define (name arg...) body...)")
	install("set!", 2, OpSetBang, "(set! name expr) - rebinds name in every enclosing scope")
	install("lambda", -1, OpLambda, "(lambda (arg...) body...) - creates a closure")
	install("begin", -1, OpBegin, "(begin expr...) - evaluates in sequence, returns the last")
	install("and", -1, OpAnd, "(and expr...) - short-circuiting logical and")
	install("or", -1, OpOr, "(or expr...) - short-circuiting logical or")
	install("help", -1, OpHelp, "(help) or (help name) - describes bindings")
}
