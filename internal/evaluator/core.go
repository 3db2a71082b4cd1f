package evaluator

import (
	"github.com/cwbudde/golisp/internal/errors"
	"github.com/cwbudde/golisp/internal/schemeenv"
	"github.com/cwbudde/golisp/internal/trampoline"
	"github.com/cwbudde/golisp/internal/value"
)

// stepEval is the evaluator core (§4.4). It pops (expr, env) — every call
// site pushes them in that order via i.M.Call(i.stepEval, cont, expr, env)
// — and either Returns directly (self-evaluating forms, symbol lookup) or
// dispatches into stepApplyOperator for a Cons form.
func (i *Interpreter) stepEval() trampoline.Step {
	expr := trampoline.PopArg[value.Value](i.M)
	env := trampoline.PopArg[*schemeenv.Environment](i.M)

	switch e := expr.(type) {
	case *value.Symbol:
		v, err := env.Lookup(e.Name)
		if err != nil {
			return i.fail(err)
		}
		return i.M.Return(v)
	case *value.Cons:
		operator := e.Car
		operands := e.Cdr
		return i.M.Call(i.stepEval, i.stepApplyOperator, operator, env, env, operands)
	default:
		// Int, Float, String, Nil, True, False, Void, Eof, BuiltinFunction,
		// Syntax, UserFunction: every other tag is self-evaluating (§4.4).
		return i.M.Return(expr)
	}
}

// stepApplyOperator runs once stepEval has evaluated a Cons form's
// operator. It pops (env, operandsList) — pushed underneath the operator's
// own (expr, env) pair by stepEval's Cons case — reads the evaluated
// operator from LastReturn, and dispatches on its tag.
func (i *Interpreter) stepApplyOperator() trampoline.Step {
	env := trampoline.PopArg[*schemeenv.Environment](i.M)
	operandsVal := trampoline.PopArg[value.Value](i.M)
	operatorVal, _ := i.M.LastReturn().(value.Value)

	operands, ok := value.ToList(operandsVal)
	if !ok {
		return i.fail(errors.TypeError("call has an improper operand list"))
	}

	switch op := operatorVal.(type) {
	case *value.BuiltinFunction:
		if op.Arity >= 0 && len(operands) != op.Arity {
			return i.fail(errors.ArityError(op.Name, op.Arity, len(operands)))
		}
		return i.evalOperands(env, operands, 0, nil, func(args []value.Value) trampoline.Step {
			return i.callBuiltin(op, args)
		})
	case *value.Syntax:
		if op.Arity >= 0 && len(operands) != op.Arity {
			return i.fail(errors.ArityError(op.Name, op.Arity, len(operands)))
		}
		return i.callSyntax(op, env, operands)
	case *value.UserFunction:
		return i.evalOperands(env, operands, 0, nil, func(args []value.Value) trampoline.Step {
			return i.applyUserFunction(op, args)
		})
	default:
		return i.fail(errors.TypeError("%s is not applicable", operatorVal.String()))
	}
}

// evalOperands evaluates operands[idx:] left to right (§4.4: "strict
// left-to-right argument evaluation"), accumulating results in acc, then
// hands the complete argument list to onDone. Each operand's own
// evaluation is dispatched through the trampoline via i.M.Call so an
// operand that is itself an arbitrarily deep call expression never grows
// the Go call stack; the bounded loop state here (idx, acc) is carried in
// a closure because it is sized by one call site's operand count, not by
// evaluation depth.
func (i *Interpreter) evalOperands(
	env *schemeenv.Environment,
	operands []value.Value,
	idx int,
	acc []value.Value,
	onDone func(args []value.Value) trampoline.Step,
) trampoline.Step {
	if idx >= len(operands) {
		return onDone(acc)
	}
	return i.M.Call(i.stepEval, func() trampoline.Step {
		v, _ := i.M.LastReturn().(value.Value)
		return i.evalOperands(env, operands, idx+1, append(acc, v), onDone)
	}, operands[idx], env)
}

// callBuiltin dispatches to the Go function registered for op.Op. Every
// builtin runs synchronously against its already-evaluated arguments and
// finishes by calling i.M.Return or i.fail — no further trampoline steps
// are needed within a single primitive.
func (i *Interpreter) callBuiltin(op *value.BuiltinFunction, args []value.Value) trampoline.Step {
	fn, ok := builtinTable[op.Op]
	if !ok {
		errors.Panic("no implementation registered for builtin opcode %d (%s)", op.Op, op.Name)
	}
	return fn(i, args)
}

// callSyntax dispatches to the Go function registered for a special form's
// opcode, with its operand expressions unevaluated (§4.5).
func (i *Interpreter) callSyntax(op *value.Syntax, env *schemeenv.Environment, operands []value.Value) trampoline.Step {
	fn, ok := syntaxTable[op.Op]
	if !ok {
		errors.Panic("no implementation registered for syntax opcode %d (%s)", op.Op, op.Name)
	}
	return fn(i, env, operands)
}

// applyUserFunction binds args to fn's parameters in a new environment
// enclosed by fn's captured environment, then evaluates fn's body in tail
// position (§3: every user-function call creates a new child environment).
func (i *Interpreter) applyUserFunction(fn *value.UserFunction, args []value.Value) trampoline.Step {
	if len(args) != len(fn.Params) {
		return i.fail(errors.ArityError("user-function", len(fn.Params), len(args)))
	}
	captured, ok := fn.Env.(*schemeenv.Environment)
	if !ok {
		errors.Panic("user function's captured environment has unexpected concrete type %T", fn.Env)
	}
	callEnv := schemeenv.NewEnclosed(captured)
	for idx, p := range fn.Params {
		callEnv.Define(p.Name, args[idx])
	}
	return i.evalBody(callEnv, fn.Body)
}

// evalBody evaluates a sequence of expressions (a lambda/user-function
// body, or `begin`'s operands): every expression but the last is evaluated
// for effect only, and the last is evaluated in true tail position — its
// result (and tail-call behavior) flows directly to whatever continuation
// is already on the function stack, without growing it.
func (i *Interpreter) evalBody(env *schemeenv.Environment, body []value.Value) trampoline.Step {
	if len(body) == 0 {
		return i.M.Return(value.Void)
	}
	return i.evalSeq(env, body, 0)
}

func (i *Interpreter) evalSeq(env *schemeenv.Environment, body []value.Value, idx int) trampoline.Step {
	if idx == len(body)-1 {
		return i.M.Call(i.stepEval, nil, body[idx], env)
	}
	return i.M.Call(i.stepEval, func() trampoline.Step {
		return i.evalSeq(env, body, idx+1)
	}, body[idx], env)
}
