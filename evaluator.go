package actinide

// SpecialSymbols caches the interned symbols the evaluator and expander
// dispatch on by identity, so that neither has to re-intern strings on
// every reduction. Built once per session from its SymbolTable.
type SpecialSymbols struct {
	Quote        *Symbol
	Begin        *Symbol
	If           *Symbol
	Lambda       *Symbol
	Define       *Symbol
	DefineMacro  *Symbol
	Values       *Symbol
	Quasiquote   *Symbol
	Unquote      *Symbol
	UnquoteSplic *Symbol
	Cons         *Symbol
	Append       *Symbol
}

// NewSpecialSymbols interns every special-form and quote-family symbol
// name in symbols.
func NewSpecialSymbols(symbols *SymbolTable) *SpecialSymbols {
	return &SpecialSymbols{
		Quote:        symbols.Intern("quote"),
		Begin:        symbols.Intern("begin"),
		If:           symbols.Intern("if"),
		Lambda:       symbols.Intern("lambda"),
		Define:       symbols.Intern("define"),
		DefineMacro:  symbols.Intern("define-macro"),
		Values:       symbols.Intern("values"),
		Quasiquote:   symbols.Intern("quasiquote"),
		Unquote:      symbols.Intern("unquote"),
		UnquoteSplic: symbols.Intern("unquote-splicing"),
		Cons:         symbols.Intern("cons"),
		Append:       symbols.Intern("append"),
	}
}

// defaultMaxRecursionDepth bounds non-tail recursion. spec.md §7 requires
// a catchable "recursion-depth exceeded" error; a real Go stack overflow
// is not recoverable, so the evaluator enforces its own budget instead of
// waiting for the host stack to actually run out.
const defaultMaxRecursionDepth = 8000

// Evaluator reduces expanded forms to value sequences against an
// environment, per spec.md §4.6. Tail positions (the last form of
// `begin`, the chosen branch of `if`, and a user procedure's body) are
// reduced by looping with a reassigned form/environment pair rather than
// by recursing, so tail calls never grow the host stack (spec.md §9's
// Step = Done(values) | Continue(form, env) trampoline, realized here as
// a single Go for-loop instead of an explicit continuation stack).
type Evaluator struct {
	Symbols  *SpecialSymbols
	Macros   *MacroTable
	depth    int
	maxDepth int
}

// NewEvaluator creates an evaluator against the given macro table, used
// to resolve `define-macro` at runtime (spec.md §4.6).
func NewEvaluator(symbols *SpecialSymbols, macros *MacroTable) *Evaluator {
	return &Evaluator{Symbols: symbols, Macros: macros, maxDepth: defaultMaxRecursionDepth}
}

// Eval reduces form against env, returning the resulting value sequence.
// Any *ActinideError raised during evaluation is returned as an error
// rather than left to escape as a panic.
func (ev *Evaluator) Eval(form Value, env *Environment) (result []Value, err error) {
	defer guard(&err)
	result = ev.run(form, env)
	return
}

// evalNonTail evaluates form in a fresh (bounded) host stack frame. Used
// for every position that is not a tail position: operator and argument
// forms, `if`'s condition, all but the last form of a `begin`, and the
// right-hand sides of `define`/`define-macro`.
func (ev *Evaluator) evalNonTail(form Value, env *Environment) []Value {
	ev.depth++
	if ev.depth > ev.maxDepth {
		ev.depth--
		panic(newRecursionError("maximum recursion depth exceeded"))
	}
	defer func() { ev.depth-- }()
	return ev.run(form, env)
}

func singleValue(vals []Value) Value {
	if len(vals) != 1 {
		panic(newArityError("expected exactly one value"))
	}
	return vals[0]
}

// truthy implements spec.md §4.6's falsiness rule: #f, nil, integer
// zero, decimal zero (including negative zero), the empty string, and
// the empty vector are false; everything else is true.
func truthy(v Value) bool {
	switch x := v.(type) {
	case bool:
		return x
	case *Cons:
		return x != nil
	case *Integer:
		return !numericIsZero(x)
	case *Decimal:
		return !numericIsZero(x)
	case string:
		return x != ""
	case *Vector:
		return x.Len() != 0
	default:
		return true
	}
}

func bindFormals(formals Formals, args []Value, parent *Environment) (*Environment, error) {
	env := parent.Extend()
	n := len(formals.Params)
	if formals.Rest == nil {
		if len(args) != n {
			return nil, newArityError("wrong number of arguments")
		}
		for i, p := range formals.Params {
			env.Define(p, args[i])
		}
		return env, nil
	}
	if len(args) < n {
		return nil, newArityError("too few arguments")
	}
	for i, p := range formals.Params {
		env.Define(p, args[i])
	}
	env.Define(formals.Rest, list(args[n:]...))
	return env, nil
}

// run is the trampoline's outer loop. Each iteration either returns a
// final value sequence or reassigns form/env and loops again for a tail
// position.
func (ev *Evaluator) run(form Value, env *Environment) []Value {
	for {
		switch x := form.(type) {
		case *Symbol:
			v, ok := env.Lookup(x)
			if !ok {
				panic(newUnboundSymbolError(x.String()))
			}
			return []Value{v}
		case *Cons:
			if x == nil {
				return []Value{Value(Nil)}
			}
			if headSym, ok := x.Car.(*Symbol); ok {
				switch headSym {
				case ev.Symbols.Quote:
					parts := flatten(x.Cdr)
					if len(parts) != 1 {
						panic(newArityError("quote: expected exactly one argument"))
					}
					return []Value{parts[0]}
				case ev.Symbols.Begin:
					forms := flatten(x.Cdr)
					if len(forms) == 0 {
						return []Value{Value(Nil)}
					}
					for i := 0; i < len(forms)-1; i++ {
						ev.evalNonTail(forms[i], env)
					}
					form = forms[len(forms)-1]
					continue
				case ev.Symbols.If:
					parts := flatten(x.Cdr)
					if len(parts) != 2 && len(parts) != 3 {
						panic(newArityError("if: expected 2 or 3 arguments"))
					}
					cond := singleValue(ev.evalNonTail(parts[0], env))
					if truthy(cond) {
						form = parts[1]
					} else if len(parts) == 3 {
						form = parts[2]
					} else {
						return []Value{Value(Nil)}
					}
					continue
				case ev.Symbols.Lambda:
					parts := flatten(x.Cdr)
					if len(parts) < 1 {
						panic(newArityError("lambda: missing formals"))
					}
					formals, ferr := parseFormals(parts[0])
					if ferr != nil {
						panic(ferr)
					}
					body := parts[1:]
					var bodyForm Value
					switch len(body) {
					case 0:
						bodyForm = Value(Nil)
					case 1:
						bodyForm = body[0]
					default:
						bodyForm = list(append([]Value{Value(ev.Symbols.Begin)}, body...)...)
					}
					return []Value{&UserProcedure{Formals: formals, Body: bodyForm, Env: env}}
				case ev.Symbols.Define:
					parts := flatten(x.Cdr)
					if len(parts) != 2 {
						panic(newArityError("define: expected 2 arguments"))
					}
					sym, ok := parts[0].(*Symbol)
					if !ok {
						panic(newTypeError("define: first argument must be a symbol"))
					}
					val := singleValue(ev.evalNonTail(parts[1], env))
					env.Define(sym, val)
					return []Value{Value(Nil)}
				case ev.Symbols.DefineMacro:
					parts := flatten(x.Cdr)
					if len(parts) != 2 {
						panic(newArityError("define-macro: expected 2 arguments"))
					}
					sym, ok := parts[0].(*Symbol)
					if !ok {
						panic(newTypeError("define-macro: first argument must be a symbol"))
					}
					transformer := singleValue(ev.evalNonTail(parts[1], env))
					ev.Macros.Define(sym, transformer)
					return []Value{Value(Nil)}
				case ev.Symbols.Values:
					forms := flatten(x.Cdr)
					var out []Value
					for _, f := range forms {
						out = append(out, ev.evalNonTail(f, env)...)
					}
					return out
				}
			}
			// Application: evaluate the operator, then each argument
			// left to right, flattening multi-value results.
			fn := singleValue(ev.evalNonTail(x.Car, env))
			argForms := flatten(x.Cdr)
			var callArgs []Value
			for _, af := range argForms {
				callArgs = append(callArgs, ev.evalNonTail(af, env)...)
			}
			switch callee := fn.(type) {
			case *Builtin:
				result, err := callee.Fn(callArgs)
				if err != nil {
					panic(err)
				}
				return result
			case *UserProcedure:
				newEnv, err := bindFormals(callee.Formals, callArgs, callee.Env)
				if err != nil {
					panic(err)
				}
				env = newEnv
				form = callee.Body
				continue
			default:
				panic(newTypeError("cannot apply a non-procedure"))
			}
		default:
			return []Value{form}
		}
	}
}
