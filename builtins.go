package actinide

import (
	"math/big"
	"strconv"
	"strings"
)

// registerBuiltins binds the built-in inventory of spec.md §6.2 into env,
// except `map`/`filter`/`reduce` and `expand`/`eval`, which need a live
// evaluator and are bound by registerHigherOrder and
// registerMetaprogramming. Grounded on the original implementation's
// builtin.py registry; each built-in is installed directly as a
// *Builtin with the nativeFn calling convention, the same shape
// Session.BindProc installs for hosts.
func registerBuiltins(env *Environment, symbols *SymbolTable, eof *Symbol) {
	bind := func(name string, fn nativeFn) {
		env.Define(symbols.Intern(name), &Builtin{Name: name, Fn: fn})
	}

	registerArithmetic(bind)
	registerLogic(bind)
	registerPredicates(bind)
	registerLists(bind)
	registerConversions(bind, symbols)
	registerEquality(bind)
	registerVectors(bind)
	registerStrings(bind)
	registerPorts(bind, symbols, eof)

	env.Define(symbols.Intern("nil"), Value(Nil))
}

func wantArgs(name string, args []Value, n int) {
	if len(args) != n {
		panic(newArityError(name + ": expected exactly " + strconv.Itoa(n) + " argument(s)"))
	}
}

func registerArithmetic(bind func(string, nativeFn)) {
	fold := func(name string, op func(a, b Value) (Value, error), identity Value) nativeFn {
		return func(args []Value) ([]Value, error) {
			if len(args) == 0 {
				return []Value{identity}, nil
			}
			acc := args[0]
			if !isNumeric(acc) {
				return nil, newTypeError(name + ": expected a number")
			}
			for _, next := range args[1:] {
				var err error
				acc, err = op(acc, next)
				if err != nil {
					return nil, err
				}
			}
			return []Value{acc}, nil
		}
	}
	bind("+", fold("+", numericAdd, integerFromBigInt(big.NewInt(0))))
	bind("*", fold("*", numericMul, integerFromBigInt(big.NewInt(1))))
	bind("-", func(args []Value) ([]Value, error) {
		if len(args) == 0 {
			return nil, newArityError("-: expected at least 1 argument")
		}
		if len(args) == 1 {
			zero := integerFromBigInt(big.NewInt(0))
			r, err := numericSub(zero, args[0])
			return []Value{r}, err
		}
		acc := args[0]
		for _, next := range args[1:] {
			var err error
			acc, err = numericSub(acc, next)
			if err != nil {
				return nil, err
			}
		}
		return []Value{acc}, nil
	})
	bind("/", func(args []Value) ([]Value, error) {
		if len(args) < 1 {
			return nil, newArityError("/: expected at least 1 argument")
		}
		acc := args[0]
		if len(args) == 1 {
			one := integerFromBigInt(big.NewInt(1))
			r, err := numericDiv(one, acc)
			return []Value{r}, err
		}
		for _, next := range args[1:] {
			var err error
			acc, err = numericDiv(acc, next)
			if err != nil {
				return nil, err
			}
		}
		return []Value{acc}, nil
	})
	cmpChain := func(name string, ok func(cmp int) bool) nativeFn {
		return func(args []Value) ([]Value, error) {
			if len(args) < 2 {
				return nil, newArityError(name + ": expected at least 2 arguments")
			}
			for i := 0; i < len(args)-1; i++ {
				cmp, err := numericCmp(args[i], args[i+1])
				if err != nil {
					return nil, err
				}
				if !ok(cmp) {
					return []Value{false}, nil
				}
			}
			return []Value{true}, nil
		}
	}
	bind("<", cmpChain("<", func(c int) bool { return c < 0 }))
	bind("<=", cmpChain("<=", func(c int) bool { return c <= 0 }))
	bind(">", cmpChain(">", func(c int) bool { return c > 0 }))
	bind(">=", cmpChain(">=", func(c int) bool { return c >= 0 }))
}

// registerLogic implements `and`/`or`/`not` as ordinary variadic
// procedures per spec.md §6.2: unlike most Schemes, they are not
// short-circuiting special forms here, since every argument has already
// been evaluated by the time a built-in sees them.
func registerLogic(bind func(string, nativeFn)) {
	bind("and", func(args []Value) ([]Value, error) {
		for _, a := range args {
			if !truthy(a) {
				return []Value{false}, nil
			}
		}
		return []Value{true}, nil
	})
	bind("or", func(args []Value) ([]Value, error) {
		for _, a := range args {
			if truthy(a) {
				return []Value{true}, nil
			}
		}
		return []Value{false}, nil
	})
	bind("not", func(args []Value) ([]Value, error) {
		wantArgs("not", args, 1)
		return []Value{!truthy(args[0])}, nil
	})
}

func registerPredicates(bind func(string, nativeFn)) {
	pred := func(name string, p func(Value) bool) nativeFn {
		return func(args []Value) ([]Value, error) {
			wantArgs(name, args, 1)
			return []Value{p(args[0])}, nil
		}
	}
	bind("boolean?", pred("boolean?", func(v Value) bool { _, ok := v.(bool); return ok }))
	bind("cons?", pred("cons?", consP))
	bind("decimal?", pred("decimal?", func(v Value) bool { _, ok := v.(*Decimal); return ok }))
	bind("integer?", pred("integer?", func(v Value) bool { _, ok := v.(*Integer); return ok }))
	bind("list?", pred("list?", listP))
	bind("nil?", pred("nil?", nilP))
	bind("procedure?", pred("procedure?", procedureP))
	bind("string?", pred("string?", func(v Value) bool { _, ok := v.(string); return ok }))
	bind("symbol?", pred("symbol?", func(v Value) bool { _, ok := v.(*Symbol); return ok }))
	bind("vector?", pred("vector?", func(v Value) bool { _, ok := v.(*Vector); return ok }))
}

func registerLists(bind func(string, nativeFn)) {
	bind("cons", func(args []Value) ([]Value, error) {
		wantArgs("cons", args, 2)
		return []Value{&Cons{args[0], args[1]}}, nil
	})
	bind("head", func(args []Value) ([]Value, error) {
		wantArgs("head", args, 1)
		c, ok := args[0].(*Cons)
		if !ok || c == nil {
			return nil, newTypeError("head: expected a non-empty cons")
		}
		return []Value{c.Car}, nil
	})
	bind("tail", func(args []Value) ([]Value, error) {
		wantArgs("tail", args, 1)
		c, ok := args[0].(*Cons)
		if !ok || c == nil {
			return nil, newTypeError("tail: expected a non-empty cons")
		}
		return []Value{c.Cdr}, nil
	})
	bind("uncons", func(args []Value) ([]Value, error) {
		wantArgs("uncons", args, 1)
		c, ok := args[0].(*Cons)
		if !ok || c == nil {
			return nil, newTypeError("uncons: expected a non-empty cons")
		}
		return []Value{c.Car, c.Cdr}, nil
	})
	bind("list", func(args []Value) ([]Value, error) {
		return []Value{list(args...)}, nil
	})
	bind("append", func(args []Value) ([]Value, error) {
		if len(args) == 0 {
			return []Value{Value(Nil)}, nil
		}
		var items []Value
		for _, a := range args[:len(args)-1] {
			items = append(items, flatten(a)...)
		}
		result := args[len(args)-1]
		for i := len(items) - 1; i >= 0; i-- {
			result = &Cons{items[i], result}
		}
		return []Value{result}, nil
	})
	bind("length", func(args []Value) ([]Value, error) {
		wantArgs("length", args, 1)
		switch x := args[0].(type) {
		case string:
			return []Value{integerFromBigInt(big.NewInt(int64(len([]rune(x)))))}, nil
		case *Cons:
			return []Value{integerFromBigInt(big.NewInt(int64(listLength(x))))}, nil
		default:
			if nilP(args[0]) {
				return []Value{integerFromBigInt(big.NewInt(0))}, nil
			}
			return nil, newTypeError("length: expected a list or a string")
		}
	})
}

// registerHigherOrder installs `map`/`filter`/`reduce`, which need to
// invoke user procedures; they are bound by Session after the evaluator
// exists, since a plain nativeFn cannot call back into Eval on its own.
func registerHigherOrder(env *Environment, symbols *SymbolTable, ev *Evaluator) {
	call := func(proc Value, args []Value) Value {
		switch p := proc.(type) {
		case *Builtin:
			result, err := p.Fn(args)
			if err != nil {
				panic(err)
			}
			return singleValue(result)
		case *UserProcedure:
			newEnv, err := bindFormals(p.Formals, args, p.Env)
			if err != nil {
				panic(err)
			}
			result, err := ev.Eval(p.Body, newEnv)
			if err != nil {
				panic(err)
			}
			return singleValue(result)
		default:
			panic(newTypeError("expected a procedure"))
		}
	}
	bind := func(name string, fn nativeFn) {
		env.Define(symbols.Intern(name), &Builtin{Name: name, Fn: fn})
	}
	bind("map", func(args []Value) ([]Value, error) {
		wantArgs("map", args, 2)
		proc := args[0]
		items := flatten(args[1])
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = call(proc, []Value{item})
		}
		return []Value{list(out...)}, nil
	})
	bind("filter", func(args []Value) ([]Value, error) {
		wantArgs("filter", args, 2)
		proc := args[0]
		items := flatten(args[1])
		var out []Value
		for _, item := range items {
			if truthy(call(proc, []Value{item})) {
				out = append(out, item)
			}
		}
		return []Value{list(out...)}, nil
	})
	bind("reduce", func(args []Value) ([]Value, error) {
		wantArgs("reduce", args, 2)
		proc := args[0]
		items := flatten(args[1])
		if len(items) == 0 {
			return nil, newDomainError("reduce: empty list")
		}
		acc := items[0]
		for _, item := range items[1:] {
			acc = call(proc, []Value{acc, item})
		}
		return []Value{acc}, nil
	})
}

// registerMetaprogramming installs `expand` and `eval`, spec.md §6.2's
// metaprogramming built-ins: `expand` macro-expands and quasiquote-lowers
// a form without evaluating it, and `eval` does the same and then
// reduces the result against the session's top-level environment. Both
// call the same Expander/Evaluator pair that the host-callable
// Session.Expand/Session.Eval methods use, exposed inside the language
// itself. Grounded on
// `original_source/actinide/__init__.py`'s `eval`/`expand` builtins,
// which bind through to the same expand-then-reduce pipeline.
func registerMetaprogramming(env *Environment, symbols *SymbolTable, ex *Expander, ev *Evaluator) {
	bind := func(name string, fn nativeFn) {
		env.Define(symbols.Intern(name), &Builtin{Name: name, Fn: fn})
	}
	bind("expand", func(args []Value) ([]Value, error) {
		wantArgs("expand", args, 1)
		expanded, err := ex.Expand(args[0])
		if err != nil {
			return nil, err
		}
		return []Value{expanded}, nil
	})
	bind("eval", func(args []Value) ([]Value, error) {
		wantArgs("eval", args, 1)
		expanded, err := ex.Expand(args[0])
		if err != nil {
			return nil, err
		}
		return ev.Eval(expanded, env)
	})
}

func registerConversions(bind func(string, nativeFn), symbols *SymbolTable) {
	bind("integer", func(args []Value) ([]Value, error) {
		wantArgs("integer", args, 1)
		switch x := args[0].(type) {
		case *Integer:
			return []Value{x}, nil
		case *Decimal:
			r := x.rat()
			q := new(big.Int).Quo(r.Num(), r.Denom())
			return []Value{integerFromBigInt(q)}, nil
		case string:
			iv, ok := tryParseInteger(strings.TrimSpace(x))
			if !ok {
				return nil, newDomainError("integer: cannot parse " + x)
			}
			return []Value{iv}, nil
		default:
			return nil, newTypeError("integer: cannot convert value")
		}
	})
	bind("decimal", func(args []Value) ([]Value, error) {
		wantArgs("decimal", args, 1)
		switch x := args[0].(type) {
		case *Decimal:
			return []Value{x}, nil
		case *Integer:
			d, _ := asDecimal(x)
			return []Value{d}, nil
		case string:
			dv, ok := tryParseDecimal(strings.TrimSpace(x))
			if !ok {
				return nil, newDomainError("decimal: cannot parse " + x)
			}
			return []Value{dv}, nil
		default:
			return nil, newTypeError("decimal: cannot convert value")
		}
	})
	bind("string", func(args []Value) ([]Value, error) {
		wantArgs("string", args, 1)
		if s, ok := args[0].(string); ok {
			return []Value{s}, nil
		}
		if sym, ok := args[0].(*Symbol); ok {
			return []Value{sym.String()}, nil
		}
		return []Value{Display(args[0])}, nil
	})
	bind("symbol", func(args []Value) ([]Value, error) {
		wantArgs("symbol", args, 1)
		s, ok := args[0].(string)
		if !ok {
			return nil, newTypeError("symbol: expected a string")
		}
		return []Value{symbols.Intern(s)}, nil
	})
	bind("display", func(args []Value) ([]Value, error) {
		wantArgs("display", args, 1)
		return []Value{Display(args[0])}, nil
	})
	bind("list-to-vector", func(args []Value) ([]Value, error) {
		wantArgs("list-to-vector", args, 1)
		return []Value{NewVector(flatten(args[0])...)}, nil
	})
	bind("vector-to-list", func(args []Value) ([]Value, error) {
		wantArgs("vector-to-list", args, 1)
		v, ok := args[0].(*Vector)
		if !ok {
			return nil, newTypeError("vector-to-list: expected a vector")
		}
		return []Value{list(v.Slice()...)}, nil
	})
}

// registerEquality installs `=` (structural equality: recursive on cons
// and vector elements, magnitude across integer/decimal, text equality
// on strings, interned identity on symbols) and `!=` (its adjacent-pair
// negation), and `eq?` (identity). Per spec.md §6.2, `=` is the same
// structural comparison whether it is applied to numbers or to any
// other value, not a numbers-only arithmetic operator.
func registerEquality(bind func(string, nativeFn)) {
	bind("=", func(args []Value) ([]Value, error) {
		if len(args) < 2 {
			return nil, newArityError("=: expected at least 2 arguments")
		}
		for i := 0; i < len(args)-1; i++ {
			if !equalValue(args[i], args[i+1]) {
				return []Value{false}, nil
			}
		}
		return []Value{true}, nil
	})
	bind("!=", func(args []Value) ([]Value, error) {
		if len(args) < 2 {
			return nil, newArityError("!=: expected at least 2 arguments")
		}
		for i := 0; i < len(args)-1; i++ {
			if equalValue(args[i], args[i+1]) {
				return []Value{false}, nil
			}
		}
		return []Value{true}, nil
	})
	bind("eq?", func(args []Value) ([]Value, error) {
		wantArgs("eq?", args, 2)
		return []Value{eqP(args[0], args[1])}, nil
	})
}

func registerVectors(bind func(string, nativeFn)) {
	bind("vector", func(args []Value) ([]Value, error) {
		return []Value{NewVector(args...)}, nil
	})
	bind("vector-add", func(args []Value) ([]Value, error) {
		if len(args) < 1 {
			return nil, newArityError("vector-add: expected at least 1 argument")
		}
		v, ok := args[0].(*Vector)
		if !ok {
			return nil, newTypeError("vector-add: expected a vector")
		}
		v.Add(args[1:]...)
		return []Value{v}, nil
	})
	bind("vector-get", func(args []Value) ([]Value, error) {
		wantArgs("vector-get", args, 2)
		v, ok := args[0].(*Vector)
		if !ok {
			return nil, newTypeError("vector-get: expected a vector")
		}
		i, ok := args[1].(*Integer)
		if !ok {
			return nil, newTypeError("vector-get: expected an integer index")
		}
		idx := int(integerBigInt(i.Num).Int64())
		val, ok := v.Get(idx)
		if !ok {
			return nil, newDomainError("vector-get: index out of range")
		}
		return []Value{val}, nil
	})
	bind("vector-set", func(args []Value) ([]Value, error) {
		wantArgs("vector-set", args, 3)
		v, ok := args[0].(*Vector)
		if !ok {
			return nil, newTypeError("vector-set: expected a vector")
		}
		i, ok := args[1].(*Integer)
		if !ok {
			return nil, newTypeError("vector-set: expected an integer index")
		}
		idx := int(integerBigInt(i.Num).Int64())
		if !v.Set(idx, args[2]) {
			return nil, newDomainError("vector-set: index out of range")
		}
		return []Value{Value(Nil)}, nil
	})
	bind("vector-length", func(args []Value) ([]Value, error) {
		wantArgs("vector-length", args, 1)
		v, ok := args[0].(*Vector)
		if !ok {
			return nil, newTypeError("vector-length: expected a vector")
		}
		return []Value{integerFromBigInt(big.NewInt(int64(v.Len())))}, nil
	})
}

func registerStrings(bind func(string, nativeFn)) {
	bind("concat", func(args []Value) ([]Value, error) {
		var sb strings.Builder
		for _, a := range args {
			s, ok := a.(string)
			if !ok {
				return nil, newTypeError("concat: expected a string")
			}
			sb.WriteString(s)
		}
		return []Value{sb.String()}, nil
	})
}

func registerPorts(bind func(string, nativeFn), symbols *SymbolTable, eof *Symbol) {
	bind("string-to-input-port", func(args []Value) ([]Value, error) {
		wantArgs("string-to-input-port", args, 1)
		s, ok := args[0].(string)
		if !ok {
			return nil, newTypeError("string-to-input-port: expected a string")
		}
		return []Value{Port(NewStringPort(s))}, nil
	})
	bind("peek-port", func(args []Value) ([]Value, error) {
		wantArgs("peek-port", args, 2)
		p, ok := args[0].(Port)
		if !ok {
			return nil, newTypeError("peek-port: expected a port")
		}
		n, ok := args[1].(*Integer)
		if !ok {
			return nil, newTypeError("peek-port: expected an integer count")
		}
		return []Value{p.Peek(int(integerBigInt(n.Num).Int64()))}, nil
	})
	bind("read-port", func(args []Value) ([]Value, error) {
		wantArgs("read-port", args, 2)
		p, ok := args[0].(Port)
		if !ok {
			return nil, newTypeError("read-port: expected a port")
		}
		n, ok := args[1].(*Integer)
		if !ok {
			return nil, newTypeError("read-port: expected an integer count")
		}
		return []Value{p.Read(int(integerBigInt(n.Num).Int64()))}, nil
	})
	bind("read-port-fully", func(args []Value) ([]Value, error) {
		wantArgs("read-port-fully", args, 1)
		p, ok := args[0].(Port)
		if !ok {
			return nil, newTypeError("read-port-fully: expected a port")
		}
		return []Value{p.ReadAll()}, nil
	})
	bind("read", func(args []Value) ([]Value, error) {
		wantArgs("read", args, 1)
		p, ok := args[0].(Port)
		if !ok {
			return nil, newTypeError("read: expected a port")
		}
		form, err := Read(p, symbols, eof)
		if err != nil {
			return nil, err
		}
		return []Value{form}, nil
	})
}

// newEOFSentinel creates the distinguished end-of-file value a session's
// reader returns at stream end. Per spec.md §4.1 it is a generated
// uninterned symbol, never reachable via `intern`/`symbol`, so it is
// allocated exactly once per session rather than derived by name.
func newEOFSentinel() *Symbol {
	return NewUninterned("#[eof]")
}
