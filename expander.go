package actinide

// defaultMaxExpansionDepth bounds macro re-expansion. spec.md:118
// requires the expander to detect and report a macro that fails to
// reach a fixed point ("a simple depth cap is acceptable"), mirroring
// the recursion budget Evaluator enforces for non-tail calls.
const defaultMaxExpansionDepth = 8000

// Expander rewrites a form read by the reader into one containing only
// core special forms and applications, per spec.md §4.5: it lowers
// quasiquote/unquote/unquote-splicing to `cons`/`append`/`quote` forms,
// desugars `(define (name . formals) body...)` into
// `(define name (lambda formals body...))`, and repeatedly applies
// user-defined macros (looked up in the MacroTable by the head symbol)
// until a fixed point is reached.
type Expander struct {
	Symbols  *SpecialSymbols
	Macros   *MacroTable
	Eval     *Evaluator
	env      *Environment // the environment macro transformers run in
	depth    int
	maxDepth int
}

// NewExpander creates an expander. env is the environment macro
// transformer procedures are applied in (ordinarily a session's global
// environment, since transformers are ordinary procedures with no
// special scoping).
func NewExpander(symbols *SpecialSymbols, macros *MacroTable, ev *Evaluator, env *Environment) *Expander {
	return &Expander{Symbols: symbols, Macros: macros, Eval: ev, env: env, maxDepth: defaultMaxExpansionDepth}
}

// Expand fully expands form: macro invocations at the head of a list are
// expanded and the result is re-expanded, to a fixed point, before its
// subforms are recursively expanded. A `define-macro` nested inside a
// body is left as a plain special form here; it only takes effect once
// evaluated, so it never affects the expansion pass currently in
// progress (spec.md §4.5).
func (ex *Expander) Expand(form Value) (result Value, err error) {
	defer guard(&err)
	return ex.expand(form), nil
}

func (ex *Expander) expand(form Value) Value {
	c, ok := form.(*Cons)
	if !ok || c == nil {
		return form
	}
	if headSym, ok := c.Car.(*Symbol); ok {
		switch headSym {
		case ex.Symbols.Quote:
			return form
		case ex.Symbols.Quasiquote:
			parts := flatten(c.Cdr)
			if len(parts) != 1 {
				panic(newExpansionError("quasiquote: expected exactly one argument"))
			}
			return ex.expandQuasiquote(parts[0], 1)
		case ex.Symbols.Lambda:
			return ex.expandLambda(c)
		case ex.Symbols.Define:
			return ex.expandDefine(c)
		case ex.Symbols.DefineMacro:
			return ex.expandDefineMacro(c)
		}
		if transformer, ok := ex.Macros.Lookup(headSym); ok {
			return ex.reExpandMacro(headSym, transformer, c.Cdr)
		}
	}
	return ex.expandEachElement(c)
}

// reExpandMacro applies transformer once and re-expands the result to a
// fixed point, bounded by maxDepth so a macro that never stabilizes
// raises a catchable ExpansionErrorKind instead of overflowing the host
// stack.
func (ex *Expander) reExpandMacro(name *Symbol, transformer Value, argForms Value) Value {
	ex.depth++
	if ex.depth > ex.maxDepth {
		ex.depth--
		panic(newExpansionError("macro expansion did not reach a fixed point: " + name.String()))
	}
	defer func() { ex.depth-- }()
	expanded := ex.applyMacro(transformer, argForms)
	return ex.expand(expanded)
}

func (ex *Expander) applyMacro(transformer Value, argForms Value) Value {
	if !procedureP(transformer) {
		panic(newExpansionError("macro transformer is not a procedure"))
	}
	args := flatten(argForms)
	var result []Value
	var err error
	switch t := transformer.(type) {
	case *UserProcedure:
		newEnv, berr := bindFormals(t.Formals, args, t.Env)
		if berr != nil {
			panic(newExpansionError(berr.Error()))
		}
		result, err = ex.Eval.Eval(t.Body, newEnv)
	case *Builtin:
		result, err = t.Fn(args)
	}
	if err != nil {
		panic(err)
	}
	return singleValue(result)
}

// expandEachElement expands every element of a proper or improper list
// form, preserving its shape (including a non-list tail).
func (ex *Expander) expandEachElement(c *Cons) Value {
	var items []Value
	var cur Value = c
	for {
		cell, ok := cur.(*Cons)
		if !ok || cell == nil {
			break
		}
		items = append(items, ex.expand(cell.Car))
		cur = cell.Cdr
	}
	if nilP(cur) {
		return list(items...)
	}
	tail := ex.expand(cur)
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = &Cons{items[i], result}
	}
	return result
}

// expandLambda expands a lambda's body forms, leaving its formals list
// literal.
func (ex *Expander) expandLambda(c *Cons) Value {
	parts := flatten(c.Cdr)
	if len(parts) < 1 {
		panic(newExpansionError("lambda: missing formals"))
	}
	out := make([]Value, 0, len(parts)+1)
	out = append(out, Value(ex.Symbols.Lambda), parts[0])
	for _, body := range parts[1:] {
		out = append(out, ex.expand(body))
	}
	return list(out...)
}

// expandDefine rewrites `(define (name . formals) body...)` into
// `(define name (lambda formals body...))` before expanding the value
// subform, per spec.md §4.5.
func (ex *Expander) expandDefine(c *Cons) Value {
	parts := flatten(c.Cdr)
	if len(parts) < 1 {
		panic(newExpansionError("define: missing target"))
	}
	if target, ok := parts[0].(*Cons); ok && target != nil {
		name, ok := target.Car.(*Symbol)
		if !ok {
			panic(newExpansionError("define: procedure name is not a symbol"))
		}
		lambdaForm := &Cons{Value(ex.Symbols.Lambda), &Cons{target.Cdr, list(parts[1:]...)}}
		return list(Value(ex.Symbols.Define), name, ex.expand(lambdaForm))
	}
	if len(parts) != 2 {
		panic(newExpansionError("define: expected exactly one value form"))
	}
	return list(Value(ex.Symbols.Define), parts[0], ex.expand(parts[1]))
}

// expandDefineMacro accepts both `(define-macro name transformer-expr)`
// and the same procedure-header shorthand `define` accepts,
// `(define-macro (name . formals) body...)`, rewriting the latter into
// `(define-macro name (lambda formals body...))` (spec.md §8 scenario 4
// uses exactly this shorthand).
func (ex *Expander) expandDefineMacro(c *Cons) Value {
	parts := flatten(c.Cdr)
	if len(parts) < 1 {
		panic(newExpansionError("define-macro: missing target"))
	}
	if target, ok := parts[0].(*Cons); ok && target != nil {
		name, ok := target.Car.(*Symbol)
		if !ok {
			panic(newExpansionError("define-macro: macro name is not a symbol"))
		}
		lambdaForm := &Cons{Value(ex.Symbols.Lambda), &Cons{target.Cdr, list(parts[1:]...)}}
		return list(Value(ex.Symbols.DefineMacro), name, ex.expand(lambdaForm))
	}
	if len(parts) != 2 {
		panic(newExpansionError("define-macro: expected exactly one transformer form"))
	}
	return list(Value(ex.Symbols.DefineMacro), parts[0], ex.expand(parts[1]))
}

// expandQuasiquote lowers a quasiquoted template to `cons`/`append`/
// `quote` forms, per spec.md §4.5. depth tracks nested
// quasiquotes so that unquote/unquote-splicing only fire at depth 1.
func (ex *Expander) expandQuasiquote(form Value, depth int) Value {
	c, ok := form.(*Cons)
	if !ok || c == nil {
		return list(Value(ex.Symbols.Quote), form)
	}
	if headSym, ok := c.Car.(*Symbol); ok {
		switch headSym {
		case ex.Symbols.Unquote:
			parts := flatten(c.Cdr)
			if len(parts) != 1 {
				panic(newExpansionError("unquote: expected exactly one argument"))
			}
			if depth == 1 {
				return ex.expand(parts[0])
			}
			return ex.wrapQuasi(ex.Symbols.Unquote, ex.expandQuasiquote(parts[0], depth-1))
		case ex.Symbols.UnquoteSplic:
			panic(newExpansionError("unquote-splicing: not valid outside a list template"))
		case ex.Symbols.Quasiquote:
			parts := flatten(c.Cdr)
			if len(parts) != 1 {
				panic(newExpansionError("quasiquote: expected exactly one argument"))
			}
			return ex.wrapQuasi(ex.Symbols.Quasiquote, ex.expandQuasiquote(parts[0], depth+1))
		}
	}
	return ex.expandQuasiList(c, depth)
}

func (ex *Expander) wrapQuasi(tag *Symbol, inner Value) Value {
	return list(Value(ex.Symbols.Cons), list(Value(ex.Symbols.Quote), tag), list(Value(ex.Symbols.Cons), inner, list(Value(ex.Symbols.Quote), Nil)))
}

// expandQuasiList lowers the elements of a quasiquoted list, splicing in
// unquote-splicing subforms via `append` and consing everything else via
// `cons`, terminating with the (recursively lowered) tail.
func (ex *Expander) expandQuasiList(c *Cons, depth int) Value {
	if c == nil {
		return list(Value(ex.Symbols.Quote), Nil)
	}
	if headSym, ok := c.Car.(*Symbol); ok && headSym == ex.Symbols.Unquote && depth == 1 {
		parts := flatten(c.Cdr)
		if len(parts) != 1 {
			panic(newExpansionError("unquote: expected exactly one argument"))
		}
		return ex.expand(parts[0])
	}
	var head Value
	if splice, ok := c.Car.(*Cons); ok && splice != nil {
		if sHead, ok := splice.Car.(*Symbol); ok && sHead == ex.Symbols.UnquoteSplic && depth == 1 {
			parts := flatten(splice.Cdr)
			if len(parts) != 1 {
				panic(newExpansionError("unquote-splicing: expected exactly one argument"))
			}
			spliced := ex.expand(parts[0])
			tail := ex.quasiTail(c.Cdr, depth)
			return list(Value(ex.Symbols.Append), spliced, tail)
		}
	}
	head = ex.expandQuasiquote(c.Car, depth)
	tail := ex.quasiTail(c.Cdr, depth)
	return list(Value(ex.Symbols.Cons), head, tail)
}

func (ex *Expander) quasiTail(cdr Value, depth int) Value {
	if cell, ok := cdr.(*Cons); ok {
		return ex.expandQuasiList(cell, depth)
	}
	return ex.expandQuasiquote(cdr, depth)
}
