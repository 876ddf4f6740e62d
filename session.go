package actinide

// letPrelude bootstraps `let` as an ordinary macro rather than a core
// special form, per SPEC_FULL.md's supplemented-features section: it
// desugars to one immediately-applied lambda taking every bound name as
// a parameter, applied to all the binding values at once.
const letPrelude = `(define-macro let (lambda (bindings . body)
  (cons (cons (quote lambda) (cons (map head bindings) body))
        (map (lambda (b) (head (tail b))) bindings))))`

// Session is the host-facing façade over one independent interpreter
// instance: its own symbol table, top-level environment, and macro
// table, per spec.md §6.1. Sessions share no mutable state with one
// another and are not safe for concurrent use from multiple goroutines
// (spec.md §5).
type Session struct {
	Symbols  *SymbolTable
	Env      *Environment
	Macros   *MacroTable
	Specials *SpecialSymbols
	eval     *Evaluator
	expand   *Expander
	eofSym   *Symbol
}

// NewSession creates a session with the symbol table, top-level
// environment, macro table, and full built-in inventory of spec.md §6.2
// already installed, plus the bootstrapped `let` macro.
func NewSession() *Session {
	symbols := NewSymbolTable()
	env := NewEnvironment()
	macros := NewMacroTable()
	specials := NewSpecialSymbols(symbols)
	ev := NewEvaluator(specials, macros)
	ex := NewExpander(specials, macros, ev, env)
	eof := newEOFSentinel()

	registerBuiltins(env, symbols, eof)
	registerHigherOrder(env, symbols, ev)
	registerMetaprogramming(env, symbols, ex, ev)

	s := &Session{
		Symbols:  symbols,
		Env:      env,
		Macros:   macros,
		Specials: specials,
		eval:     ev,
		expand:   ex,
		eofSym:   eof,
	}
	if _, err := s.Run(letPrelude); err != nil {
		panic("actinide: internal error bootstrapping prelude: " + err.Error())
	}
	return s
}

// EOF returns the session's distinguished end-of-file sentinel symbol,
// the value `read` and `Session.Read` return at stream end.
func (s *Session) EOF() *Symbol {
	return s.eofSym
}

// Read reads exactly one top-level form from port.
func (s *Session) Read(port Port) (Value, error) {
	return Read(port, s.Symbols, s.eofSym)
}

// Expand macro-expands and quasiquote-lowers form without evaluating it.
func (s *Session) Expand(form Value) (Value, error) {
	return s.expand.Expand(form)
}

// Eval expands then reduces form against the session's top-level
// environment, returning the resulting value sequence.
func (s *Session) Eval(form Value) ([]Value, error) {
	expanded, err := s.expand.Expand(form)
	if err != nil {
		return nil, err
	}
	return s.eval.Eval(expanded, s.Env)
}

// Run reads a single top-level form from text and evaluates it.
func (s *Session) Run(text string) ([]Value, error) {
	form, err := s.Read(NewStringPort(text))
	if err != nil {
		return nil, err
	}
	if form == Value(s.eofSym) {
		return nil, nil
	}
	return s.Eval(form)
}

// Bind installs value under name in the session's top-level environment.
func (s *Session) Bind(name string, value Value) {
	s.Env.Define(s.Symbols.Intern(name), value)
}

// BindVoid installs a native callable whose return value is ignored: the
// call always yields a single `nil` result value (spec.md §6.1's first
// adapter shape).
func (s *Session) BindVoid(name string, fn func(args []Value) error) {
	s.Bind(name, &Builtin{Name: name, Fn: func(args []Value) ([]Value, error) {
		if err := fn(args); err != nil {
			return nil, err
		}
		return []Value{Value(Nil)}, nil
	}})
}

// BindFn installs a native callable returning a single value (spec.md
// §6.1's second adapter shape).
func (s *Session) BindFn(name string, fn func(args []Value) (Value, error)) {
	s.Bind(name, &Builtin{Name: name, Fn: func(args []Value) ([]Value, error) {
		v, err := fn(args)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	}})
}

// BindProc installs a native callable returning a sequence of values,
// spliced as a multi-value result (spec.md §6.1's third adapter shape).
func (s *Session) BindProc(name string, fn nativeFn) {
	s.Bind(name, &Builtin{Name: name, Fn: fn})
}

// Get looks up name in the top-level environment.
func (s *Session) Get(name string) (Value, bool) {
	return s.Env.Lookup(s.Symbols.Intern(name))
}

// Call invokes a procedure value (as returned by Get) with native
// arguments, yielding the value sequence it produces. It is the
// host-callable handle spec.md §6.1 describes for procedure bindings.
func (s *Session) Call(proc Value, args ...Value) (result []Value, err error) {
	defer guard(&err)
	switch p := proc.(type) {
	case *Builtin:
		r, e := p.Fn(args)
		if e != nil {
			panic(e)
		}
		return r, nil
	case *UserProcedure:
		newEnv, e := bindFormals(p.Formals, args, p.Env)
		if e != nil {
			panic(e)
		}
		return s.eval.Eval(p.Body, newEnv)
	default:
		return nil, newTypeError("Call: value is not a procedure")
	}
}

// MacroBind installs value as a macro transformer under name in the
// macro table (spec.md §6.1's macro-bind variant of Bind).
func (s *Session) MacroBind(name string, transformer Value) {
	s.Macros.Define(s.Symbols.Intern(name), transformer)
}

// MacroBindFn installs a native callable as a macro transformer, using
// the same single-value adapter shape as BindFn.
func (s *Session) MacroBindFn(name string, fn func(args []Value) (Value, error)) {
	s.MacroBind(name, &Builtin{Name: name, Fn: func(args []Value) ([]Value, error) {
		v, err := fn(args)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	}})
}
