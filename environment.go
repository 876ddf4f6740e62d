package actinide

// Environment is a frame of symbol-to-value bindings with a single parent
// reference (spec.md §4.3). Lookup walks outward from child to parent;
// `define` always targets the innermost (current) frame.
type Environment struct {
	bindings map[*Symbol]Value
	parent   *Environment
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[*Symbol]Value)}
}

// Extend creates a new child frame whose parent is env.
func (env *Environment) Extend() *Environment {
	return &Environment{bindings: make(map[*Symbol]Value), parent: env}
}

// Lookup walks outward from env, returning the first binding found.
func (env *Environment) Lookup(sym *Symbol) (Value, bool) {
	for e := env; e != nil; e = e.parent {
		if v, ok := e.bindings[sym]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds sym to value in the innermost (this) frame, overwriting
// any existing binding in that same frame.
func (env *Environment) Define(sym *Symbol, value Value) {
	env.bindings[sym] = value
}

// MacroTable is structurally identical to Environment (spec.md §4.4) but
// is a distinct type so it can never be confused with the value
// environment at a call site; it is consulted only by the expander.
type MacroTable struct {
	inner *Environment
}

// NewMacroTable creates an empty, top-level macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{inner: NewEnvironment()}
}

func (m *MacroTable) Lookup(sym *Symbol) (Value, bool) {
	return m.inner.Lookup(sym)
}

func (m *MacroTable) Define(sym *Symbol, transformer Value) {
	m.inner.Define(sym, transformer)
}
