package ir

import (
	"llace/internal/arena"
	"llace/internal/irtype"
	"llace/internal/llaceerr"
	"llace/internal/nametable"
)

// Module is the root of the IR graph: one name table, one type arena,
// one global arena, one function arena (llace_module_t). Every Ref
// produced by a Module's Add* method stays valid for the Module's
// entire lifetime — nothing is ever removed (spec invariant I1: no
// entity deletion).
type Module struct {
	Target irtype.Target

	names *nametable.Table
	types *arena.Sequence[irtype.Type]
	globs *arena.Sequence[Global]
	funcs *arena.Sequence[Function]

	Name nametable.Ref
}

// NewModule creates an empty module named name, targeting the given
// Target (used by size/alignment computation throughout).
func NewModule(name string, target irtype.Target) (*Module, error) {
	m := &Module{
		Target: target,
		names:  nametable.New(),
		types:  arena.NewSequence[irtype.Type](16),
		globs:  arena.NewSequence[Global](16),
		funcs:  arena.NewSequence[Function](16),
	}
	ref, err := m.names.AddName(name)
	if err != nil {
		return nil, llaceerr.Wrap(llaceerr.InvalidModule, err, "ir: failed to name module")
	}
	m.Name = ref
	return m, nil
}

// AddName interns name into the module's name table.
func (m *Module) AddName(name string) (nametable.Ref, error) {
	ref, err := m.names.AddName(name)
	if err != nil {
		return 0, llaceerr.Wrap(llaceerr.BadArgument, err, "ir: add name")
	}
	return ref, nil
}

// GetName resolves a name table reference back to a string.
func (m *Module) GetName(ref nametable.Ref) (string, error) {
	s, err := m.names.GetName(ref)
	if err != nil {
		return "", llaceerr.Wrap(llaceerr.BadArgument, err, "ir: get name")
	}
	return s, nil
}

// AddType appends a type and returns its Ref.
func (m *Module) AddType(t irtype.Type) irtype.Ref {
	return m.types.Push(t)
}

// GetType resolves a type Ref.
func (m *Module) GetType(ref irtype.Ref) (irtype.Type, error) {
	t, err := m.types.Get(ref)
	if err != nil {
		return irtype.Type{}, llaceerr.Wrap(llaceerr.InvalidType, err, "ir: get type")
	}
	return t, nil
}

// TypeCount returns the number of types registered in the module.
func (m *Module) TypeCount() int { return m.types.Len() }

// FindType performs a linear scan for a type registered under name,
// mirroring llace_builderc64_gettype_ref's name-based lookup (the
// original has no hash table for types yet, only a linear scan).
func (m *Module) FindType(name string) (irtype.Ref, bool) {
	found := irtype.Ref(0)
	ok := false
	m.types.ForEach(func(ref arena.Ref, t irtype.Type) bool {
		n, err := m.names.GetName(t.Name)
		if err == nil && n == name {
			found, ok = ref, true
			return false
		}
		return true
	})
	return found, ok
}

// AddGlobal appends a global and returns its Ref.
func (m *Module) AddGlobal(g Global) arena.Ref {
	return m.globs.Push(g)
}

// GetGlobal resolves a global Ref.
func (m *Module) GetGlobal(ref arena.Ref) (Global, error) {
	g, err := m.globs.Get(ref)
	if err != nil {
		return Global{}, llaceerr.Wrap(llaceerr.InvalidModule, err, "ir: get global")
	}
	return g, nil
}

// SetGlobal overwrites a global in place (e.g. once its initializer is
// built after the slot itself was reserved).
func (m *Module) SetGlobal(ref arena.Ref, g Global) error {
	if err := m.globs.Set(ref, g); err != nil {
		return llaceerr.Wrap(llaceerr.InvalidModule, err, "ir: set global")
	}
	return nil
}

// GlobalCount returns the number of globals registered in the module.
func (m *Module) GlobalCount() int { return m.globs.Len() }

// AddFunction appends a function and returns its Ref.
func (m *Module) AddFunction(f Function) arena.Ref {
	return m.funcs.Push(f)
}

// GetFunction resolves a function Ref.
func (m *Module) GetFunction(ref arena.Ref) (Function, error) {
	f, err := m.funcs.Get(ref)
	if err != nil {
		return Function{}, llaceerr.Wrap(llaceerr.InvalidFunction, err, "ir: get function")
	}
	return f, nil
}

// SetFunction overwrites a function in place, used while incrementally
// building its blocks after the function itself was reserved (so that
// call sites can reference it by Ref before its body exists).
func (m *Module) SetFunction(ref arena.Ref, f Function) error {
	if err := m.funcs.Set(ref, f); err != nil {
		return llaceerr.Wrap(llaceerr.InvalidFunction, err, "ir: set function")
	}
	return nil
}

// FunctionCount returns the number of functions registered in the
// module.
func (m *Module) FunctionCount() int { return m.funcs.Len() }

// FindFunction performs a linear scan for a function registered under
// name.
func (m *Module) FindFunction(name string) (arena.Ref, bool) {
	found := arena.Ref(0)
	ok := false
	m.funcs.ForEach(func(ref arena.Ref, f Function) bool {
		n, err := m.names.GetName(f.Name)
		if err == nil && n == name {
			found, ok = ref, true
			return false
		}
		return true
	})
	return found, ok
}
