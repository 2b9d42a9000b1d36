// Package irbuilder is the convenience layer over internal/ir: name-
// keyed lookup maps that give O(1) dedup where the underlying ir.Module
// only offers a linear scan. The original's builder/module.h,
// builder/func.h, and builder/block.h each sketch this as a struct
// wrapping the raw IR type plus a commented-out "hash table... helps
// stop deduplication" — this package is that hash table, implemented.
package irbuilder

import (
	"llace/internal/arena"
	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/irtype"
	"llace/internal/llaceerr"
)

// Builder wraps an ir.Module with name-indexed maps for types, globals,
// and functions (llace_builder_t).
type Builder struct {
	Module *ir.Module

	typesByName  map[string]irtype.Ref
	globsByName  map[string]arena.Ref
	funcsByName  map[string]arena.Ref
}

// NewBuilder creates an empty Builder targeting target, named name
// (llace_build_module_init).
func NewBuilder(name string, target config.Target) (*Builder, error) {
	m, err := ir.NewModule(name, irtype.Target{PointerSize: target.PointerSizeBytes()})
	if err != nil {
		return nil, err
	}
	return &Builder{
		Module:      m,
		typesByName: make(map[string]irtype.Ref),
		globsByName: make(map[string]arena.Ref),
		funcsByName: make(map[string]arena.Ref),
	}, nil
}

// AddType registers t under name, failing with DuplicateSymbol if name
// is already taken — the dedup check the original leaves as a TODO.
func (b *Builder) AddType(name string, t irtype.Type) (irtype.Ref, error) {
	if _, exists := b.typesByName[name]; exists {
		return 0, llaceerr.Newf(llaceerr.DuplicateSymbol, "irbuilder: type %q already registered", name)
	}
	nameRef, err := b.Module.AddName(name)
	if err != nil {
		return 0, err
	}
	t.Name = nameRef
	ref := b.Module.AddType(t)
	b.typesByName[name] = ref
	return ref, nil
}

// GetType resolves a previously registered type by name in O(1),
// instead of ir.Module.FindType's linear scan.
func (b *Builder) GetType(name string) (irtype.Ref, bool) {
	ref, ok := b.typesByName[name]
	return ref, ok
}

// AddGlobal registers a new global of type typ under name, with the
// same dedup check as AddType.
func (b *Builder) AddGlobal(name string, typ irtype.Ref) (arena.Ref, error) {
	if _, exists := b.globsByName[name]; exists {
		return 0, llaceerr.Newf(llaceerr.DuplicateSymbol, "irbuilder: global %q already registered", name)
	}
	nameRef, err := b.Module.AddName(name)
	if err != nil {
		return 0, err
	}
	ref := b.Module.AddGlobal(ir.NewGlobal(nameRef, typ))
	b.globsByName[name] = ref
	return ref, nil
}

// GetGlobal resolves a previously registered global by name.
func (b *Builder) GetGlobal(name string) (arena.Ref, bool) {
	ref, ok := b.globsByName[name]
	return ref, ok
}

// DeclareFunction reserves a function slot under name with the given
// ABI so call sites elsewhere in the module can reference it by Ref
// before its body is built (mirrors forward-declaring a function).
func (b *Builder) DeclareFunction(name string, abi irtype.ABI) (arena.Ref, error) {
	if _, exists := b.funcsByName[name]; exists {
		return 0, llaceerr.Newf(llaceerr.DuplicateSymbol, "irbuilder: function %q already registered", name)
	}
	nameRef, err := b.Module.AddName(name)
	if err != nil {
		return 0, err
	}
	ref := b.Module.AddFunction(ir.NewFunction(nameRef, abi))
	b.funcsByName[name] = ref
	return ref, nil
}

// GetFunction resolves a previously registered function by name.
func (b *Builder) GetFunction(name string) (arena.Ref, bool) {
	ref, ok := b.funcsByName[name]
	return ref, ok
}

// Function returns a FunctionBuilder for editing the function at ref.
func (b *Builder) Function(ref arena.Ref) (*FunctionBuilder, error) {
	fn, err := b.Module.GetFunction(ref)
	if err != nil {
		return nil, err
	}
	return &FunctionBuilder{builder: b, ref: ref, fn: fn, localsByName: make(map[string]arena.Ref)}, nil
}

// FunctionBuilder edits one Function in place, tracking its local
// variables by name (llace_builder_function_t's commented-out
// "variable hash table").
type FunctionBuilder struct {
	builder      *Builder
	ref          arena.Ref
	fn           ir.Function
	localsByName map[string]arena.Ref
}

// AddParam appends a named parameter to the function.
func (fb *FunctionBuilder) AddParam(name string, typ irtype.Ref) (arena.Ref, error) {
	if _, exists := fb.localsByName[name]; exists {
		return 0, llaceerr.Newf(llaceerr.DuplicateSymbol, "irbuilder: parameter %q already declared in this function", name)
	}
	nameRef, err := fb.builder.Module.AddName(name)
	if err != nil {
		return 0, err
	}
	ref := fb.fn.AddParam(ir.NewVariable(nameRef, typ))
	fb.localsByName[name] = ref
	return ref, nil
}

// AddLocal appends a named function-scoped local variable. Its
// returned Ref is offset by the function's parameter count, so a
// VarRef Value addresses a single flat space (params followed by
// locals) regardless of which of AddParam/AddLocal produced it — the
// addressing scheme the interpreter's Frame.Locals assumes.
func (fb *FunctionBuilder) AddLocal(name string, typ irtype.Ref) (arena.Ref, error) {
	if _, exists := fb.localsByName[name]; exists {
		return 0, llaceerr.Newf(llaceerr.DuplicateSymbol, "irbuilder: local %q already declared in this function", name)
	}
	nameRef, err := fb.builder.Module.AddName(name)
	if err != nil {
		return 0, err
	}
	fb.fn.AddLocal(ir.NewVariable(nameRef, typ))
	ref := arena.Ref(len(fb.fn.Params) + len(fb.fn.Locals) - 1)
	fb.localsByName[name] = ref
	return ref, nil
}

// GetLocal resolves a previously declared parameter or local by name.
func (fb *FunctionBuilder) GetLocal(name string) (arena.Ref, bool) {
	ref, ok := fb.localsByName[name]
	return ref, ok
}

// AddBlock appends a block to the function and returns its BlockRef.
func (fb *FunctionBuilder) AddBlock(block ir.Block) ir.BlockRef {
	return fb.fn.AddBlock(block)
}

// SetAttr overwrites the function's attribute bit field.
func (fb *FunctionBuilder) SetAttr(attr ir.FunctionAttributes) {
	fb.fn.Attr = attr
}

// Finish commits any in-progress edits back into the owning Module.
// Must be called once editing is complete; the FunctionBuilder's
// changes are otherwise invisible to the rest of the module.
func (fb *FunctionBuilder) Finish() error {
	return fb.builder.Module.SetFunction(fb.ref, fb.fn)
}
