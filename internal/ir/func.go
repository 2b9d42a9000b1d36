package ir

import (
	"llace/internal/arena"
	"llace/internal/irtype"
	"llace/internal/nametable"
)

// FunctionAttributes are the bit-field attributes on a Function. The
// original's func.h declares only Extern/Public and leaves the rest
// commented out as future work; this implements the full set the
// distilled spec names: Pure, Noreturn, Inline, Noinline, Alwaysinline,
// Nooptimize, Weak, alongside Extern/Public/Vararg.
type FunctionAttributes struct {
	Extern       bool // declared but not defined
	Public       bool // visible outside this module
	Vararg       bool // accepts a variable number of arguments
	Pure         bool // no side effects, may inspect global state
	Noreturn     bool // never returns to its caller
	Inline       bool // may be inlined by the compiler
	Noinline     bool // must not be inlined
	Alwaysinline bool // must always be inlined
	Nooptimize   bool // must not be optimized
	Weak         bool // may be overridden by another definition
}

// Function is a module-level function definition or declaration
// (llace_function_t).
type Function struct {
	Name    nametable.Ref
	ABI     irtype.ABI
	Rets    []Variable
	Params  []Variable
	Locals  []Variable
	Blocks  []Block
	Attr    FunctionAttributes
}

// NewFunction builds an empty Function declaration with the given
// calling convention.
func NewFunction(name nametable.Ref, abi irtype.ABI) Function {
	return Function{Name: name, ABI: abi}
}

// AddBlock appends a basic block and returns its BlockRef.
func (f *Function) AddBlock(b Block) BlockRef {
	f.Blocks = append(f.Blocks, b)
	return arena.Ref(len(f.Blocks) - 1)
}

// AddParam appends a parameter and returns its index within Params.
func (f *Function) AddParam(v Variable) arena.Ref {
	f.Params = append(f.Params, v)
	return arena.Ref(len(f.Params) - 1)
}

// AddReturn appends a return slot and returns its index within Rets.
func (f *Function) AddReturn(v Variable) arena.Ref {
	f.Rets = append(f.Rets, v)
	return arena.Ref(len(f.Rets) - 1)
}

// AddLocal appends a function-scoped local (as opposed to a
// block-scoped one declared via Block.AddLocal) and returns its index.
func (f *Function) AddLocal(v Variable) arena.Ref {
	f.Locals = append(f.Locals, v)
	return arena.Ref(len(f.Locals) - 1)
}

// IsDefined reports whether the function has a body (at least one
// block), as opposed to a bare extern declaration.
func (f *Function) IsDefined() bool {
	return !f.Attr.Extern && len(f.Blocks) > 0
}
