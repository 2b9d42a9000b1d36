package ir

import (
	"llace/internal/irtype"
	"llace/internal/nametable"
)

// GlobalAttributes are the bit-field attributes on a module-level
// global (llace_global_attributes_t).
type GlobalAttributes struct {
	Extern bool // declared but not defined
	Public bool // visible outside this module
	Const  bool // not changed after initialization
}

// Global is a module-level storage declaration (llace_global_t).
type Global struct {
	Name  nametable.Ref
	Type  irtype.Ref
	Value Value // optional; VoidValue() if uninitialized
	Attr  GlobalAttributes
}

// NewGlobal builds an uninitialized Global of the given type.
func NewGlobal(name nametable.Ref, typ irtype.Ref) Global {
	return Global{Name: name, Type: typ, Value: VoidValue()}
}
