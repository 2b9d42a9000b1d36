package ir

import "llace/internal/nametable"
import "llace/internal/irtype"

// VariableAttributes are the bit-field attributes on a local variable
// (llace_variable_attributes_t).
type VariableAttributes struct {
	Const    bool // not modified after initialization
	Volatile bool // not optimized
	Cexpr    bool // evaluated at compile time
}

// Variable is a local variable/parameter/return slot declaration
// (llace_variable_t).
type Variable struct {
	Name  nametable.Ref
	Type  irtype.Ref
	Value Value // optional; VoidValue() if uninitialized
	Attr  VariableAttributes
}

// NewVariable builds an uninitialized Variable of the given type.
func NewVariable(name nametable.Ref, typ irtype.Ref) Variable {
	return Variable{Name: name, Type: typ, Value: VoidValue()}
}
