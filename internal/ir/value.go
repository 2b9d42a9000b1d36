// Package ir implements the arena-backed IR graph itself: values,
// variables, globals, instructions, blocks, functions, and the module
// that owns them all. Every cross-entity reference is a stable integer
// Ref from the arena package, never a pointer, so the graph can grow
// without invalidating references held elsewhere (spec invariants
// I1/I7).
package ir

import (
	"llace/internal/arena"
	"llace/internal/irtype"
)

// ValueKind identifies which payload a Value carries
// (llace_value_kind_t).
type ValueKind int

const (
	ValueVoid ValueKind = iota
	ValueConst
	ValueVariable
	ValueGlobal
	ValueFunction
	ValueInstruction
	ValueBlock
)

var valueKindNames = [...]string{
	ValueVoid: "void", ValueConst: "const", ValueVariable: "variable",
	ValueGlobal: "global", ValueFunction: "function",
	ValueInstruction: "instruction", ValueBlock: "block",
}

func (k ValueKind) String() string {
	if int(k) >= 0 && int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "unknown"
}

// ConstValue is the payload of a ValueConst: a typed byte payload
// (llace_value_t._const: {type, llace_item_t data}). The bytes are
// interpreted according to Type's Kind/Size — raw, not a tagged union,
// matching the original's "pointer to the constant data" design.
type ConstValue struct {
	Type  irtype.Ref
	Bytes []byte
}

// Value is the IR's universal operand type: every instruction operand,
// variable initializer, and global initializer is a Value.
type Value struct {
	Kind ValueKind

	Const       ConstValue
	VarRef      arena.Ref // ValueVariable: index into the owning function's locals
	GlobalRef   arena.Ref // ValueGlobal
	FuncRef     arena.Ref // ValueFunction
	ChildInstr  *ChildInstruction // ValueInstruction: nested RPN expression node
	Block       BlockRef          // ValueBlock
}

// VoidValue is the canonical "no value" Value, used for optional slots
// (e.g. a RET with no operand, an uninitialized global).
func VoidValue() Value { return Value{Kind: ValueVoid} }

// NewConst builds a ValueConst wrapping typ/bytes.
func NewConst(typ irtype.Ref, bytes []byte) Value {
	return Value{Kind: ValueConst, Const: ConstValue{Type: typ, Bytes: append([]byte(nil), bytes...)}}
}

// NewVarRef, NewGlobalRef, NewFuncRef wrap a reference in a Value.
func NewVarRef(ref arena.Ref) Value    { return Value{Kind: ValueVariable, VarRef: ref} }
func NewGlobalRef(ref arena.Ref) Value { return Value{Kind: ValueGlobal, GlobalRef: ref} }
func NewFuncRef(ref arena.Ref) Value   { return Value{Kind: ValueFunction, FuncRef: ref} }

// NewChildInstrValue wraps a nested child instruction expression node.
func NewChildInstrValue(ci *ChildInstruction) Value {
	return Value{Kind: ValueInstruction, ChildInstr: ci}
}

// NewBlockValue wraps a reference to a nested block of instructions.
func NewBlockValue(ref BlockRef) Value {
	return Value{Kind: ValueBlock, Block: ref}
}

// IsConstant reports whether v can be evaluated without executing any
// instruction (llace_ir's is_constant check referenced by iir.h).
func (v Value) IsConstant() bool {
	switch v.Kind {
	case ValueVoid, ValueConst, ValueGlobal, ValueFunction:
		return true
	default:
		return false
	}
}

