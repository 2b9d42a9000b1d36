package interp

import (
	"fmt"

	"llace/internal/irtype"
)

// RTValKind identifies which payload an RTVal carries
// (llace_iir_rtval_kind_t).
type RTValKind int

const (
	RTVoid RTValKind = iota
	RTInt
	RTUnt
	RTFloat
	RTPtr
	RTUndef
)

var rtValKindNames = [...]string{
	RTVoid: "void", RTInt: "int", RTUnt: "unt", RTFloat: "float",
	RTPtr: "ptr", RTUndef: "undef",
}

func (k RTValKind) String() string {
	if int(k) >= 0 && int(k) < len(rtValKindNames) {
		return rtValKindNames[k]
	}
	return "unknown"
}

// PtrVal is the payload of an RTPtr runtime value: a simulated heap
// address plus an offset for pointer arithmetic (llace_iir_rtval_t's
// anonymous {ptr, offset} struct, realized here as an index into
// Context.heap rather than a real C pointer).
type PtrVal struct {
	Addr   uint64
	Offset uint64
}

// RTVal is the interpreter's tagged runtime value (llace_iir_rtval_t).
type RTVal struct {
	Kind RTValKind
	Type irtype.Ref

	Int   int64
	Unt   uint64
	Float float64
	Ptr   PtrVal
}

func VoidRT() RTVal { return RTVal{Kind: RTVoid} }

func IntRT(typ irtype.Ref, v int64) RTVal { return RTVal{Kind: RTInt, Type: typ, Int: v} }

func UntRT(typ irtype.Ref, v uint64) RTVal { return RTVal{Kind: RTUnt, Type: typ, Unt: v} }

func FloatRT(typ irtype.Ref, v float64) RTVal { return RTVal{Kind: RTFloat, Type: typ, Float: v} }

func PtrRT(typ irtype.Ref, addr, offset uint64) RTVal {
	return RTVal{Kind: RTPtr, Type: typ, Ptr: PtrVal{Addr: addr, Offset: offset}}
}

func UndefRT(typ irtype.Ref) RTVal { return RTVal{Kind: RTUndef, Type: typ} }

// String renders val for debugging/tracing (llace_iir_rtval_to_string).
func (val RTVal) String() string {
	switch val.Kind {
	case RTVoid:
		return "<void>"
	case RTInt:
		return fmt.Sprintf("%d", val.Int)
	case RTUnt:
		return fmt.Sprintf("%d", val.Unt)
	case RTFloat:
		return fmt.Sprintf("%g", val.Float)
	case RTPtr:
		return fmt.Sprintf("*(%d+%d)", val.Ptr.Addr, val.Ptr.Offset)
	case RTUndef:
		return "<undef>"
	default:
		return "<unknown>"
	}
}

// asInt64 coerces a numeric RTVal to int64 for integer arithmetic,
// truthiness checks, and comparisons.
func (val RTVal) asInt64() (int64, bool) {
	switch val.Kind {
	case RTInt:
		return val.Int, true
	case RTUnt:
		return int64(val.Unt), true
	case RTFloat:
		return int64(val.Float), true
	default:
		return 0, false
	}
}

// truthy reports whether val should be treated as "true" by BR.
func (val RTVal) truthy() bool {
	switch val.Kind {
	case RTInt:
		return val.Int != 0
	case RTUnt:
		return val.Unt != 0
	case RTFloat:
		return val.Float != 0
	case RTPtr:
		return val.Ptr.Addr != 0
	default:
		return false
	}
}
