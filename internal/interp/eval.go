package interp

import (
	"encoding/binary"
	"math"

	"llace/internal/ir"
	"llace/internal/irtype"
	"llace/internal/llaceerr"
)

// decodeConst interprets a ConstValue's raw bytes according to its
// Type's Kind, producing the matching RTVal
// (llace_iir_rtval_from_const).
func (c *Context) decodeConst(cv ir.ConstValue) (RTVal, error) {
	ty, err := c.Module.GetType(cv.Type)
	if err != nil {
		return RTVal{}, llaceerr.Wrap(llaceerr.InvalidType, err, "interp: resolving const type")
	}

	buf := make([]byte, 8)
	copy(buf, cv.Bytes)

	switch ty.Kind {
	case irtype.Void:
		return VoidRT(), nil
	case irtype.Int:
		v := int64(binary.LittleEndian.Uint64(buf))
		return IntRT(cv.Type, signExtend(v, ty.IntBits)), nil
	case irtype.Uint:
		v := binary.LittleEndian.Uint64(buf)
		mask := uint64(1)<<ty.IntBits - 1
		if ty.IntBits >= 64 {
			mask = ^uint64(0)
		}
		return UntRT(cv.Type, v&mask), nil
	case irtype.Float:
		switch ty.Size {
		case 4:
			bits := binary.LittleEndian.Uint32(buf[:4])
			return FloatRT(cv.Type, float64(math.Float32frombits(bits))), nil
		default:
			bits := binary.LittleEndian.Uint64(buf)
			return FloatRT(cv.Type, math.Float64frombits(bits)), nil
		}
	case irtype.Ptr, irtype.VPtr:
		addr := binary.LittleEndian.Uint64(buf)
		return PtrRT(cv.Type, addr, 0), nil
	default:
		return UndefRT(cv.Type), nil
	}
}

func signExtend(v int64, bits uint64) int64 {
	if bits == 0 || bits >= 64 {
		return v
	}
	shift := 64 - bits
	return (v << shift) >> shift
}

// resolveValue evaluates an ir.Value down to a runtime value in the
// context of the currently executing frame.
func (c *Context) resolveValue(f *Frame, v ir.Value) (RTVal, error) {
	switch v.Kind {
	case ir.ValueVoid:
		return VoidRT(), nil
	case ir.ValueConst:
		return c.decodeConst(v.Const)
	case ir.ValueVariable:
		return f.Local(v.VarRef)
	case ir.ValueGlobal:
		if int(v.GlobalRef) < 0 || int(v.GlobalRef) >= len(c.globals) {
			return RTVal{}, llaceerr.Newf(llaceerr.InvalidModule, "interp: global ref %d out of range", v.GlobalRef)
		}
		return c.globals[v.GlobalRef], nil
	case ir.ValueFunction:
		return RTVal{Kind: RTUnt, Unt: uint64(v.FuncRef)}, nil
	case ir.ValueInstruction:
		return c.evalChild(f, v.ChildInstr)
	case ir.ValueBlock:
		return RTVal{Kind: RTUnt, Unt: uint64(v.Block)}, nil
	default:
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: unknown value kind %v", v.Kind)
	}
}

// evalChild recursively evaluates a side-effect-free child instruction
// expression tree (llace_iir_eval_const's counterpart for the
// stack-walking interpreter proper, not just constant folding).
func (c *Context) evalChild(f *Frame, ci *ir.ChildInstruction) (RTVal, error) {
	operands := make([]RTVal, len(ci.Params))
	for i, p := range ci.Params {
		v, err := c.resolveValue(f, p)
		if err != nil {
			return RTVal{}, err
		}
		operands[i] = v
	}

	var result RTVal
	var err error

	switch ci.Opcode {
	case ir.COpAdd, ir.COpSub, ir.COpMul, ir.COpDiv, ir.COpMod,
		ir.COpAnd, ir.COpOr, ir.COpXor, ir.COpShl, ir.COpShr:
		result, err = c.binaryArith(ci.Opcode, operands)
	case ir.COpNot:
		result, err = c.unaryNot(operands)
	case ir.COpEq, ir.COpNe, ir.COpLt, ir.COpLe, ir.COpGt, ir.COpGe:
		result, err = compare(ci.Opcode, operands)
	case ir.COpCall:
		result, err = c.evalChildCall(f, operands)
	default:
		err = llaceerr.Newf(llaceerr.Unimplemented, "interp: unhandled child opcode %v", ci.Opcode)
	}
	if err != nil {
		return RTVal{}, err
	}

	return result, nil
}

func (c *Context) evalChildCall(f *Frame, operands []RTVal) (RTVal, error) {
	if len(operands) == 0 {
		return RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: CALL child instruction requires a function operand")
	}
	funcRef := arenaRefFromRT(operands[0])
	args := operands[1:]
	return c.callFunction(funcRef, args)
}

func arenaRefFromRT(v RTVal) uint32 {
	if v.Kind == RTUnt {
		return uint32(v.Unt)
	}
	return uint32(v.Int)
}

// binaryArith evaluates a binary arithmetic opcode. Per the runtime
// kind contract, both operands must share the same kind (Int+Int,
// Uint+Uint, or Float+Float) — a mixed Int/Float pair is a
// TypeMismatch, never an implicit promotion. Integer results are
// computed in i64/u64 and then truncated/sign-extended back to the
// result type-ref's declared bit width before being stored.
func (c *Context) binaryArith(op ir.ChildOpcode, operands []RTVal) (RTVal, error) {
	if len(operands) != 2 {
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: %v requires exactly 2 operands, got %d", op, len(operands))
	}
	a, b := operands[0], operands[1]

	if a.Kind != b.Kind {
		return RTVal{}, llaceerr.Newf(llaceerr.TypeMismatch, "interp: %v requires operands of the same kind, got %v and %v", op, a.Kind, b.Kind)
	}

	if a.Kind == RTFloat {
		af, bf := a.Float, b.Float
		switch op {
		case ir.COpAdd:
			return FloatRT(a.Type, af+bf), nil
		case ir.COpSub:
			return FloatRT(a.Type, af-bf), nil
		case ir.COpMul:
			return FloatRT(a.Type, af*bf), nil
		case ir.COpDiv:
			if bf == 0 {
				return RTVal{}, llaceerr.New(llaceerr.DivideByZero, "interp: float division by zero")
			}
			return FloatRT(a.Type, af/bf), nil
		default:
			return RTVal{}, llaceerr.Newf(llaceerr.TypeMismatch, "interp: %v is not defined over float operands", op)
		}
	}

	ai, aok := a.asInt64()
	bi, bok := b.asInt64()
	if !aok || !bok {
		return RTVal{}, llaceerr.Newf(llaceerr.TypeMismatch, "interp: %v requires numeric operands", op)
	}

	var result int64
	switch op {
	case ir.COpAdd:
		result = ai + bi
	case ir.COpSub:
		result = ai - bi
	case ir.COpMul:
		result = ai * bi
	case ir.COpDiv:
		if bi == 0 {
			return RTVal{}, llaceerr.New(llaceerr.DivideByZero, "interp: integer division by zero")
		}
		result = ai / bi
	case ir.COpMod:
		if bi == 0 {
			return RTVal{}, llaceerr.New(llaceerr.DivideByZero, "interp: integer modulo by zero")
		}
		result = ai % bi
	case ir.COpAnd:
		result = ai & bi
	case ir.COpOr:
		result = ai | bi
	case ir.COpXor:
		result = ai ^ bi
	case ir.COpShl:
		result = ai << uint64(bi)
	case ir.COpShr:
		result = ai >> uint64(bi)
	default:
		return RTVal{}, llaceerr.Newf(llaceerr.Unimplemented, "interp: unhandled arithmetic opcode %v", op)
	}

	return c.truncateInt(a.Kind, a.Type, result)
}

// truncateInt re-narrows an i64 arithmetic result to the result
// type-ref's declared bit width, sign-extending for Int and masking
// for Uint, matching decodeConst's load-time behavior.
func (c *Context) truncateInt(kind RTValKind, typ irtype.Ref, v int64) (RTVal, error) {
	ty, err := c.Module.GetType(typ)
	if err != nil {
		return RTVal{}, llaceerr.Wrap(llaceerr.InvalidType, err, "interp: resolving arithmetic result type")
	}
	if kind == RTUnt {
		uv := uint64(v)
		mask := uint64(1)<<ty.IntBits - 1
		if ty.IntBits >= 64 {
			mask = ^uint64(0)
		}
		return UntRT(typ, uv&mask), nil
	}
	return IntRT(typ, signExtend(v, ty.IntBits)), nil
}

// unaryNot computes NOT's bitwise complement, not a logical negation:
// the operand's integer representation is flipped bit-for-bit and then
// re-narrowed to its declared width, matching binaryArith's own
// truncate-on-store behavior.
func (c *Context) unaryNot(operands []RTVal) (RTVal, error) {
	if len(operands) != 1 {
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: NOT requires exactly 1 operand, got %d", len(operands))
	}
	v := operands[0]
	if v.Kind != RTInt && v.Kind != RTUnt {
		return RTVal{}, llaceerr.Newf(llaceerr.TypeMismatch, "interp: NOT requires an integer operand, got %v", v.Kind)
	}
	iv, _ := v.asInt64()
	return c.truncateInt(v.Kind, v.Type, ^iv)
}

func compare(op ir.ChildOpcode, operands []RTVal) (RTVal, error) {
	if len(operands) != 2 {
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: %v requires exactly 2 operands, got %d", op, len(operands))
	}
	a, b := operands[0], operands[1]

	var cmp int
	if a.Kind == RTFloat || b.Kind == RTFloat {
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		ai, aok := a.asInt64()
		bi, bok := b.asInt64()
		if !aok || !bok {
			return RTVal{}, llaceerr.Newf(llaceerr.TypeMismatch, "interp: %v requires numeric operands", op)
		}
		switch {
		case ai < bi:
			cmp = -1
		case ai > bi:
			cmp = 1
		default:
			cmp = 0
		}
	}

	var result bool
	switch op {
	case ir.COpEq:
		result = cmp == 0
	case ir.COpNe:
		result = cmp != 0
	case ir.COpLt:
		result = cmp < 0
	case ir.COpLe:
		result = cmp <= 0
	case ir.COpGt:
		result = cmp > 0
	case ir.COpGe:
		result = cmp >= 0
	}
	if result {
		return IntRT(a.Type, 1), nil
	}
	return IntRT(a.Type, 0), nil
}

func toFloat(v RTVal) float64 {
	switch v.Kind {
	case RTFloat:
		return v.Float
	case RTInt:
		return float64(v.Int)
	case RTUnt:
		return float64(v.Unt)
	default:
		return 0
	}
}
