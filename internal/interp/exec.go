package interp

import (
	"encoding/binary"
	"math"

	"llace/internal/arena"
	"llace/internal/ir"
	"llace/internal/irtype"
	"llace/internal/llaceerr"
)

// ctrl is the result of executing one block-level instruction: either
// execution falls through to the next instruction, jumps to another
// block, or returns from the function entirely.
type ctrl int

const (
	ctrlNext ctrl = iota
	ctrlJump
	ctrlReturn
)

// ExecuteFunction runs funcRef to completion with args bound to its
// parameters, returning its RET value (llace_iir_execute_function).
// It is the normal, non-debugger entry point: the whole call runs in
// one pass with no intervening Suspend.
func (c *Context) ExecuteFunction(funcRef arena.Ref, args []RTVal) (RTVal, error) {
	if c.state == StateRunning {
		return RTVal{}, c.fail(llaceerr.New(llaceerr.BadArgument, "interp: ExecuteFunction called while already running"))
	}
	c.state = StateRunning
	result, err := c.callFunction(funcRef, args)
	if err != nil {
		c.fail(err)
		return RTVal{}, err
	}
	c.state = StateCompleted
	return result, nil
}

// Run resumes execution of the currently suspended call stack until it
// either returns or hits another breakpoint (llace_iir_run). When a
// breakpoint suspends execution, Run returns with the context left in
// StateSuspended and a nil error; call Resume then Run again to
// continue.
func (c *Context) Run() (RTVal, error) {
	if c.state != StateSuspended && c.state != StateReady && c.state != StateRunning {
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: cannot run from state %s", c.state)
	}
	c.state = StateRunning
	f := c.CurrentFrame()
	if f == nil {
		return RTVal{}, c.fail(llaceerr.New(llaceerr.BadArgument, "interp: Run with no active frame"))
	}
	result, suspended, err := c.runFrame(f)
	if err != nil {
		c.fail(err)
		return RTVal{}, err
	}
	if suspended {
		return RTVal{}, nil
	}
	c.popFrame()
	c.state = StateCompleted
	return result, nil
}

// Step advances the interpreter by one unit of the given granularity.
// Only StepInstruction is distinguished from the rest; coarser modes
// (StepLine/StepFunction/StepOver/StepOut) fall back to single
// instruction stepping, since this IR carries no source-line mapping
// and every instruction already executes atomically.
func (c *Context) Step(mode StepMode) error {
	f := c.CurrentFrame()
	if f == nil {
		return llaceerr.New(llaceerr.BadArgument, "interp: Step with no active frame")
	}
	if c.state != StateRunning && c.state != StateSuspended {
		return llaceerr.Newf(llaceerr.BadArgument, "interp: cannot step from state %s", c.state)
	}
	c.state = StateRunning

	fn, err := c.Module.GetFunction(f.Function)
	if err != nil {
		return c.fail(err)
	}
	done, _, err := c.stepOnce(f, &fn)
	if err != nil {
		return c.fail(err)
	}
	if done {
		c.popFrame()
		if len(c.callStack) == 0 {
			c.state = StateCompleted
		}
		return nil
	}
	c.state = StateSuspended
	return nil
}

// callFunction pushes a new frame for funcRef, binds args to its
// parameters, runs it to completion, and pops the frame
// (llace_iir_call, the interpreter's own call-instruction handler as
// well as the entry point used by ExecuteFunction/evalChildCall).
func (c *Context) callFunction(funcRef arena.Ref, args []RTVal) (RTVal, error) {
	fn, err := c.Module.GetFunction(funcRef)
	if err != nil {
		return RTVal{}, err
	}
	if fn.Attr.Extern || len(fn.Blocks) == 0 {
		return RTVal{}, llaceerr.Newf(llaceerr.InvalidFunction, "interp: function %d has no definition to execute", funcRef)
	}

	localCount := len(fn.Params) + len(fn.Locals)
	for _, b := range fn.Blocks {
		localCount += len(b.Locals)
	}

	f := NewFrame(funcRef, localCount, DefaultOperandStackDepth)
	for i := range fn.Params {
		if i < len(args) {
			f.Locals[i] = args[i]
		}
	}

	if err := c.pushFrame(f); err != nil {
		return RTVal{}, err
	}

	for {
		done, result, err := c.stepOnce(f, &fn)
		if err != nil {
			c.popFrame()
			return RTVal{}, err
		}
		if done {
			c.popFrame()
			return result, nil
		}
	}
}

// runFrame drives f's block/instruction cursor to completion, or until
// a breakpoint suspends it, whichever comes first. suspended is true
// only in the latter case, in which case result is meaningless and the
// frame is left on the call stack for a later Resume/Run.
func (c *Context) runFrame(f *Frame) (result RTVal, suspended bool, err error) {
	fn, err := c.Module.GetFunction(f.Function)
	if err != nil {
		return RTVal{}, false, err
	}

	first := true
	for {
		if !first && c.debugEnabled && c.hasBreakpoint(f.BlockIndex, f.InstrIndex) {
			if serr := c.Suspend(); serr == nil {
				return RTVal{}, true, nil
			}
		}
		first = false

		done, result, err := c.stepOnce(f, &fn)
		if err != nil {
			return RTVal{}, false, err
		}
		if done {
			return result, false, nil
		}
	}
}

// stepOnce executes exactly one block-level instruction at f's current
// cursor, advancing the cursor in place. done is true once the
// function has returned, in which case result is its RET value.
func (c *Context) stepOnce(f *Frame, fn *ir.Function) (done bool, result RTVal, err error) {
	if f.BlockIndex < 0 || f.BlockIndex >= len(fn.Blocks) {
		return true, VoidRT(), nil
	}
	block := fn.Blocks[f.BlockIndex]
	if f.InstrIndex >= len(block.Instrs) {
		f.BlockIndex++
		f.InstrIndex = 0
		if f.BlockIndex >= len(fn.Blocks) {
			return true, VoidRT(), nil
		}
		return false, RTVal{}, nil
	}

	instr := block.Instrs[f.InstrIndex]
	if c.traceEnabled {
		c.logger.Tracef("iir [%s] block=%d instr=%d op=%s", c.RunID, f.BlockIndex, f.InstrIndex, instr.Opcode)
	}

	signal, target, ret, err := c.execInstruction(f, instr)
	c.instructionCount++
	if err != nil {
		return false, RTVal{}, err
	}

	switch signal {
	case ctrlReturn:
		return true, ret, nil
	case ctrlJump:
		f.BlockIndex = target
		f.InstrIndex = 0
	default:
		f.InstrIndex++
	}
	return false, RTVal{}, nil
}

// execInstruction executes one block-level instruction against f,
// returning a control signal plus (for ctrlJump) the target block
// index or (for ctrlReturn) the function's result.
func (c *Context) execInstruction(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	switch instr.Opcode {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr:
		return c.execArith(f, instr)

	case ir.OpAlloc:
		return c.execAlloc(f, instr)
	case ir.OpDealloc:
		return c.execDealloc(f, instr)
	case ir.OpLoad:
		return c.execLoad(f, instr)
	case ir.OpStore:
		return c.execStore(f, instr)

	case ir.OpJmp:
		return c.execJmp(f, instr)
	case ir.OpBr:
		return c.execBr(f, instr)
	case ir.OpCall:
		return c.execCall(f, instr)
	case ir.OpRet:
		return c.execRet(f, instr)

	case ir.OpNull:
		// NULL is a sentinel, never a producible opcode: executing one
		// is a fatal error, not a no-op. Fatalf logs file/line/function
		// and aborts the process.
		c.logger.Fatalf("interp: executed NULL opcode sentinel [%s] block=%d instr=%d func=%d", c.RunID, f.BlockIndex, f.InstrIndex, f.Function)
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: NULL opcode is fatal")

	default:
		return ctrlNext, 0, RTVal{}, llaceerr.Newf(llaceerr.Unimplemented, "interp: unhandled opcode %v", instr.Opcode)
	}
}

func (c *Context) execArith(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) != 2 {
		return ctrlNext, 0, RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: %v requires exactly 2 operands, got %d", instr.Opcode, len(instr.Params))
	}
	a, err := c.resolveValue(f, instr.Params[0])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	b, err := c.resolveValue(f, instr.Params[1])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	op := blockToChildOpcode(instr.Opcode)
	result, err := c.binaryArith(op, []RTVal{a, b})
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if err := f.Push(result); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

func blockToChildOpcode(op ir.Opcode) ir.ChildOpcode {
	switch op {
	case ir.OpAdd:
		return ir.COpAdd
	case ir.OpSub:
		return ir.COpSub
	case ir.OpMul:
		return ir.COpMul
	case ir.OpDiv:
		return ir.COpDiv
	case ir.OpMod:
		return ir.COpMod
	case ir.OpAnd:
		return ir.COpAnd
	case ir.OpOr:
		return ir.COpOr
	case ir.OpXor:
		return ir.COpXor
	case ir.OpShl:
		return ir.COpShl
	default:
		return ir.COpShr
	}
}

// execAlloc marks a local's live range as started. Per the operand
// contract, ALLOC takes a single var-ref (not a size) and is purely
// informational — the interpreter does not enforce liveness, it just
// pushes undef onto the operand stack.
func (c *Context) execAlloc(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) != 1 || instr.Params[0].Kind != ir.ValueVariable {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: ALLOC requires a single var-ref operand")
	}
	cur, err := f.Local(instr.Params[0].VarRef)
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	c.memoryAllocations++

	if err := f.Push(UndefRT(cur.Type)); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

// execDealloc marks a local's live range as ended. Per the operand
// contract, DEALLOC takes the same var-ref ALLOC did, not a pointer;
// like ALLOC this is informational only and has no observable effect
// beyond validating the operand refers to a real local.
func (c *Context) execDealloc(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) != 1 || instr.Params[0].Kind != ir.ValueVariable {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: DEALLOC requires a single var-ref operand")
	}
	if _, err := f.Local(instr.Params[0].VarRef); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

// execLoad reads a value back out of the simulated heap. Params[0] is
// the address; an optional Params[1] constant carries the pointee
// type so the raw bytes are decoded correctly (defaulting to a 64-bit
// signed integer when omitted).
func (c *Context) execLoad(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) < 1 {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: LOAD requires an address operand")
	}
	addrVal, err := c.resolveValue(f, instr.Params[0])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if addrVal.Kind != RTPtr {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.TypeMismatch, "interp: LOAD address operand is not a pointer")
	}

	typeRef := irtype.Ref(0)
	haveType := false
	if len(instr.Params) >= 2 && instr.Params[1].Kind == ir.ValueConst {
		typeRef = instr.Params[1].Const.Type
		haveType = true
	}

	v, err := c.loadFromHeap(addrVal.Ptr.Addr, typeRef, haveType)
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if err := f.Push(v); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

// execStore writes a value into the simulated heap. Params[0] is the
// address, Params[1] is the value to store.
func (c *Context) execStore(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) < 2 {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: STORE requires an address and a value operand")
	}
	addrVal, err := c.resolveValue(f, instr.Params[0])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if addrVal.Kind != RTPtr {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.TypeMismatch, "interp: STORE address operand is not a pointer")
	}
	v, err := c.resolveValue(f, instr.Params[1])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if err := c.storeToHeap(addrVal.Ptr.Addr, v); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

const heapSlotWidth = 8

func (c *Context) ensureHeapCapacity(addr uint64) {
	needed := int(addr) + heapSlotWidth
	if needed <= len(c.heap) {
		return
	}
	grown := make([]byte, needed)
	copy(grown, c.heap)
	c.heap = grown
}

func (c *Context) storeToHeap(addr uint64, v RTVal) error {
	c.ensureHeapCapacity(addr)
	buf := make([]byte, heapSlotWidth)
	switch v.Kind {
	case RTInt:
		binary.LittleEndian.PutUint64(buf, uint64(v.Int))
	case RTUnt:
		binary.LittleEndian.PutUint64(buf, v.Unt)
	case RTFloat:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.Float))
	case RTPtr:
		binary.LittleEndian.PutUint64(buf, v.Ptr.Addr)
	default:
		// Void/Undef stores as zero bytes.
	}
	copy(c.heap[addr:addr+heapSlotWidth], buf)
	return nil
}

func (c *Context) loadFromHeap(addr uint64, typeRef irtype.Ref, haveType bool) (RTVal, error) {
	c.ensureHeapCapacity(addr)
	raw := c.heap[addr : addr+heapSlotWidth]

	if !haveType {
		return IntRT(0, int64(binary.LittleEndian.Uint64(raw))), nil
	}
	return c.decodeConst(ir.ConstValue{Type: typeRef, Bytes: raw})
}

func (c *Context) execJmp(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) < 1 || instr.Params[0].Kind != ir.ValueBlock {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: JMP requires a block target operand")
	}
	return ctrlJump, int(instr.Params[0].Block), RTVal{}, nil
}

// execBr evaluates its condition (a nested child instruction) and
// jumps to the true or false target block. Targets are optional; when
// omitted, the branch falls through to the next block in sequence.
func (c *Context) execBr(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) < 1 {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: BR requires a condition operand")
	}
	cond, err := c.resolveValue(f, instr.Params[0])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}

	fallthroughTarget := f.BlockIndex + 1
	trueTarget, falseTarget := fallthroughTarget, fallthroughTarget
	if len(instr.Params) >= 2 && instr.Params[1].Kind == ir.ValueBlock {
		trueTarget = int(instr.Params[1].Block)
	}
	if len(instr.Params) >= 3 && instr.Params[2].Kind == ir.ValueBlock {
		falseTarget = int(instr.Params[2].Block)
	}

	if cond.truthy() {
		return ctrlJump, trueTarget, RTVal{}, nil
	}
	return ctrlJump, falseTarget, RTVal{}, nil
}

func (c *Context) execCall(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) < 1 {
		return ctrlNext, 0, RTVal{}, llaceerr.New(llaceerr.BadArgument, "interp: CALL requires a function operand")
	}
	fnVal, err := c.resolveValue(f, instr.Params[0])
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	args := make([]RTVal, 0, len(instr.Params)-1)
	for _, p := range instr.Params[1:] {
		v, err := c.resolveValue(f, p)
		if err != nil {
			return ctrlNext, 0, RTVal{}, err
		}
		args = append(args, v)
	}

	result, err := c.callFunction(arenaRefFromRT(fnVal), args)
	if err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	if err := f.Push(result); err != nil {
		return ctrlNext, 0, RTVal{}, err
	}
	return ctrlNext, 0, RTVal{}, nil
}

// execRet resolves its operand if present, else pops the operand stack
// if non-empty, else returns Void.
func (c *Context) execRet(f *Frame, instr ir.Instruction) (ctrl, int, RTVal, error) {
	if len(instr.Params) >= 1 {
		v, err := c.resolveValue(f, instr.Params[0])
		if err != nil {
			return ctrlNext, 0, RTVal{}, err
		}
		return ctrlReturn, 0, v, nil
	}
	if len(f.Stack) > 0 {
		v, err := f.Pop()
		if err != nil {
			return ctrlNext, 0, RTVal{}, err
		}
		return ctrlReturn, 0, v, nil
	}
	return ctrlReturn, 0, VoidRT(), nil
}
