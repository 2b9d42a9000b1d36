package interp

import (
	"bytes"
	"math"
	"os"
	"os/exec"
	"testing"

	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/irbuilder"
	"llace/internal/irtype"
)

func intBytes(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func newTestContext(t *testing.T) (*irbuilder.Builder, irtype.Ref) {
	t.Helper()
	b, err := irbuilder.NewBuilder("test.mod", config.HostTarget())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	intTy, err := irtype.NewInt(32, irtype.Target{PointerSize: 8})
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	intType, err := b.AddType("C@int", intTy)
	if err != nil {
		t.Fatalf("AddType: %v", err)
	}
	return b, intType
}

func newTestFloatContext(t *testing.T) (*irbuilder.Builder, irtype.Ref, irtype.Ref) {
	t.Helper()
	b, intType := newTestContext(t)
	floatType, err := b.AddType("C@float", irtype.NewFloat(23, 8, irtype.Target{PointerSize: 8}))
	if err != nil {
		t.Fatalf("AddType: %v", err)
	}
	return b, intType, floatType
}

func floatBytes(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

// TestExecuteFunctionReturnsChildExpression builds add(a, b) = a + b as
// a single RET wrapping a nested ADD child instruction, and checks the
// interpreter evaluates the RPN expression tree correctly.
func TestExecuteFunctionReturnsChildExpression(t *testing.T) {
	b, intType := newTestContext(t)

	fref, err := b.DeclareFunction("add", irtype.ABICdecl)
	if err != nil {
		t.Fatalf("DeclareFunction: %v", err)
	}
	fb, err := b.Function(fref)
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	if _, err := fb.AddParam("a", intType); err != nil {
		t.Fatalf("AddParam a: %v", err)
	}
	if _, err := fb.AddParam("b", intType); err != nil {
		t.Fatalf("AddParam b: %v", err)
	}
	aRef, _ := fb.GetLocal("a")
	bRef, _ := fb.GetLocal("b")

	block := ir.NewBlock()
	sum := ir.NewChildInstruction(ir.COpAdd, ir.NewVarRef(aRef), ir.NewVarRef(bRef))
	block.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(sum)))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	result, err := ctx.ExecuteFunction(fref, []RTVal{IntRT(intType, 7), IntRT(intType, 35)})
	if err != nil {
		t.Fatalf("ExecuteFunction: unexpected error: %v", err)
	}
	if result.Kind != RTInt || result.Int != 42 {
		t.Errorf("ExecuteFunction() = %+v, want int 42", result)
	}
	if ctx.State() != StateCompleted {
		t.Errorf("state = %v, want StateCompleted", ctx.State())
	}
	stats := ctx.GetStats()
	if stats.InstructionCount == 0 {
		t.Errorf("expected at least one instruction counted")
	}
}

// TestExecuteFunctionBlockLevelArithmetic exercises the stack-based
// block-level ADD opcode (as opposed to a nested child instruction
// expression), followed by a RET with no operand that pops the result.
func TestExecuteFunctionBlockLevelArithmetic(t *testing.T) {
	b, intType := newTestContext(t)

	fref, _ := b.DeclareFunction("addStack", irtype.ABICdecl)
	fb, _ := b.Function(fref)
	fb.AddParam("a", intType)
	fb.AddParam("b", intType)
	aRef, _ := fb.GetLocal("a")
	bRef, _ := fb.GetLocal("b")

	block := ir.NewBlock()
	block.AddInstr(ir.NewInstruction(ir.OpAdd, ir.NewVarRef(aRef), ir.NewVarRef(bRef)))
	block.AddInstr(ir.NewInstruction(ir.OpRet))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	result, err := ctx.ExecuteFunction(fref, []RTVal{IntRT(intType, 10), IntRT(intType, 5)})
	if err != nil {
		t.Fatalf("ExecuteFunction: unexpected error: %v", err)
	}
	if result.Kind != RTInt || result.Int != 15 {
		t.Errorf("ExecuteFunction() = %+v, want int 15", result)
	}
}

// TestExecuteFunctionBranch builds a three-block function choosing
// between two RET values based on a > 0 condition, exercising BR and
// JMP control flow across blocks.
func TestExecuteFunctionBranch(t *testing.T) {
	b, intType := newTestContext(t)

	fref, _ := b.DeclareFunction("sign", irtype.ABICdecl)
	fb, _ := b.Function(fref)
	fb.AddParam("a", intType)
	aRef, _ := fb.GetLocal("a")

	entry := ir.NewBlock()
	cond := ir.NewChildInstruction(ir.COpGt, ir.NewVarRef(aRef), ir.NewConst(intType, intBytes(0)))
	entry.AddInstr(ir.NewInstruction(ir.OpBr, ir.NewChildInstrValue(cond),
		ir.NewBlockValue(1), ir.NewBlockValue(2)))

	positive := ir.NewBlock()
	positive.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewConst(intType, intBytes(1))))

	nonPositive := ir.NewBlock()
	nonPositive.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewConst(intType, intBytes(-1))))

	fb.AddBlock(entry)
	fb.AddBlock(positive)
	fb.AddBlock(nonPositive)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)

	result, err := ctx.ExecuteFunction(fref, []RTVal{IntRT(intType, 9)})
	if err != nil {
		t.Fatalf("ExecuteFunction(9): unexpected error: %v", err)
	}
	if result.Int != 1 {
		t.Errorf("ExecuteFunction(9) = %d, want 1", result.Int)
	}

	ctx.Reset()
	result, err = ctx.ExecuteFunction(fref, []RTVal{IntRT(intType, -3)})
	if err != nil {
		t.Fatalf("ExecuteFunction(-3): unexpected error: %v", err)
	}
	if result.Int != -1 {
		t.Errorf("ExecuteFunction(-3) = %d, want -1", result.Int)
	}
}

// TestExecuteFunctionCall exercises CALL: "caller" invokes "double" on
// a constant and returns its result.
func TestExecuteFunctionCall(t *testing.T) {
	b, intType := newTestContext(t)

	doubleRef, _ := b.DeclareFunction("double", irtype.ABICdecl)
	doubleFB, _ := b.Function(doubleRef)
	doubleFB.AddParam("x", intType)
	xRef, _ := doubleFB.GetLocal("x")
	doubleBlock := ir.NewBlock()
	doubled := ir.NewChildInstruction(ir.COpMul, ir.NewVarRef(xRef), ir.NewConst(intType, intBytes(2)))
	doubleBlock.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(doubled)))
	doubleFB.AddBlock(doubleBlock)
	if err := doubleFB.Finish(); err != nil {
		t.Fatalf("Finish double: %v", err)
	}

	callerRef, _ := b.DeclareFunction("caller", irtype.ABICdecl)
	callerFB, _ := b.Function(callerRef)
	callerBlock := ir.NewBlock()
	callerBlock.AddInstr(ir.NewInstruction(ir.OpCall, ir.NewFuncRef(doubleRef), ir.NewConst(intType, intBytes(21))))
	callerBlock.AddInstr(ir.NewInstruction(ir.OpRet))
	callerFB.AddBlock(callerBlock)
	if err := callerFB.Finish(); err != nil {
		t.Fatalf("Finish caller: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	result, err := ctx.ExecuteFunction(callerRef, nil)
	if err != nil {
		t.Fatalf("ExecuteFunction: unexpected error: %v", err)
	}
	if result.Int != 42 {
		t.Errorf("ExecuteFunction() = %d, want 42", result.Int)
	}
	if ctx.GetStats().FunctionCalls != 2 {
		t.Errorf("FunctionCalls = %d, want 2", ctx.GetStats().FunctionCalls)
	}
}

func TestSuspendResumeAtBreakpoint(t *testing.T) {
	b, intType := newTestContext(t)
	fref, _ := b.DeclareFunction("f", irtype.ABICdecl)
	fb, _ := b.Function(fref)
	block := ir.NewBlock()
	block.AddInstr(ir.NewInstruction(ir.OpAdd, ir.NewConst(intType, intBytes(1)), ir.NewConst(intType, intBytes(2))))
	block.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewConst(intType, intBytes(5))))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	ctx.SetDebug(true)
	ctx.AddBreakpoint(0, 1)

	fn, err := b.Module.GetFunction(fref)
	if err != nil {
		t.Fatalf("GetFunction: %v", err)
	}
	localCount := len(fn.Params) + len(fn.Locals)
	frame := NewFrame(fref, localCount, DefaultOperandStackDepth)
	if err := ctx.pushFrame(frame); err != nil {
		t.Fatalf("pushFrame: %v", err)
	}
	ctx.state = StateSuspended

	if _, err := ctx.Run(); err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}
	if ctx.State() != StateSuspended {
		t.Fatalf("state = %v, want StateSuspended at breakpoint", ctx.State())
	}

	if err := ctx.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	ctx.ClearBreakpoints()
	result, err := ctx.Run()
	if err != nil {
		t.Fatalf("Run after resume: unexpected error: %v", err)
	}
	if result.Int != 5 {
		t.Errorf("Run() = %d, want 5", result.Int)
	}
	if ctx.State() != StateCompleted {
		t.Errorf("state = %v, want StateCompleted", ctx.State())
	}
}

func TestDivideByZero(t *testing.T) {
	b, intType := newTestContext(t)
	fref, _ := b.DeclareFunction("div0", irtype.ABICdecl)
	fb, _ := b.Function(fref)
	block := ir.NewBlock()
	expr := ir.NewChildInstruction(ir.COpDiv, ir.NewConst(intType, intBytes(1)), ir.NewConst(intType, intBytes(0)))
	block.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(expr)))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	if _, err := ctx.ExecuteFunction(fref, nil); err == nil {
		t.Fatalf("expected DivideByZero error")
	}
	if ctx.State() != StateError {
		t.Errorf("state = %v, want StateError", ctx.State())
	}
}

// TestChildNotIsBitwiseComplement checks NOT computes a bitwise
// complement, not a logical negation: NOT(0) on a signed 32-bit int is
// -1, and NOT(0) on the unsigned 32-bit view is 0xFFFFFFFF, both of
// which a boolean flip (0 -> 1) would get wrong.
func TestChildNotIsBitwiseComplement(t *testing.T) {
	b, intType := newTestContext(t)
	uintTy, err := irtype.NewUint(32, irtype.Target{PointerSize: 8})
	if err != nil {
		t.Fatalf("NewUint: %v", err)
	}
	uintType, err := b.AddType("C@unsigned int", uintTy)
	if err != nil {
		t.Fatalf("AddType: %v", err)
	}

	signedRef, _ := b.DeclareFunction("notSigned", irtype.ABICdecl)
	signedFB, _ := b.Function(signedRef)
	signedBlock := ir.NewBlock()
	notExpr := ir.NewChildInstruction(ir.COpNot, ir.NewConst(intType, intBytes(0)))
	signedBlock.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(notExpr)))
	signedFB.AddBlock(signedBlock)
	if err := signedFB.Finish(); err != nil {
		t.Fatalf("Finish notSigned: %v", err)
	}

	ctx := New(b.Module, config.Default(), nil)
	result, err := ctx.ExecuteFunction(signedRef, nil)
	if err != nil {
		t.Fatalf("ExecuteFunction(notSigned): unexpected error: %v", err)
	}
	if result.Kind != RTInt || result.Int != -1 {
		t.Errorf("NOT(0) as signed int32 = %+v, want int -1", result)
	}

	unsignedRef, _ := b.DeclareFunction("notUnsigned", irtype.ABICdecl)
	unsignedFB, _ := b.Function(unsignedRef)
	unsignedBlock := ir.NewBlock()
	notUExpr := ir.NewChildInstruction(ir.COpNot, ir.NewConst(uintType, intBytes(0)))
	unsignedBlock.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(notUExpr)))
	unsignedFB.AddBlock(unsignedBlock)
	if err := unsignedFB.Finish(); err != nil {
		t.Fatalf("Finish notUnsigned: %v", err)
	}

	ctx.Reset()
	result, err = ctx.ExecuteFunction(unsignedRef, nil)
	if err != nil {
		t.Fatalf("ExecuteFunction(notUnsigned): unexpected error: %v", err)
	}
	if result.Kind != RTUnt || result.Unt != 0xFFFFFFFF {
		t.Errorf("NOT(0) as unsigned int32 = %+v, want unt 0xFFFFFFFF", result)
	}
}

// TestNullOpcodeAbortsProcess checks that executing the NULL sentinel
// opcode aborts the process after logging, rather than the silent
// no-op it used to be. Fatalf calls os.Exit, so the crash is driven in
// a subprocess and observed through its exit status and log output,
// following the standard re-exec-self pattern for testing code that
// terminates the process.
func TestNullOpcodeAbortsProcess(t *testing.T) {
	if os.Getenv("LLACE_NULL_OPCODE_CRASH_CHILD") == "1" {
		crashOnNullOpcode()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestNullOpcodeAbortsProcess$")
	cmd.Env = append(os.Environ(), "LLACE_NULL_OPCODE_CRASH_CHILD=1")
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected executing OpNull to exit the process non-zero, got success; output:\n%s", out)
	}
	if !bytes.Contains(out, []byte("FATAL")) {
		t.Fatalf("expected a FATAL log line before abort, got:\n%s", out)
	}
}

// crashOnNullOpcode builds a one-instruction function consisting solely
// of OpNull and executes it; it is only ever invoked in the subprocess
// spawned by TestNullOpcodeAbortsProcess; the function is supposed to
// exit the process before returning.
func crashOnNullOpcode() {
	b, err := irbuilder.NewBuilder("crash.mod", config.HostTarget())
	if err != nil {
		panic(err)
	}
	fref, err := b.DeclareFunction("crash", irtype.ABICdecl)
	if err != nil {
		panic(err)
	}
	fb, err := b.Function(fref)
	if err != nil {
		panic(err)
	}
	block := ir.NewBlock()
	block.AddInstr(ir.NewInstruction(ir.OpNull))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		panic(err)
	}

	ctx := New(b.Module, config.Default(), nil)
	ctx.ExecuteFunction(fref, nil)
}
