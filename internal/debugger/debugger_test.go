package debugger

import (
	"bytes"
	"strings"
	"testing"

	"llace/internal/arena"
	"llace/internal/config"
	"llace/internal/interp"
	"llace/internal/ir"
	"llace/internal/irbuilder"
	"llace/internal/irtype"
)

// buildCountdown declares a two-instruction function that returns its
// sole parameter unchanged, giving the debugger tests a breakpoint
// target and a named local to watch.
func buildCountdown(t *testing.T) (*ir.Module, irtype.Ref, arena.Ref) {
	t.Helper()
	b, err := irbuilder.NewBuilder("dbg.mod", config.HostTarget())
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

	fref, err := b.DeclareFunction("step", irtype.ABICdecl)
	if err != nil {
		t.Fatalf("DeclareFunction: %v", err)
	}
	fb, err := b.Function(fref)
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	if _, err := fb.AddParam("n", intType); err != nil {
		t.Fatalf("AddParam: %v", err)
	}
	nRef, _ := fb.GetLocal("n")

	block := ir.NewBlock()
	block.AddInstr(ir.NewInstruction(ir.OpAlloc, ir.NewVarRef(nRef)))
	block.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewVarRef(nRef)))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	return b.Module, intType, fref
}

func TestAddAndRemoveBreakpoint(t *testing.T) {
	module, _, _ := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	d := NewDebugger(ctx, strings.NewReader(""), &out)

	id := d.AddBreakpoint(0, 1)
	if len(d.breakpoints) != 1 {
		t.Fatalf("expected 1 breakpoint, got %d", len(d.breakpoints))
	}

	if !d.RemoveBreakpoint(id) {
		t.Fatalf("RemoveBreakpoint(%d) = false, want true", id)
	}
	if len(d.breakpoints) != 0 {
		t.Fatalf("expected 0 breakpoints after removal, got %d", len(d.breakpoints))
	}
}

// TestExecuteFunctionIgnoresBreakpointAndCompletes checks that
// ExecuteFunction runs a function to completion even with a breakpoint
// registered — ExecuteFunction itself is a single top-level entry with
// no intervening Suspend, so a breakpoint only matters to a Debugger
// once it drives interp.Context through Run()/Step() directly — and
// that the breakpoint still shows up in the listing.
func TestExecuteFunctionIgnoresBreakpointAndCompletes(t *testing.T) {
	module, intType, fref := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	d := NewDebugger(ctx, strings.NewReader(""), &out)

	d.AddBreakpoint(0, 1)

	result, err := ctx.ExecuteFunction(fref, []interp.RTVal{interp.IntRT(intType, 9)})
	if err != nil {
		t.Fatalf("ExecuteFunction: unexpected error: %v", err)
	}
	if result.Kind != interp.RTInt || result.Int != 9 {
		t.Errorf("ExecuteFunction() = %+v, want int 9", result)
	}

	d.ListBreakpoints()
	if !strings.Contains(out.String(), "block=0 instr=1") {
		t.Errorf("ListBreakpoints() output missing breakpoint location: %q", out.String())
	}
}

func TestWatchResolvesLocalByName(t *testing.T) {
	module, _, fref := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	d := NewDebugger(ctx, strings.NewReader(""), &out)

	d.AddWatch("n")
	if !d.watches["n"] {
		t.Fatalf("expected watch on n to be registered")
	}

	fn, err := module.GetFunction(fref)
	if err != nil {
		t.Fatalf("GetFunction: %v", err)
	}
	idx, ok := d.findLocalIndex(&fn, "n")
	if !ok || idx != 0 {
		t.Errorf("findLocalIndex(n) = (%d, %v), want (0, true)", idx, ok)
	}

	_, ok = d.findLocalIndex(&fn, "nonexistent")
	if ok {
		t.Errorf("findLocalIndex(nonexistent) = true, want false")
	}

	d.RemoveWatch("n")
	if d.watches["n"] {
		t.Errorf("expected watch on n to be removed")
	}
}

func TestExecuteCommandQuitEndsSession(t *testing.T) {
	module, _, _ := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	d := NewDebugger(ctx, strings.NewReader(""), &out)

	if !d.executeCommand("quit") {
		t.Errorf("executeCommand(quit) = false, want true")
	}
	if d.state != StateTerminated {
		t.Errorf("state = %v, want StateTerminated", d.state)
	}
}

func TestExecuteCommandBreakAndList(t *testing.T) {
	module, _, _ := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	d := NewDebugger(ctx, strings.NewReader(""), &out)

	if d.executeCommand("break 0 1") {
		t.Fatalf("executeCommand(break) should not end session")
	}
	if len(d.breakpoints) != 1 {
		t.Fatalf("expected 1 breakpoint after 'break 0 1', got %d", len(d.breakpoints))
	}

	out.Reset()
	d.executeCommand("breakpoints")
	if !strings.Contains(out.String(), "block=0 instr=1") {
		t.Errorf("breakpoints command missing listing: %q", out.String())
	}
}

func TestRunProcessesCommandsUntilQuit(t *testing.T) {
	module, _, _ := buildCountdown(t)
	ctx := interp.New(module, config.Default(), nil)
	var out bytes.Buffer
	in := strings.NewReader("break 0 1\nbreakpoints\nquit\n")
	d := NewDebugger(ctx, in, &out)

	d.Run()

	if d.state != StateTerminated {
		t.Errorf("state = %v, want StateTerminated", d.state)
	}
	if !strings.Contains(out.String(), "breakpoint 1 set") {
		t.Errorf("Run() output missing breakpoint confirmation: %q", out.String())
	}
}
