// Package debugger is an interactive command loop over internal/interp,
// adapted from the teacher's bytecode-VM debugger: breakpoints, a call
// stack view, watches, and step/continue commands, retargeted at the
// IIR's block/instruction addressing instead of file:line source
// positions.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"llace/internal/arena"
	"llace/internal/interp"
	"llace/internal/ir"
)

// State mirrors the debugger's own idea of where it stands, distinct
// from interp.State: running, paused, or terminated.
type State int

const (
	StateRunning State = iota
	StatePaused
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Breakpoint is a user-facing breakpoint record: an ID plus the
// block/instruction position it maps to in the interpreter.
type Breakpoint struct {
	ID      int
	Block   int
	Instr   int
	Enabled bool
	Hits    int
}

// Debugger drives an interp.Context interactively, tracking breakpoint
// IDs/hit counts and watch expressions the interpreter itself has no
// notion of.
type Debugger struct {
	ctx *interp.Context

	breakpoints map[int]*Breakpoint
	nextBpID    int
	watches     map[string]bool

	state State

	out io.Writer
	in  *bufio.Reader
}

// NewDebugger wraps ctx for interactive debugging, reading commands
// from in and writing output to out.
func NewDebugger(ctx *interp.Context, in io.Reader, out io.Writer) *Debugger {
	ctx.SetDebug(true)
	return &Debugger{
		ctx:         ctx,
		breakpoints: make(map[int]*Breakpoint),
		nextBpID:    1,
		watches:     make(map[string]bool),
		state:       StatePaused,
		out:         out,
		in:          bufio.NewReader(in),
	}
}

// AddBreakpoint registers a breakpoint at (block, instr) and returns
// its ID.
func (d *Debugger) AddBreakpoint(block, instr int) int {
	bp := &Breakpoint{ID: d.nextBpID, Block: block, Instr: instr, Enabled: true}
	d.breakpoints[bp.ID] = bp
	d.nextBpID++
	d.ctx.AddBreakpoint(block, instr)
	fmt.Fprintf(d.out, "breakpoint %d set at block=%d instr=%d\n", bp.ID, block, instr)
	return bp.ID
}

// RemoveBreakpoint clears a breakpoint by ID.
func (d *Debugger) RemoveBreakpoint(id int) bool {
	bp, ok := d.breakpoints[id]
	if !ok {
		fmt.Fprintf(d.out, "breakpoint %d not found\n", id)
		return false
	}
	delete(d.breakpoints, id)
	d.ctx.RemoveBreakpoint(bp.Block, bp.Instr)
	fmt.Fprintf(d.out, "breakpoint %d removed\n", id)
	return true
}

// ListBreakpoints prints every registered breakpoint.
func (d *Debugger) ListBreakpoints() {
	if len(d.breakpoints) == 0 {
		fmt.Fprintln(d.out, "no breakpoints set")
		return
	}
	for _, bp := range d.breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		fmt.Fprintf(d.out, "  %d: block=%d instr=%d (%s) hits=%d\n", bp.ID, bp.Block, bp.Instr, status, bp.Hits)
	}
}

// Continue resumes execution until completion or the next breakpoint.
func (d *Debugger) Continue() (interp.RTVal, error) {
	if d.ctx.State() == interp.StateSuspended {
		if err := d.ctx.Resume(); err != nil {
			return interp.RTVal{}, err
		}
	}
	result, err := d.ctx.Run()
	d.syncState()
	if err == nil {
		d.noteBreakpointHit()
	}
	return result, err
}

// StepInstruction advances exactly one instruction.
func (d *Debugger) StepInstruction() error {
	err := d.ctx.Step(interp.StepInstruction)
	d.syncState()
	return err
}

func (d *Debugger) syncState() {
	switch d.ctx.State() {
	case interp.StateCompleted, interp.StateError:
		d.state = StateTerminated
	case interp.StateSuspended:
		d.state = StatePaused
	default:
		d.state = StateRunning
	}
}

// noteBreakpointHit increments the hit counter of whichever registered
// breakpoint matches the interpreter's current frame position, if the
// context is suspended there.
func (d *Debugger) noteBreakpointHit() {
	if d.ctx.State() != interp.StateSuspended {
		return
	}
	f := d.ctx.CurrentFrame()
	if f == nil {
		return
	}
	for _, bp := range d.breakpoints {
		if bp.Block == f.BlockIndex && bp.Instr == f.InstrIndex {
			bp.Hits++
		}
	}
}

// PrintCallStack prints the interpreter's active call stack.
func (d *Debugger) PrintCallStack() {
	d.ctx.PrintCallStack()
}

// AddWatch registers a local-variable name to report on each pause.
func (d *Debugger) AddWatch(name string) {
	d.watches[name] = true
	fmt.Fprintf(d.out, "watch added: %s\n", name)
}

// RemoveWatch removes a previously added watch.
func (d *Debugger) RemoveWatch(name string) {
	if !d.watches[name] {
		fmt.Fprintf(d.out, "watch not found: %s\n", name)
		return
	}
	delete(d.watches, name)
	fmt.Fprintf(d.out, "watch removed: %s\n", name)
}

// ShowWatches prints the current value of every watched local in the
// active frame, resolving names against the executing function's
// params/locals table.
func (d *Debugger) ShowWatches() {
	if len(d.watches) == 0 {
		fmt.Fprintln(d.out, "no watches set")
		return
	}
	f := d.ctx.CurrentFrame()
	if f == nil {
		fmt.Fprintln(d.out, "no active frame")
		return
	}
	fn, err := d.ctx.Module.GetFunction(f.Function)
	if err != nil {
		fmt.Fprintf(d.out, "cannot resolve current function: %v\n", err)
		return
	}
	for name := range d.watches {
		idx, ok := d.findLocalIndex(&fn, name)
		if !ok {
			fmt.Fprintf(d.out, "  %s = <not found>\n", name)
			continue
		}
		v, err := f.Local(arena.Ref(idx))
		if err != nil {
			fmt.Fprintf(d.out, "  %s = <error: %v>\n", name, err)
			continue
		}
		fmt.Fprintf(d.out, "  %s = %s\n", name, v.String())
	}
}

// findLocalIndex resolves a param/local name to its flat index within
// Frame.Locals (params first, then locals — the layout
// irbuilder.FunctionBuilder.AddLocal produces).
func (d *Debugger) findLocalIndex(fn *ir.Function, name string) (int, bool) {
	for i, p := range fn.Params {
		if n, err := d.ctx.Module.GetName(p.Name); err == nil && n == name {
			return i, true
		}
	}
	for i, l := range fn.Locals {
		if n, err := d.ctx.Module.GetName(l.Name); err == nil && n == name {
			return len(fn.Params) + i, true
		}
	}
	return 0, false
}

// Run starts the interactive command loop, printing prompts and
// results to out until a "quit"/"exit" command or EOF.
func (d *Debugger) Run() {
	fmt.Fprintln(d.out, "llace debugger — type 'help' for commands")
	for d.state != StateTerminated {
		fmt.Fprint(d.out, "(llace-debug) ")
		line, err := d.in.ReadString('\n')
		if err != nil {
			return
		}
		if d.executeCommand(strings.TrimSpace(line)) {
			return
		}
	}
}

// executeCommand runs one REPL command; it returns true when the
// session should end.
func (d *Debugger) executeCommand(command string) bool {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help", "h":
		d.printHelp()
	case "break", "b":
		if len(args) < 2 {
			fmt.Fprintln(d.out, "usage: break <block> <instr>")
			return false
		}
		block, err1 := strconv.Atoi(args[0])
		instr, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			fmt.Fprintln(d.out, "block and instr must be integers")
			return false
		}
		d.AddBreakpoint(block, instr)
	case "delete", "d":
		if len(args) < 1 {
			fmt.Fprintln(d.out, "usage: delete <breakpoint_id>")
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(d.out, "invalid breakpoint id")
			return false
		}
		d.RemoveBreakpoint(id)
	case "breakpoints", "bl":
		d.ListBreakpoints()
	case "continue", "c":
		if _, err := d.Continue(); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	case "step", "s":
		if err := d.StepInstruction(); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	case "backtrace", "bt":
		d.PrintCallStack()
	case "watch", "w":
		if len(args) < 1 {
			fmt.Fprintln(d.out, "usage: watch <name>")
			return false
		}
		d.AddWatch(args[0])
	case "unwatch":
		if len(args) < 1 {
			fmt.Fprintln(d.out, "usage: unwatch <name>")
			return false
		}
		d.RemoveWatch(args[0])
	case "watches":
		d.ShowWatches()
	case "quit", "q", "exit":
		d.state = StateTerminated
		return true
	default:
		fmt.Fprintf(d.out, "unknown command: %s (try 'help')\n", cmd)
	}
	return false
}

func (d *Debugger) printHelp() {
	fmt.Fprintln(d.out, `commands:
  break <block> <instr>   set a breakpoint
  delete <id>             remove a breakpoint
  breakpoints             list breakpoints
  continue                run until completion or breakpoint
  step                    execute one instruction
  backtrace               print the call stack
  watch <name>            watch a local variable
  unwatch <name>           remove a watch
  watches                 print current watch values
  quit                    end the session`)
}
