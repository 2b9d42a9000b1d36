// Package interp implements the IIR: a single-threaded tree-walking
// interpreter over an ir.Module, used for compile-time constant
// evaluation, debugging/inspection, and correctness testing of an IR
// graph before it reaches codegen.
package interp

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/llaceerr"
	"llace/internal/logx"
)

// State is the interpreter's run state (llace_iir_state_t).
type State int

const (
	StateReady State = iota
	StateRunning
	StateSuspended
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StepMode selects what one Step call advances past
// (llace_iir_step_mode_t).
type StepMode int

const (
	StepInstruction StepMode = iota
	StepLine
	StepFunction
	StepOver
	StepOut
)

// pc identifies one instruction position for breakpoint purposes: a
// block index and instruction index within the currently executing
// function (the original keys breakpoints purely by a flat
// "instruction_index"; this generalizes that to the block-structured
// form this IR actually has).
type pc struct {
	block int
	instr int
}

// Stats mirrors llace_iir_stats_t.
type Stats struct {
	InstructionCount uint64
	FunctionCalls    uint64
	MemoryAllocations uint64
	CallStackDepth    int
	MaxCallStackDepth int
}

// Context is the interpreter's execution state (llace_iir_context_t).
type Context struct {
	Module *ir.Module
	Config config.Config

	RunID uuid.UUID // per-run correlation id, for trace/stat output

	state     State
	callStack []*Frame
	globals   []RTVal

	heap       []byte
	breakpoints map[pc]bool

	debugEnabled bool
	traceEnabled bool

	instructionCount  uint64
	functionCalls     uint64
	memoryAllocations uint64
	maxCallStackDepth int

	lastError error

	logger *logx.Logger
}

// New builds a Context ready to execute funcs in module under cfg.
// logger may be nil, in which case logx.Default is used for trace
// output (llace_iir_init).
func New(module *ir.Module, cfg config.Config, logger *logx.Logger) *Context {
	if logger == nil {
		logger = logx.Default
	}
	globals := make([]RTVal, module.GlobalCount())
	for i := range globals {
		globals[i] = VoidRT()
	}
	return &Context{
		Module:      module,
		Config:      cfg,
		RunID:       uuid.New(),
		state:       StateReady,
		globals:     globals,
		heap:        make([]byte, 0, 4096),
		breakpoints: make(map[pc]bool),
		logger:      logger,
	}
}

// Reset returns the interpreter to its initial Ready state, clearing
// the call stack and statistics but preserving globals, breakpoints,
// and debug/trace flags (llace_iir_reset).
func (c *Context) Reset() {
	c.state = StateReady
	c.callStack = nil
	c.instructionCount = 0
	c.functionCalls = 0
	c.memoryAllocations = 0
	c.maxCallStackDepth = 0
	c.lastError = nil
	c.RunID = uuid.New()
}

// State returns the interpreter's current run state.
func (c *Context) State() State { return c.state }

// SetDebug toggles debug mode independently of tracing
// (llace_iir_set_debug).
func (c *Context) SetDebug(enable bool) { c.debugEnabled = enable }

// SetTrace toggles instruction tracing independently of debug mode
// (llace_iir_set_trace).
func (c *Context) SetTrace(enable bool) { c.traceEnabled = enable }

// DebugEnabled reports whether debug mode is on.
func (c *Context) DebugEnabled() bool { return c.debugEnabled }

// TraceEnabled reports whether instruction tracing is on.
func (c *Context) TraceEnabled() bool { return c.traceEnabled }

// Suspend transitions a Running context to Suspended
// (llace_iir_suspend), used by breakpoint hits and external debugger
// commands.
func (c *Context) Suspend() error {
	if c.state != StateRunning {
		return llaceerr.Newf(llaceerr.BadArgument, "interp: cannot suspend from state %s", c.state)
	}
	c.state = StateSuspended
	return nil
}

// Resume transitions a Suspended context back to Running
// (llace_iir_resume).
func (c *Context) Resume() error {
	if c.state != StateSuspended {
		return llaceerr.Newf(llaceerr.BadArgument, "interp: cannot resume from state %s", c.state)
	}
	c.state = StateRunning
	return nil
}

// AddBreakpoint registers a breakpoint at (block, instr) within the
// currently executing function (llace_iir_add_breakpoint).
func (c *Context) AddBreakpoint(block, instr int) {
	c.breakpoints[pc{block, instr}] = true
}

// RemoveBreakpoint clears a single breakpoint (llace_iir_remove_breakpoint).
func (c *Context) RemoveBreakpoint(block, instr int) {
	delete(c.breakpoints, pc{block, instr})
}

// ClearBreakpoints removes every breakpoint (llace_iir_clear_breakpoints).
func (c *Context) ClearBreakpoints() {
	c.breakpoints = make(map[pc]bool)
}

func (c *Context) hasBreakpoint(block, instr int) bool {
	return c.breakpoints[pc{block, instr}]
}

// CurrentFrame returns the top of the call stack, or nil if the
// interpreter isn't executing (llace_iir_get_current_frame).
func (c *Context) CurrentFrame() *Frame {
	if len(c.callStack) == 0 {
		return nil
	}
	return c.callStack[len(c.callStack)-1]
}

// CallDepth returns the number of active frames (llace_iir_get_call_depth).
func (c *Context) CallDepth() int { return len(c.callStack) }

// FrameAt returns the frame at depth (0 = current), or nil if depth is
// out of range (llace_iir_get_frame).
func (c *Context) FrameAt(depth int) *Frame {
	idx := len(c.callStack) - 1 - depth
	if idx < 0 || idx >= len(c.callStack) {
		return nil
	}
	return c.callStack[idx]
}

func (c *Context) pushFrame(f *Frame) error {
	if len(c.callStack) >= MaxCallStackDepth {
		return llaceerr.Newf(llaceerr.StackOverflow, "interp: call stack depth exceeds %d", MaxCallStackDepth)
	}
	c.callStack = append(c.callStack, f)
	if len(c.callStack) > c.maxCallStackDepth {
		c.maxCallStackDepth = len(c.callStack)
	}
	c.functionCalls++
	return nil
}

func (c *Context) popFrame() {
	if len(c.callStack) == 0 {
		return
	}
	c.callStack = c.callStack[:len(c.callStack)-1]
}

// GetStats returns a snapshot of the interpreter's statistics
// (llace_iir_get_stats).
func (c *Context) GetStats() Stats {
	return Stats{
		InstructionCount:  c.instructionCount,
		FunctionCalls:     c.functionCalls,
		MemoryAllocations: c.memoryAllocations,
		CallStackDepth:    len(c.callStack),
		MaxCallStackDepth: c.maxCallStackDepth,
	}
}

// ResetStats zeroes every counter without touching execution state
// (llace_iir_reset_stats).
func (c *Context) ResetStats() {
	c.instructionCount = 0
	c.functionCalls = 0
	c.memoryAllocations = 0
	c.maxCallStackDepth = 0
}

// PrintStats logs a human-readable statistics summary
// (llace_iir_print_stats), using go-humanize for the instruction count
// so large runs stay readable.
func (c *Context) PrintStats() {
	stats := c.GetStats()
	c.logger.Infof("iir stats [%s]: instructions=%s calls=%s allocations=%s depth=%d/%d",
		c.RunID, humanize.Comma(int64(stats.InstructionCount)), humanize.Comma(int64(stats.FunctionCalls)),
		humanize.Comma(int64(stats.MemoryAllocations)), stats.CallStackDepth, stats.MaxCallStackDepth)
}

// PrintContext logs a snapshot of the whole context: state, call depth,
// and stats (llace_iir_print_context).
func (c *Context) PrintContext() {
	c.logger.Infof("iir context [%s]: state=%s depth=%d debug=%v trace=%v", c.RunID, c.state, len(c.callStack), c.debugEnabled, c.traceEnabled)
	c.PrintStats()
}

// PrintCallStack logs every active frame, innermost first
// (llace_iir_print_call_stack).
func (c *Context) PrintCallStack() {
	for i := len(c.callStack) - 1; i >= 0; i-- {
		f := c.callStack[i]
		fn, err := c.Module.GetFunction(f.Function)
		name := "<unknown>"
		if err == nil {
			if n, nerr := c.Module.GetName(fn.Name); nerr == nil {
				name = n
			}
		}
		c.logger.Infof("  #%d %s (block=%d instr=%d)", len(c.callStack)-1-i, name, f.BlockIndex, f.InstrIndex)
	}
}

// LastError returns the last error recorded by Run/Step/ExecuteFunction.
func (c *Context) LastError() error { return c.lastError }

func (c *Context) fail(err error) error {
	c.state = StateError
	c.lastError = err
	return err
}
