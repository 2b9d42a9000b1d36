package interp

import (
	"llace/internal/arena"
	"llace/internal/llaceerr"
)

// DefaultOperandStackDepth is the per-frame operand stack capacity a
// Context allocates by default (llace_iir_frame_t.stack, sized here
// rather than left to grow unbounded, so StackOverflow is detectable).
const DefaultOperandStackDepth = 1024

// MaxCallStackDepth bounds the number of nested Frames a Context will
// allow before reporting StackOverflow (llace_iir_context_t.call_stack,
// bounded here rather than left to grow unbounded).
const MaxCallStackDepth = 256

// Frame is one activation record on the interpreter's call stack
// (llace_iir_frame_t).
type Frame struct {
	Function      arena.Ref
	BlockIndex    int
	InstrIndex    int
	Locals        []RTVal
	Stack         []RTVal
	stackCapacity int
}

// NewFrame builds a Frame for invoking fn, with localCount local slots
// pre-sized and an operand stack capped at stackCapacity.
func NewFrame(fn arena.Ref, localCount, stackCapacity int) *Frame {
	if stackCapacity <= 0 {
		stackCapacity = DefaultOperandStackDepth
	}
	return &Frame{
		Function:      fn,
		Locals:        make([]RTVal, localCount),
		Stack:         make([]RTVal, 0, stackCapacity),
		stackCapacity: stackCapacity,
	}
}

// Push appends v to the frame's operand stack, failing with
// StackOverflow once the capacity is reached.
func (f *Frame) Push(v RTVal) error {
	if len(f.Stack) >= f.stackCapacity {
		return llaceerr.Newf(llaceerr.StackOverflow, "interp: operand stack overflow (depth %d)", f.stackCapacity)
	}
	f.Stack = append(f.Stack, v)
	return nil
}

// Pop removes and returns the top of the frame's operand stack.
func (f *Frame) Pop() (RTVal, error) {
	if len(f.Stack) == 0 {
		return RTVal{}, llaceerr.New(llaceerr.Unimplemented, "interp: pop on empty operand stack")
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, nil
}

// Local returns the local at index, or a BadArgument error if out of
// range.
func (f *Frame) Local(index arena.Ref) (RTVal, error) {
	if int(index) < 0 || int(index) >= len(f.Locals) {
		return RTVal{}, llaceerr.Newf(llaceerr.BadArgument, "interp: local %d out of range [0,%d)", index, len(f.Locals))
	}
	return f.Locals[index], nil
}

// SetLocal overwrites the local at index.
func (f *Frame) SetLocal(index arena.Ref, v RTVal) error {
	if int(index) < 0 || int(index) >= len(f.Locals) {
		return llaceerr.Newf(llaceerr.BadArgument, "interp: local %d out of range [0,%d)", index, len(f.Locals))
	}
	f.Locals[index] = v
	return nil
}
