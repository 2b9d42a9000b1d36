package ir

import "llace/internal/arena"

// BlockRef references a Block within a Function's block arena.
type BlockRef = arena.Ref

// Block is a basic block: a run of locally-scoped variables (declared
// with AddLocal) followed by the instructions that execute in
// straight-line order (llace_block_t: {locals, instrs}).
type Block struct {
	Locals []Variable
	Instrs []Instruction
}

// NewBlock builds an empty block.
func NewBlock() Block {
	return Block{}
}

// AddLocal appends a local variable declaration and returns its index
// within the block (used to build llace_varref_t values).
func (b *Block) AddLocal(v Variable) arena.Ref {
	b.Locals = append(b.Locals, v)
	return arena.Ref(len(b.Locals) - 1)
}

// AddInstr appends an instruction and returns its index within the
// block.
func (b *Block) AddInstr(instr Instruction) arena.Ref {
	b.Instrs = append(b.Instrs, instr)
	return arena.Ref(len(b.Instrs) - 1)
}
