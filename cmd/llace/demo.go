package main

import (
	"llace/internal/arena"
	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/irbuilder"
	"llace/internal/irtype"
)

// demoModule is the small, self-contained IR program the CLI's run,
// debug, and stats subcommands drive, since this package ships no
// source-language frontend of its own to parse a user's file — only
// the C-ABI scalar type builder and the arena-based IR this tool
// exercises directly.
type demoModule struct {
	builder *irbuilder.Builder
	intType irtype.Ref
	add     arena.Ref
	fact    arena.Ref
}

func intConstBytes(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// buildDemoModule declares two functions: add(a, b) = a + b as a
// single RET wrapping a nested ADD expression, and fact(n) as a
// recursive factorial exercising BR, CALL, and nested child-instruction
// arithmetic together.
func buildDemoModule() (*demoModule, error) {
	b, err := irbuilder.NewBuilder("llace-cli-demo", config.HostTarget())
	if err != nil {
		return nil, err
	}
	intTy, err := irtype.NewInt(32, irtype.Target{PointerSize: 8})
	if err != nil {
		return nil, err
	}
	intType, err := b.AddType("C@int", intTy)
	if err != nil {
		return nil, err
	}

	addRef, err := buildAdd(b, intType)
	if err != nil {
		return nil, err
	}
	factRef, err := buildFact(b, intType)
	if err != nil {
		return nil, err
	}

	return &demoModule{builder: b, intType: intType, add: addRef, fact: factRef}, nil
}

func buildAdd(b *irbuilder.Builder, intType irtype.Ref) (arena.Ref, error) {
	fref, err := b.DeclareFunction("add", irtype.ABICdecl)
	if err != nil {
		return 0, err
	}
	fb, err := b.Function(fref)
	if err != nil {
		return 0, err
	}
	if _, err := fb.AddParam("a", intType); err != nil {
		return 0, err
	}
	if _, err := fb.AddParam("b", intType); err != nil {
		return 0, err
	}
	aRef, _ := fb.GetLocal("a")
	bRef, _ := fb.GetLocal("b")

	block := ir.NewBlock()
	sum := ir.NewChildInstruction(ir.COpAdd, ir.NewVarRef(aRef), ir.NewVarRef(bRef))
	block.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(sum)))
	fb.AddBlock(block)
	if err := fb.Finish(); err != nil {
		return 0, err
	}
	return fref, nil
}

func buildFact(b *irbuilder.Builder, intType irtype.Ref) (arena.Ref, error) {
	fref, err := b.DeclareFunction("fact", irtype.ABICdecl)
	if err != nil {
		return 0, err
	}
	fb, err := b.Function(fref)
	if err != nil {
		return 0, err
	}
	if _, err := fb.AddParam("n", intType); err != nil {
		return 0, err
	}
	nRef, _ := fb.GetLocal("n")

	entry := ir.NewBlock()
	base := ir.NewChildInstruction(ir.COpLe, ir.NewVarRef(nRef), ir.NewConst(intType, intConstBytes(1)))
	entry.AddInstr(ir.NewInstruction(ir.OpBr, ir.NewChildInstrValue(base), ir.NewBlockValue(1), ir.NewBlockValue(2)))

	baseCase := ir.NewBlock()
	baseCase.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewConst(intType, intConstBytes(1))))

	recurse := ir.NewBlock()
	nMinus1 := ir.NewChildInstruction(ir.COpSub, ir.NewVarRef(nRef), ir.NewConst(intType, intConstBytes(1)))
	recCall := ir.NewChildInstruction(ir.COpCall, ir.NewFuncRef(fref), ir.NewChildInstrValue(nMinus1))
	product := ir.NewChildInstruction(ir.COpMul, ir.NewVarRef(nRef), ir.NewChildInstrValue(recCall))
	recurse.AddInstr(ir.NewInstruction(ir.OpRet, ir.NewChildInstrValue(product)))

	fb.AddBlock(entry)
	fb.AddBlock(baseCase)
	fb.AddBlock(recurse)
	if err := fb.Finish(); err != nil {
		return 0, err
	}
	return fref, nil
}
