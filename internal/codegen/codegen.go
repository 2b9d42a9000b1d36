// Package codegen is a stub collaborator for the object-file writer
// the original design sketches in detail/codegen.h: sections, symbols,
// relocations, and ELF/PE/Mach-O/DWARF output, none of which has a
// corresponding implementation anywhere in the original sources either.
// This package keeps the same shape of contract — walk a finished
// Module's globals and functions without mutating it — and stops
// there.
package codegen

import (
	"llace/internal/arena"
	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/llaceerr"
)

// Codegen lowers module to an object file for cfg.Target. It visits
// every global then every function (llace_object_write's contract) but
// never mutates module; the original ships no corresponding
// definition for any of detail/codegen.h's declarations, so this
// returns Unimplemented once validation passes, rather than pretending
// to emit machine code.
func Codegen(cfg config.Config, module *ir.Module) error {
	if err := cfg.Valid(); err != nil {
		return err
	}

	for i := 0; i < module.GlobalCount(); i++ {
		if _, err := module.GetGlobal(arena.Ref(i)); err != nil {
			return err
		}
	}
	for i := 0; i < module.FunctionCount(); i++ {
		if _, err := module.GetFunction(arena.Ref(i)); err != nil {
			return err
		}
	}

	return llaceerr.New(llaceerr.Unimplemented, "codegen: object file emission is not implemented")
}
