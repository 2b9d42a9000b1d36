package c

import (
	"testing"

	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/irtype"
)

func newTestModule(t *testing.T, target config.Target) *ir.Module {
	t.Helper()
	m, err := ir.NewModule("test.mod", irtype.Target{PointerSize: target.PointerSizeBytes()})
	if err != nil {
		t.Fatalf("ir.NewModule: unexpected error: %v", err)
	}
	return m
}

func TestRegisterTypes64Bit(t *testing.T) {
	target := config.HostTarget()
	m := newTestModule(t, target)

	refs, err := RegisterTypes(m, target)
	if err != nil {
		t.Fatalf("RegisterTypes: unexpected error: %v", err)
	}

	tests := []struct {
		key       string
		wantBits  uint64
		wantSize  uint64
		wantKind  irtype.Kind
	}{
		{"bool", 1, 1, irtype.Uint},
		{"char", 8, 1, irtype.Int},
		{"int", 32, 4, irtype.Int},
		{"unsigned int", 32, 4, irtype.Uint},
		{"long", 64, 8, irtype.Int},
		{"long long", 64, 8, irtype.Int},
		{"int32_t", 32, 4, irtype.Int},
		{"uint64_t", 64, 8, irtype.Uint},
	}

	for _, tt := range tests {
		ref, ok := refs[tt.key]
		if !ok {
			t.Errorf("test[%s] - type not registered", tt.key)
			continue
		}
		ty, err := m.GetType(ref)
		if err != nil {
			t.Errorf("test[%s] - GetType error: %v", tt.key, err)
			continue
		}
		if ty.Kind != tt.wantKind {
			t.Errorf("test[%s] - kind = %v, want %v", tt.key, ty.Kind, tt.wantKind)
		}
		if ty.IntBits != tt.wantBits {
			t.Errorf("test[%s] - bits = %d, want %d", tt.key, ty.IntBits, tt.wantBits)
		}
		if ty.Size != tt.wantSize {
			t.Errorf("test[%s] - size = %d, want %d", tt.key, ty.Size, tt.wantSize)
		}
	}
}

func TestRegisterTypesFloatAndVoid(t *testing.T) {
	target := config.HostTarget()
	m := newTestModule(t, target)
	refs, err := RegisterTypes(m, target)
	if err != nil {
		t.Fatalf("RegisterTypes: unexpected error: %v", err)
	}

	floatTy, err := m.GetType(refs["float"])
	if err != nil || floatTy.Size != 4 {
		t.Errorf("C@float size = %d, %v; want 4, nil", floatTy.Size, err)
	}
	doubleTy, err := m.GetType(refs["double"])
	if err != nil || doubleTy.Size != 8 {
		t.Errorf("C@double size = %d, %v; want 8, nil", doubleTy.Size, err)
	}
	voidTy, err := m.GetType(refs["void"])
	if err != nil || voidTy.Kind != irtype.Void || voidTy.Size != 0 {
		t.Errorf("C@void = %+v, %v; want Void/size=0", voidTy, err)
	}
}

func TestRegisterTypes32BitDoesNotReproduceOriginalBug(t *testing.T) {
	target := config.Target{Arch: config.ArchARM32, OS: config.OSNone, Format: config.ObjFmtBinary, Endian: config.EndianLittle}
	// ARM32 has WordSize() == 0 in this target model (only AMD64 is
	// given a concrete word size by the original), so exercise the
	// 32-bit registration path directly instead of through RegisterTypes.
	m := newTestModule(t, target)
	it := irtype.Target{PointerSize: 4}
	refs := make(TypeRefs)
	add := func(key string, ref irtype.Ref, err error) error {
		if err != nil {
			return err
		}
		refs[key] = ref
		return nil
	}
	if err := registerTypesFor32(m, it, add); err != nil {
		t.Fatalf("registerTypesFor32: unexpected error: %v", err)
	}

	intTy, err := m.GetType(refs["int"])
	if err != nil {
		t.Fatalf("GetType(int): %v", err)
	}
	if intTy.IntBits != 32 {
		t.Errorf("C@int on a 32-bit target = %d bits, want 32 (original_source/src/builder/c.c registers this at 16 bits, a known bug this implementation does not reproduce)", intTy.IntBits)
	}
}

func TestGetTypeAndGetTypeRef(t *testing.T) {
	target := config.HostTarget()
	m := newTestModule(t, target)
	if _, err := RegisterTypes(m, target); err != nil {
		t.Fatalf("RegisterTypes: unexpected error: %v", err)
	}

	ty, ok := GetType(m, "C@int")
	if !ok || ty.IntBits != 32 {
		t.Errorf("GetType(\"C@int\") = %+v, %v; want 32 bits, true", ty, ok)
	}

	ref, ok := GetTypeRef(m, "C@int")
	if !ok {
		t.Fatalf("GetTypeRef(\"C@int\") not found")
	}
	resolved, err := m.GetType(ref)
	if err != nil || resolved.IntBits != 32 {
		t.Errorf("GetTypeRef resolved wrong type: %+v, %v", resolved, err)
	}

	if _, ok := GetType(m, "C@nonexistent"); ok {
		t.Errorf("GetType(\"C@nonexistent\") unexpectedly found")
	}
}

func TestRegisterTypesUnsupportedWordSize(t *testing.T) {
	target := config.Target{Arch: config.ArchRISCV32}
	m := newTestModule(t, target)
	if _, err := RegisterTypes(m, target); err == nil {
		t.Errorf("expected error for a target with no defined word size")
	}
}
