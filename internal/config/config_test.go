package config

import "testing"

func TestHostTargetIsSupported(t *testing.T) {
	target := HostTarget()
	if !target.IsSupported() {
		t.Errorf("HostTarget() should be supported, got %s", target)
	}
	if target.WordSize() != 64 {
		t.Errorf("WordSize() = %d, want 64", target.WordSize())
	}
	if target.PointerSizeBytes() != 8 {
		t.Errorf("PointerSizeBytes() = %d, want 8", target.PointerSizeBytes())
	}
}

func TestUnsupportedTargets(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"big endian", Target{Arch: ArchAMD64, OS: OSNone, Format: ObjFmtBinary, Endian: EndianBig}},
		{"linux os", Target{Arch: ArchAMD64, OS: OSLinux, Format: ObjFmtBinary, Endian: EndianLittle}},
		{"elf format", Target{Arch: ArchAMD64, OS: OSNone, Format: ObjFmtELF64, Endian: EndianLittle}},
		{"arm64", Target{Arch: ArchARM64, OS: OSNone, Format: ObjFmtBinary, Endian: EndianLittle}},
	}
	for _, tt := range tests {
		if tt.target.IsSupported() {
			t.Errorf("test[%s] - expected unsupported target", tt.name)
		}
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Valid(); err != nil {
		t.Errorf("Default() config should be valid, got error: %v", err)
	}
}

func TestConfigValidRejectsConflictingLibraryFlags(t *testing.T) {
	cfg := Default()
	cfg.SharedLibrary = true
	cfg.StaticLibrary = true
	if err := cfg.Valid(); err == nil {
		t.Errorf("expected error when both SharedLibrary and StaticLibrary are set")
	}
}

func TestConfigValidRejectsEmptyFilename(t *testing.T) {
	cfg := Default()
	cfg.Filename = ""
	if err := cfg.Valid(); err == nil {
		t.Errorf("expected error for empty filename")
	}
}

func TestConfigValidRejectsUnsupportedTarget(t *testing.T) {
	cfg := Default()
	cfg.Target.OS = OSLinux
	if err := cfg.Valid(); err == nil {
		t.Errorf("expected error for unsupported target")
	}
}
