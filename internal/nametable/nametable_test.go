package nametable

import "testing"

func TestAddAndGetName(t *testing.T) {
	tab := New()

	tests := []struct {
		name string
		want string
	}{
		{"x.0", "x.0"},
		{"main", "main"},
		{"C@int", "C@int"},
	}

	refs := make([]Ref, len(tests))
	for i, tt := range tests {
		ref, err := tab.AddName(tt.name)
		if err != nil {
			t.Fatalf("AddName(%q): unexpected error: %v", tt.name, err)
		}
		refs[i] = ref
	}

	for i, tt := range tests {
		got, err := tab.GetName(refs[i])
		if err != nil {
			t.Errorf("test[%s] - unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("test[%s] - wrong name. got=%q, want=%q", tt.name, got, tt.want)
		}
	}
}

func TestEmptyNameSharesZeroRef(t *testing.T) {
	tab := New()
	r1, err := tab.AddName("")
	if err != nil || r1 != 0 {
		t.Fatalf("AddName(\"\") = %d, %v; want 0, nil", r1, err)
	}
	r2, err := tab.AddName("")
	if err != nil || r2 != 0 {
		t.Fatalf("second AddName(\"\") = %d, %v; want 0, nil", r2, err)
	}
	got, err := tab.GetName(0)
	if err != nil || got != "" {
		t.Errorf("GetName(0) = %q, %v; want \"\", nil", got, err)
	}
}

func TestGetNameOutOfRange(t *testing.T) {
	tab := New()
	if _, err := tab.GetName(999); err == nil {
		t.Errorf("expected error for out-of-range ref")
	}
}

func TestAddNameRejectsEmbeddedNUL(t *testing.T) {
	tab := New()
	if _, err := tab.AddName("bad\x00name"); err == nil {
		t.Errorf("expected error for name with embedded NUL")
	}
}
