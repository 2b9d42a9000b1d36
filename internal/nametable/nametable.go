// Package nametable implements the module-wide name buffer: a single
// growable byte buffer holding every NUL-terminated name in a Module,
// addressed by byte offset rather than by index. This mirrors
// llace_nameref_t ("offset into name buffer") and the nametab handle on
// llace_module_t, keeping all name storage append-only and reference-
// stable the same way the arena package keeps indexed entities stable.
package nametable

import (
	"strings"

	"llace/internal/llaceerr"
)

// Ref is a byte offset into a Table's buffer. The zero Ref points at
// the table's leading NUL, which Table reserves as the canonical
// "empty name" / absent-name reference so a zero-valued Ref field
// never accidentally aliases a real name.
type Ref uint32

// Table is an append-only buffer of NUL-terminated names.
type Table struct {
	buf []byte
}

// New creates a Table with its reserved empty-name entry already
// written at offset 0.
func New() *Table {
	return &Table{buf: []byte{0}}
}

// AddName appends name (NUL-terminated) to the buffer and returns its
// offset. An empty string returns Ref(0), the shared empty-name entry,
// without growing the buffer (llace_module_add_name treats NULL/empty
// specially rather than storing a duplicate empty string every time).
func (t *Table) AddName(name string) (Ref, error) {
	if name == "" {
		return Ref(0), nil
	}
	if strings.IndexByte(name, 0) >= 0 {
		return 0, llaceerr.New(llaceerr.BadArgument, "nametable: name must not contain an embedded NUL")
	}
	ref := Ref(len(t.buf))
	t.buf = append(t.buf, name...)
	t.buf = append(t.buf, 0)
	return ref, nil
}

// GetName returns the NUL-terminated string stored at ref
// (llace_module_get_name).
func (t *Table) GetName(ref Ref) (string, error) {
	off := int(ref)
	if off < 0 || off >= len(t.buf) {
		return "", llaceerr.Newf(llaceerr.BadArgument, "nametable: ref %d out of range [0,%d)", ref, len(t.buf))
	}
	end := off
	for end < len(t.buf) && t.buf[end] != 0 {
		end++
	}
	if end >= len(t.buf) {
		return "", llaceerr.Newf(llaceerr.BadArgument, "nametable: ref %d is not NUL-terminated", ref)
	}
	return string(t.buf[off:end]), nil
}

// Len returns the current size of the backing buffer in bytes.
func (t *Table) Len() int { return len(t.buf) }
