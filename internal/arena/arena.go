// Package arena implements the append-only, integer-referenced storage
// that backs every entity in the IR graph: names, types, variables,
// globals, instructions, blocks, functions. Entities are never freed
// individually and references into a Sequence are stable array indices,
// never pointers, so the graph survives growth/reallocation untouched.
package arena

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"llace/internal/llaceerr"
)

// Ref is a stable, arena-relative reference to an element. Refs are
// zero-based: Sequence.Push returns 0 for the first element, so "no
// reference" is spelled InvalidRef rather than the zero value.
type Ref uint32

// InvalidRef is the sentinel for "no reference", matching the spec's
// convention that index/ref fields default to an explicit invalid
// marker rather than a valid-looking zero.
const InvalidRef Ref = ^Ref(0)

// Sequence is a generic, growable, append-only store, the Go realization
// of llace_array_t from mem.h. Unlike a bare Go slice, it preserves the
// original's distinct notion of count vs. capacity and never shrinks on
// Reserve, and it hands back stable Ref values instead of pointers.
type Sequence[T any] struct {
	items []T
}

// NewSequence creates a Sequence with the given initial capacity
// preallocated, mirroring llace_mem_newarray(element_size, capacity).
func NewSequence[T any](capacity int) *Sequence[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Sequence[T]{items: make([]T, 0, capacity)}
}

// Len returns the current element count (llace_array_t.element_count).
func (s *Sequence[T]) Len() int { return len(s.items) }

// Cap returns the current backing capacity (element_capacity).
func (s *Sequence[T]) Cap() int { return cap(s.items) }

// Reserve grows the backing storage to at least capacity elements. It
// never shrinks, matching llace_mem_reserve's one-directional contract.
func (s *Sequence[T]) Reserve(capacity int) {
	if capacity <= cap(s.items) {
		return
	}
	grown := make([]T, len(s.items), capacity)
	copy(grown, s.items)
	s.items = grown
}

// Push appends a value and returns its stable Ref (llace_mem_array_push).
func (s *Sequence[T]) Push(v T) Ref {
	s.items = append(s.items, v)
	return Ref(len(s.items) - 1)
}

// PushMany appends a slice of values in order, returning the Ref of the
// first pushed element (llace_mem_array_pusha).
func (s *Sequence[T]) PushMany(vs []T) Ref {
	if len(vs) == 0 {
		return InvalidRef
	}
	first := Ref(len(s.items))
	s.items = append(s.items, vs...)
	return first
}

// Get returns the element at ref, or an error if ref is out of range
// (llace_mem_array_get, with bounds checking the C version leaves to
// the caller).
func (s *Sequence[T]) Get(ref Ref) (T, error) {
	var zero T
	if int(ref) < 0 || int(ref) >= len(s.items) {
		return zero, llaceerr.Newf(llaceerr.BadArgument, "arena: ref %d out of range [0,%d)", ref, len(s.items))
	}
	return s.items[ref], nil
}

// MustGet is Get but panics on an out-of-range ref. Reserved for call
// sites that have already validated the ref (e.g. iterating 0..Len()).
func (s *Sequence[T]) MustGet(ref Ref) T {
	v, err := s.Get(ref)
	if err != nil {
		panic(err)
	}
	return v
}

// Set overwrites the element at ref in place. The arena is append-only
// with respect to entity creation, but individual fields of an already
// pushed entity (e.g. a Function gaining blocks as it's built) are
// mutated through this, matching how the original builds structs
// incrementally after the initial push.
func (s *Sequence[T]) Set(ref Ref, v T) error {
	if int(ref) < 0 || int(ref) >= len(s.items) {
		return llaceerr.Newf(llaceerr.BadArgument, "arena: ref %d out of range [0,%d)", ref, len(s.items))
	}
	s.items[ref] = v
	return nil
}

// Front returns the first element (llace_mem_array_front).
func (s *Sequence[T]) Front() (T, error) {
	return s.Get(0)
}

// Back returns the last element (llace_mem_array_back).
func (s *Sequence[T]) Back() (T, error) {
	if len(s.items) == 0 {
		var zero T
		return zero, llaceerr.New(llaceerr.BadArgument, "arena: back() on empty sequence")
	}
	return s.Get(Ref(len(s.items) - 1))
}

// IsEmpty reports whether the sequence holds no elements.
func (s *Sequence[T]) IsEmpty() bool { return len(s.items) == 0 }

// ForEach visits every element in Ref order, stopping early if fn
// returns false (the Go analog of LLACE_ARRAY_FOREACH).
func (s *Sequence[T]) ForEach(fn func(Ref, T) bool) {
	for i, v := range s.items {
		if !fn(Ref(i), v) {
			return
		}
	}
}

// Raw exposes the backing slice read-only, for callers that need a
// contiguous view (e.g. serialization), matching LLACE_ARRAY_RAW.
func (s *Sequence[T]) Raw() []T { return s.items }

// Clone returns a deep-enough copy sharing no backing array with s,
// useful when a collaborator (e.g. codegen) must not observe later
// mutation.
func (s *Sequence[T]) Clone() *Sequence[T] {
	return &Sequence[T]{items: slices.Clone(s.items)}
}

// Cell models llace_item_t: a single owned value, settable and
// clearable independently of any Sequence. Used for the handful of
// singleton allocations in the graph (e.g. a module's entry point)
// that don't belong in a growable array.
type Cell[T any] struct {
	data *T
}

// NewCell allocates a Cell holding v.
func NewCell[T any](v T) Cell[T] {
	vv := v
	return Cell[T]{data: &vv}
}

// Get returns the held value and whether the cell is occupied.
func (c Cell[T]) Get() (T, bool) {
	if c.data == nil {
		var zero T
		return zero, false
	}
	return *c.data, true
}

// Free clears the cell (llace_mem_free semantics: drop the reference so
// the value can be collected).
func (c *Cell[T]) Free() { c.data = nil }

// unsigned is a constraint alias kept local to arena for capacity-math
// helpers below; golang.org/x/exp/constraints.Unsigned covers it.
type unsigned interface {
	constraints.Unsigned
}

// CheckedCapacity multiplies elementSize by elementCount and returns an
// error instead of silently overflowing, mirroring the bounds discipline
// the spec requires of every size computation (§3.2's alignment/size
// arithmetic, generalized here to arena growth).
func CheckedCapacity[N unsigned](elementSize, elementCount N) (N, error) {
	if elementCount != 0 && elementSize > ^N(0)/elementCount {
		return 0, llaceerr.New(llaceerr.Overflow, "arena: capacity computation overflows")
	}
	return elementSize * elementCount, nil
}
