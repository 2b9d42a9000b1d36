// Package c is the C ABI frontend type builder: it registers the
// standard C scalar types (bool, char, the int family, fixed-width
// intN_t/uintN_t, the float family, and void) into a Module, named
// "C@<type>" as the original does, parametrized by target word size.
package c

import (
	"llace/internal/config"
	"llace/internal/ir"
	"llace/internal/irtype"
	"llace/internal/llaceerr"
)

// addIntType mirrors src/builder/c.c's add_int_type: init a type,
// make it a signed integer of bitwidth bits, name it, and register it.
func addIntType(m *ir.Module, target irtype.Target, name string, bits uint64) (irtype.Ref, error) {
	nameRef, err := m.AddName(name)
	if err != nil {
		return 0, llaceerr.Wrap(llaceerr.BadArgument, err, "frontend/c: naming "+name)
	}
	t, err := irtype.NewInt(bits, target)
	if err != nil {
		return 0, err
	}
	t.Name = nameRef
	return m.AddType(t), nil
}

func addUintType(m *ir.Module, target irtype.Target, name string, bits uint64) (irtype.Ref, error) {
	nameRef, err := m.AddName(name)
	if err != nil {
		return 0, llaceerr.Wrap(llaceerr.BadArgument, err, "frontend/c: naming "+name)
	}
	t, err := irtype.NewUint(bits, target)
	if err != nil {
		return 0, err
	}
	t.Name = nameRef
	return m.AddType(t), nil
}

func addFloatType(m *ir.Module, target irtype.Target, name string, mantissa, exponent uint64) (irtype.Ref, error) {
	nameRef, err := m.AddName(name)
	if err != nil {
		return 0, llaceerr.Wrap(llaceerr.BadArgument, err, "frontend/c: naming "+name)
	}
	t := irtype.NewFloat(mantissa, exponent, target)
	t.Name = nameRef
	return m.AddType(t), nil
}

func addVoidType(m *ir.Module, name string) (irtype.Ref, error) {
	nameRef, err := m.AddName(name)
	if err != nil {
		return 0, llaceerr.Wrap(llaceerr.BadArgument, err, "frontend/c: naming "+name)
	}
	t := irtype.NewVoid()
	t.Name = nameRef
	return m.AddType(t), nil
}

// TypeRefs indexes every type RegisterTypes adds, by its "C@..." name
// stripped of the prefix (e.g. TypeRefs["int"] is C@int's Ref).
type TypeRefs map[string]irtype.Ref

// RegisterTypes registers the full C scalar type roster into m, sized
// for target, and returns a lookup table of what it added
// (llace_builderc_types). Unlike original_source/src/builder/c.c's
// 32-bit branch — which registers int/unsigned int at 16 bits, a known
// drafting bug — this implements the corrected table: char=8, short=16,
// int=32, long=32, long long=64 on a 32-bit target.
func RegisterTypes(m *ir.Module, target config.Target) (TypeRefs, error) {
	refs := make(TypeRefs)
	it := irtype.Target{PointerSize: target.PointerSizeBytes()}

	add := func(key string, ref irtype.Ref, err error) error {
		if err != nil {
			return err
		}
		refs[key] = ref
		return nil
	}

	wordSize := target.WordSize()

	var err error
	switch wordSize {
	case 32:
		err = registerTypesFor32(m, it, add)
	case 64:
		err = registerTypesFor64(m, it, add)
	default:
		return nil, llaceerr.Newf(llaceerr.InvalidArchitecture, "frontend/c: unsupported word size %d", wordSize)
	}
	if err != nil {
		return nil, err
	}

	if err := registerFixedWidthTypes(m, it, add); err != nil {
		return nil, err
	}
	if err := registerFloatAndVoidTypes(m, it, add); err != nil {
		return nil, err
	}

	return refs, nil
}

func registerTypesFor32(m *ir.Module, target irtype.Target, add func(string, irtype.Ref, error) error) error {
	if err := add("bool", addUintType(m, target, "C@bool", 1)); err != nil {
		return err
	}
	if err := add("char", addIntType(m, target, "C@char", 8)); err != nil {
		return err
	}
	if err := add("unsigned char", addUintType(m, target, "C@unsigned char", 8)); err != nil {
		return err
	}
	if err := add("short", addIntType(m, target, "C@short", 16)); err != nil {
		return err
	}
	if err := add("unsigned short", addUintType(m, target, "C@unsigned short", 16)); err != nil {
		return err
	}
	if err := add("int", addIntType(m, target, "C@int", 32)); err != nil {
		return err
	}
	if err := add("unsigned int", addUintType(m, target, "C@unsigned int", 32)); err != nil {
		return err
	}
	if err := add("long", addIntType(m, target, "C@long", 32)); err != nil {
		return err
	}
	if err := add("unsigned long", addUintType(m, target, "C@unsigned long", 32)); err != nil {
		return err
	}
	if err := add("long long", addIntType(m, target, "C@long long", 64)); err != nil {
		return err
	}
	return add("unsigned long long", addUintType(m, target, "C@unsigned long long", 64))
}

func registerTypesFor64(m *ir.Module, target irtype.Target, add func(string, irtype.Ref, error) error) error {
	if err := add("bool", addUintType(m, target, "C@bool", 1)); err != nil {
		return err
	}
	if err := add("char", addIntType(m, target, "C@char", 8)); err != nil {
		return err
	}
	if err := add("unsigned char", addUintType(m, target, "C@unsigned char", 8)); err != nil {
		return err
	}
	if err := add("short", addIntType(m, target, "C@short", 16)); err != nil {
		return err
	}
	if err := add("unsigned short", addUintType(m, target, "C@unsigned short", 16)); err != nil {
		return err
	}
	if err := add("int", addIntType(m, target, "C@int", 32)); err != nil {
		return err
	}
	if err := add("unsigned int", addUintType(m, target, "C@unsigned int", 32)); err != nil {
		return err
	}
	if err := add("long", addIntType(m, target, "C@long", 64)); err != nil {
		return err
	}
	if err := add("unsigned long", addUintType(m, target, "C@unsigned long", 64)); err != nil {
		return err
	}
	if err := add("long long", addIntType(m, target, "C@long long", 64)); err != nil {
		return err
	}
	return add("unsigned long long", addUintType(m, target, "C@unsigned long long", 64))
}

func registerFixedWidthTypes(m *ir.Module, target irtype.Target, add func(string, irtype.Ref, error) error) error {
	widths := []struct {
		key  string
		name string
		bits uint64
	}{
		{"int8_t", "C@int8_t", 8}, {"uint8_t", "C@uint8_t", 8},
		{"int16_t", "C@int16_t", 16}, {"uint16_t", "C@uint16_t", 16},
		{"int32_t", "C@int32_t", 32}, {"uint32_t", "C@uint32_t", 32},
		{"int64_t", "C@int64_t", 64}, {"uint64_t", "C@uint64_t", 64},
	}
	for _, w := range widths {
		var ref irtype.Ref
		var err error
		if w.name[2] == 'u' {
			ref, err = addUintType(m, target, w.name, w.bits)
		} else {
			ref, err = addIntType(m, target, w.name, w.bits)
		}
		if err := add(w.key, ref, err); err != nil {
			return err
		}
	}
	return nil
}

func registerFloatAndVoidTypes(m *ir.Module, target irtype.Target, add func(string, irtype.Ref, error) error) error {
	if err := add("float", addFloatType(m, target, "C@float", 23, 8)); err != nil {
		return err
	}
	if err := add("double", addFloatType(m, target, "C@double", 52, 11)); err != nil {
		return err
	}
	if err := add("long double", addFloatType(m, target, "C@long double", 52, 11)); err != nil {
		return err
	}
	return add("void", addVoidType(m, "C@void"))
}

// GetType performs the original's llace_builderc64_gettype: a linear
// scan of the module's type arena for a type registered under name.
func GetType(m *ir.Module, name string) (irtype.Type, bool) {
	ref, ok := m.FindType(name)
	if !ok {
		return irtype.Type{}, false
	}
	t, err := m.GetType(ref)
	if err != nil {
		return irtype.Type{}, false
	}
	return t, true
}

// GetTypeRef performs the original's llace_builderc64_gettype_ref.
func GetTypeRef(m *ir.Module, name string) (irtype.Ref, bool) {
	return m.FindType(name)
}
