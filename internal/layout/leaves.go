package layout

import (
	"reflect"
	"strings"
)

// Leaf is a member that is not itself expanded: a scalar, a reference-like
// value, or an array of non-composite elements.
type Leaf struct {
	Name   string
	Offset uintptr
	Size   uintptr
}

// Leaves flattens t into its leaf members in address order. Padding bytes
// belong to no leaf.
func Leaves(t reflect.Type) []Leaf {
	var out []Leaf
	walkLeaves(t, 0, nil, &out)
	return out
}

func walkLeaves(t reflect.Type, base uintptr, names []string, out *[]Leaf) {
	expand := t.Kind() == reflect.Struct ||
		(t.Kind() == reflect.Array && IsComposite(t.Elem()))
	if !expand || t.Size() == 0 {
		if t.Size() == 0 {
			return
		}
		*out = append(*out, Leaf{Name: strings.Join(names, "."), Offset: base, Size: t.Size()})
		return
	}
	plan, _ := Of(t)
	for i := 0; i < plan.Len(); i++ {
		m, _ := plan.At(i)
		walkLeaves(m.Type, base+m.Offset, append(names[:len(names):len(names)], m.Name), out)
	}
}

// PointerFree reports whether values of t contain no pointers the garbage
// collector would need to see.
func PointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || PointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !PointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
