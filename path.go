package partinit

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/rawbytedev/partinit/internal/layout"
)

// Path names a member of type U inside a T. It holds the member's byte
// offset, computed once when the path is built; resolving a path never reads
// the memory it walks through.
//
// The zero Path is invalid.
type Path[T, U any] struct {
	off   uintptr
	size  uintptr
	names []string
	anon  bool // names do not identify the member
}

// Offset is the byte offset of the member from the start of a T.
func (p Path[T, U]) Offset() uintptr { return p.off }

// Size is the byte size of the member.
func (p Path[T, U]) Size() uintptr { return p.size }

// Len is the number of segments.
func (p Path[T, U]) Len() int { return len(p.names) }

// Segments returns the segment names in order.
func (p Path[T, U]) Segments() []string {
	return append([]string(nil), p.names...)
}

func (p Path[T, U]) String() string {
	return strings.Join(p.names, ".")
}

// Field builds a path from a selector such as
//
//	func(p *Person) *uint32 { return &p.Age }
//
// The selector is called exactly once, on a zero probe, to learn the member
// offset. It must return the address of a member of its argument without
// following pointers; otherwise Field panics with an error wrapping
// ErrEscapes. A selector returning its argument panics with ErrEmptyPath.
func Field[T, U any](sel func(*T) *U) Path[T, U] {
	t, u := reflect.TypeFor[T](), reflect.TypeFor[U]()
	off, err := probeOffset(sel)
	if err != nil {
		panic(fmt.Errorf("%w: %v -> %v: %v", ErrEscapes, t, u, err))
	}
	if off > t.Size() || u.Size() > t.Size()-off {
		panic(fmt.Errorf("%w: %v -> %v (offset %d)", ErrEscapes, t, u, off))
	}
	if off == 0 && t == u {
		panic(fmt.Errorf("%w: selector returns its argument", ErrEmptyPath))
	}
	chains := layout.LocateAll(t, off, u)
	if len(chains) != 1 {
		return Path[T, U]{off: off, size: u.Size(), names: []string{"@" + strconv.FormatUint(uint64(off), 10)}, anon: true}
	}
	return Path[T, U]{off: off, size: u.Size(), names: chains[0]}
}

func probeOffset[T, U any](sel func(*T) *U) (off uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("selector panicked: %v", r)
		}
	}()
	probe := new(T)
	q := sel(probe)
	if q == nil {
		return 0, errors.New("selector returned nil")
	}
	return uintptr(unsafe.Pointer(q)) - uintptr(unsafe.Pointer(probe)), nil
}

// Index builds a one-segment path to element i of array type A, or to the
// i-th field of a tuple-like struct A. It panics if A has no such member or
// the member is not an E.
func Index[A, E any](i int) Path[A, E] {
	a, e := reflect.TypeFor[A](), reflect.TypeFor[E]()
	plan, err := layout.Of(a)
	if err != nil {
		panic(fmt.Errorf("partinit: index %d: %w", i, err))
	}
	m, err := plan.At(i)
	if err != nil {
		panic(fmt.Errorf("partinit: %w", err))
	}
	if !m.Exported {
		panic(fmt.Errorf("partinit: %v[%d] %s: %w", a, i, m.Name, ErrUnexported))
	}
	if m.Type != e {
		panic(fmt.Errorf("%w: %v[%d] is %v, not %v", ErrTypeMismatch, a, i, m.Type, e))
	}
	return Path[A, E]{off: m.Offset, size: m.Size, names: []string{m.Name}}
}

// Parse builds a path from a dotted expression such as "Inner.Value2.0".
// Numeric segments select array elements or positional struct fields. The
// separator "=>" is accepted as an alias for ".". Unexported fields can only
// be reached through Field.
func Parse[T, U any](expr string) (Path[T, U], error) {
	segs, err := splitPath(expr)
	if err != nil {
		return Path[T, U]{}, err
	}
	t := reflect.TypeFor[T]()
	var off uintptr
	names := make([]string, 0, len(segs))
	for _, seg := range segs {
		plan, err := layout.Of(t)
		if err != nil {
			return Path[T, U]{}, fmt.Errorf("partinit: %q at %q: %w", expr, seg, err)
		}
		m, err := plan.Lookup(seg)
		if err != nil {
			return Path[T, U]{}, fmt.Errorf("partinit: %q: %w", expr, err)
		}
		if !m.Exported {
			return Path[T, U]{}, fmt.Errorf("partinit: %q: %s: %w", expr, seg, ErrUnexported)
		}
		off += m.Offset
		t = m.Type
		names = append(names, m.Name)
	}
	if u := reflect.TypeFor[U](); t != u {
		return Path[T, U]{}, fmt.Errorf("%w: %q is %v, not %v", ErrTypeMismatch, expr, t, u)
	}
	return Path[T, U]{off: off, size: t.Size(), names: names}, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// path variables.
func MustParse[T, U any](expr string) Path[T, U] {
	p, err := Parse[T, U](expr)
	if err != nil {
		panic(err)
	}
	return p
}

func splitPath(expr string) ([]string, error) {
	expr = strings.ReplaceAll(expr, "=>", ".")
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyPath
	}
	segs := strings.Split(expr, ".")
	for i, s := range segs {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("partinit: empty segment in %q: %w", expr, ErrNoField)
		}
		segs[i] = s
	}
	return segs, nil
}

// Join appends b to a. Resolving the result is the same as resolving a and
// then resolving b from there.
func Join[T, U, V any](a Path[T, U], b Path[U, V]) Path[T, V] {
	if a.Len() == 0 || b.Len() == 0 {
		panic(ErrEmptyPath)
	}
	names := make([]string, 0, len(a.names)+len(b.names))
	names = append(append(names, a.names...), b.names...)
	return Path[T, V]{off: a.off + b.off, size: b.size, names: names, anon: a.anon || b.anon}
}

// Resolve returns the address of the member p names inside *base. Nothing is
// read; base may point at storage that holds no valid T. A nil base panics
// with ErrNilBase.
func Resolve[T, U any](base *T, p Path[T, U]) *U {
	if base == nil {
		panic(ErrNilBase)
	}
	if len(p.names) == 0 {
		panic(ErrEmptyPath)
	}
	return (*U)(unsafe.Add(unsafe.Pointer(base), p.off))
}
