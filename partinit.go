// Package partinit projects typed pointers into composite values that are
// only partly initialized, and writes individual members of them.
//
// A composite under construction is held as an Uninit[T]. Paths (Path[T, U])
// name a member of T by field selectors and index selectors; they are built
// once and carry only the member's byte offset. The entry points then turn
// that offset into a handle:
//
//	Project     Ref[U]       read-only view, validity not asserted
//	ProjectMut  *Uninit[U]   mutable view, validity not asserted
//	Write       *U           stores v first, then asserts validity of v only
//
// Example:
//
//	type Inner struct {
//		Value1 uint8
//		Value2 struct {
//			A int32
//			B bool
//		}
//	}
//	type MyStruct struct {
//		Name  string
//		Inner Inner
//	}
//
//	var (
//		name   = partinit.Field(func(s *MyStruct) *string { return &s.Name })
//		value1 = partinit.MustParse[MyStruct, uint8]("Inner.Value1")
//		v2a    = partinit.MustParse[MyStruct, int32]("Inner.Value2.0")
//		v2b    = partinit.MustParse[MyStruct, bool]("Inner.Value2.1")
//	)
//
//	target := partinit.Alloc[MyStruct]()
//	partinit.Write(target, name, "Foo")
//	partinit.Write2(target, value1, 0xff, v2a, 1000)
//	partinit.Write(target, v2b, true)
//	s := target.AssumeInit()
//
// The package never records which members were written. Calling AssumeInit
// before every member is valid is the caller's mistake; the track package
// offers a debug bitmap for catching it. Two live mutable handles over
// overlapping members are likewise the caller's responsibility, except within
// a single batch call, where overlap is rejected.
package partinit

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rawbytedev/partinit/internal/layout"
)

// Uninit is storage sized and aligned for a T that is not asserted to hold a
// valid T. Its layout is identical to T's. The zero value is the
// uninitialized state.
type Uninit[T any] struct {
	value T
}

// New returns storage that already holds v.
func New[T any](v T) Uninit[T] {
	return Uninit[T]{value: v}
}

// Alloc returns fresh heap storage for a T.
func Alloc[T any]() *Uninit[T] {
	return new(Uninit[T])
}

// FromPtr reinterprets existing storage as uninitialized. Nothing is read or
// cleared; the memory simply stops being asserted valid.
func FromPtr[T any](p *T) *Uninit[T] {
	return (*Uninit[T])(unsafe.Pointer(p))
}

// At places a T at the start of buf. The buffer must be large enough, aligned
// for T, and T must be pointer-free because the garbage collector does not
// scan the contents of byte slices.
func At[T any](buf []byte) (*Uninit[T], error) {
	t := reflect.TypeFor[T]()
	if uintptr(len(buf)) < t.Size() {
		return nil, ErrShortBuffer
	}
	if !layout.PointerFree(t) {
		return nil, ErrHasPointers
	}
	if t.Size() == 0 {
		return new(Uninit[T]), nil
	}
	if !layout.Aligned(uintptr(unsafe.Pointer(&buf[0])), t) {
		return nil, ErrUnaligned
	}
	return (*Uninit[T])(unsafe.Pointer(&buf[0])), nil
}

// Ptr returns the raw address of the storage. Reading through it is only
// valid once the caller knows the bytes it reads are initialized.
func (u *Uninit[T]) Ptr() *T {
	return &u.value
}

// Write stores v and returns a pointer to the now valid value.
func (u *Uninit[T]) Write(v T) *T {
	u.value = v
	return &u.value
}

// AssumeInit returns a copy of the value. The caller asserts it is valid.
func (u *Uninit[T]) AssumeInit() T {
	return u.value
}

// AssumeInitPtr returns a pointer to the value. The caller asserts it is
// valid.
func (u *Uninit[T]) AssumeInitPtr() *T {
	return &u.value
}

// Ref is a read-only handle to storage that may not hold a valid T.
type Ref[T any] struct {
	u *Uninit[T]
}

// AssumeInit returns a copy of the referenced value. The caller asserts it is
// valid. It panics with ErrNilBase on the zero Ref.
func (r Ref[T]) AssumeInit() T {
	if r.u == nil {
		panic(fmt.Errorf("%w: zero Ref", ErrNilBase))
	}
	return r.u.value
}

// Addr is the address the handle refers to.
func (r Ref[T]) Addr() uintptr {
	return uintptr(unsafe.Pointer(r.u))
}
