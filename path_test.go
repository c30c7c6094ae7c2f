package partinit

import (
	"testing"
	"testing/quick"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recoverErr runs f and returns the error it panicked with.
func recoverErr(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		e, ok := r.(error)
		require.Truef(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	f()
	return nil
}

func TestPathNames(t *testing.T) {
	assert.Equal(t, "Name", msName.String())
	assert.Equal(t, "Inner.Value1", msValue1.String())
	assert.Equal(t, "Inner.Value2.A", msValue2A.String())
	assert.Equal(t, "Inner.Value2.B", msValue2B.String())
	assert.Equal(t, []string{"Inner", "Value2", "B"}, msValue2B.Segments())
	assert.Equal(t, 3, msValue2B.Len())

	deep := Field(func(s *myStruct) *int32 { return &s.Inner.Value2.A })
	assert.Equal(t, msValue2A, deep)

	arr := Field(func(a *[4]pair) *bool { return &a[2].B })
	assert.Equal(t, "2.B", arr.String())
}

func TestPathOffsets(t *testing.T) {
	var s myStruct
	assert.Equal(t, unsafe.Offsetof(s.Name), msName.Offset())
	assert.Equal(t, unsafe.Offsetof(s.Inner)+unsafe.Offsetof(s.Inner.Value2)+unsafe.Offsetof(s.Inner.Value2.B), msValue2B.Offset())
	assert.Equal(t, unsafe.Sizeof(s.Inner.Value2.A), msValue2A.Size())
	assert.Equal(t, unsafe.Sizeof(s.Inner), MustParse[myStruct, inner]("Inner").Size())
}

type rec struct {
	A uint8
	B uint64
	C [3]uint16
}

var recC = Field(func(r *rec) *[3]uint16 { return &r.C })

func TestResolveMatchesManualOffsets(t *testing.T) {
	var arr [16]rec
	var r rec
	base := uintptr(unsafe.Pointer(&arr))
	condition := func(i, j uint8) bool {
		ei, ej := int(i%16), int(j%3)
		p := Join(Index[[16]rec, rec](ei), Join(recC, Index[[3]uint16, uint16](ej)))
		got := uintptr(unsafe.Pointer(Resolve(&arr, p)))
		want := base + uintptr(ei)*unsafe.Sizeof(r) + unsafe.Offsetof(r.C) + uintptr(ej)*2
		return got == want && Resolve(&arr, p) == &arr[ei].C[ej]
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 500}))
}

func TestResolveFromEveryBase(t *testing.T) {
	var arr [16]rec
	for i := range arr {
		require.Same(t, &arr[i].C[1], Resolve(&arr[i], Join(recC, Index[[3]uint16, uint16](1))))
	}
}

func TestJoinIsNesting(t *testing.T) {
	x := Alloc[foo]()
	whole := MustParse[foo, int8]("B.F1.F1")
	split := Resolve(Resolve(Resolve(x.Ptr(), fooBB), MustParse[fooB, small]("F1")), MustParse[small, int8]("F1"))
	require.Same(t, split, Resolve(x.Ptr(), whole))
	require.Equal(t, whole, Join(fooBB, MustParse[fooB, int8]("1.1")))
	require.Equal(t, whole, Join(Join(fooBB, MustParse[fooB, small]("F1")), Index[small, int8](1)))
}

type hidden struct {
	Open   int
	closed int
}

func TestParseErrors(t *testing.T) {
	_, err := Parse[myStruct, string]("")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = Parse[myStruct, string]("  ")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = Parse[myStruct, string]("Nope")
	require.ErrorIs(t, err, ErrNoField)

	_, err = Parse[myStruct, uint8]("Inner..Value1")
	require.ErrorIs(t, err, ErrNoField)

	_, err = Parse[myStruct, uint8]("Inner.Value1.X")
	require.ErrorIs(t, err, ErrNotComposite)

	_, err = Parse[myStruct, int32]("Inner.Value2.5")
	require.ErrorIs(t, err, ErrIndexRange)

	_, err = Parse[myStruct, int64]("Inner.Value2.A")
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Parse[hidden, int]("closed")
	require.ErrorIs(t, err, ErrUnexported)

	_, err = Parse[[4]int32, int32]("+2")
	require.ErrorIs(t, err, ErrNoField)

	_, err = Parse[[4]int32, int32]("02")
	require.ErrorIs(t, err, ErrNoField)

	_, err = Parse[[4]int32, int32]("99999999999999999999")
	require.ErrorIs(t, err, ErrIndexRange)

	_, err = Parse[[4]pair, bool]("4.B")
	require.ErrorIs(t, err, ErrIndexRange)

	p, err := Parse[[4]pair, bool]("3.B")
	require.NoError(t, err)
	var pr pair
	require.Equal(t, 3*unsafe.Sizeof(pr)+unsafe.Offsetof(pr.B), p.Offset())
}

func TestFieldReachesUnexported(t *testing.T) {
	p := Field(func(h *hidden) *int { return &h.closed })
	require.Equal(t, "closed", p.String())
	h := hidden{Open: 1, closed: 2}
	require.Equal(t, 2, *Resolve(&h, p))
}

type withPtr struct {
	P *pair
}

var global int32

func TestFieldRejectsEscapingSelectors(t *testing.T) {
	err := recoverErr(t, func() {
		Field(func(w *withPtr) *int32 { return &w.P.A })
	})
	require.ErrorIs(t, err, ErrEscapes)

	err = recoverErr(t, func() {
		Field(func(*pair) *int32 { return &global })
	})
	require.ErrorIs(t, err, ErrEscapes)

	err = recoverErr(t, func() {
		Field(func(*pair) *int32 { return nil })
	})
	require.ErrorIs(t, err, ErrEscapes)

	err = recoverErr(t, func() {
		Field(func(p *pair) *pair { return p })
	})
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestIndexPanics(t *testing.T) {
	err := recoverErr(t, func() { Index[pair, int32](2) })
	require.ErrorIs(t, err, ErrIndexRange)

	err = recoverErr(t, func() { Index[pair, bool](0) })
	require.ErrorIs(t, err, ErrTypeMismatch)

	err = recoverErr(t, func() { Index[int, int](0) })
	require.ErrorIs(t, err, ErrNotComposite)

	err = recoverErr(t, func() { Index[hidden, int](1) })
	require.ErrorIs(t, err, ErrUnexported)
}

func TestZeroPathPanics(t *testing.T) {
	var p Path[pair, int32]
	x := Alloc[pair]()
	err := recoverErr(t, func() { Resolve(x.Ptr(), p) })
	require.ErrorIs(t, err, ErrEmptyPath)

	err = recoverErr(t, func() { Join(Path[foo, fooB]{}, MustParse[fooB, int32]("F0")) })
	require.ErrorIs(t, err, ErrEmptyPath)

	err = recoverErr(t, func() { Resolve((*pair)(nil), Index[pair, int32](0)) })
	require.ErrorIs(t, err, ErrNilBase)
}

type markers struct {
	A, B struct{}
	C    int64
}

func TestFieldZeroSizeSiblings(t *testing.T) {
	a := Field(func(m *markers) *struct{} { return &m.A })
	b := Field(func(m *markers) *struct{} { return &m.B })
	c := Field(func(m *markers) *int64 { return &m.C })

	// A and B share an address, neither name can be told apart
	assert.Equal(t, "@0", b.String())
	assert.Equal(t, "C", c.String())

	require.NoError(t, CheckDisjoint(a, b, c))
	require.NoError(t, CheckDisjoint(a, MustParse[markers, struct{}]("B")))

	x := Alloc[markers]()
	_, _, pc := Write3(x, a, struct{}{}, b, struct{}{}, c, 7)
	assert.Equal(t, int64(7), *pc)
	ua, ub := ProjectMut2(x, a, b)
	*ua, *ub = New(struct{}{}), New(struct{}{})
	assert.Equal(t, int64(7), x.AssumeInit().C)
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"Inner.Value2.A", "Inner => Value2 => 0", "Name", "Inner..", "1.1.0", ""} {
		f.Add(seed)
	}
	var s myStruct
	f.Fuzz(func(t *testing.T, expr string) {
		p, err := Parse[myStruct, int32](expr)
		if err != nil {
			return
		}
		require.LessOrEqual(t, p.Offset()+p.Size(), unsafe.Sizeof(s))
		again, err := Parse[myStruct, int32](p.String())
		require.NoError(t, err)
		require.Equal(t, p, again)
		require.Same(t, &s.Inner.Value2.A, Resolve(&s, p))
	})
}
