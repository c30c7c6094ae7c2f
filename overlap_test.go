package partinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDisjoint(t *testing.T) {
	require.NoError(t, CheckDisjoint(fooA, fooB0, fooB10, fooB11, fooB2))
	require.NoError(t, CheckDisjoint(fooA))
	require.NoError(t, CheckDisjoint())

	err := CheckDisjoint(fooA, fooB2, fooA)
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), `cannot mutably borrow "A" more than once at a time`)

	err = CheckDisjoint(fooB10, fooB1)
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), `cannot mutably borrow "B.F1.F0" and its parent "B.F1" at the same time`)

	err = CheckDisjoint(fooBB, fooB11)
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), `its parent "B"`)
}

func TestCheckDisjointByBytes(t *testing.T) {
	// two differently named views of the same bytes
	whole := Field(func(f *flat) *[3]uint32 { return &f.Vals })
	alias := Field(func(f *flat) *[2]uint32 { return (*[2]uint32)(f.Vals[1:]) })
	require.Equal(t, "@8", alias.String())

	err := CheckDisjoint(alias, MustParse[flat, uint32]("Vals.2"))
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), "share bytes")

	err = CheckDisjoint(alias, whole)
	require.ErrorIs(t, err, ErrOverlap)

	require.NoError(t, CheckDisjoint(alias, MustParse[flat, uint32]("Vals.0")))
}

type namedSpan struct {
	name      string
	off, size uintptr
}

func (s namedSpan) Offset() uintptr { return s.off }
func (s namedSpan) Size() uintptr   { return s.size }
func (s namedSpan) String() string  { return s.name }

func TestCheckDisjointForeignSpans(t *testing.T) {
	require.NoError(t, CheckDisjoint(namedSpan{"a", 0, 4}, namedSpan{"b", 4, 4}))
	require.ErrorIs(t, CheckDisjoint(namedSpan{"a", 0, 4}, namedSpan{"a.x", 0, 1}), ErrOverlap)
	require.ErrorIs(t, CheckDisjoint(namedSpan{"a", 0, 4}, namedSpan{"b", 2, 4}), ErrOverlap)
	require.NoError(t, CheckDisjoint(fooA, namedSpan{"B", fooBB.Offset(), fooBB.Size()}))
}

func TestBatchRejectsOverlapBeforeWriting(t *testing.T) {
	x := New(foo{A: 1, B: fooB{F0: 2, F2: "keep"}})

	err := recoverErr(t, func() {
		Write3(&x, fooA, 5, fooB2, "changed", fooA, 6)
	})
	require.ErrorIs(t, err, ErrOverlap)
	assert.Equal(t, foo{A: 1, B: fooB{F0: 2, F2: "keep"}}, x.AssumeInit())

	err = recoverErr(t, func() {
		ProjectMut2(&x, fooBB, fooB2)
	})
	require.ErrorIs(t, err, ErrOverlap)

	err = recoverErr(t, func() {
		Write2(&x, Path[foo, uint]{}, 1, fooB0, 2)
	})
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestProjectAllowsOverlap(t *testing.T) {
	x := New(foo{A: 3, B: fooB{F0: 4}})
	b, b0 := Project2(&x, fooBB, fooB0)
	assert.Equal(t, int32(4), b.AssumeInit().F0)
	assert.Equal(t, int32(4), b0.AssumeInit())
	assert.Equal(t, b.Addr()+fooB0.Offset()-fooBB.Offset(), b0.Addr())
}
