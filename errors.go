package partinit

import (
	"errors"

	"github.com/rawbytedev/partinit/internal/layout"
)

var (
	ErrEmptyPath    = errors.New("partinit: empty path")
	ErrNilBase      = errors.New("partinit: nil base")
	ErrEscapes      = errors.New("partinit: selector does not address a member of its argument")
	ErrTypeMismatch = errors.New("partinit: path type mismatch")
	ErrOverlap      = errors.New("partinit: overlapping paths")
	ErrShortBuffer  = errors.New("partinit: buffer too small")
	ErrUnaligned    = errors.New("partinit: buffer not aligned")
	ErrHasPointers  = errors.New("partinit: type contains pointers")

	ErrNotComposite = layout.ErrNotComposite
	ErrNoField      = layout.ErrNoField
	ErrUnexported   = layout.ErrUnexported
	ErrIndexRange   = layout.ErrIndexRange
)
