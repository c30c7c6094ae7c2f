// Package track layers a debug-only validity bitmap over partinit.
//
// A Tracker remembers which bytes of its base were written through it or
// asserted by the caller, and refuses AssumeInit until every member is
// covered. It costs a bitmap per base and a log call per write, so it belongs
// in tests and debug builds.
package track

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/rawbytedev/partinit"
	"github.com/rawbytedev/partinit/internal/layout"
)

var ErrIncomplete = errors.New("track: value not fully initialized")

// Mode is the validity mode of a base location.
type Mode uint8

const (
	// Uninitialized: no byte may be assumed valid.
	Uninitialized Mode = iota
	// PartiallyUnknown: the whole value may not be assumed valid, but the
	// caller asserts selected members with Assert.
	PartiallyUnknown
)

func (m Mode) String() string {
	switch m {
	case Uninitialized:
		return "uninitialized"
	case PartiallyUnknown:
		return "partially-unknown"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

type options struct {
	logger *slog.Logger
	mode   Mode
}

type Option func(*options)

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

type Tracker[T any] struct {
	base   *partinit.Uninit[T]
	mode   Mode
	size   uintptr
	valid  []uint64
	leaves []layout.Leaf
	logger *slog.Logger
}

// New starts tracking base. Every byte starts out unknown, whatever the mode.
func New[T any](base *partinit.Uninit[T], opts ...Option) *Tracker[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	t := reflect.TypeFor[T]()
	return &Tracker[T]{
		base:   base,
		mode:   o.mode,
		size:   t.Size(),
		valid:  make([]uint64, (t.Size()+63)/64),
		leaves: layout.Leaves(t),
		logger: o.logger.With(slog.String("type", t.String()), slog.String("mode", o.mode.String())),
	}
}

func (t *Tracker[T]) Base() *partinit.Uninit[T] { return t.base }

func (t *Tracker[T]) Mode() Mode { return t.mode }

// Write stores v through partinit.Write and marks the member valid.
func Write[T, U any](t *Tracker[T], p partinit.Path[T, U], v U) *U {
	dst := partinit.Write(t.base, p, v)
	t.mark(p.Offset(), p.Size())
	t.logger.Debug("member written",
		slog.String("path", p.String()),
		slog.Uint64("offset", uint64(p.Offset())),
		slog.Uint64("size", uint64(p.Size())))
	return dst
}

// Assert records that the caller initialized the given members by other
// means, for instance through a handle from partinit.ProjectMut.
func (t *Tracker[T]) Assert(spans ...partinit.Span) {
	for _, s := range spans {
		t.mark(s.Offset(), s.Size())
		t.logger.Debug("member asserted", slog.String("path", s.String()))
	}
}

// Valid reports whether every byte of s is known to be valid.
func (t *Tracker[T]) Valid(s partinit.Span) bool {
	return t.covered(s.Offset(), s.Size())
}

// Missing lists the leaf members that still hold unknown bytes, in address
// order.
func (t *Tracker[T]) Missing() []string {
	var out []string
	for _, l := range t.leaves {
		if !t.covered(l.Offset, l.Size) {
			name := l.Name
			if name == "" {
				name = "(value)"
			}
			out = append(out, name)
		}
	}
	return out
}

// AssumeInit returns the value once every member is valid.
func (t *Tracker[T]) AssumeInit() (T, error) {
	if missing := t.Missing(); len(missing) > 0 {
		var zero T
		t.logger.Warn("assume init refused", slog.Any("missing", missing))
		return zero, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return t.base.AssumeInit(), nil
}

func (t *Tracker[T]) mark(off, size uintptr) {
	end := min(off+size, t.size)
	for i := off; i < end; i++ {
		t.valid[i/64] |= 1 << (i % 64)
	}
}

func (t *Tracker[T]) covered(off, size uintptr) bool {
	end := min(off+size, t.size)
	for i := off; i < end; i++ {
		if t.valid[i/64]&(1<<(i%64)) == 0 {
			return false
		}
	}
	return true
}
