package partinit

import (
	"fmt"
	"strings"
)

// Span is a byte range inside a composite, together with the path that names
// it. Every Path is a Span.
type Span interface {
	Offset() uintptr
	Size() uintptr
	String() string
}

type span struct {
	off   uintptr
	size  uintptr
	names []string
	anon  bool
}

func (p Path[T, U]) span() span {
	return span{off: p.off, size: p.size, names: p.names, anon: p.anon}
}

// CheckDisjoint reports whether mutable handles to all spans may be held at
// the same time. It fails when a path repeats, when one path is a prefix of
// another, or when two byte ranges intersect. Paths whose names do not
// identify their member (the "@<offset>" ones) are compared by bytes only.
func CheckDisjoint(spans ...Span) error {
	ss := make([]span, len(spans))
	for i, s := range spans {
		if p, ok := s.(interface{ span() span }); ok {
			ss[i] = p.span()
			continue
		}
		ss[i] = span{off: s.Offset(), size: s.Size(), names: strings.Split(s.String(), ".")}
	}
	return disjoint(ss)
}

func mustDisjoint(spans ...span) {
	if err := disjoint(spans); err != nil {
		panic(err)
	}
}

func disjoint(spans []span) error {
	for i := 0; i < len(spans); i++ {
		if len(spans[i].names) == 0 {
			return ErrEmptyPath
		}
		for j := 0; j < len(spans); j++ {
			if i != j {
				if err := conflict(spans[i], spans[j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// conflict reports a against b; the parent case is only reported when a is
// the parent, the pair is visited again with the roles swapped.
func conflict(a, b span) error {
	if a.anon || b.anon {
		return overlapBytes(a, b)
	}
	if hasPrefix(b.names, a.names) {
		if len(a.names) == len(b.names) {
			return fmt.Errorf("%w: cannot mutably borrow %q more than once at a time",
				ErrOverlap, join(a.names))
		}
		return fmt.Errorf("%w: cannot mutably borrow %q and its parent %q at the same time",
			ErrOverlap, join(b.names), join(a.names))
	}
	if hasPrefix(a.names, b.names) {
		return nil
	}
	return overlapBytes(a, b)
}

func overlapBytes(a, b span) error {
	if a.off < b.off+b.size && b.off < a.off+a.size {
		return fmt.Errorf("%w: %q and %q share bytes", ErrOverlap, join(a.names), join(b.names))
	}
	return nil
}

func hasPrefix(s, prefix []string) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func join(names []string) string {
	return strings.Join(names, ".")
}
