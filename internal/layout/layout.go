// Package layout describes the memory layout of Go composite types.
//
// Plans are computed with reflect once per type and cached. Nothing here is
// used while resolving an address; paths consult the cache when they are
// built and keep only the resulting offset.
package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

var (
	ErrNotComposite = errors.New("not a struct or array")
	ErrNoField      = errors.New("no such field")
	ErrUnexported   = errors.New("unexported field")
	ErrIndexRange   = errors.New("index out of range")
)

// Member is one direct member of a struct or array type.
type Member struct {
	Name     string
	Index    int
	Offset   uintptr
	Size     uintptr
	Align    uintptr
	Type     reflect.Type
	Exported bool
}

// Plan is the member table of a single composite type.
type Plan struct {
	Type    reflect.Type
	Size    uintptr
	Align   uintptr
	Members []Member // struct fields in declaration order; empty for arrays
	byName  map[string]int
	elem    reflect.Type
	length  int
}

type Cache struct {
	mu    sync.RWMutex
	plans map[reflect.Type]*Plan
}

func NewCache() *Cache {
	return &Cache{plans: make(map[reflect.Type]*Plan)}
}

var defaultCache = NewCache()

// Of returns the cached plan for t from the package cache.
func Of(t reflect.Type) (*Plan, error) {
	return defaultCache.Get(t)
}

func (c *Cache) Get(t reflect.Type) (*Plan, error) {
	if !IsComposite(t) {
		return nil, fmt.Errorf("%v: %w", t, ErrNotComposite)
	}
	c.mu.RLock()
	if plan, ok := c.plans[t]; ok {
		c.mu.RUnlock()
		return plan, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if plan, ok := c.plans[t]; ok {
		return plan, nil
	}
	plan := build(t)
	c.plans[t] = plan
	return plan, nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}

func IsComposite(t reflect.Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == reflect.Struct || k == reflect.Array
}

func build(t reflect.Type) *Plan {
	plan := &Plan{
		Type:  t,
		Size:  t.Size(),
		Align: uintptr(t.Align()),
	}
	if t.Kind() == reflect.Array {
		plan.elem = t.Elem()
		plan.length = t.Len()
		return plan
	}
	plan.byName = make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		plan.Members = append(plan.Members, Member{
			Name:     sf.Name,
			Index:    i,
			Offset:   sf.Offset,
			Size:     sf.Type.Size(),
			Align:    uintptr(sf.Type.Align()),
			Type:     sf.Type,
			Exported: sf.IsExported(),
		})
		if sf.Name != "_" {
			plan.byName[sf.Name] = i
		}
	}
	return plan
}

// Len is the number of positional members: array length or field count.
func (p *Plan) Len() int {
	if p.Type.Kind() == reflect.Array {
		return p.length
	}
	return len(p.Members)
}

// At returns positional member i. For arrays the member is synthesized from
// the element type.
func (p *Plan) At(i int) (Member, error) {
	if i < 0 || i >= p.Len() {
		return Member{}, fmt.Errorf("%v[%d] (len %d): %w", p.Type, i, p.Len(), ErrIndexRange)
	}
	if p.Type.Kind() == reflect.Array {
		sz := p.elem.Size()
		return Member{
			Name:     strconv.Itoa(i),
			Index:    i,
			Offset:   uintptr(i) * sz,
			Size:     sz,
			Align:    uintptr(p.elem.Align()),
			Type:     p.elem,
			Exported: true,
		}, nil
	}
	return p.Members[i], nil
}

// Lookup resolves a single textual segment: a field name, or a decimal
// position for arrays and tuple-like structs.
func (p *Plan) Lookup(seg string) (Member, error) {
	if isIndex(seg) {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return Member{}, fmt.Errorf("%v[%s]: %w", p.Type, seg, ErrIndexRange)
		}
		return p.At(n)
	}
	if p.Type.Kind() == reflect.Array {
		return Member{}, fmt.Errorf("%v has no field %q: %w", p.Type, seg, ErrNoField)
	}
	i, ok := p.byName[seg]
	if !ok {
		return Member{}, fmt.Errorf("%v has no field %q: %w", p.Type, seg, ErrNoField)
	}
	return p.Members[i], nil
}

// isIndex accepts plain decimal positions: digits only, no sign, no leading
// zero.
func isIndex(seg string) bool {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// Locate finds the chain of member names leading from t to a member of type
// u at byte offset off; ok is false when no member chain ends there. The
// first chain in declaration order wins.
func Locate(t reflect.Type, off uintptr, u reflect.Type) (names []string, ok bool) {
	chains := LocateAll(t, off, u)
	if len(chains) == 0 {
		return nil, false
	}
	return chains[0], true
}

// LocateAll returns every member chain from t to a member of type u at byte
// offset off, in declaration order. More than one chain only happens with
// zero-size members, which share their offset with their neighbours.
func LocateAll(t reflect.Type, off uintptr, u reflect.Type) [][]string {
	if off == 0 && t == u {
		return [][]string{nil}
	}
	if !IsComposite(t) {
		return nil
	}
	plan, err := Of(t)
	if err != nil {
		return nil
	}
	lo, hi := 0, plan.Len()
	if t.Kind() == reflect.Array && plan.elem.Size() > 0 {
		lo = int(off / plan.elem.Size())
		hi = min(lo+1, hi)
	}
	var out [][]string
	for i := lo; i < hi; i++ {
		m, _ := plan.At(i)
		if off < m.Offset || off > m.Offset+m.Size {
			continue
		}
		if off == m.Offset+m.Size && m.Size != 0 {
			continue
		}
		for _, rest := range LocateAll(m.Type, off-m.Offset, u) {
			out = append(out, append([]string{m.Name}, rest...))
		}
	}
	return out
}

// Alignment mirrors the alignment table of fixed-width kinds and falls back to
// the runtime alignment for everything else.
func Alignment(t reflect.Type) uintptr {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8, reflect.Bool:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	default:
		return uintptr(t.Align())
	}
}

// Aligned reports whether addr is suitably aligned for a value of type t.
func Aligned(addr uintptr, t reflect.Type) bool {
	return addr%Alignment(t) == 0
}
