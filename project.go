package partinit

import "unsafe"

func addr[T, U any](base *Uninit[T], p Path[T, U]) unsafe.Pointer {
	return unsafe.Pointer(Resolve(&base.value, p))
}

// Project returns a read-only handle to the member p names. Nothing is read
// or written.
func Project[T, U any](base *Uninit[T], p Path[T, U]) Ref[U] {
	return Ref[U]{u: (*Uninit[U])(addr(base, p))}
}

// ProjectMut returns a mutable handle to the member p names. The handle may
// be overwritten with any Uninit[U], including the zero value. Nothing is read
// or written.
func ProjectMut[T, U any](base *Uninit[T], p Path[T, U]) *Uninit[U] {
	return (*Uninit[U])(addr(base, p))
}

// Write stores v into the member p names and returns a pointer to it. Only
// the bytes of that member change; siblings keep whatever they held before.
func Write[T, U any](base *Uninit[T], p Path[T, U], v U) *U {
	dst := (*U)(addr(base, p))
	*dst = v
	return dst
}

// Project2 projects two members at once.
func Project2[T, A, B any](base *Uninit[T], pa Path[T, A], pb Path[T, B]) (Ref[A], Ref[B]) {
	return Project(base, pa), Project(base, pb)
}

// Project3 projects three members at once.
func Project3[T, A, B, C any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C]) (Ref[A], Ref[B], Ref[C]) {
	return Project(base, pa), Project(base, pb), Project(base, pc)
}

// Project4 projects four members at once.
func Project4[T, A, B, C, D any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C], pd Path[T, D]) (Ref[A], Ref[B], Ref[C], Ref[D]) {
	return Project(base, pa), Project(base, pb), Project(base, pc), Project(base, pd)
}

// Project5 projects five members at once.
func Project5[T, A, B, C, D, E any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C], pd Path[T, D], pe Path[T, E]) (Ref[A], Ref[B], Ref[C], Ref[D], Ref[E]) {
	return Project(base, pa), Project(base, pb), Project(base, pc), Project(base, pd), Project(base, pe)
}

// ProjectMut2 returns mutable handles to two disjoint members. It panics with
// an error wrapping ErrOverlap if the members overlap.
func ProjectMut2[T, A, B any](base *Uninit[T], pa Path[T, A], pb Path[T, B]) (*Uninit[A], *Uninit[B]) {
	mustDisjoint(pa.span(), pb.span())
	return ProjectMut(base, pa), ProjectMut(base, pb)
}

// ProjectMut3 is ProjectMut2 for three members.
func ProjectMut3[T, A, B, C any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C]) (*Uninit[A], *Uninit[B], *Uninit[C]) {
	mustDisjoint(pa.span(), pb.span(), pc.span())
	return ProjectMut(base, pa), ProjectMut(base, pb), ProjectMut(base, pc)
}

// ProjectMut4 is ProjectMut2 for four members.
func ProjectMut4[T, A, B, C, D any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C], pd Path[T, D]) (*Uninit[A], *Uninit[B], *Uninit[C], *Uninit[D]) {
	mustDisjoint(pa.span(), pb.span(), pc.span(), pd.span())
	return ProjectMut(base, pa), ProjectMut(base, pb), ProjectMut(base, pc), ProjectMut(base, pd)
}

// ProjectMut5 is ProjectMut2 for five members.
func ProjectMut5[T, A, B, C, D, E any](base *Uninit[T], pa Path[T, A], pb Path[T, B], pc Path[T, C], pd Path[T, D], pe Path[T, E]) (*Uninit[A], *Uninit[B], *Uninit[C], *Uninit[D], *Uninit[E]) {
	mustDisjoint(pa.span(), pb.span(), pc.span(), pd.span(), pe.span())
	return ProjectMut(base, pa), ProjectMut(base, pb), ProjectMut(base, pc), ProjectMut(base, pd), ProjectMut(base, pe)
}

// Write2 writes two disjoint members and returns pointers to them in argument
// order. Overlap is checked before anything is stored; it panics with an
// error wrapping ErrOverlap.
func Write2[T, A, B any](base *Uninit[T], pa Path[T, A], a A, pb Path[T, B], b B) (*A, *B) {
	mustDisjoint(pa.span(), pb.span())
	return Write(base, pa, a), Write(base, pb, b)
}

// Write3 is Write2 for three members.
func Write3[T, A, B, C any](base *Uninit[T], pa Path[T, A], a A, pb Path[T, B], b B, pc Path[T, C], c C) (*A, *B, *C) {
	mustDisjoint(pa.span(), pb.span(), pc.span())
	return Write(base, pa, a), Write(base, pb, b), Write(base, pc, c)
}

// Write4 is Write2 for four members.
func Write4[T, A, B, C, D any](base *Uninit[T], pa Path[T, A], a A, pb Path[T, B], b B, pc Path[T, C], c C, pd Path[T, D], d D) (*A, *B, *C, *D) {
	mustDisjoint(pa.span(), pb.span(), pc.span(), pd.span())
	return Write(base, pa, a), Write(base, pb, b), Write(base, pc, c), Write(base, pd, d)
}

// Write5 is Write2 for five members.
func Write5[T, A, B, C, D, E any](base *Uninit[T], pa Path[T, A], a A, pb Path[T, B], b B, pc Path[T, C], c C, pd Path[T, D], d D, pe Path[T, E], e E) (*A, *B, *C, *D, *E) {
	mustDisjoint(pa.span(), pb.span(), pc.span(), pd.span(), pe.span())
	return Write(base, pa, a), Write(base, pb, b), Write(base, pc, c), Write(base, pd, d), Write(base, pe, e)
}
