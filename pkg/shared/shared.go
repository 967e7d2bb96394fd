// Package shared implements the reference-counted, runtime-borrow-checked
// heap cell that every mutable Value variant is built on top of.
//
// A Cell grants two forms of access: shared reads (Borrow) and exclusive
// writes (BorrowMut). Access is checked at call time rather than compile
// time -- violating it returns an access error instead of corrupting
// state. take moves the inner value out once no borrows are outstanding.
// IntoRaw launders a live borrow into a raw pointer plus a DropToken so
// the async harness can hold a borrow open across a future poll without
// keeping the guard value itself alive on the Go stack.
package shared

import (
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// Cell is a single-owner heap cell holding a T, with borrow accounting.
//
// Cell is not safe for concurrent use from multiple goroutines; the VM
// that owns it is single-threaded by design (see the async harness).
type Cell[T any] struct {
	value   T
	live    bool // false once taken
	readers int
	writer  bool
}

// New constructs a Cell owning v.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, live: true}
}

// Ref is a shared-read guard over a Cell. Release must be called exactly
// once to return the borrow.
type Ref[T any] struct {
	cell *Cell[T]
}

// RefMut is an exclusive-write guard over a Cell. Release must be called
// exactly once to return the borrow.
type RefMut[T any] struct {
	cell *Cell[T]
}

// DropToken is the other half of an IntoRaw escape hatch: it must be
// released before any code that might alias the accompanying raw pointer
// stops running. Releasing it is the only way to give the borrow back.
type DropToken[T any] struct {
	cell      *Cell[T]
	exclusive bool
	spent     bool
}

func accessError(format string, args ...any) error {
	return vmerror.New(vmerror.KindAccessError, format, args...)
}

// Borrow acquires a shared-read guard. Fails if the cell is exclusively
// borrowed or has already been taken.
func (c *Cell[T]) Borrow() (Ref[T], error) {
	if !c.live {
		return Ref[T]{}, accessError("borrow of taken cell")
	}
	if c.writer {
		return Ref[T]{}, accessError("shared borrow conflicts with outstanding exclusive borrow")
	}
	c.readers++
	return Ref[T]{cell: c}, nil
}

// BorrowMut acquires an exclusive-write guard. Fails if any borrow
// (shared or exclusive) is outstanding, or the cell has been taken.
func (c *Cell[T]) BorrowMut() (RefMut[T], error) {
	if !c.live {
		return RefMut[T]{}, accessError("borrow_mut of taken cell")
	}
	if c.writer {
		return RefMut[T]{}, accessError("exclusive borrow conflicts with outstanding exclusive borrow")
	}
	if c.readers > 0 {
		return RefMut[T]{}, accessError("exclusive borrow conflicts with %d outstanding shared borrow(s)", c.readers)
	}
	c.writer = true
	return RefMut[T]{cell: c}, nil
}

// Take moves the inner value out of the cell. Fails if any borrow is
// outstanding.
func (c *Cell[T]) Take() (T, error) {
	var zero T
	if !c.live {
		return zero, accessError("take of already-taken cell")
	}
	if c.writer || c.readers > 0 {
		return zero, accessError("take conflicts with an outstanding borrow")
	}
	v := c.value
	c.value = zero
	c.live = false
	return v, nil
}

// Get returns the borrowed value. The guard must still be live.
func (r Ref[T]) Get() *T {
	return &r.cell.value
}

// Release returns the shared borrow to the cell.
func (r Ref[T]) Release() {
	if r.cell == nil {
		return
	}
	r.cell.readers--
}

// Get returns the exclusively borrowed value, mutable in place.
func (r RefMut[T]) Get() *T {
	return &r.cell.value
}

// Release returns the exclusive borrow to the cell.
func (r RefMut[T]) Release() {
	if r.cell == nil {
		return
	}
	r.cell.writer = false
}

// IntoRaw converts a live exclusive borrow into a raw pointer and a
// DropToken. The pointer is valid for use only until DropToken.Release is
// called; the caller must release it before any other code can observe
// the cell again. This is the one escape hatch the async harness uses to
// hold a Future's borrow open while it is being polled to completion.
func (r RefMut[T]) IntoRaw() (*T, DropToken[T]) {
	cell := r.cell
	return &cell.value, DropToken[T]{cell: cell, exclusive: true}
}

// IntoRaw is the shared-borrow counterpart of RefMut.IntoRaw: the
// DropToken it returns gives back a shared borrow when released.
func (r Ref[T]) IntoRaw() (*T, DropToken[T]) {
	cell := r.cell
	return &cell.value, DropToken[T]{cell: cell, exclusive: false}
}

// Release returns the laundered borrow. It is a programming error to use
// the raw pointer after calling Release, and a programming error to call
// Release twice.
func (d *DropToken[T]) Release() {
	if d.spent || d.cell == nil {
		return
	}
	if d.exclusive {
		d.cell.writer = false
	} else {
		d.cell.readers--
	}
	d.spent = true
}
