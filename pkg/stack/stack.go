// Package stack implements the VM's growable value stack, with the
// per-frame watermark bookkeeping call frames use to stay balanced.
package stack

import (
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// Stack is a growable value stack. It has no notion of frames by itself;
// push_stack_top/pop_stack_top record and restore a watermark so the VM
// can isolate each call frame's view of the stack.
type Stack struct {
	values []value.Value
}

// New constructs an empty stack with room for a modest initial depth.
func New() *Stack {
	return &Stack{values: make([]value.Value, 0, 64)}
}

func underflow(op string) error {
	return vmerror.New(vmerror.KindStackError, "stack underflow during %s", op)
}

// Push appends v to the top of the stack.
func (s *Stack) Push(v value.Value) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (value.Value, error) {
	n := len(s.values)
	if n == 0 {
		return value.Value{}, underflow("pop")
	}
	v := s.values[n-1]
	s.values = s.values[:n-1]
	return v, nil
}

// PopN removes the top n values, discarding them.
func (s *Stack) PopN(n int) error {
	if n == 0 {
		return nil
	}
	if len(s.values) < n {
		return underflow("popn")
	}
	s.values = s.values[:len(s.values)-n]
	return nil
}

// Last returns the top value without removing it.
func (s *Stack) Last() (value.Value, error) {
	n := len(s.values)
	if n == 0 {
		return value.Value{}, underflow("last")
	}
	return s.values[n-1], nil
}

// Peek is an alias for Last, matching the design vocabulary.
func (s *Stack) Peek() (value.Value, error) {
	return s.Last()
}

// AtOffset reads the i-th value from the top of the stack, where 0 is the
// top itself. It addresses stack slot len-1-i.
func (s *Stack) AtOffset(i int) (value.Value, error) {
	idx := len(s.values) - 1 - i
	if idx < 0 || idx >= len(s.values) {
		return value.Value{}, underflow("at_offset")
	}
	return s.values[idx], nil
}

// AtOffsetMut returns a pointer to the i-th value from the top, suitable
// for in-place mutation by *Assign instructions and Replace.
func (s *Stack) AtOffsetMut(i int) (*value.Value, error) {
	idx := len(s.values) - 1 - i
	if idx < 0 || idx >= len(s.values) {
		return nil, underflow("at_offset_mut")
	}
	return &s.values[idx], nil
}

// Len reports the current stack depth.
func (s *Stack) Len() int {
	return len(s.values)
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.values = s.values[:0]
}

// Reverse reverses the top n values in place, used to normalize argument
// order when spinning up an async sub-VM.
func (s *Stack) Reverse(n int) error {
	if n < 0 || n > len(s.values) {
		return underflow("reverse")
	}
	start := len(s.values) - n
	for i, j := start, len(s.values)-1; i < j; i, j = i+1, j-1 {
		s.values[i], s.values[j] = s.values[j], s.values[i]
	}
	return nil
}

// PushStackTop records a watermark for a call about to consume args
// values as its locals, and returns that watermark (len - args).
func (s *Stack) PushStackTop(args int) (int, error) {
	if args > len(s.values) {
		return 0, underflow("push_stack_top")
	}
	return len(s.values) - args, nil
}

// PopStackTop truncates the stack back down to top, discarding whatever
// the frame left above it. It fails only if the stack is already shorter
// than top.
func (s *Stack) PopStackTop(top int) error {
	if top > len(s.values) {
		return underflow("pop_stack_top")
	}
	s.values = s.values[:top]
	return nil
}

// CheckStackTop asserts the stack holds nothing beyond the outermost call
// frame's own watermark (0, since no frame was ever pushed for it). It is
// called from pop_call_frame's no-frame branch after Return has already
// popped the return value, so an empty stack here is the balanced case --
// Return pushes the return value back immediately afterward, leaving
// exactly one value for the caller to consume.
func (s *Stack) CheckStackTop() error {
	if len(s.values) != 0 {
		return vmerror.New(vmerror.KindStackError,
			"stack imbalance at program exit: expected 0 residual values, found %d", len(s.values))
	}
	return nil
}
