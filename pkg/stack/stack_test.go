package stack

import (
	"testing"

	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func TestPushPopRoundTrip(t *testing.T) {
	s := New()
	s.Push(value.NewInteger(42))
	got, err := s.Pop()
	if err != nil {
		t.Fatalf("Pop returned error: %v", err)
	}
	if got.AsInteger() != 42 {
		t.Errorf("got %v, want 42", got.AsInteger())
	}
}

func TestPopUnderflow(t *testing.T) {
	s := New()
	if _, err := s.Pop(); !vmerror.Is(err, vmerror.KindStackError) {
		t.Errorf("expected a stack error popping an empty stack, got %v", err)
	}
}

func TestAtOffsetAddressesFromTop(t *testing.T) {
	s := New()
	s.Push(value.NewInteger(1))
	s.Push(value.NewInteger(2))
	s.Push(value.NewInteger(3))

	tests := []struct {
		offset int
		want   int64
	}{
		{0, 3},
		{1, 2},
		{2, 1},
	}
	for _, tt := range tests {
		got, err := s.AtOffset(tt.offset)
		if err != nil {
			t.Fatalf("AtOffset(%d) returned error: %v", tt.offset, err)
		}
		if got.AsInteger() != tt.want {
			t.Errorf("AtOffset(%d) = %d, want %d", tt.offset, got.AsInteger(), tt.want)
		}
	}
}

func TestAtOffsetMutMutatesInPlace(t *testing.T) {
	s := New()
	s.Push(value.NewInteger(10))
	s.Push(value.NewInteger(20))

	slot, err := s.AtOffsetMut(1)
	if err != nil {
		t.Fatalf("AtOffsetMut returned error: %v", err)
	}
	*slot = value.NewInteger(99)

	got, err := s.AtOffset(1)
	if err != nil {
		t.Fatalf("AtOffset returned error: %v", err)
	}
	if got.AsInteger() != 99 {
		t.Errorf("mutation through AtOffsetMut did not stick, got %d", got.AsInteger())
	}
}

func TestPushStackTopAndPopStackTopBalance(t *testing.T) {
	s := New()
	s.Push(value.NewInteger(1)) // caller context, stays below the frame
	s.Push(value.NewInteger(2)) // arg 1
	s.Push(value.NewInteger(3)) // arg 2

	top, err := s.PushStackTop(2)
	if err != nil {
		t.Fatalf("PushStackTop returned error: %v", err)
	}
	if top != 1 {
		t.Fatalf("expected watermark 1 (len 3 - args 2), got %d", top)
	}

	// Simulate the callee pushing a local and then a return value.
	s.Push(value.NewInteger(100))
	s.Push(value.NewInteger(7))

	if err := s.PopStackTop(top); err != nil {
		t.Fatalf("PopStackTop returned error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected stack length 1 after restoring the watermark, got %d", s.Len())
	}
}

func TestCheckStackTopRequiresEmptyStack(t *testing.T) {
	s := New()
	if err := s.CheckStackTop(); err != nil {
		t.Errorf("expected no error checking an empty stack, got %v", err)
	}
	s.Push(value.NewInteger(1))
	if err := s.CheckStackTop(); err == nil {
		t.Errorf("expected an error checking a stack with residual values")
	}
}

func TestReverse(t *testing.T) {
	s := New()
	s.Push(value.NewInteger(1))
	s.Push(value.NewInteger(2))
	s.Push(value.NewInteger(3))

	if err := s.Reverse(3); err != nil {
		t.Fatalf("Reverse returned error: %v", err)
	}

	want := []int64{1, 2, 3}
	for i, w := range want {
		got, err := s.AtOffset(i)
		if err != nil {
			t.Fatalf("AtOffset(%d) returned error: %v", i, err)
		}
		if got.AsInteger() != w {
			t.Errorf("after reverse, AtOffset(%d) = %d, want %d", i, got.AsInteger(), w)
		}
	}
}
