package vm

import (
	"testing"

	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/shared"
	"github.com/kristofer/smogvm/pkg/stack"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func TestRunIntegerAdd(t *testing.T) {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 3})
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 4})
	u.Push(unit.Inst{Op: unit.OpAdd})
	u.Push(unit.Inst{Op: unit.OpReturn})

	got, err := New().Run(u, context.New())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.Kind() != value.KindInteger || got.AsInteger() != 7 {
		t.Errorf("got %v, want Integer(7)", got)
	}
}

func TestRunIntegerAddOverflow(t *testing.T) {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1<<63 - 1})
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1})
	u.Push(unit.Inst{Op: unit.OpAdd})
	u.Push(unit.Inst{Op: unit.OpReturn})

	_, err := New().Run(u, context.New())
	if !vmerror.Is(err, vmerror.KindOverflow) {
		t.Errorf("expected an overflow error, got %v", err)
	}
}

func TestRunIntegerDivideByZero(t *testing.T) {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 10})
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 0})
	u.Push(unit.Inst{Op: unit.OpDiv})
	u.Push(unit.Inst{Op: unit.OpReturn})

	_, err := New().Run(u, context.New())
	if !vmerror.Is(err, vmerror.KindDivideByZero) {
		t.Errorf("expected a divide-by-zero error, got %v", err)
	}
}

func TestRunObjectConstruction(t *testing.T) {
	u := unit.New()
	keySlot := u.InternObjectKeys([]string{"a", "b"})
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 2})
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1})
	u.Push(unit.Inst{Op: unit.OpObject, Slot: keySlot})
	u.Push(unit.Inst{Op: unit.OpReturn})

	got, err := New().Run(u, context.New())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.Kind() != value.KindObject {
		t.Fatalf("got kind %s, want Object", got.Kind())
	}
	ref, err := got.AsObjectCell().Borrow()
	if err != nil {
		t.Fatalf("Borrow returned error: %v", err)
	}
	defer ref.Release()
	obj := *ref.Get()
	a, ok := obj.Get("a")
	if !ok || a.AsInteger() != 1 {
		t.Errorf("a = %v, ok=%v, want 1", a, ok)
	}
	b, ok := obj.Get("b")
	if !ok || b.AsInteger() != 2 {
		t.Errorf("b = %v, ok=%v, want 2", b, ok)
	}
}

func TestRunNestedCall(t *testing.T) {
	u := unit.New()

	// fn double(x) { x + x } laid out at offset 0, falling through to the
	// caller laid out starting at offset 3.
	doubleHash := value.Hash(1)
	u.RegisterFn(doubleHash, unit.FnInfo{
		Signature: unit.Signature{Args: 1},
		Kind:      unit.FnOffset,
		Offset:    0,
		Call:      unit.Immediate,
	})

	// offset 0: Dup, Add, Return  -- double(x) = x + x
	u.Push(unit.Inst{Op: unit.OpDup})
	u.Push(unit.Inst{Op: unit.OpAdd})
	u.Push(unit.Inst{Op: unit.OpReturn})

	// offset 3: caller pushes 5, calls double, returns.
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 5})
	u.Push(unit.Inst{Op: unit.OpCall, Hash: doubleHash, Args: 1})
	u.Push(unit.Inst{Op: unit.OpReturn})

	got, err := NewAtOffset(3).Run(u, context.New())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.Kind() != value.KindInteger || got.AsInteger() != 10 {
		t.Errorf("got %v, want Integer(10)", got)
	}
}

// fakeFuture completes once Poll has been called completeAfter times.
type fakeFuture struct {
	completeAfter int
	polls         int
	result        value.Value
	completed     bool
}

func (f *fakeFuture) Poll() (value.Value, bool, error) {
	f.polls++
	if f.polls >= f.completeAfter {
		f.completed = true
		return f.result, true, nil
	}
	return value.Value{}, false, nil
}

func (f *fakeFuture) Completed() bool { return f.completed }

func TestRunSelectPicksFirstToComplete(t *testing.T) {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpSelect, Args: 3})
	u.Push(unit.Inst{Op: unit.OpJumpIfBranch, Branch: 1, Offset: 2})
	u.Push(unit.Inst{Op: unit.OpPanic, Str: "branch 1 not taken"})
	u.Push(unit.Inst{Op: unit.OpReturn})

	vmachine := New()

	f0 := &fakeFuture{completeAfter: 100, result: value.NewInteger(0)}
	f1 := &fakeFuture{completeAfter: 1, result: value.NewInteger(111)}
	f2 := &fakeFuture{completeAfter: 100, result: value.NewInteger(2)}

	// Pushed in order F0, F1, F2 (F2 on top).
	vmachine.Stack().Push(value.NewFuture(shared.New[value.Future](f0)))
	vmachine.Stack().Push(value.NewFuture(shared.New[value.Future](f1)))
	vmachine.Stack().Push(value.NewFuture(shared.New[value.Future](f2)))

	got, err := vmachine.Run(u, context.New())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.Kind() != value.KindInteger || got.AsInteger() != 111 {
		t.Errorf("got %v, want Integer(111) from F1", got)
	}
}

func TestRunYieldSuspendsStep(t *testing.T) {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1})
	u.Push(unit.Inst{Op: unit.OpYield})
	u.Push(unit.Inst{Op: unit.OpReturn})

	vmachine := New()
	ctx := context.New()

	exited, err := vmachine.Step(u, ctx)
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if exited {
		t.Fatalf("did not expect exit on the Integer push")
	}

	exited, err = vmachine.Step(u, ctx)
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if exited {
		t.Fatalf("did not expect exit on Yield")
	}
	if !vmachine.Yielded() {
		t.Fatalf("expected Yielded() to be true after OpYield")
	}
	if vmachine.TakeYield().AsInteger() != 1 {
		t.Errorf("TakeYield() = %v, want Integer(1)", vmachine.TakeYield())
	}

	vmachine.Resume(value.NewInteger(42))
	if vmachine.Yielded() {
		t.Fatalf("expected Yielded() to be false after Resume")
	}

	got, err := vmachine.Run(u, ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.AsInteger() != 42 {
		t.Errorf("got %v, want Integer(42) (the resumed value)", got)
	}
}

func TestRunMissingFunctionFallsThroughToContext(t *testing.T) {
	u := unit.New()
	hash := value.Hash(99)
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 9})
	u.Push(unit.Inst{Op: unit.OpCall, Hash: hash, Args: 1})
	u.Push(unit.Inst{Op: unit.OpReturn})

	ctx := context.New()
	ctx.Register(hash, func(s *stack.Stack, args int) error {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		s.Push(value.NewInteger(v.AsInteger() * 2))
		return nil
	})

	got, err := New().Run(u, ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got.AsInteger() != 18 {
		t.Errorf("got %v, want Integer(18) from the native handler", got)
	}
}
