package indexer

import "testing"

func TestCaptureAcrossSingleClosure(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	if err := s.Declare("x"); err != nil {
		t.Fatalf("Declare returned error: %v", err)
	}

	closure := s.PushClosure()
	s.MarkUse("x")

	got, err := closure.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure returned error: %v", err)
	}
	if len(got.Captures) != 1 || got.Captures[0].Ident != "x" {
		t.Errorf("expected a single capture of %q, got %v", "x", got.Captures)
	}
	if got.Generator {
		t.Errorf("closure should not be marked generator without a yield")
	}

	fn.Pop()
}

func TestCaptureRecordedInEveryCrossedClosure(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	if err := s.Declare("x"); err != nil {
		t.Fatalf("Declare returned error: %v", err)
	}

	outer := s.PushClosure()
	inner := s.PushClosure()
	s.MarkUse("x")

	innerClosure, err := inner.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure (inner) returned error: %v", err)
	}
	if len(innerClosure.Captures) != 1 || innerClosure.Captures[0].Ident != "x" {
		t.Errorf("inner closure should capture x, got %v", innerClosure.Captures)
	}

	outerClosure, err := outer.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure (outer) returned error: %v", err)
	}
	if len(outerClosure.Captures) != 1 || outerClosure.Captures[0].Ident != "x" {
		t.Errorf("outer closure should also capture x (to pass it to the inner closure), got %v", outerClosure.Captures)
	}

	fn.Pop()
}

func TestMarkUseIsIdempotentPerClosure(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	_ = s.Declare("x")

	closure := s.PushClosure()
	s.MarkUse("x")
	s.MarkUse("x")
	s.MarkUse("x")

	got, err := closure.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure returned error: %v", err)
	}
	if len(got.Captures) != 1 {
		t.Errorf("repeated MarkUse of the same name should record one capture, got %d", len(got.Captures))
	}

	fn.Pop()
}

func TestMarkUseStopsAtFunctionBoundary(t *testing.T) {
	s := New()
	// x is declared in an outer function, not the top-level scope.
	outerFn := s.PushFunction()
	_ = s.Declare("x")
	innerFn := s.PushFunction()
	closure := s.PushClosure()
	s.MarkUse("x")

	got, err := closure.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure returned error: %v", err)
	}
	if len(got.Captures) != 0 {
		t.Errorf("a name declared in an outer function is not visible across the function boundary, got captures %v", got.Captures)
	}

	innerFn.Pop()
	outerFn.Pop()
}

func TestMarkYieldOnFunction(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	if err := s.MarkYield(); err != nil {
		t.Fatalf("MarkYield returned error: %v", err)
	}

	got, err := fn.IntoFunction()
	if err != nil {
		t.Fatalf("IntoFunction returned error: %v", err)
	}
	if !got.Generator {
		t.Errorf("function containing a yield should be marked generator")
	}
}

func TestMarkYieldOnClosure(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	closure := s.PushClosure()
	if err := s.MarkYield(); err != nil {
		t.Fatalf("MarkYield returned error: %v", err)
	}

	got, err := closure.IntoClosure()
	if err != nil {
		t.Fatalf("IntoClosure returned error: %v", err)
	}
	if !got.Generator {
		t.Errorf("closure containing a yield should be marked generator")
	}

	fn.Pop()
}

func TestMarkYieldOutsideFunctionFails(t *testing.T) {
	s := New()
	if err := s.MarkYield(); err == nil {
		t.Errorf("expected an error yielding at the top-level scope with no enclosing function")
	}
}

func TestIntoClosureRejectsWrongLevelKind(t *testing.T) {
	s := New()
	fn := s.PushFunction()
	if _, err := fn.IntoClosure(); err == nil {
		t.Errorf("expected an error calling IntoClosure on a function-level guard")
	}
}
