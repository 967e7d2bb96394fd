package async

import (
	"testing"

	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// addOneUnit builds a unit for a single top-level function: add 1 to its
// sole argument and return it.
func addOneUnit() *unit.Unit {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1})
	u.Push(unit.Inst{Op: unit.OpAdd})
	u.Push(unit.Inst{Op: unit.OpReturn})
	return u
}

func TestTaskRunToCompletion(t *testing.T) {
	u := addOneUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(41)}, u, ctx)

	got, err := task.RunToCompletion()
	if err != nil {
		t.Fatalf("RunToCompletion returned error: %v", err)
	}
	if got.AsInteger() != 42 {
		t.Errorf("got %v, want Integer(42)", got)
	}
}

func TestTaskStepDrivesOneInstructionAtATime(t *testing.T) {
	u := addOneUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(10)}, u, ctx)

	steps := 0
	for {
		exited, err := task.Step()
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
		steps++
		if exited {
			break
		}
		if steps > len(u.Instructions)+1 {
			t.Fatalf("Step never reported completion")
		}
	}
	if steps != len(u.Instructions) {
		t.Errorf("took %d steps, want %d (one per instruction)", steps, len(u.Instructions))
	}
}

// yieldOnceUnit builds a generator: push 1, push its sole argument added
// to it, yield that sum, then on resume return the resumed value.
func yieldOnceUnit() *unit.Unit {
	u := unit.New()
	u.Push(unit.Inst{Op: unit.OpInteger, Integer: 1})
	u.Push(unit.Inst{Op: unit.OpAdd})
	u.Push(unit.Inst{Op: unit.OpYield})
	u.Push(unit.Inst{Op: unit.OpReturn})
	return u
}

func TestVmExecutionResumeReportsYieldThenCompletion(t *testing.T) {
	u := yieldOnceUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(4)}, u, ctx)
	exec := NewExecution(task.VM(), u, ctx)

	state, err := exec.Resume()
	if err != nil {
		t.Fatalf("first Resume returned error: %v", err)
	}
	if !state.Yielded {
		t.Fatalf("expected the first Resume to report a yield")
	}
	if state.Value.AsInteger() != 5 {
		t.Errorf("yielded value = %v, want Integer(5)", state.Value)
	}
	if state.Complete() {
		t.Errorf("Complete() should be false while Yielded")
	}

	exec.VM().Resume(value.NewInteger(99))
	state, err = exec.Resume()
	if err != nil {
		t.Fatalf("second Resume returned error: %v", err)
	}
	if state.Yielded {
		t.Fatalf("expected the second Resume to report completion")
	}
	if !state.Complete() {
		t.Errorf("Complete() should be true once Yielded is false")
	}
	if state.Value.AsInteger() != 99 {
		t.Errorf("returned value = %v, want Integer(99) (the resumed value)", state.Value)
	}
}

func TestStreamFirstResumeDoesNotPushAValue(t *testing.T) {
	u := yieldOnceUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(4)}, u, ctx)
	stream := task.AsStream()

	got, ok, err := stream.Resume(value.NewInteger(1234))
	if err != nil {
		t.Fatalf("first Resume returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected the first Resume to yield")
	}
	if got.AsInteger() != 5 {
		t.Errorf("first yielded value = %v, want Integer(5); the resume argument must not have been pushed", got)
	}
	if stream.Completed() {
		t.Errorf("stream should not be completed after its first yield")
	}
}

func TestStreamSubsequentResumeCompletesAndThenFails(t *testing.T) {
	u := yieldOnceUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(4)}, u, ctx)
	stream := task.AsStream()

	if _, _, err := stream.Resume(value.Value{}); err != nil {
		t.Fatalf("first Resume returned error: %v", err)
	}

	got, ok, err := stream.Resume(value.NewInteger(7))
	if err != nil {
		t.Fatalf("second Resume returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected the second Resume to report completion, not another yield")
	}
	_ = got
	if !stream.Completed() {
		t.Fatalf("expected Completed() to be true once the generator has returned")
	}

	if _, _, err := stream.Resume(value.NewInteger(1)); !vmerror.Is(err, vmerror.KindGeneratorComplete) {
		t.Errorf("expected KindGeneratorComplete resuming a completed stream, got %v", err)
	}
}

func TestCallFutureDrivesCalleeToCompletionOnFirstPoll(t *testing.T) {
	u := addOneUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(1)}, u, ctx)
	fut := task.AsFuture()

	if fut.Completed() {
		t.Fatalf("future should not be completed before the first Poll")
	}

	got, done, err := fut.Poll()
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if !done {
		t.Fatalf("expected Poll to complete the callee in one step (no mid-instruction suspension)")
	}
	if got.AsInteger() != 2 {
		t.Errorf("got %v, want Integer(2)", got)
	}
	if !fut.Completed() {
		t.Errorf("expected Completed() to report true after the resolving Poll")
	}

	// Polling again just replays the cached result.
	got2, done2, err := fut.Poll()
	if err != nil || !done2 || got2.AsInteger() != 2 {
		t.Errorf("re-polling a completed future should replay its result, got (%v, %v, %v)", got2, done2, err)
	}
}

func TestCallFuturePanicsIfCalleeYields(t *testing.T) {
	u := yieldOnceUnit()
	ctx := context.New()
	task := NewTask(0, []value.Value{value.NewInteger(1)}, u, ctx)
	fut := task.AsFuture()

	if _, _, err := fut.Poll(); !vmerror.Is(err, vmerror.KindPanic) {
		t.Errorf("expected an async function body that yields to fail with KindPanic, got %v", err)
	}
}

func TestSpawnerSpawnCallProducesAnIndependentFuture(t *testing.T) {
	u := addOneUnit()
	ctx := context.New()
	spawner := NewSpawner(ctx)

	fut, err := spawner.SpawnCall(u, 0, []value.Value{value.NewInteger(9)})
	if err != nil {
		t.Fatalf("SpawnCall returned error: %v", err)
	}
	got, done, err := fut.Poll()
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if !done || got.AsInteger() != 10 {
		t.Errorf("got (%v, %v), want (Integer(10), true)", got, done)
	}
}
