package async

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vm"
)

// Task is the top-level driver for a single call into compiled code: it
// owns a VM seeded with a function offset and arguments, and offers the
// three ways of running it that the rest of the harness is built from --
// run it to completion synchronously, step it one instruction at a
// time, or hand it off as a Future/Stream for something else to drive.
type Task struct {
	vm   *vm.VM
	unit unit.CompilationUnit
	ctx  context.Context
}

// NewTask constructs a Task calling the function at offset with args
// already pushed as its locals.
func NewTask(offset int, args []value.Value, u unit.CompilationUnit, ctx context.Context) *Task {
	v := vm.NewAtOffset(offset)
	for _, a := range args {
		v.Stack().Push(a)
	}
	v.AttachSpawner(NewSpawner(ctx))
	return &Task{vm: v, unit: u, ctx: ctx}
}

// VM exposes the underlying VM, e.g. to attach a Debugger before running.
func (t *Task) VM() *vm.VM { return t.vm }

// RunToCompletion drives the task to its end and returns the final
// value, the synchronous fast path for a task that never awaits.
func (t *Task) RunToCompletion() (value.Value, error) {
	return t.vm.Run(t.unit, t.ctx)
}

// Step executes exactly one instruction, reporting whether the task has
// now finished.
func (t *Task) Step() (bool, error) {
	return t.vm.Step(t.unit, t.ctx)
}

// AsFuture adapts this task as a value.Future, for embedding an async
// call's result inside another Select/Await.
func (t *Task) AsFuture() value.Future {
	return newCallFuture(NewExecution(t.vm, t.unit, t.ctx))
}

// AsStream adapts this task as a value.Stream, used when offset names a
// generator function: RunToCompletion is never called on a generator
// task, since it intentionally runs past its first OpYield.
func (t *Task) AsStream() *Stream {
	return NewStream(NewExecution(t.vm, t.unit, t.ctx))
}

// Close resets the underlying VM. Go has no destructors, so callers done
// with a Task -- one abandoned mid-await, say -- must call this
// explicitly to get the same effect as dropping it.
func (t *Task) Close() {
	t.vm.Clear()
}
