// Package async implements the cooperative execution harness layered on
// top of package vm: a driver (Task) for running a VM to completion or
// one step at a time, a suspended-state representation (VmExecution)
// shared by generator/stream resumption and async function calls, and
// the concrete Future/Stream implementations the VM's Await/Select/Yield
// instructions operate on through the value package's interfaces.
//
// Nothing here uses real goroutine concurrency: a VM is not safe to
// share across threads, so Select polls its futures round-robin on the
// calling goroutine instead of racing them, and an async call's Future
// simply drives its sub-VM to completion the first time it is polled.
package async

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vm"
)

// State is the outcome of driving a VmExecution forward: either it
// suspended on OpYield with a value, or it ran to completion with a
// final return value.
type State struct {
	Yielded bool
	Value   value.Value
}

// Complete reports whether this State represents a finished execution.
func (s State) Complete() bool { return !s.Yielded }

// VmExecution owns a VM plus the compilation unit and context it runs
// against, and knows how to drive it forward until the next suspension
// point (a yield) or its end.
type VmExecution struct {
	vm   *vm.VM
	unit unit.CompilationUnit
	ctx  context.Context
}

// NewExecution wraps v, ready to be driven by Resume. v must not already
// be in a yielded state.
func NewExecution(v *vm.VM, u unit.CompilationUnit, ctx context.Context) *VmExecution {
	return &VmExecution{vm: v, unit: u, ctx: ctx}
}

// VM exposes the underlying VM, chiefly so a caller can push a resume
// argument via vm.Resume before calling Resume again.
func (e *VmExecution) VM() *vm.VM { return e.vm }

// Resume steps the VM until it either suspends on OpYield or its
// outermost call frame returns, reporting whichever happened.
func (e *VmExecution) Resume() (State, error) {
	for {
		exited, err := e.vm.Step(e.unit, e.ctx)
		if err != nil {
			return State{}, err
		}
		if e.vm.Yielded() {
			return State{Yielded: true, Value: e.vm.TakeYield()}, nil
		}
		if exited {
			result, err := e.vm.Stack().Pop()
			if err != nil {
				return State{}, err
			}
			return State{Yielded: false, Value: result}, nil
		}
	}
}
