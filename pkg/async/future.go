package async

import (
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// callFuture is the Future behind an Async-convention function call: a
// sub-VM running the callee, driven to completion the first time it is
// polled. Since nothing in this engine suspends mid-instruction, Poll
// never actually returns pending -- the whole point of the type is to
// give OpCall's Async path and OpAwait/OpSelect a uniform value.Future
// shape to push and consume regardless of how the callee was produced.
type callFuture struct {
	execution *VmExecution
	done      bool
	result    value.Value
}

// newCallFuture wraps e as a value.Future.
func newCallFuture(e *VmExecution) *callFuture {
	return &callFuture{execution: e}
}

// Poll implements value.Future.
func (f *callFuture) Poll() (value.Value, bool, error) {
	if f.done {
		return f.result, true, nil
	}

	state, err := f.execution.Resume()
	if err != nil {
		return value.Value{}, false, err
	}
	if state.Yielded {
		return value.Value{}, false, vmerror.New(vmerror.KindPanic,
			"an async function body must not yield; use a generator/Stream instead")
	}

	f.done = true
	f.result = state.Value
	return f.result, true, nil
}

// Completed implements value.Future.
func (f *callFuture) Completed() bool { return f.done }
