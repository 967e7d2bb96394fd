package vm

import (
	"github.com/kristofer/smogvm/pkg/shared"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchAsync(inst unit.Inst) error {
	switch inst.Op {
	case unit.OpAwait:
		return vm.await()
	case unit.OpSelect:
		return vm.selectFutures(inst.Args)
	case unit.OpYield:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.yielded = true
		vm.yieldValue = v
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable async op %s", inst.Op)
}

// await polls a single future to completion under an exclusive borrow
// held for the whole poll loop, so a future that some other live
// reference is concurrently borrowing surfaces as an access error
// rather than silently racing it. The borrow is promoted to a raw
// pointer plus drop token via IntoRaw so it can be held open across the
// poll loop without pinning the RefMut guard value itself. The VM never
// actually suspends mid-instruction, so this is a tight busy-poll; the
// future itself is responsible for making incremental progress on each
// Poll call.
func (vm *VM) await() error {
	v, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if v.Kind() != value.KindFuture {
		return vmerror.New(vmerror.KindUnexpectedValueType, "AWAIT requires a Future, got %s", v.Kind())
	}

	guard, err := v.AsFutureCell().BorrowMut()
	if err != nil {
		return err
	}
	futPtr, token := guard.IntoRaw()
	defer token.Release()

	for {
		result, done, err := (*futPtr).Poll()
		if err != nil {
			return err
		}
		if done {
			vm.stack.Push(result)
			return nil
		}
	}
}

// selectCandidate holds a pending future's borrow as a raw pointer plus
// drop token (via RefMut.IntoRaw), so selectFutures can keep every
// surviving candidate's borrow open across the whole concurrent poll
// round in one local collection rather than an open guard per future.
type selectCandidate struct {
	idx   int
	fut   *value.Future
	token shared.DropToken[value.Future]
}

// selectFutures pops n futures (original push order preserved, so index
// 0 is whichever was pushed first), discards any already complete, and
// round-robin polls the rest under borrows held for the whole call.
// Polling order is the only tie-break available -- exactly one VM runs
// at a time, so there is no real race to settle. On the first
// completion it pushes that future's value and records its *original*
// index (not its index among the surviving candidates) in the branch
// register. If every popped future was already complete, Select is a
// no-op: nothing is pushed and the branch register is untouched.
func (vm *VM) selectFutures(n int) error {
	raw, err := vm.popReversed(n)
	if err != nil {
		return err
	}

	pending := make([]selectCandidate, 0, len(raw))
	defer func() {
		for i := range pending {
			pending[i].token.Release()
		}
	}()

	for i, v := range raw {
		if v.Kind() != value.KindFuture {
			return vmerror.New(vmerror.KindUnexpectedValueType, "SELECT requires Futures, got %s", v.Kind())
		}
		guard, err := v.AsFutureCell().BorrowMut()
		if err != nil {
			return err
		}
		if (*guard.Get()).Completed() {
			guard.Release()
			continue
		}
		futPtr, token := guard.IntoRaw()
		pending = append(pending, selectCandidate{idx: i, fut: futPtr, token: token})
	}

	if len(pending) == 0 {
		return nil
	}

	for {
		for _, c := range pending {
			result, done, err := (*c.fut).Poll()
			if err != nil {
				return err
			}
			if done {
				vm.stack.Push(result)
				winner := c.idx
				vm.branch = &winner
				return nil
			}
		}
	}
}
