package vm

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/shared"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchCall(u unit.CompilationUnit, ctx context.Context, inst unit.Inst, updateIP *bool) error {
	switch inst.Op {
	case unit.OpCall:
		return vm.call(u, ctx, inst.Hash, inst.Args, vmerror.KindMissingFunction, updateIP)

	case unit.OpCallInstance:
		receiver, err := vm.stack.Last()
		if err != nil {
			return err
		}
		hash := vm.hashInstance(receiver.TypeHash(), inst.Hash)
		return vm.call(u, ctx, hash, inst.Args, vmerror.KindMissingInstanceFunction, updateIP)

	case unit.OpCallFn:
		fn, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if fn.Kind() != value.KindType {
			return vmerror.New(vmerror.KindUnsupportedCallFn, "CALL_FN requires a Type, got %s", fn.Kind())
		}
		return vm.call(u, ctx, fn.AsType(), inst.Args, vmerror.KindMissingFunction, updateIP)

	case unit.OpLoadInstanceFn:
		receiver, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewType(vm.hashInstance(receiver.TypeHash(), inst.Hash)))
		return nil

	case unit.OpReturn:
		ret, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return vm.doReturn(ret)

	case unit.OpReturnUnit:
		return vm.doReturn(value.Unit())
	}
	return vmerror.New(vmerror.KindPanic, "unreachable call op %s", inst.Op)
}

func (vm *VM) doReturn(ret value.Value) error {
	last, err := vm.popCallFrame()
	if err != nil {
		return err
	}
	vm.stack.Push(ret)
	if last {
		vm.exited = true
	}
	return nil
}

// call resolves hash against the unit first, then the context, and
// dispatches according to whichever FnInfo/Handler it finds. missKind
// lets OpCallInstance report a context-miss as MissingInstanceFunction
// instead of the MissingFunction every other calling convention uses.
func (vm *VM) call(u unit.CompilationUnit, ctx context.Context, hash value.Hash, args int, missKind vmerror.Kind, updateIP *bool) error {
	if info, ok := u.Lookup(hash); ok {
		switch info.Kind {
		case unit.FnTuple:
			return vm.callTuple(info, args)
		case unit.FnOffset:
			return vm.callOffset(u, info, args, updateIP)
		}
	}

	if handler, ok := ctx.Lookup(hash); ok {
		return handler(vm.stack, args)
	}

	return vmerror.New(missKind, "no function resolves to hash %x", uint64(hash))
}

func (vm *VM) callTuple(info unit.FnInfo, args int) error {
	if args != info.Signature.Args {
		return vmerror.New(vmerror.KindArgumentCountMismatch,
			"tuple constructor expects %d args, got %d", info.Signature.Args, args)
	}
	items, err := vm.popReversed(args)
	if err != nil {
		return err
	}
	cell := shared.New(value.TypedTupleData{Ty: info.TupleType, Items: items})
	vm.stack.Push(value.NewTypedTuple(info.TupleType, cell))
	return nil
}

func (vm *VM) callOffset(u unit.CompilationUnit, info unit.FnInfo, args int, updateIP *bool) error {
	if args != info.Signature.Args {
		return vmerror.New(vmerror.KindArgumentCountMismatch,
			"function expects %d args, got %d", info.Signature.Args, args)
	}

	switch info.Call {
	case unit.Immediate:
		*updateIP = false
		return vm.pushCallFrame(info.Offset, args)

	case unit.Async:
		if vm.spawner == nil {
			return vmerror.New(vmerror.KindMissingFunction, "no async spawner attached for offset %d", info.Offset)
		}
		argVals, err := vm.popReversed(args)
		if err != nil {
			return err
		}
		fut, err := vm.spawner.SpawnCall(u, info.Offset, argVals)
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewFuture(shared.New(fut)))
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable call convention")
}
