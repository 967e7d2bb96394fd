package vm

import (
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchStackOps(inst unit.Inst) error {
	switch inst.Op {
	case unit.OpPop:
		_, err := vm.stack.Pop()
		return err

	case unit.OpPopN:
		return vm.stack.PopN(inst.Count)

	case unit.OpClean:
		top, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if err := vm.stack.PopN(inst.Count); err != nil {
			return err
		}
		vm.stack.Push(top)
		return nil

	case unit.OpCopy:
		v, err := vm.stack.AtOffset(inst.Offset)
		if err != nil {
			return err
		}
		vm.stack.Push(v)
		return nil

	case unit.OpDrop:
		_, err := vm.stack.AtOffset(inst.Offset)
		return err

	case unit.OpDup:
		v, err := vm.stack.Last()
		if err != nil {
			return err
		}
		vm.stack.Push(v)
		return nil

	case unit.OpReplace:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		slot, err := vm.stack.AtOffsetMut(inst.Offset)
		if err != nil {
			return err
		}
		*slot = v
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable stack op %s", inst.Op)
}
