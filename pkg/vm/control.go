package vm

import (
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchControl(inst unit.Inst, updateIP *bool) error {
	switch inst.Op {
	case unit.OpJump:
		*updateIP = false
		return vm.modifyIP(inst.Offset)

	case unit.OpJumpIf, unit.OpJumpIfNot:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindBool {
			return vmerror.New(vmerror.KindUnsupportedBinaryOperation,
				"%s requires a Bool, got %s", inst.Op, v.Kind())
		}
		take := v.AsBool()
		if inst.Op == unit.OpJumpIfNot {
			take = !take
		}
		if take {
			*updateIP = false
			return vm.modifyIP(inst.Offset)
		}
		return nil

	case unit.OpPopAndJumpIf, unit.OpPopAndJumpIfNot:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindBool {
			return vmerror.New(vmerror.KindUnsupportedBinaryOperation,
				"%s requires a Bool, got %s", inst.Op, v.Kind())
		}
		take := v.AsBool()
		if inst.Op == unit.OpPopAndJumpIfNot {
			take = !take
		}
		if !take {
			return nil
		}
		if err := vm.stack.PopN(inst.Count); err != nil {
			return err
		}
		*updateIP = false
		return vm.modifyIP(inst.Offset)

	case unit.OpJumpIfBranch:
		if vm.branch != nil && *vm.branch == inst.Branch {
			vm.branch = nil
			*updateIP = false
			return vm.modifyIP(inst.Offset)
		}
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable control op %s", inst.Op)
}
