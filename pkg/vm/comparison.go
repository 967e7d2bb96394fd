package vm

import (
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchComparison(inst unit.Inst) error {
	switch inst.Op {
	case unit.OpGt, unit.OpGte, unit.OpLt, unit.OpLte:
		rhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		lhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		ord, err := value.Compare(lhs, rhs)
		if err != nil {
			return err
		}
		var result bool
		switch inst.Op {
		case unit.OpGt:
			result = ord == value.Greater
		case unit.OpGte:
			result = ord == value.Greater || ord == value.Equal_
		case unit.OpLt:
			result = ord == value.Less
		case unit.OpLte:
			result = ord == value.Less || ord == value.Equal_
		}
		vm.stack.Push(value.NewBool(result))
		return nil

	case unit.OpEq, unit.OpNeq:
		rhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		lhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		var result bool
		if inst.Op == unit.OpEq {
			result, err = value.Equal(lhs, rhs)
		} else {
			result, err = value.NotEqual(lhs, rhs)
		}
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewBool(result))
		return nil

	case unit.OpAnd, unit.OpOr:
		rhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		lhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if lhs.Kind() != value.KindBool || rhs.Kind() != value.KindBool {
			return vmerror.New(vmerror.KindUnsupportedBinaryOperation,
				"%s requires two Bools, got %s and %s", inst.Op, lhs.Kind(), rhs.Kind())
		}
		var result bool
		if inst.Op == unit.OpAnd {
			result = lhs.AsBool() && rhs.AsBool()
		} else {
			result = lhs.AsBool() || rhs.AsBool()
		}
		vm.stack.Push(value.NewBool(result))
		return nil

	case unit.OpNot:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindBool {
			return vmerror.New(vmerror.KindUnsupportedUnaryOperation, "NOT requires a Bool, got %s", v.Kind())
		}
		vm.stack.Push(value.NewBool(!v.AsBool()))
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable comparison op %s", inst.Op)
}
