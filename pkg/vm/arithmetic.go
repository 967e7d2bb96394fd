package vm

import (
	"math"

	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchArithmetic(ctx context.Context, inst unit.Inst) error {
	switch inst.Op {
	case unit.OpAdd, unit.OpSub, unit.OpMul, unit.OpDiv:
		rhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		lhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		result, err := vm.arith(ctx, inst.Op, lhs, rhs)
		if err != nil {
			return err
		}
		vm.stack.Push(result)
		return nil

	case unit.OpAddAssign, unit.OpSubAssign, unit.OpMulAssign, unit.OpDivAssign:
		rhs, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		cur, err := vm.stack.AtOffset(inst.Offset)
		if err != nil {
			return err
		}
		var op unit.Op
		switch inst.Op {
		case unit.OpAddAssign:
			op = unit.OpAdd
		case unit.OpSubAssign:
			op = unit.OpSub
		case unit.OpMulAssign:
			op = unit.OpMul
		case unit.OpDivAssign:
			op = unit.OpDiv
		}
		result, err := vm.arith(ctx, op, cur, rhs)
		if err != nil {
			return err
		}
		// Fetch the slot only now: the instance-method fallback pushes onto
		// the stack, which may move its backing array.
		slot, err := vm.stack.AtOffsetMut(inst.Offset)
		if err != nil {
			return err
		}
		*slot = result
		return nil
	}
	return vmerror.New(vmerror.KindPanic, "unreachable arithmetic op %s", inst.Op)
}

// arith evaluates a single binary arithmetic op. Integer/Integer and
// Float/Float use checked native arithmetic; anything else dispatches to
// the receiver's instance method (lhs.ADD(rhs), etc.) registered in ctx.
func (vm *VM) arith(ctx context.Context, op unit.Op, lhs, rhs value.Value) (value.Value, error) {
	if lhs.Kind() == value.KindInteger && rhs.Kind() == value.KindInteger {
		return integerArith(op, lhs.AsInteger(), rhs.AsInteger())
	}
	if lhs.Kind() == value.KindFloat && rhs.Kind() == value.KindFloat {
		return floatArith(op, lhs.AsFloat(), rhs.AsFloat())
	}
	return vm.instanceArith(ctx, op, lhs, rhs)
}

func integerArith(op unit.Op, a, b int64) (value.Value, error) {
	switch op {
	case unit.OpAdd:
		sum := a + b
		if (b > 0 && sum < a) || (b < 0 && sum > a) {
			return value.Value{}, vmerror.New(vmerror.KindOverflow, "integer overflow: %d + %d", a, b)
		}
		return value.NewInteger(sum), nil
	case unit.OpSub:
		diff := a - b
		if (b < 0 && diff < a) || (b > 0 && diff > a) {
			return value.Value{}, vmerror.New(vmerror.KindUnderflow, "integer underflow: %d - %d", a, b)
		}
		return value.NewInteger(diff), nil
	case unit.OpMul:
		if a == 0 || b == 0 {
			return value.NewInteger(0), nil
		}
		if a == math.MinInt64 && b == -1 || b == math.MinInt64 && a == -1 {
			return value.Value{}, vmerror.New(vmerror.KindOverflow, "integer overflow: %d * %d", a, b)
		}
		prod := a * b
		if prod/b != a {
			return value.Value{}, vmerror.New(vmerror.KindOverflow, "integer overflow: %d * %d", a, b)
		}
		return value.NewInteger(prod), nil
	case unit.OpDiv:
		if b == 0 {
			return value.Value{}, vmerror.New(vmerror.KindDivideByZero, "integer division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return value.Value{}, vmerror.New(vmerror.KindOverflow, "integer overflow: %d / %d", a, b)
		}
		return value.NewInteger(a / b), nil
	}
	return value.Value{}, vmerror.New(vmerror.KindPanic, "unreachable integer op")
}

func nonFiniteError(op unit.Op, r float64) error {
	switch {
	case math.IsNaN(r):
		return vmerror.New(vmerror.KindDivideByZero, "float %s produced NaN", op)
	case r > 0:
		return vmerror.New(vmerror.KindOverflow, "float %s overflowed to +Inf", op)
	default:
		return vmerror.New(vmerror.KindUnderflow, "float %s overflowed to -Inf", op)
	}
}

func floatArith(op unit.Op, a, b float64) (value.Value, error) {
	switch op {
	case unit.OpAdd:
		r := a + b
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return value.Value{}, nonFiniteError(op, r)
		}
		return value.NewFloat(r), nil
	case unit.OpSub:
		r := a - b
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return value.Value{}, nonFiniteError(op, r)
		}
		return value.NewFloat(r), nil
	case unit.OpMul:
		r := a * b
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return value.Value{}, nonFiniteError(op, r)
		}
		return value.NewFloat(r), nil
	case unit.OpDiv:
		r := a / b
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return value.Value{}, nonFiniteError(op, r)
		}
		return value.NewFloat(r), nil
	}
	return value.Value{}, vmerror.New(vmerror.KindPanic, "unreachable float op")
}

func (vm *VM) instanceArith(ctx context.Context, op unit.Op, lhs, rhs value.Value) (value.Value, error) {
	var method value.Hash
	switch op {
	case unit.OpAdd:
		method = value.MethodAdd
	case unit.OpSub:
		method = value.MethodSub
	case unit.OpMul:
		method = value.MethodMul
	case unit.OpDiv:
		method = value.MethodDiv
	}

	hash := vm.hashInstance(lhs.TypeHash(), method)
	handler, ok := ctx.Lookup(hash)
	if !ok {
		return value.Value{}, vmerror.New(vmerror.KindUnsupportedBinaryOperation,
			"%s does not support %s against %s", lhs.Kind(), op, rhs.Kind())
	}

	vm.stack.Push(rhs)
	vm.stack.Push(lhs)
	if err := handler(vm.stack, 2); err != nil {
		return value.Value{}, err
	}
	return vm.stack.Pop()
}
