package vm

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchPattern(u unit.CompilationUnit, ctx context.Context, inst unit.Inst) error {
	switch inst.Op {
	case unit.OpIsUnit:
		v, err := vm.stack.Last()
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewBool(v.IsUnit()))
		return nil

	case unit.OpIsErr:
		v, err := vm.stack.Last()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindResult {
			return vmerror.New(vmerror.KindUnexpectedValueType, "IS_ERR requires a Result, got %s", v.Kind())
		}
		ref, err := v.AsResultCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		vm.stack.Push(value.NewBool(!ref.Get().Ok))
		return nil

	case unit.OpIsNone:
		v, err := vm.stack.Last()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindOption {
			return vmerror.New(vmerror.KindUnexpectedValueType, "IS_NONE requires an Option, got %s", v.Kind())
		}
		ref, err := v.AsOptionCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		vm.stack.Push(value.NewBool(!ref.Get().Some))
		return nil

	case unit.OpEqByte:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewBool(v.Kind() == value.KindByte && v.AsByte() == inst.Byte))
		return nil

	case unit.OpEqCharacter:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewBool(v.Kind() == value.KindChar && v.AsChar() == inst.Char))
		return nil

	case unit.OpEqInteger:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewBool(v.Kind() == value.KindInteger && v.AsInteger() == inst.Integer))
		return nil

	case unit.OpEqStaticString:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		want, err := u.LookupString(inst.Slot)
		if err != nil {
			return err
		}
		if v.Kind() != value.KindStaticString && v.Kind() != value.KindString {
			vm.stack.Push(value.NewBool(false))
			return nil
		}
		content, ok := keyString(v)
		vm.stack.Push(value.NewBool(ok && content == want.Text))
		return nil

	case unit.OpMatchVec:
		v, err := vm.stack.Last()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindVec {
			vm.stack.Push(value.NewBool(false))
			return nil
		}
		ref, err := v.AsVecCell().Borrow()
		if err != nil {
			return err
		}
		n := len(*ref.Get())
		ref.Release()
		if inst.Exact {
			vm.stack.Push(value.NewBool(n == inst.Len))
		} else {
			vm.stack.Push(value.NewBool(n >= inst.Len))
		}
		return nil

	case unit.OpMatchTuple:
		return vm.matchTuple(inst)

	case unit.OpMatchObject:
		return vm.matchObject(u, inst)

	case unit.OpResultUnwrap:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindResult {
			return vmerror.New(vmerror.KindUnexpectedValueType, "RESULT_UNWRAP requires a Result, got %s", v.Kind())
		}
		ref, err := v.AsResultCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		data := *ref.Get()
		if !data.Ok {
			return vmerror.New(vmerror.KindExpectedResultOk, "unwrapped an Err result")
		}
		vm.stack.Push(data.Value)
		return nil

	case unit.OpOptionUnwrap:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if v.Kind() != value.KindOption {
			return vmerror.New(vmerror.KindUnexpectedValueType, "OPTION_UNWRAP requires an Option, got %s", v.Kind())
		}
		ref, err := v.AsOptionCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		data := *ref.Get()
		if !data.Some {
			return vmerror.New(vmerror.KindExpectedOptionSome, "unwrapped a None option")
		}
		vm.stack.Push(data.Value)
		return nil

	case unit.OpIs:
		return vm.is(u, ctx)
	}
	return vmerror.New(vmerror.KindPanic, "unreachable pattern op %s", inst.Op)
}

func (vm *VM) matchTuple(inst unit.Inst) error {
	v, err := vm.stack.Last()
	if err != nil {
		return err
	}

	var n int
	switch v.Kind() {
	case value.KindTuple:
		ref, err := v.AsTupleCell().Borrow()
		if err != nil {
			return err
		}
		n = len(*ref.Get())
		ref.Release()
	case value.KindOption:
		if !inst.TupleLike {
			vm.stack.Push(value.NewBool(false))
			return nil
		}
		ref, err := v.AsOptionCell().Borrow()
		if err != nil {
			return err
		}
		if ref.Get().Some {
			n = 1
		}
		ref.Release()
	case value.KindResult:
		if !inst.TupleLike {
			vm.stack.Push(value.NewBool(false))
			return nil
		}
		// Ok(v) and Err(v) both carry exactly one value.
		n = 1
	case value.KindTypedTuple:
		if !inst.TupleLike {
			vm.stack.Push(value.NewBool(false))
			return nil
		}
		ref, err := v.AsTypedTupleCell().Borrow()
		if err != nil {
			return err
		}
		n = len(ref.Get().Items)
		ref.Release()
	default:
		vm.stack.Push(value.NewBool(false))
		return nil
	}

	if inst.Exact {
		vm.stack.Push(value.NewBool(n == inst.Len))
	} else {
		vm.stack.Push(value.NewBool(n >= inst.Len))
	}
	return nil
}

func (vm *VM) matchObject(u unit.CompilationUnit, inst unit.Inst) error {
	v, err := vm.stack.Last()
	if err != nil {
		return err
	}

	isObjectLike := v.Kind() == value.KindObject || (inst.ObjectLike && v.Kind() == value.KindTypedObject)
	if !isObjectLike {
		vm.stack.Push(value.NewBool(false))
		return nil
	}

	keys, ok := u.LookupObjectKeys(inst.Slot)
	if !ok {
		return vmerror.New(vmerror.KindMissingStaticObjectKeys, "missing object key tuple at slot %d", inst.Slot)
	}

	obj, err := objectMapOf(v)
	if err != nil {
		return err
	}
	ref, err := obj.Borrow()
	if err != nil {
		return err
	}
	m := *ref.Get()
	if inst.Exact && m.Len() != len(keys) {
		ref.Release()
		vm.stack.Push(value.NewBool(false))
		return nil
	}
	match := true
	for _, k := range keys {
		if _, present := m.Get(k); !present {
			match = false
			break
		}
	}
	ref.Release()
	vm.stack.Push(value.NewBool(match))
	return nil
}

// is implements `a is b` (section 4.4): Option/Result dispatch against
// context-registered Some/None/Ok/Err type tags; everything else resolves
// the type descriptor for the right operand's hash (unit first, then
// context) and compares its value type against the left operand's
// runtime type hash.
func (vm *VM) is(u unit.CompilationUnit, ctx context.Context) error {
	rhs, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	lhs, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if rhs.Kind() != value.KindType {
		return vmerror.New(vmerror.KindUnsupportedIs, "right-hand side of `is` must be a Type, got %s", rhs.Kind())
	}
	want := rhs.AsType()

	switch lhs.Kind() {
	case value.KindOption:
		types, ok := ctx.OptionTypes()
		if !ok {
			return vmerror.New(vmerror.KindMissingType, "no Option types registered")
		}
		ref, err := lhs.AsOptionCell().Borrow()
		if err != nil {
			return err
		}
		some := ref.Get().Some
		ref.Release()
		var got value.Hash
		if some {
			got = types.SomeType
		} else {
			got = types.NoneType
		}
		vm.stack.Push(value.NewBool(got == want))
		return nil

	case value.KindResult:
		types, ok := ctx.ResultTypes()
		if !ok {
			return vmerror.New(vmerror.KindMissingType, "no Result types registered")
		}
		ref, err := lhs.AsResultCell().Borrow()
		if err != nil {
			return err
		}
		ok2 := ref.Get().Ok
		ref.Release()
		var got value.Hash
		if ok2 {
			got = types.OkType
		} else {
			got = types.ErrType
		}
		vm.stack.Push(value.NewBool(got == want))
		return nil

	case value.KindTypedTuple, value.KindTypedObject:
		vm.stack.Push(value.NewBool(lhs.TypeHash() == want))
		return nil

	default:
		info, ok := u.LookupType(want)
		if !ok {
			info, ok = ctx.LookupType(want)
		}
		if !ok {
			return vmerror.New(vmerror.KindMissingType, "no type descriptor registered for hash %x", uint64(want))
		}
		vm.stack.Push(value.NewBool(lhs.TypeHash() == info.ValueType))
		return nil
	}
}
