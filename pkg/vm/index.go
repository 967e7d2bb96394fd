package vm

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/shared"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchIndex(u unit.CompilationUnit, ctx context.Context, inst unit.Inst) error {
	switch inst.Op {
	case unit.OpIndexGet:
		return vm.indexGet(ctx)
	case unit.OpIndexSet:
		return vm.indexSet(ctx)
	case unit.OpVecIndexGet:
		return vm.vecIndexGet(inst.Index)
	case unit.OpTupleIndexGet:
		return vm.tupleIndexGet(inst.Index)
	case unit.OpObjectSlotIndexGet:
		return vm.objectSlotIndexGet(u, inst.Slot)
	}
	return vmerror.New(vmerror.KindPanic, "unreachable index op %s", inst.Op)
}

func keyString(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KindStaticString:
		return v.AsStaticString().Text, true
	case value.KindString:
		ref, err := v.AsStringCell().Borrow()
		if err != nil {
			return "", false
		}
		defer ref.Release()
		return *ref.Get(), true
	}
	return "", false
}

func (vm *VM) indexGet(ctx context.Context) error {
	index, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	target, err := vm.stack.Pop()
	if err != nil {
		return err
	}

	if target.Kind() == value.KindObject || target.Kind() == value.KindTypedObject {
		if key, ok := keyString(index); ok {
			obj, err := objectMapOf(target)
			if err != nil {
				return err
			}
			ref, err := obj.Borrow()
			if err != nil {
				return err
			}
			defer ref.Release()
			v, found := (*ref.Get()).Get(key)
			if !found {
				if target.Kind() == value.KindTypedObject {
					return vmerror.New(vmerror.KindMissingStructField, "field %q was not declared on this type", key)
				}
				return vmerror.New(vmerror.KindObjectIndexMissing, "no such key %q", key)
			}
			vm.stack.Push(v)
			return nil
		}
	}

	hash := vm.hashInstance(target.TypeHash(), value.MethodIndexGet)
	handler, ok := ctx.Lookup(hash)
	if !ok {
		return vmerror.New(vmerror.KindUnsupportedIndexGet, "%s does not support index get with %s", target.Kind(), index.Kind())
	}
	vm.stack.Push(index)
	vm.stack.Push(target)
	return handler(vm.stack, 2)
}

func (vm *VM) indexSet(ctx context.Context) error {
	val, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	index, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	target, err := vm.stack.Pop()
	if err != nil {
		return err
	}

	if target.Kind() == value.KindObject || target.Kind() == value.KindTypedObject {
		if key, ok := keyString(index); ok {
			obj, err := objectMapOf(target)
			if err != nil {
				return err
			}
			ref, err := obj.Borrow()
			if err != nil {
				return err
			}
			defer ref.Release()
			m := *ref.Get()
			if target.Kind() == value.KindTypedObject {
				if _, declared := m.Get(key); !declared {
					return vmerror.New(vmerror.KindMissingStructField, "field %q was not declared on this type", key)
				}
			}
			m.Set(key, val)
			return nil
		}
	}

	hash := vm.hashInstance(target.TypeHash(), value.MethodIndexSet)
	handler, ok := ctx.Lookup(hash)
	if !ok {
		return vmerror.New(vmerror.KindUnsupportedIndexSet, "%s does not support index set with %s", target.Kind(), index.Kind())
	}
	vm.stack.Push(val)
	vm.stack.Push(index)
	vm.stack.Push(target)
	return handler(vm.stack, 3)
}

func objectMapOf(v value.Value) (*shared.Cell[*value.OrderedMap], error) {
	if v.Kind() == value.KindObject {
		return v.AsObjectCell(), nil
	}
	ref, err := v.AsTypedObjectCell().Borrow()
	if err != nil {
		return nil, err
	}
	defer ref.Release()
	return shared.New(ref.Get().Map), nil
}

func (vm *VM) vecIndexGet(index int) error {
	target, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if target.Kind() != value.KindVec {
		return vmerror.New(vmerror.KindUnexpectedValueType, "VEC_INDEX_GET requires a Vec, got %s", target.Kind())
	}
	ref, err := target.AsVecCell().Borrow()
	if err != nil {
		return err
	}
	defer ref.Release()
	items := *ref.Get()
	if index < 0 || index >= len(items) {
		return vmerror.New(vmerror.KindVecIndexMissing, "vec index %d out of bounds (len %d)", index, len(items))
	}
	vm.stack.Push(items[index])
	return nil
}

func (vm *VM) tupleIndexGet(index int) error {
	target, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	switch target.Kind() {
	case value.KindTuple:
		ref, err := target.AsTupleCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		items := *ref.Get()
		if index < 0 || index >= len(items) {
			return vmerror.New(vmerror.KindTupleIndexMissing, "tuple index %d out of bounds (len %d)", index, len(items))
		}
		vm.stack.Push(items[index])
		return nil

	case value.KindOption:
		if index != 0 {
			return vmerror.New(vmerror.KindTupleIndexMissing, "option index %d out of bounds", index)
		}
		ref, err := target.AsOptionCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		data := *ref.Get()
		if !data.Some {
			return vmerror.New(vmerror.KindTupleIndexMissing, "option is None")
		}
		vm.stack.Push(data.Value)
		return nil

	case value.KindResult:
		if index != 0 {
			return vmerror.New(vmerror.KindTupleIndexMissing, "result index %d out of bounds", index)
		}
		ref, err := target.AsResultCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		vm.stack.Push(ref.Get().Value)
		return nil

	case value.KindTypedTuple:
		ref, err := target.AsTypedTupleCell().Borrow()
		if err != nil {
			return err
		}
		defer ref.Release()
		items := ref.Get().Items
		if index < 0 || index >= len(items) {
			return vmerror.New(vmerror.KindTupleIndexMissing, "typed tuple index %d out of bounds (len %d)", index, len(items))
		}
		vm.stack.Push(items[index])
		return nil
	}
	return vmerror.New(vmerror.KindUnexpectedValueType, "TUPLE_INDEX_GET does not support %s", target.Kind())
}

func (vm *VM) objectSlotIndexGet(u unit.CompilationUnit, slot int) error {
	keys, ok := u.LookupObjectKeys(slot)
	if !ok || len(keys) != 1 {
		return vmerror.New(vmerror.KindMissingStaticObjectKeys, "missing single-key tuple at slot %d", slot)
	}
	key := keys[0]

	target, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if target.Kind() != value.KindObject && target.Kind() != value.KindTypedObject {
		return vmerror.New(vmerror.KindUnexpectedValueType, "OBJECT_SLOT_INDEX_GET requires an Object, got %s", target.Kind())
	}
	obj, err := objectMapOf(target)
	if err != nil {
		return err
	}
	ref, err := obj.Borrow()
	if err != nil {
		return err
	}
	defer ref.Release()
	v, found := (*ref.Get()).Get(key)
	if !found {
		if target.Kind() == value.KindTypedObject {
			return vmerror.New(vmerror.KindMissingStructField, "field %q was not declared on this type", key)
		}
		return vmerror.New(vmerror.KindObjectIndexMissing, "no such key %q", key)
	}
	vm.stack.Push(v)
	return nil
}
