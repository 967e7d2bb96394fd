package vm

import (
	"strconv"
	"strings"

	"github.com/kristofer/smogvm/pkg/shared"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

func (vm *VM) dispatchConstruct(u unit.CompilationUnit, inst unit.Inst) error {
	switch inst.Op {
	case unit.OpUnit:
		vm.stack.Push(value.Unit())
	case unit.OpBool:
		vm.stack.Push(value.NewBool(inst.Bool))
	case unit.OpInteger:
		vm.stack.Push(value.NewInteger(inst.Integer))
	case unit.OpFloat:
		vm.stack.Push(value.NewFloat(inst.Float))
	case unit.OpChar:
		vm.stack.Push(value.NewChar(inst.Char))
	case unit.OpByte:
		vm.stack.Push(value.NewByte(inst.Byte))
	case unit.OpType:
		vm.stack.Push(value.NewType(inst.Hash))
	case unit.OpVec:
		items, err := vm.popReversed(inst.Count)
		if err != nil {
			return err
		}
		vm.stack.Push(value.Vec(items))
	case unit.OpTuple:
		items, err := vm.popReversed(inst.Count)
		if err != nil {
			return err
		}
		vm.stack.Push(value.Tuple(items))
	case unit.OpObject:
		obj, err := vm.buildObject(u, inst.Slot)
		if err != nil {
			return err
		}
		vm.stack.Push(value.Object(obj))
	case unit.OpTypedObject:
		obj, err := vm.buildObject(u, inst.Slot)
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewTypedObject(inst.Hash, shared.New(value.TypedObjectData{Ty: inst.Hash, Map: obj})))
	case unit.OpString:
		s, err := u.LookupString(inst.Slot)
		if err != nil {
			return err
		}
		vm.stack.Push(value.NewStaticString(s))
	case unit.OpBytes:
		b, err := u.LookupBytes(inst.Slot)
		if err != nil {
			return err
		}
		owned := append([]byte(nil), b...)
		vm.stack.Push(value.Bytes(owned))
	case unit.OpStringConcat:
		return vm.stringConcat(inst.Count, inst.SizeHint)
	}
	return nil
}

// popReversed pops n values in LIFO order and returns them so the
// last-popped value lands at index 0, restoring source order.
func (vm *VM) popReversed(n int) ([]value.Value, error) {
	items := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := vm.stack.Pop()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

// buildObject reads the key tuple at slot and pops exactly one value per
// key, in the key tuple's own order: the first key takes the current
// stack top (the last-pushed value), the second key takes the next pop,
// and so on. The compiler is expected to have pushed values in reverse
// key order to make this line up.
func (vm *VM) buildObject(u unit.CompilationUnit, slot int) (*value.OrderedMap, error) {
	keys, ok := u.LookupObjectKeys(slot)
	if !ok {
		return nil, vmerror.New(vmerror.KindMissingStaticObjectKeys, "missing object key tuple at slot %d", slot)
	}
	obj := value.NewOrderedMap()
	for _, k := range keys {
		v, err := vm.stack.Pop()
		if err != nil {
			return nil, err
		}
		obj.Set(k, v)
	}
	return obj, nil
}

func (vm *VM) stringConcat(count, sizeHint int) error {
	items, err := vm.popReversed(count)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.Grow(sizeHint)
	for _, item := range items {
		switch item.Kind() {
		case value.KindStaticString:
			b.WriteString(item.AsStaticString().Text)
		case value.KindString:
			ref, err := item.AsStringCell().Borrow()
			if err != nil {
				return err
			}
			b.WriteString(*ref.Get())
			ref.Release()
		case value.KindInteger:
			b.WriteString(strconv.FormatInt(item.AsInteger(), 10))
		case value.KindFloat:
			b.WriteString(strconv.FormatFloat(item.AsFloat(), 'g', -1, 64))
		default:
			return vmerror.New(vmerror.KindUnsupportedStringConcatArgument,
				"cannot concatenate a %s", item.Kind())
		}
	}
	vm.stack.Push(value.String(b.String()))
	return nil
}
