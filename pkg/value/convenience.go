package value

import "github.com/kristofer/smogvm/pkg/shared"

// Vec allocates a fresh shared cell around items and wraps it as a
// Value::Vec. Convenience wrapper over NewVec + shared.New for the common
// case of constructing a brand-new vector.
func Vec(items []Value) Value {
	return NewVec(shared.New(items))
}

// Tuple allocates a fresh shared cell around items and wraps it as a
// Value::Tuple.
func Tuple(items []Value) Value {
	return NewTuple(shared.New(items))
}

// Object allocates a fresh shared cell around m and wraps it as a
// Value::Object.
func Object(m *OrderedMap) Value {
	return NewObject(shared.New(m))
}

// String allocates a fresh shared cell around s and wraps it as a
// Value::String.
func String(s string) Value {
	return NewString(shared.New(s))
}

// Bytes allocates a fresh shared cell around b and wraps it as a
// Value::Bytes.
func Bytes(b []byte) Value {
	return NewBytes(shared.New(b))
}

// Some wraps v as Value::Option carrying Some(v).
func Some(v Value) Value {
	return NewOption(shared.New(OptionData{Some: true, Value: v}))
}

// None constructs a Value::Option carrying None.
func None() Value {
	return NewOption(shared.New(OptionData{Some: false}))
}

// Ok wraps v as Value::Result carrying Ok(v).
func Ok(v Value) Value {
	return NewResult(shared.New(ResultData{Ok: true, Value: v}))
}

// Err wraps v as Value::Result carrying Err(v).
func Err(v Value) Value {
	return NewResult(shared.New(ResultData{Ok: false, Value: v}))
}
