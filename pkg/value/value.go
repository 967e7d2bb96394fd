// Package value implements the dynamically-typed Value model the virtual
// machine operates on: a tagged union of primitives and shared heap
// values, plus the structural equality and same-variant ordering rules
// instructions dispatch through.
package value

import (
	"github.com/kristofer/smogvm/pkg/shared"
)

// Kind tags which variant a Value holds.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindByte
	KindInteger
	KindFloat
	KindChar
	KindStaticString
	KindString
	KindBytes
	KindVec
	KindTuple
	KindObject
	KindTypedTuple
	KindTypedObject
	KindOption
	KindResult
	KindFuture
	KindStream
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindStaticString:
		return "static_string"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindVec:
		return "vec"
	case KindTuple:
		return "tuple"
	case KindObject:
		return "object"
	case KindTypedTuple:
		return "typed_tuple"
	case KindTypedObject:
		return "typed_object"
	case KindOption:
		return "option"
	case KindResult:
		return "result"
	case KindFuture:
		return "future"
	case KindStream:
		return "stream"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// StaticString is an immutable interned string, identified by its handle.
// Identical handles compare equal by pointer comparison alone; distinct
// handles (unit.Unit.Intern makes a new one per call, even for repeated
// text) fall back to comparing their text.
type StaticString struct {
	Text string
}

// TypedTupleData is the payload of a Value::TypedTuple: a fixed-length
// tuple tagged with a user type hash.
type TypedTupleData struct {
	Ty    Hash
	Items []Value
}

// TypedObjectData is the payload of a Value::TypedObject: an ordered
// string->Value map tagged with a user type hash.
type TypedObjectData struct {
	Ty  Hash
	Map *OrderedMap
}

// OptionData is the payload of a Value::Option.
type OptionData struct {
	Some  bool
	Value Value
}

// ResultData is the payload of a Value::Result.
type ResultData struct {
	Ok    bool
	Value Value
}

// Future is implemented by anything a Value::Future can wrap: a suspended
// computation producing a single Value. Package async implements it for
// async function calls, each driving its own sub-VM; this package only
// needs the shape to store and await them.
type Future interface {
	// Poll attempts to make progress without blocking other than the
	// work the poll itself performs. Returns (value, true, nil) once
	// resolved, (zero, false, nil) if still pending.
	Poll() (Value, bool, error)
	// Completed reports whether Poll has already resolved, without
	// making further progress.
	Completed() bool
}

// Stream is implemented by anything a Value::Stream can wrap: a lazy
// sequence driven by resuming a generator VM.
type Stream interface {
	// Resume advances the generator with the supplied resume value,
	// returning (value, true, nil) on yield and (zero, false, nil) on
	// completion.
	Resume(v Value) (Value, bool, error)
	Completed() bool
}

// Value is the tagged union every stack slot, local and heap handle in
// the VM holds. The zero Value is Unit.
type Value struct {
	kind Kind

	b     bool
	i     int64
	f     float64
	c     rune
	byt   byte
	typeH Hash

	ttag Hash // TypedTuple/TypedObject type tag, cached outside the cell

	static *StaticString
	str    *shared.Cell[string]
	bytes  *shared.Cell[[]byte]
	vec    *shared.Cell[[]Value]
	tuple  *shared.Cell[[]Value]
	object *shared.Cell[*OrderedMap]
	ttuple *shared.Cell[TypedTupleData]
	tobj   *shared.Cell[TypedObjectData]
	option *shared.Cell[OptionData]
	result *shared.Cell[ResultData]
	future *shared.Cell[Future]
	stream *shared.Cell[Stream]
}

// Kind returns the variant tag of v.
func (v Value) Kind() Kind { return v.kind }

// Unit is the single Unit value.
func Unit() Value { return Value{kind: KindUnit} }

func NewBool(b bool) Value       { return Value{kind: KindBool, b: b} }
func NewByte(b byte) Value       { return Value{kind: KindByte, byt: b} }
func NewInteger(i int64) Value   { return Value{kind: KindInteger, i: i} }
func NewFloat(f float64) Value   { return Value{kind: KindFloat, f: f} }
func NewChar(c rune) Value       { return Value{kind: KindChar, c: c} }
func NewType(h Hash) Value       { return Value{kind: KindType, typeH: h} }

// NewStaticString wraps an interned string handle.
func NewStaticString(s *StaticString) Value {
	return Value{kind: KindStaticString, static: s}
}

// NewString wraps a shared, mutable owned string cell.
func NewString(c *shared.Cell[string]) Value {
	return Value{kind: KindString, str: c}
}

// NewBytes wraps a shared, mutable byte-sequence cell.
func NewBytes(c *shared.Cell[[]byte]) Value {
	return Value{kind: KindBytes, bytes: c}
}

// NewVec wraps a shared, ordered Value sequence.
func NewVec(c *shared.Cell[[]Value]) Value {
	return Value{kind: KindVec, vec: c}
}

// NewTuple wraps a shared, fixed-length boxed Value sequence.
func NewTuple(c *shared.Cell[[]Value]) Value {
	return Value{kind: KindTuple, tuple: c}
}

// NewObject wraps a shared, insertion-ordered string->Value mapping.
func NewObject(c *shared.Cell[*OrderedMap]) Value {
	return Value{kind: KindObject, object: c}
}

// NewTypedTuple wraps a shared type-tagged tuple. ty must match the Ty
// field stored in the cell's TypedTupleData; it is cached on the Value so
// `is` tests can read the tag without taking a borrow.
func NewTypedTuple(ty Hash, c *shared.Cell[TypedTupleData]) Value {
	return Value{kind: KindTypedTuple, ttag: ty, ttuple: c}
}

// NewTypedObject wraps a shared type-tagged object, mirroring NewTypedTuple.
func NewTypedObject(ty Hash, c *shared.Cell[TypedObjectData]) Value {
	return Value{kind: KindTypedObject, ttag: ty, tobj: c}
}

// NewOption wraps a shared optional Value.
func NewOption(c *shared.Cell[OptionData]) Value {
	return Value{kind: KindOption, option: c}
}

// NewResult wraps a shared ok-or-err Value.
func NewResult(c *shared.Cell[ResultData]) Value {
	return Value{kind: KindResult, result: c}
}

// NewFuture wraps a shared handle to a suspended computation.
func NewFuture(c *shared.Cell[Future]) Value {
	return Value{kind: KindFuture, future: c}
}

// NewStream wraps a shared handle to a lazy generator-driven sequence.
func NewStream(c *shared.Cell[Stream]) Value {
	return Value{kind: KindStream, stream: c}
}

// Accessors. None of them checks the Kind: called against the wrong Kind,
// each returns its field's zero value (or a nil cell), so callers in the
// VM dispatch on Kind() first.

func (v Value) AsBool() bool                          { return v.b }
func (v Value) AsByte() byte                           { return v.byt }
func (v Value) AsInteger() int64                        { return v.i }
func (v Value) AsFloat() float64                        { return v.f }
func (v Value) AsChar() rune                            { return v.c }
func (v Value) AsType() Hash                            { return v.typeH }
func (v Value) AsStaticString() *StaticString           { return v.static }
func (v Value) AsStringCell() *shared.Cell[string]      { return v.str }
func (v Value) AsBytesCell() *shared.Cell[[]byte]       { return v.bytes }
func (v Value) AsVecCell() *shared.Cell[[]Value]        { return v.vec }
func (v Value) AsTupleCell() *shared.Cell[[]Value]      { return v.tuple }
func (v Value) AsObjectCell() *shared.Cell[*OrderedMap] { return v.object }
func (v Value) AsTypedTupleCell() *shared.Cell[TypedTupleData] { return v.ttuple }
func (v Value) AsTypedObjectCell() *shared.Cell[TypedObjectData] { return v.tobj }
func (v Value) AsOptionCell() *shared.Cell[OptionData]  { return v.option }
func (v Value) AsResultCell() *shared.Cell[ResultData]  { return v.result }
func (v Value) AsFutureCell() *shared.Cell[Future]      { return v.future }
func (v Value) AsStreamCell() *shared.Cell[Stream]      { return v.stream }

// IsUnit reports whether v is Value::Unit.
func (v Value) IsUnit() bool { return v.kind == KindUnit }

// TypeHash returns the runtime type hash used by `is` dispatch (section
// 4.4). TypedTuple/TypedObject report their stored tag; Option/Result are
// handled specially by the Is dispatcher using context-registered type
// hashes, not this method; every other variant reports a fixed built-in
// type hash.
func (v Value) TypeHash() Hash {
	switch v.kind {
	case KindUnit:
		return TypeUnit
	case KindBool:
		return TypeBool
	case KindByte:
		return TypeByte
	case KindInteger:
		return TypeInteger
	case KindFloat:
		return TypeFloat
	case KindChar:
		return TypeChar
	case KindStaticString, KindString:
		return TypeString
	case KindBytes:
		return TypeBytes
	case KindVec:
		return TypeVec
	case KindTuple:
		return TypeTuple
	case KindObject:
		return TypeObject
	case KindTypedTuple, KindTypedObject:
		return v.ttag
	case KindOption:
		return TypeOption
	case KindResult:
		return TypeResult
	case KindFuture:
		return TypeFuture
	case KindStream:
		return TypeStream
	case KindType:
		return TypeTypeValue
	default:
		return 0
	}
}
