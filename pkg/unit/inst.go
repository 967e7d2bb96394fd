package unit

import "github.com/kristofer/smogvm/pkg/value"

// Op identifies a single bytecode operation. The operand fields an Op
// actually reads are documented alongside each constant below; unused
// fields on an Inst are simply left at their zero value.
type Op uint8

const (
	// === Constructors ===
	//
	// Push a freshly constructed value onto the stack.

	// OpUnit pushes Value::Unit.
	OpUnit Op = iota
	// OpBool pushes Bool. Reads: Bool.
	OpBool
	// OpInteger pushes Integer. Reads: Integer.
	OpInteger
	// OpFloat pushes Float. Reads: Float.
	OpFloat
	// OpChar pushes Char. Reads: Char.
	OpChar
	// OpByte pushes Byte. Reads: Byte.
	OpByte
	// OpType pushes Type(hash). Reads: Hash.
	OpType
	// OpVec pops Count values (last-popped becomes index 0) into a new
	// Vec. Reads: Count.
	OpVec
	// OpTuple pops Count values (last-popped becomes index 0) into a new
	// Tuple. Reads: Count.
	OpTuple
	// OpObject reads the key tuple at Slot from the unit, pops one value
	// per key in the key tuple's order, and constructs an Object.
	// Reads: Slot.
	OpObject
	// OpTypedObject is OpObject tagged with a type hash. Reads: Hash, Slot.
	OpTypedObject
	// OpString pushes the interned string handle at Slot as StaticString.
	// Reads: Slot.
	OpString
	// OpBytes pushes an owned copy of the interned bytes at Slot.
	// Reads: Slot.
	OpBytes
	// OpStringConcat pops Count items (String/StaticString/Integer/Float;
	// anything else fails) and pushes the concatenated String.
	// Reads: Count, SizeHint.
	OpStringConcat

	// === Arithmetic ===
	//
	// Pop two operands, push one result. Integer/Integer and Float/Float
	// use checked native arithmetic; any other pairing dispatches to the
	// receiver's instance ADD/SUB/MUL/DIV method with (rhs, lhs).

	OpAdd
	OpSub
	OpMul
	OpDiv
	// OpAddAssign/.../OpDivAssign mutate the stack slot at Offset in
	// place with the arithmetic result. Reads: Offset.
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign

	// === Comparison ===

	OpGt
	OpGte
	OpLt
	OpLte
	OpEq
	OpNeq

	// === Boolean / unary ===

	// OpAnd/OpOr require both operands Bool.
	OpAnd
	OpOr
	// OpNot negates a Bool operand.
	OpNot

	// === Stack shuffling ===

	// OpPop discards the top value.
	OpPop
	// OpPopN discards the top Count values. Reads: Count.
	OpPopN
	// OpClean pops the top, pops Count more, then re-pushes the saved
	// top. Reads: Count.
	OpClean
	// OpCopy clones the value at Offset onto the top. Reads: Offset.
	OpCopy
	// OpDrop is a bounds-checked no-op. Reads: Offset.
	OpDrop
	// OpDup duplicates the top value.
	OpDup
	// OpReplace pops the top and swaps it into the slot at Offset.
	// Reads: Offset.
	OpReplace

	// === Control flow ===

	// OpJump unconditionally adjusts ip by Offset.
	OpJump
	// OpJumpIf pops a Bool and jumps by Offset if true.
	OpJumpIf
	// OpJumpIfNot pops a Bool and jumps by Offset if false.
	OpJumpIfNot
	// OpPopAndJumpIf pops a Bool; if true, pops Count more and jumps by
	// Offset. Used for scope-balanced break/pattern arms.
	// Reads: Count, Offset.
	OpPopAndJumpIf
	// OpPopAndJumpIfNot is OpPopAndJumpIf with the condition inverted.
	// Reads: Count, Offset.
	OpPopAndJumpIfNot
	// OpJumpIfBranch jumps by Offset iff the branch register equals
	// Branch, clearing it on match. Reads: Branch, Offset.
	OpJumpIfBranch

	// === Calls / return ===

	// OpCall resolves Hash; an Offset{Immediate} function pushes a call
	// frame, an Offset{Async} function spins up an async sub-VM and
	// pushes a Future, and a Tuple{ty} function pops Args values into a
	// TypedTuple. An unresolved hash falls through to the context.
	// Reads: Hash, Args.
	OpCall
	// OpCallInstance re-hashes Hash against the receiver's (stack top)
	// type before dispatching like OpCall. Reads: Hash, Args.
	OpCallInstance
	// OpCallFn pops a Value::Type(hash) and dispatches like OpCall.
	// Reads: Args.
	OpCallFn
	// OpLoadInstanceFn pops the receiver and pushes Value::Type(hash)
	// resolved against its type. Reads: Hash.
	OpLoadInstanceFn
	// OpReturn pops the return value, pops the call frame, pushes the
	// return value back.
	OpReturn
	// OpReturnUnit is OpReturn with an implicit Value::Unit.
	OpReturnUnit

	// === Indexing ===

	// OpIndexGet/OpIndexSet operate on Object/TypedObject keyed by a
	// popped String/StaticString index, falling through to instance
	// INDEX_GET/INDEX_SET handlers for other target/index combinations.
	OpIndexGet
	OpIndexSet
	// OpVecIndexGet is a direct bounds-checked Vec access. Reads: Index.
	OpVecIndexGet
	// OpTupleIndexGet operates on Tuple, and additionally Result (Ok or
	// Err, as a 1-tuple), Option (Some as a 1-tuple, None as empty) and
	// TypedTuple. Reads: Index.
	OpTupleIndexGet
	// OpObjectSlotIndexGet reads by the interned key at Slot. Reads: Slot.
	OpObjectSlotIndexGet

	// === Pattern matching ===

	OpIsUnit
	OpIsErr
	OpIsNone
	// OpEqByte/.../OpEqStaticString pop and push Bool; a type mismatch
	// pushes false rather than failing.
	OpEqByte
	OpEqCharacter
	OpEqInteger
	OpEqStaticString
	// OpMatchVec pushes true if the top is a Vec with Len (or at-least
	// Len when !Exact) items. Reads: Len, Exact.
	OpMatchVec
	// OpMatchTuple matches Tuple directly, and also Result (1-ary), Option
	// (Some 1-ary, None 0-ary) and TypedTuple (by arity) when TupleLike.
	// Reads: TupleLike, Len, Exact.
	OpMatchTuple
	// OpMatchObject tests the object-like key set against the key tuple
	// at Slot (superset, or exactly when Exact). Reads: ObjectLike, Slot, Exact.
	OpMatchObject
	// OpResultUnwrap fails with ExpectedResultOk on Err.
	OpResultUnwrap
	// OpOptionUnwrap fails with ExpectedOptionSome on None.
	OpOptionUnwrap
	// OpIs implements `a is b` (section 4.4).
	OpIs

	// === Async ===

	// OpAwait pops a Future, polls it to completion, pushes its value.
	OpAwait
	// OpSelect pops Args futures and awaits the first to complete.
	// Reads: Args.
	OpSelect
	// OpYield pops the top value and suspends the current execution,
	// handing that value to whoever is resuming this generator/stream.
	// The next resume pushes its argument onto the stack and continues
	// at the instruction following OpYield.
	OpYield

	// === Panic ===

	// OpPanic aborts execution with a symbolic Reason. Reads: Str.
	OpPanic
)

// Inst is a single typed bytecode instruction. Only the fields relevant
// to Op are meaningful; see the Op constants above for which apply.
type Inst struct {
	Op Op

	Hash  value.Hash
	Args  int
	Slot  int
	Count int
	Index int

	Offset int // signed jump delta
	Branch int

	Len        int
	Exact      bool
	TupleLike  bool
	ObjectLike bool

	SizeHint int

	Bool     bool
	Integer  int64
	Float    float64
	Char     rune
	Byte     byte
	Str      string
}
