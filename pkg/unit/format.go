package unit

import "fmt"

// String renders an Op's mnemonic, used by the disassembler and the
// debugger's instruction trace.
func (op Op) String() string {
	switch op {
	case OpUnit:
		return "UNIT"
	case OpBool:
		return "BOOL"
	case OpInteger:
		return "INTEGER"
	case OpFloat:
		return "FLOAT"
	case OpChar:
		return "CHAR"
	case OpByte:
		return "BYTE"
	case OpType:
		return "TYPE"
	case OpVec:
		return "VEC"
	case OpTuple:
		return "TUPLE"
	case OpObject:
		return "OBJECT"
	case OpTypedObject:
		return "TYPED_OBJECT"
	case OpString:
		return "STRING"
	case OpBytes:
		return "BYTES"
	case OpStringConcat:
		return "STRING_CONCAT"
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MUL"
	case OpDiv:
		return "DIV"
	case OpAddAssign:
		return "ADD_ASSIGN"
	case OpSubAssign:
		return "SUB_ASSIGN"
	case OpMulAssign:
		return "MUL_ASSIGN"
	case OpDivAssign:
		return "DIV_ASSIGN"
	case OpGt:
		return "GT"
	case OpGte:
		return "GTE"
	case OpLt:
		return "LT"
	case OpLte:
		return "LTE"
	case OpEq:
		return "EQ"
	case OpNeq:
		return "NEQ"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	case OpPop:
		return "POP"
	case OpPopN:
		return "POPN"
	case OpClean:
		return "CLEAN"
	case OpCopy:
		return "COPY"
	case OpDrop:
		return "DROP"
	case OpDup:
		return "DUP"
	case OpReplace:
		return "REPLACE"
	case OpJump:
		return "JUMP"
	case OpJumpIf:
		return "JUMP_IF"
	case OpJumpIfNot:
		return "JUMP_IF_NOT"
	case OpPopAndJumpIf:
		return "POP_AND_JUMP_IF"
	case OpPopAndJumpIfNot:
		return "POP_AND_JUMP_IF_NOT"
	case OpJumpIfBranch:
		return "JUMP_IF_BRANCH"
	case OpCall:
		return "CALL"
	case OpCallInstance:
		return "CALL_INSTANCE"
	case OpCallFn:
		return "CALL_FN"
	case OpLoadInstanceFn:
		return "LOAD_INSTANCE_FN"
	case OpReturn:
		return "RETURN"
	case OpReturnUnit:
		return "RETURN_UNIT"
	case OpIndexGet:
		return "INDEX_GET"
	case OpIndexSet:
		return "INDEX_SET"
	case OpVecIndexGet:
		return "VEC_INDEX_GET"
	case OpTupleIndexGet:
		return "TUPLE_INDEX_GET"
	case OpObjectSlotIndexGet:
		return "OBJECT_SLOT_INDEX_GET"
	case OpIsUnit:
		return "IS_UNIT"
	case OpIsErr:
		return "IS_ERR"
	case OpIsNone:
		return "IS_NONE"
	case OpEqByte:
		return "EQ_BYTE"
	case OpEqCharacter:
		return "EQ_CHARACTER"
	case OpEqInteger:
		return "EQ_INTEGER"
	case OpEqStaticString:
		return "EQ_STATIC_STRING"
	case OpMatchVec:
		return "MATCH_VEC"
	case OpMatchTuple:
		return "MATCH_TUPLE"
	case OpMatchObject:
		return "MATCH_OBJECT"
	case OpResultUnwrap:
		return "RESULT_UNWRAP"
	case OpOptionUnwrap:
		return "OPTION_UNWRAP"
	case OpIs:
		return "IS"
	case OpAwait:
		return "AWAIT"
	case OpSelect:
		return "SELECT"
	case OpYield:
		return "YIELD"
	case OpPanic:
		return "PANIC"
	default:
		return fmt.Sprintf("OP(%d)", int(op))
	}
}

// String renders the MNEMONIC plus whichever operands that Op reads, for
// use by the debugger's instruction trace and test failure output. The ip
// is not included; Disassemble and the debugger prefix it themselves.
func (i Inst) String() string {
	switch i.Op {
	case OpBool:
		return fmt.Sprintf("%s %v", i.Op, i.Bool)
	case OpInteger:
		return fmt.Sprintf("%s %d", i.Op, i.Integer)
	case OpFloat:
		return fmt.Sprintf("%s %g", i.Op, i.Float)
	case OpChar:
		return fmt.Sprintf("%s %q", i.Op, i.Char)
	case OpByte:
		return fmt.Sprintf("%s %d", i.Op, i.Byte)
	case OpType:
		return fmt.Sprintf("%s %x", i.Op, uint64(i.Hash))
	case OpVec, OpTuple, OpPopN, OpClean:
		return fmt.Sprintf("%s %d", i.Op, i.Count)
	case OpObject, OpString, OpBytes, OpObjectSlotIndexGet:
		return fmt.Sprintf("%s slot=%d", i.Op, i.Slot)
	case OpTypedObject:
		return fmt.Sprintf("%s ty=%x slot=%d", i.Op, uint64(i.Hash), i.Slot)
	case OpStringConcat:
		return fmt.Sprintf("%s len=%d hint=%d", i.Op, i.Count, i.SizeHint)
	case OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpCopy, OpDrop, OpReplace:
		return fmt.Sprintf("%s offset=%d", i.Op, i.Offset)
	case OpJump, OpJumpIf, OpJumpIfNot:
		return fmt.Sprintf("%s %+d", i.Op, i.Offset)
	case OpPopAndJumpIf, OpPopAndJumpIfNot:
		return fmt.Sprintf("%s count=%d %+d", i.Op, i.Count, i.Offset)
	case OpJumpIfBranch:
		return fmt.Sprintf("%s branch=%d %+d", i.Op, i.Branch, i.Offset)
	case OpCall, OpCallInstance:
		return fmt.Sprintf("%s hash=%x args=%d", i.Op, uint64(i.Hash), i.Args)
	case OpCallFn:
		return fmt.Sprintf("%s args=%d", i.Op, i.Args)
	case OpLoadInstanceFn:
		return fmt.Sprintf("%s hash=%x", i.Op, uint64(i.Hash))
	case OpVecIndexGet, OpTupleIndexGet:
		return fmt.Sprintf("%s index=%d", i.Op, i.Index)
	case OpEqByte:
		return fmt.Sprintf("%s %d", i.Op, i.Byte)
	case OpEqCharacter:
		return fmt.Sprintf("%s %q", i.Op, i.Char)
	case OpEqInteger:
		return fmt.Sprintf("%s %d", i.Op, i.Integer)
	case OpEqStaticString:
		return fmt.Sprintf("%s slot=%d", i.Op, i.Slot)
	case OpMatchVec:
		return fmt.Sprintf("%s len=%d exact=%v", i.Op, i.Len, i.Exact)
	case OpMatchTuple:
		return fmt.Sprintf("%s tuple_like=%v len=%d exact=%v", i.Op, i.TupleLike, i.Len, i.Exact)
	case OpMatchObject:
		return fmt.Sprintf("%s object_like=%v slot=%d exact=%v", i.Op, i.ObjectLike, i.Slot, i.Exact)
	case OpSelect:
		return fmt.Sprintf("%s len=%d", i.Op, i.Args)
	case OpPanic:
		return fmt.Sprintf("%s %q", i.Op, i.Str)
	default:
		return i.Op.String()
	}
}

// Disassemble renders every instruction in insts as one line per entry,
// prefixed with its ip, e.g. "0003: CALL hash=... args=1".
func Disassemble(insts []Inst) string {
	out := make([]byte, 0, len(insts)*24)
	for ip, inst := range insts {
		out = fmt.Appendf(out, "%04d: %s\n", ip, inst)
	}
	return string(out)
}
