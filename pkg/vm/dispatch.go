package vm

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// dispatch executes a single decoded instruction. updateIP is true on
// entry; a handler that already repositioned ip itself (taken jumps,
// Immediate calls) clears it so Step does not also advance by one.
// Returns leave it set: they restore ip to the call instruction, and the
// advance moves past it.
func (vm *VM) dispatch(u unit.CompilationUnit, ctx context.Context, inst unit.Inst, updateIP *bool) error {
	switch inst.Op {
	// Constructors
	case unit.OpUnit, unit.OpBool, unit.OpInteger, unit.OpFloat, unit.OpChar,
		unit.OpByte, unit.OpType, unit.OpVec, unit.OpTuple, unit.OpObject,
		unit.OpTypedObject, unit.OpString, unit.OpBytes, unit.OpStringConcat:
		return vm.dispatchConstruct(u, inst)

	// Arithmetic
	case unit.OpAdd, unit.OpSub, unit.OpMul, unit.OpDiv,
		unit.OpAddAssign, unit.OpSubAssign, unit.OpMulAssign, unit.OpDivAssign:
		return vm.dispatchArithmetic(ctx, inst)

	// Comparison / boolean
	case unit.OpGt, unit.OpGte, unit.OpLt, unit.OpLte, unit.OpEq, unit.OpNeq,
		unit.OpAnd, unit.OpOr, unit.OpNot:
		return vm.dispatchComparison(inst)

	// Stack shuffling
	case unit.OpPop, unit.OpPopN, unit.OpClean, unit.OpCopy, unit.OpDrop,
		unit.OpDup, unit.OpReplace:
		return vm.dispatchStackOps(inst)

	// Control flow
	case unit.OpJump, unit.OpJumpIf, unit.OpJumpIfNot, unit.OpPopAndJumpIf,
		unit.OpPopAndJumpIfNot, unit.OpJumpIfBranch:
		return vm.dispatchControl(inst, updateIP)

	// Calls / return
	case unit.OpCall, unit.OpCallInstance, unit.OpCallFn, unit.OpLoadInstanceFn,
		unit.OpReturn, unit.OpReturnUnit:
		return vm.dispatchCall(u, ctx, inst, updateIP)

	// Indexing
	case unit.OpIndexGet, unit.OpIndexSet, unit.OpVecIndexGet,
		unit.OpTupleIndexGet, unit.OpObjectSlotIndexGet:
		return vm.dispatchIndex(u, ctx, inst)

	// Pattern matching
	case unit.OpIsUnit, unit.OpIsErr, unit.OpIsNone, unit.OpEqByte,
		unit.OpEqCharacter, unit.OpEqInteger, unit.OpEqStaticString,
		unit.OpMatchVec, unit.OpMatchTuple, unit.OpMatchObject,
		unit.OpResultUnwrap, unit.OpOptionUnwrap, unit.OpIs:
		return vm.dispatchPattern(u, ctx, inst)

	// Async
	case unit.OpAwait, unit.OpSelect, unit.OpYield:
		return vm.dispatchAsync(inst)

	// Panic
	case unit.OpPanic:
		return vmerror.New(vmerror.KindPanic, "%s", inst.Str)

	default:
		return vmerror.New(vmerror.KindPanic, "unimplemented opcode %s", inst.Op)
	}
}
