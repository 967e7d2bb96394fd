// Package vmerror defines the fault taxonomy shared by the value model,
// shared cells, the virtual machine and the indexer scope stack.
//
// Every fault the execution engine can raise is represented by a Kind and
// carried inside a single *Error type, following the same stack-trace
// carrying error shape the rest of the toolchain uses.
package vmerror

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the category of a runtime fault.
//
// Kinds are grouped the way section 7 of the execution engine design groups
// them: panics, stack faults, borrow faults, conversions, arithmetic,
// lookup misses, call mismatches and unsupported operations.
type Kind int

const (
	// KindPanic is a VM-level panic, either raised by the Panic instruction
	// or by an internal invariant violation.
	KindPanic Kind = iota
	// KindStackError covers stack underflow and unbalanced call frames.
	KindStackError
	// KindAccessError covers shared-cell borrow conflicts.
	KindAccessError
	// KindValueError covers generic value-conversion failures raised by
	// native handlers.
	KindValueError
	// KindOverflow is raised by checked integer/float arithmetic.
	KindOverflow
	// KindUnderflow is raised by checked integer/float arithmetic.
	KindUnderflow
	// KindDivideByZero is raised by Div when the divisor is zero.
	KindDivideByZero
	// KindIPOutOfBounds is raised when the instruction pointer runs past
	// the end of the unit's instruction table.
	KindIPOutOfBounds
	// KindMissingFunction is raised when Call cannot resolve its hash in
	// either the unit or the context.
	KindMissingFunction
	// KindMissingInstanceFunction is raised when CallInstance cannot
	// resolve the receiver-typed hash in the context.
	KindMissingInstanceFunction
	// KindMissingType is raised when a Type hash cannot be resolved by Is.
	KindMissingType
	// KindMissingStaticString is raised by String/EqStaticString (interned
	// strings) and Bytes (interned bytes) when a slot is out of range.
	KindMissingStaticString
	// KindMissingStaticObjectKeys is raised by Object/TypedObject when a
	// key-tuple slot is out of range.
	KindMissingStaticObjectKeys
	// KindMissingStructField is raised by IndexSet/IndexGet against a
	// TypedObject field that was not declared.
	KindMissingStructField
	// KindArgumentCountMismatch is raised by Call/CallInstance/CallFn when
	// the supplied argument count does not match the function signature.
	KindArgumentCountMismatch
	// KindUnsupportedBinaryOperation is raised by comparison and boolean
	// instructions given incompatible operand types.
	KindUnsupportedBinaryOperation
	// KindUnsupportedUnaryOperation is raised by Not given a non-Bool
	// operand.
	KindUnsupportedUnaryOperation
	// KindUnsupportedIs is raised by Is when the right operand is not a
	// Value::Type.
	KindUnsupportedIs
	// KindUnsupportedIndexGet is raised by IndexGet against a target/index
	// combination with no instance INDEX_GET handler.
	KindUnsupportedIndexGet
	// KindUnsupportedIndexSet is raised by IndexSet against a target/index
	// combination with no instance INDEX_SET handler.
	KindUnsupportedIndexSet
	// KindUnsupportedCallFn is raised by CallFn when the popped value is
	// not a Value::Type.
	KindUnsupportedCallFn
	// KindUnsupportedStringConcatArgument is raised by StringConcat given
	// an operand that is not String, StaticString, Integer or Float.
	KindUnsupportedStringConcatArgument
	// KindVecIndexMissing is raised by VecIndexGet when the index is out
	// of bounds.
	KindVecIndexMissing
	// KindTupleIndexMissing is raised by TupleIndexGet when the index is
	// out of bounds.
	KindTupleIndexMissing
	// KindObjectIndexMissing is raised by ObjectSlotIndexGet when the key
	// is absent.
	KindObjectIndexMissing
	// KindUnexpectedValueType is raised when a native conversion is given
	// a value of the wrong variant.
	KindUnexpectedValueType
	// KindExpectedResultOk is raised by ResultUnwrap against Err.
	KindExpectedResultOk
	// KindExpectedOptionSome is raised by OptionUnwrap against None.
	KindExpectedOptionSome
	// KindExpectedVecLength is raised when a fixed-arity vec destructure
	// does not match.
	KindExpectedVecLength
	// KindYieldOutsideFunction is raised by the indexer's mark_yield when
	// no enclosing function or closure level exists.
	KindYieldOutsideFunction
	// KindGeneratorComplete is raised by resuming an already-complete
	// generator or stream execution.
	KindGeneratorComplete
)

var kindNames = map[Kind]string{
	KindPanic:                           "panic",
	KindStackError:                      "stack error",
	KindAccessError:                     "access error",
	KindValueError:                      "value error",
	KindOverflow:                        "overflow",
	KindUnderflow:                       "underflow",
	KindDivideByZero:                    "divide by zero",
	KindIPOutOfBounds:                   "ip out of bounds",
	KindMissingFunction:                 "missing function",
	KindMissingInstanceFunction:         "missing instance function",
	KindMissingType:                     "missing type",
	KindMissingStaticString:             "missing static string",
	KindMissingStaticObjectKeys:         "missing static object keys",
	KindMissingStructField:              "missing struct field",
	KindArgumentCountMismatch:           "argument count mismatch",
	KindUnsupportedBinaryOperation:      "unsupported binary operation",
	KindUnsupportedUnaryOperation:       "unsupported unary operation",
	KindUnsupportedIs:                   "unsupported is",
	KindUnsupportedIndexGet:             "unsupported index get",
	KindUnsupportedIndexSet:             "unsupported index set",
	KindUnsupportedCallFn:               "unsupported call fn",
	KindUnsupportedStringConcatArgument: "unsupported string concat argument",
	KindVecIndexMissing:                 "vec index missing",
	KindTupleIndexMissing:               "tuple index missing",
	KindObjectIndexMissing:              "object index missing",
	KindUnexpectedValueType:             "unexpected value type",
	KindExpectedResultOk:                "expected result ok",
	KindExpectedOptionSome:              "expected option some",
	KindExpectedVecLength:               "expected vec length",
	KindYieldOutsideFunction:            "yield outside function",
	KindGeneratorComplete:               "generator complete",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("vmerror.Kind(%d)", int(k))
}

// Frame is a single entry in an Error's trace, recorded at the point an
// instruction faulted.
type Frame struct {
	IP   int    // instruction pointer at the time of the fault
	Name string // mnemonic of the faulting instruction, empty if unknown
}

// Error is the single error type produced by the execution engine. It
// carries a Kind, a human message and an optional trace: VM.Step adds one
// Frame for the instruction that was executing when the error surfaced,
// so an error gains one frame per VM it passes through (an async sub-VM
// polled by Await/Select, then the awaiting VM). Call frames inside a
// single VM are not recorded.
type Error struct {
	Kind    Kind
	Message string
	Trace   []Frame
	cause   error
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.WithStack(fmt.Errorf(format, args...)),
	}
}

// Wrap attaches kind and message context to an underlying error, preserving
// it as the cause for %+v stack formatting.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.Wrap(cause, fmt.Sprintf(format, args...)),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	for i := len(e.Trace) - 1; i >= 0; i-- {
		f := e.Trace[i]
		if f.Name != "" {
			fmt.Fprintf(&b, "\n  at %s [ip %d]", f.Name, f.IP)
		} else {
			fmt.Fprintf(&b, "\n  at ip %d", f.IP)
		}
	}
	return b.String()
}

// Unwrap exposes the captured cause, allowing errors.Is/As and
// github.com/pkg/errors stack formatting to see through an *Error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}

// PushFrame appends a trace entry to the error; VM.Step calls it with the
// ip and mnemonic of the instruction whose execution returned the error.
func (e *Error) PushFrame(ip int, name string) *Error {
	e.Trace = append(e.Trace, Frame{IP: ip, Name: name})
	return e
}
