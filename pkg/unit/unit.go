// Package unit defines the compilation unit the VM consumes: a read-only
// bundle of instructions, interned strings/bytes, object-key tuples, and
// function/type descriptors. The lexer, parser and compiler that produce
// a Unit are out of scope here -- the VM only ever needs this interface
// and a way to build one by hand (which the tests exercise).
package unit

import (
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// CallConvention says whether Call pushes a frame in the current VM
// (Immediate) or spins up an async sub-VM and returns a Future (Async).
type CallConvention int

const (
	Immediate CallConvention = iota
	Async
)

// FnKind distinguishes an offset-based function from a tuple-struct
// constructor.
type FnKind int

const (
	FnOffset FnKind = iota
	FnTuple
)

// Signature describes a function's calling convention surface.
type Signature struct {
	Args int
}

// FnInfo is what Lookup returns for a resolvable hash.
type FnInfo struct {
	Signature Signature
	Kind      FnKind

	// Valid when Kind == FnOffset.
	Offset int
	Call   CallConvention

	// Valid when Kind == FnTuple.
	TupleType value.Hash
}

// TypeInfo is what LookupType returns.
type TypeInfo struct {
	ValueType value.Hash
}

// CompilationUnit is the read-only surface the VM drives itself with.
// Bounds/slot misses are reported through the same vmerror taxonomy the
// VM itself raises, so the dispatch loop can propagate them uniformly.
type CompilationUnit interface {
	// InstructionAt returns the instruction at ip, or IpOutOfBounds.
	InstructionAt(ip int) (Inst, error)
	// Lookup resolves a function/constructor hash.
	Lookup(hash value.Hash) (FnInfo, bool)
	// LookupString resolves an interned string slot.
	LookupString(slot int) (*value.StaticString, error)
	// LookupBytes resolves an interned byte-sequence slot.
	LookupBytes(slot int) ([]byte, error)
	// LookupObjectKeys resolves a static object-key tuple slot, in the
	// insertion order the compiler recorded.
	LookupObjectKeys(slot int) ([]string, bool)
	// LookupType resolves a type descriptor by hash.
	LookupType(hash value.Hash) (TypeInfo, bool)
}

// Unit is the default in-memory CompilationUnit, built by hand in tests
// (and, outside this module's scope, by a compiler back end).
type Unit struct {
	Instructions []Inst
	Functions    map[value.Hash]FnInfo
	Strings      []*value.StaticString
	ByteSlots    [][]byte
	ObjectKeys   [][]string
	Types        map[value.Hash]TypeInfo
}

// New constructs an empty Unit ready for a builder to populate.
func New() *Unit {
	return &Unit{
		Functions: make(map[value.Hash]FnInfo),
		Types:     make(map[value.Hash]TypeInfo),
	}
}

func (u *Unit) InstructionAt(ip int) (Inst, error) {
	if ip < 0 || ip >= len(u.Instructions) {
		return Inst{}, vmerror.New(vmerror.KindIPOutOfBounds, "ip %d out of bounds (len %d)", ip, len(u.Instructions))
	}
	return u.Instructions[ip], nil
}

func (u *Unit) Lookup(hash value.Hash) (FnInfo, bool) {
	info, ok := u.Functions[hash]
	return info, ok
}

func (u *Unit) LookupString(slot int) (*value.StaticString, error) {
	if slot < 0 || slot >= len(u.Strings) {
		return nil, vmerror.New(vmerror.KindMissingStaticString, "missing static string at slot %d", slot)
	}
	return u.Strings[slot], nil
}

func (u *Unit) LookupBytes(slot int) ([]byte, error) {
	if slot < 0 || slot >= len(u.ByteSlots) {
		return nil, vmerror.New(vmerror.KindMissingStaticString, "missing static bytes at slot %d", slot)
	}
	return u.ByteSlots[slot], nil
}

func (u *Unit) LookupObjectKeys(slot int) ([]string, bool) {
	if slot < 0 || slot >= len(u.ObjectKeys) {
		return nil, false
	}
	return u.ObjectKeys[slot], true
}

func (u *Unit) LookupType(hash value.Hash) (TypeInfo, bool) {
	info, ok := u.Types[hash]
	return info, ok
}

// Builder methods, used by tests (and anything else hand-assembling a
// Unit) to populate the side tables and get back the slot/hash to
// reference from an instruction.

// Intern interns a string, returning its slot.
func (u *Unit) Intern(s string) int {
	u.Strings = append(u.Strings, &value.StaticString{Text: s})
	return len(u.Strings) - 1
}

// InternBytes interns a byte sequence, returning its slot.
func (u *Unit) InternBytes(b []byte) int {
	u.ByteSlots = append(u.ByteSlots, b)
	return len(u.ByteSlots) - 1
}

// InternObjectKeys interns an ordered key tuple, returning its slot.
func (u *Unit) InternObjectKeys(keys []string) int {
	u.ObjectKeys = append(u.ObjectKeys, keys)
	return len(u.ObjectKeys) - 1
}

// RegisterFn registers a function descriptor under hash.
func (u *Unit) RegisterFn(hash value.Hash, info FnInfo) {
	u.Functions[hash] = info
}

// RegisterType registers a type descriptor under hash.
func (u *Unit) RegisterType(hash value.Hash, info TypeInfo) {
	u.Types[hash] = info
}

// Push appends an instruction, returning its ip.
func (u *Unit) Push(i Inst) int {
	u.Instructions = append(u.Instructions, i)
	return len(u.Instructions) - 1
}
