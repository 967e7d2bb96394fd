// Package context defines the read-only registry of native handlers the
// VM consults whenever a hash cannot be resolved inside the compilation
// unit: built-in functions, instance methods backing operators like ADD
// on non-primitive receivers, and the well-known Option/Result type tags
// the Is dispatcher needs.
package context

import (
	"github.com/kristofer/smogvm/pkg/stack"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
)

// Handler is a native function: it consumes args values already pushed
// on the stack and must leave exactly one result behind on success.
type Handler func(s *stack.Stack, args int) error

// OptionTypes names the context-registered type hashes for Option::Some
// and Option::None, used by the Is dispatcher.
type OptionTypes struct {
	SomeType value.Hash
	NoneType value.Hash
}

// ResultTypes names the context-registered type hashes for Result::Ok and
// Result::Err.
type ResultTypes struct {
	OkType  value.Hash
	ErrType value.Hash
}

// Context is the read-only surface the VM consults for anything the
// compilation unit doesn't resolve.
type Context interface {
	Lookup(hash value.Hash) (Handler, bool)
	OptionTypes() (OptionTypes, bool)
	ResultTypes() (ResultTypes, bool)
	LookupType(hash value.Hash) (unit.TypeInfo, bool)
}

// Static is the default in-memory Context, assembled once at startup by
// whatever embeds the VM and shared read-only across every Task that
// runs against it.
type Static struct {
	handlers map[value.Hash]Handler
	option   *OptionTypes
	result   *ResultTypes
	types    map[value.Hash]unit.TypeInfo
}

// New constructs an empty Static context ready for a builder to populate.
func New() *Static {
	return &Static{
		handlers: make(map[value.Hash]Handler),
		types:    make(map[value.Hash]unit.TypeInfo),
	}
}

func (c *Static) Lookup(hash value.Hash) (Handler, bool) {
	h, ok := c.handlers[hash]
	return h, ok
}

func (c *Static) OptionTypes() (OptionTypes, bool) {
	if c.option == nil {
		return OptionTypes{}, false
	}
	return *c.option, true
}

func (c *Static) ResultTypes() (ResultTypes, bool) {
	if c.result == nil {
		return ResultTypes{}, false
	}
	return *c.result, true
}

func (c *Static) LookupType(hash value.Hash) (unit.TypeInfo, bool) {
	info, ok := c.types[hash]
	return info, ok
}

// Register installs a native handler under hash.
func (c *Static) Register(hash value.Hash, h Handler) {
	c.handlers[hash] = h
}

// RegisterType installs a type descriptor under hash.
func (c *Static) RegisterType(hash value.Hash, info unit.TypeInfo) {
	c.types[hash] = info
}

// SetOptionTypes installs the well-known Option::Some/None type hashes.
func (c *Static) SetOptionTypes(t OptionTypes) {
	c.option = &t
}

// SetResultTypes installs the well-known Result::Ok/Err type hashes.
func (c *Static) SetResultTypes(t ResultTypes) {
	c.result = &t
}
