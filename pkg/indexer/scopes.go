// Package indexer implements the scope stack used while indexing source
// into bytecode to resolve closure captures and detect generators. It
// tracks three kinds of nested level -- plain scope, closure boundary,
// function boundary -- because mark_use must be able to tell closure
// boundaries apart from plain scopes as it walks outward.
package indexer

import "github.com/kristofer/smogvm/pkg/vmerror"

// Capture is a name a closure needed to pull in from an enclosing scope.
type Capture struct {
	Ident string
}

// Function is what popping a function level returns.
type Function struct {
	Generator bool
}

// Closure is what popping a closure level returns.
type Closure struct {
	Captures  []Capture
	Generator bool
}

type levelKind int

const (
	levelScope levelKind = iota
	levelClosure
	levelFunction
)

// level is a tagged union mirroring the three IndexScopeLevel variants:
// a plain scope, a closure boundary, or a function boundary. Only closure
// and function levels carry a generator flag; only closure levels track
// captures.
type level struct {
	kind kindAndScope
}

type kindAndScope struct {
	kind      levelKind
	locals    map[string]struct{}
	captures  []Capture
	existing  map[string]struct{}
	generator bool
}

func newScopeLevel() level {
	return level{kindAndScope{kind: levelScope, locals: map[string]struct{}{}}}
}

func newClosureLevel() level {
	return level{kindAndScope{
		kind:     levelClosure,
		locals:   map[string]struct{}{},
		existing: map[string]struct{}{},
	}}
}

func newFunctionLevel() level {
	return level{kindAndScope{kind: levelFunction, locals: map[string]struct{}{}}}
}

// Scopes is the indexing-time scope stack. The zero value is not usable;
// construct one with New.
type Scopes struct {
	levels []level
}

// New constructs a scope stack with a single top-level scope, matching
// program-level indexing before any function is entered.
func New() *Scopes {
	return &Scopes{levels: []level{newScopeLevel()}}
}

// Declare binds name in the innermost level's locals.
func (s *Scopes) Declare(name string) error {
	if len(s.levels) == 0 {
		return vmerror.New(vmerror.KindStackError, "declare against empty scope stack")
	}
	s.levels[len(s.levels)-1].kind.locals[name] = struct{}{}
	return nil
}

// MarkUse walks outward from the innermost level looking for name,
// stopping at the first Function level (variables cannot be captured
// across a function boundary except via closures). Every closure level
// traversed along the way on a successful resolution records a capture
// for name, idempotently.
func (s *Scopes) MarkUse(name string) {
	var crossed []*kindAndScope
	found := false

outer:
	for i := len(s.levels) - 1; i >= 0; i-- {
		lvl := &s.levels[i].kind
		switch lvl.kind {
		case levelScope:
			if _, ok := lvl.locals[name]; ok {
				found = true
				break outer
			}
		case levelClosure:
			if _, ok := lvl.existing[name]; ok {
				found = true
				break outer
			}
			if _, ok := lvl.locals[name]; ok {
				found = true
				break outer
			}
			crossed = append(crossed, lvl)
		case levelFunction:
			_, found = lvl.locals[name]
			break outer
		}
	}

	if !found {
		return
	}
	for _, closure := range crossed {
		if _, already := closure.existing[name]; already {
			continue
		}
		closure.captures = append(closure.captures, Capture{Ident: name})
		closure.existing[name] = struct{}{}
	}
}

// MarkYield records that a yield occurred, marking the nearest enclosing
// Function or Closure level as a generator. Fails with
// YieldOutsideFunction if neither exists.
func (s *Scopes) MarkYield() error {
	for i := len(s.levels) - 1; i >= 0; i-- {
		lvl := &s.levels[i].kind
		switch lvl.kind {
		case levelFunction, levelClosure:
			lvl.generator = true
			return nil
		}
	}
	return vmerror.New(vmerror.KindYieldOutsideFunction, "yield outside function")
}

// Guard is returned by PushFunction/PushClosure/PushScope. Dropping it
// via Pop removes exactly the level it was returned for. IntoClosure and
// IntoFunction consume the guard directly instead, returning the
// captures/generator flag without a separate pop.
type Guard struct {
	scopes *Scopes
	popped bool
}

// Pop removes the level this guard was issued for. It is a programming
// error to call Pop after IntoClosure/IntoFunction, or more than once.
func (g *Guard) Pop() {
	if g.popped {
		return
	}
	g.popped = true
	g.scopes.levels = g.scopes.levels[:len(g.scopes.levels)-1]
}

// PushScope pushes a plain nested scope.
func (s *Scopes) PushScope() *Guard {
	s.levels = append(s.levels, newScopeLevel())
	return &Guard{scopes: s}
}

// PushClosure pushes a closure boundary.
func (s *Scopes) PushClosure() *Guard {
	s.levels = append(s.levels, newClosureLevel())
	return &Guard{scopes: s}
}

// PushFunction pushes a function boundary.
func (s *Scopes) PushFunction() *Guard {
	s.levels = append(s.levels, newFunctionLevel())
	return &Guard{scopes: s}
}

// IntoClosure pops the closure level this guard belongs to and returns
// its captures and generator flag. It fails if the top level isn't a
// closure, or the guard was already consumed.
func (g *Guard) IntoClosure() (Closure, error) {
	if g.popped {
		return Closure{}, vmerror.New(vmerror.KindStackError, "guard already consumed")
	}
	g.popped = true
	s := g.scopes
	top := s.levels[len(s.levels)-1]
	s.levels = s.levels[:len(s.levels)-1]
	if top.kind.kind != levelClosure {
		return Closure{}, vmerror.New(vmerror.KindStackError, "expected closure scope")
	}
	return Closure{Captures: top.kind.captures, Generator: top.kind.generator}, nil
}

// IntoFunction pops the function level this guard belongs to and returns
// its generator flag. It fails if the top level isn't a function, or the
// guard was already consumed.
func (g *Guard) IntoFunction() (Function, error) {
	if g.popped {
		return Function{}, vmerror.New(vmerror.KindStackError, "guard already consumed")
	}
	g.popped = true
	s := g.scopes
	top := s.levels[len(s.levels)-1]
	s.levels = s.levels[:len(s.levels)-1]
	if top.kind.kind != levelFunction {
		return Function{}, vmerror.New(vmerror.KindStackError, "expected function scope")
	}
	return Function{Generator: top.kind.generator}, nil
}
