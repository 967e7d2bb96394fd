package async

import (
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// Stream drives a generator VM forward one yield at a time, satisfying
// value.Stream. It is grounded directly on runestick's stream.rs: the
// first resume never pushes a value (the generator's arguments are
// already seeded on its stack), every subsequent resume pushes the
// caller's value before continuing, and once the execution completes
// the Stream discards it so any further resume reports GeneratorComplete.
type Stream struct {
	execution *VmExecution
	first     bool
}

// NewStream wraps an execution as a Stream, ready for its first Resume.
func NewStream(e *VmExecution) *Stream {
	return &Stream{execution: e, first: true}
}

// Resume implements value.Stream.
func (s *Stream) Resume(v value.Value) (value.Value, bool, error) {
	if s.execution == nil {
		return value.Value{}, false, vmerror.New(vmerror.KindGeneratorComplete, "resume of a completed stream")
	}

	if s.first {
		s.first = false
	} else {
		s.execution.VM().Resume(v)
	}

	state, err := s.execution.Resume()
	if err != nil {
		return value.Value{}, false, err
	}
	if !state.Yielded {
		s.execution = nil
		return value.Value{}, false, nil
	}
	return state.Value, true, nil
}

// Completed implements value.Stream.
func (s *Stream) Completed() bool {
	return s.execution == nil
}
