package async

import (
	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vm"
)

// Spawner implements vm.AsyncSpawner, closing over the context every
// spawned sub-VM should run against. Attach one with
// (*vm.VM).AttachSpawner to let OpCall's Async convention work.
type Spawner struct {
	ctx context.Context
}

// NewSpawner constructs a Spawner bound to ctx.
func NewSpawner(ctx context.Context) *Spawner {
	return &Spawner{ctx: ctx}
}

// SpawnCall implements vm.AsyncSpawner.
func (s *Spawner) SpawnCall(u unit.CompilationUnit, offset int, args []value.Value) (value.Future, error) {
	sub := vm.NewAtOffset(offset)
	for _, a := range args {
		sub.Stack().Push(a)
	}
	return newCallFuture(NewExecution(sub, u, s.ctx)), nil
}
