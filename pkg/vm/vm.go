// Package vm implements the stack-based bytecode virtual machine: the
// instruction dispatch loop, call frames, the branch register, and
// arithmetic/comparison/pattern-match semantics over the value model.
//
// A VM owns a Stack and a list of call frames but does not own a
// CompilationUnit or Context -- both are supplied by whoever drives it
// (see package async's Task), so the same VM machinery can run different
// programs against different native registries without re-allocating.
package vm

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kristofer/smogvm/pkg/context"
	"github.com/kristofer/smogvm/pkg/stack"
	"github.com/kristofer/smogvm/pkg/unit"
	"github.com/kristofer/smogvm/pkg/value"
	"github.com/kristofer/smogvm/pkg/vmerror"
)

// instanceHashCacheSize bounds the per-VM cache mapping (type, method)
// pairs to their combined instance-function hash. CallInstance and the
// arithmetic instance-method fallback both recompute this on every
// operator use against a non-primitive receiver, so a hot loop calling
// the same method on the same type repeatedly would otherwise rehash it
// every time.
const instanceHashCacheSize = 256

type instanceKey struct {
	ty     value.Hash
	method value.Hash
}

// CallFrame records a saved return-ip and the stack watermark a call's
// arguments became locals above.
type CallFrame struct {
	ReturnIP int
	StackTop int
}

// AsyncSpawner is implemented by package async's driver. A VM never
// imports async directly (async imports vm instead), so OpCall's Async
// convention reaches it through this interface, attached with
// AttachSpawner by whoever assembles the runtime.
type AsyncSpawner interface {
	// SpawnCall starts u's function at offset as an independent
	// execution seeded with args, returning a Future the calling VM can
	// push onto its stack and later Await/Select against.
	SpawnCall(u unit.CompilationUnit, offset int, args []value.Value) (value.Future, error)
}

// VM is the bytecode interpreter. The zero value is not ready for use;
// construct one with New.
type VM struct {
	stack      *stack.Stack
	ip         int
	exited     bool
	callFrames []CallFrame
	branch     *int

	spawner AsyncSpawner

	yielded    bool
	yieldValue value.Value

	instanceHashes *lru.Cache[instanceKey, value.Hash]

	debugger *Debugger
}

// New constructs a fresh VM with an empty stack and no call frames.
func New() *VM {
	cache, _ := lru.New[instanceKey, value.Hash](instanceHashCacheSize)
	return &VM{stack: stack.New(), instanceHashes: cache}
}

// NewAtOffset constructs a fresh VM whose instruction pointer starts at
// offset instead of 0, with no call frame pushed for it. This is what
// package async uses to spin up an independent top-level execution for
// an async function call or a generator/stream, as opposed to a nested
// call within an already-running VM (which goes through pushCallFrame
// instead).
func NewAtOffset(offset int) *VM {
	v := New()
	v.ip = offset
	return v
}

// hashInstance returns the combined instance-function hash for (ty,
// method), memoized per VM.
func (vm *VM) hashInstance(ty, method value.Hash) value.Hash {
	key := instanceKey{ty: ty, method: method}
	if h, ok := vm.instanceHashes.Get(key); ok {
		return h
	}
	h := value.HashInstanceFunction(ty, method)
	vm.instanceHashes.Add(key, h)
	return h
}

// AttachSpawner installs the async driver's spawner, enabling OpCall
// against Async-convention functions. A VM with no spawner attached
// fails such calls with KindMissingFunction.
func (vm *VM) AttachSpawner(s AsyncSpawner) { vm.spawner = s }

// Yielded reports whether the last Step suspended on OpYield. The driver
// must read TakeYield and later call Resume before stepping again.
func (vm *VM) Yielded() bool { return vm.yielded }

// TakeYield returns the value handed to OpYield without clearing it;
// Yielded continues to report true, and the value stays readable, until
// Resume is called.
func (vm *VM) TakeYield() value.Value { return vm.yieldValue }

// Resume pushes v as the result of the suspended OpYield and clears the
// suspended state, readying the VM for another Step.
func (vm *VM) Resume(v value.Value) {
	vm.yielded = false
	vm.yieldValue = value.Value{}
	vm.stack.Push(v)
}

// Stack exposes the value stack, e.g. for a driver to push arguments
// before a Task starts running.
func (vm *VM) Stack() *stack.Stack { return vm.stack }

// IP returns the current instruction pointer, chiefly for diagnostics.
func (vm *VM) IP() int { return vm.ip }

// Exited reports whether the outermost call frame has returned.
func (vm *VM) Exited() bool { return vm.exited }

// Clear resets ip, drops the stack and empties the call frames. This is
// what makes dropping a Task safe: native handlers can hand out raw
// references into stack-resident values whose lifetime is tied to the
// Task, so the VM must be wiped before anything else could observe those
// slots again.
func (vm *VM) Clear() {
	vm.ip = 0
	vm.exited = false
	vm.stack.Clear()
	vm.callFrames = vm.callFrames[:0]
	vm.branch = nil
}

// AttachDebugger installs a Debugger that Step will consult before
// executing each instruction.
func (vm *VM) AttachDebugger(d *Debugger) { vm.debugger = d }

func (vm *VM) modifyIP(offset int) error {
	next := vm.ip + offset
	if next < 0 {
		return vmerror.New(vmerror.KindIPOutOfBounds, "ip underflow: %d + %d", vm.ip, offset)
	}
	vm.ip = next
	return nil
}

// pushCallFrame records a new call frame with stack_top = len - args and
// sets ip to newIP, saving the current ip as the frame's return address.
func (vm *VM) pushCallFrame(newIP, args int) error {
	top, err := vm.stack.PushStackTop(args)
	if err != nil {
		return err
	}
	vm.callFrames = append(vm.callFrames, CallFrame{ReturnIP: vm.ip, StackTop: top})
	vm.ip = newIP
	return nil
}

// popCallFrame restores the stack to the popped frame's watermark and the
// saved ip, reporting whether that was the last frame.
func (vm *VM) popCallFrame() (last bool, err error) {
	n := len(vm.callFrames)
	if n == 0 {
		if err := vm.stack.CheckStackTop(); err != nil {
			return false, err
		}
		return true, nil
	}
	frame := vm.callFrames[n-1]
	vm.callFrames = vm.callFrames[:n-1]
	if err := vm.stack.PopStackTop(frame.StackTop); err != nil {
		return false, err
	}
	vm.ip = frame.ReturnIP
	return false, nil
}

// Run drives the VM to completion against u/ctx, returning the final
// stack value. This is the synchronous counterpart to the async harness's
// VmExecution, and is what Task.RunToCompletion calls under the hood.
func (vm *VM) Run(u unit.CompilationUnit, ctx context.Context) (value.Value, error) {
	for !vm.exited {
		if _, err := vm.Step(u, ctx); err != nil {
			return value.Value{}, err
		}
	}
	return vm.stack.Pop()
}

// Step executes exactly one instruction and reports whether the VM has
// now exited (the outermost call frame just returned).
func (vm *VM) Step(u unit.CompilationUnit, ctx context.Context) (bool, error) {
	if vm.exited {
		return true, nil
	}

	if vm.debugger != nil {
		vm.debugger.beforeStep(vm, u)
	}

	inst, err := u.InstructionAt(vm.ip)
	if err != nil {
		return false, err
	}

	updateIP := true
	if err := vm.dispatch(u, ctx, inst, &updateIP); err != nil {
		if ve, ok := err.(*vmerror.Error); ok {
			ve.PushFrame(vm.ip, inst.Op.String())
		}
		return false, err
	}
	if updateIP {
		vm.ip++
	}
	return vm.exited, nil
}
