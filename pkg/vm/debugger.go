package vm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/kristofer/smogvm/pkg/unit"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Debugger provides interactive breakpoint/step debugging over a VM.
// It is attached with AttachDebugger and consulted by Step before every
// instruction; it never drives the VM itself.
type Debugger struct {
	breakpoints map[int]bool
	stepMode    bool
	enabled     bool
}

// NewDebugger constructs a disabled debugger ready to have breakpoints
// added and then be enabled.
func NewDebugger() *Debugger {
	return &Debugger{breakpoints: make(map[int]bool)}
}

// Enable activates the debugger.
func (d *Debugger) Enable() { d.enabled = true }

// Disable deactivates the debugger; Step stops consulting it.
func (d *Debugger) Disable() { d.enabled = false }

// SetStepMode enables or disables pausing after every instruction.
func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }

// AddBreakpoint pauses execution just before ip next executes.
func (d *Debugger) AddBreakpoint(ip int) { d.breakpoints[ip] = true }

// RemoveBreakpoint clears a previously added breakpoint.
func (d *Debugger) RemoveBreakpoint(ip int) { delete(d.breakpoints, ip) }

// ClearBreakpoints removes every breakpoint.
func (d *Debugger) ClearBreakpoints() { d.breakpoints = make(map[int]bool) }

func (d *Debugger) shouldPause(ip int) bool {
	if !d.enabled {
		return false
	}
	return d.stepMode || d.breakpoints[ip]
}

// beforeStep is called by VM.Step ahead of decoding the instruction at
// vm.ip. It only blocks on the interactive prompt when the debugger is
// enabled and paused; otherwise it is a no-op on the hot path.
func (d *Debugger) beforeStep(vm *VM, u unit.CompilationUnit) {
	if !d.shouldPause(vm.ip) {
		return
	}
	d.interactivePrompt(vm, u)
}

func (d *Debugger) showCurrentInstruction(vm *VM, u unit.CompilationUnit) {
	inst, err := u.InstructionAt(vm.ip)
	if err != nil {
		fmt.Println("no current instruction:", err)
		return
	}
	fmt.Printf("  %04d: %s\n", vm.ip, inst)
}

func (d *Debugger) showStack(vm *VM) {
	fmt.Println("stack (top to bottom):")
	n := vm.stack.Len()
	if n == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := 0; i < n; i++ {
		v, err := vm.stack.AtOffset(i)
		if err != nil {
			break
		}
		fmt.Printf("  [%d] %s\n", n-1-i, dumpConfig.Sdump(v))
	}
}

func (d *Debugger) showCallFrames(vm *VM) {
	fmt.Println("call frames (innermost first):")
	if len(vm.callFrames) == 0 {
		fmt.Println("  (none -- top level)")
		return
	}
	for i := len(vm.callFrames) - 1; i >= 0; i-- {
		f := vm.callFrames[i]
		fmt.Printf("  return_ip=%d stack_top=%d\n", f.ReturnIP, f.StackTop)
	}
}

func (d *Debugger) listInstructions(vm *VM, u *unit.Unit) {
	for i, inst := range u.Instructions {
		marker := "  "
		switch {
		case i == vm.ip:
			marker = "->"
		case d.breakpoints[i]:
			marker = "* "
		}
		fmt.Printf("%s%04d: %s\n", marker, i, inst)
	}
}

func (d *Debugger) printHelp() {
	fmt.Println("debugger commands:")
	fmt.Println("  help, h, ?        show this help")
	fmt.Println("  continue, c       resume, clearing step mode")
	fmt.Println("  step, s           execute one instruction and pause again")
	fmt.Println("  stack, st         show the value stack")
	fmt.Println("  frames, f         show call frames")
	fmt.Println("  instruction, i    show the current instruction")
	fmt.Println("  break <n>, b      add a breakpoint at ip n")
	fmt.Println("  delete <n>, d     remove a breakpoint at ip n")
	fmt.Println("  list, ls          list instructions (only against a *unit.Unit)")
	fmt.Println("  quit, q           disable the debugger and run to completion")
}

// interactivePrompt blocks on stdin reading debugger commands until one
// of them returns control to Step (continue, step, or an end-of-input).
func (d *Debugger) interactivePrompt(vm *VM, u unit.CompilationUnit) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("\n=== paused ===")
	d.showCurrentInstruction(vm, u)

	for {
		fmt.Print("debug> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "help", "h", "?":
			d.printHelp()
		case "continue", "c":
			d.SetStepMode(false)
			return
		case "step", "s":
			d.SetStepMode(true)
			return
		case "stack", "st":
			d.showStack(vm)
		case "frames", "f":
			d.showCallFrames(vm)
		case "instruction", "i":
			d.showCurrentInstruction(vm, u)
		case "break", "b":
			if len(parts) < 2 {
				fmt.Println("usage: break <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("invalid ip:", err)
				continue
			}
			d.AddBreakpoint(ip)
		case "delete", "d":
			if len(parts) < 2 {
				fmt.Println("usage: delete <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("invalid ip:", err)
				continue
			}
			d.RemoveBreakpoint(ip)
		case "list", "ls":
			if cu, ok := u.(*unit.Unit); ok {
				d.listInstructions(vm, cu)
			} else {
				fmt.Println("list requires a *unit.Unit")
			}
		case "quit", "q":
			d.Disable()
			return
		default:
			fmt.Printf("unknown command %q (try help)\n", parts[0])
		}
	}
}
