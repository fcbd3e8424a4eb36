package proc

import (
	"fmt"
	"io"
	"os"

	"github.com/ryone9re/zdbg/pkg/logflags"
)

// State is one variant of the debugger session state machine.
//
// Dispatch consumes the receiver: a transition hands the session
// information over to the returned State and the receiver must not be
// used afterwards.
type State interface {
	// Dispatch executes one tokenized command and returns the next
	// session state. A non-nil error is session-terminating.
	Dispatch(cmd []string) (State, error)
}

// NotRunning is the session state between runs: no target process
// exists. It is the initial state.
type NotRunning struct {
	info *DbgInfo
}

// Running is the session state while a target process exists, stopped
// under trace or executing.
type Running struct {
	info *DbgInfo
}

// Exit is the terminal session state. The read loop stops dispatching
// commands once it is reached.
type Exit struct{}

// Dispatch on Exit is a no-op, present only so Exit satisfies State.
func (e *Exit) Dispatch([]string) (State, error) {
	return e, nil
}

// Dispatch executes one command in the NotRunning state.
func (dbg *NotRunning) Dispatch(cmd []string) (State, error) {
	if len(cmd) == 0 {
		return dbg, nil
	}
	logflags.DebuggerLogger().Debugf("dispatch %v (not running)", cmd)
	switch cmd[0] {
	case "run", "r":
		return dbg.doRun(cmd[1:])
	case "break", "b":
		dbg.info.recordBreakpoint(cmd[1:])
	case "exit":
		return &Exit{}, nil
	case "continue", "c", "stepi", "s", "registers", "regs":
		fmt.Fprintln(os.Stderr, "no target is running, use run to start one")
	default:
		doCommandCommon(cmd)
	}
	return dbg, nil
}

// Dispatch executes one command in the Running state.
func (dbg *Running) Dispatch(cmd []string) (State, error) {
	if len(cmd) == 0 {
		return dbg, nil
	}
	logflags.DebuggerLogger().Debugf("dispatch %v (running, pid %d)", cmd, dbg.info.pid)
	switch cmd[0] {
	case "break", "b":
		dbg.doBreak(cmd[1:])
	case "continue", "c":
		return dbg.doContinue()
	case "stepi", "s":
		return dbg.doStepInstruction()
	case "registers", "regs":
		regs, err := dbg.registers()
		if err != nil {
			return nil, fmt.Errorf("could not read registers: %v", err)
		}
		printRegisters(os.Stdout, regs)
	case "run", "r":
		fmt.Fprintln(os.Stderr, "target is already running")
	case "exit":
		if err := dbg.terminate(); err != nil {
			return nil, err
		}
		return &Exit{}, nil
	default:
		doCommandCommon(cmd)
	}
	return dbg, nil
}

// doCommandCommon handles the commands that behave identically in every
// state. Unrecognized commands fall through to a no-op.
func doCommandCommon(cmd []string) {
	switch cmd[0] {
	case "help", "h":
		printHelp(os.Stdout)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `The following commands are available:
    break (alias: b) ------ Set a breakpoint, e.g. break 0x401000.
    run (alias: r) -------- Launch the target and run to the first stop.
    continue (alias: c) --- Resume the target.
    stepi (alias: s) ------ Execute a single instruction.
    registers (alias: regs) Print the register set.
    exit ------------------ Kill the target (if any) and end the session.
    help (alias: h) ------- Print this help message.
`)
}
