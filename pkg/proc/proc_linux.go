package proc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	sys "golang.org/x/sys/unix"

	"github.com/ryone9re/zdbg/pkg/logflags"
)

const (
	personalityGetPersonality = 0xffffffff // argument to pass to personality syscall to get the current personality
	_ADDR_NO_RANDOMIZE        = 0x0040000  // ADDR_NO_RANDOMIZE linux constant
)

var (
	// ErrStartFailed is returned when the target exits or is signaled
	// before reporting its first trace stop.
	ErrStartFailed = errors.New("process failed to start")
	// ErrInvalidState is returned when the target reports a wait status
	// other than stop, exit or signal-termination.
	ErrInvalidState = errors.New("process is in an invalid state")
)

// doRun launches the target and, on a clean initial stop, installs the
// breakpoint if one is recorded and immediately continues.
func (dbg *NotRunning) doRun(args []string) (State, error) {
	running, err := dbg.launchTarget(args)
	if err != nil {
		return nil, err
	}
	fmt.Printf("successfully launched process, pid = %d\n", running.info.pid)
	running.installBreakpoint()
	return running.doContinue()
}

// launchTarget forks and execs the target with tracing enabled and
// blocks until the child reports its first stop. ASLR is disabled
// around the fork so breakpoint addresses stay stable between runs.
func (dbg *NotRunning) launchTarget(args []string) (*Running, error) {
	var (
		process *exec.Cmd
		err     error
	)
	dbg.info.execPtraceFunc(func() {
		oldPersonality, _, perr := syscall.Syscall(sys.SYS_PERSONALITY, personalityGetPersonality, 0, 0)
		if perr == syscall.Errno(0) {
			newPersonality := oldPersonality | _ADDR_NO_RANDOMIZE
			syscall.Syscall(sys.SYS_PERSONALITY, newPersonality, 0, 0)
			defer syscall.Syscall(sys.SYS_PERSONALITY, oldPersonality, 0, 0)
		}

		process = exec.Command(dbg.info.target)
		process.Args = append([]string{dbg.info.target}, args...)
		process.Stdin = os.Stdin
		process.Stdout = os.Stdout
		process.Stderr = os.Stderr
		process.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}
		err = process.Start()
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %v", ErrStartFailed, err)
	}
	pid := process.Process.Pid
	logflags.DebuggerLogger().Debugf("launched %s, pid = %d", dbg.info.target, pid)

	status, err := waitStatus(pid)
	if err != nil {
		return nil, err
	}
	switch {
	case status.Stopped():
		dbg.info.pid = pid
		return &Running{info: dbg.info}, nil
	case status.Exited() || status.Signaled():
		return nil, ErrStartFailed
	default:
		return nil, ErrInvalidState
	}
}

// doContinue resumes the target, stepping over an armed breakpoint
// first, and blocks until the next stop or termination.
func (dbg *Running) doContinue() (State, error) {
	next, err := dbg.stepOverBreakpoint()
	if err != nil {
		return nil, err
	}
	running, ok := next.(*Running)
	if !ok {
		return next, nil
	}
	if err := running.ptraceCont(); err != nil {
		return nil, err
	}
	return running.waitChild()
}

// doStepInstruction executes exactly one instruction and reflects the
// resulting status. Stopped on the breakpoint address it routes through
// the step-over path so the original instruction executes and the trap
// is re-armed afterwards, whether or not the trap byte is currently in
// memory.
func (dbg *Running) doStepInstruction() (State, error) {
	regs, err := dbg.registers()
	if err != nil {
		return nil, err
	}
	if bp := dbg.info.breakpoint; bp != nil && regs.PC() == bp.Addr {
		if bp.installed {
			if err := dbg.uninstallBreakpoint(); err != nil {
				return nil, err
			}
		}
		return dbg.stepOverBreakpoint()
	}
	if err := dbg.ptraceSingleStep(); err != nil {
		return nil, err
	}
	return dbg.waitChild()
}

// waitChild blocks until the target changes state and maps the observed
// status onto the next session state.
func (dbg *Running) waitChild() (State, error) {
	status, err := waitStatus(dbg.info.pid)
	if err != nil {
		return nil, err
	}
	switch {
	case status.Exited():
		fmt.Printf("target process exited, status = %d\n", status.ExitStatus())
		dbg.info.forgetTarget()
		return &NotRunning{info: dbg.info}, nil
	case status.Signaled():
		fmt.Printf("target process was killed by %v\n", status.Signal())
		dbg.info.forgetTarget()
		return &NotRunning{info: dbg.info}, nil
	case status.Stopped():
		if status.StopSignal() == sys.SIGTRAP {
			if err := dbg.adjustAfterTrap(); err != nil {
				return nil, err
			}
		}
		return dbg, nil
	default:
		return nil, ErrInvalidState
	}
}

// terminate kills the target, repeating the kill request until an exit
// or signal-termination status is observed. A single SIGKILL is not
// assumed to be enough because an intervening trace stop can hold the
// tracee.
func (dbg *Running) terminate() error {
	for {
		if err := sys.Kill(dbg.info.pid, sys.SIGKILL); err != nil {
			return fmt.Errorf("could not deliver signal: %v", err)
		}
		status, err := waitStatus(dbg.info.pid)
		if err != nil {
			return err
		}
		if status.Exited() || status.Signaled() {
			logflags.DebuggerLogger().Debugf("target pid %d confirmed dead", dbg.info.pid)
			dbg.info.forgetTarget()
			return nil
		}
	}
}

// forgetTarget clears the process bookkeeping after the target died.
// The breakpoint address survives for the next run but the memory patch
// is gone with the process.
func (info *DbgInfo) forgetTarget() {
	info.pid = 0
	if info.breakpoint != nil {
		info.breakpoint.installed = false
	}
}

// waitStatus blocks until pid changes state.
func waitStatus(pid int) (sys.WaitStatus, error) {
	var status sys.WaitStatus
	for {
		wpid, err := sys.Wait4(pid, &status, 0, nil)
		if err == sys.EINTR {
			continue
		}
		if err != nil {
			return status, fmt.Errorf("wait failed: %v", err)
		}
		if wpid == pid {
			return status, nil
		}
	}
}

func (dbg *Running) ptraceCont() error {
	var err error
	dbg.info.execPtraceFunc(func() { err = sys.PtraceCont(dbg.info.pid, 0) })
	logflags.PtraceLogger().Debugf("cont pid %d: %v", dbg.info.pid, err)
	return err
}

func (dbg *Running) ptraceSingleStep() error {
	var err error
	dbg.info.execPtraceFunc(func() { err = sys.PtraceSingleStep(dbg.info.pid) })
	logflags.PtraceLogger().Debugf("singlestep pid %d: %v", dbg.info.pid, err)
	return err
}

// peekWord reads the 8-byte word at addr from target memory.
func (dbg *Running) peekWord(addr uint64) (uint64, error) {
	var buf [8]byte
	var err error
	dbg.info.execPtraceFunc(func() { _, err = sys.PtracePeekData(dbg.info.pid, uintptr(addr), buf[:]) })
	if err != nil {
		return 0, err
	}
	word := binary.LittleEndian.Uint64(buf[:])
	logflags.PtraceLogger().Debugf("peek 0x%x = 0x%x", addr, word)
	return word, nil
}

// pokeWord writes the 8-byte word at addr in target memory.
func (dbg *Running) pokeWord(addr uint64, word uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], word)
	var err error
	dbg.info.execPtraceFunc(func() { _, err = sys.PtracePokeData(dbg.info.pid, uintptr(addr), buf[:]) })
	logflags.PtraceLogger().Debugf("poke 0x%x = 0x%x: %v", addr, word, err)
	return err
}
