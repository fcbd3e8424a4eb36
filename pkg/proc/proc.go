// Package proc implements the debugger core: the typed session state
// machine, the ptrace process controller and the single-slot software
// breakpoint engine.
package proc

import (
	"runtime"
)

// DbgInfo is the session information shared by every state of the
// debugger: the traced child (if any), the single breakpoint slot and
// the path of the target executable.
type DbgInfo struct {
	pid        int
	target     string
	breakpoint *Breakpoint

	ptraceChan     chan func()
	ptraceDoneChan chan interface{}
}

// New creates a debugger session for target and returns its initial
// NotRunning state.
func New(target string) *NotRunning {
	info := &DbgInfo{
		target:         target,
		ptraceChan:     make(chan func()),
		ptraceDoneChan: make(chan interface{}),
	}
	go info.handlePtraceFuncs()
	return &NotRunning{info: info}
}

func (info *DbgInfo) handlePtraceFuncs() {
	// We must ensure that all ptrace(2) requests are issued from the
	// same thread: the kernel expects every command after the initial
	// trace stop to come from the thread that forked the tracee.
	runtime.LockOSThread()

	for fn := range info.ptraceChan {
		fn()
		info.ptraceDoneChan <- nil
	}
}

func (info *DbgInfo) execPtraceFunc(fn func()) {
	info.ptraceChan <- fn
	<-info.ptraceDoneChan
}

// Pid returns the process identifier of the current target, 0 when no
// target exists.
func (info *DbgInfo) Pid() int {
	return info.pid
}

// Target returns the path of the target executable.
func (info *DbgInfo) Target() string {
	return info.target
}
