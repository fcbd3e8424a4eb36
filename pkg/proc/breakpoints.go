package proc

import (
	"fmt"
	"os"
	"strings"

	"github.com/ryone9re/zdbg/pkg/locspec"
)

// breakpointInstruction is the encoding of int3, the amd64 single-byte
// trap instruction.
const breakpointInstruction byte = 0xCC

// Breakpoint is the single software breakpoint slot: the requested
// address and the byte that was stored there before the trap
// instruction was patched in. OriginalData is only meaningful while
// installed is true.
type Breakpoint struct {
	Addr         uint64
	OriginalData byte
	installed    bool
}

// recordBreakpoint stores a requested breakpoint address without
// touching target memory. Exactly one slot exists: recording fails when
// an address is already set, leaving it unchanged. Valid in any state.
func (info *DbgInfo) recordBreakpoint(args []string) bool {
	if info.breakpoint != nil {
		fmt.Fprintf(os.Stderr, "breakpoint already set at 0x%x\n", info.breakpoint.Addr)
		return false
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "break requires an address, e.g. break 0x401000")
		return false
	}
	addr, err := locspec.ParseAddr(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	info.breakpoint = &Breakpoint{Addr: addr}
	return true
}

// doBreak records a breakpoint address and, since the target is live,
// immediately patches it into memory.
func (dbg *Running) doBreak(args []string) {
	if dbg.info.recordBreakpoint(args) {
		dbg.installBreakpoint()
	}
}

// installBreakpoint patches the trap instruction into the word at the
// recorded breakpoint address and retains the displaced byte so it can
// be restored later. Memory access failures are reported and tolerated:
// a bad address is an operator mistake, not a corrupted session.
func (dbg *Running) installBreakpoint() {
	bp := dbg.info.breakpoint
	if bp == nil || bp.installed {
		return
	}
	word, err := dbg.peekWord(bp.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read memory at 0x%x: %v\n", bp.Addr, err)
		return
	}
	patched := patchWord(word)
	fmt.Println("overwriting target memory:")
	fmt.Printf("  before: %s\n", formatWord(bp.Addr, word))
	fmt.Printf("  after:  %s\n", formatWord(bp.Addr, patched))
	if err := dbg.pokeWord(bp.Addr, patched); err != nil {
		fmt.Fprintf(os.Stderr, "could not write memory at 0x%x: %v\n", bp.Addr, err)
		return
	}
	bp.OriginalData = byte(word)
	bp.installed = true
}

// adjustAfterTrap recognizes the SIGTRAP stop produced by the installed
// breakpoint: executing int3 leaves the program counter one byte past
// the breakpoint address. The displaced byte is written back and the
// program counter rewound so the original instruction executes next.
func (dbg *Running) adjustAfterTrap() error {
	bp := dbg.info.breakpoint
	if bp == nil || !bp.installed {
		return nil
	}
	regs, err := dbg.registers()
	if err != nil {
		return err
	}
	if regs.PC() != bp.Addr+1 {
		return nil
	}
	if err := dbg.uninstallBreakpoint(); err != nil {
		return err
	}
	regs.SetPC(bp.Addr)
	if err := dbg.setRegisters(regs); err != nil {
		return err
	}
	fmt.Printf("hit breakpoint at 0x%x\n", bp.Addr)
	return nil
}

// uninstallBreakpoint writes the displaced original byte back over the
// trap instruction.
func (dbg *Running) uninstallBreakpoint() error {
	bp := dbg.info.breakpoint
	word, err := dbg.peekWord(bp.Addr)
	if err != nil {
		return err
	}
	if err := dbg.pokeWord(bp.Addr, restoreWord(word, bp.OriginalData)); err != nil {
		return err
	}
	bp.installed = false
	return nil
}

// stepOverBreakpoint executes a single instruction when the target is
// stopped exactly on the breakpoint address with the original byte in
// place, then re-arms the trap so future passes through the address
// still stop. Stopped anywhere else it is a no-op. If the target dies
// during the step the session drops back to NotRunning and the trap is
// not re-armed.
func (dbg *Running) stepOverBreakpoint() (State, error) {
	bp := dbg.info.breakpoint
	if bp == nil || bp.installed {
		return dbg, nil
	}
	regs, err := dbg.registers()
	if err != nil {
		return nil, err
	}
	if regs.PC() != bp.Addr {
		return dbg, nil
	}
	if err := dbg.ptraceSingleStep(); err != nil {
		return nil, err
	}
	next, err := dbg.waitChild()
	if err != nil {
		return nil, err
	}
	if running, ok := next.(*Running); ok {
		running.installBreakpoint()
		return running, nil
	}
	return next, nil
}

// patchWord replaces the low byte of word with the trap instruction.
func patchWord(word uint64) uint64 {
	return word&^0xff | uint64(breakpointInstruction)
}

// restoreWord puts the displaced original byte back into word.
func restoreWord(word uint64, orig byte) uint64 {
	return word&^0xff | uint64(orig)
}

// formatWord renders an 8-byte word the way it is laid out in target
// memory, low byte first.
func formatWord(addr uint64, word uint64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%x:", addr)
	for n := 0; n < 8; n++ {
		fmt.Fprintf(&sb, " %02x", byte(word>>(n*8)))
	}
	return sb.String()
}
