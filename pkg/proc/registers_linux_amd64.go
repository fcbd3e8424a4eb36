package proc

import (
	"fmt"
	"io"
	"text/tabwriter"

	sys "golang.org/x/sys/unix"
)

// Register is a single named CPU register and its value.
type Register struct {
	Name  string
	Value uint64
}

// Registers wraps the general purpose register set of the traced
// target, in the struct layout the linux kernel uses for amd64.
type Registers struct {
	regs sys.PtraceRegs
}

// registers reads the target's general purpose registers.
func (dbg *Running) registers() (*Registers, error) {
	var r Registers
	var err error
	dbg.info.execPtraceFunc(func() { err = sys.PtraceGetRegs(dbg.info.pid, &r.regs) })
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// setRegisters writes r back into the target.
func (dbg *Running) setRegisters(r *Registers) error {
	var err error
	dbg.info.execPtraceFunc(func() { err = sys.PtraceSetRegs(dbg.info.pid, &r.regs) })
	return err
}

// PC returns the value of the RIP register.
func (r *Registers) PC() uint64 {
	return r.regs.Rip
}

// SetPC sets RIP to pc. The change takes effect when the registers are
// written back with setRegisters.
func (r *Registers) SetPC(pc uint64) {
	r.regs.Rip = pc
}

// Slice returns the registers as a list of (name, value) pairs.
func (r *Registers) Slice() []Register {
	return []Register{
		{"Rip", r.regs.Rip},
		{"Rsp", r.regs.Rsp},
		{"Rax", r.regs.Rax},
		{"Rbx", r.regs.Rbx},
		{"Rcx", r.regs.Rcx},
		{"Rdx", r.regs.Rdx},
		{"Rdi", r.regs.Rdi},
		{"Rsi", r.regs.Rsi},
		{"Rbp", r.regs.Rbp},
		{"R8", r.regs.R8},
		{"R9", r.regs.R9},
		{"R10", r.regs.R10},
		{"R11", r.regs.R11},
		{"R12", r.regs.R12},
		{"R13", r.regs.R13},
		{"R14", r.regs.R14},
		{"R15", r.regs.R15},
		{"Orig_rax", r.regs.Orig_rax},
		{"Cs", r.regs.Cs},
		{"Rflags", r.regs.Eflags},
		{"Ss", r.regs.Ss},
		{"Fs_base", r.regs.Fs_base},
		{"Gs_base", r.regs.Gs_base},
		{"Ds", r.regs.Ds},
		{"Es", r.regs.Es},
		{"Fs", r.regs.Fs},
		{"Gs", r.regs.Gs},
	}
}

// printRegisters writes the full register set to w.
func printRegisters(w io.Writer, r *Registers) {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	for _, reg := range r.Slice() {
		fmt.Fprintf(tw, "%s\t= 0x%016x\n", reg.Name, reg.Value)
	}
	tw.Flush()
}
