package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBreakpointOnlyFirstSucceeds(t *testing.T) {
	info := &DbgInfo{target: "/bin/true"}
	require.True(t, info.recordBreakpoint([]string{"0x1000"}))
	require.NotNil(t, info.breakpoint)

	for _, addr := range []string{"0x2000", "4096", "0x3000"} {
		assert.False(t, info.recordBreakpoint([]string{addr}))
		assert.Equal(t, uint64(0x1000), info.breakpoint.Addr)
	}
}

func TestRecordBreakpointBadInput(t *testing.T) {
	info := &DbgInfo{target: "/bin/true"}
	assert.False(t, info.recordBreakpoint(nil))
	assert.False(t, info.recordBreakpoint([]string{"lolwut"}))
	assert.False(t, info.recordBreakpoint([]string{"0xzz"}))
	assert.Nil(t, info.breakpoint)
}

func TestBreakWhileNotRunning(t *testing.T) {
	dbg := New("/bin/true")
	st, err := dbg.Dispatch([]string{"break", "0x401000"})
	require.NoError(t, err)
	require.Same(t, State(dbg), st)
	require.NotNil(t, dbg.info.breakpoint)
	assert.Equal(t, uint64(0x401000), dbg.info.breakpoint.Addr)
	assert.False(t, dbg.info.breakpoint.installed)

	st, err = dbg.Dispatch([]string{"break", "0x402000"})
	require.NoError(t, err)
	require.Same(t, State(dbg), st)
	assert.Equal(t, uint64(0x401000), dbg.info.breakpoint.Addr)
}

func TestNotRunningRejectsTargetCommands(t *testing.T) {
	for _, cmd := range []string{"continue", "c", "stepi", "s", "registers", "regs"} {
		dbg := New("/bin/true")
		st, err := dbg.Dispatch([]string{cmd})
		require.NoError(t, err, "command %q", cmd)
		assert.Same(t, State(dbg), st, "command %q must not change state", cmd)
	}
}

func TestSharedCommandsKeepState(t *testing.T) {
	dbg := New("/bin/true")
	for _, cmd := range [][]string{nil, {}, {"help"}, {"h"}, {"bogus"}} {
		st, err := dbg.Dispatch(cmd)
		require.NoError(t, err, "command %v", cmd)
		assert.Same(t, State(dbg), st, "command %v must not change state", cmd)
	}
}

func TestExitFromNotRunning(t *testing.T) {
	dbg := New("/bin/true")
	st, err := dbg.Dispatch([]string{"exit"})
	require.NoError(t, err)
	require.IsType(t, &Exit{}, st)
}

func TestExitIsTerminal(t *testing.T) {
	e := &Exit{}
	st, err := e.Dispatch([]string{"run"})
	require.NoError(t, err)
	assert.Same(t, State(e), st)
}
