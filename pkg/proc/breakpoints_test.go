package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchWord(t *testing.T) {
	word := uint64(0x1122334455667788)
	patched := patchWord(word)
	assert.Equal(t, breakpointInstruction, byte(patched), "low byte must be the trap instruction")
	assert.Equal(t, word&^uint64(0xff), patched&^uint64(0xff), "upper bytes must be untouched")
}

func TestRestoreWordRoundTrip(t *testing.T) {
	word := uint64(0xdeadbeefcafe5548)
	patched := patchWord(word)
	assert.Equal(t, word, restoreWord(patched, byte(word)))
}

func TestFormatWord(t *testing.T) {
	assert.Equal(t,
		"0x401000: 88 77 66 55 44 33 22 11",
		formatWord(0x401000, 0x1122334455667788))
}
