package locspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseAddrTests = []struct {
	expr     string
	want     uint64
	hasError bool
}{
	{expr: "0x401000", want: 0x401000},
	{expr: "0X401000", want: 0x401000},
	{expr: "*0x401000", want: 0x401000},
	{expr: "4096", want: 4096},
	{expr: " 0xdeadbeef ", want: 0xdeadbeef},
	{expr: "", hasError: true},
	{expr: "*", hasError: true},
	{expr: "0x", hasError: true},
	{expr: "0xzz", hasError: true},
	{expr: "main.main", hasError: true},
	{expr: "-1", hasError: true},
}

func TestParseAddr(t *testing.T) {
	for _, test := range parseAddrTests {
		addr, err := ParseAddr(test.expr)
		if test.hasError {
			assert.Error(t, err, "expr %q", test.expr)
			continue
		}
		require.NoError(t, err, "expr %q", test.expr)
		assert.Equal(t, test.want, addr, "expr %q", test.expr)
	}
}
