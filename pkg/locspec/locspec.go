// Package locspec parses operator-supplied location expressions into
// target addresses.
package locspec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddr converts a location expression into a target address.
// Accepted forms are hexadecimal with a 0x/0X prefix, a bare "*0x..."
// form, and plain decimal.
func ParseAddr(expr string) (uint64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(expr), "*")
	if s == "" {
		return 0, fmt.Errorf("malformed address %q", expr)
	}
	var (
		addr uint64
		err  error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		addr, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		addr, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("malformed address %q", expr)
	}
	return addr, nil
}
