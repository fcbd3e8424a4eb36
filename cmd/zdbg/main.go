package main

import (
	"os"

	"github.com/ryone9re/zdbg/cmd/zdbg/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
