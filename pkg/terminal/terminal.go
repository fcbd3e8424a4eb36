// Package terminal implements the read-eval loop that tokenizes
// operator input and feeds command vectors into the debugger core.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	isatty "github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/ryone9re/zdbg/pkg/config"
	"github.com/ryone9re/zdbg/pkg/proc"
)

const historyFile string = ".zdbg_history"

// Term represents the terminal running zdbg.
type Term struct {
	state  proc.State
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
	dumb   bool
}

// New returns a new Term wired to the initial session state.
func New(state proc.State, conf *config.Config) *Term {
	if conf == nil {
		conf = &config.Config{}
	}
	cmds := DebugCommands()
	cmds.Merge(conf.Aliases)

	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb" || !isatty.IsTerminal(os.Stdin.Fd())

	return &Term{
		state:  state,
		conf:   conf,
		prompt: "(zdbg) ",
		line:   liner.NewLiner(),
		cmds:   cmds,
		dumb:   dumb,
	}
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	t.line.Close()
}

// Run begins the read-eval loop and blocks until the session reaches
// its terminal state. The returned status is the process exit code.
func (t *Term) Run() (int, error) {
	defer t.Close()

	if !t.dumb {
		t.line.SetCompleter(func(line string) []string {
			return t.cmds.complete(line)
		})
	}

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Printf("Unable to load history file: %v.\n", err)
	} else if f, err := os.Open(fullHistoryFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}

	fmt.Println("Type 'help' for list of commands.")

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err != io.EOF {
				return 1, fmt.Errorf("prompt for input failed: %v", err)
			}
			// EOF ends the session the same way an explicit exit does,
			// killing the target if one is running.
			fmt.Println("exit")
			cmdstr = "exit"
		}

		vector, err := tokenize(cmdstr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		next, err := t.state.Dispatch(t.cmds.canonicalize(vector))
		if err != nil {
			return 1, err
		}
		t.state = next

		if _, exited := t.state.(*proc.Exit); exited {
			t.saveHistory()
			return 0, nil
		}
	}
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}
	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}
	return l, nil
}

func (t *Term) saveHistory() {
	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Println("Error saving history file:", err)
		return
	}
	f, err := os.Create(fullHistoryFile)
	if err != nil {
		return
	}
	if _, err = t.line.WriteHistory(f); err != nil {
		fmt.Println("readline history error:", err)
	}
	f.Close()
}
