package terminal

import (
	"fmt"
	"strings"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"
)

type command struct {
	aliases []string
}

// Commands is the command set known to the terminal. It backs prefix
// completion and config-file alias resolution; dispatch itself happens
// in the debugger core.
type Commands struct {
	cmds       []command
	completion *trie.Trie
}

// DebugCommands returns a Commands struct with the default command set.
func DebugCommands() *Commands {
	c := &Commands{
		cmds: []command{
			{aliases: []string{"run", "r"}},
			{aliases: []string{"break", "b"}},
			{aliases: []string{"continue", "c"}},
			{aliases: []string{"stepi", "s"}},
			{aliases: []string{"registers", "regs"}},
			{aliases: []string{"help", "h"}},
			{aliases: []string{"exit"}},
		},
	}
	c.rebuildCompletion()
	return c
}

// Merge adds the config-file aliases to the default aliases for the
// commands they name.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.rebuildCompletion()
}

func (c *Commands) rebuildCompletion() {
	c.completion = trie.New()
	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			c.completion.Add(alias, nil)
		}
	}
}

// complete returns the known command names starting with prefix.
func (c *Commands) complete(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	return c.completion.PrefixSearch(prefix)
}

// canonicalize rewrites the first token of a command vector to the
// canonical command name when it matches any known alias, so the core
// never needs to know about config-file aliases.
func (c *Commands) canonicalize(vector []string) []string {
	if len(vector) == 0 {
		return vector
	}
	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			if vector[0] == alias {
				vector[0] = cmd.aliases[0]
				return vector
			}
		}
	}
	return vector
}

// tokenize splits one line of operator input into a command vector. A
// blank line yields an empty vector, which dispatch treats as a no-op.
func tokenize(cmdstr string) ([]string, error) {
	if strings.TrimSpace(cmdstr) == "" {
		return nil, nil
	}
	v, err := argv.Argv(cmdstr,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in %q", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, nil
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal command line %q", cmdstr)
	}
	return v[0], nil
}
