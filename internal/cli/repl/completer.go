package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"ping",
			"echo <message>",
			"get <key>",
			"set <key> <value> [ex <seconds> | px <millis>] [nx | xx]",
			"help [prefix]",
			"exit",
			"quit",
		},
	}
}

// Complete returns the usage lines starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
