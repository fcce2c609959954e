package repl

import (
	"errors"
	"strings"
)

// ErrUnbalancedQuotes is returned by Split for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// Split breaks line into words. Quotes group words and may produce empty
// words; inside double quotes a backslash escapes the next byte.
func Split(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case quote != 0:
			switch {
			case ch == quote:
				quote = 0
			case ch == '\\' && quote == '"':
				escaped = true
			default:
				cur.WriteByte(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
			inWord = true
		case ch == ' ' || ch == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(ch)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnbalancedQuotes
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
