package domain

import (
	"strconv"
	"strings"
)

// Parse turns a decoded token sequence into a Command.
//
// Tokens coming off the wire are already lower-cased; the verb and option
// keywords are folded here as well so callers building tokens by hand get
// the same result. Arguments (keys, values, messages) are kept verbatim.
// Parse never mutates state, and every failure is a *DomainError.
func Parse(tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return Exit{}, nil
	}

	verb := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch verb {
	case "ping":
		return Ping{}, nil
	case "echo":
		if len(args) != 1 {
			return nil, arityError(verb)
		}
		return Echo{Message: args[0]}, nil
	case "get":
		if len(args) != 1 {
			return nil, arityError(verb)
		}
		return Get{Key: args[0]}, nil
	case "set":
		return parseSet(args)
	default:
		return nil, ErrUnknownCommand.Withf("Unknown command: %s", verb)
	}
}

func arityError(verb string) error {
	return ErrArity.Withf("ERR wrong number of arguments for '%s' command", verb)
}

// parseSet parses "key value [ex secs|px ms] [nx|xx]" with options in any
// order. A second expiry or a second condition is an error, not an override.
func parseSet(args []string) (Command, error) {
	if len(args) < 2 {
		return nil, arityError("set")
	}

	cmd := Set{Key: args[0], Value: args[1]}

	opts := args[2:]
	for i := 0; i < len(opts); i++ {
		tok := opts[i]
		switch opt := strings.ToLower(tok); opt {
		case "ex", "px":
			if cmd.Expiry != nil {
				return nil, ErrOption.Withf("Duplicate Option: %s", tok)
			}
			if i+1 >= len(opts) {
				return nil, ErrOption.Withf("Missing value for option: %s", tok)
			}
			i++
			exp, err := parseExpiry(opt, opts[i])
			if err != nil {
				return nil, err
			}
			cmd.Expiry = exp
		case "nx", "xx":
			if cmd.Condition != Always {
				return nil, ErrOption.Withf("Duplicate Option: %s", tok)
			}
			if opt == "nx" {
				cmd.Condition = OnlyIfAbsent
			} else {
				cmd.Condition = OnlyIfPresent
			}
		default:
			return nil, ErrOption.Withf("Invalid Option: %s", tok)
		}
	}

	return cmd, nil
}

func parseExpiry(opt, value string) (*Expiry, error) {
	switch opt {
	case "ex":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, ErrOption.Withf("Invalid value for option %s: %s", opt, value).WithCause(err)
		}
		return ExpireSeconds(uint32(n)), nil
	default:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, ErrOption.Withf("Invalid value for option %s: %s", opt, value).WithCause(err)
		}
		return ExpireMillis(n), nil
	}
}
