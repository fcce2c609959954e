package domain

import (
	"math"
	"strconv"
)

// Command is a parsed client request. The concrete types are Ping, Echo,
// Get, Set and Exit.
type Command interface {
	// Name returns the lower-case command verb.
	Name() string
	// Args returns the token sequence that parses back into this command.
	Args() []string

	isCommand()
}

// Ping checks liveness.
type Ping struct{}

// Echo returns Message unchanged.
type Echo struct {
	Message string
}

// Get reads the value stored under Key.
type Get struct {
	Key string
}

// Set writes Value under Key, optionally with a TTL and a presence condition.
type Set struct {
	Key       string
	Value     string
	Expiry    *Expiry
	Condition Condition
}

// Exit signals that the client has no more input.
type Exit struct{}

func (Ping) isCommand() {}
func (Echo) isCommand() {}
func (Get) isCommand()  {}
func (Set) isCommand()  {}
func (Exit) isCommand() {}

func (Ping) Name() string { return "ping" }
func (Echo) Name() string { return "echo" }
func (Get) Name() string  { return "get" }
func (Set) Name() string  { return "set" }
func (Exit) Name() string { return "exit" }

func (Ping) Args() []string   { return []string{"ping"} }
func (c Echo) Args() []string { return []string{"echo", c.Message} }
func (c Get) Args() []string  { return []string{"get", c.Key} }

// Exit has no wire form: an empty frame or a closed stream produces it.
func (Exit) Args() []string { return nil }

func (c Set) Args() []string {
	args := []string{"set", c.Key, c.Value}
	if c.Expiry != nil {
		args = append(args, c.Expiry.Unit.Option(), strconv.FormatUint(c.Expiry.Amount, 10))
	}
	if opt := c.Condition.Option(); opt != "" {
		args = append(args, opt)
	}
	return args
}

// ExpiryUnit selects how Expiry.Amount is interpreted.
type ExpiryUnit int

const (
	// Seconds is the unit of the "ex" option.
	Seconds ExpiryUnit = iota + 1
	// Milliseconds is the unit of the "px" option.
	Milliseconds
)

// Option returns the SET option keyword for the unit.
func (u ExpiryUnit) Option() string {
	switch u {
	case Seconds:
		return "ex"
	case Milliseconds:
		return "px"
	default:
		return ""
	}
}

// Expiry is a TTL relative to the moment the command executes.
type Expiry struct {
	Unit   ExpiryUnit
	Amount uint64
}

// ExpireSeconds returns an "ex" expiry.
func ExpireSeconds(secs uint32) *Expiry {
	return &Expiry{Unit: Seconds, Amount: uint64(secs)}
}

// ExpireMillis returns a "px" expiry.
func ExpireMillis(ms uint64) *Expiry {
	return &Expiry{Unit: Milliseconds, Amount: ms}
}

// Millis returns the TTL in milliseconds, saturating at math.MaxInt64.
func (e Expiry) Millis() int64 {
	ms := e.Amount
	if e.Unit == Seconds {
		// Amount fits in uint32 for seconds, so this cannot overflow uint64.
		ms *= 1000
	}
	if ms > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ms)
}

// Deadline resolves the TTL against nowMillis into an absolute epoch
// millisecond deadline, saturating at math.MaxInt64.
func (e Expiry) Deadline(nowMillis int64) int64 {
	ttl := e.Millis()
	if nowMillis > 0 && ttl > math.MaxInt64-nowMillis {
		return math.MaxInt64
	}
	return nowMillis + ttl
}

// Condition restricts when a SET is applied.
type Condition int

const (
	// Always applies the write unconditionally.
	Always Condition = iota
	// OnlyIfAbsent applies the write only when the key is unset ("nx").
	OnlyIfAbsent
	// OnlyIfPresent applies the write only when the key is set ("xx").
	OnlyIfPresent
)

// Option returns the SET option keyword, or "" for Always.
func (c Condition) Option() string {
	switch c {
	case OnlyIfAbsent:
		return "nx"
	case OnlyIfPresent:
		return "xx"
	default:
		return ""
	}
}

// Allows reports whether a write may proceed given the key's presence.
func (c Condition) Allows(present bool) bool {
	switch c {
	case OnlyIfAbsent:
		return !present
	case OnlyIfPresent:
		return present
	default:
		return true
	}
}
