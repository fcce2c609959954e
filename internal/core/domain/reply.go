package domain

// ReplyKind enumerates the reply shapes.
type ReplyKind int

const (
	// KindSimpleString is "+<text>".
	KindSimpleString ReplyKind = iota + 1
	// KindBulkNil is "$-1".
	KindBulkNil
	// KindError is "-<message>".
	KindError
)

// String returns the kind label used in logs and metrics.
func (k ReplyKind) String() string {
	switch k {
	case KindSimpleString:
		return "ok"
	case KindBulkNil:
		return "nil"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Reply is the result of executing a command.
type Reply struct {
	Kind ReplyKind
	Text string
}

// SimpleString returns a "+text" reply.
func SimpleString(text string) Reply {
	return Reply{Kind: KindSimpleString, Text: text}
}

// BulkNil returns the "$-1" reply.
func BulkNil() Reply {
	return Reply{Kind: KindBulkNil}
}

// ErrorReply returns a "-message" reply.
func ErrorReply(message string) Reply {
	return Reply{Kind: KindError, Text: message}
}

// ReplyFromError converts an error into an error reply. DomainErrors carry
// their wire message; anything else is prefixed with "ERR ".
func ReplyFromError(err error) Reply {
	if IsDomainError(err, "") {
		return ErrorReply(err.Error())
	}
	return ErrorReply("ERR " + err.Error())
}

// Common replies.
var (
	ReplyOK   = SimpleString("OK")
	ReplyPong = SimpleString("PONG")
)
