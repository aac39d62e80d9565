package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRegisterSuccess confirms a registration to the caller.
	EventRegisterSuccess EventKind = iota
	// EventRegisterError reports a failed registration to the caller.
	EventRegisterError
	// EventPrivateMessage delivers a directed message to its recipient.
	EventPrivateMessage
	// EventMessageSent acknowledges a stored message to its sender.
	EventMessageSent
	// EventMessageError reports a private message that was not stored.
	EventMessageError
	// EventError reports a malformed or unrecognized envelope.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventRegisterSuccess:
		return "register_success"
	case EventRegisterError:
		return "register_error"
	case EventPrivateMessage:
		return "private_message"
	case EventMessageSent:
		return "message_sent"
	case EventMessageError:
		return "message_error"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	UserID     int64
	FromUserID int64
	ToUserID   int64
	MessageID  int64
	Content    string
	Error      *CoreError
}
