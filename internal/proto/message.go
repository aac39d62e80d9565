package proto

const (
	InboundTypeRegister       = "register"
	InboundTypePrivateMessage = "private_message"

	OutboundTypeRegisterSuccess = "register_success"
	OutboundTypeRegisterError   = "register_error"
	OutboundTypePrivateMessage  = "private_message"
	OutboundTypeMessageSent     = "message_sent"
	OutboundTypeMessageError    = "message_error"
	OutboundTypeError           = "error"
)

// Inbound is one of the events a client may send. The set is closed:
// only types declared in this package implement it.
type Inbound interface {
	inboundType() string
}

// Register binds the connection to a user id, creating the user if needed.
type Register struct {
	UserID   ID     `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

func (Register) inboundType() string { return InboundTypeRegister }

// PrivateMessage is a directed message from one user to another.
// Content is a pointer so that a missing field can be told apart from "".
type PrivateMessage struct {
	FromUserID ID      `json:"fromUserId"`
	ToUserID   ID      `json:"toUserId"`
	Content    *string `json:"content"`
}

func (PrivateMessage) inboundType() string { return InboundTypePrivateMessage }

// Outbound is an envelope the relay sends to a client.
type Outbound interface {
	OutboundType() string
}

// RegisterSuccess acknowledges a completed registration.
type RegisterSuccess struct {
	Type   string `json:"type"`
	UserID int64  `json:"userId"`
}

func (RegisterSuccess) OutboundType() string { return OutboundTypeRegisterSuccess }

// RegisterError reports a failed registration.
type RegisterError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (RegisterError) OutboundType() string { return OutboundTypeRegisterError }

// Delivery carries a private message to its recipient.
type Delivery struct {
	Type       string `json:"type"`
	FromUserID int64  `json:"fromUserId"`
	Content    string `json:"content"`
}

func (Delivery) OutboundType() string { return OutboundTypePrivateMessage }

// MessageSent acknowledges a stored message to its sender.
type MessageSent struct {
	Type      string `json:"type"`
	MessageID int64  `json:"messageId"`
	ToUserID  int64  `json:"toUserId"`
}

func (MessageSent) OutboundType() string { return OutboundTypeMessageSent }

// MessageError reports a private message that was not stored.
type MessageError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (MessageError) OutboundType() string { return OutboundTypeMessageError }

// Error describes a protocol-level error response.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (Error) OutboundType() string { return OutboundTypeError }

// Envelope is a permissive view of any outbound frame. Clients decode into it
// and switch on Type.
type Envelope struct {
	Type       string  `json:"type"`
	UserID     *int64  `json:"userId,omitempty"`
	FromUserID *int64  `json:"fromUserId,omitempty"`
	ToUserID   *int64  `json:"toUserId,omitempty"`
	MessageID  *int64  `json:"messageId,omitempty"`
	Content    *string `json:"content,omitempty"`
	Message    *string `json:"message,omitempty"`
	Error      *string `json:"error,omitempty"`
}
