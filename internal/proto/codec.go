package proto

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// ProtocolError is returned by Decode for frames that are not a recognized envelope.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

const (
	reasonInvalidUTF8 = "frame is not valid UTF-8"
	reasonInvalidJSON = "invalid JSON envelope"
	reasonUnknownType = "unknown message type"
)

// Decode parses one inbound frame into a typed event.
func Decode(frame []byte) (Inbound, error) {
	if !utf8.Valid(frame) {
		return nil, &ProtocolError{Reason: reasonInvalidUTF8}
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &head); err != nil {
		return nil, &ProtocolError{Reason: reasonInvalidJSON, Err: err}
	}

	switch head.Type {
	case InboundTypeRegister:
		var ev Register
		if err := json.Unmarshal(frame, &ev); err != nil {
			return nil, &ProtocolError{Reason: "malformed register event", Err: err}
		}
		return ev, nil
	case InboundTypePrivateMessage:
		var ev PrivateMessage
		if err := json.Unmarshal(frame, &ev); err != nil {
			return nil, &ProtocolError{Reason: "malformed private_message event", Err: err}
		}
		return ev, nil
	default:
		return nil, &ProtocolError{Reason: reasonUnknownType}
	}
}

// Encode serializes an outbound envelope into a text frame.
func Encode(out Outbound) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", out.OutboundType(), err)
	}
	return data, nil
}

// NewRegisterSuccess builds a register_success envelope.
func NewRegisterSuccess(userID int64) RegisterSuccess {
	return RegisterSuccess{Type: OutboundTypeRegisterSuccess, UserID: userID}
}

// NewRegisterError builds a register_error envelope.
func NewRegisterError(msg string) RegisterError {
	return RegisterError{Type: OutboundTypeRegisterError, Message: msg}
}

// NewDelivery builds the private_message envelope sent to a recipient.
func NewDelivery(fromUserID int64, content string) Delivery {
	return Delivery{Type: OutboundTypePrivateMessage, FromUserID: fromUserID, Content: content}
}

// NewMessageSent builds a message_sent envelope.
func NewMessageSent(messageID, toUserID int64) MessageSent {
	return MessageSent{Type: OutboundTypeMessageSent, MessageID: messageID, ToUserID: toUserID}
}

// NewMessageError builds a message_error envelope.
func NewMessageError(msg string) MessageError {
	return MessageError{Type: OutboundTypeMessageError, Error: msg}
}

// NewError builds a generic error envelope.
func NewError(msg string) Error {
	return Error{Type: OutboundTypeError, Message: msg}
}
