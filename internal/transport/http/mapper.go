package http

import (
	"github.com/vovakirdan/dmrelay/internal/core"
	"github.com/vovakirdan/dmrelay/internal/proto"
)

const (
	msgRateLimited  = "rate limit exceeded"
	msgUnknownError = "unknown error"
)

func inboundToCommand(inbound proto.Inbound) *core.Command {
	switch in := inbound.(type) {
	case proto.Register:
		return &core.Command{
			Kind:     core.CommandRegister,
			UserID:   string(in.UserID),
			UserName: in.UserName,
		}
	case proto.PrivateMessage:
		return &core.Command{
			Kind:       core.CommandPrivateMessage,
			FromUserID: string(in.FromUserID),
			ToUserID:   string(in.ToUserID),
			Content:    in.Content,
		}
	default:
		return nil
	}
}

func protocolErrorEvent(msg string) *core.Event {
	return &core.Event{
		Kind:  core.EventError,
		Error: &core.CoreError{Code: core.ErrCodeProtocol, Message: msg},
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRegisterSuccess:
		return proto.NewRegisterSuccess(event.UserID)
	case core.EventRegisterError:
		return proto.NewRegisterError(errorMessage(event))
	case core.EventPrivateMessage:
		return proto.NewDelivery(event.FromUserID, event.Content)
	case core.EventMessageSent:
		return proto.NewMessageSent(event.MessageID, event.ToUserID)
	case core.EventMessageError:
		return proto.NewMessageError(errorMessage(event))
	default:
		return proto.NewError(errorMessage(event))
	}
}

func errorMessage(event *core.Event) string {
	if event.Error == nil {
		return msgUnknownError
	}
	return event.Error.Message
}
