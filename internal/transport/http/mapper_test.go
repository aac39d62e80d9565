package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dmrelay/internal/core"
	"github.com/vovakirdan/dmrelay/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	req := require.New(t)
	content := "hi"

	cmd := inboundToCommand(proto.Register{UserID: "5", UserName: "eve"})
	req.Equal(&core.Command{Kind: core.CommandRegister, UserID: "5", UserName: "eve"}, cmd)

	cmd = inboundToCommand(proto.PrivateMessage{FromUserID: "5", ToUserID: "6", Content: &content})
	req.Equal(core.CommandPrivateMessage, cmd.Kind)
	req.Equal("5", cmd.FromUserID)
	req.Equal("6", cmd.ToUserID)
	req.Same(&content, cmd.Content)
}

func TestOutboundFromEvent(t *testing.T) {
	cases := []struct {
		name  string
		event *core.Event
		want  proto.Outbound
	}{
		{
			name:  "register success",
			event: &core.Event{Kind: core.EventRegisterSuccess, UserID: 3},
			want:  proto.NewRegisterSuccess(3),
		},
		{
			name:  "register error",
			event: &core.Event{Kind: core.EventRegisterError, Error: &core.CoreError{Message: "nope"}},
			want:  proto.NewRegisterError("nope"),
		},
		{
			name:  "delivery",
			event: &core.Event{Kind: core.EventPrivateMessage, FromUserID: 1, Content: "yo"},
			want:  proto.NewDelivery(1, "yo"),
		},
		{
			name:  "message sent",
			event: &core.Event{Kind: core.EventMessageSent, MessageID: 9, ToUserID: 2},
			want:  proto.NewMessageSent(9, 2),
		},
		{
			name:  "message error",
			event: &core.Event{Kind: core.EventMessageError, Error: &core.CoreError{Message: "bad"}},
			want:  proto.NewMessageError("bad"),
		},
		{
			name:  "protocol error",
			event: protocolErrorEvent("unknown message type"),
			want:  proto.NewError("unknown message type"),
		},
		{
			name:  "error without detail",
			event: &core.Event{Kind: core.EventError},
			want:  proto.NewError(msgUnknownError),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, outboundFromEvent(tc.event))
		})
	}
}
