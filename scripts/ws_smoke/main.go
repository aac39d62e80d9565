package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/dmrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	userID := flag.Int64("user-id", 1001, "user id to register as")
	name := flag.String("name", "tester", "display name")
	to := flag.Int64("to", 1001, "recipient user id (defaults to self)")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v any) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	if err := send(map[string]any{
		"type":     proto.InboundTypeRegister,
		"userId":   *userID,
		"userName": *name,
	}); err != nil {
		return err
	}
	if _, err := await(ctx, conn, proto.OutboundTypeRegisterSuccess); err != nil {
		return err
	}

	if err := send(map[string]any{
		"type":       proto.InboundTypePrivateMessage,
		"fromUserId": *userID,
		"toUserId":   *to,
		"content":    *text,
	}); err != nil {
		return err
	}
	ack, err := await(ctx, conn, proto.OutboundTypeMessageSent)
	if err != nil {
		return err
	}

	fmt.Printf("smoke ok: message %d stored for user %d\n", *ack.MessageID, *ack.ToUserID)
	return nil
}

// await reads frames until one of the wanted type arrives. Error envelopes end the run.
func await(ctx context.Context, conn *websocket.Conn, want string) (proto.Envelope, error) {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return env, fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received outbound: type=%s\n", env.Type)

		switch env.Type {
		case want:
			return env, nil
		case proto.OutboundTypeRegisterError, proto.OutboundTypeError:
			return env, fmt.Errorf("%s: %s", env.Type, value(env.Message))
		case proto.OutboundTypeMessageError:
			return env, fmt.Errorf("%s: %s", env.Type, value(env.Error))
		}
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
