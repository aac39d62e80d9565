package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/dmrelay/internal/proto"
)

type registerFrame struct {
	Type string `json:"type"`
	proto.Register
}

type privateMessageFrame struct {
	Type string `json:"type"`
	proto.PrivateMessage
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	userID := flag.Int64("user-id", 1, "numeric user id to register as")
	name := flag.String("name", "cli-user", "display name")
	to := flag.Int64("to", 2, "user id to send private messages to")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	register := registerFrame{
		Type:     proto.InboundTypeRegister,
		Register: proto.Register{UserID: proto.IDFrom(*userID), UserName: *name},
	}
	if err := wsjson.Write(ctx, conn, register); err != nil {
		return fmt.Errorf("send register: %w", err)
	}

	fmt.Printf("Connected to %s as %d (%s), chatting with %d\n", *addr, *userID, *name, *to)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, proto.IDFrom(*userID), proto.IDFrom(*to))

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch env.Type {
		case proto.OutboundTypeRegisterSuccess:
			fmt.Printf("registered as %d\n", deref(env.UserID))
		case proto.OutboundTypePrivateMessage:
			fmt.Printf("[%d] %s\n", deref(env.FromUserID), deref(env.Content))
		case proto.OutboundTypeMessageSent:
			fmt.Printf("(sent #%d to %d)\n", deref(env.MessageID), deref(env.ToUserID))
		case proto.OutboundTypeMessageError:
			fmt.Printf("message failed: %s\n", deref(env.Error))
		case proto.OutboundTypeRegisterError, proto.OutboundTypeError:
			fmt.Printf("%s: %s\n", env.Type, deref(env.Message))
		default:
			fmt.Printf("unhandled frame type=%s\n", env.Type)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, from, to proto.ID) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			frame := privateMessageFrame{
				Type:           proto.InboundTypePrivateMessage,
				PrivateMessage: proto.PrivateMessage{FromUserID: from, ToUserID: to, Content: &text},
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
