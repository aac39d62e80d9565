package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmrelay/internal/config"
	"github.com/vovakirdan/dmrelay/internal/core"
	"github.com/vovakirdan/dmrelay/internal/proto"
)

var errHubStopped = errors.New("hub stopped")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub       Hub
	log       *zerolog.Logger
	buffer    int
	readLimit int64
	rateLimit int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:       hub,
		log:       logger,
		buffer:    cfg.ClientBuffer,
		readLimit: cfg.MaxMessageBytes,
		rateLimit: cfg.RateLimitPerMinute,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	client := core.NewClient(uuid.NewString(), h.buffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	// Either loop ending stops the other.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel()
	<-errCh

	status, reason := closeStatus(err)
	if status == websocket.StatusInternalError {
		h.log.Warn().Err(err).Str("client_id", client.ID()).Msg("ws connection closed with error")
	}
	_ = conn.Close(status, reason)
}

func closeStatus(err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, errHubStopped):
		return websocket.StatusGoingAway, "server shutting down"
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return websocket.StatusNormalClosure, "closing"
	}
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.rateLimit)

	for {
		// Frames are read raw so a malformed envelope does not end the connection.
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			h.log.Debug().Str("client_id", client.ID()).Msg("inbound frame rate limited")
			client.Send(protocolErrorEvent(msgRateLimited))
			continue
		}

		inbound, err := proto.Decode(frame)
		if err != nil {
			var protoErr *proto.ProtocolError
			if !errors.As(err, &protoErr) {
				return err
			}
			h.log.Debug().Err(err).Str("client_id", client.ID()).Msg("rejected inbound frame")
			client.Send(protocolErrorEvent(protoErr.Reason))
			continue
		}

		cmd := inboundToCommand(inbound)
		if cmd == nil {
			client.Send(protocolErrorEvent(msgUnknownError))
			continue
		}
		if !h.hub.Submit(client, cmd) {
			return errHubStopped
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			data, err := proto.Encode(outboundFromEvent(event))
			if err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID()).Msg("encode ws event")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID()).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
