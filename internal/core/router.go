package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/dmrelay/internal/proto"
	"github.com/vovakirdan/dmrelay/internal/store"
)

// Persistence is the part of the store the router depends on.
type Persistence interface {
	store.UserStore
	store.MessageStore
}

// Executor runs fn on the goroutine that owns the registry and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Router validates and executes client commands.
type Router struct {
	store    Persistence
	registry Registry
	exec     Executor
	log      *zerolog.Logger
}

// NewRouter builds a router. Every registry access goes through exec.
func NewRouter(st Persistence, registry Registry, exec Executor, logger *zerolog.Logger) *Router {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Router{
		store:    st,
		registry: registry,
		exec:     exec,
		log:      logger,
	}
}

// Handle runs one command to completion. Errors never escape: they are
// reported to the originating connection as the matching error event.
func (r *Router) Handle(ctx context.Context, conn Handle, cmd *Command) {
	var (
		err  error
		kind EventKind
	)

	switch cmd.Kind {
	case CommandRegister:
		kind = EventRegisterError
		err = r.register(ctx, conn, cmd)
	case CommandPrivateMessage:
		kind = EventMessageError
		err = r.privateMessage(ctx, conn, cmd)
	default:
		kind = EventError
		err = protocolError("unknown message type")
	}
	if err == nil {
		return
	}

	if errors.Is(err, ErrHubStopped) {
		r.log.Debug().Str("client_id", conn.ID()).Msg("hub stopped while handling command")
		return
	}

	ce := asCoreError(err)
	logEv := r.log.Warn()
	if ce.Code == ErrCodePersistence {
		logEv = r.log.Error()
	}
	logEv.Err(ce.Err).
		Str("client_id", conn.ID()).
		Str("code", ce.Code).
		Str("event", kind.String()).
		Msg(ce.Message)

	r.reply(conn, &Event{Kind: kind, Error: ce})
}

func (r *Router) register(ctx context.Context, conn Handle, cmd *Command) error {
	userID, err := proto.ID(cmd.UserID).Int64()
	if err != nil {
		return validationError("invalid user id")
	}

	if _, err := r.store.FindUserByID(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return persistenceError("failed to look up user", err)
		}
		user, err := r.store.CreateUser(ctx, userID, cmd.UserName)
		switch {
		case err == nil:
			r.log.Info().Int64("user_id", user.ID).Str("name", user.Name).Msg("created user")
		case errors.Is(err, store.ErrUserExists):
			// Another registration for the same id won the insert.
		default:
			return persistenceError("failed to create user", err)
		}
	}

	bound := false
	if err := r.exec.Do(ctx, func() {
		if !conn.Open() {
			return
		}
		r.registry.Bind(userID, conn)
		bound = true
	}); err != nil {
		return err
	}
	if !bound {
		r.log.Debug().Str("client_id", conn.ID()).Int64("user_id", userID).Msg("connection closed before registration completed")
		return nil
	}

	r.log.Info().Str("client_id", conn.ID()).Int64("user_id", userID).Msg("user connected")
	r.reply(conn, &Event{Kind: EventRegisterSuccess, UserID: userID})
	return nil
}

func (r *Router) privateMessage(ctx context.Context, conn Handle, cmd *Command) error {
	fromID, errFrom := proto.ID(cmd.FromUserID).Int64()
	toID, errTo := proto.ID(cmd.ToUserID).Int64()
	if errFrom != nil || errTo != nil {
		return validationError("invalid user IDs")
	}
	if cmd.Content == nil {
		return validationError("content is required")
	}
	content := *cmd.Content

	var (
		g              errgroup.Group
		sender, target *store.User
	)
	g.Go(func() (err error) {
		sender, err = r.findUser(ctx, fromID)
		return err
	})
	g.Go(func() (err error) {
		target, err = r.findUser(ctx, toID)
		return err
	})
	if err := g.Wait(); err != nil {
		return persistenceError("failed to look up users", err)
	}
	if sender == nil || target == nil {
		return notFoundError("one or both users do not exist")
	}

	msg, err := r.store.CreateMessage(ctx, fromID, toID, content)
	if err != nil {
		return persistenceError("failed to store message", err)
	}

	var online, delivered bool
	if err := r.exec.Do(ctx, func() {
		h, ok := r.registry.Lookup(toID)
		if !ok || !h.Open() {
			return
		}
		online = true
		delivered = h.Send(&Event{Kind: EventPrivateMessage, FromUserID: fromID, Content: content})
	}); err != nil {
		r.log.Warn().Err(err).Int64("message_id", msg.ID).Msg("skipped delivery")
	}

	switch {
	case delivered:
		r.log.Debug().Int64("message_id", msg.ID).Int64("from_user_id", fromID).Int64("to_user_id", toID).Msg("message delivered")
	case online:
		r.log.Warn().Int64("message_id", msg.ID).Int64("to_user_id", toID).Msg("recipient outbound buffer full, dropped delivery")
	default:
		r.log.Debug().Int64("message_id", msg.ID).Int64("to_user_id", toID).Msg("recipient not connected")
	}

	r.reply(conn, &Event{Kind: EventMessageSent, MessageID: msg.ID, ToUserID: toID})
	return nil
}

// findUser returns nil without error when the user does not exist.
func (r *Router) findUser(ctx context.Context, id int64) (*store.User, error) {
	user, err := r.store.FindUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (r *Router) reply(conn Handle, ev *Event) {
	if conn.Send(ev) {
		return
	}
	if conn.Open() {
		r.log.Warn().Str("client_id", conn.ID()).Str("event", ev.Kind.String()).Msg("outbound buffer full, dropped event")
		return
	}
	r.log.Debug().Str("client_id", conn.ID()).Str("event", ev.Kind.String()).Msg("dropped event for closed client")
}
