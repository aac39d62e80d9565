package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Hub is the single dispatcher for all connections. Its Run goroutine owns the
// registry and the client set; commands run as router tasks that come back to
// the hub through Do whenever they touch the registry.
type Hub struct {
	registry Registry
	router   *Router
	log      *zerolog.Logger

	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	commands   chan inbound
	calls      chan call

	done  chan struct{}
	tasks sync.WaitGroup
}

type inbound struct {
	client *Client
	cmd    *Command
}

type call struct {
	fn   func()
	done chan struct{}
}

// NewHub creates a hub with an in-memory registry.
func NewHub(st Persistence, logger *zerolog.Logger) *Hub {
	return NewHubWithRegistry(st, NewRegistry(), logger)
}

// NewHubWithRegistry creates a hub around the given registry.
func NewHubWithRegistry(st Persistence, registry Registry, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		registry:   registry,
		log:        logger,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan inbound),
		calls:      make(chan call),
		done:       make(chan struct{}),
	}
	h.router = NewRouter(st, registry, h, logger)
	return h
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	// Store calls are not cancelled when the hub stops; Wait drains them.
	taskCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			h.stop()
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Str("client_id", c.ID()).Int("clients", len(h.clients)).Msg("client connected")
		case c := <-h.unregister:
			h.removeClient(c)
		case in := <-h.commands:
			h.tasks.Add(1)
			go func() {
				defer h.tasks.Done()
				h.router.Handle(taskCtx, in.client, in.cmd)
			}()
		case c := <-h.calls:
			c.fn()
			close(c.done)
		}
	}
}

// Wait blocks until Run has returned and every in-flight command has finished.
func (h *Hub) Wait() {
	<-h.done
	h.tasks.Wait()
}

// RegisterClient starts tracking a new connection.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// UnregisterClient removes every registry entry bound to c and closes it.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Submit queues a command from c. It returns false if the hub has stopped.
func (h *Hub) Submit(c *Client, cmd *Command) bool {
	select {
	case h.commands <- inbound{client: c, cmd: cmd}:
		return true
	case <-h.done:
		return false
	}
}

// Do runs fn on the hub goroutine and waits for it to return.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case h.calls <- c:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-c.done
	return nil
}

func (h *Hub) removeClient(c *Client) {
	delete(h.clients, c)
	removed := h.registry.UnbindByHandle(c)
	c.Close()

	for _, userID := range removed {
		h.log.Info().Str("client_id", c.ID()).Int64("user_id", userID).Msg("user disconnected")
	}
	h.log.Debug().Str("client_id", c.ID()).Int("clients", len(h.clients)).Msg("client disconnected")
}

func (h *Hub) stop() {
	close(h.done)
	for c := range h.clients {
		h.registry.UnbindByHandle(c)
		c.Close()
	}
	clear(h.clients)
	h.log.Info().Msg("hub stopped")
}
