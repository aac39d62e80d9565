package core

import "sync"

// Client is one live connection as seen by the core layer.
// Events is the outbound queue drained by the transport write loop;
// it is closed when the client is closed.
type Client struct {
	id     string
	Events chan *Event

	mu     sync.Mutex
	closed bool
}

// NewClient constructs a client with an outbound buffer of the given size.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 8
	}
	return &Client{
		id:     id,
		Events: make(chan *Event, buffer),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Open reports whether the client still accepts events.
func (c *Client) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Send enqueues an event without blocking. It returns false if the client is
// closed or its buffer is full.
func (c *Client) Send(ev *Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// Close marks the client closed and closes its outbound channel. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}
