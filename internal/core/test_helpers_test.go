package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/dmrelay/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok && ev != nil {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

// drain returns every event currently buffered on c without blocking.
func drain(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case ev, ok := <-c.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// inlineExecutor runs registry calls on the caller's goroutine.
type inlineExecutor struct{}

func (inlineExecutor) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

// memStore is an in-memory Persistence. When gates has a channel for a user
// id, FindUserByID for that id blocks until the channel is closed.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]*store.User
	messages []*store.Message
	gates    map[int64]chan struct{}
	findErr  error
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*store.User),
		gates: make(map[int64]chan struct{}),
	}
}

func (m *memStore) gate(id int64) (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[id] = ch
	m.mu.Unlock()
	return func() { close(ch) }
}

func (m *memStore) FindUserByID(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	gate := m.gates[id]
	delete(m.gates, id)
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) CreateUser(_ context.Context, id int64, name string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; ok {
		return nil, store.ErrUserExists
	}
	u := &store.User{ID: id, Name: name, CreatedAt: time.Now()}
	m.users[id] = u
	return u, nil
}

func (m *memStore) CreateMessage(_ context.Context, fromUserID, toUserID int64, content string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := &store.Message{
		ID:         int64(len(m.messages) + 1),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func strPtr(s string) *string { return &s }
