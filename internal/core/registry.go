package core

// Handle is an opaque reference to one connection, usable to send events.
type Handle interface {
	ID() string
	Open() bool
	Send(ev *Event) bool
}

// Registry maps user ids to the connection currently bound to them.
// Implementations are not safe for concurrent use; the Hub owns the registry
// and calls it from a single goroutine.
type Registry interface {
	// Bind sets the handle for userID, replacing any previous one.
	Bind(userID int64, h Handle)
	// Lookup returns the handle bound to userID.
	Lookup(userID int64) (Handle, bool)
	// UnbindByHandle removes every entry whose value is h and returns the
	// user ids that were removed.
	UnbindByHandle(h Handle) []int64
}

// MemoryRegistry is the in-process Registry.
type MemoryRegistry struct {
	entries map[int64]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[int64]Handle)}
}

// Bind implements Registry.
func (r *MemoryRegistry) Bind(userID int64, h Handle) {
	r.entries[userID] = h
}

// Lookup implements Registry.
func (r *MemoryRegistry) Lookup(userID int64) (Handle, bool) {
	h, ok := r.entries[userID]
	return h, ok
}

// UnbindByHandle implements Registry. It compares by handle identity, never by
// user id, so a stale close cannot evict a newer binding.
func (r *MemoryRegistry) UnbindByHandle(h Handle) []int64 {
	var removed []int64
	for userID, bound := range r.entries {
		if bound == h {
			delete(r.entries, userID)
			removed = append(removed, userID)
		}
	}
	return removed
}

// Len returns the number of bound user ids.
func (r *MemoryRegistry) Len() int {
	return len(r.entries)
}
