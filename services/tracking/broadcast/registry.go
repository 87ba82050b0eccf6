// Package broadcast fans snapshot frames out to every connected subscriber.
package broadcast

import "sync"

// Subscriber is one member of the location_updates group.
// Open and Send must never block.
type Subscriber interface {
	ID() string
	// Open hands over the opening frame. It returns false if the subscriber is no longer connecting.
	Open(initial []byte) bool
	// Send enqueues a frame. It returns false if the subscriber cannot take it and must be dropped.
	Send(frame []byte) bool
	Close()
}

// Registry tracks the current members of the broadcast group
type Registry struct {
	mu      sync.RWMutex
	members map[string]Subscriber
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{members: make(map[string]Subscriber)}
}

// Register adds sub, replacing any member with the same id
func (r *Registry) Register(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sub.ID()] = sub
}

// Deregister removes the member with id. It reports whether the member was present.
func (r *Registry) Deregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	return true
}

// Members returns a copy of the current members
func (r *Registry) Members() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscriber, 0, len(r.members))
	for _, sub := range r.members {
		out = append(out, sub)
	}
	return out
}

// Len returns the number of members
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
