package signaling

import (
	"sort"
	"sync"
)

// Registry maps peer ids to their live connection. A peer id is bound to at
// most one client at a time.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*Client)}
}

// Register binds id to c. It fails with ErrDuplicateIdentity if id is
// already bound.
func (r *Registry) Register(id string, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[id]; ok {
		return wrapError("register", ErrDuplicateIdentity, id)
	}
	r.peers[id] = c
	return nil
}

// Lookup returns the client bound to id, if any.
func (r *Registry) Lookup(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.peers[id]
	return c, ok
}

// Unregister drops the binding for id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.peers, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// IDs returns every bound peer id, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
