// Package owner is a runtime-checked single-owner registry for
// register-access capabilities: each resource is held by at most one
// driver instance at a time.
package owner

import (
	"sync"

	"clocktree-go/errcode"
)

var ErrOwned = errcode.ResourceOwned

type Registry struct {
	mu   sync.Mutex
	held map[string]string
}

func New() *Registry { return &Registry{held: map[string]string{}} }

// Default is the process-wide registry.
var Default = New()

// Claim gives resource to holder. Re-claiming by the same holder succeeds.
func (r *Registry) Claim(resource, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.held[resource]; ok && h != holder {
		return &errcode.E{C: ErrOwned, Op: "claim", Msg: resource + " held by " + h}
	}
	r.held[resource] = holder
	return nil
}

// Release drops holder's claim; it reports false if holder did not own it.
func (r *Registry) Release(resource, holder string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[resource] != holder {
		return false
	}
	delete(r.held, resource)
	return true
}

func (r *Registry) Owner(resource string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.held[resource]
	return h, ok
}
