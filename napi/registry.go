package napi

import (
	"sort"
	"sync"
)

type registration struct {
	fn   Callback
	name string
}

// registry maps the keys handed to the host as callback data to the
// registered callbacks. Keys start at 1 and are never reused; 0 is never a
// valid key, so an unset data slot cannot dispatch anything.
type registry struct {
	entries []registration
	mu      sync.RWMutex
}

func (r *registry) add(name string, fn Callback) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, registration{name: name, fn: fn})
	return uint32(len(r.entries))
}

func (r *registry) lookup(key uint32) (registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key == 0 || int(key) > len(r.entries) {
		return registration{}, false
	}
	return r.entries[key-1], true
}

// names returns the sorted, de-duplicated registration names.
func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.entries))
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if _, ok := seen[e.name]; ok {
			continue
		}
		seen[e.name] = struct{}{}
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
