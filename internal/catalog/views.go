package catalog

import (
	"sync"
	"time"
)

// Views keeps one shop view per session.
type Views struct {
	src    Source
	labels Labels
	ttl    time.Duration

	mu    sync.Mutex
	views map[string]*View
}

func NewViews(src Source, labels Labels, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Views{src: src, labels: labels, ttl: ttl, views: map[string]*View{}}
}

// Open starts a fresh view for key, closing the one it replaces.
func (vs *Views) Open(key string) *View {
	v := NewView(vs.src, vs.labels)
	vs.mu.Lock()
	old := vs.views[key]
	vs.views[key] = v
	vs.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return v
}

func (vs *Views) Get(key string) (*View, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.views[key]
	return v, ok
}

func (vs *Views) Close(key string) {
	vs.mu.Lock()
	v := vs.views[key]
	delete(vs.views, key)
	vs.mu.Unlock()
	if v != nil {
		v.Close()
	}
}

func (vs *Views) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.views)
}

// Sweep closes views idle for longer than the ttl and returns how many it closed.
func (vs *Views) Sweep(now time.Time) int {
	vs.mu.Lock()
	var stale []*View
	for k, v := range vs.views {
		if now.Sub(v.idleSince()) > vs.ttl {
			stale = append(stale, v)
			delete(vs.views, k)
		}
	}
	vs.mu.Unlock()
	for _, v := range stale {
		v.Close()
	}
	return len(stale)
}
