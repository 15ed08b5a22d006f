package session

import (
	"sync"
	"time"
)

// Registry holds the live session controllers, keyed by form and
// respondent. Joining is idempotent: concurrent joins for the same pair
// observe a single controller. Submitted sessions are evicted after the
// retention window by a background janitor.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Controller
	retention time.Duration
	onEvict   func(*Controller)
}

// NewRegistry creates a Registry and starts its cleanup loop.
func NewRegistry(retention time.Duration) *Registry {
	r := &Registry{
		sessions:  make(map[string]*Controller),
		retention: retention,
	}

	go func() {
		for range time.Tick(time.Minute) {
			r.cleanup()
		}
	}()

	return r
}

func sessionKey(formName, email string) string {
	return formName + "|" + email
}

// SetEvictionHook registers a callback invoked for every session the
// janitor evicts, so owners of per-session resources outside the
// registry can release them. Must be set before sessions are created.
func (r *Registry) SetEvictionHook(fn func(*Controller)) {
	r.mu.Lock()
	r.onEvict = fn
	r.mu.Unlock()
}

// GetOrCreate returns the controller for the form/respondent pair,
// building a new one via build when none exists. The second return value
// reports whether the controller was created by this call.
func (r *Registry) GetOrCreate(formName, email string, build func() *Controller) (*Controller, bool) {
	key := sessionKey(formName, email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ctrl, ok := r.sessions[key]; ok {
		return ctrl, false
	}
	ctrl := build()
	r.sessions[key] = ctrl
	return ctrl, true
}

// Get returns the controller for the pair and whether one exists.
func (r *Registry) Get(formName, email string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctrl, ok := r.sessions[sessionKey(formName, email)]
	return ctrl, ok
}

// Remove drops a controller, typically after a fatal load error so the
// next join starts clean.
func (r *Registry) Remove(formName, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey(formName, email))
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) cleanup() {
	r.mu.Lock()
	var evicted []*Controller
	for key, ctrl := range r.sessions {
		if at, ok := ctrl.SubmittedAt(); ok && time.Since(at) > r.retention {
			delete(r.sessions, key)
			evicted = append(evicted, ctrl)
		}
	}
	onEvict := r.onEvict
	r.mu.Unlock()

	if onEvict == nil {
		return
	}
	for _, ctrl := range evicted {
		onEvict(ctrl)
	}
}
