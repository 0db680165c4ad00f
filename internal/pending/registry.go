package pending

import (
	"sync"
	"time"
)

// CancelFunc cancels a scheduled expiry. Cancelling an expiry that already
// fired or was already cancelled is a no-op.
type CancelFunc func()

// ScheduleFunc schedules fn to run after d and returns a cancel handle.
// Production code uses the time package; tests inject a manual scheduler.
type ScheduleFunc func(d time.Duration, fn func()) CancelFunc

func afterFunc(d time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

type session struct {
	transaction Transaction
	cancel      CancelFunc
}

// Registry holds at most one pending session per sender. Arming a session
// always cancels the previous timer for that sender before installing the
// new one, so a stale timer can never fire against a newer session.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	schedule ScheduleFunc
	sessions map[string]*session
}

// NewRegistry returns a registry whose sessions expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return NewRegistryWithScheduler(ttl, afterFunc)
}

// NewRegistryWithScheduler returns a registry with a custom expiry
// scheduler. Used by tests to control time.
func NewRegistryWithScheduler(ttl time.Duration, schedule ScheduleFunc) *Registry {
	return &Registry{
		ttl:      ttl,
		schedule: schedule,
		sessions: make(map[string]*session),
	}
}

// Arm installs a pending transaction for the sender, replacing any existing
// session (last extraction wins). When the TTL elapses without the session
// being resolved, the session is removed and onExpire is called.
func (r *Registry) Arm(sender string, transaction Transaction, onExpire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(sender)

	s := &session{transaction: transaction}
	r.sessions[sender] = s
	s.cancel = r.schedule(r.ttl, func() {
		r.expire(sender, s, onExpire)
	})
}

// Get returns the pending transaction for the sender, if any.
func (r *Registry) Get(sender string) (Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sender]
	if !ok {
		return Transaction{}, false
	}
	return s.transaction, true
}

// Update replaces the pending transaction for the sender, keeping the
// running expiry timer: editing does not extend the session's lifetime.
func (r *Registry) Update(sender string, transaction Transaction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sender]
	if !ok {
		return false
	}
	s.transaction = transaction
	return true
}

// Resolve removes the sender's session and cancels its timer, returning the
// pending transaction it held. Used on both confirm and discard.
func (r *Registry) Resolve(sender string) (Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sender]
	if !ok {
		return Transaction{}, false
	}

	r.removeLocked(sender)
	return s.transaction, true
}

// expire is the timer callback. The session identity check makes a timer
// that lost the race against Arm or Resolve a no-op.
func (r *Registry) expire(sender string, s *session, onExpire func()) {
	r.mu.Lock()
	current, ok := r.sessions[sender]
	if !ok || current != s {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, sender)
	r.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

func (r *Registry) removeLocked(sender string) {
	if s, ok := r.sessions[sender]; ok {
		s.cancel()
		delete(r.sessions, sender)
	}
}
