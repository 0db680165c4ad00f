package pending_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ledgerbot/backend/internal/pending"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// manualScheduler collects scheduled expiries so tests can fire them
// deterministically instead of waiting for real timers.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn        func()
	cancelled bool
}

func (s *manualScheduler) schedule(_ time.Duration, fn func()) pending.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := &manualTimer{fn: fn}
	s.timers = append(s.timers, timer)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		timer.cancelled = true
	}
}

// fire runs timer i's callback regardless of cancellation, mimicking a
// timer that was already in flight. The registry must tolerate this.
func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	fn := s.timers[i].fn
	s.mu.Unlock()
	fn()
}

func (s *manualScheduler) cancelled(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i].cancelled
}

func newTestRegistry() (*pending.Registry, *manualScheduler) {
	scheduler := &manualScheduler{}
	return pending.NewRegistryWithScheduler(5*time.Minute, scheduler.schedule), scheduler
}

func TestRegistryArmAndGet(t *testing.T) {
	registry, _ := newTestRegistry()

	_, ok := registry.Get("+2348000000001")
	assert.False(t, ok)

	registry.Arm("+2348000000001", testTransaction(), nil)

	got, ok := registry.Get("+2348000000001")
	assert.True(t, ok)
	assert.Equal(t, "food", got.Category)

	// Sessions are per sender
	_, ok = registry.Get("+2348000000002")
	assert.False(t, ok)
}

func TestRegistryResolveRemovesSession(t *testing.T) {
	registry, scheduler := newTestRegistry()
	registry.Arm("sender", testTransaction(), nil)

	resolved, ok := registry.Resolve("sender")
	assert.True(t, ok)
	assert.Equal(t, "expense", resolved.Type)
	assert.True(t, scheduler.cancelled(0))

	_, ok = registry.Get("sender")
	assert.False(t, ok)

	_, ok = registry.Resolve("sender")
	assert.False(t, ok)
}

func TestRegistryExpiry(t *testing.T) {
	registry, scheduler := newTestRegistry()

	expired := false
	registry.Arm("sender", testTransaction(), func() { expired = true })

	scheduler.fire(0)

	assert.True(t, expired)
	_, ok := registry.Get("sender")
	assert.False(t, ok)
}

func TestRegistryArmReplacesSession(t *testing.T) {
	registry, scheduler := newTestRegistry()

	firstExpired := false
	registry.Arm("sender", testTransaction(), func() { firstExpired = true })

	second := testTransaction()
	second.Merchant = "Spar"
	registry.Arm("sender", second, nil)

	assert.True(t, scheduler.cancelled(0))

	// Even if the first timer was already in flight when it was cancelled,
	// it must not touch the replacement session.
	scheduler.fire(0)
	assert.False(t, firstExpired)

	got, ok := registry.Get("sender")
	assert.True(t, ok)
	assert.Equal(t, "Spar", got.Merchant)
}

func TestRegistryUpdateKeepsTimer(t *testing.T) {
	registry, scheduler := newTestRegistry()
	registry.Arm("sender", testTransaction(), nil)

	updated := testTransaction()
	updated.Amount = decimal.NewFromInt(6000)
	assert.True(t, registry.Update("sender", updated))

	// No new timer was scheduled and the original one still stands.
	assert.Len(t, scheduler.timers, 1)
	assert.False(t, scheduler.cancelled(0))

	got, _ := registry.Get("sender")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(6000)))

	assert.False(t, registry.Update("nobody", updated))
}

func TestRegistryExpiryAfterResolveIsNoop(t *testing.T) {
	registry, scheduler := newTestRegistry()

	expired := false
	registry.Arm("sender", testTransaction(), func() { expired = true })

	_, ok := registry.Resolve("sender")
	assert.True(t, ok)

	scheduler.fire(0)
	assert.False(t, expired)
}
