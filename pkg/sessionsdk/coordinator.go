package sessionsdk

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultSafetyMargin is how long before the access credential's expiry a
	// proactive renewal kicks in.
	DefaultSafetyMargin = 30 * time.Second

	// DefaultRenewTimeout bounds a detached renewal round-trip.
	DefaultRenewTimeout = 10 * time.Second
)

// Coordinator serializes session renewals so that any number of concurrent
// requests produce at most one renewal round-trip. Callers that arrive while
// a renewal is in flight wait for its outcome instead of starting their own.
//
// It never sees token values; the renewal round-trip moves credentials purely
// through Set-Cookie headers handled by the owning Client's cookie jar.
type Coordinator struct {
	// OnSessionExpired, when set, is invoked exactly once when the session is
	// declared dead (renewal rejected, or a renewed credential still refused).
	// It stays quiet until the next MarkRenewed. Set it before first use.
	OnSessionExpired func()

	renew          func(ctx context.Context) error
	accessLifetime time.Duration
	safetyMargin   time.Duration
	renewTimeout   time.Duration

	mu          sync.Mutex
	lastRenewal time.Time // zero means no session is known
	expired     bool
	inflight    *renewalCall
}

// renewalCall is one in-flight renewal. Waiters block on done; err is only
// read after done closes.
type renewalCall struct {
	done chan struct{}
	err  error
}

// NewCoordinator builds a coordinator around a renewal round-trip. The
// accessLifetime should match the gateway's access cookie TTL; proactive
// renewal fires once the credential is within DefaultSafetyMargin of expiry.
func NewCoordinator(renew func(ctx context.Context) error, accessLifetime time.Duration) *Coordinator {
	margin := DefaultSafetyMargin
	if margin >= accessLifetime {
		// Short-lived credentials still get a proactive window.
		margin = accessLifetime / 2
	}

	return &Coordinator{
		renew:          renew,
		accessLifetime: accessLifetime,
		safetyMargin:   margin,
		renewTimeout:   DefaultRenewTimeout,
	}
}

// MarkRenewed records that the session's credentials were just refreshed
// outside the coordinator, typically by a successful login.
func (c *Coordinator) MarkRenewed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRenewal = time.Now()
	c.expired = false
}

// Reset forgets the session entirely. Called on logout, it takes effect
// before the caller proceeds, so no later request renews a dead session.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRenewal = time.Time{}
	c.expired = false
}

// Stamp returns the renewal state observed right now. Hand it back to
// RenewIfStale so renewals that already happened in between are not repeated.
func (c *Coordinator) Stamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRenewal
}

// NeedsRenewal reports whether the credential behind the observed stamp is
// inside the proactive renewal window. A zero stamp means no session is
// known, so there is nothing to proactively renew.
func (c *Coordinator) NeedsRenewal(observed time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expired || observed.IsZero() {
		return false
	}
	return time.Since(observed) >= c.accessLifetime-c.safetyMargin
}

// RenewIfStale performs a single-flight renewal on behalf of a caller that
// observed the given stamp. If another caller already completed a renewal
// since that observation, it returns immediately with that outcome; if one
// is in flight, it waits for it; otherwise it becomes the initiator.
//
// After the session has been declared expired, it fails fast with
// ErrSessionExpired instead of hammering the gateway. When no session is
// known at all it returns ErrNoSession without a round-trip.
func (c *Coordinator) RenewIfStale(ctx context.Context, observed time.Time) error {
	c.mu.Lock()

	if c.expired {
		c.mu.Unlock()
		return ErrSessionExpired
	}

	// No session was ever established, or it was logged out. An anonymous
	// caller's 401 is an answer, not a renewal trigger.
	if observed.IsZero() && c.lastRenewal.IsZero() {
		c.mu.Unlock()
		return ErrNoSession
	}

	// Someone renewed after the caller's observation; its outcome applies.
	if !c.lastRenewal.Equal(observed) {
		c.mu.Unlock()
		return nil
	}

	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &renewalCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	// Detach from the initiating request's context: its cancellation must not
	// strand the callers waiting on this renewal. The timeout guarantees the
	// inflight guard always clears.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.renewTimeout)
	defer cancel()

	call.err = c.renew(rctx)

	c.mu.Lock()
	if call.err == nil {
		c.lastRenewal = time.Now()
	}
	c.inflight = nil
	c.mu.Unlock()

	close(call.done)
	return call.err
}

// Expire declares the session dead and fires OnSessionExpired at most once.
// Subsequent 401s renew nothing and fire nothing until the next MarkRenewed.
func (c *Coordinator) Expire() {
	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return
	}
	c.expired = true
	c.lastRenewal = time.Time{}
	handler := c.OnSessionExpired
	c.mu.Unlock()

	if handler != nil {
		handler()
	}
}

// Expired reports whether the session has been declared dead.
func (c *Coordinator) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}
