package sessionsdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCoordinatorSingleFlight(t *testing.T) {
	t.Parallel()

	var renewals atomic.Int32
	release := make(chan struct{})

	coord := NewCoordinator(func(ctx context.Context) error {
		renewals.Add(1)
		<-release
		return nil
	}, time.Minute)
	coord.MarkRenewed()
	stamp := coord.Stamp()

	const waiters = 20
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = coord.RenewIfStale(context.Background(), stamp)
		}()
	}

	// Give every goroutine a chance to either initiate or queue up.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), renewals.Load(), "concurrent callers must share one renewal")
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestCoordinatorStaleStampCoalesces(t *testing.T) {
	t.Parallel()

	var renewals atomic.Int32
	coord := NewCoordinator(func(ctx context.Context) error {
		renewals.Add(1)
		return nil
	}, time.Minute)
	coord.MarkRenewed()

	old := coord.Stamp()
	require.NoError(t, coord.RenewIfStale(context.Background(), old))
	require.Equal(t, int32(1), renewals.Load())

	// The stamp moved; a caller still holding the old one joins the outcome
	// instead of renewing again.
	require.NoError(t, coord.RenewIfStale(context.Background(), old))
	require.Equal(t, int32(1), renewals.Load())
}

func TestCoordinatorNoSessionNeverRenews(t *testing.T) {
	t.Parallel()

	var renewals atomic.Int32
	coord := NewCoordinator(func(ctx context.Context) error {
		renewals.Add(1)
		return nil
	}, time.Minute)

	// No MarkRenewed yet: a zero observed stamp means no session exists, so
	// there is nothing to renew and no initiator to become.
	err := coord.RenewIfStale(context.Background(), time.Time{})
	require.ErrorIs(t, err, ErrNoSession)
	require.Zero(t, renewals.Load())
	require.False(t, coord.Expired())

	// Same after a logout wipes the session.
	coord.MarkRenewed()
	coord.Reset()
	err = coord.RenewIfStale(context.Background(), coord.Stamp())
	require.ErrorIs(t, err, ErrNoSession)
	require.Zero(t, renewals.Load())
}

func TestCoordinatorNeedsRenewal(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(func(ctx context.Context) error { return nil }, time.Minute)

	t.Run("no known session needs nothing", func(t *testing.T) {
		require.False(t, coord.NeedsRenewal(time.Time{}))
	})

	t.Run("fresh credential needs nothing", func(t *testing.T) {
		require.False(t, coord.NeedsRenewal(time.Now()))
	})

	t.Run("credential inside the safety margin needs renewal", func(t *testing.T) {
		observed := time.Now().Add(-time.Minute + DefaultSafetyMargin - time.Second)
		require.True(t, coord.NeedsRenewal(observed))
	})
}

func TestCoordinatorShortLifetimeMargin(t *testing.T) {
	t.Parallel()

	// A lifetime shorter than the default margin still leaves a usable window.
	coord := NewCoordinator(func(ctx context.Context) error { return nil }, 10*time.Second)
	require.False(t, coord.NeedsRenewal(time.Now()))
	require.True(t, coord.NeedsRenewal(time.Now().Add(-6*time.Second)))
}

func TestCoordinatorExpiry(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32
	coord := NewCoordinator(func(ctx context.Context) error { return nil }, time.Minute)
	coord.OnSessionExpired = func() { fired.Add(1) }
	coord.MarkRenewed()

	coord.Expire()
	coord.Expire()
	require.Equal(t, int32(1), fired.Load(), "expiry handler must fire at most once")
	require.True(t, coord.Expired())

	// A dead session fails fast instead of renewing.
	err := coord.RenewIfStale(context.Background(), coord.Stamp())
	require.ErrorIs(t, err, ErrSessionExpired)

	// Logging in again re-arms the handler.
	coord.MarkRenewed()
	require.False(t, coord.Expired())
	coord.Expire()
	require.Equal(t, int32(2), fired.Load())
}

func TestCoordinatorWaiterCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	renewErr := make(chan error, 1)

	coord := NewCoordinator(func(ctx context.Context) error {
		<-release
		return nil
	}, time.Minute)
	coord.MarkRenewed()
	stamp := coord.Stamp()

	go func() {
		renewErr <- coord.RenewIfStale(context.Background(), stamp)
	}()

	// Wait for the initiator to take the inflight slot.
	require.Eventually(t, func() bool {
		coord.mu.Lock()
		defer coord.mu.Unlock()
		return coord.inflight != nil
	}, time.Second, 5*time.Millisecond)

	// A waiter with a cancelled context gives up without killing the renewal.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := coord.RenewIfStale(ctx, stamp)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-renewErr)
}

func TestCoordinatorFailedRenewalPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	coord := NewCoordinator(func(ctx context.Context) error { return boom }, time.Minute)
	coord.MarkRenewed()

	stamp := coord.Stamp()
	require.ErrorIs(t, coord.RenewIfStale(context.Background(), stamp), boom)

	// Failure leaves the stamp alone, so a later caller can try again.
	require.Equal(t, stamp, coord.Stamp())
	require.ErrorIs(t, coord.RenewIfStale(context.Background(), stamp), boom)
}

func TestCoordinatorReset(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(func(ctx context.Context) error { return nil }, time.Minute)
	coord.MarkRenewed()
	require.False(t, coord.Stamp().IsZero())

	coord.Reset()
	require.True(t, coord.Stamp().IsZero())
	require.False(t, coord.Expired())
}
