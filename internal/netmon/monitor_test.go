package netmon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
)

type stubPinger struct {
	mu  sync.Mutex
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *stubPinger) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type stubCounter struct{ count int }

func (s *stubCounter) PendingSyncCount(ctx context.Context) (int, error) {
	return s.count, nil
}

func newTestMonitor(pinger Pinger, counter PendingCounter) *Monitor {
	cfg := config.Sync{ProbeInterval: 10 * time.Millisecond, PendingPollInterval: 10 * time.Millisecond}
	return NewMonitor(pinger, counter, cfg, logger.Nop())
}

// TestMonitor_StartsOffline verifies the conservative initial state.
func TestMonitor_StartsOffline(t *testing.T) {
	m := newTestMonitor(&stubPinger{}, &stubCounter{})
	assert.False(t, m.IsOnline())
}

// TestSetOnline_TransitionNotifiesSubscribers verifies fan-out on change
// and silence when the status does not change.
func TestSetOnline_TransitionNotifiesSubscribers(t *testing.T) {
	m := newTestMonitor(&stubPinger{}, &stubCounter{})

	var seen []bool
	unsubscribe := m.OnStatusChange(func(online bool) { seen = append(seen, online) })

	// immediate replay of the current state
	require.Equal(t, []bool{false}, seen)

	ctx := context.Background()
	m.SetOnline(ctx, true)
	m.SetOnline(ctx, true) // no transition, no notification
	m.SetOnline(ctx, false)

	assert.Equal(t, []bool{false, true, false}, seen)

	unsubscribe()
	m.SetOnline(ctx, true)
	assert.Equal(t, []bool{false, true, false}, seen)
}

// TestSetOnline_FiresOnOnlineHookOncePerTransition verifies the drain hook
// fires only on offline-to-online edges.
func TestSetOnline_FiresOnOnlineHookOncePerTransition(t *testing.T) {
	m := newTestMonitor(&stubPinger{}, &stubCounter{})

	fired := make(chan struct{}, 4)
	m.SetOnOnline(func(ctx context.Context) { fired <- struct{}{} })

	ctx := context.Background()
	m.SetOnline(ctx, true)
	m.SetOnline(ctx, true)
	m.SetOnline(ctx, false)
	m.SetOnline(ctx, true)

	deadline := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-deadline:
			t.Fatal("timed out waiting for on-online hook")
		}
	}

	select {
	case <-fired:
		t.Fatal("hook fired more than once per transition")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestRun_ProbeDrivesStatus verifies the probe loop flips the status as
// the remote comes and goes.
func TestRun_ProbeDrivesStatus(t *testing.T) {
	pinger := &stubPinger{err: errors.New("unreachable")}
	m := newTestMonitor(pinger, &stubCounter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Run(ctx)

	assert.Never(t, m.IsOnline, 50*time.Millisecond, 10*time.Millisecond)

	pinger.setErr(nil)
	assert.Eventually(t, m.IsOnline, 2*time.Second, 10*time.Millisecond)

	pinger.setErr(errors.New("unreachable again"))
	assert.Eventually(t, func() bool { return !m.IsOnline() }, 2*time.Second, 10*time.Millisecond)
}

// TestRun_PendingPollNotifies verifies the periodic pending-count fan-out.
func TestRun_PendingPollNotifies(t *testing.T) {
	m := newTestMonitor(&stubPinger{}, &stubCounter{count: 3})

	counts := make(chan int, 1)
	unsubscribe := m.OnPendingCount(func(count int) {
		select {
		case counts <- count:
		default:
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Run(ctx)

	select {
	case count := <-counts:
		assert.Equal(t, 3, count)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pending count")
	}
}
