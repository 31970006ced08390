// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package netmon tracks remote reachability for the offline-first client.
// It probes the remote health endpoint on an interval, fans status
// transitions out to subscribers, and periodically reports the number of
// mutations still waiting in the sync queue.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
)

// Pinger checks remote reachability. Satisfied by the remote store
// adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PendingCounter reports the number of unsynced queue entries. Satisfied
// by the local store.
type PendingCounter interface {
	PendingSyncCount(ctx context.Context) (int, error)
}

// Monitor is the network-status monitor. Construct with NewMonitor, wire
// callbacks, then start the probe and poll loops with Run.
type Monitor struct {
	pinger  Pinger
	pending PendingCounter

	probeInterval time.Duration
	pollInterval  time.Duration

	logger *logger.Logger

	mu          sync.Mutex
	online      bool
	nextID      int64
	statusSubs  map[int64]func(bool)
	pendingSubs map[int64]func(int)
	onOnline    func(context.Context)
}

func NewMonitor(pinger Pinger, pending PendingCounter, cfg config.Sync, log *logger.Logger) *Monitor {
	return &Monitor{
		pinger:        pinger,
		pending:       pending,
		probeInterval: cfg.ProbeInterval,
		pollInterval:  cfg.PendingPollInterval,
		logger:        log,
		statusSubs:    make(map[int64]func(bool)),
		pendingSubs:   make(map[int64]func(int)),
	}
}

// IsOnline reports the last observed reachability. The client starts
// offline until the first probe succeeds, so early writes are queued
// rather than lost.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline overrides the observed status, firing the same transition
// handling as a probe. Used when a request-level failure proves the remote
// unreachable before the next probe tick.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	var subs []func(bool)
	var onOnline func(context.Context)
	if changed {
		for _, fn := range m.statusSubs {
			subs = append(subs, fn)
		}
		if online {
			onOnline = m.onOnline
		}
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().
		Str("func", "Monitor.SetOnline").
		Bool("online", online).
		Msg("network status changed")

	for _, fn := range subs {
		fn(online)
	}
	if onOnline != nil {
		go onOnline(ctx)
	}
}

// SetOnOnline registers the hook fired once per offline-to-online
// transition. The sync layer uses it to drain the queue and schedule an
// auto-sync.
func (m *Monitor) SetOnOnline(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = fn
}

// OnStatusChange subscribes to reachability transitions. The handler is
// invoked immediately with the current status, then on every change. The
// returned closure removes the subscription.
func (m *Monitor) OnStatusChange(fn func(bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.statusSubs[id] = fn
	current := m.online
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.statusSubs, id)
	}
}

// OnPendingCount subscribes to periodic pending-queue counts. The returned
// closure removes the subscription.
func (m *Monitor) OnPendingCount(fn func(int)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.pendingSubs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.pendingSubs, id)
	}
}

// Run starts the probe and pending-poll loops. It implements
// workers.Worker: the loops run in their own goroutines until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) {
	go m.probeLoop(ctx)
	go m.pollLoop(ctx)
}

func (m *Monitor) probeLoop(ctx context.Context) {
	m.probe(ctx)

	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeInterval)
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	if err != nil && ctx.Err() != nil {
		return
	}
	m.SetOnline(ctx, err == nil)
}

func (m *Monitor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.notifyPending(ctx)
		}
	}
}

func (m *Monitor) notifyPending(ctx context.Context) {
	count, err := m.pending.PendingSyncCount(ctx)
	if err != nil {
		m.logger.Err(err).
			Str("func", "Monitor.notifyPending").
			Msg("failed to count pending queue entries")
		return
	}

	m.mu.Lock()
	subs := make([]func(int), 0, len(m.pendingSubs))
	for _, fn := range m.pendingSubs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(count)
	}
}
