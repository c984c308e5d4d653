// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakeBackgroundLoop stands in for one of updater.go's three suture.Service
// loops (IncrementalRefreshService, FullRebuildService,
// TrendingRecomputeService) in tests that exercise the tree's restart and
// failure-propagation behavior without spinning up a real Vector Store.
type fakeBackgroundLoop struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
	err        error
	mu         sync.Mutex
}

// newFakeBackgroundLoop builds a fake named the way a real loop would be
// (e.g. "incremental-refresh").
func newFakeBackgroundLoop(name string) *fakeBackgroundLoop {
	return &fakeBackgroundLoop{name: name}
}

// Serve implements suture.Service: Serve(ctx context.Context) error.
func (m *fakeBackgroundLoop) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	m.mu.Lock()
	err := m.err
	maxFails := m.maxFails
	m.mu.Unlock()

	if maxFails > 0 {
		current := m.failCount.Add(1)
		if current <= maxFails {
			return errors.New("simulated failure")
		}
	}

	if err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// setError makes every future tick return err immediately, as if a
// recompute call kept failing.
func (m *fakeBackgroundLoop) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// setFailCount makes the next n ticks fail before the loop settles.
func (m *fakeBackgroundLoop) setFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFails = int32(n)
}

func (m *fakeBackgroundLoop) startedTimes() int32 { return m.startCount.Load() }
func (m *fakeBackgroundLoop) stoppedTimes() int32 { return m.stopCount.Load() }

// String implements fmt.Stringer; suture uses it to label services in logs.
func (m *fakeBackgroundLoop) String() string { return m.name }
