// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package chosttest provides a deterministic chost.Host for tests, built on
// code.cloudfoundry.org/clock's FakeClock: timers fire synchronously when
// Advance moves the clock past their deadline, with no real sleeping and no
// goroutine-scheduling nondeterminism.
package chosttest

import (
	"sort"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/yourbase/ctxtree/chost"
	"github.com/yourbase/ctxtree/ctxsignal"
)

// FakeHost is a chost.Host whose clock only advances when Advance is
// called, and whose timers fire synchronously (not on a goroutine) as part
// of that call. This is the Go-native equivalent of the spec's
// host.advance(Δ, suppress_timers) test operation: Advance always "suppresses"
// real timer nondeterminism, since there is no goroutine involved at all.
type FakeHost struct {
	mu     sync.Mutex
	clock  clock.FakeClock
	timers []*fakeTimer

	// defaultTimeout, if positive, is reported by DefaultTimeout and
	// applied by ctxtree.Root, mirroring chost.Config.DefaultTimeout
	// without requiring a test to build a DefaultHost. Set it with
	// SetDefaultTimeout.
	defaultTimeout time.Duration

	// UncaughtExceptions records every error passed to OnUncaughtException,
	// in order, for assertions like spec scenario S4.
	UncaughtExceptions []error
}

// NewFakeHost returns a FakeHost whose clock starts at now.
func NewFakeHost(now time.Time) *FakeHost {
	return &FakeHost{clock: clock.NewFakeClock(now)}
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (h *FakeHost) Now() time.Time { return h.clock.Now() }

func (h *FakeHost) AfterFunc(d time.Duration, f func()) chost.Disposable {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := &fakeTimer{at: h.clock.Now().Add(d), f: f}
	h.timers = append(h.timers, t)
	return disposeFunc(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		t.stopped = true
	})
}

// Dispatch runs f immediately, before returning, rather than after the
// current synchronous frame; the returned Disposable is a no-op.
func (h *FakeHost) Dispatch(f func()) chost.Disposable {
	f()
	return disposeFunc(func() {})
}

func (h *FakeHost) NewAbortController() *ctxsignal.Controller {
	return ctxsignal.NewController()
}

// SetDefaultTimeout sets the duration DefaultTimeout reports, for tests that
// exercise ctxtree.Root's default-timeout wiring without a DefaultHost.
func (h *FakeHost) SetDefaultTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultTimeout = d
}

// DefaultTimeout satisfies chost.DefaultTimeoutProvider.
func (h *FakeHost) DefaultTimeout() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.defaultTimeout
}

func (h *FakeHost) OnUncaughtException(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.UncaughtExceptions = append(h.UncaughtExceptions, err)
}

// Advance moves the fake clock forward by d and synchronously fires, in
// deadline order, every outstanding timer whose deadline is now due.
func (h *FakeHost) Advance(d time.Duration) {
	h.clock.Increment(d)
	h.fireDue()
}

// AdvanceWithoutFiring moves the fake clock forward by d without firing any
// due timers, for exercising ctxtree's lazy deadline re-check on Err() (spec
// §4.6, §8 P4/S2) independent of whether any timer ever runs.
func (h *FakeHost) AdvanceWithoutFiring(d time.Duration) {
	h.clock.Increment(d)
}

func (h *FakeHost) fireDue() {
	for {
		due := h.dueTimer()
		if due == nil {
			return
		}
		due.f()
	}
}

func (h *FakeHost) dueTimer() *fakeTimer {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.clock.Now()
	var candidates []*fakeTimer
	for _, t := range h.timers {
		if !t.stopped && !t.at.After(now) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].at.Before(candidates[j].at) })
	winner := candidates[0]
	winner.stopped = true // mark fired so fireDue's loop terminates
	return winner
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

var _ chost.Host = (*FakeHost)(nil)
