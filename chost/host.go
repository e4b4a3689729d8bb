// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package chost provides the Host abstraction that a ctxtree.Context tree
// is built against: current time, one-shot timer scheduling, an optional
// microtask-style dispatcher, abort-controller construction, and an
// uncaught-exception sink.
package chost

import (
	"time"

	"github.com/yourbase/ctxtree/ctxsignal"
)

// Host supplies the primitives a Context tree needs but must not hardcode,
// so that production code runs against a real clock while tests run against
// a fake one (see chosttest.FakeHost).
//
// Host values are expected to be comparable by identity: ctxtree.Background
// memoizes one tree per Host using pointer equality, exactly as spec §9
// describes a weakmap(host → root) implemented with an explicit registry.
type Host interface {
	// Now returns the host's current time. It need not be strictly
	// increasing, but time must not run backward during the life of any
	// one timer (spec §4.1).
	Now() time.Time

	// AfterFunc schedules f to run once, after d has elapsed. Disposing
	// the result before f runs cancels it; disposing after is a no-op.
	AfterFunc(d time.Duration, f func()) Disposable

	// Dispatch schedules f to run after the current synchronous frame.
	// It exists for interface completeness with spec §4.1's optional
	// schedule_microtask; ctxtree's chosen sync-notify design (see
	// SPEC_FULL.md) never calls it.
	Dispatch(f func()) Disposable

	// NewAbortController returns a fresh, unaborted controller.
	NewAbortController() *ctxsignal.Controller

	// OnUncaughtException is called with an error collected by Cancel's
	// drain loop when no other sink claims it (spec §4.4 step 4, §7).
	OnUncaughtException(err error)
}

// DefaultTimeoutProvider is an optional capability a Host may implement to
// report a configured default timeout (see Config.DefaultTimeout). Root
// checks for it via a type assertion and applies the duration to the root
// context it returns when present and positive; a Host that doesn't
// implement it gets an undeadlined root, same as WithCancel.
type DefaultTimeoutProvider interface {
	DefaultTimeout() time.Duration
}

// Disposable has an idempotent release operation.
type Disposable interface {
	Dispose()
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

type noopDisposable struct{}

func (noopDisposable) Dispose() {}
