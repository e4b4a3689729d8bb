// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package chost

import (
	"log"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/yourbase/ctxtree/ctxsignal"
)

// DefaultHost is the production Host: real wall-clock time and timers via
// code.cloudfoundry.org/clock, goroutine-based dispatch for the optional
// microtask hook, and a pluggable uncaught-exception sink, all tunable
// through a Config (see Load).
type DefaultHost struct {
	clock          clock.Clock
	sink           func(error)
	defaultTimeout time.Duration
}

// Options configures a DefaultHost. The zero value is valid: a real clock
// and a sink that logs via the standard library's log package.
type Options struct {
	// Clock overrides the clock used for Now/AfterFunc. Nil means
	// clock.NewClock().
	Clock clock.Clock

	// OnUncaughtException overrides the sink Config.StrictUncaught would
	// otherwise fall back to. Nil means log.Printf("ctxtree: uncaught
	// exception from context listener: %v", err).
	OnUncaughtException func(error)
}

// NewDefaultHost builds a DefaultHost from cfg and opts: cfg.DefaultTimeout
// becomes the duration Root applies to contexts built from this host, and
// cfg.StrictUncaught selects a sink that panics on an uncaught listener
// exception instead of logging it (see Config.StrictSink).
func NewDefaultHost(cfg Config, opts Options) *DefaultHost {
	fallback := opts.OnUncaughtException
	if fallback == nil {
		fallback = defaultSink
	}
	h := &DefaultHost{
		clock:          opts.Clock,
		sink:           cfg.StrictSink(fallback),
		defaultTimeout: cfg.DefaultTimeout,
	}
	if h.clock == nil {
		h.clock = clock.NewClock()
	}
	return h
}

func defaultSink(err error) {
	log.Printf("ctxtree: uncaught exception from context listener: %v", err)
}

// DefaultTimeout reports the duration Root should apply to contexts derived
// from this host, per Config.DefaultTimeout. It satisfies
// DefaultTimeoutProvider.
func (h *DefaultHost) DefaultTimeout() time.Duration { return h.defaultTimeout }

func (h *DefaultHost) Now() time.Time { return h.clock.Now() }

func (h *DefaultHost) AfterFunc(d time.Duration, f func()) Disposable {
	timer := h.clock.NewTimer(d)
	stopped := make(chan struct{})
	go func() {
		select {
		case _, ok := <-timer.C():
			if ok {
				f()
			}
		case <-stopped:
		}
	}()
	var disposed bool
	return disposeFunc(func() {
		if disposed {
			return
		}
		disposed = true
		timer.Stop()
		close(stopped)
	})
}

func (h *DefaultHost) Dispatch(f func()) Disposable {
	cancelled := make(chan struct{})
	go func() {
		select {
		case <-cancelled:
		default:
			f()
		}
	}()
	var disposed bool
	return disposeFunc(func() {
		if disposed {
			return
		}
		disposed = true
		close(cancelled)
	})
}

func (h *DefaultHost) NewAbortController() *ctxsignal.Controller {
	return ctxsignal.NewController()
}

func (h *DefaultHost) OnUncaughtException(err error) {
	h.sink(err)
}

var _ Host = (*DefaultHost)(nil)
