// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package ctxsignal provides a minimal AbortController/AbortSignal pair,
// following the shape of the DOM AbortController/AbortSignal specification,
// for interop between ctxtree's Context tree and APIs that expect a platform
// abort signal rather than a context.Context.
//
// Unlike a goroutine-safe implementation, Controller and Signal assume the
// single-threaded, run-to-completion scheduling model described in the
// ctxtree package: all calls against one Controller/Signal pair happen on
// the same logical thread as the Context tree that owns them.
package ctxsignal

// Controller creates and owns a Signal, and is the only way to abort it.
type Controller struct {
	signal *Signal
}

// NewController returns a fresh Controller whose Signal starts unaborted.
func NewController() *Controller {
	return &Controller{signal: &Signal{}}
}

// Signal returns the controller's signal. Repeated calls return the same
// Signal.
func (c *Controller) Signal() *Signal {
	return c.signal
}

// Abort aborts the controller's signal with reason, invoking any listeners
// registered via Signal.OnAbort. Abort is idempotent: only the first call
// has any effect, matching the cancellation tree's own idempotent cancel.
func (c *Controller) Abort(reason error) {
	c.signal.abort(reason)
}

// Signal mirrors the DOM AbortSignal: a one-shot, observable abort state.
type Signal struct {
	err       error
	listeners []func(error)
}

// Aborted reports whether the signal has been aborted.
func (s *Signal) Aborted() bool {
	return s.err != nil
}

// Err returns the abort reason, or nil if the signal has not been aborted.
func (s *Signal) Err() error {
	return s.err
}

// OnAbort registers a listener invoked at most once, when the signal
// aborts. If the signal is already aborted, listener runs synchronously
// before OnAbort returns, and the returned Disposable is a no-op. Otherwise
// the returned Disposable removes the listener if called before abort.
func (s *Signal) OnAbort(listener func(error)) Disposable {
	if s.err != nil {
		listener(s.err)
		return noopDisposable{}
	}
	idx := len(s.listeners)
	s.listeners = append(s.listeners, listener)
	return disposeFunc(func() {
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	})
}

func (s *Signal) abort(reason error) {
	if s.err != nil {
		return
	}
	if reason == nil {
		reason = errAborted
	}
	s.err = reason
	listeners := s.listeners
	s.listeners = nil
	for _, l := range listeners {
		if l != nil {
			l(reason)
		}
	}
}

// Disposable has an idempotent release operation.
type Disposable interface {
	Dispose()
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

type noopDisposable struct{}

func (noopDisposable) Dispose() {}

var errAborted = abortedError{}

type abortedError struct{}

func (abortedError) Error() string { return "signal aborted" }
