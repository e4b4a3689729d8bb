// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package ctxtree implements a cancellation-and-deadline propagation tree:
// an immutable handle (Context) representing a unit of ongoing work that
// may carry a deadline, a key/value binding, and a link to a parent.
// Cancelling a Context cancels all of its transitive descendants.
//
// Context implements context.Context, so it composes with any existing
// stdlib-context-based code, but it is not built on the stdlib context
// package internally: its scheduling model is the single-threaded,
// run-to-completion one described by its Host (github.com/yourbase/ctxtree/chost),
// not goroutines and channels guarded by a mutex. See SPEC_FULL.md for the
// full design rationale and chosen resolutions to the open questions in
// the upstream design notes.
package ctxtree

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourbase/ctxtree/chost"
	"github.com/yourbase/ctxtree/ctxsignal"
	"github.com/yourbase/ctxtree/reason"
)

// CancelFunc cancels a Context and its descendants. Passing no arguments
// cancels with a bare *reason.Cancelled. Passing a string sets the
// reason's Message. Passing an error wraps it as the reason's Cause.
// Passing anything else panics. Calling a CancelFunc more than once is a
// no-op, matching Context's own idempotent cancel (spec §4.4 step 1, P2).
type CancelFunc func(causeOrMessage ...any)

// Context is a node in a cancellation tree. The zero value is not valid;
// Contexts are only constructed by Background, WithCancel, WithDeadline,
// WithTimeout, and WithValue.
type Context struct {
	host   chost.Host
	parent *Context

	deadline    time.Time
	hasDeadline bool
	timer       chost.Disposable

	key, value any
	hasValue   bool

	reason    error
	listeners []*listener
	parentSub chost.Disposable
	doneCh    chan struct{}

	signal *ctxsignal.Signal
}

// IsContext reports whether x is a *Context produced by this package. A
// concrete exported struct type is itself the brand (spec §9 "Branding":
// "prefer a sealed trait/interface or a shared concrete type... no tag
// needed") — no runtime tag field is required the way the upstream design
// used one.
func IsContext(x any) bool {
	_, ok := x.(*Context)
	return ok
}

type listener struct {
	fn func(error)
	// live is cleared by drain or by Disposable.Dispose, whichever
	// happens first (I4: at-most-once delivery).
	live bool
}

var (
	rootsMu sync.Mutex
	roots   = map[chost.Host]*Context{}
)

// Background returns the singleton root Context associated with host,
// creating it on first call and memoizing it thereafter (spec §4.3, I7):
// the root has no parent, no deadline, and can only be cancelled through a
// derived child, never directly.
func Background(host chost.Host) *Context {
	rootsMu.Lock()
	defer rootsMu.Unlock()
	if root, ok := roots[host]; ok {
		return root
	}
	root := &Context{host: host}
	roots[host] = root
	return root
}

// Root returns a child of Background(host) and its cancel function, ready
// for a caller to start deriving a request/operation tree from. If host
// implements chost.DefaultTimeoutProvider and reports a positive duration
// (see chost.Config.DefaultTimeout, loaded by chost.Load), the child carries
// that duration as its deadline via WithTimeout; otherwise it behaves like
// plain WithCancel.
func Root(host chost.Host) (*Context, CancelFunc) {
	parent := Background(host)
	if dtp, ok := host.(chost.DefaultTimeoutProvider); ok {
		if d := dtp.DefaultTimeout(); d > 0 {
			return WithTimeout(parent, d)
		}
	}
	return WithCancel(parent)
}

func requireContext(parent *Context, fn string) {
	if parent == nil {
		panic(fmt.Sprintf("ctxtree.%s: parent is nil, not a valid Context", fn))
	}
}

// WithCancel returns a child of parent and a function that cancels it (and
// transitively, its descendants).
func WithCancel(parent *Context) (*Context, CancelFunc) {
	requireContext(parent, "WithCancel")
	child := newChild(parent)
	return child, makeCancelFunc(child)
}

// WithDeadline returns a child of parent whose effective deadline is
// min(parent's deadline, at) (spec I2), and a function that cancels it. If
// the effective deadline is strictly sooner than the parent's, a host
// timer is scheduled to cancel the child with *reason.DeadlineExceeded
// when it fires; the timer is disposed as soon as the child cancels for
// any reason.
func WithDeadline(parent *Context, at time.Time) (*Context, CancelFunc) {
	requireContext(parent, "WithDeadline")
	child := newChild(parent)

	effective := at
	if parent.hasDeadline && parent.deadline.Before(at) {
		effective = parent.deadline
	}
	needsTimer := !parent.hasDeadline || effective.Before(parent.deadline)
	child.deadline = effective
	child.hasDeadline = true

	if child.reason == nil && needsTimer {
		d := effective.Sub(child.host.Now())
		if d <= 0 {
			cancel(child, &reason.DeadlineExceeded{})
		} else {
			child.timer = child.host.AfterFunc(d, func() {
				cancel(child, &reason.DeadlineExceeded{})
			})
		}
	}

	return child, makeCancelFunc(child)
}

// WithTimeout is WithDeadline(parent, parent's host's current time + d).
func WithTimeout(parent *Context, d time.Duration) (*Context, CancelFunc) {
	requireContext(parent, "WithTimeout")
	return WithDeadline(parent, parent.host.Now().Add(d))
}

// WithValue returns a child of parent carrying a single additional
// key/value binding. Lookups for any other key delegate to parent (I5);
// HasValue(key) is true for this node regardless of what value is bound,
// including an untyped nil (I6).
func WithValue(parent *Context, key, value any) *Context {
	requireContext(parent, "WithValue")
	child := newChild(parent)
	child.key = key
	child.value = value
	child.hasValue = true
	return child
}

// newChild wires the parent→child and child→parent listener relationship
// described in spec §4.4 "Cancel propagation on construction": a child
// registers a listener on its parent that cancels the child with the
// parent's reason, and the child disposes that registration itself the
// moment it cancels for any reason (§9 "arena + handle": neither side
// strongly owns the other).
func newChild(parent *Context) *Context {
	child := &Context{host: parent.host, parent: parent}
	if r := parent.Err(); r != nil {
		// Already-cancelled parent: spec §4.4 "the child is constructed
		// with a non-empty cancellation_reason carrying the parent's
		// reason reference", no listener registration needed.
		child.reason = r
		return child
	}
	child.parentSub = parent.OnDidCancel(func(r error) {
		cancel(child, r)
	})
	return child
}

func makeCancelFunc(c *Context) CancelFunc {
	var once sync.Once
	return func(causeOrMessage ...any) {
		once.Do(func() {
			cancel(c, buildCancelledReason(causeOrMessage))
		})
	}
}

func buildCancelledReason(args []any) *reason.Cancelled {
	c := &reason.Cancelled{}
	for _, a := range args {
		switch v := a.(type) {
		case nil:
		case string:
			c.Message = v
		case error:
			c.Cause = v
		default:
			panic(fmt.Sprintf("ctxtree: cancel: unsupported argument type %T", a))
		}
	}
	return c
}

// cancel implements spec §4.4's Cancel(node, reason) contract.
func cancel(c *Context, r error) {
	if c.reason != nil {
		return // idempotent (step 1, P2)
	}
	c.reason = r // set before draining: a listener that calls OnDidCancel
	// on c from inside its own callback takes the already-cancelled fast
	// path (§4.5) and fires synchronously, rather than being queued.

	var collected []error
	for len(c.listeners) > 0 {
		l := c.listeners[0]
		c.listeners = c.listeners[1:]
		if !l.live {
			continue
		}
		l.live = false
		if err := invokeListener(l.fn, r); err != nil {
			collected = append(collected, err)
		}
	}

	if c.doneCh != nil {
		close(c.doneCh)
	}

	reportCollected(c.host, collected)

	if c.parentSub != nil {
		c.parentSub.Dispose()
		c.parentSub = nil
	}
	if c.timer != nil {
		c.timer.Dispose()
		c.timer = nil
	}
}

// invokeListener runs fn, converting a panic into an error so a throwing
// listener (spec's "exceptions thrown by listener callbacks") can be
// collected and aggregated like any other failure in the same drain cycle.
func invokeListener(fn func(error), r error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("ctxtree: listener panic: %v", p)
			}
		}
	}()
	fn(r)
	return nil
}

func reportCollected(host chost.Host, collected []error) {
	switch len(collected) {
	case 0:
		return
	case 1:
		host.OnUncaughtException(collected[0])
	default:
		host.OnUncaughtException(reason.NewAggregate(collected))
	}
}

// OnDidCancel registers listener to be invoked at most once, with this
// Context's cancellation reason, the first time it becomes non-nil (spec
// §4.5). If the Context is already cancelled, listener runs synchronously
// before OnDidCancel returns and the returned Disposable is a no-op.
// Otherwise, the returned Disposable removes listener if Disposed before
// cancellation; disposing after cancellation (even within the same
// synchronous frame, see SPEC_FULL.md's Open Question resolution for P6)
// is always a no-op, since drain clears a listener's liveness before
// invoking it.
func (c *Context) OnDidCancel(fn func(error)) chost.Disposable {
	if err := c.Err(); err != nil {
		invokeAndReport(c.host, fn, err)
		return noopDisposable{}
	}
	l := &listener{fn: fn, live: true}
	c.listeners = append(c.listeners, l)
	return disposeFunc(func() {
		l.live = false
	})
}

func invokeAndReport(host chost.Host, fn func(error), r error) {
	if err := invokeListener(fn, r); err != nil {
		host.OnUncaughtException(err)
	}
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

type noopDisposable struct{}

func (noopDisposable) Dispose() {}

// Err implements the lazy deadline/ancestor observation of spec §4.6: it
// returns the Context's own reason if set; otherwise, it checks the
// parent (assigning and draining if the parent has since cancelled), then
// checks its own deadline against the host's current time (assigning and
// draining if passed); otherwise it returns nil.
func (c *Context) Err() error {
	if c.reason != nil {
		return c.reason
	}
	if c.parent != nil {
		if r := c.parent.Err(); r != nil {
			cancel(c, r)
			return c.reason
		}
	}
	if c.hasDeadline && !c.host.Now().Before(c.deadline) {
		cancel(c, &reason.DeadlineExceeded{})
		return c.reason
	}
	return nil
}

// Deadline implements context.Context.
func (c *Context) Deadline() (time.Time, bool) {
	return c.deadline, c.hasDeadline
}

// Done returns a channel that is closed when the Context is cancelled.
// This is the awaitable bridge of spec §4.8: a closed channel is Go's
// idiomatic one-shot future, and Err() after <-Done() is the resolved
// reason. The channel is allocated lazily so a Context that is never
// awaited never pays for one.
func (c *Context) Done() <-chan struct{} {
	if c.doneCh != nil {
		return c.doneCh
	}
	if c.Err() != nil {
		ch := make(chan struct{})
		close(ch)
		c.doneCh = ch
		return ch
	}
	c.doneCh = make(chan struct{})
	// Done was called before any cancellation was observed: make sure the
	// channel still closes when one eventually arrives, even though
	// Err()'s lazy check above didn't fire one just now.
	c.OnDidCancel(func(error) {})
	return c.doneCh
}

// Value implements context.Context: it returns this node's value if key
// was bound here (I5), else delegates to parent, else nil.
func (c *Context) Value(key any) any {
	if c.hasValue && c.key == key {
		return c.value
	}
	if c.parent != nil {
		return c.parent.Value(key)
	}
	return nil
}

// HasValue reports whether key is bound by this Context or any ancestor,
// even when the bound value is nil (I6).
func (c *Context) HasValue(key any) bool {
	if c.hasValue && c.key == key {
		return true
	}
	if c.parent != nil {
		return c.parent.HasValue(key)
	}
	return false
}

var _ context.Context = (*Context)(nil)
