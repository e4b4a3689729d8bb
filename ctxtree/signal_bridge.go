// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ctxtree

import "github.com/yourbase/ctxtree/ctxsignal"

// Signal lazily materializes a ctxsignal.Signal that aborts when c
// cancels (spec §4.9, Context → AbortSignal direction). Subsequent calls
// return the same Signal.
func (c *Context) Signal() *ctxsignal.Signal {
	if c.signal != nil {
		return c.signal
	}
	ctl := c.host.NewAbortController()
	c.signal = ctl.Signal()
	if r := c.Err(); r != nil {
		ctl.Abort(r)
		return c.signal
	}
	c.OnDidCancel(func(r error) {
		ctl.Abort(r)
	})
	return c.signal
}

// WithSignal is the inverse of Signal (spec §4.9, AbortSignal → Context
// direction): it produces a child of parent that cancels when sig aborts,
// propagating sig's abort reason as the Cancelled reason's cause. If sig is
// already aborted, the child is cancelled immediately. The listener
// attached to sig is detached as soon as the child cancels for any other
// reason, so an unrelated parent cancellation doesn't leak a registration
// on sig.
func WithSignal(parent *Context, sig *ctxsignal.Signal) (*Context, CancelFunc) {
	requireContext(parent, "WithSignal")
	child, cancelFn := WithCancel(parent)

	if sig.Aborted() {
		cancelFn(sig.Err())
		return child, cancelFn
	}

	sub := sig.OnAbort(func(r error) {
		cancelFn(r)
	})
	child.OnDidCancel(func(error) {
		sub.Dispose()
	})

	return child, cancelFn
}
