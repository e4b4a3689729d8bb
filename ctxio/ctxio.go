// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package ctxio adapts a stream's completion to ctxtree: a thin wiring
// helper, out of the core engine but interface-stable (spec §6), that
// consumes only the WithCancel contract.
package ctxio

import "github.com/yourbase/ctxtree/ctxtree"

// StreamDoner is the minimal "on finish/error" shape a stream must provide
// to be adapted by WithStreamDone.
type StreamDoner interface {
	// OnFinish registers fn to be called once the stream completes
	// successfully.
	OnFinish(fn func())
	// OnError registers fn to be called once the stream errors.
	OnError(fn func(err error))
}

// WithStreamDone derives a child of parent that cancels as soon as stream
// finishes or errors, passing the stream's error as the resulting
// *reason.Cancelled's cause when it errors (spec §6).
func WithStreamDone(parent *ctxtree.Context, stream StreamDoner) (*ctxtree.Context, ctxtree.CancelFunc) {
	child, cancel := ctxtree.WithCancel(parent)
	stream.OnFinish(func() { cancel() })
	stream.OnError(func(err error) { cancel(err) })
	return child, cancel
}
