// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package ctxevent adapts an external event source to ctxtree: a thin
// wiring helper that consumes only the WithCancel contract (spec §6), out
// of the core engine but interface-stable.
package ctxevent

import "github.com/yourbase/ctxtree/ctxtree"

// Emitter is the minimal "register once, remove listener" shape an event
// source must provide to be adapted by WithEvents.
type Emitter interface {
	// On registers fn to be called every time event fires, and returns a
	// function that removes the registration.
	On(event string, fn func(args ...any)) (off func())
}

// WithEvents derives a child of parent that cancels the first time any of
// events fires on source. reasonFn receives the event name and the
// arguments it fired with, and returns the message used for the resulting
// *reason.Cancelled. All other registrations are removed as soon as the
// child cancels, by any means (§6).
func WithEvents(parent *ctxtree.Context, source Emitter, events []string, reasonFn func(event string, args []any) string) (*ctxtree.Context, ctxtree.CancelFunc) {
	child, cancel := ctxtree.WithCancel(parent)

	offs := make([]func(), 0, len(events))
	for _, event := range events {
		event := event
		off := source.On(event, func(args ...any) {
			cancel(reasonFn(event, args))
		})
		offs = append(offs, off)
	}

	child.OnDidCancel(func(error) {
		for _, off := range offs {
			off()
		}
	})

	return child, cancel
}
