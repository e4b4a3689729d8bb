// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package retry provides a function for retrying an operation.
package retry

import (
	"context"
	"time"

	"zombiezen.com/go/log"

	"github.com/yourbase/ctxtree/reason"
)

// A BackoffStrategy can be called repeatedly to obtain (presumably) increasing
// durations to wait between retries.
type BackoffStrategy interface {
	Duration() time.Duration
}

// Do calls a function repeatedly with exponential backoff until it returns a
// nil error. Do returns an error only if the passed-in function does not return
// nil before the Context is Done. The function is guaranteed to be called at
// least once.
//
// The operation should be a verb phrase like "talking to Alice" for logging.
func Do(ctx context.Context, operation string, strategy BackoffStrategy, f func() error) error {
	var t *time.Timer
	for {
		err := f()
		if err == nil {
			return nil
		}
		d := strategy.Duration()
		if d > 0 {
			log.Warnf(ctx, "Error %s (will retry in %v): %v", operation, d, err)
			if t == nil {
				t = time.NewTimer(d)
				defer t.Stop()
			} else {
				t.Reset(d)
			}
			select {
			case <-t.C:
			case <-ctx.Done():
				return giveUp(ctx, operation, err)
			}
		} else {
			log.Warnf(ctx, "Error %s (will retry): %v", operation, err)
			select {
			case <-ctx.Done():
				return giveUp(ctx, operation, err)
			default:
			}
		}
	}
}

// giveUp logs why Do is returning without a successful call. It is only
// reached once ctx is done: when ctx.Err() is a ctxtree reason (cancelled or
// deadline exceeded) it logs that reason, otherwise it logs f's last error.
// Either way it returns f's last error.
func giveUp(ctx context.Context, operation string, err error) error {
	if reason.IsContextError(ctx.Err()) {
		log.Warnf(ctx, "Giving up %s: context done: %v", operation, ctx.Err())
	} else {
		log.Warnf(ctx, "Giving up %s: %v", operation, err)
	}
	return err
}
