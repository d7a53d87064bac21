// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for listdev.
//
// Code that stamps modification times or schedules idle expiry takes a
// [Clock] instead of calling time.Now or time.AfterFunc directly.
// Production wiring passes [Real]; tests pass [Fake] and move time
// forward explicitly with [FakeClock.Advance], which fires any due
// AfterFunc callbacks synchronously in deadline order.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	session := liststream.New(liststream.Options{Clock: c})
//	c.Advance(time.Minute)
package clock
