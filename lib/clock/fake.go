// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingTimer
	changed *sync.Cond
}

// pendingTimer is a registered After, Sleep, or ticker deadline.
type pendingTimer struct {
	deadline time.Time
	channel  chan time.Time

	// period is non-zero for tickers, which are re-armed after firing.
	period  time.Duration
	stopped bool
}

// Fake returns a FakeClock set to start.
func Fake(start time.Time) *FakeClock {
	fake := &FakeClock{now: start}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// Now returns the fake time.
func (fake *FakeClock) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// After registers a one-shot timer. A non-positive d delivers
// immediately without registering anything.
func (fake *FakeClock) After(d time.Duration) <-chan time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- fake.now
		return channel
	}
	fake.register(&pendingTimer{deadline: fake.now.Add(d), channel: channel})
	return channel
}

// NewTicker registers a periodic timer.
func (fake *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	channel := make(chan time.Time, 1)
	timer := &pendingTimer{deadline: fake.now.Add(d), channel: channel, period: d}
	fake.register(timer)

	return &Ticker{
		C: channel,
		stop: func() {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			timer.stopped = true
		},
		reset: func(d time.Duration) {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			timer.period = d
			timer.deadline = fake.now.Add(d)
			if timer.stopped {
				timer.stopped = false
				fake.unregister(timer)
				fake.register(timer)
			}
		},
	}
}

// Sleep blocks until Advance moves past now+d.
func (fake *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-fake.After(d)
}

// Advance moves the clock forward by d and fires, in deadline order,
// every timer that falls due. A ticker spanning several periods fires
// once per period; ticks that overflow its buffer are dropped.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.now = fake.now.Add(d)
	target := fake.now
	fake.mu.Unlock()

	for {
		due := fake.takeDue(target)
		if len(due) == 0 {
			return
		}
		for _, timer := range due {
			select {
			case timer.channel <- target:
			default:
			}
		}
	}
}

// WaitForTimers blocks until at least n timers are pending.
func (fake *FakeClock) WaitForTimers(n int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for fake.activeLocked() < n {
		fake.changed.Wait()
	}
}

// PendingCount returns the number of timers that have not fired or
// been stopped.
func (fake *FakeClock) PendingCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.activeLocked()
}

// register must be called with fake.mu held.
func (fake *FakeClock) register(timer *pendingTimer) {
	fake.pending = append(fake.pending, timer)
	fake.changed.Broadcast()
}

func (fake *FakeClock) unregister(timer *pendingTimer) {
	for index, candidate := range fake.pending {
		if candidate == timer {
			fake.pending = append(fake.pending[:index], fake.pending[index+1:]...)
			return
		}
	}
}

func (fake *FakeClock) activeLocked() int {
	count := 0
	for _, timer := range fake.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}

// takeDue removes due timers from the pending list, re-arms tickers,
// and returns what should fire, sorted by deadline.
func (fake *FakeClock) takeDue(target time.Time) []*pendingTimer {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	var due, remaining []*pendingTimer
	for _, timer := range fake.pending {
		switch {
		case timer.stopped:
		case timer.deadline.After(target):
			remaining = append(remaining, timer)
		default:
			due = append(due, timer)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, timer := range due {
		if timer.period > 0 {
			timer.deadline = timer.deadline.Add(timer.period)
			remaining = append(remaining, timer)
		}
	}
	fake.pending = remaining
	return due
}
