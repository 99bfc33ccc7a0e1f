// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package poller runs a function periodically, polling faster while the user
// is active.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefFast         = 5 * time.Second
	DefIdle         = 30 * time.Second
	DefActiveWindow = 2 * time.Minute
)

// ErrRunning is returned by Start if the poller is already running.
var ErrRunning = errors.New("poller is already running")

// Func is the polling function.  It must return when ctx is cancelled.
type Func func(ctx context.Context) error

// Poller calls a Func every Fast interval while the last activity is within
// ActiveWindow, and every Idle interval otherwise.  A tick is skipped while
// the previous call is still running.
type Poller struct {
	Fast         time.Duration
	Idle         time.Duration
	ActiveWindow time.Duration

	fn    Func
	onErr func(error)
	lg    *slog.Logger
	now   func() time.Time

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	lastActivity time.Time
	lastErr      error

	wake     chan struct{}
	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// Option configures the Poller.
type Option func(*Poller)

// WithIntervals sets the intervals.  Zero values keep the defaults.
func WithIntervals(fast, idle, activeWindow time.Duration) Option {
	return func(p *Poller) {
		if fast > 0 {
			p.Fast = fast
		}
		if idle > 0 {
			p.Idle = idle
		}
		if activeWindow > 0 {
			p.ActiveWindow = activeWindow
		}
	}
}

// WithErrorHandler sets the function that receives the errors returned by
// the polling function.
func WithErrorHandler(fn func(error)) Option {
	return func(p *Poller) {
		p.onErr = fn
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(p *Poller) {
		if lg != nil {
			p.lg = lg
		}
	}
}

// New creates a stopped poller calling fn.
func New(fn Func, opts ...Option) *Poller {
	p := &Poller{
		Fast:         DefFast,
		Idle:         DefIdle,
		ActiveWindow: DefActiveWindow,
		fn:           fn,
		lg:           slog.Default(),
		now:          time.Now,
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Idle < p.Fast {
		p.Idle = p.Fast
	}
	p.lastActivity = p.now()
	return p
}

// Start starts polling.  The first poll happens immediately.  Polling stops
// when ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	return nil
}

// Stop stops polling, cancels the running call and waits for it to return.
// Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.wg.Wait()
}

// Running reports whether the poller is running.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// MarkActivity records user activity, switching to the fast interval.
func (p *Poller) MarkActivity() {
	p.mu.Lock()
	p.lastActivity = p.now()
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Interval returns the current polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.now().Sub(p.lastActivity) <= p.ActiveWindow {
		return p.Fast
	}
	return p.Idle
}

// LastError returns the error of the last completed call.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Poll calls the function now, unless a call is in progress.  It reports
// whether the call was made.
func (p *Poller) Poll(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.lg.DebugContext(ctx, "poll skipped, previous call in progress")
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		err := p.fn(ctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		if err != nil {
			p.lg.DebugContext(ctx, "poll failed", "error", err)
			if p.onErr != nil {
				p.onErr(err)
			}
		}
	}()
	return true
}

func (p *Poller) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	p.Poll(ctx)
	interval := p.Interval()
	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			// activity may shorten the interval
			if next := p.Interval(); next < interval {
				interval = next
				t.Reset(interval)
			}
		case <-t.C:
			p.Poll(ctx)
			interval = p.Interval()
			t.Reset(interval)
		}
	}
}
