// Package daemon runs the orchestrator on a single goroutine and feeds it
// commands from every control surface.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/telemetry"
)

var (
	// ErrBusy is returned by Post when the inbox is full.
	ErrBusy = errors.New("daemon loop inbox full")
	// ErrStopped is returned once the loop has exited.
	ErrStopped = errors.New("daemon loop stopped")
)

// maxFrame caps the animation step after a stall so transitions do not
// jump straight to their end.
const maxFrame = 250 * time.Millisecond

// IdleTracker reports the wall idle once no command arrived for a while.
type IdleTracker struct {
	after time.Duration
	now   func() time.Time
	last  atomic.Int64
}

// NewIdleTracker returns a tracker that turns idle after d without a Touch.
func NewIdleTracker(d time.Duration, now func() time.Time) *IdleTracker {
	if d <= 0 {
		d = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	t := &IdleTracker{after: d, now: now}
	t.Touch()
	return t
}

// Touch records user activity.
func (t *IdleTracker) Touch() { t.last.Store(t.now().UnixNano()) }

// Idle reports whether the last Touch is older than the idle window.
func (t *IdleTracker) Idle() bool {
	return t.now().Sub(time.Unix(0, t.last.Load())) >= t.after
}

// LoopConfig holds configuration for the loop.
type LoopConfig struct {
	Interval  time.Duration
	QueueSize int
	Idle      *IdleTracker
	Metrics   *telemetry.Metrics
	Logger    *slog.Logger
}

type job struct {
	fn    func(*orchestrator.Controller) error
	reply chan error
}

// Loop owns the controller. Every mutation and read goes through its inbox,
// and the ticker advances the animator between commands.
type Loop struct {
	ctrl     *orchestrator.Controller
	bus      *events.Bus
	interval atomic.Int64
	inbox    chan job
	idle     *IdleTracker
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	done     chan struct{}
	started  atomic.Bool
}

// NewLoop wraps ctrl. Events posted to the loop are published on bus, which
// the controller is expected to Listen on.
func NewLoop(ctrl *orchestrator.Controller, bus *events.Bus, cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 60
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Idle == nil {
		cfg.Idle = NewIdleTracker(0, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	l := &Loop{
		ctrl:    ctrl,
		bus:     bus,
		inbox:   make(chan job, cfg.QueueSize),
		idle:    cfg.Idle,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		done:    make(chan struct{}),
	}
	l.interval.Store(int64(cfg.Interval))
	return l
}

// SetInterval changes the frame period from the next frame on.
func (l *Loop) SetInterval(d time.Duration) {
	if d > 0 {
		l.interval.Store(int64(d))
	}
}

// Idle reports whether the wall is idling.
func (l *Loop) Idle() bool { return l.idle.Idle() }

// Post queues ev for delivery on the loop goroutine without waiting.
func (l *Loop) Post(ev any) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	l.idle.Touch()
	j := job{fn: func(*orchestrator.Controller) error {
		l.bus.Notify(ev)
		return nil
	}}
	select {
	case l.inbox <- j:
		return nil
	default:
		return ErrBusy
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*orchestrator.Controller) error) error {
	j := job{fn: fn, reply: make(chan error, 1)}
	select {
	case l.inbox <- j:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-j.reply:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Command is Do for user commands: it marks the wall active first.
func (l *Loop) Command(ctx context.Context, fn func(*orchestrator.Controller) error) error {
	l.idle.Touch()
	return l.Do(ctx, fn)
}

// Query runs a read on the loop goroutine and returns its result.
func Query[T any](ctx context.Context, l *Loop, fn func(*orchestrator.Controller) T) (T, error) {
	var out T
	err := l.Do(ctx, func(c *orchestrator.Controller) error {
		out = fn(c)
		return nil
	})
	return out, err
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run processes commands and frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return fmt.Errorf("daemon loop already running")
	}
	defer close(l.done)

	interval := time.Duration(l.interval.Load())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("loop started", "interval", interval)
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			l.logger.Info("loop stopped")
			return nil
		case j := <-l.inbox:
			err := l.run(j.fn)
			if j.reply != nil {
				j.reply <- err
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if dt > maxFrame {
				dt = maxFrame
			}
			l.tick(dt)
			if d := time.Duration(l.interval.Load()); d != interval {
				interval = d
				ticker.Reset(d)
			}
		}
	}
}

// drain fails every queued waiter so no caller blocks on a dead loop.
func (l *Loop) drain() {
	for {
		select {
		case j := <-l.inbox:
			if j.reply != nil {
				j.reply <- ErrStopped
			}
		default:
			return
		}
	}
}

func (l *Loop) run(fn func(*orchestrator.Controller) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop command panic recovered", "error", r)
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return fn(l.ctrl)
}

func (l *Loop) tick(dt time.Duration) {
	start := time.Now()
	err := l.run(func(c *orchestrator.Controller) error {
		c.Tick(dt)
		return nil
	})
	if err != nil {
		return
	}
	if l.metrics == nil {
		return
	}
	l.metrics.TickDuration.Observe(time.Since(start).Seconds())
	st := l.ctrl.Snapshot()
	l.metrics.SetLive(st.CountByType, st.Darkeners, st.Tweens)
}
