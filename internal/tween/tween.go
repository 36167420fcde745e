package tween

import (
	"math"
	"time"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(p float64) float64

// Linear applies no easing.
func Linear(p float64) float64 { return p }

// InOutQuad accelerates until halfway, then decelerates.
func InOutQuad(p float64) float64 {
	if p < 0.5 {
		return 2 * p * p
	}
	return 1 - math.Pow(-2*p+2, 2)/2
}

// InCubic starts slowly and accelerates.
func InCubic(p float64) float64 { return p * p * p }

// Channel names the property a tween drives. Only one tween per owner and
// channel is active at a time.
type Channel string

const (
	ChannelPosition Channel = "position"
	ChannelSize     Channel = "size"
	ChannelScale    Channel = "scale"
	ChannelOpacity  Channel = "opacity"
	ChannelRotation Channel = "rotation"
	ChannelTimer    Channel = "timer"
)

// Tween is a single running transition.
type Tween struct {
	Owner   string
	Channel Channel

	delay    time.Duration
	duration time.Duration
	elapsed  time.Duration
	ease     Ease
	apply    func(p float64)
	done     func()
	finished bool
}

// Finished reports whether the tween has reached its end.
func (t *Tween) Finished() bool { return t.finished }

func (t *Tween) progress() float64 {
	if t.elapsed < t.delay {
		return 0
	}
	active := t.elapsed - t.delay
	if t.duration <= 0 || active >= t.duration {
		return 1
	}
	return float64(active) / float64(t.duration)
}

// finish applies the final value and marks the tween done. The completion
// callback is returned rather than run so callers control ordering.
func (t *Tween) finish() func() {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.apply != nil {
		t.apply(1)
	}
	return t.done
}

// Animator advances tweens on each frame tick. It is not safe for concurrent
// use; the daemon loop owns it.
type Animator struct {
	now    time.Duration
	tweens []*Tween
}

// New returns an empty animator.
func New() *Animator {
	return &Animator{}
}

// Now returns the animator's accumulated clock.
func (a *Animator) Now() time.Duration {
	return a.now
}

// Start schedules a tween. If the owner already has a tween on the same
// channel, that tween snaps to its end and its completion runs first.
func (a *Animator) Start(owner string, ch Channel, delay, duration time.Duration, ease Ease, apply func(p float64), done func()) *Tween {
	if ease == nil {
		ease = Linear
	}
	for i := len(a.tweens) - 1; i >= 0; i-- {
		prev := a.tweens[i]
		if prev.Owner != owner || prev.Channel != ch {
			continue
		}
		a.tweens = append(a.tweens[:i], a.tweens[i+1:]...)
		if cb := prev.finish(); cb != nil {
			cb()
		}
	}

	t := &Tween{
		Owner:    owner,
		Channel:  ch,
		delay:    delay,
		duration: duration,
		ease:     ease,
		apply: func(p float64) {
			if apply != nil {
				apply(ease(p))
			}
		},
		done: done,
	}
	if delay <= 0 && duration <= 0 {
		if cb := t.finish(); cb != nil {
			cb()
		}
		return t
	}
	a.tweens = append(a.tweens, t)
	return t
}

// After calls fn once delay has passed on the animator clock. A later After
// for the same owner fires the earlier one immediately.
func (a *Animator) After(owner string, delay time.Duration, fn func()) *Tween {
	return a.Start(owner, ChannelTimer, delay, 0, nil, nil, fn)
}

// Advance moves the clock forward by dt, applies progress, and fires the
// completion callbacks of tweens that reached their end. Callbacks run after
// every tween has been stepped so they may start new tweens safely.
func (a *Animator) Advance(dt time.Duration) {
	a.now += dt

	var callbacks []func()
	// Walk in reverse so finished tweens can be removed in place.
	for i := len(a.tweens) - 1; i >= 0; i-- {
		t := a.tweens[i]
		t.elapsed += dt
		p := t.progress()
		if p >= 1 {
			a.tweens = append(a.tweens[:i], a.tweens[i+1:]...)
			if cb := t.finish(); cb != nil {
				callbacks = append(callbacks, cb)
			}
			continue
		}
		if t.elapsed >= t.delay {
			t.apply(p)
		}
	}

	// Reverse iteration collected callbacks newest-first; run oldest-first.
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
}

// Complete snaps every tween of owner to its end and runs the completions.
func (a *Animator) Complete(owner string) {
	var callbacks []func()
	for i := len(a.tweens) - 1; i >= 0; i-- {
		t := a.tweens[i]
		if t.Owner != owner {
			continue
		}
		a.tweens = append(a.tweens[:i], a.tweens[i+1:]...)
		if cb := t.finish(); cb != nil {
			callbacks = append(callbacks, cb)
		}
	}
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
}

// Active reports whether owner has any running tween.
func (a *Animator) Active(owner string) bool {
	for _, t := range a.tweens {
		if t.Owner == owner {
			return true
		}
	}
	return false
}

// Pending returns the number of running tweens.
func (a *Animator) Pending() int {
	return len(a.tweens)
}
