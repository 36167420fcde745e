package viewer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
)

// DefaultAnimDuration is the panel transition time when none is configured.
const DefaultAnimDuration = 350 * time.Millisecond

var (
	// DefaultAbsMinSize and DefaultAbsMaxSize bound every panel unless a
	// viewer overrides them.
	DefaultAbsMinSize = geom.Size{Width: 300, Height: 300}
	DefaultAbsMaxSize = geom.Size{Width: 20000, Height: 20000}
)

// zCounter hands out monotonically increasing stacking values.
var zCounter atomic.Int64

// Panel holds the geometry of one viewer: position, size, scale, and the
// size limits derived from its content aspect. Width and height are content
// dimensions before scale is applied; the on-screen footprint is Frame().
type Panel struct {
	owner string
	anim  *tween.Animator

	AnimDuration time.Duration

	pos      geom.Vec3
	size     geom.Size
	scale    float64
	rotation float64
	opacity  float64
	aspect   float64

	idealDefault geom.Size
	minSize      geom.Size
	defaultSize  geom.Size
	maxSize      geom.Size
	absMin       geom.Size
	absMax       geom.Size

	bounds    geom.Rect
	z         int64
	animating bool
	// replacing is set while a new tween displaces one on the same channel.
	replacing bool
}

// NewPanel returns a panel with unit scale, full opacity, and the ideal
// default size. anim may be nil, in which case every transition snaps.
func NewPanel(owner string, anim *tween.Animator, idealDefault geom.Size) *Panel {
	if idealDefault.Width <= 0 || idealDefault.Height <= 0 {
		idealDefault = geom.Size{Width: 400, Height: 400}
	}
	p := &Panel{
		owner:        owner,
		anim:         anim,
		AnimDuration: DefaultAnimDuration,
		scale:        1,
		opacity:      1,
		aspect:       1,
		idealDefault: idealDefault,
		absMin:       DefaultAbsMinSize,
		absMax:       DefaultAbsMaxSize,
		size:         idealDefault,
	}
	p.SetSizeLimits()
	p.SendToFront()
	return p
}

func (p *Panel) Position() geom.Vec3     { return p.pos }
func (p *Panel) SetPosition(v geom.Vec3) { p.pos = v }
func (p *Panel) Size() geom.Size         { return p.size }
func (p *Panel) Width() float64          { return p.size.Width }
func (p *Panel) Height() float64         { return p.size.Height }
func (p *Panel) Scale() float64          { return p.scale }
func (p *Panel) Rotation() float64       { return p.rotation }
func (p *Panel) SetRotation(r float64)   { p.rotation = r }
func (p *Panel) Opacity() float64        { return p.opacity }
func (p *Panel) SetOpacity(o float64)    { p.opacity = o }
func (p *Panel) Z() int64                { return p.z }
func (p *Panel) Animating() bool         { return p.animating }
func (p *Panel) MinSize() geom.Size      { return p.minSize }
func (p *Panel) DefaultSize() geom.Size  { return p.defaultSize }
func (p *Panel) MaxSize() geom.Size      { return p.maxSize }
func (p *Panel) BoundingArea() geom.Rect { return p.bounds }

// SetScale sets the uniform scale. Non-positive values are ignored.
func (p *Panel) SetScale(s float64) {
	if s > 0 {
		p.scale = s
	}
}

// SetSize sets the raw content size without consulting the limits.
func (p *Panel) SetSize(w, h float64) {
	p.size = geom.Size{Width: w, Height: h}
}

// ContentAspect is width over height of the displayed content.
func (p *Panel) ContentAspect() float64 { return p.aspect }

// SetContentAspect updates the aspect and recomputes size limits.
func (p *Panel) SetContentAspect(a float64) {
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		a = 1
	}
	p.aspect = a
	p.size.Height = p.size.Width / a
	p.SetSizeLimits()
}

// SetDefaultSize sets the ideal default the limits are derived from.
func (p *Panel) SetDefaultSize(s geom.Size) {
	p.idealDefault = s
	p.SetSizeLimits()
}

// SetAbsoluteSizeLimits replaces the absolute min and max. Call
// SetSizeLimits afterwards to derive the effective limits.
func (p *Panel) SetAbsoluteSizeLimits(absMin, absMax geom.Size) {
	p.absMin = absMin
	p.absMax = absMax
}

// SetBoundingArea sets the rectangle CheckBounds keeps the panel inside.
func (p *Panel) SetBoundingArea(r geom.Rect) { p.bounds = r }

// Frame returns the on-screen rectangle: position plus scaled size.
func (p *Panel) Frame() geom.Rect {
	return geom.Rect{
		X:      p.pos.X,
		Y:      p.pos.Y,
		Width:  p.size.Width * p.scale,
		Height: p.size.Height * p.scale,
	}
}

// SendToFront raises the panel above every other panel in its layer.
func (p *Panel) SendToFront() {
	p.z = zCounter.Add(1)
}

// SetSizeLimits derives min, default and max sizes from the current aspect
// so that each limit keeps the area of its absolute counterpart.
func (p *Panel) SetSizeLimits() {
	aspect := p.aspect
	if aspect <= 0 {
		aspect = 1
	}
	ideal := p.idealDefault
	absMinArea := p.absMin.Width * p.absMin.Height
	absMaxArea := p.absMax.Width * p.absMax.Height
	idealArea := ideal.Width * ideal.Height

	var minS, defS, maxS geom.Size
	minS.Height = math.Sqrt(absMinArea / aspect)
	minS.Width = minS.Height * aspect
	defS.Height = math.Sqrt(idealArea / aspect)
	defS.Width = defS.Height * aspect
	maxS.Height = math.Sqrt(absMaxArea / aspect)
	maxS.Width = maxS.Height * aspect

	if minS.Height > p.absMin.Height {
		minS.Height = p.absMin.Height
		minS.Width = minS.Height * aspect
	}
	if minS.Width > p.absMin.Width {
		minS.Width = p.absMin.Width
		minS.Height = minS.Width / aspect
	}

	if defS.Width < minS.Width {
		defS.Width = ideal.Width
		defS.Height = defS.Width / aspect
	}
	if defS.Height < minS.Height {
		defS.Height = ideal.Height
		defS.Width = defS.Height * aspect
	}
	if defS.Width > ideal.Width {
		defS.Width = ideal.Width
		defS.Height = defS.Width / aspect
	}
	if defS.Height > ideal.Height {
		defS.Height = ideal.Height
		defS.Width = defS.Height * aspect
	}

	if maxS.Width > p.absMax.Width {
		maxS.Width = p.absMax.Width
		maxS.Height = maxS.Width / aspect
	}
	if maxS.Height > p.absMax.Height {
		maxS.Height = p.absMax.Height
		maxS.Width = maxS.Height * aspect
	}

	p.minSize = minS
	p.defaultSize = defS
	p.maxSize = maxS
}

// clampSize snaps a requested content size to min or max when it falls
// outside the limits in either dimension.
func (p *Panel) clampSize(w, h float64) geom.Size {
	switch {
	case w < p.minSize.Width || h < p.minSize.Height:
		return p.minSize
	case w > p.maxSize.Width || h > p.maxSize.Height:
		return p.maxSize
	}
	return geom.Size{Width: w, Height: h}
}

// SetViewerSize sets the content size, clamped to the limits.
func (p *Panel) SetViewerSize(w, h float64) {
	p.size = p.clampSize(w, h)
}

// SetViewerWidth sets the width and derives height from the aspect.
func (p *Panel) SetViewerWidth(w float64) {
	p.SetViewerSize(w, w/p.aspect)
}

// SetViewerHeight sets the height and derives width from the aspect.
func (p *Panel) SetViewerHeight(h float64) {
	p.SetViewerSize(h*p.aspect, h)
}

// SizeForWidth is the size SetViewerWidth would settle on.
func (p *Panel) SizeForWidth(w float64) geom.Size { return p.clampSize(w, w/p.aspect) }

// SizeForHeight is the size SetViewerHeight would settle on.
func (p *Panel) SizeForHeight(h float64) geom.Size { return p.clampSize(h*p.aspect, h) }

// AnimateSizeTo tweens the content size, clamped to the limits. Bounds are
// checked on completion.
func (p *Panel) AnimateSizeTo(s geom.Size) {
	p.tweenSize(p.clampSize(s.Width, s.Height), 0, p.AnimDuration, p.tweenEnded)
}

// tweenSize interpolates from the size at the moment the tween starts
// moving, so a displaced tween's final value is the starting point.
func (p *Panel) tweenSize(to geom.Size, delay, duration time.Duration, done func()) {
	p.animating = true
	var from *geom.Size
	p.start(tween.ChannelSize, delay, duration, tween.InOutQuad, func(t float64) {
		if from == nil {
			f := p.size
			from = &f
		}
		p.size = geom.Size{
			Width:  from.Width + (to.Width-from.Width)*t,
			Height: from.Height + (to.Height-from.Height)*t,
		}
	}, done)
}

func (p *Panel) AnimateWidthTo(w float64)  { p.AnimateSizeTo(p.SizeForWidth(w)) }
func (p *Panel) AnimateHeightTo(h float64) { p.AnimateSizeTo(p.SizeForHeight(h)) }
func (p *Panel) AnimateToDefaultSize()     { p.AnimateSizeTo(p.defaultSize) }

// TweenPosition moves the panel to dest. done may be nil.
func (p *Panel) TweenPosition(dest geom.Vec3, delay, duration time.Duration, ease tween.Ease, done func()) {
	var from *geom.Vec3
	p.start(tween.ChannelPosition, delay, duration, ease, func(t float64) {
		if from == nil {
			f := p.pos
			from = &f
		}
		p.pos = from.Lerp(dest, t)
	}, done)
}

// TweenOpacity fades the panel to o.
func (p *Panel) TweenOpacity(o float64, delay, duration time.Duration, ease tween.Ease, done func()) {
	from := p.opacity
	p.start(tween.ChannelOpacity, delay, duration, ease, func(t float64) {
		p.opacity = from + (o-from)*t
	}, done)
}

// TweenScale scales the panel to s.
func (p *Panel) TweenScale(s float64, delay, duration time.Duration, ease tween.Ease, done func()) {
	from := p.scale
	p.start(tween.ChannelScale, delay, duration, ease, func(t float64) {
		p.scale = from + (s-from)*t
	}, done)
}

// TweenRotation rotates the panel to r degrees.
func (p *Panel) TweenRotation(r float64, delay, duration time.Duration, ease tween.Ease, done func()) {
	from := p.rotation
	p.start(tween.ChannelRotation, delay, duration, ease, func(t float64) {
		p.rotation = from + (r-from)*t
	}, done)
}

// TweenFrame moves and resizes the panel so Frame() ends at r. Size goes
// first so a displaced size tween cannot re-clamp over the new position.
func (p *Panel) TweenFrame(r geom.Rect, delay, duration time.Duration, done func()) {
	scale := p.scale
	if scale <= 0 {
		scale = 1
	}
	to := geom.Size{Width: r.Width / scale, Height: r.Height / scale}
	p.tweenSize(to, delay, duration, func() {
		p.tweenEnded()
		if done != nil {
			done()
		}
	})
	p.TweenPosition(geom.Vec3{X: r.X, Y: r.Y, Z: p.pos.Z}, delay, duration, tween.InOutQuad, nil)
}

// CompleteTweens snaps every running transition to its end.
func (p *Panel) CompleteTweens() {
	if p.anim != nil {
		p.anim.Complete(p.owner)
	}
}

func (p *Panel) start(ch tween.Channel, delay, duration time.Duration, ease tween.Ease, apply func(float64), done func()) {
	if p.anim == nil {
		apply(1)
		if done != nil {
			done()
		}
		return
	}
	// Completions run inside Start belong to the tween being displaced. An
	// instant tween's own completion is run here instead.
	instant := delay <= 0 && duration <= 0
	own := done
	if instant {
		own = nil
	}
	prev := p.replacing
	p.replacing = true
	p.anim.Start(p.owner, ch, delay, duration, ease, apply, own)
	p.replacing = prev
	if instant && done != nil {
		done()
	}
}

// tweenEnded re-checks bounds once a size transition lands. A displaced
// tween skips this; its replacement checks when it lands.
func (p *Panel) tweenEnded() {
	if p.replacing {
		return
	}
	p.animating = false
	p.CheckBounds(false)
}

// CheckBounds pulls the panel back inside its bounding area. A panel larger
// than the area is aligned so it still covers it. With immediate the panel
// snaps; otherwise it tweens, and nothing happens while another tween runs.
func (p *Panel) CheckBounds(immediate bool) {
	if p.animating && !immediate {
		return
	}
	if p.bounds.Empty() {
		return
	}
	f := p.Frame()
	b := p.bounds
	destX, destY := f.X, f.Y

	if f.Width < b.Width {
		if f.X < b.X {
			destX = b.X
		} else if f.X > b.Right()-f.Width {
			destX = b.Right() - f.Width
		}
	} else {
		if f.X < b.Right()-f.Width {
			destX = b.Right() - f.Width
		} else if f.X > b.X {
			destX = b.X
		}
	}

	if f.Height < b.Height {
		if f.Y < b.Y {
			destY = b.Y
		} else if f.Y > b.Bottom()-f.Height {
			destY = b.Bottom() - f.Height
		}
	} else {
		if f.Y < b.Bottom()-f.Height {
			destY = b.Bottom() - f.Height
		} else if f.Y > b.Y {
			destY = b.Y
		}
	}

	if destX == f.X && destY == f.Y {
		return
	}
	if immediate {
		p.pos = geom.Vec3{X: math.Floor(destX), Y: math.Floor(destY), Z: p.pos.Z}
		return
	}
	p.TweenPosition(geom.Vec3{X: destX, Y: destY, Z: p.pos.Z}, 0, p.AnimDuration, tween.InOutQuad, nil)
}
