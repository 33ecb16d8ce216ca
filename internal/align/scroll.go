package align

import (
	"sync"
	"time"
)

// DefaultScrollResume is how long after the last manual gesture auto-scroll re-arms
const DefaultScrollResume = 3 * time.Second

// Viewport is the scrollable transcript panel
type Viewport interface {
	// ScrollTo brings the segment at index into view, vertically centered
	ScrollTo(index int)
}

// Stopper cancels a pending timer
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// AutoScroller follows the active segment while playback runs and the user
// is not steering the panel. A manual gesture suspends following; it
// re-arms ScrollResume after the last gesture if playback is still
// running, or on the next play transition otherwise.
type AutoScroller struct {
	mu        sync.Mutex
	viewport  Viewport
	resume    time.Duration
	afterFunc AfterFunc

	playing   bool
	suspended bool
	pending   Stopper
	gen       int
	active    int
}

// ScrollerOption configures an AutoScroller
type ScrollerOption func(*AutoScroller)

// WithResumeDelay overrides DefaultScrollResume
func WithResumeDelay(d time.Duration) ScrollerOption {
	return func(a *AutoScroller) {
		if d > 0 {
			a.resume = d
		}
	}
}

// WithAfterFunc overrides the timer used for the resume delay
func WithAfterFunc(f AfterFunc) ScrollerOption {
	return func(a *AutoScroller) { a.afterFunc = f }
}

// NewAutoScroller creates a scroller driving viewport
func NewAutoScroller(viewport Viewport, opts ...ScrollerOption) *AutoScroller {
	a := &AutoScroller{
		viewport:  viewport,
		resume:    DefaultScrollResume,
		afterFunc: realAfterFunc,
		active:    -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Armed reports whether the scroller is currently following playback
func (a *AutoScroller) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing && !a.suspended
}

// SetPlaying records a player state change
func (a *AutoScroller) SetPlaying(playing bool) {
	a.mu.Lock()
	started := playing && !a.playing
	a.playing = playing

	// A gesture still inside its resume window keeps following suspended
	if started && a.suspended && a.pending == nil {
		a.suspended = false
	}
	scrollTo := -1
	if started && !a.suspended {
		scrollTo = a.active
	}
	a.mu.Unlock()

	a.scroll(scrollTo)
}

// UserScrolled records a manual scroll, wheel or touch gesture
func (a *AutoScroller) UserScrolled() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.suspended = true
	if a.pending != nil {
		a.pending.Stop()
	}
	a.gen++
	gen := a.gen
	a.pending = a.afterFunc(a.resume, func() { a.resumeAfterGesture(gen) })
}

func (a *AutoScroller) resumeAfterGesture(gen int) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.pending = nil

	scrollTo := -1
	if a.playing {
		a.suspended = false
		scrollTo = a.active
	}
	a.mu.Unlock()

	a.scroll(scrollTo)
}

// Update feeds the latest active segment index
func (a *AutoScroller) Update(index int) {
	a.mu.Lock()
	if index == a.active {
		a.mu.Unlock()
		return
	}
	a.active = index

	scrollTo := -1
	if a.playing && !a.suspended {
		scrollTo = index
	}
	a.mu.Unlock()

	a.scroll(scrollTo)
}

// Stop cancels any pending resume timer
func (a *AutoScroller) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	a.gen++
}

func (a *AutoScroller) scroll(index int) {
	if index >= 0 && a.viewport != nil {
		a.viewport.ScrollTo(index)
	}
}
