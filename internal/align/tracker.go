package align

import (
	"context"
	"time"

	"github.com/ppiankov/umactually/internal/model"
)

// DefaultPollInterval is how often the player position is sampled
const DefaultPollInterval = 100 * time.Millisecond

// Tracker follows playback for one transcript view: it recomputes the
// active segment on every sample and drives the auto-scroller.
type Tracker struct {
	segments []model.TranscriptSegment
	scroller *AutoScroller
	onActive func(index int)

	active  int
	playing bool
}

// NewTracker creates a tracker. onActive, if set, runs whenever the active
// segment index changes (including to -1).
func NewTracker(segments []model.TranscriptSegment, scroller *AutoScroller, onActive func(int)) *Tracker {
	return &Tracker{
		segments: segments,
		scroller: scroller,
		onActive: onActive,
		active:   -1,
	}
}

// Active returns the current active segment index
func (t *Tracker) Active() int {
	return t.active
}

// Observe feeds one player sample and returns the active segment index
func (t *Tracker) Observe(position float64, playing bool) int {
	if playing != t.playing {
		t.playing = playing
		if t.scroller != nil {
			t.scroller.SetPlaying(playing)
		}
	}

	idx := ActiveSegment(t.segments, position)
	if idx != t.active {
		t.active = idx
		if t.scroller != nil {
			t.scroller.Update(idx)
		}
		if t.onActive != nil {
			t.onActive(idx)
		}
	}
	return idx
}

// Run samples player every interval until ctx is done or stop returns true.
// Leaving a view cancels ctx, which stops sampling.
func (t *Tracker) Run(ctx context.Context, player Player, interval time.Duration, stop func() bool) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if t.scroller != nil {
		defer t.scroller.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Observe(player.CurrentTime(), player.Playing())
			if stop != nil && stop() {
				return nil
			}
		}
	}
}
