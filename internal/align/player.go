package align

import (
	"sync"
	"time"
)

// Player is the host video player as seen by the transcript tracker
type Player interface {
	CurrentTime() float64
	Playing() bool
}

// SimulatedPlayer advances a playback position against a clock. It stands
// in for an embedded video player when replaying a transcript.
type SimulatedPlayer struct {
	mu       sync.Mutex
	now      func() time.Time
	speed    float64
	duration float64

	playing  bool
	position float64   // position at anchor
	anchor   time.Time // when position was last set
}

// NewSimulatedPlayer creates a paused player at position 0.
// A duration of 0 means the player never stops on its own.
func NewSimulatedPlayer(duration, speed float64, now func() time.Time) *SimulatedPlayer {
	if speed <= 0 {
		speed = 1
	}
	if now == nil {
		now = time.Now
	}
	return &SimulatedPlayer{now: now, speed: speed, duration: duration, anchor: now()}
}

// Play resumes playback
func (p *SimulatedPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.anchor = p.now()
	p.playing = true
}

// Pause freezes playback at the current position
func (p *SimulatedPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = p.positionLocked()
	p.anchor = p.now()
	p.playing = false
}

// Seek jumps to t seconds
func (p *SimulatedPlayer) Seek(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t < 0 {
		t = 0
	}
	p.position = t
	p.anchor = p.now()
}

// CurrentTime returns the playback position in seconds
func (p *SimulatedPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// Playing reports whether playback is running. The player pauses itself
// once it reaches its duration.
func (p *SimulatedPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing && p.duration > 0 && p.positionLocked() >= p.duration {
		p.position = p.duration
		p.anchor = p.now()
		p.playing = false
	}
	return p.playing
}

func (p *SimulatedPlayer) positionLocked() float64 {
	pos := p.position
	if p.playing {
		pos += p.now().Sub(p.anchor).Seconds() * p.speed
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}
