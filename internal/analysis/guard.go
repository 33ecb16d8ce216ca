package analysis

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned for a response whose request was superseded
var ErrStale = errors.New("analysis superseded by a newer request")

// RequestGuard tracks the latest submission. Beginning a new request
// cancels the previous one and invalidates its token.
type RequestGuard struct {
	mu     sync.Mutex
	epoch  uint64
	cancel context.CancelFunc
}

// Begin starts a request derived from parent and returns its token
func (g *RequestGuard) Begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	g.epoch++
	g.cancel = cancel
	return ctx, g.epoch
}

// Current reports whether token still belongs to the latest request
func (g *RequestGuard) Current(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return token == g.epoch
}

// End releases the request's context if token is still current
func (g *RequestGuard) End(token uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token == g.epoch && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Cancel aborts the in-flight request, if any, and invalidates its token
func (g *RequestGuard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.epoch++
}
