package analysis

import (
	"context"
	"errors"
)

// Session runs interactive submissions where each new input supersedes the
// one still in flight. Results of superseded requests are discarded.
type Session struct {
	analyzer *Analyzer
	guard    RequestGuard
}

// NewSession creates a session over analyzer
func NewSession(analyzer *Analyzer) *Session {
	return &Session{analyzer: analyzer}
}

// Submit runs input as the latest request. It returns ErrStale if another
// submission began before this one finished.
func (s *Session) Submit(ctx context.Context, input string) (*Outcome, error) {
	reqCtx, token := s.guard.Begin(ctx)
	defer s.guard.End(token)

	out, err := s.analyzer.Submit(reqCtx, input)
	if !s.guard.Current(token) {
		return nil, ErrStale
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil, ErrStale
	}
	return out, err
}

// Cancel aborts the in-flight submission
func (s *Session) Cancel() {
	s.guard.Cancel()
}
