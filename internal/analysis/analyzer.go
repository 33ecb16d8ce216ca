package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/umactually/internal/backend"
	"github.com/ppiankov/umactually/internal/model"
)

var (
	// ErrNotFound is returned when a history entry does not exist
	ErrNotFound = errors.New("analysis not found")
	// ErrUnsupportedURL is returned for URLs other than YouTube videos
	ErrUnsupportedURL = errors.New("only YouTube video URLs are supported")
)

// Backend is the subset of the backend client the analyzer needs
type Backend interface {
	AnalyzeText(ctx context.Context, text string) (*model.AnalysisResult, error)
	FetchTranscript(ctx context.Context, videoURL string) (*model.Transcript, error)
	AnalyzeVideo(ctx context.Context, videoID string, segments []model.TranscriptSegment) (*model.VideoAnalysis, error)
}

// Recorder persists finished analyses
type Recorder interface {
	Insert(result model.AnalysisResult, kind model.Kind, videoURL string, transcript []model.TranscriptSegment) (string, error)
}

// Outcome is a finished submission
type Outcome struct {
	Screen     Screen
	Input      string
	Result     model.AnalysisResult
	Transcript []model.TranscriptSegment
	VideoURL   string
	Title      string
	HistoryID  string
	HistoryErr error // Set when the result could not be saved; the result is still valid
}

// Analyzer dispatches submissions and records them in history
type Analyzer struct {
	backend  Backend
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the analyzer logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates an analyzer. A nil recorder skips history.
func NewAnalyzer(b Backend, recorder Recorder, opts ...Option) *Analyzer {
	a := &Analyzer{
		backend:  b,
		recorder: recorder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit classifies input, runs the matching flow and stores the result
func (a *Analyzer) Submit(ctx context.Context, input string) (*Outcome, error) {
	input = strings.TrimSpace(input)
	screen := Classify(input)

	var (
		out *Outcome
		err error
	)
	switch screen {
	case ScreenMain:
		return nil, backend.ErrEmptyInput
	case ScreenInvalid:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, input)
	case ScreenText:
		out, err = a.submitText(ctx, input)
	case ScreenVideo:
		out, err = a.submitVideo(ctx, input)
	default:
		return nil, fmt.Errorf("unknown screen %q", screen)
	}
	if err != nil {
		return nil, err
	}

	out.Screen = screen
	out.Input = input
	return out, nil
}

func (a *Analyzer) submitText(ctx context.Context, text string) (*Outcome, error) {
	result, err := a.backend.AnalyzeText(ctx, text)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: *result}
	a.record(out, model.KindText)
	return out, nil
}

func (a *Analyzer) submitVideo(ctx context.Context, videoURL string) (*Outcome, error) {
	transcript, err := a.backend.FetchTranscript(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("transcript fetched", "video_id", transcript.VideoID, "segments", len(transcript.Segments))

	analysis, err := a.backend.AnalyzeVideo(ctx, transcript.VideoID, transcript.Segments)
	if err != nil {
		return nil, err
	}

	segments := MergeSegments(transcript.Segments, analysis.Segments)
	out := &Outcome{
		Result: model.AnalysisResult{
			ConfidenceScore: analysis.ConfidenceScore,
			Reasoning:       analysis.Reasoning,
			Content:         model.JoinSegments(segments),
			SourceGroups:    analysis.SourceGroups,
		},
		Transcript: segments,
		VideoURL:   videoURL,
		Title:      transcript.Title,
	}
	a.record(out, model.KindVideo)
	return out, nil
}

// record stores the outcome. A storage failure never fails the analysis.
func (a *Analyzer) record(out *Outcome, kind model.Kind) {
	if a.recorder == nil {
		return
	}
	id, err := a.recorder.Insert(out.Result, kind, out.VideoURL, out.Transcript)
	if err != nil {
		a.logger.Warn("analysis not saved to history", "error", err)
		out.HistoryErr = err
		return
	}
	out.HistoryID = id
}

// MergeSegments annotates transcript segments with the claims found by the
// video analysis, matched by segment ID. Timing and text stay as transcribed.
func MergeSegments(transcript, analyzed []model.TranscriptSegment) []model.TranscriptSegment {
	if len(analyzed) == 0 {
		return append([]model.TranscriptSegment(nil), transcript...)
	}
	if len(transcript) == 0 {
		return append([]model.TranscriptSegment(nil), analyzed...)
	}

	byID := make(map[string]model.TranscriptSegment, len(analyzed))
	for _, s := range analyzed {
		byID[s.ID] = s
	}

	merged := make([]model.TranscriptSegment, len(transcript))
	for i, s := range transcript {
		s.Claim, s.ClaimIndex = "", nil
		if an, ok := byID[s.ID]; ok && an.HasClaim() {
			s.Claim = an.Claim
			s.ClaimIndex = model.IntPtr(*an.ClaimIndex)
		}
		merged[i] = s
	}
	return merged
}
