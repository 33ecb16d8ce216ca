// Package backend talks to the fact-checking analysis service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/umactually/internal/cache"
	"github.com/ppiankov/umactually/internal/model"
	"golang.org/x/sync/singleflight"
)

const (
	pathTextAnalysis  = "/text-analysis"
	pathTranscript    = "/transcript"
	pathVideoAnalysis = "/video-analysis"

	errorBodyPreview = 512
)

// backendSleepFunc is the sleep function used between retries (injectable for tests)
var backendSleepFunc = time.Sleep

// Limiter throttles outgoing requests
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Client is a JSON client for the analysis backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int
	limiter    Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	flight     singleflight.Group
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter throttles every request through l
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithCache stores fetched transcripts in tc for ttl
func WithCache(tc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if tc != nil {
			c.cache = tc
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the client logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a backend client from cfg
func New(cfg model.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    ResolveBaseURL(cfg.BaseURL),
		httpClient: newHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy),
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		attempts:   cfg.RetryAttempts,
		cache:      cache.Nop{},
		logger:     slog.Default(),
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	if c.maxBytes <= 0 {
		c.maxBytes = model.DefaultConfig().Backend.MaxBodyBytes
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveBaseURL picks the backend URL: explicit config, then
// UMACTUALLY_BACKEND_URL, then BACKEND_API_URL, then the local default.
func ResolveBaseURL(configured string) string {
	for _, candidate := range []string{
		configured,
		os.Getenv("UMACTUALLY_BACKEND_URL"),
		os.Getenv("BACKEND_API_URL"),
	} {
		if v := strings.TrimSpace(candidate); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return model.DefaultBackendURL
}

// BaseURL returns the resolved backend URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AnalyzeText submits free text for claim analysis
func (c *Client) AnalyzeText(ctx context.Context, text string) (*model.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	// Absent scores stay at the not-computed sentinel
	result := model.AnalysisResult{ConfidenceScore: model.ScoreNotComputed}
	if err := c.postJSON(ctx, pathTextAnalysis, model.TextAnalysisRequest{Text: text}, &result); err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	return &result, nil
}

// FetchTranscript returns the timed transcript for a YouTube URL.
// Results are cached per video and concurrent fetches of one video share a request.
func (c *Client) FetchTranscript(ctx context.Context, videoURL string) (*model.Transcript, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	key := cache.Key("transcript", videoID)
	var cached model.Transcript
	if cache.GetJSON(c.cache, key, &cached) {
		c.logger.Debug("transcript cache hit", "video_id", videoID)
		return &cached, nil
	}

	// The shared fetch must not die with whichever caller started it;
	// each caller stops waiting when its own ctx ends.
	ch := c.flight.DoChan(videoID, func() (any, error) {
		fetchCtx, cancel := c.detach(ctx)
		defer cancel()

		var tr model.Transcript
		req := model.TranscriptRequest{VideoURL: videoURL, VideoID: videoID}
		if err := c.postJSON(fetchCtx, pathTranscript, req, &tr); err != nil {
			return nil, fmt.Errorf("fetch transcript: %w", err)
		}
		if tr.Error != "" {
			return nil, &TranscriptError{VideoID: videoID, Message: tr.Error}
		}
		if len(tr.Segments) == 0 {
			return nil, &TranscriptError{VideoID: videoID, Message: "no transcript segments returned"}
		}
		if tr.VideoID == "" {
			tr.VideoID = videoID
		}

		if err := cache.SetJSON(c.cache, key, tr, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache transcript", "video_id", videoID, "error", err)
		}
		return tr, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch transcript: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		c.logger.Debug("shared in-flight transcript fetch", "video_id", videoID)
	}

	tr := res.Val.(model.Transcript)
	tr.Segments = append([]model.TranscriptSegment(nil), tr.Segments...)
	return &tr, nil
}

// detach derives a context that survives cancellation of ctx but is still
// bounded by the full retry budget
func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	budget := time.Duration(c.attempts) * c.httpClient.Timeout
	if budget <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, budget)
}

// AnalyzeVideo submits transcript segments for claim analysis. Only the
// timing and text of each segment are sent.
func (c *Client) AnalyzeVideo(ctx context.Context, videoID string, segments []model.TranscriptSegment) (*model.VideoAnalysis, error) {
	payload := make([]model.SegmentPayload, len(segments))
	for i, s := range segments {
		payload[i] = s.Payload()
	}

	result := model.VideoAnalysis{ConfidenceScore: model.ScoreNotComputed}
	req := model.VideoAnalysisRequest{VideoID: videoID, Segments: payload}
	if err := c.postJSON(ctx, pathVideoAnalysis, req, &result); err != nil {
		return nil, fmt.Errorf("analyze video: %w", err)
	}
	if result.VideoID == "" {
		result.VideoID = videoID
	}
	return &result, nil
}

// postJSON sends body and decodes the response into out, retrying transient failures
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		lastErr = c.post(ctx, endpoint, payload, out)
		if lastErr == nil || !isRetryable(ctx, lastErr) {
			return lastErr
		}
		if attempt < c.attempts {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Debug("retrying backend request", "path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			backendSleepFunc(backoff)
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyPreview))
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(preview)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return ErrResponseTooLarge
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isRetryable reports whether err is a transient failure worth another attempt
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
