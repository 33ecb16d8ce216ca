package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/umactually/internal/cache"
	"github.com/ppiankov/umactually/internal/model"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := backendSleepFunc
	backendSleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { backendSleepFunc = orig })
	return &slept
}

func newTestClient(url string, opts ...Option) *Client {
	return New(model.BackendConfig{
		BaseURL:       url,
		Timeout:       5 * time.Second,
		UserAgent:     "umactually-test",
		MaxBodyBytes:  1 << 20,
		RetryAttempts: 3,
	}, opts...)
}

func TestAnalyzeText(t *testing.T) {
	var got model.TextAnalysisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/text-analysis" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "umactually-test" {
			t.Errorf("Expected user agent umactually-test, got %q", ua)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{
			"confidenceScores": 72,
			"reasoning": "Mostly supported",
			"htmlContent": "<p>The <span class=\"marker\" data-claim-index=\"0\">sky is blue</span>.</p>",
			"sourcesList": [{"claim": "sky is blue", "sources": [{"title": "NASA", "url": "https://nasa.gov", "ratingStance": "Mostly Support"}]}]
		}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL + "/api").AnalyzeText(context.Background(), "The sky is blue.")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if got.Text != "The sky is blue." {
		t.Errorf("Expected request text to be forwarded, got %q", got.Text)
	}
	if result.ConfidenceScore != 72 {
		t.Errorf("Expected score 72, got %d", result.ConfidenceScore)
	}
	if len(result.SourceGroups) != 1 || result.SourceGroups[0].Sources[0].Stance != model.StanceMostlySupport {
		t.Errorf("Unexpected source groups: %+v", result.SourceGroups)
	}
}

func TestAnalyzeText_MissingScoreIsNotComputed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reasoning": "pending", "htmlContent": "x"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).AnalyzeText(context.Background(), "x")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if result.Scored() {
		t.Errorf("Expected unscored result, got score %d", result.ConfidenceScore)
	}
}

func TestAnalyzeText_Empty(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	if _, err := c.AnalyzeText(context.Background(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestRetry_ServerErrorThenSuccess(t *testing.T) {
	slept := noSleep(t)
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"confidenceScores": 10}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).AnalyzeText(context.Background(), "x")
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.ConfidenceScore != 10 {
		t.Errorf("Expected score 10, got %d", result.ConfidenceScore)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Errorf("Expected linear backoff [1s 2s], got %v", *slept)
	}
}

func TestRetry_RateLimited(t *testing.T) {
	noSleep(t)
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeText(context.Background(), "x")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 StatusError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	slept := noSleep(t)
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeText(context.Background(), "x")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest || statusErr.Body != "bad input" {
		t.Errorf("Unexpected status error: %+v", statusErr)
	}
	if calls.Load() != 1 || len(*slept) != 0 {
		t.Errorf("Expected a single attempt without sleeping, got %d calls and %v", calls.Load(), *slept)
	}
}

func TestResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reasoning": "` + strings.Repeat("a", 200) + `"}`))
	}))
	defer server.Close()

	c := New(model.BackendConfig{BaseURL: server.URL, MaxBodyBytes: 64, RetryAttempts: 1})
	if _, err := c.AnalyzeText(context.Background(), "x"); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("Expected ErrResponseTooLarge, got %v", err)
	}
}

func TestFetchTranscript_InvalidURL(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	if _, err := c.FetchTranscript(context.Background(), "https://example.com/watch"); !errors.Is(err, ErrInvalidVideoURL) {
		t.Errorf("Expected ErrInvalidVideoURL, got %v", err)
	}
}

func TestFetchTranscript_BodyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Transcripts are disabled for this video"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	var trErr *TranscriptError
	if !errors.As(err, &trErr) {
		t.Fatalf("Expected TranscriptError, got %v", err)
	}
	if trErr.VideoID != "dQw4w9WgXcQ" || !strings.Contains(trErr.Message, "disabled") {
		t.Errorf("Unexpected transcript error: %+v", trErr)
	}
}

func TestFetchTranscript_CachedAndShared(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req model.TranscriptRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.VideoID != "dQw4w9WgXcQ" {
			t.Errorf("Expected extracted video ID, got %q", req.VideoID)
		}
		<-release
		_, _ = w.Write([]byte(`{"segments": [
			{"id": "0", "text": "Hello", "startTime": 0, "endTime": 5},
			{"id": "1", "text": "world", "startTime": 5, "endTime": 10}
		]}`))
	}))
	defer server.Close()

	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	c := newTestClient(server.URL, WithCache(mem, time.Minute))

	const n = 4
	var wg sync.WaitGroup
	results := make([]*model.Transcript, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.FetchTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Fetch %d failed: %v", i, errs[i])
		}
		if len(results[i].Segments) != 2 || results[i].VideoID != "dQw4w9WgXcQ" {
			t.Errorf("Unexpected transcript %d: %+v", i, results[i])
		}
	}

	// Mutating one caller's copy must not leak into the others
	results[0].Segments[0].Text = "changed"
	if results[1].Segments[0].Text != "Hello" {
		t.Error("Expected callers to receive independent segment slices")
	}

	// Served from cache without another request
	before := calls.Load()
	if _, err := c.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Cached fetch failed: %v", err)
	}
	if calls.Load() != before {
		t.Errorf("Expected cache hit, backend saw %d extra calls", calls.Load()-before)
	}
	if before < 1 || before > n {
		t.Errorf("Unexpected backend call count %d", before)
	}
}

func TestFetchTranscript_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write([]byte(`{"segments": [{"id": "0", "text": "Hello", "startTime": 0, "endTime": 5}]}`))
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(server.URL)
	videoURL := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchTranscript(firstCtx, videoURL)
		firstErr <- err
	}()
	<-started

	type fetched struct {
		tr  *model.Transcript
		err error
	}
	second := make(chan fetched, 1)
	go func() {
		tr, err := c.FetchTranscript(context.Background(), videoURL)
		second <- fetched{tr, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected the cancelled caller to get context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cancelled caller kept waiting on the shared fetch")
	}

	release <- struct{}{}
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("Expected the live caller to succeed, got %v", got.err)
		}
		if len(got.tr.Segments) != 1 {
			t.Errorf("Expected 1 segment, got %d", len(got.tr.Segments))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Live caller never received the shared transcript")
	}
}

func TestAnalyzeVideo_SendsTrimmedSegments(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{
			"confidenceScores": 55,
			"reasoning": "Mixed",
			"segments": [{"id": "0", "text": "GDP grew", "startTime": 0, "endTime": 5, "claim": "GDP grew", "claimIndex": 0}],
			"sourcesList": [{"claim": "GDP grew"}]
		}`))
	}))
	defer server.Close()

	segments := []model.TranscriptSegment{
		{ID: "0", Text: "GDP grew", StartTime: 0, EndTime: 5, Claim: "stale", ClaimIndex: model.IntPtr(3)},
	}
	result, err := newTestClient(server.URL).AnalyzeVideo(context.Background(), "dQw4w9WgXcQ", segments)
	if err != nil {
		t.Fatalf("AnalyzeVideo failed: %v", err)
	}

	sent := raw["segments"].([]any)[0].(map[string]any)
	if _, ok := sent["claim"]; ok {
		t.Error("Expected claim annotations to be stripped from the request")
	}
	if _, ok := sent["claimIndex"]; ok {
		t.Error("Expected claim index to be stripped from the request")
	}
	if raw["videoId"] != "dQw4w9WgXcQ" {
		t.Errorf("Expected videoId in request, got %v", raw["videoId"])
	}

	if result.ConfidenceScore != 55 || len(result.Segments) != 1 || !result.Segments[0].HasClaim() {
		t.Errorf("Unexpected video analysis: %+v", result)
	}
	if result.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Expected video ID to be filled in, got %q", result.VideoID)
	}
}

type countingLimiter struct {
	calls atomic.Int32
	err   error
}

func (l *countingLimiter) Wait(ctx context.Context, rawURL string) error {
	l.calls.Add(1)
	return l.err
}

func TestLimiterIsConsulted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	lim := &countingLimiter{}
	c := newTestClient(server.URL, WithLimiter(lim))
	if _, err := c.AnalyzeText(context.Background(), "x"); err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if lim.calls.Load() != 1 {
		t.Errorf("Expected 1 limiter wait, got %d", lim.calls.Load())
	}

	lim.err = context.Canceled
	if _, err := c.AnalyzeText(context.Background(), "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected limiter error to surface, got %v", err)
	}
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv("UMACTUALLY_BACKEND_URL", "")
	t.Setenv("BACKEND_API_URL", "")

	if got := ResolveBaseURL(""); got != model.DefaultBackendURL {
		t.Errorf("Expected default URL, got %q", got)
	}

	t.Setenv("BACKEND_API_URL", "https://legacy.example/api/")
	if got := ResolveBaseURL(""); got != "https://legacy.example/api" {
		t.Errorf("Expected BACKEND_API_URL without trailing slash, got %q", got)
	}

	t.Setenv("UMACTUALLY_BACKEND_URL", "https://new.example/api")
	if got := ResolveBaseURL(""); got != "https://new.example/api" {
		t.Errorf("Expected UMACTUALLY_BACKEND_URL to win over BACKEND_API_URL, got %q", got)
	}

	if got := ResolveBaseURL("https://config.example"); got != "https://config.example" {
		t.Errorf("Expected configured URL to win, got %q", got)
	}
}
