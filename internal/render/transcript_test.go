package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/model"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{65, "1:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, index, size int
		start, end     int
	}{
		{10, 5, 5, 3, 8},
		{10, 0, 5, 0, 5},
		{10, 1, 5, 0, 5},
		{10, 9, 5, 5, 10},
		{3, 1, 5, 0, 3},
		{0, 0, 5, 0, 0},
	}
	for _, tt := range tests {
		start, end := Window(tt.n, tt.index, tt.size)
		if start != tt.start || end != tt.end {
			t.Errorf("Window(%d, %d, %d) = [%d, %d), want [%d, %d)", tt.n, tt.index, tt.size, start, end, tt.start, tt.end)
		}
	}
}

func transcriptSegments() []model.TranscriptSegment {
	return []model.TranscriptSegment{
		{ID: "0", Text: "Intro.", StartTime: 0, EndTime: 5},
		{ID: "1", Text: "The sky is blue today.", StartTime: 5, EndTime: 10, Claim: "sky is blue", ClaimIndex: model.IntPtr(0)},
		{ID: "2", Text: "Outro.", StartTime: 10, EndTime: 15},
	}
}

func TestTranscriptView_ScrollTo(t *testing.T) {
	var buf bytes.Buffer
	v := NewTranscriptView(&buf, NewPrinter(&buf, false), transcriptSegments(), 3)

	v.ScrollTo(1)
	out := buf.String()
	if !strings.Contains(out, "▸ 0:05 The sky is blue today. [1]") {
		t.Errorf("Expected centered active line with claim reference\n%s", out)
	}
	if !strings.Contains(out, "│  0:00 Intro.") || !strings.Contains(out, "│  0:10 Outro.") {
		t.Errorf("Expected neighbouring segments in window\n%s", out)
	}

	buf.Reset()
	v.ScrollTo(-1)
	v.ScrollTo(7)
	if buf.Len() != 0 {
		t.Errorf("Expected out-of-range scroll to print nothing, got %q", buf.String())
	}
}

func TestTranscriptView_DrivenByTracker(t *testing.T) {
	var buf bytes.Buffer
	segments := transcriptSegments()
	view := NewTranscriptView(&buf, NewPrinter(&buf, false), segments, 3)
	scroller := align.NewAutoScroller(view, align.WithAfterFunc(func(d time.Duration, f func()) align.Stopper {
		return time.AfterFunc(time.Hour, f)
	}))
	defer scroller.Stop()
	tracker := align.NewTracker(segments, scroller, view.SetActive)

	tracker.Observe(6, true)
	out := buf.String()
	if strings.Count(out, "┌ transcript") != 1 {
		t.Errorf("Expected one scrolled window while following playback\n%s", out)
	}
	if !strings.Contains(out, "▶ 0:05 The sky is blue today. [1]") {
		t.Errorf("Expected active line\n%s", out)
	}

	// A manual gesture suspends following; the active line still updates
	buf.Reset()
	scroller.UserScrolled()
	tracker.Observe(11, true)
	out = buf.String()
	if strings.Contains(out, "┌ transcript") {
		t.Errorf("Expected no scrolling after a manual gesture\n%s", out)
	}
	if !strings.Contains(out, "▶ 0:10 Outro.") {
		t.Errorf("Expected active line after gesture\n%s", out)
	}
}

func TestHistoryTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		{ID: "id-002", CreatedAt: now.Add(-5 * time.Minute), PreviewText: "The sky is blue.", Kind: model.KindText,
			Result: model.AnalysisResult{ConfidenceScore: 80}},
		{ID: "id-001", CreatedAt: now.Add(-3 * time.Hour), PreviewText: "Welcome back...", Kind: model.KindVideo,
			Result: model.AnalysisResult{ConfidenceScore: model.ScoreNotComputed}},
	}

	var buf bytes.Buffer
	HistoryTable(&buf, entries, now)
	out := buf.String()

	for _, want := range []string{"ID", "PREVIEW", "id-002", "5 min ago", "80%", "The sky is blue.", "id-001", "video", "3 hrs ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q\n%s", want, out)
		}
	}
	if strings.Index(out, "id-002") > strings.Index(out, "id-001") {
		t.Error("Expected entries in the given order")
	}
}
