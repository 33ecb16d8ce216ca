package align

import (
	"testing"

	"github.com/ppiankov/umactually/internal/model"
)

func threeSegments() []model.TranscriptSegment {
	return []model.TranscriptSegment{
		{ID: "a", Text: "first", StartTime: 0, EndTime: 5},
		{ID: "b", Text: "second", StartTime: 5, EndTime: 10},
		{ID: "c", Text: "third", StartTime: 10, EndTime: 15},
	}
}

func TestActiveSegment(t *testing.T) {
	segs := threeSegments()

	tests := []struct {
		t    float64
		want int
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{7, 1},
		{10, 2},
		{14.9, 2},
		{15, -1},
		{-1, -1},
		{100, -1},
	}

	for _, tt := range tests {
		if got := ActiveSegment(segs, tt.t); got != tt.want {
			t.Errorf("ActiveSegment(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestActiveSegment_Gap(t *testing.T) {
	segs := []model.TranscriptSegment{
		{StartTime: 0, EndTime: 2},
		{StartTime: 4, EndTime: 6},
	}
	if got := ActiveSegment(segs, 3); got != -1 {
		t.Errorf("Expected -1 in gap, got %d", got)
	}
	if got := ActiveSegment(nil, 3); got != -1 {
		t.Errorf("Expected -1 for empty transcript, got %d", got)
	}
}

func TestSourcesFor(t *testing.T) {
	groups := []model.SourceGroup{{ClaimText: "one"}, {ClaimText: "two"}}

	if g, ok := SourcesFor(groups, 1); !ok || g.ClaimText != "two" {
		t.Errorf("Expected second group, got %+v (ok=%v)", g, ok)
	}
	for _, idx := range []int{-1, 2, 99} {
		if _, ok := SourcesFor(groups, idx); ok {
			t.Errorf("Expected no sources for index %d", idx)
		}
	}
}

func TestHighlightSegment(t *testing.T) {
	seg := model.TranscriptSegment{
		Text:       "Officials said the bridge opened in 1932. Traffic followed.",
		Claim:      "the bridge opened",
		ClaimIndex: model.IntPtr(2),
	}

	h := HighlightSegment(seg)
	if h.Before != "Officials said " {
		t.Errorf("Unexpected Before %q", h.Before)
	}
	if h.Claim != "the bridge opened in 1932." {
		t.Errorf("Unexpected Claim %q", h.Claim)
	}
	if h.After != " Traffic followed." {
		t.Errorf("Unexpected After %q", h.After)
	}
	if h.ClaimIndex != 2 || h.Match != MatchExact {
		t.Errorf("Unexpected index/match: %d %s", h.ClaimIndex, h.Match)
	}
}

func TestHighlightSegment_FallbackWholeSegment(t *testing.T) {
	seg := model.TranscriptSegment{
		Text:       "Completely unrelated text.",
		Claim:      "nonexistent phrase here",
		ClaimIndex: model.IntPtr(0),
	}

	h := HighlightSegment(seg)
	if !h.HasClaim() || h.Claim != seg.Text {
		t.Errorf("Expected whole segment highlighted, got %+v", h)
	}
	if h.Match != MatchNone {
		t.Errorf("Expected MatchNone, got %s", h.Match)
	}
}

func TestHighlightSegment_NoClaim(t *testing.T) {
	h := HighlightSegment(model.TranscriptSegment{Text: "plain"})
	if h.HasClaim() || h.Before != "plain" || h.ClaimIndex != -1 {
		t.Errorf("Unexpected highlight %+v", h)
	}
}
