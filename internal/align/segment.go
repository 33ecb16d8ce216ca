package align

import "github.com/ppiankov/umactually/internal/model"

// ActiveSegment returns the index of the first segment whose window
// [StartTime, EndTime) contains t, or -1 when t falls in a gap or
// outside the transcript.
func ActiveSegment(segments []model.TranscriptSegment, t float64) int {
	for i, seg := range segments {
		if seg.Contains(t) {
			return i
		}
	}
	return -1
}

// SourcesFor returns the source group a claim index points at. Missing or
// out-of-range indexes mean the claim has no sources.
func SourcesFor(groups []model.SourceGroup, claimIndex int) (model.SourceGroup, bool) {
	if claimIndex < 0 || claimIndex >= len(groups) {
		return model.SourceGroup{}, false
	}
	return groups[claimIndex], true
}

// Highlight splits a segment's text around its claim
type Highlight struct {
	Before     string
	Claim      string
	After      string
	ClaimIndex int       // -1 when the segment carries no index
	Match      MatchKind // MatchNone with a non-empty Claim means the whole segment is highlighted
}

// HasClaim reports whether any part of the segment is highlighted
func (h Highlight) HasClaim() bool {
	return h.Claim != ""
}

// HighlightSegment aligns the segment's claim to its text. A claim that
// cannot be located highlights the whole segment so it stays clickable.
func HighlightSegment(seg model.TranscriptSegment) Highlight {
	h := Highlight{ClaimIndex: -1}
	if seg.ClaimIndex != nil {
		h.ClaimIndex = *seg.ClaimIndex
	}

	if seg.Claim == "" {
		h.Before = seg.Text
		return h
	}

	span, kind := matchClaim(seg.Text, seg.Claim)
	if kind == MatchNone {
		h.Claim = seg.Text
		return h
	}

	h.Before = seg.Text[:span.Start]
	h.Claim = seg.Text[span.Start:span.End]
	h.After = seg.Text[span.End:]
	h.Match = kind
	return h
}
