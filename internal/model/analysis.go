package model

// ScoreNotComputed is the sentinel confidence score for results the backend has not scored yet
const ScoreNotComputed = -1

// AnalysisResult is the backend's verdict on a submission.
// It is treated as immutable once received.
type AnalysisResult struct {
	ConfidenceScore int           `json:"confidenceScores"`
	Reasoning       string        `json:"reasoning"`
	Content         string        `json:"htmlContent"`
	SourceGroups    []SourceGroup `json:"sourcesList"`
}

// Scored reports whether the backend computed a confidence score
func (r AnalysisResult) Scored() bool {
	return r.ConfidenceScore != ScoreNotComputed
}

// ConfidenceBand buckets the score for display
func (r AnalysisResult) ConfidenceBand() string {
	if !r.Scored() {
		return "pending"
	}
	return BandFor(r.ConfidenceScore)
}

// BandFor buckets a 0-100 score: up to 30 is low, up to 60 medium, above is high
func BandFor(score int) string {
	switch {
	case score <= 30:
		return "low"
	case score <= 60:
		return "medium"
	default:
		return "high"
	}
}

// TextAnalysisRequest is the body of POST /text-analysis
type TextAnalysisRequest struct {
	Text string `json:"text"`
}

// VideoAnalysisRequest is the body of POST /video-analysis
type VideoAnalysisRequest struct {
	VideoID  string           `json:"videoId"`
	Segments []SegmentPayload `json:"segments"`
}

// VideoAnalysis is the response of POST /video-analysis
type VideoAnalysis struct {
	VideoID         string              `json:"videoId"`
	ConfidenceScore int                 `json:"confidenceScores"`
	Reasoning       string              `json:"reasoning"`
	Segments        []TranscriptSegment `json:"segments"`
	SourceGroups    []SourceGroup       `json:"sourcesList"`
}
