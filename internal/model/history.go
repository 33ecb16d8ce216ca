package model

import "time"

// Kind distinguishes text submissions from video submissions
type Kind string

const (
	KindText  Kind = "text"
	KindVideo Kind = "video"
)

// HistoryEntry is a persisted past analysis
type HistoryEntry struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"createdAt"`
	PreviewText string              `json:"preview"`
	Kind        Kind                `json:"type"`
	VideoURL    string              `json:"videoUrl,omitempty"`
	Result      AnalysisResult      `json:"data"`
	Transcript  []TranscriptSegment `json:"transcript,omitempty"`
}

// Fingerprint is the tuple used to detect duplicate submissions
type Fingerprint struct {
	Preview         string
	ConfidenceScore int
	Reasoning       string
	Kind            Kind
}

// Fingerprint returns the entry's dedup key
func (e HistoryEntry) Fingerprint() Fingerprint {
	return Fingerprint{
		Preview:         e.PreviewText,
		ConfidenceScore: e.Result.ConfidenceScore,
		Reasoning:       e.Result.Reasoning,
		Kind:            e.Kind,
	}
}
