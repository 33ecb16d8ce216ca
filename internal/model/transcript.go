package model

import "strings"

// TranscriptSegment is one timed window of spoken text
type TranscriptSegment struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Claim      string  `json:"claim,omitempty"`
	ClaimIndex *int    `json:"claimIndex,omitempty"` // Index into SourceGroups, set iff Claim is set
}

// HasClaim reports whether the segment carries a claim to highlight
func (s TranscriptSegment) HasClaim() bool {
	return s.Claim != "" && s.ClaimIndex != nil
}

// Contains reports whether t falls inside the right-open window [StartTime, EndTime)
func (s TranscriptSegment) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

// SegmentPayload is the trimmed segment shape sent for video analysis
type SegmentPayload struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Payload strips claim annotations from the segment
func (s TranscriptSegment) Payload() SegmentPayload {
	return SegmentPayload{ID: s.ID, Text: s.Text, StartTime: s.StartTime, EndTime: s.EndTime}
}

// TranscriptRequest is the body of POST /transcript
type TranscriptRequest struct {
	VideoURL string `json:"videoUrl"`
	VideoID  string `json:"videoId"`
}

// Transcript is the response of POST /transcript.
// Error is set by the backend for recoverable failures such as missing captions.
type Transcript struct {
	VideoID  string              `json:"videoId"`
	Title    string              `json:"title"`
	Segments []TranscriptSegment `json:"segments"`
	Error    string              `json:"error,omitempty"`
}

// JoinSegments flattens segment text into a single content string
func JoinSegments(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
