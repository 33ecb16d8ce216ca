package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVideoURL is returned when no YouTube video ID can be extracted
	ErrInvalidVideoURL = errors.New("invalid YouTube URL")
	// ErrEmptyInput is returned for blank text submissions
	ErrEmptyInput = errors.New("empty input")
	// ErrResponseTooLarge is returned when a response exceeds MaxBodyBytes
	ErrResponseTooLarge = errors.New("response exceeds size limit")
)

// StatusError is a non-2xx backend response
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend returned %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("backend returned %s", e.Status)
}

// Temporary reports whether retrying may succeed
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}

// TranscriptError is a recoverable failure reported in the transcript body,
// such as a video without captions
type TranscriptError struct {
	VideoID string
	Message string
}

func (e *TranscriptError) Error() string {
	return fmt.Sprintf("transcript unavailable for %s: %s", e.VideoID, e.Message)
}
