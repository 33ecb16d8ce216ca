// Package analysis routes submissions to the backend and records the results.
package analysis

import (
	"strings"

	"github.com/ppiankov/umactually/internal/backend"
)

// Screen is the view a submission leads to
type Screen string

const (
	ScreenMain    Screen = "main"    // Nothing submitted
	ScreenText    Screen = "text"    // Free text analysis
	ScreenVideo   Screen = "video"   // YouTube transcript analysis
	ScreenInvalid Screen = "invalid" // A URL that is not a YouTube video
)

// Classify decides which flow handles input
func Classify(input string) Screen {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return ScreenMain
	case backend.IsYouTubeURL(input):
		return ScreenVideo
	case backend.IsPlainURL(input):
		return ScreenInvalid
	default:
		return ScreenText
	}
}
