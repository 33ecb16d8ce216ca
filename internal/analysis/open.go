package analysis

import (
	"fmt"

	"github.com/ppiankov/umactually/internal/model"
)

// Lookup finds stored analyses by ID
type Lookup interface {
	Get(id string) (model.HistoryEntry, bool)
}

// Open loads a stored analysis for revisiting
func Open(store Lookup, id string) (*Outcome, error) {
	entry, ok := store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	screen := ScreenText
	if entry.Kind == model.KindVideo {
		screen = ScreenVideo
	}
	return &Outcome{
		Screen:     screen,
		Input:      entry.PreviewText,
		Result:     entry.Result,
		Transcript: entry.Transcript,
		VideoURL:   entry.VideoURL,
		HistoryID:  entry.ID,
	}, nil
}
