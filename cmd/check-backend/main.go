// Manual smoke check against a running analysis backend.
// Exercises the text, transcript and video endpoints end to end.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/umactually/internal/backend"
	"github.com/ppiankov/umactually/internal/model"
)

func main() {
	fmt.Println("=== Backend Smoke Check ===")

	cfg := model.DefaultConfig().Backend
	if len(os.Args) > 1 {
		cfg.BaseURL = os.Args[1]
	}
	client := backend.New(cfg)
	fmt.Printf("Backend: %s\n\n", client.BaseURL())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failed := 0

	fmt.Println("Text analysis")
	fmt.Println(strings.Repeat("-", 60))
	text, err := client.AnalyzeText(ctx, "The Great Wall of China is visible from space with the naked eye.")
	if err != nil {
		failed++
		fmt.Printf("  ✗ %v\n", err)
	} else {
		fmt.Printf("  ✓ confidence %d (%s), %d claims\n", text.ConfidenceScore, text.ConfidenceBand(), len(text.SourceGroups))
	}
	fmt.Println()

	videoURL := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if len(os.Args) > 2 {
		videoURL = os.Args[2]
	}

	fmt.Printf("Transcript: %s\n", videoURL)
	fmt.Println(strings.Repeat("-", 60))
	tr, err := client.FetchTranscript(ctx, videoURL)
	var trErr *backend.TranscriptError
	switch {
	case errors.As(err, &trErr):
		failed++
		fmt.Printf("  ✗ backend reported: %s\n", trErr.Message)
	case err != nil:
		failed++
		fmt.Printf("  ✗ %v\n", err)
	default:
		fmt.Printf("  ✓ %d segments, title %q\n", len(tr.Segments), tr.Title)

		fmt.Println()
		fmt.Println("Video analysis")
		fmt.Println(strings.Repeat("-", 60))
		va, err := client.AnalyzeVideo(ctx, tr.VideoID, tr.Segments)
		if err != nil {
			failed++
			fmt.Printf("  ✗ %v\n", err)
		} else {
			claims := 0
			for _, s := range va.Segments {
				if s.Claim != "" {
					claims++
				}
			}
			fmt.Printf("  ✓ confidence %d, %d of %d segments carry a claim\n", va.ConfidenceScore, claims, len(va.Segments))
		}
	}

	fmt.Println("\n=== Check Complete ===")
	if failed > 0 {
		fmt.Printf("%d checks failed\n", failed)
		os.Exit(1)
	}
}
