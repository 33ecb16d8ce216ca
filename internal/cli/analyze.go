package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/backend"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	noFooter    bool
	noCache     bool
	timeout     time.Duration
	interactive bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text | youtube-url]",
	Short: "Fact-check a piece of text or a YouTube video",
	Long: `Analyze sends the input to the fact-checking backend:
- Plain text is checked claim by claim
- A YouTube URL has its transcript fetched and checked
- Other URLs are rejected

The result is printed, saved to history, and optionally written as reports.

Example:
  umactually analyze "The Great Wall of China is visible from space."
  umactually analyze https://www.youtube.com/watch?v=dQw4w9WgXcQ --md report.md
  umactually analyze -i`,
	Args: func(cmd *cobra.Command, args []string) error {
		if interactive {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write a JSON report to this path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "write a Markdown report to this path")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the transcript cache")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read inputs line by line; a new line supersedes the running analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if interactive {
		return runInteractive(cmd, a)
	}

	input := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Debug("submitting analysis", "screen", analysis.Classify(input), "backend", a.client.BaseURL())
	fmt.Fprintf(os.Stderr, "⚙️  Analyzing...\n")

	out, err := a.analyzer.Submit(ctx, input)
	if err != nil {
		return explain(err)
	}

	printOutcome(a, out)
	return writeReports(a, out, outJSON, outMD, !noFooter)
}

// runInteractive reads one input per line. Each new line cancels the
// analysis still running for the previous one.
func runInteractive(cmd *cobra.Command, a *app) error {
	session := analysis.NewSession(a.analyzer)
	defer session.Cancel()

	results := make(chan struct {
		out *analysis.Outcome
		err error
	}, 1)
	running := 0

	fmt.Fprintf(os.Stderr, "Enter text or a YouTube URL per line (Ctrl-D to quit).\n")
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				for ; running > 0; running-- {
					r := <-results
					reportInteractive(a, r.out, r.err)
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			running++
			go func(input string) {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				out, err := session.Submit(ctx, input)
				results <- struct {
					out *analysis.Outcome
					err error
				}{out, err}
			}(line)
		case r := <-results:
			running--
			reportInteractive(a, r.out, r.err)
		}
	}
}

func reportInteractive(a *app, out *analysis.Outcome, err error) {
	switch {
	case errors.Is(err, analysis.ErrStale):
		logger.Debug("dropped superseded analysis")
	case err != nil:
		fmt.Fprintf(os.Stderr, "✗ %v\n", explain(err))
	default:
		printOutcome(a, out)
	}
}

func printOutcome(a *app, out *analysis.Outcome) {
	if out.Title != "" {
		a.printer.Header(out.Title)
	}
	a.printer.Result(out.Result)

	switch {
	case out.HistoryErr != nil:
		fmt.Fprintf(os.Stderr, "\n⚠ Not saved to history: %v\n", out.HistoryErr)
	case out.HistoryID != "":
		fmt.Fprintf(os.Stderr, "\n✓ Saved to history: %s\n", out.HistoryID)
		if out.Screen == analysis.ScreenVideo {
			fmt.Fprintf(os.Stderr, "  Replay with: umactually replay %s\n", out.HistoryID)
		}
	}
}

func writeReports(a *app, out *analysis.Outcome, jsonPath, mdPath string, footer bool) error {
	if jsonPath == "" && mdPath == "" {
		return nil
	}
	report := render.NewReport(out, time.Now())
	renderer := a.renderer(footer)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
	}
	return nil
}

// explain turns known failures into actionable messages
func explain(err error) error {
	var (
		statusErr     *backend.StatusError
		transcriptErr *backend.TranscriptError
	)
	switch {
	case errors.Is(err, backend.ErrEmptyInput):
		return fmt.Errorf("nothing to analyze: pass text or a YouTube URL")
	case errors.Is(err, analysis.ErrUnsupportedURL):
		return fmt.Errorf("%w (paste the article text instead)", err)
	case errors.Is(err, backend.ErrInvalidVideoURL):
		return fmt.Errorf("could not find a video ID in that YouTube URL")
	case errors.As(err, &transcriptErr):
		return fmt.Errorf("no transcript for video %s: %s", transcriptErr.VideoID, transcriptErr.Message)
	case errors.As(err, &statusErr):
		return fmt.Errorf("analysis failed: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("analysis timed out (raise --timeout): %w", err)
	default:
		return fmt.Errorf("analysis failed: %w", err)
	}
}
