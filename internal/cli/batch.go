package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ppiankov/umactually/internal/history"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/ppiankov/umactually/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many inputs from a file in parallel",
	Long: `Batch analyzes every input listed in a file:
- One input per line: text or a YouTube URL
- Blank lines and lines starting with # are skipped
- Inputs run in parallel with a configurable worker count
- Each analysis is saved to history and written as JSON and Markdown

Example:
  umactually batch inputs.txt
  umactually batch inputs.txt --concurrency 2 --output-dir ./reports
  umactually batch inputs.txt --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./umactually-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the transcript cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  umactually Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Backend:      %s\n", a.client.BaseURL())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Reading inputs from file...\n")
	inputs, err := worker.ReadInputsFromFile(file)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d inputs\n", len(inputs))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Processing with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	var done atomic.Int32
	processor := worker.NewBatchProcessor(a.analyzer, cfg.Concurrency.Workers,
		worker.WithProgress(func(r *worker.SubmitResult) {
			n := done.Add(1)
			status := "✓"
			if r.Error != nil {
				status = "✗"
			}
			fmt.Fprintf(os.Stderr, "  [%d/%d] %s %s (%s)\n", n, len(inputs), status,
				history.Preview(r.Input), r.Duration.Round(time.Millisecond))
		}),
	)
	results := processor.ProcessInputs(ctx, inputs)
	if skipped := len(inputs) - len(results); skipped > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d inputs not started: %v\n", skipped, ctx.Err())
	}

	fmt.Fprintf(os.Stderr, "\n")
	renderer := a.renderer(!noFooter)
	now := time.Now()
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", history.Preview(result.Input), explain(result.Error))
			continue
		}

		report := render.NewReport(result.Outcome, now)
		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(history.Preview(result.Input)))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", slug, err)
			continue
		}
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", slug, err)
			continue
		}
		if result.Outcome.HistoryErr != nil {
			fmt.Fprintf(os.Stderr, "⚠ %s: not saved to history: %v\n", slug, result.Outcome.HistoryErr)
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (confidence: %s)\n", slug, scoreLabel(report.ConfidenceScore))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d inputs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d inputs failed", failureCount)
	}
	return nil
}

func scoreLabel(score int) string {
	if score < 0 {
		return "not scored"
	}
	return fmt.Sprintf("%d/100", score)
}

// sanitizeFilename turns arbitrary text into a safe file name stem
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
		"\n", "-",
		"\t", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-_")

	// Limit length on a rune boundary
	if runes := []rune(s); len(runes) > 60 {
		s = strings.TrimRight(string(runes[:60]), ".-_")
	}
	if s == "" {
		return "analysis"
	}
	return s
}
