package cli

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/spf13/cobra"
)

var segmentNumber int

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources <id> [claim-number]",
	Short: "Show the sources behind a claim of a past analysis",
	Long: `Sources prints the sources backing one claim of a stored analysis.
Claims are numbered from 1, as shown next to highlighted text.
Without a claim number every highlighted claim is listed.

Example:
  umactually sources 0190a6c2-... 2
  umactually sources 0190a6c2-... --segment 14`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().IntVar(&segmentNumber, "segment", 0, "resolve the claim highlighted in this transcript segment (1-based)")
}

func runSources(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	out, err := openEntry(a, args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	switch {
	case segmentNumber > 0:
		return printSegmentSources(a, out, segmentNumber)
	case len(args) == 2:
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("claim number must be a positive integer, got %q", args[1])
		}
		group, ok := align.SourcesFor(out.Result.SourceGroups, n-1)
		if !ok {
			fmt.Fprintf(w, "Claim %d: %s\n", n, a.printer.Dim("no sources"))
			return nil
		}
		a.printer.SourceGroup(n-1, group)
		return nil
	}

	markers := render.Markers(out.Result.Content)
	if len(markers) == 0 && len(out.Result.SourceGroups) == 0 {
		fmt.Fprintln(w, "This analysis has no highlighted claims.")
		return nil
	}
	a.printer.Header("Highlighted claims")
	for _, m := range markers {
		label := a.printer.Dim("no sources")
		if g, ok := render.ResolveMarker(out.Result, m); ok {
			label = fmt.Sprintf("%d sources", len(g.Sources))
		}
		fmt.Fprintf(w, "[%d] %s  %s\n", m.Index+1, a.printer.Claim(m.Text), label)
	}
	if len(markers) == 0 {
		for i, g := range out.Result.SourceGroups {
			fmt.Fprintf(w, "[%d] %s  %d sources\n", i+1, a.printer.Claim(g.ClaimText), len(g.Sources))
		}
	}
	return nil
}

// printSegmentSources follows a transcript segment's claim to its sources
func printSegmentSources(a *app, out *analysis.Outcome, n int) error {
	if n > len(out.Transcript) {
		return fmt.Errorf("segment %d out of range: analysis has %d transcript segments", n, len(out.Transcript))
	}
	seg := out.Transcript[n-1]
	h := align.HighlightSegment(seg)
	w := a.printer.Out()

	fmt.Fprintf(w, "%s %s\n", a.printer.Dim(render.FormatTimestamp(seg.StartTime)), seg.Text)
	if !h.HasClaim() {
		fmt.Fprintln(w, a.printer.Dim("This segment has no highlighted claim."))
		return nil
	}
	group, ok := align.SourcesFor(out.Result.SourceGroups, h.ClaimIndex)
	if !ok {
		fmt.Fprintf(w, "%s  %s\n", a.printer.Claim(h.Claim), a.printer.Dim("no sources"))
		return nil
	}
	a.printer.SourceGroup(h.ClaimIndex, group)
	return nil
}
