package render

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/model"
)

// Report is the file form of one analysis
type Report struct {
	GeneratedAt     time.Time                 `json:"generatedAt"`
	Kind            model.Kind                `json:"type"`
	HistoryID       string                    `json:"historyId,omitempty"`
	VideoURL        string                    `json:"videoUrl,omitempty"`
	Title           string                    `json:"title,omitempty"`
	ConfidenceScore int                       `json:"confidenceScores"`
	ConfidenceBand  string                    `json:"confidenceBand"`
	Reasoning       string                    `json:"reasoning"`
	PlainText       string                    `json:"plainText"`
	Claims          []ReportClaim             `json:"claims"`
	Transcript      []model.TranscriptSegment `json:"transcript,omitempty"`
}

// ReportClaim pairs a claim with its sources
type ReportClaim struct {
	Index      int               `json:"index"`
	MarkedText string            `json:"markedText,omitempty"`
	Group      model.SourceGroup `json:"group"`
}

// NewReport builds a report from a finished or reopened analysis
func NewReport(out *analysis.Outcome, now time.Time) *Report {
	kind := model.KindText
	if out.Screen == analysis.ScreenVideo {
		kind = model.KindVideo
	}

	marked := make(map[int]string)
	for _, m := range Markers(out.Result.Content) {
		if _, ok := marked[m.Index]; !ok {
			marked[m.Index] = m.Text
		}
	}

	claims := make([]ReportClaim, len(out.Result.SourceGroups))
	for i, g := range out.Result.SourceGroups {
		claims[i] = ReportClaim{Index: i, MarkedText: marked[i], Group: g}
	}

	return &Report{
		GeneratedAt:     now.UTC(),
		Kind:            kind,
		HistoryID:       out.HistoryID,
		VideoURL:        out.VideoURL,
		Title:           out.Title,
		ConfidenceScore: out.Result.ConfidenceScore,
		ConfidenceBand:  out.Result.ConfidenceBand(),
		Reasoning:       out.Result.Reasoning,
		PlainText:       PlainText(out.Result.Content),
		Claims:          claims,
		Transcript:      out.Transcript,
	}
}

// Renderer writes reports to files
type Renderer struct {
	includeFooter bool
	tiers         TierClassifier
}

// NewRenderer creates a renderer. The footer goes at the end of Markdown reports.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// WithTiers adds an authority tier column to Markdown source tables
func (r *Renderer) WithTiers(c TierClassifier) *Renderer {
	r.tiers = c
	return r
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown formats the report
func (r *Renderer) Markdown(report *Report) string {
	var b strings.Builder

	title := "Fact-check report"
	if report.Title != "" {
		title = report.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "- **Type:** %s\n", report.Kind)
	if report.ConfidenceScore == model.ScoreNotComputed {
		fmt.Fprintf(&b, "- **Confidence:** not scored\n")
	} else {
		fmt.Fprintf(&b, "- **Confidence:** %d%% (%s)\n", report.ConfidenceScore, report.ConfidenceBand)
	}
	if report.VideoURL != "" {
		fmt.Fprintf(&b, "- **Video:** %s\n", report.VideoURL)
	}
	if report.HistoryID != "" {
		fmt.Fprintf(&b, "- **History ID:** `%s`\n", report.HistoryID)
	}
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format(time.RFC3339))

	if report.Reasoning != "" {
		fmt.Fprintf(&b, "\n## Reasoning\n\n%s\n", report.Reasoning)
	}

	if report.Kind == model.KindText && report.PlainText != "" {
		fmt.Fprintf(&b, "\n## Content\n\n%s\n", report.PlainText)
	}

	if len(report.Claims) > 0 {
		fmt.Fprintf(&b, "\n## Claims\n")
		for _, c := range report.Claims {
			r.writeClaim(&b, c)
		}
	}

	if len(report.Transcript) > 0 {
		fmt.Fprintf(&b, "\n## Transcript\n\n")
		for _, seg := range report.Transcript {
			fmt.Fprintf(&b, "- `%s` %s\n", FormatTimestamp(seg.StartTime), markdownSegment(seg))
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_Scores and stances come from the analysis backend. They describe source support, not truth._\n")
	}
	return b.String()
}

func (r *Renderer) writeClaim(b *strings.Builder, c ReportClaim) {
	text := c.Group.ClaimText
	if text == "" {
		text = c.MarkedText
	}
	fmt.Fprintf(b, "\n### [%d] %s\n\n", c.Index+1, text)
	fmt.Fprintf(b, "*%d%% confidence*", int(math.Round(c.Group.RatingPercent)))
	if c.Group.ConfidenceReason != "" {
		fmt.Fprintf(b, ": %s", c.Group.ConfidenceReason)
	}
	b.WriteString("\n")

	if len(c.Group.Sources) == 0 {
		b.WriteString("\nNo sources.\n")
		return
	}

	if r.tiers != nil {
		b.WriteString("\n| Stance | Source | Tier | Posted |\n|---|---|---|---|\n")
	} else {
		b.WriteString("\n| Stance | Source | Posted |\n|---|---|---|\n")
	}
	for _, s := range c.Group.Sources {
		source := escapeCell(s.Title)
		if s.URL != "" {
			source = fmt.Sprintf("[%s](%s)", source, s.URL)
		}
		if r.tiers != nil {
			tier := model.TierUnknown
			if s.URL != "" {
				tier = r.tiers.Classify(s.URL)
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n", s.Stance.Label(), source, tier, escapeCell(s.DatePosted))
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", s.Stance.Label(), source, escapeCell(s.DatePosted))
	}
}

func markdownSegment(seg model.TranscriptSegment) string {
	h := align.HighlightSegment(seg)
	if !h.HasClaim() {
		return seg.Text
	}
	s := h.Before + "**" + strings.TrimSpace(h.Claim) + "**" + h.After
	if h.ClaimIndex >= 0 {
		s += fmt.Sprintf(" [%d]", h.ClaimIndex+1)
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
