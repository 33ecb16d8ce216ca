package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/ppiankov/umactually/internal/model"
)

// ColorMode selects when output is colored
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

const scoreBarWidth = 20

// ParseColorMode parses auto, always or never
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether to emit color for mode
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// TierClassifier rates a source URL's publisher
type TierClassifier interface {
	Classify(rawURL string) model.AuthorityTier
}

// Printer writes analysis results for a terminal
type Printer struct {
	out       io.Writer
	useColors bool
	tiers     TierClassifier
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{out: out, useColors: useColors}
}

// WithTiers shows each source's authority tier next to its title
func (p *Printer) WithTiers(c TierClassifier) *Printer {
	p.tiers = c
	return p
}

// Out returns the destination writer
func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) paint(attrs []color.Attribute, s string) string {
	if !p.useColors {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Bold returns text in bold
func (p *Printer) Bold(s string) string {
	return p.paint([]color.Attribute{color.Bold}, s)
}

// Dim returns dimmed text
func (p *Printer) Dim(s string) string {
	return p.paint([]color.Attribute{color.Faint}, s)
}

// Claim styles highlighted claim text
func (p *Printer) Claim(s string) string {
	if !p.useColors {
		return s
	}
	return p.paint([]color.Attribute{color.FgYellow, color.Underline}, s)
}

// ScoreColor returns the color for a confidence percentage
func ScoreColor(score int) color.Attribute {
	switch model.BandFor(score) {
	case "low":
		return color.FgRed
	case "medium":
		return color.FgYellow
	default:
		return color.FgGreen
	}
}

// ScoreBar renders a fixed-width bar for a 0-100 score
func (p *Printer) ScoreBar(score int) string {
	if score == model.ScoreNotComputed {
		return p.Dim("[" + strings.Repeat("·", scoreBarWidth) + "] not scored")
	}

	clamped := min(max(score, 0), 100)
	filled := clamped * scoreBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", scoreBarWidth-filled)
	return fmt.Sprintf("[%s] %d%%", p.paint([]color.Attribute{ScoreColor(clamped)}, bar), score)
}

// StanceBadge renders a stance label
func (p *Printer) StanceBadge(s model.Stance) string {
	label := "[" + s.Label() + "]"
	switch s {
	case model.StanceMostlySupport:
		return p.paint([]color.Attribute{color.FgGreen}, label)
	case model.StancePartialSupport:
		return p.paint([]color.Attribute{color.FgYellow}, label)
	case model.StanceOppose:
		return p.paint([]color.Attribute{color.FgRed}, label)
	default:
		return p.paint([]color.Attribute{color.FgWhite}, label)
	}
}

// Header prints an underlined section title
func (p *Printer) Header(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", p.Bold(title), strings.Repeat("─", len([]rune(title))))
}

// Result prints the score, reasoning, annotated content and every source group
func (p *Printer) Result(r model.AnalysisResult) {
	p.Header("Confidence")
	fmt.Fprintf(p.out, "%s  %s\n", p.ScoreBar(r.ConfidenceScore), p.Dim(r.ConfidenceBand()))
	if r.Reasoning != "" {
		fmt.Fprintf(p.out, "\n%s\n", r.Reasoning)
	}

	if r.Content != "" {
		p.Header("Content")
		fmt.Fprintln(p.out, Annotated(r.Content, p.Claim))
	}

	if len(r.SourceGroups) > 0 {
		p.Header("Claims")
		for i, g := range r.SourceGroups {
			p.SourceGroup(i, g)
		}
	}
}

// SourceGroup prints one claim card and its sources
func (p *Printer) SourceGroup(index int, g model.SourceGroup) {
	percent := int(math.Round(g.RatingPercent))
	fmt.Fprintf(p.out, "\n[%d] %q  %s\n", index+1, g.ClaimText,
		p.paint([]color.Attribute{ScoreColor(percent)}, fmt.Sprintf("%d%% confidence", percent)))
	if g.ConfidenceReason != "" {
		fmt.Fprintf(p.out, "    %s\n", p.Dim(g.ConfidenceReason))
	}
	if len(g.Sources) == 0 {
		fmt.Fprintf(p.out, "    %s\n", p.Dim("no sources"))
		return
	}
	for _, s := range g.Sources {
		title := s.Title
		if p.tiers != nil && s.URL != "" {
			title += " " + p.Dim("("+p.tiers.Classify(s.URL).String()+")")
		}
		fmt.Fprintf(p.out, "    %s %s\n", p.StanceBadge(s.Stance), title)
		if s.URL != "" {
			fmt.Fprintf(p.out, "        %s\n", s.URL)
		}
		if s.Snippet != "" {
			fmt.Fprintf(p.out, "        %s\n", p.Dim(s.Snippet))
		}
		if s.DatePosted != "" {
			fmt.Fprintf(p.out, "        %s\n", p.Dim("posted "+s.DatePosted))
		}
	}
}
