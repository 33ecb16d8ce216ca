package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/model"
)

// DefaultWindow is how many segments a transcript view shows at once
const DefaultWindow = 5

// FormatTimestamp renders seconds as m:ss, or h:mm:ss past the hour
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TranscriptView prints a transcript as playback moves through it.
// ScrollTo satisfies align.Viewport by printing a window of segments
// centered on the target.
type TranscriptView struct {
	out      io.Writer
	printer  *Printer
	segments []model.TranscriptSegment
	window   int

	mu     sync.Mutex
	active int
}

var _ align.Viewport = (*TranscriptView)(nil)

// NewTranscriptView creates a view over segments
func NewTranscriptView(out io.Writer, printer *Printer, segments []model.TranscriptSegment, window int) *TranscriptView {
	if window <= 0 {
		window = DefaultWindow
	}
	return &TranscriptView{
		out:      out,
		printer:  printer,
		segments: segments,
		window:   window,
		active:   -1,
	}
}

// SetActive records the segment under the playhead and prints it
func (v *TranscriptView) SetActive(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = index
	if index < 0 || index >= len(v.segments) {
		return
	}
	fmt.Fprintf(v.out, "%s %s\n", v.printer.Bold("▶"), v.line(index))
}

// ScrollTo prints the window of segments around index
func (v *TranscriptView) ScrollTo(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.segments) {
		return
	}

	start, end := Window(len(v.segments), index, v.window)
	var b strings.Builder
	b.WriteString(v.printer.Dim("┌ transcript") + "\n")
	for i := start; i < end; i++ {
		prefix := "│  "
		if i == index {
			prefix = "│" + v.printer.Bold("▸ ")
		}
		b.WriteString(prefix + v.line(i) + "\n")
	}
	b.WriteString(v.printer.Dim("└") + "\n")
	_, _ = io.WriteString(v.out, b.String())
}

// Window returns the [start, end) range of size at most size centered on index
func Window(n, index, size int) (int, int) {
	if n <= 0 || size <= 0 {
		return 0, 0
	}
	if size >= n {
		return 0, n
	}
	start := index - size/2
	start = max(start, 0)
	end := start + size
	if end > n {
		end = n
		start = end - size
	}
	return start, end
}

func (v *TranscriptView) line(i int) string {
	seg := v.segments[i]
	return fmt.Sprintf("%s %s", v.printer.Dim(FormatTimestamp(seg.StartTime)), v.segmentText(seg))
}

func (v *TranscriptView) segmentText(seg model.TranscriptSegment) string {
	h := align.HighlightSegment(seg)
	if !h.HasClaim() {
		return seg.Text
	}
	s := h.Before + v.printer.Claim(h.Claim) + h.After
	if h.ClaimIndex >= 0 {
		s += fmt.Sprintf(" [%d]", h.ClaimIndex+1)
	}
	return s
}
