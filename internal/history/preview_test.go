package history

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "The sky is blue.", "The sky is blue."},
		{"markup stripped", `<p>The <span class="marker" data-claim-index="0">sky</span> is blue.</p>`, "The sky is blue."},
		{"entities decoded", "<b>Fish &amp; chips</b>", "Fish & chips"},
		{"script skipped", "<script>alert(1)</script>Visible", "Visible"},
		{"whitespace collapsed", "  a \n\n b\t c  ", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.content); got != tt.want {
				t.Errorf("Preview(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestPreview_Truncates(t *testing.T) {
	content := "<p>" + strings.Repeat("word ", 40) + "</p>"

	got := Preview(content)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n > PreviewLimit {
		t.Errorf("Expected at most %d visible runes, got %d", PreviewLimit, n)
	}
}

func TestPreview_ExactlyAtLimitNotTruncated(t *testing.T) {
	content := strings.Repeat("é", PreviewLimit)
	if got := Preview(content); got != content {
		t.Errorf("Expected untouched preview, got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{5 * time.Minute, "5 min ago"},
		{time.Hour, "1 hr ago"},
		{3 * time.Hour, "3 hrs ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{30 * 24 * time.Hour, "Feb 8, 2026"},
	}

	for _, tt := range tests {
		if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
