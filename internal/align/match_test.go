package align

import "testing"

func TestFindClaimSpan(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		claim  string
		want   string
		wantOK bool
	}{
		{
			name:   "exact extends to sentence end",
			text:   "The sky is blue today.",
			claim:  "sky is blue",
			want:   "sky is blue today.",
			wantOK: true,
		},
		{
			name:   "case-insensitive",
			text:   "Experts agree THE SKY IS BLUE most days. Not always.",
			claim:  "the sky is blue",
			want:   "THE SKY IS BLUE most days.",
			wantOK: true,
		},
		{
			name:   "fuzzy word run",
			text:   "Reports say the economy grew last quarter significantly.",
			claim:  "the economy grew fast",
			want:   "the economy grew last quarter significantly.",
			wantOK: true,
		},
		{
			name:   "no terminator runs to end of text",
			text:   "and then inflation fell sharply",
			claim:  "inflation fell",
			want:   "inflation fell sharply",
			wantOK: true,
		},
		{
			name:   "stops at exclamation",
			text:   "Prices doubled overnight! Nobody expected it.",
			claim:  "Prices doubled",
			want:   "Prices doubled overnight!",
			wantOK: true,
		},
		{
			name:   "match already ending a sentence is not extended",
			text:   "The sky is blue. Grass is green.",
			claim:  "The sky is blue.",
			want:   "The sky is blue.",
			wantOK: true,
		},
		{
			name:   "no match",
			text:   "Completely unrelated text.",
			claim:  "nonexistent phrase here",
			wantOK: false,
		},
		{
			name:   "single shared word is not enough",
			text:   "Completely unrelated text.",
			claim:  "some unrelated phrase",
			wantOK: false,
		},
		{
			name:   "empty claim",
			text:   "Anything at all.",
			claim:  "   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := FindClaimSpan(tt.text, tt.claim)
			if ok != tt.wantOK {
				t.Fatalf("FindClaimSpan ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := span.Text(tt.text); got != tt.want {
				t.Errorf("span text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindClaimSpan_ExactBeatsFold(t *testing.T) {
	text := "SKY IS BLUE. sky is blue."
	span, ok := FindClaimSpan(text, "sky is blue")
	if !ok {
		t.Fatal("Expected a match")
	}
	if span.Start != 13 {
		t.Errorf("Expected exact match at 13, got %d", span.Start)
	}
}

func TestFindClaimSpan_FoldNonASCII(t *testing.T) {
	text := "Der Preis für ÄPFEL stieg stark."
	span, ok := FindClaimSpan(text, "äpfel stieg")
	if !ok {
		t.Fatal("Expected a match")
	}
	if got := span.Text(text); got != "ÄPFEL stieg stark." {
		t.Errorf("Unexpected span %q", got)
	}
}

func TestFindClaimSpan_FuzzyTieBreakLeftmost(t *testing.T) {
	// Both "red fox" and "blue fox" are 2-word runs; the leftmost in text wins
	text := "A blue fox ran. A red fox hid."
	span, ok := FindClaimSpan(text, "the red fox and the blue fox")
	if !ok {
		t.Fatal("Expected a match")
	}
	if got := span.Text(text); got != "blue fox ran." {
		t.Errorf("Expected leftmost run, got %q", got)
	}
}

func TestFindClaimSpan_FuzzyPrefersLongestRun(t *testing.T) {
	text := "we saw the cat. later the cat sat on the mat."
	span, ok := FindClaimSpan(text, "so the cat sat on a mat")
	if !ok {
		t.Fatal("Expected a match")
	}
	if got := span.Text(text); got != "the cat sat on the mat." {
		t.Errorf("Expected longest run, got %q", got)
	}
}

func TestMatchKind_String(t *testing.T) {
	if MatchFuzzy.String() != "fuzzy" || MatchNone.String() != "none" {
		t.Error("Unexpected MatchKind strings")
	}
}
