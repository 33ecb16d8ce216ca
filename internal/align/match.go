// Package align maps playback time to transcript segments and claims to
// highlightable spans of segment text.
package align

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minFuzzyWords is the shortest word run accepted by the fuzzy matcher
const minFuzzyWords = 2

// Span is a byte range [Start, End) within a segment's text
type Span struct {
	Start int
	End   int
}

// Text returns the spanned substring of s
func (sp Span) Text(s string) string {
	return s[sp.Start:sp.End]
}

// MatchKind records which strategy located a claim
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFold
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFold:
		return "case-insensitive"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// FindClaimSpan locates claim inside text and extends the match to the end
// of its sentence. Strategies are tried in order: exact substring,
// case-insensitive substring, then the longest run of at least two
// consecutive shared words.
func FindClaimSpan(text, claim string) (Span, bool) {
	sp, kind := matchClaim(text, claim)
	return sp, kind != MatchNone
}

func matchClaim(text, claim string) (Span, MatchKind) {
	if strings.TrimSpace(claim) == "" || text == "" {
		return Span{}, MatchNone
	}

	if i := strings.Index(text, claim); i >= 0 {
		return extendToSentenceEnd(text, i, i+len(claim)), MatchExact
	}

	if start, end, ok := indexFold(text, claim); ok {
		return extendToSentenceEnd(text, start, end), MatchFold
	}

	if start, end, ok := longestWordRun(text, claim); ok {
		return extendToSentenceEnd(text, start, end), MatchFuzzy
	}

	return Span{}, MatchNone
}

// indexFold finds the first case-insensitive occurrence of sub in s and
// returns byte offsets into s
func indexFold(s, sub string) (int, int, bool) {
	for i := range s {
		if end, ok := hasPrefixFold(s[i:], sub); ok {
			return i, i + end, true
		}
	}
	return 0, 0, false
}

// hasPrefixFold reports whether s starts with prefix under simple case
// folding, and how many bytes of s the prefix consumed
func hasPrefixFold(s, prefix string) (int, bool) {
	consumed := 0
	for prefix != "" {
		if s == "" {
			return 0, false
		}
		r1, n1 := utf8.DecodeRuneInString(s)
		r2, n2 := utf8.DecodeRuneInString(prefix)
		if r1 != r2 && unicode.ToLower(r1) != unicode.ToLower(r2) {
			return 0, false
		}
		s, prefix = s[n1:], prefix[n2:]
		consumed += n1
	}
	return consumed, true
}

type word struct {
	text  string
	start int
	end   int
}

// splitWords splits s on whitespace, keeping byte offsets
func splitWords(s string) []word {
	var words []word
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, word{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{text: s[start:], start: start, end: len(s)})
	}
	return words
}

// longestWordRun finds the longest run of consecutive words shared by text
// and claim. Ties go to the leftmost run in text, then in claim.
func longestWordRun(text, claim string) (int, int, bool) {
	tw := splitWords(text)
	cw := strings.Fields(claim)
	if len(tw) == 0 || len(cw) == 0 {
		return 0, 0, false
	}

	// prev[j+1] holds the run length ending at tw[i-1], cw[j]
	prev := make([]int, len(cw)+1)
	cur := make([]int, len(cw)+1)
	bestLen, bestEnd := 0, 0

	for i := range tw {
		for j := range cw {
			if tw[i].text == cw[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > bestLen {
					bestLen = cur[j+1]
					bestEnd = i
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}

	if bestLen < minFuzzyWords {
		return 0, 0, false
	}
	first := tw[bestEnd-bestLen+1]
	return first.start, tw[bestEnd].end, true
}

// extendToSentenceEnd pushes end forward to the next '.', '!' or '?'
// (inclusive), or to the end of text. A match already ending on a
// terminator is left alone.
func extendToSentenceEnd(text string, start, end int) Span {
	if end > start {
		if last, _ := utf8.DecodeLastRuneInString(text[start:end]); isTerminator(last) {
			return Span{Start: start, End: end}
		}
	}
	if i := strings.IndexAny(text[end:], ".!?"); i >= 0 {
		return Span{Start: start, End: end + i + 1}
	}
	return Span{Start: start, End: len(text)}
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
