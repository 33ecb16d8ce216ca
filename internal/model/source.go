package model

import (
	"encoding/json"
	"strings"
)

// Stance describes how a cited source relates to a claim
type Stance string

const (
	StanceMostlySupport  Stance = "mostly"    // Source largely backs the claim
	StancePartialSupport Stance = "partial"   // Source backs part of the claim
	StanceOppose         Stance = "opposite"  // Source contradicts the claim
	StanceUndefined      Stance = "undefined" // Unknown or unrated relationship
)

// stanceLabels maps lower-cased backend labels to stances
var stanceLabels = map[string]Stance{
	"mostly support":    StanceMostlySupport,
	"mostly":            StanceMostlySupport,
	"partial support":   StancePartialSupport,
	"partially support": StancePartialSupport,
	"partial":           StancePartialSupport,
	"oppose":            StanceOppose,
	"opposite":          StanceOppose,
}

// ParseStance normalizes a raw backend label. Unknown labels become StanceUndefined.
func ParseStance(raw string) Stance {
	if s, ok := stanceLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StanceUndefined
}

// Label returns the display label for the stance
func (s Stance) Label() string {
	switch s {
	case StanceMostlySupport:
		return "Mostly Support"
	case StancePartialSupport:
		return "Partial Support"
	case StanceOppose:
		return "Opposite"
	default:
		return "Undefined"
	}
}

// UnmarshalJSON routes every decoded label through ParseStance so that
// unexpected values never fail decoding.
func (s *Stance) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StanceUndefined
		return nil
	}
	*s = ParseStance(raw)
	return nil
}

// Source is a single cited reference for a claim
type Source struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Snippet        string `json:"snippet,omitempty"`
	DatePosted     string `json:"datePosted,omitempty"`
	Stance         Stance `json:"ratingStance"`
	ClaimReference string `json:"claimReference,omitempty"` // Display-only back pointer
}

// SourceGroup is a claim together with its aggregated rating and sources
type SourceGroup struct {
	ClaimText        string   `json:"claim"`
	ConfidenceReason string   `json:"confidenceReason"`
	RatingPercent    float64  `json:"ratingPercent"`
	Sources          []Source `json:"sources"`
}

// AuthorityTier classifies how authoritative a source's publisher is
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not classified
	TierPrimary   AuthorityTier = 1 // Official documents, statutes, academic papers
	TierSecondary AuthorityTier = 2 // Encyclopedias, wire services, established fact-checkers
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
