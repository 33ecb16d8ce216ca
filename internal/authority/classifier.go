// Package authority sorts cited sources into authority tiers by publisher domain.
package authority

import (
	"net/url"
	"strings"

	"github.com/ppiankov/umactually/internal/model"
)

// Classifier maps source URLs to authority tiers
type Classifier struct {
	overrides map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// NewClassifier creates a classifier from cfg. A nil cfg uses the defaults.
func NewClassifier(cfg *model.AuthorityConfig) *Classifier {
	if cfg == nil {
		cfg = &model.DefaultConfig().Authority
	}

	c := &Classifier{overrides: make(map[string]model.AuthorityTier)}
	for _, d := range cfg.PrimaryDomains {
		if d = normalizeHost(d); d != "" {
			c.primary = append(c.primary, d)
		}
	}
	for _, d := range cfg.SecondaryDomains {
		if d = normalizeHost(d); d != "" {
			c.secondary = append(c.secondary, d)
		}
	}
	for _, o := range cfg.Overrides {
		host, tier, ok := strings.Cut(o, "=")
		if !ok {
			continue
		}
		if t := ParseTier(tier); t != model.TierUnknown {
			c.overrides[normalizeHost(host)] = t
		}
	}
	return c
}

// Classify returns the tier of rawURL's publisher. Unparsable URLs are tertiary.
func (c *Classifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := normalizeHost(parsed.Hostname())

	if t, ok := c.overrides[host]; ok {
		return t
	}
	if matchesAny(host, c.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, c.secondary) {
		return model.TierSecondary
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".gov.uk") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}
	return model.TierTertiary
}

// ParseTier converts a tier name or number. Unknown names give TierUnknown.
func ParseTier(s string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	case "tertiary", "3":
		return model.TierTertiary
	default:
		return model.TierUnknown
	}
}

// matchesAny reports whether host is one of domains or a subdomain of one
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimSuffix(strings.TrimPrefix(h, "www."), ".")
}
