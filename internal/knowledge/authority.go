package knowledge

import (
	"net/url"
	"strings"
)

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Laws, statutes, academic papers, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, tourism sites
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

// AuthorityClassifier classifies knowledge sources into authority tiers.
// The verifier discounts confidence for claims backed only by tertiary
// sources.
type AuthorityClassifier struct {
	primaryMap   map[string]bool
	secondaryMap map[string]bool
}

var defaultPrimaryDomains = []string{
	"doi.org", "arxiv.org", "pubmed.ncbi.nlm.nih.gov", "nature.com",
	"europa.eu", "legislation.gov.uk",
}

var defaultSecondaryDomains = []string{
	"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
	"bbc.com", "bbc.co.uk", "nytimes.com",
}

// NewAuthorityClassifier creates a classifier. Extra domains extend the
// built-in primary/secondary lists.
func NewAuthorityClassifier(extraPrimary, extraSecondary []string) *AuthorityClassifier {
	c := &AuthorityClassifier{
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
	}
	for _, d := range defaultPrimaryDomains {
		c.primaryMap[d] = true
	}
	for _, d := range extraPrimary {
		c.primaryMap[d] = true
	}
	for _, d := range defaultSecondaryDomains {
		c.secondaryMap[d] = true
	}
	for _, d := range extraSecondary {
		c.secondaryMap[d] = true
	}
	return c
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) AuthorityTier {
	if rawURL == "" {
		return TierUnknown
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return TierTertiary
	}

	host := parsed.Host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}

	if matchesDomain(a.primaryMap, host) {
		return TierPrimary
	}
	if matchesDomain(a.secondaryMap, host) {
		return TierSecondary
	}

	// Government and academic hosts are primary even when unlisted
	if strings.HasSuffix(host, ".gov") || strings.Contains(host, ".gov.") ||
		strings.HasSuffix(host, ".edu") || strings.Contains(host, ".edu.") {
		return TierPrimary
	}

	return TierTertiary
}

func matchesDomain(domains map[string]bool, host string) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
