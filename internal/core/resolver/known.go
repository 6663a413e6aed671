package resolver

import (
	"regexp"
	"strings"
)

// exactDomains maps well-known institution names to their domains.
var exactDomains = map[string]string{
	"princeton university":                "princeton.edu",
	"george washington university":        "gwu.edu",
	"university of iowa":                  "uiowa.edu",
	"university of rochester":             "rochester.edu",
	"university of north carolina system": "northcarolina.edu",
	"university of colorado system":       "cu.edu",
	"lockheed martin corporation":         "lockheedmartin.com",
	"conagra foods":                       "conagrafoods.com",
	"nrg energy":                          "nrg.com",
	"hexagon":                             "hexagon.com",
}

var universityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^university of (.+)$`),
	regexp.MustCompile(`(?i)^(.+) university$`),
}

// KnownDomain guesses a domain from a display name alone, for entities
// whose URLs resolved to nothing. Exact institution names are checked
// before the generic university patterns.
func KnownDomain(displayName string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return "", false
	}

	if domain, ok := exactDomains[name]; ok {
		return domain, true
	}

	for _, pattern := range universityPatterns {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		captured := strings.TrimSpace(match[1])
		if captured == "" {
			continue
		}
		return strings.ReplaceAll(captured, " ", "") + ".edu", true
	}
	return "", false
}

// excludedDomains never carry a company's own logo; fetching from them
// wastes the rate budget and returns the platform's branding instead.
var excludedDomains = []string{
	"linkedin.com",
	"facebook.com",
	"twitter.com",
	"wikipedia.org",
	"bloomberg.com",
	"reuters.com",
	"youtube.com",
	"instagram.com",
}

// Excluded reports whether a domain belongs to a social or reference
// platform that should never be queried for a logo.
func Excluded(domain string) bool {
	value := strings.ToLower(domain)
	for _, excluded := range excludedDomains {
		if strings.Contains(value, excluded) {
			return true
		}
	}
	return false
}
