// Package resolver normalizes raw URL or domain text into canonical
// registrable domains. Resolution is pure and deterministic, no network
// access happens here.
package resolver

import (
	"net/url"
	"strings"
	"unicode"
)

// Resolve normalizes a raw URL or domain string into a lowercase
// registrable domain. The second return value reports whether the
// input yielded a usable domain.
func Resolve(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	if strings.Contains(value, "://") {
		if parsed, err := url.Parse(value); err == nil && parsed.Hostname() != "" {
			value = parsed.Hostname()
		}
	}

	// Embedded emails keep only the host part after the last @.
	if idx := strings.LastIndex(value, "@"); idx >= 0 {
		value = value[idx+1:]
	}

	value = firstToken(value)
	if value == "" {
		return "", false
	}

	value = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '<', '>', '(', ')', '[', ']':
			return -1
		}
		return r
	}, value)

	value = strings.ToLower(value)
	value = strings.TrimPrefix(value, "www.")
	value = strings.Trim(value, " .-")

	if !valid(value) {
		return "", false
	}
	return value, true
}

// firstToken splits on the delimiter class {; , / \ whitespace} and
// returns the first non-empty token.
func firstToken(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		switch r {
		case ';', ',', '/', '\\':
			return true
		}
		return unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func valid(domain string) bool {
	if len(domain) < 4 || !strings.Contains(domain, ".") {
		return false
	}
	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return len(labels[len(labels)-1]) >= 2
}
