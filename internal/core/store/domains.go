package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FailedDomains is the cache of domains known to yield nothing from
// any network source. Workers read an immutable snapshot during a
// batch; the coordinator merges newly failed domains and rewrites the
// file when the batch ends. Entries only leave the set via Reset.
type FailedDomains struct {
	path    string
	domains map[string]bool
}

// LoadFailedDomains reads the cache from path. Missing or corrupt
// files yield an empty cache.
func LoadFailedDomains(path string) *FailedDomains {
	f := &FailedDomains{path: path, domains: map[string]bool{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return f
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return f
	}
	for _, domain := range entries {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			f.domains[domain] = true
		}
	}
	return f
}

// Contains reports whether domain is a known network failure.
func (f *FailedDomains) Contains(domain string) bool {
	if f == nil {
		return false
	}
	return f.domains[strings.ToLower(domain)]
}

// Len returns the number of cached domains.
func (f *FailedDomains) Len() int {
	if f == nil {
		return 0
	}
	return len(f.domains)
}

// Merge adds newly failed domains to the set. It does not persist;
// call Save at batch end.
func (f *FailedDomains) Merge(domains []string) {
	if f == nil {
		return
	}
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			f.domains[domain] = true
		}
	}
}

// Save rewrites the cache file as a sorted JSON array.
func (f *FailedDomains) Save() error {
	if f == nil {
		return errors.New("failed-domain cache is not initialized")
	}

	entries := make([]string, 0, len(f.domains))
	for domain := range f.domains {
		entries = append(entries, domain)
	}
	sort.Strings(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode failed domains: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write failed domains: %w", err)
	}
	return nil
}

// Reset clears the set and removes the backing file.
func (f *FailedDomains) Reset() error {
	if f == nil {
		return errors.New("failed-domain cache is not initialized")
	}
	f.domains = map[string]bool{}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove failed domains file: %w", err)
	}
	return nil
}
