// Package store holds the pipeline's durable state: the resumable
// progress file, the failed-domain cache, and the libsql outcome
// history.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Progress tracks which entities finished in prior runs. It is owned
// by the batch coordinator goroutine; every mutation rewrites the
// backing file so a crash loses at most the entity in flight.
type Progress struct {
	path      string
	completed map[string]bool
	failed    map[string]bool
}

type progressFile struct {
	Completed []string `json:"completed"`
	Failed    []string `json:"failed"`
}

// LoadProgress reads prior run state from path. A missing or corrupt
// file yields empty state rather than an error; resumability is a
// convenience, not a correctness requirement.
func LoadProgress(path string) *Progress {
	p := &Progress{
		path:      path,
		completed: map[string]bool{},
		failed:    map[string]bool{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}

	var file progressFile
	if err := json.Unmarshal(data, &file); err != nil {
		return p
	}
	for _, id := range file.Completed {
		p.completed[id] = true
	}
	for _, id := range file.Failed {
		p.failed[id] = true
	}
	return p
}

// MarkCompleted records a finished entity and persists immediately.
func (p *Progress) MarkCompleted(id string) error {
	if p == nil {
		return errors.New("progress is not initialized")
	}
	delete(p.failed, id)
	p.completed[id] = true
	return p.save()
}

// MarkFailed records a failed entity and persists immediately.
func (p *Progress) MarkFailed(id string) error {
	if p == nil {
		return errors.New("progress is not initialized")
	}
	if p.completed[id] {
		return nil
	}
	p.failed[id] = true
	return p.save()
}

// IsProcessed reports whether id reached a terminal state in any run.
func (p *Progress) IsProcessed(id string) bool {
	if p == nil {
		return false
	}
	return p.completed[id] || p.failed[id]
}

// CompletedCount returns the number of completed entities.
func (p *Progress) CompletedCount() int {
	if p == nil {
		return 0
	}
	return len(p.completed)
}

// FailedCount returns the number of failed entities.
func (p *Progress) FailedCount() int {
	if p == nil {
		return 0
	}
	return len(p.failed)
}

// Save rewrites the progress file from current state.
func (p *Progress) Save() error {
	if p == nil {
		return errors.New("progress is not initialized")
	}
	return p.save()
}

// Reset clears all recorded state and removes the backing file.
func (p *Progress) Reset() error {
	if p == nil {
		return errors.New("progress is not initialized")
	}
	p.completed = map[string]bool{}
	p.failed = map[string]bool{}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove progress file: %w", err)
	}
	return nil
}

func (p *Progress) save() error {
	file := progressFile{
		Completed: sortedKeys(p.completed),
		Failed:    sortedKeys(p.failed),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create progress directory: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
