package core

import "time"

// Source identifies where an entity's logo came from.
type Source string

const (
	SourceClearbit   Source = "clearbit"
	SourceDuckDuckGo Source = "duckduckgo"
	SourceGoogle     Source = "google"
	SourceSynthetic  Source = "synthetic"
	SourceFailed     Source = "failed"
)

// EntityRecord is one row of the input dataset. ID and DisplayName are
// required; everything else is optional.
type EntityRecord struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	PrimaryURL   string `json:"primary_url,omitempty"`
	SecondaryURL string `json:"secondary_url,omitempty"`
	Country      string `json:"country,omitempty"`
}

// AcquisitionOutcome reports the result of acquiring a logo for one entity.
// It is created once per entity per run and never mutated afterwards.
type AcquisitionOutcome struct {
	EntityID    string    `json:"entity_id"`
	Success     bool      `json:"success"`
	Source      Source    `json:"source"`
	ErrorReason string    `json:"error_reason,omitempty"`
	OutputPath  string    `json:"output_path,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	// DomainFailed marks a resolved domain that exhausted every network
	// source; the coordinator merges these into the failed-domain cache
	// after the batch completes.
	DomainFailed bool      `json:"domain_failed,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// BatchResult aggregates outcomes for a single batch.
type BatchResult struct {
	Index      int                   `json:"index"`
	Successful int                   `json:"successful"`
	Failed     int                   `json:"failed"`
	Outcomes   []*AcquisitionOutcome `json:"outcomes"`
	Duration   time.Duration         `json:"duration"`
}

// RunSummary aggregates an entire pipeline run.
type RunSummary struct {
	RunID      string                `json:"run_id"`
	Total      int                   `json:"total"`
	Skipped    int                   `json:"skipped"`
	Successful int                   `json:"successful"`
	Failed     int                   `json:"failed"`
	BySource   map[Source]int        `json:"by_source"`
	Outcomes   []*AcquisitionOutcome `json:"outcomes"`
	Elapsed    time.Duration         `json:"elapsed"`
}
