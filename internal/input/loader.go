// Package input loads entity records from CSV datasets at the pipeline
// boundary.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logolens/logolens/internal/core"
)

// Options filter the loaded dataset before it reaches the pipeline.
type Options struct {
	// IDs keeps only the listed entity ids when non-empty.
	IDs []string
	// TopN keeps only the first N valid rows when positive.
	TopN int
}

var requiredColumns = []string{"ID", "CompanyName", "WebsiteURL", "Country"}

// Load reads entity records from the CSV file at path. The header must
// contain ID, CompanyName, WebsiteURL and Country; SecondaryURL is
// optional. Rows with a blank company name are dropped, not errored.
func Load(path string, opts Options) ([]core.EntityRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close() // nolint:errcheck // best-effort cleanup on read-only file

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read input header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	idFilter := map[string]bool{}
	for _, id := range opts.IDs {
		idFilter[strings.TrimSpace(id)] = true
	}

	var entities []core.EntityRecord
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input row %d: %w", line+1, err)
		}
		line++

		entity := core.EntityRecord{
			ID:           field(record, columns["id"]),
			DisplayName:  field(record, columns["companyname"]),
			PrimaryURL:   field(record, columns["websiteurl"]),
			SecondaryURL: field(record, columns["secondaryurl"]),
			Country:      field(record, columns["country"]),
		}
		if entity.ID == "" || entity.DisplayName == "" {
			continue
		}
		if len(idFilter) > 0 && !idFilter[entity.ID] {
			continue
		}

		entities = append(entities, entity)
		if opts.TopN > 0 && len(entities) >= opts.TopN {
			break
		}
	}

	return entities, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := map[string]int{"secondaryurl": -1}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("required column %q not found in input file", required)
		}
	}
	return columns, nil
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
