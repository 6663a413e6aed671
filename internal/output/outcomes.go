package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/logolens/logolens/internal/core"
)

// FormatOutcomes renders per-entity acquisition outcomes in the
// requested format.
func FormatOutcomes(format Format, outcomes []*core.AcquisitionOutcome) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode outcomes: %w", err)
		}
		return string(data), nil
	default:
		return formatOutcomesTable(outcomes), nil
	}
}

func formatOutcomesTable(outcomes []*core.AcquisitionOutcome) string {
	if len(outcomes) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Entity", "Source", "Domain", "Detail", "Completed"})

	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		detail := outcome.OutputPath
		if !outcome.Success {
			detail = outcome.ErrorReason
		}
		t.AppendRow(table.Row{
			outcome.EntityID,
			string(outcome.Source),
			outcome.Domain,
			detail,
			outcome.CompletedAt.Format(time.RFC3339),
		})
	}

	return t.Render()
}
