package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/logolens/logolens/internal/core"
)

// FormatSummary renders a run summary in the requested format.
func FormatSummary(format Format, summary *core.RunSummary) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(summary)
	default:
		return formatTable(summary), nil
	}
}

func formatTable(summary *core.RunSummary) string {
	if summary == nil {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Source", "Count", "Share"})

	processed := summary.Successful + summary.Failed
	for _, source := range []core.Source{
		core.SourceClearbit, core.SourceDuckDuckGo, core.SourceGoogle,
		core.SourceSynthetic, core.SourceFailed,
	} {
		count := summary.BySource[source]
		if count == 0 {
			continue
		}
		t.AppendRow(table.Row{string(source), count, share(count, processed)})
	}

	t.AppendFooter(table.Row{
		"total",
		fmt.Sprintf("%d processed, %d skipped", processed, summary.Skipped),
		fmt.Sprintf("%s success, %s elapsed",
			share(summary.Successful, processed),
			summary.Elapsed.Round(time.Second)),
	})

	return t.Render()
}

func formatJSON(summary *core.RunSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	return string(data), nil
}

func share(count, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}
