package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct {
	// MaxEntries bounds transcript rows per result; zero shows all.
	MaxEntries int
}

// FormatResult renders a fetch result as a table.
func (f *TableFormatter) FormatResult(result *core.FetchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(result.VideoID)
	t.AppendHeader(table.Row{"Time", "Text"})

	if result.Outcome != core.OutcomeSuccess || result.Transcript == nil {
		t.AppendRow(table.Row{"", failureLine(result)})
		return t.Render(), nil
	}

	entries := result.Transcript.Entries
	truncated := 0
	if f.MaxEntries > 0 && len(entries) > f.MaxEntries {
		truncated = len(entries) - f.MaxEntries
		entries = entries[:f.MaxEntries]
	}

	for _, entry := range entries {
		t.AppendRow(table.Row{youtube.FormatTimestamp(entry.Start), entry.Text})
	}

	footer := fmt.Sprintf("%s, %d entries", languageLabel(result), len(result.Transcript.Entries))
	if truncated > 0 {
		footer += fmt.Sprintf(" (%d hidden)", truncated)
	}
	footer += ", " + sourceLabel(result)
	t.AppendFooter(table.Row{"", footer})

	return t.Render(), nil
}
