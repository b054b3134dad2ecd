package youtube

import (
	"fmt"
	"strings"
)

// FormatEntries renders transcript entries as timestamped lines in
// the form "[MM:SS] text". Hours spill into the minutes column.
func FormatEntries(entries []TranscriptEntry) string {
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatTimestamp(entry.Start))
		b.WriteByte(' ')
		b.WriteString(entry.Text)
	}
	return b.String()
}

// FormatTimestamp renders seconds as a "[MM:SS]" marker.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("[%02d:%02d]", total/60, total%60)
}

// PlainText joins transcript entries into one whitespace-separated
// string without timestamps.
func PlainText(entries []TranscriptEntry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Text != "" {
			parts = append(parts, entry.Text)
		}
	}
	return strings.Join(parts, " ")
}
