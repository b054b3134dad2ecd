package youtube

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatEntries(t *testing.T) {
	entries := []TranscriptEntry{
		{Start: 0, Duration: 1.5, Text: "first line"},
		{Start: 65.4, Duration: 2, Text: "second line"},
		{Start: 3661, Duration: 1, Text: "over an hour"},
	}

	require.Equal(t,
		"[00:00] first line\n[01:05] second line\n[61:01] over an hour",
		FormatEntries(entries))
}

func TestFormatEntriesEmpty(t *testing.T) {
	require.Equal(t, "", FormatEntries(nil))
}

func TestFormatTimestampNegative(t *testing.T) {
	require.Equal(t, "[00:00]", FormatTimestamp(-3))
}

func TestPlainText(t *testing.T) {
	entries := []TranscriptEntry{
		{Text: "one"},
		{Text: ""},
		{Text: "two"},
	}
	require.Equal(t, "one two", PlainText(entries))
}
