package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

func successResult() *core.FetchResult {
	return &core.FetchResult{
		VideoID: "dQw4w9WgXcQ",
		Outcome: core.OutcomeSuccess,
		Transcript: &youtube.Transcript{
			VideoID:       "dQw4w9WgXcQ",
			LanguageCode:  "en",
			AutoGenerated: true,
			Entries: []youtube.TranscriptEntry{
				{Start: 0, Duration: 2, Text: "never gonna give you up"},
				{Start: 61, Duration: 2, Text: "never gonna let you down"},
			},
		},
		Attempts:   1,
		Provenance: core.Provenance{Source: "youtube"},
	}
}

func failedResult() *core.FetchResult {
	return &core.FetchResult{
		VideoID:  "dQw4w9WgXcQ",
		Outcome:  core.OutcomeTranscriptsDisabled,
		Message:  "У этого видео субтитры отключены.",
		Attempts: 1,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"TABLE", FormatTable, false},
		{" json ", FormatJSON, false},
		{"markdown", FormatMarkdown, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)
	assert.Contains(t, rendered, "[00:00] never gonna give you up")
	assert.Contains(t, rendered, "[01:01] never gonna let you down")

	rendered, err = f.FormatResult(failedResult())
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ: У этого видео субтитры отключены.", rendered)
}

func TestTextFormatterPlain(t *testing.T) {
	f := &TextFormatter{Plain: true}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)
	assert.Equal(t, "never gonna give you up never gonna let you down", rendered)
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{Indent: true}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)

	var decoded core.FetchResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, core.OutcomeSuccess, decoded.Outcome)
	assert.Equal(t, "dQw4w9WgXcQ", decoded.VideoID)
	require.NotNil(t, decoded.Transcript)
	assert.Len(t, decoded.Transcript.Entries, 2)

	// Outcomes serialize by wire name, not enum value.
	assert.Contains(t, rendered, `"outcome": "success"`)
}

func TestTableFormatter(t *testing.T) {
	f := &TableFormatter{}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)
	assert.Contains(t, rendered, "dQw4w9WgXcQ")
	assert.Contains(t, rendered, "00:00")
	assert.Contains(t, rendered, "never gonna give you up")
	// go-pretty uppercases footer cells by default.
	assert.Contains(t, strings.ToLower(rendered), "en (auto), 2 entries, youtube")
}

func TestTableFormatterTruncation(t *testing.T) {
	f := &TableFormatter{MaxEntries: 1}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)
	assert.Contains(t, rendered, "never gonna give you up")
	assert.NotContains(t, rendered, "never gonna let you down")
	assert.Contains(t, rendered, "(1 hidden)")
}

func TestMarkdownFormatter(t *testing.T) {
	f := &MarkdownFormatter{}

	rendered, err := f.FormatResult(successResult())
	require.NoError(t, err)
	assert.Contains(t, rendered, "## dQw4w9WgXcQ")
	assert.Contains(t, rendered, "| 00:00 | never gonna give you up |")
	assert.Contains(t, rendered, "**Language**: en (auto)")

	rendered, err = f.FormatResult(failedResult())
	require.NoError(t, err)
	assert.Contains(t, rendered, "**Outcome**: transcripts_disabled")
	assert.Contains(t, rendered, "У этого видео субтитры отключены.")
}

func TestFormatResultList(t *testing.T) {
	results := []*core.FetchResult{successResult(), failedResult(), nil}

	rendered, err := FormatResultList(FormatText, results)
	require.NoError(t, err)
	assert.Contains(t, rendered, "[00:00] never gonna give you up")
	assert.Contains(t, rendered, "субтитры отключены")

	rendered, err = FormatResultList(FormatJSON, results)
	require.NoError(t, err)

	var decoded []*core.FetchResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Len(t, decoded, 3)
}
