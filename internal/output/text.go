package output

import (
	"fmt"
	"strings"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

// TextFormatter renders a timestamped transcript, or the failure
// message when the fetch did not succeed.
type TextFormatter struct {
	// Plain drops timestamps and joins entries into running text.
	Plain bool
}

// FormatResult renders a fetch result as text.
func (f *TextFormatter) FormatResult(result *core.FetchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	if result.Outcome != core.OutcomeSuccess || result.Transcript == nil {
		return failureLine(result), nil
	}

	if f.Plain {
		return youtube.PlainText(result.Transcript.Entries), nil
	}
	return youtube.FormatEntries(result.Transcript.Entries), nil
}

func failureLine(result *core.FetchResult) string {
	message := strings.TrimSpace(result.Message)
	if message == "" {
		message = result.Outcome.String()
	}
	return fmt.Sprintf("%s: %s", result.VideoID, message)
}

func sourceLabel(result *core.FetchResult) string {
	if result.Provenance.FromCache {
		return "cache"
	}
	return result.Provenance.Source
}

func languageLabel(result *core.FetchResult) string {
	if result.Transcript == nil {
		return ""
	}
	label := result.Transcript.LanguageCode
	if result.Transcript.AutoGenerated {
		label += " (auto)"
	}
	return label
}
