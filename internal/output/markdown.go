package output

import (
	"fmt"
	"strings"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

// MarkdownFormatter renders results as markdown.
type MarkdownFormatter struct{}

// FormatResult renders a fetch result as Markdown.
func (f *MarkdownFormatter) FormatResult(result *core.FetchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(result.VideoID)))

	if result.Outcome != core.OutcomeSuccess || result.Transcript == nil {
		sb.WriteString(fmt.Sprintf("**Outcome**: %s\n\n", result.Outcome))
		if message := strings.TrimSpace(result.Message); message != "" {
			sb.WriteString(message + "\n")
		}
		return sb.String(), nil
	}

	sb.WriteString(fmt.Sprintf("**Language**: %s | **Source**: %s | **Entries**: %d\n\n",
		escapeMarkdownCell(languageLabel(result)),
		escapeMarkdownCell(sourceLabel(result)),
		len(result.Transcript.Entries),
	))

	sb.WriteString("| Time | Text |\n")
	sb.WriteString("|------|------|\n")
	for _, entry := range result.Transcript.Entries {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n",
			youtube.FormatTimestamp(entry.Start),
			escapeMarkdownCell(entry.Text),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
