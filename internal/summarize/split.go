package summarize

import "strings"

// DefaultChunkSize is the maximum chunk length in runes for the splitter.
const DefaultChunkSize = 1000

// SplitText breaks text into chunks of at most maxLen runes without
// splitting words. Whitespace between words collapses to single spaces.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
		length  int
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			length = 0
		}
	}

	for _, word := range words {
		wordLen := len([]rune(word))
		if length > 0 && length+wordLen+1 > maxLen {
			flush()
		}
		if length > 0 {
			current.WriteByte(' ')
			length++
		}
		current.WriteString(word)
		length += wordLen
	}
	flush()

	return chunks
}
