package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortText(t *testing.T) {
	chunks := SplitText("hello world", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", 100))
	assert.Nil(t, SplitText("   \n\t  ", 100))
}

func TestSplitTextPreservesWords(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = "abcdefgh"
	}
	text := strings.Join(words, " ")

	chunks := SplitText(text, 40)
	require.Greater(t, len(chunks), 1)

	var rejoined []string
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 40)
		rejoined = append(rejoined, strings.Fields(chunk)...)
	}
	assert.Equal(t, words, rejoined)
}

func TestSplitTextWordLongerThanLimit(t *testing.T) {
	chunks := SplitText("a verylongunbreakableword b", 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0])
	assert.Equal(t, "verylongunbreakableword", chunks[1])
	assert.Equal(t, "b", chunks[2])
}

func TestSplitTextCollapsesWhitespace(t *testing.T) {
	chunks := SplitText("one\n\ntwo   three", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three", chunks[0])
}

func TestSplitTextDefaultLimit(t *testing.T) {
	text := strings.Repeat("word ", 400)
	chunks := SplitText(text, 0)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), DefaultChunkSize)
	}
}
