package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublens/sublens/internal/core"
)

func TestResolveVideoIDsFromArgs(t *testing.T) {
	ids, err := resolveVideoIDs([]string{
		"dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=9bZkp7q19f0",
		"  ",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dQw4w9WgXcQ", "9bZkp7q19f0"}, ids)
}

func TestResolveVideoIDsRejectsInvalid(t *testing.T) {
	_, err := resolveVideoIDs([]string{"not a video"}, "")
	require.Error(t, err)
}

func TestResolveVideoIDsRejectsEmpty(t *testing.T) {
	_, err := resolveVideoIDs(nil, "")
	require.Error(t, err)
}

func TestResolveVideoIDsFileAndArgsConflict(t *testing.T) {
	_, err := resolveVideoIDs([]string{"dQw4w9WgXcQ"}, "videos.txt")
	require.Error(t, err)
}

func TestReadVideosFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.txt")
	content := "# playlist\ndQw4w9WgXcQ\n\nhttps://youtu.be/9bZkp7q19f0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ids, err := readVideosFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dQw4w9WgXcQ", "9bZkp7q19f0"}, ids)
}

func TestReadVideosFileReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.txt")
	require.NoError(t, os.WriteFile(path, []byte("dQw4w9WgXcQ\nbogus entry\n"), 0o600))

	_, err := readVideosFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFilterBatchResults(t *testing.T) {
	results := []*core.FetchResult{
		{VideoID: "a", Outcome: core.OutcomeSuccess},
		nil,
		{VideoID: "b", Outcome: core.OutcomeNoTranscriptFound},
		{VideoID: "c", Outcome: core.OutcomeSuccess},
	}

	kept := filterBatchResults(results, true)
	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].VideoID)
	assert.Equal(t, "c", kept[1].VideoID)

	assert.Equal(t, results, filterBatchResults(results, false))
}
