package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sublens/sublens/internal/youtube"
)

func resolveVideoIDs(positional []string, videosFile string) ([]string, error) {
	trimmed := strings.TrimSpace(videosFile)
	if trimmed != "" {
		if len(positional) > 0 {
			return nil, fmt.Errorf("cannot combine positional videos with --videos-file")
		}
		return readVideosFile(trimmed)
	}

	ids := make([]string, 0, len(positional))
	for _, raw := range positional {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		id, err := youtube.ParseVideoID(value)
		if err != nil {
			return nil, fmt.Errorf("invalid video %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one video is required")
	}
	return ids, nil
}

func readVideosFile(path string) ([]string, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close() // nolint:errcheck
		reader = file
	}

	ids := make([]string, 0)
	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		id, err := youtube.ParseVideoID(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid video on line %d: %w", line, err)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no videos found")
	}
	return ids, nil
}
