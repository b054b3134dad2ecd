package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sublens/sublens/internal/core"
)

func TestFetchOutcomeFieldsIncludeRawError(t *testing.T) {
	result := &core.FetchResult{
		VideoID:  "dQw4w9WgXcQ",
		Outcome:  core.OutcomeUnknown,
		Message:  "Не удалось получить субтитры.",
		Detail:   "watch page request failed: tls: handshake failure",
		Attempts: 3,
	}

	fields := fetchOutcomeFields(result, time.Second)

	assert.Contains(t, fields, zap.String("video_id", "dQw4w9WgXcQ"))
	assert.Contains(t, fields, zap.Int("attempts", 3))
	assert.Contains(t, fields, zap.String("detail", "watch page request failed: tls: handshake failure"))
}

func TestFetchOutcomeFieldsOmitEmptyDetail(t *testing.T) {
	result := &core.FetchResult{
		VideoID:  "dQw4w9WgXcQ",
		Outcome:  core.OutcomeSuccess,
		Attempts: 1,
	}

	fields := fetchOutcomeFields(result, time.Second)

	for _, field := range fields {
		assert.NotEqual(t, "detail", field.Key)
	}
}
