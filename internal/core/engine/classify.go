package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

// User-facing messages, one per failure outcome. The texts are part
// of the product contract and are surfaced verbatim.
const (
	MsgRateLimited         = "Превышен лимит запросов к YouTube. Попробуйте позже (через 5-10 минут)."
	MsgTranscriptsDisabled = "У этого видео субтитры отключены."
	MsgNoTranscriptFound   = "Субтитры не найдены для этого видео."
	MsgVideoUnavailable    = "Видео недоступно или удалено."
	MsgTimeout             = "Превышено время ожидания ответа от YouTube. Попробуйте позже."
	MsgUnknown             = "Не удалось получить субтитры. Попробуйте позже."
)

// Classification describes how a single fetch failure is handled.
type Classification struct {
	Outcome     core.Outcome
	UserMessage string
	Transient   bool
}

// Classify maps a fetch failure to exactly one outcome. Errors from
// the transcript client carry a typed kind and map directly; anything
// else falls back to matching well-known indicator strings. The
// mapping is total: every error yields a classification.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Outcome: core.OutcomeSuccess}
	}

	switch youtube.KindOf(err) {
	case youtube.KindRateLimited:
		return Classification{Outcome: core.OutcomeRateLimited, UserMessage: MsgRateLimited, Transient: true}
	case youtube.KindTranscriptsDisabled:
		return Classification{Outcome: core.OutcomeTranscriptsDisabled, UserMessage: MsgTranscriptsDisabled}
	case youtube.KindNoTranscriptFound:
		return Classification{Outcome: core.OutcomeNoTranscriptFound, UserMessage: MsgNoTranscriptFound}
	case youtube.KindVideoUnavailable:
		return Classification{Outcome: core.OutcomeVideoUnavailable, UserMessage: MsgVideoUnavailable}
	case youtube.KindTimeout:
		return Classification{Outcome: core.OutcomeTimeout, UserMessage: MsgTimeout}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Classification{Outcome: core.OutcomeTimeout, UserMessage: MsgTimeout}
	}

	return classifyMessage(err.Error())
}

// classifyMessage is the fallback for errors without a typed kind.
func classifyMessage(message string) Classification {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "429"),
		strings.Contains(lower, "too many requests"),
		strings.Contains(lower, "rate limit"):
		return Classification{Outcome: core.OutcomeRateLimited, UserMessage: MsgRateLimited, Transient: true}
	case strings.Contains(lower, "subtitles are disabled"),
		strings.Contains(lower, "transcripts disabled"):
		return Classification{Outcome: core.OutcomeTranscriptsDisabled, UserMessage: MsgTranscriptsDisabled}
	case strings.Contains(lower, "no transcript"):
		return Classification{Outcome: core.OutcomeNoTranscriptFound, UserMessage: MsgNoTranscriptFound}
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "video is unavailable"):
		return Classification{Outcome: core.OutcomeVideoUnavailable, UserMessage: MsgVideoUnavailable}
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return Classification{Outcome: core.OutcomeTimeout, UserMessage: MsgTimeout}
	default:
		return Classification{Outcome: core.OutcomeUnknown, UserMessage: MsgUnknown}
	}
}
