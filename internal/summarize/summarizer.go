// Package summarize produces transcript summaries through OpenRouter
// chat completion models, with map-reduce chunking for long texts,
// model fallback across a configured list, and optional translation
// of the result into Russian.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sublens/sublens/internal/summarize/driver"
	"github.com/sublens/sublens/internal/summarize/prompt"
)

const (
	// DefaultChunkPause spaces out per-chunk requests to stay under
	// free-tier provider rate limits.
	DefaultChunkPause = 2 * time.Second

	// singleRequestLimit is the text length in runes under which a
	// one-chunk text is summarized in a single request.
	singleRequestLimit = 2000
)

// Prompt slugs used by the summarizer.
const (
	slugChunkSummary      = "chunk-summary"
	slugShortSummary      = "short-summary"
	slugMergeSummary      = "merge-summary"
	slugTranslateRu       = "translate-ru"
	slugTranslateRuFromEn = "translate-ru-from-en"
)

// Summary is the result of a summarization run.
type Summary struct {
	Text           string
	Model          string
	Chunks         int
	OriginalLength int
	SummaryLength  int
	SourceLanguage string
	Translated     bool
}

// Summarizer runs map-reduce summarization over a completion driver.
// The zero value is not usable; construct with New or populate Driver
// and Prompts explicitly.
type Summarizer struct {
	Driver     driver.Driver
	Prompts    prompt.Registry
	Models     []string
	ChunkSize  int
	Translate  bool
	ChunkPause time.Duration
}

// New builds a Summarizer from config. Prompts come from cfg.PromptsDir
// when set, otherwise from the embedded defaults.
func New(cfg Config, d driver.Driver) (*Summarizer, error) {
	if d == nil {
		return nil, fmt.Errorf("completion driver is required")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}

	var (
		registry prompt.Registry
		err      error
	)
	if strings.TrimSpace(cfg.PromptsDir) != "" {
		prompts, loadErr := prompt.LoadFromDir(cfg.PromptsDir)
		if loadErr != nil {
			return nil, loadErr
		}
		registry, err = prompt.NewRegistry(prompts)
	} else {
		registry, err = prompt.DefaultRegistry()
	}
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		Driver:     d,
		Prompts:    registry,
		Models:     cfg.Models,
		ChunkSize:  cfg.ChunkSize,
		Translate:  cfg.Translate,
		ChunkPause: DefaultChunkPause,
	}, nil
}

// Summarize produces a summary of text. Short texts go through a single
// request; longer texts are summarized chunk by chunk and the fragments
// merged in a final request.
func (s *Summarizer) Summarize(ctx context.Context, text string) (*Summary, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	sourceLang := DetectLanguage(text)
	chunks := SplitText(text, s.ChunkSize)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty text")
	}

	summary := &Summary{
		Chunks:         len(chunks),
		OriginalLength: len([]rune(text)),
		SourceLanguage: sourceLang,
	}

	var (
		result string
		model  string
		err    error
	)
	if len(chunks) == 1 && len([]rune(text)) < singleRequestLimit {
		result, model, err = s.complete(ctx, slugShortSummary, text)
	} else {
		result, model, err = s.mapReduce(ctx, chunks)
	}
	if err != nil {
		return nil, err
	}

	if s.Translate && DetectLanguage(result) != LangRussian {
		translated, terr := s.TranslateToRussian(ctx, result, sourceLang)
		if terr == nil {
			result = translated
			summary.Translated = true
		}
	}

	summary.Text = result
	summary.Model = model
	summary.SummaryLength = len([]rune(result))
	return summary, nil
}

// TranslateToRussian translates text into Russian. sourceLang selects the
// prompt variant; pass the value from DetectLanguage or an empty string.
func (s *Summarizer) TranslateToRussian(ctx context.Context, text, sourceLang string) (string, error) {
	slug := slugTranslateRu
	if sourceLang == LangEnglish {
		slug = slugTranslateRuFromEn
	}
	translated, _, err := s.complete(ctx, slug, text)
	return translated, err
}

func (s *Summarizer) mapReduce(ctx context.Context, chunks []string) (string, string, error) {
	fragments := make([]string, 0, len(chunks))
	var model string

	for i, chunk := range chunks {
		fragment, usedModel, err := s.complete(ctx, slugChunkSummary, chunk)
		if err != nil {
			return "", "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if strings.TrimSpace(fragment) != "" {
			fragments = append(fragments, fragment)
			model = usedModel
		}
		if i < len(chunks)-1 {
			if err := s.pause(ctx); err != nil {
				return "", "", err
			}
		}
	}

	if len(fragments) == 0 {
		return "", "", fmt.Errorf("no chunk produced a summary")
	}
	if len(fragments) == 1 {
		return fragments[0], model, nil
	}

	merged, usedModel, err := s.complete(ctx, slugMergeSummary, strings.Join(fragments, "\n\n"))
	if err != nil {
		return "", "", fmt.Errorf("merge summaries: %w", err)
	}
	return merged, usedModel, nil
}

// complete renders the prompt and tries each configured model in order
// until one succeeds. Auth and bad-request failures stop the fallback
// since every model would fail the same way.
func (s *Summarizer) complete(ctx context.Context, slug, text string) (string, string, error) {
	p, err := s.Prompts.Get(slug)
	if err != nil {
		return "", "", err
	}
	system, user := p.Render(map[string]string{"text": text})

	var lastErr error
	for _, model := range s.Models {
		resp, err := s.Driver.Complete(ctx, &driver.Request{
			Model:  model,
			System: system,
			User:   user,
		})
		if err == nil {
			return strings.TrimSpace(resp.Text), model, nil
		}
		if ctx.Err() != nil {
			return "", "", mapProviderError(err)
		}
		lastErr = mapProviderError(err)
		if !Retriable(lastErr) {
			break
		}
	}
	return "", "", lastErr
}

func (s *Summarizer) pause(ctx context.Context) error {
	if s.ChunkPause <= 0 {
		return nil
	}
	timer := time.NewTimer(s.ChunkPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
