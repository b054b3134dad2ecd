package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sublens/sublens/internal/config"
	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/core/store"
	"github.com/sublens/sublens/internal/observability"
	"github.com/sublens/sublens/internal/youtube"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <video>",
	Short: "Summarize a video transcript",
	Long: `Fetch a video transcript and produce an LLM summary. Long transcripts
are split into chunks and summarized map-reduce style; non-Russian
results are translated when summary.translate is enabled.

Requires summary.enabled and an OpenRouter API key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args, store.SummaryKindText)
	},
}

var mindmapCmd = &cobra.Command{
	Use:   "mindmap <video>",
	Short: "Build a mind map from a video transcript",
	Long: `Fetch a video transcript, extract its key ideas with an LLM, and render
them as a Markmap-style markdown mind map (or Mermaid with --mermaid).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args, store.SummaryKindMindMap)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(mindmapCmd)

	for _, c := range []*cobra.Command{summarizeCmd, mindmapCmd} {
		c.Flags().StringSlice("lang", nil, "Preferred transcript languages in order (default from config)")
		c.Flags().Bool("no-cache", false, "Skip summary cache lookup and do not store the result")
		c.Flags().String("out", "", "Write output to a file (default stdout)")
		c.Flags().String("out-dir", "", "Write output to a directory")
	}
	mindmapCmd.Flags().Bool("mermaid", false, "Render Mermaid mindmap syntax instead of Markmap markdown")
}

func runSummarize(cmd *cobra.Command, args []string, kind string) error {
	videoID, err := youtube.ParseVideoID(args[0])
	if err != nil {
		return fmt.Errorf("invalid video %q: %w", args[0], err)
	}

	langs, err := cmd.Flags().GetStringSlice("lang")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return err
	}
	mermaid := false
	if cmd.Flags().Lookup("mermaid") != nil {
		mermaid, err = cmd.Flags().GetBool("mermaid")
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	startedAt := time.Now()

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}

	if outDir != "" {
		outDir, err = ensureOutDir(outDir)
		if err != nil {
			return err
		}
		outPath = filepath.Join(outDir, fmt.Sprintf("%s.%s.md", sanitizeFilename(videoID), kind))
	}
	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	// Mermaid output bypasses the cache: only the markdown rendering is
	// stored, and re-rendering needs the idea hierarchy, not the text.
	useCache := !noCache && !mermaid
	if useCache {
		if entry, err := db.GetSummaryCache(ctx, videoID, kind); err == nil && entry != nil {
			fmt.Fprintln(sink.writer, entry.Content)
			logSummarizeOutcome(videoID, kind, entry.Model, true, startedAt)
			return nil
		}
	}

	content, model, err := generateSummary(ctx, cfg, db, videoID, kind, resolveLanguages(langs, cfg), mermaid)
	if err != nil {
		return err
	}

	if useCache && cfg.Cache.SummaryTTL > 0 {
		if err := db.SetSummaryCache(ctx, videoID, kind, model, content, cfg.Cache.SummaryTTL); err != nil {
			observability.CLILogger.Warn("Failed to cache summary", zap.Error(err))
		}
	}

	fmt.Fprintln(sink.writer, content)
	logSummarizeOutcome(videoID, kind, model, false, startedAt)
	return nil
}

func generateSummary(ctx context.Context, cfg *config.Config, db *store.Store, videoID, kind string, languages []string, mermaid bool) (string, string, error) {
	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		return "", "", err
	}

	fetcher := buildFetcher(cfg, db, true)
	result := fetcher.Fetch(ctx, cliUserID, videoID, languages)
	if result.Outcome != core.OutcomeSuccess || result.Transcript == nil {
		return "", "", fmt.Errorf("transcript fetch failed: %s", result.Message)
	}

	text := youtube.PlainText(result.Transcript.Entries)

	if kind == store.SummaryKindMindMap {
		mindMap, err := summarizer.BuildMindMap(ctx, text)
		if err != nil {
			return "", "", err
		}
		if mermaid {
			return mindMap.Mermaid(), "", nil
		}
		return mindMap.Markdown(), "", nil
	}

	summary, err := summarizer.Summarize(ctx, text)
	if err != nil {
		return "", "", err
	}
	return summary.Text, summary.Model, nil
}

func logSummarizeOutcome(videoID, kind, model string, fromCache bool, startedAt time.Time) {
	observability.CLILogger.Info(
		"Summarization finished",
		zap.String("video_id", videoID),
		zap.String("kind", kind),
		zap.String("model", model),
		zap.Bool("from_cache", fromCache),
		zap.Duration("elapsed", time.Since(startedAt)),
	)
}
