package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sublens/sublens/internal/config"
	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/observability"
	"github.com/sublens/sublens/internal/output"
	"github.com/sublens/sublens/internal/youtube"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <video>",
	Short: "Fetch a video transcript",
	Long: `Fetch the transcript for a YouTube video. The argument is a video ID
or any YouTube URL form (watch, youtu.be, shorts, embed).

Fetches go through admission control and a bounded retry loop; results
are cached locally so repeated fetches do not hit YouTube again.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSlice("lang", nil, "Preferred transcript languages in order (default from config)")
	fetchCmd.Flags().String("user", cliUserID, "User identity for admission control")
	fetchCmd.Flags().Bool("no-cache", false, "Skip cache lookup and do not store the result")
	fetchCmd.Flags().String("output-format", string(output.FormatText), "Output format: text, table, json, markdown")
	fetchCmd.Flags().String("out", "", "Write output to a file (default stdout)")
	fetchCmd.Flags().String("out-dir", "", "Write output to a directory")
}

func runFetch(cmd *cobra.Command, args []string) error {
	videoID, err := youtube.ParseVideoID(args[0])
	if err != nil {
		return fmt.Errorf("invalid video %q: %w", args[0], err)
	}

	langs, err := cmd.Flags().GetStringSlice("lang")
	if err != nil {
		return err
	}
	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return err
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

	fetcher := buildFetcher(cfg, db, !noCache)
	result := fetcher.Fetch(ctx, strings.TrimSpace(userID), videoID, resolveLanguages(langs, cfg))

	if outDir != "" {
		outDir, err = ensureOutDir(outDir)
		if err != nil {
			return err
		}
		outPath = filepath.Join(outDir, fmt.Sprintf("%s.%s", sanitizeFilename(videoID), outputExtension(format)))
	}
	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	formatter := output.NewFormatter(format)
	rendered, err := formatter.FormatResult(result)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Fprintln(sink.writer, rendered)
	}

	if format != output.FormatJSON {
		logFetchOutcome(result, startedAt)
	}
	if result.Outcome != core.OutcomeSuccess {
		return fmt.Errorf("fetch failed: %s", result.Outcome)
	}
	return nil
}

func logFetchOutcome(result *core.FetchResult, startedAt time.Time) {
	if result == nil {
		return
	}
	fields := fetchOutcomeFields(result, time.Since(startedAt))
	if result.Outcome == core.OutcomeUnknown {
		observability.CLILogger.Error("Fetch failed with unclassified error", fields...)
		return
	}
	observability.CLILogger.Info("Fetch finished", fields...)
}

// fetchOutcomeFields includes the raw upstream error under "detail";
// the formatted output carries only the generic user message.
func fetchOutcomeFields(result *core.FetchResult, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("video_id", result.VideoID),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("attempts", result.Attempts),
		zap.Bool("from_cache", result.Provenance.FromCache),
		zap.Duration("elapsed", elapsed),
	}
	if result.Detail != "" {
		fields = append(fields, zap.String("detail", result.Detail))
	}
	return fields
}
