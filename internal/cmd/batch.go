package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sublens/sublens/internal/config"
	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/core/engine"
	"github.com/sublens/sublens/internal/observability"
	"github.com/sublens/sublens/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch [videos...]",
	Short: "Fetch transcripts for multiple videos",
	Long: `Fetch transcripts for several videos, either from positional arguments
or from a file with one video ID or URL per line (use "-" for stdin).

All fetches share one admission controller, so the global spacing
between upstream requests holds across workers.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("videos-file", "", "Read videos from file, one per line (\"-\" for stdin)")
	batchCmd.Flags().StringSlice("lang", nil, "Preferred transcript languages in order (default from config)")
	batchCmd.Flags().String("output-format", string(output.FormatText), "Output format: text, table, json, markdown")
	batchCmd.Flags().Bool("success-only", false, "Only show videos whose transcript was fetched")
	batchCmd.Flags().Int("concurrency", 0, "Concurrent fetches (default from workers config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	videosFile, err := cmd.Flags().GetString("videos-file")
	if err != nil {
		return err
	}
	langs, err := cmd.Flags().GetStringSlice("lang")
	if err != nil {
		return err
	}
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	successOnly, err := cmd.Flags().GetBool("success-only")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	videoIDs, err := resolveVideoIDs(args, videosFile)
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
	if concurrency <= 0 {
		concurrency = cfg.Workers
	}
	if concurrency < 1 {
		concurrency = 1
	}

	fetcher := buildFetcher(cfg, db, true)
	languages := resolveLanguages(langs, cfg)

	results := runBatchFetches(ctx, fetcher, videoIDs, languages, concurrency)
	results = filterBatchResults(results, successOnly)

	rendered, err := output.FormatResultList(format, results)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rendered) != "" {
		fmt.Println(rendered)
	}

	logBatchThroughput(results, startedAt)
	return nil
}

type batchJob struct {
	index   int
	videoID string
}

func runBatchFetches(ctx context.Context, fetcher *engine.Fetcher, videoIDs, languages []string, concurrency int) []*core.FetchResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*core.FetchResult, len(videoIDs))
	jobs := make(chan batchJob)

	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for job := range jobs {
			if ctx.Err() != nil {
				return
			}
			// Distinct identity per video: batch politeness comes from
			// the shared global interval, not the per-user one.
			userID := fmt.Sprintf("%s/%s", cliUserID, job.videoID)
			results[job.index] = fetcher.Fetch(ctx, userID, job.videoID, languages)
		}
	}

	if concurrency > len(videoIDs) {
		concurrency = len(videoIDs)
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker()
	}

sendLoop:
	for i, videoID := range videoIDs {
		select {
		case <-ctx.Done():
			break sendLoop
		case jobs <- batchJob{index: i, videoID: videoID}:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func filterBatchResults(results []*core.FetchResult, successOnly bool) []*core.FetchResult {
	if !successOnly {
		return results
	}

	filtered := make([]*core.FetchResult, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.Outcome == core.OutcomeSuccess {
			filtered = append(filtered, result)
		}
	}
	return filtered
}

func logBatchThroughput(results []*core.FetchResult, startedAt time.Time) {
	fetched := 0
	cached := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.Outcome == core.OutcomeSuccess {
			fetched++
			if result.Provenance.FromCache {
				cached++
			}
		}
	}
	observability.CLILogger.Info(
		"Batch finished",
		zap.Int("videos", len(results)),
		zap.Int("fetched", fetched),
		zap.Int("from_cache", cached),
		zap.Duration("elapsed", time.Since(startedAt)),
	)
}
