package cmd

import (
	"errors"
	"net/http"

	"github.com/sublens/sublens/internal/config"
	"github.com/sublens/sublens/internal/core/engine"
	"github.com/sublens/sublens/internal/core/store"
	"github.com/sublens/sublens/internal/summarize"
	"github.com/sublens/sublens/internal/summarize/driver/openrouter"
	"github.com/sublens/sublens/internal/youtube"
)

// cliUserID is the admission identity for local commands. Each process
// starts with fresh admission state, so the per-user interval only
// matters within a single invocation (batch mode).
const cliUserID = "cli"

func buildFetcher(cfg *config.Config, db *store.Store, useCache bool) *engine.Fetcher {
	client := &youtube.Client{
		BaseURL:   cfg.Fetch.BaseURL,
		UserAgent: cfg.Fetch.UserAgent,
	}
	if cfg.Fetch.Timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.Fetch.Timeout}
	}

	admission := engine.NewAdmissionController(cfg.Fetch.UserInterval, cfg.Fetch.GlobalInterval)
	if cfg.Fetch.UserTTL > 0 {
		admission.TTL = cfg.Fetch.UserTTL
	}
	if cfg.Fetch.SweepInterval > 0 {
		admission.SweepInterval = cfg.Fetch.SweepInterval
	}

	fetcher := &engine.Fetcher{
		Source:      client,
		Admission:   admission,
		Usage:       db,
		MaxRetries:  cfg.Fetch.MaxRetries,
		BaseDelay:   cfg.Fetch.BaseDelay,
		MaxDelay:    cfg.Fetch.MaxDelay,
		ToolVersion: versionInfo.Version,
	}
	if useCache && db != nil {
		fetcher.Cache = db
		fetcher.CacheTTL = cfg.Cache.TranscriptTTL
	}
	return fetcher
}

func buildSummarizer(cfg *config.Config) (*summarize.Summarizer, error) {
	if !cfg.Summary.Enabled {
		return nil, errors.New("summarization is disabled (set summary.enabled or SUBLENS_SUMMARY_ENABLED)")
	}
	if cfg.Summary.APIKey == "" {
		return nil, errors.New("summarization requires an OpenRouter API key (summary.api_key)")
	}

	client := openrouter.NewClient(cfg.Summary.BaseURL, cfg.Summary.APIKey)
	if cfg.Summary.Timeout > 0 {
		client.Timeout = cfg.Summary.Timeout
	}

	return summarize.New(cfg.Summary, client)
}

func resolveLanguages(flagValues []string, cfg *config.Config) []string {
	if len(flagValues) > 0 {
		return flagValues
	}
	if len(cfg.Fetch.Languages) > 0 {
		return cfg.Fetch.Languages
	}
	return nil
}
