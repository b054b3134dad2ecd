package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sublens/sublens/internal/config"
	"github.com/sublens/sublens/internal/output"
	"github.com/sublens/sublens/internal/youtube"
)

var languagesCmd = &cobra.Command{
	Use:   "languages <video>",
	Short: "List available transcript languages",
	Long:  "List the caption tracks YouTube advertises for a video, without fetching any transcript.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table, json")
}

func runLanguages(cmd *cobra.Command, args []string) error {
	videoID, err := youtube.ParseVideoID(args[0])
	if err != nil {
		return fmt.Errorf("invalid video %q: %w", args[0], err)
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	if format != output.FormatJSON && format != output.FormatTable {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg == nil {
		return errors.New("config not loaded")
	}

	client := &youtube.Client{
		BaseURL:   cfg.Fetch.BaseURL,
		UserAgent: cfg.Fetch.UserAgent,
	}
	if cfg.Fetch.Timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.Fetch.Timeout}
	}

	tracks, err := client.ListTracks(ctx, videoID)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(tracks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(videoID)
	t.AppendHeader(table.Row{"Code", "Language", "Kind"})
	for _, track := range tracks {
		kind := "manual"
		if track.AutoGenerated {
			kind = "auto"
		}
		name := track.LanguageName
		if strings.TrimSpace(name) == "" {
			name = track.LanguageCode
		}
		t.AppendRow(table.Row{track.LanguageCode, name, kind})
	}
	if len(tracks) == 0 {
		t.AppendFooter(table.Row{"", "no caption tracks", ""})
	}
	fmt.Println(t.Render())
	return nil
}
