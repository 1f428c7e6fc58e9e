package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"slackdm/internal/config"
	"slackdm/internal/export"
	"slackdm/internal/slack"
	"slackdm/internal/status"
	"slackdm/internal/transcript"
)

func archiveCmd() *cobra.Command {
	var (
		token      string
		channel    string
		dateStart  string
		dateEnd    string
		dateFormat string
		output     string

		jsonName   string
		textName   string
		sqliteName string

		filesDir       string
		filesOverwrite bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Retrieve a conversation's history and export it",
		Long: `Pages through the full history of one conversation, builds the user and
channel lookup maps, and writes the selected exports. Transient rate limits
are retried; export and download failures are reported at the end without
aborting the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if token != "" {
				cfg.Token = token
			}
			if dateFormat != "" {
				cfg.DateFormat = dateFormat
			}
			if output != "" {
				cfg.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger = slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

			oldest, latest, err := parseRange(dateStart, dateEnd, cfg.DateLayout())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := slack.NewClient(cfg.Token, logger)
			pager := slack.NewPager(client, logger, slack.PagerConfig{
				PageSize:    cfg.PageSize,
				HistoryWait: cfg.HistoryWait(),
				ListWait:    cfg.ListWait(),
			})

			// The three sweeps are independent of each other, so they run
			// concurrently. Each individual sweep stays sequential: the next
			// request's bound only exists once the previous response arrives.
			var (
				messages []slack.Message
				users    map[string]string
				channels map[string]string
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				messages, err = pager.History(gctx, channel, oldest, latest)
				return err
			})
			g.Go(func() error {
				var err error
				users, err = pager.Users(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				channels, err = pager.Channels(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			// History arrives newest first; the renderer wants chronological.
			chrono := make([]slack.Message, len(messages))
			for i, m := range messages {
				chrono[len(messages)-1-i] = m
			}

			st := &status.Status{}
			resolver := transcript.NewResolver(users, channels)

			if jsonName != "" {
				logger.Info("exporting raw json", "file", jsonName)
				data, err := export.MessagesJSON(messages)
				if err == nil {
					err = export.WriteFile(cfg.Output, jsonName, data)
				}
				if err != nil {
					logger.Error("json export failed", "err", err)
					st.ExportJSONFailed = true
				}
			}

			if textName != "" {
				logger.Info("formatting transcript")
				renderer := transcript.NewRenderer(resolver, st, logger)
				text := renderer.Render(chrono)
				logger.Info("exporting transcript", "file", textName)
				if err := export.WriteFile(cfg.Output, textName, []byte(text+"\n")); err != nil {
					logger.Error("text export failed", "err", err)
					st.ExportTextFailed = true
				}
			}

			if sqliteName != "" {
				path := sqliteName
				if cfg.Output != "" {
					path = filepath.Join(cfg.Output, sqliteName)
				}
				logger.Info("exporting sqlite archive", "file", path)
				if err := exportSQLite(cmd, path, channel, messages, users); err != nil {
					logger.Error("sqlite export failed", "err", err)
					st.ExportSQLiteFailed = true
				}
			}

			if filesDir != "" {
				logger.Info("analysing messages for uploaded files")
				files := export.CollectFiles(messages)
				logger.Info("found files", "files", len(files), "messages", len(messages))
				if len(files) > 0 {
					d := export.NewDownloader(export.DownloaderConfig{
						Token:      cfg.Token,
						Dir:        filesDir,
						Overwrite:  filesOverwrite,
						DateLayout: cfg.DateLayout(),
						Resolver:   resolver,
						Status:     st,
						Logger:     logger,
					})
					d.DownloadAll(ctx, files)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), st.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Slack authorisation token (or "+config.TokenEnv+")")
	cmd.Flags().StringVar(&channel, "channel", "", "ID of the conversation to archive")
	cmd.Flags().StringVar(&dateStart, "date-start", "", "earliest messages to archive (inclusive)")
	cmd.Flags().StringVar(&dateEnd, "date-end", "", "latest messages to archive (inclusive)")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "date format: iso8601 or uk")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory for exports (excluding files)")
	cmd.Flags().Lookup("output").NoOptDefVal = "output"

	cmd.Flags().StringVarP(&jsonName, "json", "j", "", "export the raw message history as JSON")
	cmd.Flags().Lookup("json").NoOptDefVal = "dm.json"
	cmd.Flags().StringVarP(&textName, "text", "t", "", "export the message history in human-readable form")
	cmd.Flags().Lookup("text").NoOptDefVal = "dm.txt"
	cmd.Flags().StringVar(&sqliteName, "sqlite", "", "export the message history into a SQLite archive")
	cmd.Flags().Lookup("sqlite").NoOptDefVal = "dm.db"

	cmd.Flags().StringVarP(&filesDir, "files", "f", "", "download files found in the history to the directory")
	cmd.Flags().Lookup("files").NoOptDefVal = "output_files"
	cmd.Flags().BoolVar(&filesOverwrite, "files-overwrite", false, "overwrite downloaded files if they exist")

	cmd.MarkFlagRequired("channel")

	return cmd
}

func exportSQLite(cmd *cobra.Command, path, channel string, msgs []slack.Message, users map[string]string) error {
	archive, err := export.NewSQLiteArchive(path, logger)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx := cmd.Context()
	if err := archive.SaveMessages(ctx, channel, msgs); err != nil {
		return err
	}
	return archive.SaveUsers(ctx, users)
}

// parseRange turns the date flags into the inclusive history window. Both
// bounds are inclusive: the end date covers its whole day. Unset bounds fall
// back to the epoch and now.
func parseRange(start, end, layout string) (time.Time, time.Time, error) {
	oldest := time.Unix(0, 0)
	latest := time.Now()

	if start != "" {
		t, err := time.ParseInLocation(layout, start, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date-start: %w", err)
		}
		oldest = t
	}
	if end != "" {
		t, err := time.ParseInLocation(layout, end, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date-end: %w", err)
		}
		latest = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	if latest.Before(oldest) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range ends before it starts")
	}
	return oldest, latest, nil
}
