package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "1.0.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "slackdm",
		Short: "slackdm: archive Slack conversation history",
		Long: `slackdm retrieves the full message history of a Slack conversation and
exports it as raw JSON, a human-readable transcript, an optional SQLite
archive, and downloaded files.`,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (optional)")

	root.AddCommand(archiveCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// logLevel maps the config level names onto slog levels.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
