// Package main provides the chatsift CLI entrypoint.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "chatsift",
		Short: "Analyze exported conversation archives",
		Long: `chatsift ingests an exported conversation archive and produces
per-message records with redacted content, topic/sentiment/failure
labels, and conversation-level quality and temporal metrics.

PII is redacted before any analysis reads message text; person and
organization names are replaced with stable, non-reversible pseudonyms.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(analyzeCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
