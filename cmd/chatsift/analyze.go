package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/chatsift/internal/config"
	"github.com/kestrelworks/chatsift/internal/export"
	"github.com/kestrelworks/chatsift/internal/pipeline"
	"github.com/kestrelworks/chatsift/internal/report"
)

func analyzeCmd() *cobra.Command {
	var (
		outputPrefix string
		patternFile  string
		workers      int
		logLevel     string
		noPrivacy    bool
		noOrgs       bool
		noQuality    bool
		noTemporal   bool
		noViz        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <export.json>",
		Short: "Run the full analysis pipeline over an export file",
		Long: `Load an export file, redact PII, classify every message against the
topic/sentiment/failure taxonomies, and write the results.

Outputs <prefix>.csv, <prefix>.json and three text reports next to it.

Examples:
  chatsift analyze export.json
  chatsift analyze export.json --output my_analysis --no-temporal
  chatsift analyze export.json --patterns custom.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Default()
			opts.Privacy = !noPrivacy
			opts.PseudonymizeOrgs = !noOrgs
			opts.Quality = !noQuality
			opts.Temporal = !noTemporal
			opts.Visualizations = !noViz
			if workers > 0 {
				opts.Workers = workers
			}
			if logLevel != "" {
				opts.LogLevel = logLevel
			}
			setupLogging(opts.LogLevel)

			if patternFile != "" {
				pf, err := config.LoadPatternFile(patternFile)
				if err != nil {
					return err
				}
				pf.Apply(&opts)
				slog.Info("custom patterns loaded", "file", patternFile)
			}

			return runAnalysis(cmd, args[0], outputPrefix, opts)
		},
	}

	cmd.Flags().StringVarP(&outputPrefix, "output", "o", "chatsift_analysis", "output file prefix")
	cmd.Flags().StringVar(&patternFile, "patterns", "", "YAML file with custom patterns and threshold overrides")
	cmd.Flags().IntVar(&workers, "workers", 0, "analysis worker count (default from CHATSIFT_WORKERS)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&noPrivacy, "no-privacy", false, "disable PII redaction and pseudonymization")
	cmd.Flags().BoolVar(&noOrgs, "no-orgs", false, "do not pseudonymize organization names")
	cmd.Flags().BoolVar(&noQuality, "no-quality", false, "disable conversation quality analysis")
	cmd.Flags().BoolVar(&noTemporal, "no-temporal", false, "disable temporal analysis")
	cmd.Flags().BoolVar(&noViz, "no-viz", false, "disable visualization output")

	return cmd
}

func runAnalysis(cmd *cobra.Command, exportPath, prefix string, opts config.Options) error {
	slog.Info("loading export", "path", exportPath)
	convs, err := export.ParseFile(exportPath)
	if err != nil {
		return err
	}
	slog.Info("export loaded", "conversations", len(convs))

	res, err := pipeline.Run(cmd.Context(), convs, opts, slog.Default())
	if err != nil {
		return err
	}

	report.PrintSummary(cmd.OutOrStdout(), res)

	type output struct {
		path  string
		write func(*os.File) error
	}
	outputs := []output{
		{prefix + ".csv", func(f *os.File) error { return report.WriteCSV(f, res.Records) }},
		{prefix + ".json", func(f *os.File) error { return report.WriteJSON(f, res) }},
		{prefix + "_quality_report.txt", func(f *os.File) error { return report.WriteQualityReport(f, res) }},
		{prefix + "_temporal_report.txt", func(f *os.File) error { return report.WriteTemporalReport(f, res) }},
		{prefix + "_executive_summary.txt", func(f *os.File) error { return report.WriteExecutiveSummary(f, res) }},
	}
	if opts.Visualizations {
		outputs = append(outputs, output{prefix + "_activity_chart.txt",
			func(f *os.File) error { return report.WriteActivityChart(f, res) }})
	}

	for _, out := range outputs {
		if err := writeFile(out.path, out.write); err != nil {
			return err
		}
		slog.Info("output written", "path", out.path)
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
