package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"symptocare-backend/domain/analysis"
	domainconfig "symptocare-backend/domain/config"
	"symptocare-backend/infrastructure/config"
)

type analyzeOptions struct {
	file           string
	now            string
	alertThreshold int
	configFile     string
	episodeScale   string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analytics over an exported set of mood entries",
		Long: `Analyze reads a JSON export and prints crisis flags, alert-banner
flags, stability, correlations, inferred episodes, top triggers and the
check-in streak as one JSON document.

The export is either an array of entries or an object with
"enhanced_mood_entries" and "mood_entries" arrays.

Examples:
  moodctl analyze --file export.json
  moodctl analyze --file export.json --now 2024-03-10T09:00:00Z --alert-threshold 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to the JSON export (- for stdin)")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluate as of this RFC3339 instant (default: current time)")
	cmd.Flags().IntVar(&opts.alertThreshold, "alert-threshold", 0, "days without entries before the alert banner shows (default from config)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "analysis thresholds YAML file")
	cmd.Flags().StringVar(&opts.episodeScale, "episode-scale", "", "episode thresholds: five_point or eight_point")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// export is the accepted file shape. Legacy entries only feed the streak
// and the alert banner, matching the server.
type export struct {
	Enhanced []analysis.MoodRecord `json:"enhanced_mood_entries"`
	Legacy   []analysis.MoodRecord `json:"mood_entries"`
}

// Report is the document analyze prints
type Report struct {
	GeneratedAt      time.Time                     `json:"generated_at"`
	EntryCount       int                           `json:"entry_count"`
	LegacyEntryCount int                           `json:"legacy_entry_count"`
	Flags            []analysis.CrisisFlag         `json:"flags"`
	Alerts           []analysis.CrisisFlag         `json:"alerts"`
	Stability        *analysis.StabilityMetrics    `json:"stability"`
	Correlations     *analysis.CorrelationAnalysis `json:"correlations"`
	InferredEpisodes []analysis.InferredEpisode    `json:"inferred_episodes"`
	TopTriggers      []analysis.TriggerCount       `json:"top_triggers"`
	Streak           int                           `json:"streak"`
}

func runAnalyze(out io.Writer, opts *analyzeOptions) error {
	now := time.Now().UTC()
	if opts.now != "" {
		parsed, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		now = parsed.UTC()
	}

	cfg, err := analysisConfig(opts)
	if err != nil {
		return err
	}

	data, err := readInput(opts.file)
	if err != nil {
		return err
	}
	exp, err := parseExport(data)
	if err != nil {
		return err
	}

	report := buildReport(exp, cfg, now)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func analysisConfig(opts *analyzeOptions) (*domainconfig.AnalysisConfig, error) {
	cfg, err := config.LoadAnalysisConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	switch scale := domainconfig.EpisodeScale(opts.episodeScale); scale {
	case "":
	case domainconfig.EpisodeScaleFivePoint, domainconfig.EpisodeScaleEightPoint:
		cfg.ApplyEpisodeScale(scale)
	default:
		return nil, fmt.Errorf("unknown --episode-scale %q", opts.episodeScale)
	}
	if opts.alertThreshold > 0 {
		cfg.AlertMissingDaysThreshold = opts.alertThreshold
	}
	return cfg, cfg.Validate()
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return data, nil
}

func parseExport(data []byte) (export, error) {
	var exp export
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &exp.Enhanced); err != nil {
			return export{}, fmt.Errorf("invalid export: %w", err)
		}
		return exp, nil
	}
	if err := json.Unmarshal(trimmed, &exp); err != nil {
		return export{}, fmt.Errorf("invalid export: %w", err)
	}
	return exp, nil
}

// buildReport is a pure invocation of the analytics package
func buildReport(exp export, cfg *domainconfig.AnalysisConfig, now time.Time) Report {
	analyzer := analysis.NewPatternAnalyzer(cfg, func() time.Time { return now })
	flags := analyzer.Analyze(exp.Enhanced)

	latest, hasEntries := analysis.LatestOf(exp.Enhanced, exp.Legacy)
	alerts := analysis.NewAlertPolicy(cfg.AlertMissingDaysThreshold).Apply(flags, latest, hasEntries, now)

	all := make([]analysis.MoodRecord, 0, len(exp.Enhanced)+len(exp.Legacy))
	all = append(all, exp.Enhanced...)
	all = append(all, exp.Legacy...)

	report := Report{
		GeneratedAt:      now,
		EntryCount:       len(exp.Enhanced),
		LegacyEntryCount: len(exp.Legacy),
		Flags:            flags,
		Alerts:           alerts,
		Stability:        analysis.CalculateStability(exp.Enhanced, cfg),
		Correlations:     analysis.CalculateCorrelations(exp.Enhanced, cfg),
		InferredEpisodes: analysis.DetectEpisodes(exp.Enhanced, cfg),
		TopTriggers:      analysis.TopTriggers(exp.Enhanced, cfg.TopTriggersLimit),
		Streak:           analysis.CheckInStreak(all, now, cfg.Location()),
	}
	if report.Flags == nil {
		report.Flags = []analysis.CrisisFlag{}
	}
	if report.Alerts == nil {
		report.Alerts = []analysis.CrisisFlag{}
	}
	if report.TopTriggers == nil {
		report.TopTriggers = []analysis.TriggerCount{}
	}
	return report
}
