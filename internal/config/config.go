package config

import (
	"os"
	"strconv"
	"time"
)

// Named threshold defaults. The quality and temporal analyzers take a
// Thresholds value instead of hard-coding these, so a run can override
// any of them from the pattern file or flags.
const (
	// DefaultQuickResponseWindow is the maximum gap between alternating
	// messages for the pair to count as a quick response.
	DefaultQuickResponseWindow = time.Minute

	// DefaultLongGapWindow is the gap above which an adjacent pair
	// counts as a long gap in conversation flow.
	DefaultLongGapWindow = time.Hour

	// DefaultAbandonGap is the trailing gap above which a conversation
	// is treated as stalled for task-completion inference.
	DefaultAbandonGap = 6 * time.Hour

	// DefaultTailWindow is how many trailing messages are inspected for
	// completion/blocked signals.
	DefaultTailWindow = 3

	// Confrontational takes precedence when both rates are exceeded.
	DefaultConfrontationalSentimentRate = 0.25
	DefaultConfrontationalFailureRate   = 0.15

	// Collaboration score buckets: >= high is "high", >= low is
	// "medium", below is "low".
	DefaultCollabHighThreshold = 0.75
	DefaultCollabLowThreshold  = 0.40

	// DefaultTrendWindow is the rolling-mean window (in messages) used
	// for trend-shift detection.
	DefaultTrendWindow = 10

	// DefaultTrendShiftSigma is how many standard deviations of the
	// prior window the rolling mean must move to flag a shift.
	// DefaultTrendShiftFloor is the absolute fallback when the prior
	// window has zero deviation.
	DefaultTrendShiftSigma = 2.0
	DefaultTrendShiftFloor = 0.5

	// DefaultStreakMinDays is the minimum run of consecutive active
	// days reported as a streak.
	DefaultStreakMinDays = 3

	// DefaultPreviewLength caps the redacted content preview on each
	// output record, in runes.
	DefaultPreviewLength = 300

	// DefaultWorkers is the per-message analysis pool size.
	DefaultWorkers = 4
)

// Thresholds carries the tunable cutoffs for quality and temporal
// analysis. Zero values are replaced by the defaults above.
type Thresholds struct {
	QuickResponseWindow          time.Duration
	LongGapWindow                time.Duration
	AbandonGap                   time.Duration
	TailWindow                   int
	ConfrontationalSentimentRate float64
	ConfrontationalFailureRate   float64
	CollabHighThreshold          float64
	CollabLowThreshold           float64
	TrendWindow                  int
	TrendShiftSigma              float64
	TrendShiftFloor              float64
	StreakMinDays                int
}

// DefaultThresholds returns the documented default cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		QuickResponseWindow:          DefaultQuickResponseWindow,
		LongGapWindow:                DefaultLongGapWindow,
		AbandonGap:                   DefaultAbandonGap,
		TailWindow:                   DefaultTailWindow,
		ConfrontationalSentimentRate: DefaultConfrontationalSentimentRate,
		ConfrontationalFailureRate:   DefaultConfrontationalFailureRate,
		CollabHighThreshold:          DefaultCollabHighThreshold,
		CollabLowThreshold:           DefaultCollabLowThreshold,
		TrendWindow:                  DefaultTrendWindow,
		TrendShiftSigma:              DefaultTrendShiftSigma,
		TrendShiftFloor:              DefaultTrendShiftFloor,
		StreakMinDays:                DefaultStreakMinDays,
	}
}

// FailurePatterns is one custom failure kind: its severity plus the
// patterns that trigger it.
type FailurePatterns struct {
	Severity string   `yaml:"severity"`
	Patterns []string `yaml:"patterns"`
}

// Options is the full configuration surface for one analysis run. It
// is built once, before the first message is processed; the pipeline
// never mutates it.
type Options struct {
	// Feature toggles. Disabling privacy passes raw text through
	// unchanged; disabling quality or temporal skips that stage for
	// the whole run.
	Privacy        bool
	Quality        bool
	Temporal       bool
	Visualizations bool

	// PseudonymizeOrgs controls whether organization names are
	// pseudonymized in addition to person names.
	PseudonymizeOrgs bool

	// Workers is the per-message analysis pool size.
	Workers int

	Thresholds Thresholds

	// Custom pattern tables, merged into the built-ins before the
	// first message is processed. Keys are category/kind names.
	CustomPII        map[string][]string
	CustomTopics     map[string][]string
	CustomSentiments map[string][]string
	CustomFailures   map[string]FailurePatterns

	LogLevel string
}

// Default returns run options with every feature enabled and all
// thresholds at their documented defaults.
func Default() Options {
	return Options{
		Privacy:          true,
		Quality:          true,
		Temporal:         true,
		Visualizations:   true,
		PseudonymizeOrgs: true,
		Workers:          envInt("CHATSIFT_WORKERS", DefaultWorkers),
		Thresholds:       DefaultThresholds(),
		LogLevel:         envStr("CHATSIFT_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
