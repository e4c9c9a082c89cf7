package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// PatternFile models the optional YAML file of custom patterns and
// threshold overrides. Entries merge into the built-in tables before
// the first message is processed; there is no later registration.
type PatternFile struct {
	Topics     map[string][]string        `yaml:"topics"`
	Sentiments map[string][]string        `yaml:"sentiments"`
	Failures   map[string]FailurePatterns `yaml:"failures"`
	PII        map[string][]string        `yaml:"pii"`
	Thresholds *ThresholdOverrides        `yaml:"thresholds"`
}

// ThresholdOverrides holds optional replacements for the named
// threshold constants. Absent fields keep their defaults.
type ThresholdOverrides struct {
	QuickResponseSeconds         *int     `yaml:"quick_response_seconds"`
	LongGapSeconds               *int     `yaml:"long_gap_seconds"`
	AbandonGapSeconds            *int     `yaml:"abandon_gap_seconds"`
	TailWindow                   *int     `yaml:"tail_window"`
	ConfrontationalSentimentRate *float64 `yaml:"confrontational_sentiment_rate"`
	ConfrontationalFailureRate   *float64 `yaml:"confrontational_failure_rate"`
	CollabHighThreshold          *float64 `yaml:"collab_high_threshold"`
	CollabLowThreshold           *float64 `yaml:"collab_low_threshold"`
	TrendWindow                  *int     `yaml:"trend_window"`
	TrendShiftSigma              *float64 `yaml:"trend_shift_sigma"`
	TrendShiftFloor              *float64 `yaml:"trend_shift_floor"`
	StreakMinDays                *int     `yaml:"streak_min_days"`
}

// LoadPatternFile reads and validates a pattern file. Every pattern is
// compiled here so a typo fails the run before any message is touched.
func LoadPatternFile(path string) (*PatternFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	var pf PatternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}

	for kind, patterns := range pf.PII {
		if err := compileAll(kind, patterns); err != nil {
			return nil, err
		}
	}
	for name, patterns := range pf.Topics {
		if err := compileAll(name, patterns); err != nil {
			return nil, err
		}
	}
	for name, patterns := range pf.Sentiments {
		if err := compileAll(name, patterns); err != nil {
			return nil, err
		}
	}
	for name, fp := range pf.Failures {
		switch fp.Severity {
		case "high", "medium", "low":
		default:
			return nil, fmt.Errorf("failure kind %q: severity must be high, medium or low, got %q", name, fp.Severity)
		}
		if err := compileAll(name, fp.Patterns); err != nil {
			return nil, err
		}
	}

	return &pf, nil
}

// Apply merges the pattern file into run options.
func (pf *PatternFile) Apply(opts *Options) {
	if len(pf.PII) > 0 {
		opts.CustomPII = mergeLists(opts.CustomPII, pf.PII)
	}
	if len(pf.Topics) > 0 {
		opts.CustomTopics = mergeLists(opts.CustomTopics, pf.Topics)
	}
	if len(pf.Sentiments) > 0 {
		opts.CustomSentiments = mergeLists(opts.CustomSentiments, pf.Sentiments)
	}
	if len(pf.Failures) > 0 {
		if opts.CustomFailures == nil {
			opts.CustomFailures = make(map[string]FailurePatterns, len(pf.Failures))
		}
		for name, fp := range pf.Failures {
			opts.CustomFailures[name] = fp
		}
	}
	if pf.Thresholds != nil {
		pf.Thresholds.apply(&opts.Thresholds)
	}
}

func (o *ThresholdOverrides) apply(t *Thresholds) {
	if o.QuickResponseSeconds != nil {
		t.QuickResponseWindow = time.Duration(*o.QuickResponseSeconds) * time.Second
	}
	if o.LongGapSeconds != nil {
		t.LongGapWindow = time.Duration(*o.LongGapSeconds) * time.Second
	}
	if o.AbandonGapSeconds != nil {
		t.AbandonGap = time.Duration(*o.AbandonGapSeconds) * time.Second
	}
	if o.TailWindow != nil {
		t.TailWindow = *o.TailWindow
	}
	if o.ConfrontationalSentimentRate != nil {
		t.ConfrontationalSentimentRate = *o.ConfrontationalSentimentRate
	}
	if o.ConfrontationalFailureRate != nil {
		t.ConfrontationalFailureRate = *o.ConfrontationalFailureRate
	}
	if o.CollabHighThreshold != nil {
		t.CollabHighThreshold = *o.CollabHighThreshold
	}
	if o.CollabLowThreshold != nil {
		t.CollabLowThreshold = *o.CollabLowThreshold
	}
	if o.TrendWindow != nil {
		t.TrendWindow = *o.TrendWindow
	}
	if o.TrendShiftSigma != nil {
		t.TrendShiftSigma = *o.TrendShiftSigma
	}
	if o.TrendShiftFloor != nil {
		t.TrendShiftFloor = *o.TrendShiftFloor
	}
	if o.StreakMinDays != nil {
		t.StreakMinDays = *o.StreakMinDays
	}
}

func compileAll(kind string, patterns []string) error {
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return &InvalidPatternError{Kind: kind, Pattern: p, Err: err}
		}
	}
	return nil
}

func mergeLists(dst, src map[string][]string) map[string][]string {
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
	return dst
}
