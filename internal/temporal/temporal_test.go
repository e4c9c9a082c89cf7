package temporal

import (
	"testing"
	"time"

	"github.com/kestrelworks/chatsift/internal/classify"
	"github.com/kestrelworks/chatsift/internal/config"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day int, hour int) Sample {
	return Sample{
		Timestamp: monday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour),
		Sentiment: classify.SentimentNeutral,
	}
}

func TestBuild_Empty(t *testing.T) {
	p := Build(nil, config.DefaultThresholds())

	if !p.Start.IsZero() || !p.End.IsZero() {
		t.Errorf("empty corpus got range %v..%v", p.Start, p.End)
	}
	if len(p.Streaks) != 0 || len(p.Shifts) != 0 {
		t.Errorf("empty corpus got streaks %v shifts %v", p.Streaks, p.Shifts)
	}
	if got := p.LongestStreak(); got.Days != 0 {
		t.Errorf("LongestStreak() = %+v, want zero", got)
	}
}

func TestBuild_DropsUndatedSamples(t *testing.T) {
	p := Build([]Sample{{Sentiment: classify.SentimentPositive}}, config.DefaultThresholds())

	if !p.Start.IsZero() {
		t.Errorf("undated sample set the range start to %v", p.Start)
	}
}

func TestBuild_HistogramAndPeaks(t *testing.T) {
	samples := []Sample{at(0, 10), at(0, 10), at(0, 14)}

	p := Build(samples, config.DefaultThresholds())

	if p.Histogram[int(time.Monday)][10] != 2 {
		t.Errorf("Monday 10h = %d, want 2", p.Histogram[int(time.Monday)][10])
	}
	if p.Histogram[int(time.Monday)][14] != 1 {
		t.Errorf("Monday 14h = %d, want 1", p.Histogram[int(time.Monday)][14])
	}
	if len(p.PeakHours) != 2 || p.PeakHours[0] != 10 || p.PeakHours[1] != 14 {
		t.Errorf("PeakHours = %v, want [10 14]", p.PeakHours)
	}
	if len(p.TopDays) != 1 || p.TopDays[0] != "Monday" {
		t.Errorf("TopDays = %v, want [Monday]", p.TopDays)
	}
	if !p.Start.Equal(samples[0].Timestamp) || !p.End.Equal(samples[2].Timestamp) {
		t.Errorf("range = %v..%v", p.Start, p.End)
	}
}

func TestBuild_Streaks(t *testing.T) {
	samples := []Sample{
		at(0, 9), at(0, 17), // two messages on day one
		at(1, 9),
		at(2, 9),
		// gap
		at(8, 9),
		at(9, 9), // two-day run, below the minimum
	}

	p := Build(samples, config.DefaultThresholds())

	if len(p.Streaks) != 1 {
		t.Fatalf("got %d streaks, want 1: %+v", len(p.Streaks), p.Streaks)
	}
	s := p.Streaks[0]
	if s.Days != 3 {
		t.Errorf("streak days = %d, want 3", s.Days)
	}
	if s.Messages != 4 {
		t.Errorf("streak messages = %d, want 4", s.Messages)
	}
	if !s.Start.Equal(monday) {
		t.Errorf("streak start = %v, want %v", s.Start, monday)
	}
	if got := p.LongestStreak(); got.Days != 3 {
		t.Errorf("LongestStreak().Days = %d, want 3", got.Days)
	}
}

func TestDetectShifts_PositiveToNegativeRun(t *testing.T) {
	th := config.DefaultThresholds()
	th.TrendWindow = 4

	samples := make([]Sample, 20)
	for i := range samples {
		sent := classify.SentimentPositive
		if i >= 10 {
			sent = classify.SentimentNegative
		}
		samples[i] = Sample{
			Timestamp: monday.Add(time.Duration(i) * time.Minute),
			Sentiment: sent,
		}
	}

	p := Build(samples, th)

	if len(p.Shifts) != 2 {
		t.Fatalf("got %d shifts, want 2: %+v", len(p.Shifts), p.Shifts)
	}
	for _, s := range p.Shifts {
		if s.Direction != "negative" {
			t.Errorf("shift direction = %q, want negative", s.Direction)
		}
	}
	if !p.Shifts[0].Timestamp.Equal(samples[11].Timestamp) {
		t.Errorf("first shift at %v, want %v", p.Shifts[0].Timestamp, samples[11].Timestamp)
	}
}

func TestDetectShifts_StableCorpus(t *testing.T) {
	samples := make([]Sample, 30)
	for i := range samples {
		samples[i] = Sample{
			Timestamp: monday.Add(time.Duration(i) * time.Minute),
			Sentiment: classify.SentimentPositive,
		}
	}

	p := Build(samples, config.DefaultThresholds())

	if len(p.Shifts) != 0 {
		t.Errorf("stable corpus produced shifts: %+v", p.Shifts)
	}
}
