// Package temporal builds the corpus-wide activity profile: an
// hour-by-weekday histogram, consecutive-day activity streaks, and
// trend-shift points in the rolling sentiment mix. It runs after every
// conversation has been classified (global barrier) and only consumes
// labels and timestamps.
package temporal

import (
	"math"
	"sort"
	"time"

	"github.com/kestrelworks/chatsift/internal/classify"
	"github.com/kestrelworks/chatsift/internal/config"
)

// Sample is the temporal view of one classified message.
type Sample struct {
	Timestamp time.Time
	Sentiment classify.Sentiment
}

// Streak is a run of consecutive days with at least one message.
type Streak struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Days     int       `json:"days"`
	Messages int       `json:"messages"`
}

// Shift marks a point where the rolling sentiment mean moved beyond
// the configured threshold.
type Shift struct {
	Timestamp time.Time `json:"timestamp"`
	Magnitude float64   `json:"magnitude"`
	Direction string    `json:"direction"` // "positive" or "negative"
}

// Profile is the corpus-wide temporal summary.
type Profile struct {
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Histogram [7][24]int  `json:"histogram"` // weekday (Sunday=0) x hour
	PeakHours []int       `json:"peak_hours"`
	TopDays   []string    `json:"top_days"`
	Streaks   []Streak    `json:"streaks"`
	Shifts    []Shift     `json:"shifts"`
}

// Build computes the profile over every sample in the corpus. Samples
// without timestamps contribute nothing. The input is not modified.
func Build(samples []Sample, th config.Thresholds) *Profile {
	p := &Profile{}

	dated := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Timestamp.IsZero() {
			dated = append(dated, s)
		}
	}
	if len(dated) == 0 {
		return p
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].Timestamp.Before(dated[j].Timestamp) })

	p.Start = dated[0].Timestamp
	p.End = dated[len(dated)-1].Timestamp

	byDay := make(map[time.Time]int)
	for _, s := range dated {
		t := s.Timestamp.UTC()
		p.Histogram[int(t.Weekday())][t.Hour()]++
		byDay[t.Truncate(24*time.Hour)]++
	}

	p.PeakHours = peakHours(p.Histogram)
	p.TopDays = topDays(p.Histogram)
	p.Streaks = streaks(byDay, th.StreakMinDays)
	p.Shifts = detectShifts(dated, th)
	return p
}

// LongestStreak returns the longest streak, or a zero value when the
// corpus has none above the minimum.
func (p *Profile) LongestStreak() Streak {
	if len(p.Streaks) == 0 {
		return Streak{}
	}
	return p.Streaks[0]
}

// peakHours returns the three busiest hours of day, ties broken by
// earlier hour.
func peakHours(hist [7][24]int) []int {
	var totals [24]int
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			totals[h] += hist[d][h]
		}
	}
	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}
	sort.SliceStable(hours, func(i, j int) bool { return totals[hours[i]] > totals[hours[j]] })

	var out []int
	for _, h := range hours[:3] {
		if totals[h] > 0 {
			out = append(out, h)
		}
	}
	return out
}

// topDays returns the three busiest weekdays by name.
func topDays(hist [7][24]int) []string {
	var totals [7]int
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			totals[d] += hist[d][h]
		}
	}
	days := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	sort.SliceStable(days, func(i, j int) bool { return totals[days[i]] > totals[days[j]] })

	var out []string
	for _, d := range days[:3] {
		if totals[d] > 0 {
			out = append(out, d.String())
		}
	}
	return out
}

// streaks finds runs of consecutive active days of at least minDays,
// longest first.
func streaks(byDay map[time.Time]int, minDays int) []Streak {
	if len(byDay) == 0 {
		return nil
	}
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var out []Streak
	start := days[0]
	msgs := byDay[days[0]]
	length := 1

	flush := func(end time.Time) {
		if length >= minDays {
			out = append(out, Streak{Start: start, End: end, Days: length, Messages: msgs})
		}
	}

	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			length++
			msgs += byDay[days[i]]
			continue
		}
		flush(days[i-1])
		start = days[i]
		msgs = byDay[days[i]]
		length = 1
	}
	flush(days[len(days)-1])

	sort.SliceStable(out, func(i, j int) bool { return out[i].Days > out[j].Days })
	return out
}

// detectShifts flags points where the rolling sentiment mean moves by
// more than TrendShiftSigma standard deviations of the prior window's
// scores, with TrendShiftFloor as the absolute fallback when the prior
// window shows no variance.
func detectShifts(samples []Sample, th config.Thresholds) []Shift {
	window := th.TrendWindow
	if window < 2 || len(samples) < 2 {
		return nil
	}

	scores := make([]float64, len(samples))
	for i, s := range samples {
		switch {
		case s.Sentiment.IsPositive():
			scores[i] = 1
		case s.Sentiment.IsNegative():
			scores[i] = -1
		}
	}

	means := rollingMean(scores, window)

	var shifts []Shift
	for i := 1; i < len(means); i++ {
		delta := means[i] - means[i-1]
		mag := math.Abs(delta)

		threshold := th.TrendShiftFloor
		if sd := priorStddev(scores, i, window); sd > 0 {
			// Stddev of the prior window, scaled down to the step size
			// of a window-length rolling mean.
			threshold = th.TrendShiftSigma * sd / float64(window)
		}
		if mag <= threshold {
			continue
		}

		dir := "negative"
		if means[i] > means[i-1] {
			dir = "positive"
		}
		shifts = append(shifts, Shift{
			Timestamp: samples[i].Timestamp,
			Magnitude: mag,
			Direction: dir,
		})
	}
	return shifts
}

// rollingMean averages over the trailing window, shrinking at the
// start so every position has a value.
func rollingMean(scores []float64, window int) []float64 {
	means := make([]float64, len(scores))
	sum := 0.0
	for i, v := range scores {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= scores[i-window]
		}
		means[i] = sum / float64(n)
	}
	return means
}

// priorStddev is the population standard deviation of the scores in
// the window strictly before position i.
func priorStddev(scores []float64, i, window int) float64 {
	lo := i - window
	if lo < 0 {
		lo = 0
	}
	prior := scores[lo:i]
	if len(prior) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range prior {
		mean += v
	}
	mean /= float64(len(prior))

	variance := 0.0
	for _, v := range prior {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(prior))
	return math.Sqrt(variance)
}
