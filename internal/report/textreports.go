package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kestrelworks/chatsift/internal/pipeline"
)

const ruleWidth = 60

// WriteQualityReport summarizes per-conversation quality: bucket
// distributions and average conversation metrics.
func WriteQualityReport(w io.Writer, res *pipeline.Result) error {
	writeTitle(w, "CONVERSATION QUALITY REPORT")

	if len(res.Quality) == 0 {
		fmt.Fprintln(w, "quality analysis disabled for this run")
		return nil
	}

	collab := make(map[string]int)
	completion := make(map[string]int)
	var turns, questions, codeBlocks int
	for _, qr := range res.Quality {
		collab[qr.Collaboration]++
		completion[qr.CompletionStatus]++
		turns += qr.TurnCount
		questions += qr.QuestionCount
		codeBlocks += qr.CodeBlockCount
	}
	n := float64(len(res.Quality))

	fmt.Fprintln(w, "Collaboration quality:")
	writeDistribution(w, collab, len(res.Quality))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Task completion:")
	writeDistribution(w, completion, len(res.Quality))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Averages per conversation:")
	fmt.Fprintf(w, "  turns:       %.1f\n", float64(turns)/n)
	fmt.Fprintf(w, "  questions:   %.1f\n", float64(questions)/n)
	fmt.Fprintf(w, "  code blocks: %.1f\n", float64(codeBlocks)/n)
	return nil
}

// WriteTemporalReport summarizes the corpus activity profile.
func WriteTemporalReport(w io.Writer, res *pipeline.Result) error {
	writeTitle(w, "TEMPORAL EVOLUTION REPORT")

	p := res.Temporal
	if p == nil {
		fmt.Fprintln(w, "temporal analysis disabled for this run")
		return nil
	}
	if p.Start.IsZero() {
		fmt.Fprintln(w, "no timestamped messages in corpus")
		return nil
	}

	fmt.Fprintf(w, "Period: %s to %s (%d days)\n\n",
		p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"),
		int(p.End.Sub(p.Start)/(24*time.Hour))+1)

	fmt.Fprintf(w, "Peak hours:   %v\n", p.PeakHours)
	fmt.Fprintf(w, "Busiest days: %s\n\n", strings.Join(p.TopDays, ", "))

	if len(p.Streaks) > 0 {
		fmt.Fprintln(w, "Activity streaks:")
		for i, st := range p.Streaks {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "  %s to %s: %d days, %d messages\n",
				st.Start.Format("2006-01-02"), st.End.Format("2006-01-02"), st.Days, st.Messages)
		}
		fmt.Fprintln(w)
	}

	if len(p.Shifts) > 0 {
		fmt.Fprintln(w, "Sentiment trend shifts:")
		for i, sh := range p.Shifts {
			if i == 10 {
				break
			}
			fmt.Fprintf(w, "  %s: %s shift, magnitude %.2f\n",
				sh.Timestamp.Format(time.RFC3339), sh.Direction, sh.Magnitude)
		}
	}
	return nil
}

// WriteExecutiveSummary is the one-page rollup of a whole run.
func WriteExecutiveSummary(w io.Writer, res *pipeline.Result) error {
	writeTitle(w, "EXECUTIVE SUMMARY")
	fmt.Fprintf(w, "Run %s, generated %s\n\n", res.RunID, res.GeneratedAt.Format(time.RFC3339))

	s := res.Summary
	fmt.Fprintln(w, "Key metrics:")
	fmt.Fprintf(w, "  conversations:      %d\n", s.TotalConversations)
	fmt.Fprintf(w, "  messages:           %d\n", s.TotalMessages)
	fmt.Fprintf(w, "  user/assistant:     %d / %d\n", s.UserMessages, s.AssistantMessages)
	fmt.Fprintf(w, "  avg length (chars): %.0f\n", s.AvgMessageLength)
	fmt.Fprintf(w, "  avg words:          %.1f\n\n", s.AvgWordCount)

	fmt.Fprintln(w, "Top topics:")
	for _, e := range sortedByCount(s.TopicDistribution, 5) {
		fmt.Fprintf(w, "  %s: %d\n", e.name, e.count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Sentiment:")
	for _, e := range sortedByCount(s.SentimentDistribution, 5) {
		fmt.Fprintf(w, "  %s: %d\n", e.name, e.count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Messages with failures: %d (%.1f%% of assistant messages)\n",
		s.MessagesWithFailures, s.FailureRate)
	for _, e := range sortedByCount(s.FailureDistribution, 5) {
		fmt.Fprintf(w, "  %s: %d\n", e.name, e.count)
	}
	return nil
}

func writeTitle(w io.Writer, title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(w, "%s\n%s\n%s\n\n", rule, title, rule)
}

func writeDistribution(w io.Writer, dist map[string]int, total int) {
	for _, e := range sortedByCount(dist, topN) {
		pct := float64(e.count) / float64(total) * 100
		fmt.Fprintf(w, "  %-18s %d (%.1f%%)\n", e.name, e.count, pct)
	}
}
