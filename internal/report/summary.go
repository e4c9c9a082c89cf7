package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/kestrelworks/chatsift/internal/pipeline"
)

// topN caps the entries shown per distribution on the console.
const topN = 10

// PrintSummary renders the run summary to the console.
func PrintSummary(w io.Writer, res *pipeline.Result) {
	header := color.New(color.FgCyan, color.Bold)
	section := color.New(color.Bold)
	warn := color.New(color.FgYellow)

	s := res.Summary

	header.Fprintln(w, "CONVERSATION ANALYSIS SUMMARY")
	fmt.Fprintln(w)

	section.Fprintln(w, "Overall:")
	fmt.Fprintf(w, "  Conversations:       %d\n", s.TotalConversations)
	fmt.Fprintf(w, "  Messages:            %d (user %d / assistant %d)\n",
		s.TotalMessages, s.UserMessages, s.AssistantMessages)
	fmt.Fprintf(w, "  Avg message length:  %.1f chars, %.1f words\n",
		s.AvgMessageLength, s.AvgWordCount)
	fmt.Fprintln(w)

	section.Fprintln(w, "Top topics:")
	for _, e := range sortedByCount(s.TopicDistribution, topN) {
		fmt.Fprintf(w, "  %-24s %d\n", e.name, e.count)
	}
	fmt.Fprintln(w)

	section.Fprintln(w, "Sentiment:")
	for _, e := range sortedByCount(s.SentimentDistribution, topN) {
		pct := float64(e.count) / float64(s.TotalMessages) * 100
		fmt.Fprintf(w, "  %-24s %d (%.1f%%)\n", e.name, e.count, pct)
	}
	fmt.Fprintln(w)

	section.Fprintln(w, "Failures:")
	fmt.Fprintf(w, "  Messages with failures: %d\n", s.MessagesWithFailures)
	if s.MessagesWithFailures > 0 {
		warn.Fprintf(w, "  Failure rate:           %.1f%%\n", s.FailureRate)
	} else {
		fmt.Fprintf(w, "  Failure rate:           %.1f%%\n", s.FailureRate)
	}
	for _, e := range sortedByCount(s.FailureDistribution, topN) {
		fmt.Fprintf(w, "    %-22s %d\n", e.name, e.count)
	}

	if len(s.PIIRedactions) > 0 {
		fmt.Fprintln(w)
		section.Fprintln(w, "PII redacted:")
		for _, e := range sortedByCount(s.PIIRedactions, topN) {
			fmt.Fprintf(w, "  %-24s %d\n", e.name, e.count)
		}
		fmt.Fprintf(w, "  Entities pseudonymized: %d\n", s.EntitiesPseudonymized)
	}
}

type countEntry struct {
	name  string
	count int
}

// sortedByCount orders a distribution by count descending, then name,
// keeping at most n entries.
func sortedByCount(m map[string]int, n int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, countEntry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
