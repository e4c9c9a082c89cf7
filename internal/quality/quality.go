// Package quality derives per-conversation quality metrics from the
// ordered label sets of a conversation's messages. It never reads
// message text: everything here is a function of labels, roles and
// timestamps.
package quality

import (
	"time"

	"github.com/kestrelworks/chatsift/internal/classify"
	"github.com/kestrelworks/chatsift/internal/config"
	"github.com/kestrelworks/chatsift/internal/export"
)

// Collaboration quality buckets.
const (
	CollabHigh            = "high"
	CollabMedium          = "medium"
	CollabLow             = "low"
	CollabConfrontational = "confrontational"
)

// Task completion statuses.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusAbandoned  = "abandoned"
	StatusBlocked    = "blocked"
)

// Weights for the collaboration score. Failure density and negative
// sentiment dominate; broken turn-taking contributes the remainder.
const (
	weightFailureDensity = 0.4
	weightNegativeRate   = 0.4
	weightInterruptions  = 0.2
)

// MessageLabel is the label-only view of one classified message. The
// question and code-fence markers are computed upstream on redacted
// text so this package never touches content.
type MessageLabel struct {
	Role         string
	Timestamp    time.Time
	Sentiment    classify.Sentiment
	FailureCount int
	MaxSeverity  classify.Severity
	HasQuestion  bool
	HasCodeFence bool
}

// Report is the per-conversation quality verdict.
type Report struct {
	TurnCount            int     `json:"turn_count"`
	QuestionCount        int     `json:"question_count"`
	CodeBlockCount       int     `json:"code_block_count"`
	FlowInterruptions    int     `json:"flow_interruptions"`
	QuickResponses       int     `json:"quick_responses"`
	LongGaps             int     `json:"long_gaps"`
	Collaboration        string  `json:"collaboration_quality"`
	CompletionStatus     string  `json:"task_completion_status"`
	CompletionConfidence float64 `json:"task_completion_confidence"`
}

// Analyze computes the quality report for one conversation's ordered
// labels.
func Analyze(labels []MessageLabel, th config.Thresholds) Report {
	r := Report{
		TurnCount:        len(labels),
		Collaboration:    CollabMedium,
		CompletionStatus: StatusInProgress,
	}
	if len(labels) == 0 {
		return r
	}

	for _, l := range labels {
		if l.Role == export.RoleUser && (l.HasQuestion || l.Sentiment == classify.SentimentQuestioning) {
			r.QuestionCount++
		}
		if l.Role == export.RoleAssistant && l.HasCodeFence {
			r.CodeBlockCount++
		}
	}

	r.FlowInterruptions, r.QuickResponses, r.LongGaps = analyzeFlow(labels, th)
	r.Collaboration = collaboration(labels, r.FlowInterruptions, th)
	r.CompletionStatus, r.CompletionConfidence = completion(labels, th)
	return r
}

// analyzeFlow walks adjacent pairs: same role breaks the expected
// alternation, alternating pairs under the quick-response window count
// as quick, and any pair over the long-gap window counts as a gap.
func analyzeFlow(labels []MessageLabel, th config.Thresholds) (interruptions, quick, gaps int) {
	for i := 1; i < len(labels); i++ {
		cur, prev := labels[i], labels[i-1]
		if cur.Role == prev.Role {
			interruptions++
			continue
		}
		if cur.Timestamp.IsZero() || prev.Timestamp.IsZero() {
			continue
		}
		dt := cur.Timestamp.Sub(prev.Timestamp)
		if dt >= 0 && dt < th.QuickResponseWindow {
			quick++
		} else if dt > th.LongGapWindow {
			gaps++
		}
	}
	return interruptions, quick, gaps
}

// collaboration buckets the conversation by failure density, negative
// sentiment frequency and flow interruptions. Confrontational takes
// precedence when both the negative-sentiment and high-severity rates
// clear their thresholds.
func collaboration(labels []MessageLabel, interruptions int, th config.Thresholds) string {
	n := float64(len(labels))

	var negatives, highSev, failures int
	for _, l := range labels {
		if l.Sentiment.IsNegative() {
			negatives++
		}
		if l.MaxSeverity == classify.SeverityHigh {
			highSev++
		}
		failures += l.FailureCount
	}

	negRate := float64(negatives) / n
	highRate := float64(highSev) / n
	if negRate >= th.ConfrontationalSentimentRate && highRate >= th.ConfrontationalFailureRate {
		return CollabConfrontational
	}

	score := 1.0 -
		weightFailureDensity*clamp01(float64(failures)/n) -
		weightNegativeRate*negRate -
		weightInterruptions*clamp01(float64(interruptions)/n)

	switch {
	case score >= th.CollabHighThreshold:
		return CollabHigh
	case score >= th.CollabLowThreshold:
		return CollabMedium
	default:
		return CollabLow
	}
}

// completion infers the task completion status from the conversation
// tail. Four independent signals vote: a closing affirmation votes
// completed, an unresolved high-severity failure near the end votes
// blocked, and a trailing run of unanswered user messages or a long
// trailing gap vote abandoned. Confidence follows the vote agreement,
// normalized against total votes plus one.
func completion(labels []MessageLabel, th config.Thresholds) (string, float64) {
	tailStart := len(labels) - th.TailWindow
	if tailStart < 0 {
		tailStart = 0
	}
	tail := labels[tailStart:]

	var affirmation, tailFailure bool
	for _, l := range tail {
		if l.Sentiment.IsPositive() {
			affirmation = true
		}
		if l.MaxSeverity == classify.SeverityHigh {
			tailFailure = true
		}
	}

	unanswered := trailingUserRun(labels) >= 2
	gap := trailingGap(labels) > th.AbandonGap

	completed, blocked, abandoned := 0, 0, 0
	if affirmation {
		completed++
	}
	if tailFailure {
		blocked++
	}
	if unanswered {
		abandoned++
	}
	if gap {
		abandoned++
	}

	total := completed + blocked + abandoned
	if total == 0 {
		return StatusInProgress, 0
	}

	var status string
	var agree int
	switch {
	case completed > blocked+abandoned:
		status = StatusCompleted
		agree = completed
	case abandoned > 0:
		status = StatusAbandoned
		agree = abandoned + blocked // both point away from completion
	default:
		status = StatusBlocked
		agree = blocked + abandoned
	}

	return status, float64(agree) / float64(total+1)
}

// trailingUserRun counts consecutive user messages at the very end of
// the conversation.
func trailingUserRun(labels []MessageLabel) int {
	run := 0
	for i := len(labels) - 1; i >= 0; i-- {
		if labels[i].Role != export.RoleUser {
			break
		}
		run++
	}
	return run
}

// trailingGap is the gap between the final two messages, zero when
// timestamps are missing.
func trailingGap(labels []MessageLabel) time.Duration {
	if len(labels) < 2 {
		return 0
	}
	last, prev := labels[len(labels)-1], labels[len(labels)-2]
	if last.Timestamp.IsZero() || prev.Timestamp.IsZero() {
		return 0
	}
	return last.Timestamp.Sub(prev.Timestamp)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
