package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelworks/chatsift/internal/pipeline"
)

var csvHeader = []string{
	"conversation_id", "conversation_name", "message_index", "timestamp",
	"role", "model", "content_preview", "content_length", "word_count",
	"topics", "topic_count", "sentiment",
	"has_failure", "failure_types", "failure_count", "failure_severities", "max_failure_severity",
	"pii_redactions",
	"collaboration_quality", "task_completion_status", "task_completion_confidence",
	"conversation_turn_count", "conversation_questions", "conversation_code_blocks",
	"flow_interruptions", "flow_quick_responses",
}

// WriteCSV streams every record as one flat row. List fields are
// pipe-joined; empty failure lists render as "None".
func WriteCSV(w io.Writer, records []pipeline.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.ConversationID,
			r.ConversationName,
			strconv.Itoa(r.MessageIndex),
			formatTime(r.Timestamp),
			r.Role,
			r.Model,
			r.ContentPreview,
			strconv.Itoa(r.ContentLength),
			strconv.Itoa(r.WordCount),
			strings.Join(r.Topics, "|"),
			strconv.Itoa(r.TopicCount),
			r.Sentiment,
			strconv.FormatBool(r.HasFailure),
			joinOrNone(r.FailureTypes),
			strconv.Itoa(r.FailureCount),
			joinOrNone(r.FailureSeverities),
			r.MaxFailureSeverity,
			strings.Join(r.PIIRedactions, "|"),
			r.CollaborationQuality,
			r.TaskCompletionStatus,
			strconv.FormatFloat(r.TaskCompletionConfidence, 'f', 3, 64),
			strconv.Itoa(r.ConversationTurnCount),
			strconv.Itoa(r.ConversationQuestions),
			strconv.Itoa(r.ConversationCodeBlocks),
			strconv.Itoa(r.FlowInterruptions),
			strconv.Itoa(r.FlowQuickResponses),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, "|")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
