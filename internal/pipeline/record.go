package pipeline

import (
	"fmt"
	"time"

	"github.com/kestrelworks/chatsift/internal/quality"
	"github.com/kestrelworks/chatsift/internal/temporal"
)

// Record is the flat per-message row handed to the sink layer. The
// owning conversation's quality metrics are duplicated onto every row
// because the sinks are flat tabular formats.
type Record struct {
	ConversationID   string    `json:"conversation_id"`
	ConversationName string    `json:"conversation_name"`
	MessageIndex     int       `json:"message_index"`
	Timestamp        time.Time `json:"timestamp"`
	Role             string    `json:"role"`
	Model            string    `json:"model,omitempty"`

	ContentPreview string `json:"content_preview"`
	ContentLength  int    `json:"content_length"`
	WordCount      int    `json:"word_count"`

	Topics     []string `json:"topics"`
	TopicCount int      `json:"topic_count"`
	Sentiment  string   `json:"sentiment"`

	HasFailure         bool     `json:"has_failure"`
	FailureTypes       []string `json:"failure_types,omitempty"`
	FailureCount       int      `json:"failure_count"`
	FailureSeverities  []string `json:"failure_severities,omitempty"`
	MaxFailureSeverity string   `json:"max_failure_severity"`

	PIIRedactions []string `json:"pii_redactions,omitempty"`

	CollaborationQuality     string  `json:"collaboration_quality,omitempty"`
	TaskCompletionStatus     string  `json:"task_completion_status,omitempty"`
	TaskCompletionConfidence float64 `json:"task_completion_confidence"`
	ConversationTurnCount    int     `json:"conversation_turn_count"`
	ConversationQuestions    int     `json:"conversation_questions"`
	ConversationCodeBlocks   int     `json:"conversation_code_blocks"`
	FlowInterruptions        int     `json:"flow_interruptions"`
	FlowQuickResponses       int     `json:"flow_quick_responses"`
}

// Summary aggregates the whole run for reports and the console.
type Summary struct {
	TotalConversations    int            `json:"total_conversations"`
	TotalMessages         int            `json:"total_messages"`
	UserMessages          int            `json:"user_messages"`
	AssistantMessages     int            `json:"assistant_messages"`
	AvgMessageLength      float64        `json:"avg_message_length"`
	AvgWordCount          float64        `json:"avg_word_count"`
	TopicDistribution     map[string]int `json:"topic_distribution"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	FailureDistribution   map[string]int `json:"failure_distribution"`
	MessagesWithFailures  int            `json:"messages_with_failures"`
	FailureRate           float64        `json:"failure_rate"` // percent of assistant messages
	PIIRedactions         map[string]int `json:"pii_redactions"`
	EntitiesPseudonymized int            `json:"entities_pseudonymized"`
}

// Result is everything one run produces.
type Result struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Records     []Record                  `json:"records"`
	Quality     map[string]quality.Report `json:"quality,omitempty"`  // keyed by conversation id
	Temporal    *temporal.Profile         `json:"temporal,omitempty"` // nil when disabled
	Summary     Summary                   `json:"summary"`
}

// InvariantViolation signals that an upstream stage's output was
// missing when the assembler ran. It is a programming defect, not a
// user-recoverable condition.
type InvariantViolation struct {
	ConversationID string
	MessageIndex   int
	Detail         string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: conversation %s message %d: %s",
		e.ConversationID, e.MessageIndex, e.Detail)
}
