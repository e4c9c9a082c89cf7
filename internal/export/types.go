package export

import "time"

// Roles are normalized at load time; aliases from other export formats
// (human, bot) map onto these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one exported conversation with its ordered messages.
// Message order is chronological order. The loader builds it once;
// downstream stages treat it as read-only.
type Conversation struct {
	ID        string
	Name      string
	Model     string
	CreatedAt time.Time
	Messages  []Message
}

// Message is a single turn in a conversation. RawText is only read by
// the privacy stage; everything after that works on redacted text.
type Message struct {
	ConversationID string
	Index          int // 0-based position among kept messages
	Role           string
	Timestamp      time.Time
	RawText        string
	ContentLength  int // rune count of RawText
	WordCount      int
}
