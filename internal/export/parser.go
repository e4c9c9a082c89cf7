package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MalformedExportError reports an export document whose top-level
// shape is unusable. The whole load aborts; partial corpora are never
// emitted.
type MalformedExportError struct {
	Reason string
	Err    error
}

func (e *MalformedExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed export: %s: %v", e.Reason, e.Err)
	}
	return "malformed export: " + e.Reason
}

func (e *MalformedExportError) Unwrap() error { return e.Err }

// MalformedMessageError reports a message missing a required field or
// carrying an unparsable timestamp. Like MalformedExportError it aborts
// the whole load.
type MalformedMessageError struct {
	ConversationID string
	Index          int // position in the raw message list
	Reason         string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("conversation %s message %d: %s", e.ConversationID, e.Index, e.Reason)
}

// minMessageLength is the shortest trimmed text kept as a message;
// anything below is dropped as noise.
const minMessageLength = 3

type rawExport struct {
	Conversations *[]rawConversation `json:"conversations"`
}

type rawConversation struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Model        string          `json:"model"`
	CreatedAt    json.RawMessage `json:"created_at"`
	Messages     []rawMessage    `json:"messages"`
	ChatMessages []rawMessage    `json:"chat_messages"`
}

type rawMessage struct {
	Role      string          `json:"role"`
	Sender    string          `json:"sender"`
	Text      string          `json:"text"`
	Content   json.RawMessage `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParseFile loads an export document from disk.
func ParseFile(path string) ([]Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes an export document into typed conversations. A missing
// conversations collection fails with MalformedExportError; a message
// missing role or text, or carrying an unparsable timestamp, fails with
// MalformedMessageError.
func Parse(r io.Reader) ([]Conversation, error) {
	var raw rawExport
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &MalformedExportError{Reason: "top level is not a JSON object", Err: err}
	}
	if raw.Conversations == nil {
		return nil, &MalformedExportError{Reason: "missing conversations collection"}
	}

	convs := make([]Conversation, 0, len(*raw.Conversations))
	for _, rc := range *raw.Conversations {
		conv, err := buildConversation(rc)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

func buildConversation(rc rawConversation) (Conversation, error) {
	id := rc.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := rc.Name
	if name == "" {
		name = "Untitled"
	}

	createdAt, ok, err := parseTime(rc.CreatedAt)
	if err != nil {
		return Conversation{}, &MalformedExportError{
			Reason: fmt.Sprintf("conversation %s: unparsable created_at", id),
			Err:    err,
		}
	}
	_ = ok // a conversation without created_at is fine; messages then need their own timestamps

	rawMsgs := rc.Messages
	if rawMsgs == nil {
		rawMsgs = rc.ChatMessages
	}

	conv := Conversation{
		ID:        id,
		Name:      name,
		Model:     rc.Model,
		CreatedAt: createdAt,
	}

	for i, rm := range rawMsgs {
		msg, keep, err := buildMessage(rm, conv, i)
		if err != nil {
			return Conversation{}, err
		}
		if !keep {
			continue
		}
		msg.Index = len(conv.Messages)
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, nil
}

func buildMessage(rm rawMessage, conv Conversation, rawIdx int) (Message, bool, error) {
	role := rm.Role
	if role == "" {
		role = rm.Sender
	}
	role, err := normalizeRole(role)
	if err != nil {
		return Message{}, false, &MalformedMessageError{ConversationID: conv.ID, Index: rawIdx, Reason: err.Error()}
	}

	text := rm.Text
	if text == "" {
		if rm.Content == nil {
			return Message{}, false, &MalformedMessageError{ConversationID: conv.ID, Index: rawIdx, Reason: "missing text"}
		}
		text = extractContent(rm.Content)
	}
	if len(strings.TrimSpace(text)) < minMessageLength {
		return Message{}, false, nil
	}

	ts, ok, err := parseTime(rm.CreatedAt)
	if err != nil {
		return Message{}, false, &MalformedMessageError{ConversationID: conv.ID, Index: rawIdx, Reason: "unparsable created_at: " + err.Error()}
	}
	if !ok {
		ts, ok, err = parseTime(rm.Timestamp)
		if err != nil {
			return Message{}, false, &MalformedMessageError{ConversationID: conv.ID, Index: rawIdx, Reason: "unparsable timestamp: " + err.Error()}
		}
	}
	if !ok {
		ts = conv.CreatedAt
	}

	return Message{
		ConversationID: conv.ID,
		Role:           role,
		Timestamp:      ts,
		RawText:        text,
		ContentLength:  utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
	}, true, nil
}

func normalizeRole(role string) (string, error) {
	switch strings.ToLower(role) {
	case "user", "human":
		return RoleUser, nil
	case "assistant", "bot":
		return RoleAssistant, nil
	case "":
		return "", fmt.Errorf("missing role")
	default:
		return "", fmt.Errorf("unsupported role %q", role)
	}
}

// extractContent handles the two content shapes seen in exports: a
// plain string, or an array of typed blocks where only text blocks
// carry message content.
func extractContent(raw json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range blocks {
		if b.Type != "text" || b.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts ISO-8601 strings and epoch-second numbers. The
// second return is false when the field is absent or JSON null.
func parseTime(raw json.RawMessage) (time.Time, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized time %q", s)
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		sec := int64(epoch)
		nsec := int64((epoch - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true, nil
	}

	return time.Time{}, false, fmt.Errorf("unrecognized time value %s", string(raw))
}
