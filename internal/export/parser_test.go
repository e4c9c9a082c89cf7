package export

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParse_ValidExport(t *testing.T) {
	doc := `{
		"conversations": [{
			"id": "conv-1",
			"name": "Deploy help",
			"model": "claude-3",
			"created_at": "2026-03-02T10:00:00Z",
			"messages": [
				{"role": "user", "text": "How do I deploy this?", "created_at": "2026-03-02T10:00:00Z"},
				{"role": "assistant", "text": "Run the deploy script.", "created_at": "2026-03-02T10:00:30Z"}
			]
		}]
	}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}

	conv := convs[0]
	if conv.ID != "conv-1" || conv.Name != "Deploy help" || conv.Model != "claude-3" {
		t.Errorf("conversation fields = %q %q %q", conv.ID, conv.Name, conv.Model)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}

	first := conv.Messages[0]
	if first.Role != RoleUser {
		t.Errorf("role = %q, want user", first.Role)
	}
	if first.Index != 0 || conv.Messages[1].Index != 1 {
		t.Errorf("indices = %d, %d", first.Index, conv.Messages[1].Index)
	}
	if first.WordCount != 5 {
		t.Errorf("word count = %d, want 5", first.WordCount)
	}
	if first.ConversationID != "conv-1" {
		t.Errorf("conversation back-reference = %q", first.ConversationID)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}
}

func TestParse_MissingConversations(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"sessions": []}`))

	var exportErr *MalformedExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected MalformedExportError, got %v", err)
	}
}

func TestParse_TopLevelNotObject(t *testing.T) {
	_, err := Parse(strings.NewReader(`[1, 2, 3]`))

	var exportErr *MalformedExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected MalformedExportError, got %v", err)
	}
}

func TestParse_MissingRole(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [{"text": "hello there"}]}]}`

	_, err := Parse(strings.NewReader(doc))
	var msgErr *MalformedMessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("expected MalformedMessageError, got %v", err)
	}
	if msgErr.ConversationID != "c1" || msgErr.Index != 0 {
		t.Errorf("error location = %s/%d", msgErr.ConversationID, msgErr.Index)
	}
}

func TestParse_MissingText(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [{"role": "user"}]}]}`

	_, err := Parse(strings.NewReader(doc))
	var msgErr *MalformedMessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("expected MalformedMessageError, got %v", err)
	}
}

func TestParse_UnparsableTimestamp(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [
		{"role": "user", "text": "hello there", "created_at": "next tuesday"}
	]}]}`

	_, err := Parse(strings.NewReader(doc))
	var msgErr *MalformedMessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("expected MalformedMessageError for bad timestamp, got %v", err)
	}
}

func TestParse_FailureAbortsWholeLoad(t *testing.T) {
	// The second conversation is broken; nothing is returned for the first.
	doc := `{"conversations": [
		{"id": "good", "messages": [{"role": "user", "text": "hello there"}]},
		{"id": "bad", "messages": [{"text": "no role"}]}
	]}`

	convs, err := Parse(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error")
	}
	if convs != nil {
		t.Errorf("expected no partial corpus, got %d conversations", len(convs))
	}
}

func TestParse_EpochSeconds(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [
		{"role": "user", "text": "hello there", "created_at": 1772445600}
	]}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := convs[0].Messages[0].Timestamp
	if got.Year() != 2026 {
		t.Errorf("epoch timestamp parsed to %v", got)
	}
}

func TestParse_RoleAliasesAndSenderKey(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "chat_messages": [
		{"sender": "human", "text": "hello there"},
		{"sender": "bot", "text": "hi, how can I help"}
	]}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	msgs := convs[0].Messages
	if msgs[0].Role != RoleUser {
		t.Errorf("human normalized to %q", msgs[0].Role)
	}
	if msgs[1].Role != RoleAssistant {
		t.Errorf("bot normalized to %q", msgs[1].Role)
	}
}

func TestParse_UnsupportedRole(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [{"role": "system", "text": "be nice"}]}]}`

	_, err := Parse(strings.NewReader(doc))
	var msgErr *MalformedMessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("expected MalformedMessageError for unsupported role, got %v", err)
	}
}

func TestParse_SkipsShortMessages(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [
		{"role": "user", "text": "ok"},
		{"role": "user", "text": "a real message"},
		{"role": "assistant", "text": "  "},
		{"role": "assistant", "text": "another real message"}
	]}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	msgs := convs[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 kept messages, got %d", len(msgs))
	}
	// Kept messages are re-indexed contiguously.
	if msgs[0].Index != 0 || msgs[1].Index != 1 {
		t.Errorf("indices = %d, %d", msgs[0].Index, msgs[1].Index)
	}
}

func TestParse_ContentBlocks(t *testing.T) {
	doc := `{"conversations": [{"id": "c1", "messages": [
		{"role": "assistant", "content": [
			{"type": "text", "text": "First block."},
			{"type": "tool_use"},
			{"type": "text", "text": "Second block."}
		]}
	]}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := convs[0].Messages[0].RawText
	if got != "First block.\nSecond block." {
		t.Errorf("content blocks joined to %q", got)
	}
}

func TestParse_GeneratesMissingIDAndName(t *testing.T) {
	doc := `{"conversations": [{"messages": [{"role": "user", "text": "hello there"}]}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if convs[0].ID == "" {
		t.Error("expected generated conversation id")
	}
	if convs[0].Name != "Untitled" {
		t.Errorf("name = %q, want Untitled", convs[0].Name)
	}
}

func TestParse_MessageTimestampFallsBackToConversation(t *testing.T) {
	doc := `{"conversations": [{
		"id": "c1",
		"created_at": "2026-03-02T10:00:00Z",
		"messages": [{"role": "user", "text": "hello there"}]
	}]}`

	convs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !convs[0].Messages[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want conversation created_at", convs[0].Messages[0].Timestamp)
	}
}
