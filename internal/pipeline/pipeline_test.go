package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kestrelworks/chatsift/internal/config"
	"github.com/kestrelworks/chatsift/internal/export"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testCorpus() []export.Conversation {
	mk := func(convID string, idx int, role, text string, offset time.Duration) export.Message {
		return export.Message{
			ConversationID: convID,
			Index:          idx,
			Role:           role,
			Timestamp:      base.Add(offset),
			RawText:        text,
			ContentLength:  len([]rune(text)),
			WordCount:      len(strings.Fields(text)),
		}
	}
	return []export.Conversation{
		{
			ID:        "conv-1",
			Name:      "Deploy help",
			Model:     "claude-3",
			CreatedAt: base,
			Messages: []export.Message{
				mk("conv-1", 0, export.RoleUser, "John Smith broke the python deployment, email a@b.com?", 0),
				mk("conv-1", 1, export.RoleAssistant, "Here is the fix:\n```sh\nkubectl rollout restart\n```", 30*time.Second),
				mk("conv-1", 2, export.RoleUser, "thanks, works great now, tell John Smith too", time.Minute),
			},
		},
		{
			ID:        "conv-2",
			Name:      "Small talk",
			CreatedAt: base.AddDate(0, 0, 1),
			Messages: []export.Message{
				mk("conv-2", 0, export.RoleUser, "see you at noon then", 24*time.Hour),
			},
		},
	}
}

func mustRun(t *testing.T, convs []export.Conversation, opts config.Options) *Result {
	t.Helper()
	res, err := Run(context.Background(), convs, opts, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestRun_EndToEnd(t *testing.T) {
	res := mustRun(t, testCorpus(), config.Default())

	if len(res.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(res.Records))
	}
	if res.RunID == "" || res.GeneratedAt.IsZero() {
		t.Error("missing run metadata")
	}

	first := res.Records[0]
	if strings.Contains(first.ContentPreview, "a@b.com") || strings.Contains(first.ContentPreview, "John Smith") {
		t.Errorf("raw PII reached a record: %q", first.ContentPreview)
	}
	if !strings.Contains(first.ContentPreview, "[EMAIL_REDACTED]") {
		t.Errorf("preview = %q, want email placeholder", first.ContentPreview)
	}
	if len(first.PIIRedactions) == 0 {
		t.Error("expected PII redaction kinds on first record")
	}
	if first.TopicCount != len(first.Topics) || first.TopicCount == 0 {
		t.Errorf("topics = %v, count = %d", first.Topics, first.TopicCount)
	}

	// Quality metrics are duplicated onto every row of the conversation.
	for _, rec := range res.Records[:3] {
		if rec.ConversationTurnCount != 3 {
			t.Errorf("record %d turn count = %d, want 3", rec.MessageIndex, rec.ConversationTurnCount)
		}
		if rec.CollaborationQuality == "" || rec.TaskCompletionStatus == "" {
			t.Errorf("record %d missing quality fields", rec.MessageIndex)
		}
	}
	if res.Records[1].ConversationCodeBlocks != 1 {
		t.Errorf("code blocks = %d, want 1", res.Records[1].ConversationCodeBlocks)
	}

	if res.Temporal == nil {
		t.Fatal("temporal profile missing")
	}
	if res.Summary.TotalConversations != 2 || res.Summary.TotalMessages != 4 {
		t.Errorf("summary totals = %d/%d", res.Summary.TotalConversations, res.Summary.TotalMessages)
	}
	if res.Summary.UserMessages != 3 || res.Summary.AssistantMessages != 1 {
		t.Errorf("role counts = %d/%d", res.Summary.UserMessages, res.Summary.AssistantMessages)
	}
	if res.Summary.EntitiesPseudonymized == 0 {
		t.Error("expected pseudonymized entities in summary")
	}
}

func TestRun_PseudonymsStableAcrossWorkers(t *testing.T) {
	opts := config.Default()
	opts.Workers = 8

	res := mustRun(t, testCorpus(), opts)

	tok := personToken(t, res.Records[0].ContentPreview)
	tok2 := personToken(t, res.Records[2].ContentPreview)
	if tok != tok2 {
		t.Errorf("same entity got tokens %s and %s", tok, tok2)
	}
}

func personToken(t *testing.T, preview string) string {
	t.Helper()
	i := strings.Index(preview, "[PERSON_")
	if i < 0 {
		t.Fatalf("no person token in %q", preview)
	}
	rest := preview[i+len("[PERSON_"):]
	j := strings.Index(rest, "]")
	if j < 0 {
		t.Fatalf("unterminated token in %q", preview)
	}
	return rest[:j]
}

func TestRun_GeneralTopicFallback(t *testing.T) {
	res := mustRun(t, testCorpus(), config.Default())

	last := res.Records[3]
	if !reflect.DeepEqual(last.Topics, []string{"General"}) {
		t.Errorf("topics = %v, want [General]", last.Topics)
	}
	if last.TopicCount != 1 {
		t.Errorf("topic count = %d, want 1", last.TopicCount)
	}
}

func TestRun_PrivacyDisabled(t *testing.T) {
	opts := config.Default()
	opts.Privacy = false

	res := mustRun(t, testCorpus(), opts)

	if got := res.Records[0].ContentPreview; !strings.Contains(got, "a@b.com") {
		t.Errorf("preview = %q, want raw text with privacy disabled", got)
	}
	for _, rec := range res.Records {
		if len(rec.PIIRedactions) != 0 {
			t.Errorf("record %s/%d has redactions with privacy disabled", rec.ConversationID, rec.MessageIndex)
		}
	}
	if res.Summary.EntitiesPseudonymized != 0 {
		t.Errorf("entities = %d, want 0", res.Summary.EntitiesPseudonymized)
	}
}

func TestRun_QualityDisabled(t *testing.T) {
	opts := config.Default()
	opts.Quality = false

	res := mustRun(t, testCorpus(), opts)

	if res.Quality != nil {
		t.Error("quality map present when disabled")
	}
	for _, rec := range res.Records {
		if rec.CollaborationQuality != "" || rec.TaskCompletionStatus != "" {
			t.Errorf("record %s/%d carries quality fields", rec.ConversationID, rec.MessageIndex)
		}
	}
}

func TestRun_TemporalDisabled(t *testing.T) {
	opts := config.Default()
	opts.Temporal = false

	res := mustRun(t, testCorpus(), opts)

	if res.Temporal != nil {
		t.Error("temporal profile present when disabled")
	}
}

func TestRun_InvalidCustomPattern(t *testing.T) {
	opts := config.Default()
	opts.CustomPII = map[string][]string{"broken": {`[unclosed`}}

	_, err := Run(context.Background(), testCorpus(), opts, nil)

	var patErr *config.InvalidPatternError
	if !errors.As(err, &patErr) {
		t.Fatalf("expected InvalidPatternError, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testCorpus(), config.Default(), nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_Deterministic(t *testing.T) {
	opts := config.Default()
	opts.Workers = 8

	a := mustRun(t, testCorpus(), opts)
	b := mustRun(t, testCorpus(), opts)

	if !reflect.DeepEqual(a.Records, b.Records) {
		t.Error("two runs over the same corpus produced different records")
	}
}

func TestRun_EmptyCorpus(t *testing.T) {
	res := mustRun(t, nil, config.Default())

	if len(res.Records) != 0 {
		t.Errorf("got %d records for empty corpus", len(res.Records))
	}
	if res.Summary.TotalConversations != 0 || res.Summary.TotalMessages != 0 {
		t.Errorf("summary totals = %+v", res.Summary)
	}
}
