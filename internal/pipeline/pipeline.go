// Package pipeline orchestrates one analysis run: redaction and
// classification fan out across a worker pool per message, quality
// joins at conversation boundaries, temporal aggregation joins at the
// corpus boundary, and the assembler merges everything into flat
// records. Raw text never travels past the redaction step.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kestrelworks/chatsift/internal/classify"
	"github.com/kestrelworks/chatsift/internal/config"
	"github.com/kestrelworks/chatsift/internal/export"
	"github.com/kestrelworks/chatsift/internal/privacy"
	"github.com/kestrelworks/chatsift/internal/quality"
	"github.com/kestrelworks/chatsift/internal/temporal"
)

// fallbackTopic labels messages that matched no topic category.
const fallbackTopic = "General"

// analysis is the per-message output of the parallel stage. Each slot
// is written by exactly one worker, so no locking beyond the pseudonym
// table inside the redactor is needed.
type analysis struct {
	redacted     string
	piiKinds     []string
	labels       classify.LabelSet
	hasQuestion  bool
	hasCodeFence bool
	done         bool
}

// Run executes the full pipeline over a loaded corpus. Options are
// fixed before the first message is processed; an invalid custom
// pattern fails here, before any work starts.
func Run(ctx context.Context, convs []export.Conversation, opts config.Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	redactor, err := privacy.NewRedactor(opts)
	if err != nil {
		return nil, err
	}
	classifier, err := classify.NewClassifier(opts)
	if err != nil {
		return nil, err
	}

	analyses, err := analyzeMessages(ctx, convs, redactor, classifier, opts.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	if opts.Quality {
		res.Quality = make(map[string]quality.Report, len(convs))
		for ci := range convs {
			res.Quality[convs[ci].ID] = quality.Analyze(qualityLabels(convs[ci], analyses[ci]), opts.Thresholds)
		}
	}

	if opts.Temporal {
		var samples []temporal.Sample
		for ci := range convs {
			for mi := range convs[ci].Messages {
				samples = append(samples, temporal.Sample{
					Timestamp: convs[ci].Messages[mi].Timestamp,
					Sentiment: analyses[ci][mi].labels.Sentiment,
				})
			}
		}
		res.Temporal = temporal.Build(samples, opts.Thresholds)
	}

	if err := assemble(res, convs, analyses); err != nil {
		return nil, err
	}
	res.Summary = summarize(convs, res.Records, redactor.Entities())

	logger.Info("analysis complete",
		"run_id", res.RunID,
		"conversations", res.Summary.TotalConversations,
		"messages", res.Summary.TotalMessages,
		"entities_pseudonymized", res.Summary.EntitiesPseudonymized,
	)
	return res, nil
}

// analyzeMessages runs redaction and classification over every message
// on a pool of workers. Messages are independent; result slots are
// indexed so workers never contend.
func analyzeMessages(ctx context.Context, convs []export.Conversation, redactor *privacy.Redactor, classifier *classify.Classifier, workers int) ([][]analysis, error) {
	analyses := make([][]analysis, len(convs))
	for ci := range convs {
		analyses[ci] = make([]analysis, len(convs[ci].Messages))
	}

	if workers < 1 {
		workers = config.DefaultWorkers
	}

	type job struct{ c, m int }
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				msg := &convs[j.c].Messages[j.m]
				a := &analyses[j.c][j.m]

				a.redacted, a.piiKinds = redactor.Redact(msg.RawText)
				a.labels = classifier.Classify(a.redacted, msg.Role)
				a.hasQuestion = strings.Contains(a.redacted, "?")
				a.hasCodeFence = strings.Contains(a.redacted, "```")
				a.done = true
			}
		}()
	}

feed:
	for ci := range convs {
		for mi := range convs[ci].Messages {
			select {
			case jobs <- job{c: ci, m: mi}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// qualityLabels builds the label-only view the quality analyzer
// consumes; it carries text markers so quality never re-reads content.
func qualityLabels(conv export.Conversation, as []analysis) []quality.MessageLabel {
	labels := make([]quality.MessageLabel, len(conv.Messages))
	for i := range conv.Messages {
		labels[i] = quality.MessageLabel{
			Role:         conv.Messages[i].Role,
			Timestamp:    conv.Messages[i].Timestamp,
			Sentiment:    as[i].labels.Sentiment,
			FailureCount: len(as[i].labels.Failures),
			MaxSeverity:  as[i].labels.MaxSeverity,
			HasQuestion:  as[i].hasQuestion,
			HasCodeFence: as[i].hasCodeFence,
		}
	}
	return labels
}

// assemble merges loader fields, redaction audit, labels and quality
// into one flat record per message. A missing analysis slot means an
// upstream stage broke its contract.
func assemble(res *Result, convs []export.Conversation, analyses [][]analysis) error {
	total := 0
	for ci := range convs {
		total += len(convs[ci].Messages)
	}
	res.Records = make([]Record, 0, total)

	for ci := range convs {
		conv := &convs[ci]
		qr, hasQuality := res.Quality[conv.ID]

		for mi := range conv.Messages {
			msg := &conv.Messages[mi]
			a := &analyses[ci][mi]
			if !a.done {
				return &InvariantViolation{
					ConversationID: conv.ID,
					MessageIndex:   msg.Index,
					Detail:         "message was never analyzed",
				}
			}

			topics := a.labels.Topics
			if len(topics) == 0 {
				topics = []string{fallbackTopic}
			}

			severities := make([]string, len(a.labels.Failures))
			for i, f := range a.labels.Failures {
				severities[i] = f.Severity.String()
			}

			rec := Record{
				ConversationID:     conv.ID,
				ConversationName:   conv.Name,
				MessageIndex:       msg.Index,
				Timestamp:          msg.Timestamp,
				Role:               msg.Role,
				Model:              conv.Model,
				ContentPreview:     truncateRunes(a.redacted, config.DefaultPreviewLength),
				ContentLength:      msg.ContentLength,
				WordCount:          msg.WordCount,
				Topics:             topics,
				TopicCount:         len(topics),
				Sentiment:          string(a.labels.Sentiment),
				HasFailure:         len(a.labels.Failures) > 0,
				FailureTypes:       a.labels.FailureKinds(),
				FailureCount:       len(a.labels.Failures),
				FailureSeverities:  severities,
				MaxFailureSeverity: a.labels.MaxSeverity.String(),
				PIIRedactions:      a.piiKinds,
			}

			if hasQuality {
				rec.CollaborationQuality = qr.Collaboration
				rec.TaskCompletionStatus = qr.CompletionStatus
				rec.TaskCompletionConfidence = qr.CompletionConfidence
				rec.ConversationTurnCount = qr.TurnCount
				rec.ConversationQuestions = qr.QuestionCount
				rec.ConversationCodeBlocks = qr.CodeBlockCount
				rec.FlowInterruptions = qr.FlowInterruptions
				rec.FlowQuickResponses = qr.QuickResponses
			}

			res.Records = append(res.Records, rec)
		}
	}
	return nil
}

func summarize(convs []export.Conversation, records []Record, entities int) Summary {
	s := Summary{
		TotalConversations:    len(convs),
		TotalMessages:         len(records),
		TopicDistribution:     make(map[string]int),
		SentimentDistribution: make(map[string]int),
		FailureDistribution:   make(map[string]int),
		PIIRedactions:         make(map[string]int),
		EntitiesPseudonymized: entities,
	}

	var lengthSum, wordSum int
	for i := range records {
		r := &records[i]
		switch r.Role {
		case export.RoleUser:
			s.UserMessages++
		case export.RoleAssistant:
			s.AssistantMessages++
		}
		lengthSum += r.ContentLength
		wordSum += r.WordCount

		for _, t := range r.Topics {
			s.TopicDistribution[t]++
		}
		s.SentimentDistribution[r.Sentiment]++
		for _, f := range r.FailureTypes {
			s.FailureDistribution[f]++
		}
		if r.HasFailure {
			s.MessagesWithFailures++
		}
		for _, k := range r.PIIRedactions {
			s.PIIRedactions[k]++
		}
	}

	if len(records) > 0 {
		s.AvgMessageLength = float64(lengthSum) / float64(len(records))
		s.AvgWordCount = float64(wordSum) / float64(len(records))
	}
	if s.AssistantMessages > 0 {
		s.FailureRate = float64(s.MessagesWithFailures) / float64(s.AssistantMessages) * 100
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
