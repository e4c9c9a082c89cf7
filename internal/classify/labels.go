package classify

// Sentiment is the single label produced by the priority cascade.
type Sentiment string

const (
	SentimentUrgent        Sentiment = "Urgent"
	SentimentVeryNegative  Sentiment = "Very Negative"
	SentimentNegative      Sentiment = "Negative"
	SentimentVeryPositive  Sentiment = "Very Positive"
	SentimentPositive      Sentiment = "Positive"
	SentimentCollaborative Sentiment = "Collaborative"
	SentimentQuestioning   Sentiment = "Questioning"
	SentimentNeutral       Sentiment = "Neutral"
)

// IsNegative reports whether the label belongs to the negative family.
func (s Sentiment) IsNegative() bool {
	return s == SentimentNegative || s == SentimentVeryNegative
}

// IsPositive reports whether the label belongs to the positive family.
func (s Sentiment) IsPositive() bool {
	return s == SentimentPositive || s == SentimentVeryPositive
}

// Severity orders failure kinds: high > medium > low > none.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "none"
	}
}

// ParseSeverity maps a severity name onto its ordered value. Unknown
// names come back as SeverityNone.
func ParseSeverity(s string) Severity {
	switch s {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityNone
	}
}

// FailureMatch is one triggered failure kind with its fixed severity.
type FailureMatch struct {
	Kind     string
	Severity Severity
}

// LabelSet is the classifier's verdict for one message: zero or more
// topics, exactly one sentiment, and zero or more failure kinds.
type LabelSet struct {
	Topics      []string
	Sentiment   Sentiment
	Failures    []FailureMatch
	MaxSeverity Severity
}

// FailureKinds returns just the kind names, in table order.
func (l LabelSet) FailureKinds() []string {
	if len(l.Failures) == 0 {
		return nil
	}
	kinds := make([]string, len(l.Failures))
	for i, f := range l.Failures {
		kinds[i] = f.Kind
	}
	return kinds
}
