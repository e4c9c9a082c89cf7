package classify

import (
	"regexp"
	"sort"

	"github.com/kestrelworks/chatsift/internal/config"
	"github.com/kestrelworks/chatsift/internal/export"
)

type topicCategory struct {
	name     string
	patterns []*regexp.Regexp
}

type sentimentCategory struct {
	name     Sentiment
	patterns []*regexp.Regexp
}

type failureKind struct {
	name     string
	severity Severity
	patterns []*regexp.Regexp
}

// Classifier evaluates the three taxonomies against redacted text. It
// is a pure function of its tables: no cross-message state, safe for
// any number of parallel workers.
type Classifier struct {
	topics     []topicCategory
	sentiments []sentimentCategory
	failures   []failureKind
}

// NewClassifier compiles the built-in tables merged with any custom
// patterns from the run options. Custom entries extend an existing
// category or append a new one at the end of its table; an invalid
// pattern fails construction with config.InvalidPatternError.
func NewClassifier(opts config.Options) (*Classifier, error) {
	c := &Classifier{}

	for _, t := range builtinTopics {
		c.topics = append(c.topics, topicCategory{name: t.name, patterns: mustCompileAll(t.patterns)})
	}
	for _, s := range builtinSentiments {
		c.sentiments = append(c.sentiments, sentimentCategory{name: s.name, patterns: mustCompileAll(s.patterns)})
	}
	for _, f := range builtinFailures {
		c.failures = append(c.failures, failureKind{name: f.name, severity: f.severity, patterns: mustCompileAll(f.patterns)})
	}

	if err := c.mergeTopics(opts.CustomTopics); err != nil {
		return nil, err
	}
	if err := c.mergeSentiments(opts.CustomSentiments); err != nil {
		return nil, err
	}
	if err := c.mergeFailures(opts.CustomFailures); err != nil {
		return nil, err
	}

	return c, nil
}

// Classify labels one message. Failure detection only applies to
// assistant messages; user text cannot trigger a model failure kind.
func (c *Classifier) Classify(text, role string) LabelSet {
	ls := LabelSet{
		Topics:    c.detectTopics(text),
		Sentiment: c.detectSentiment(text),
	}
	if role == export.RoleAssistant {
		ls.Failures, ls.MaxSeverity = c.detectFailures(text)
	}
	return ls
}

// detectTopics returns the distinct matching topic names in table
// order. A category matches if any of its patterns matches.
func (c *Classifier) detectTopics(text string) []string {
	var topics []string
	for _, t := range c.topics {
		for _, re := range t.patterns {
			if re.MatchString(text) {
				topics = append(topics, t.name)
				break
			}
		}
	}
	return topics
}

// detectSentiment walks the cascade in priority order and returns the
// first category with any match. No match at all yields Neutral, so
// every message gets exactly one sentiment.
func (c *Classifier) detectSentiment(text string) Sentiment {
	for _, s := range c.sentiments {
		for _, re := range s.patterns {
			if re.MatchString(text) {
				return s.name
			}
		}
	}
	return SentimentNeutral
}

// detectFailures returns every triggered failure kind (distinct kinds,
// table order) and the highest severity among them.
func (c *Classifier) detectFailures(text string) ([]FailureMatch, Severity) {
	var matches []FailureMatch
	maxSev := SeverityNone
	for _, f := range c.failures {
		for _, re := range f.patterns {
			if re.MatchString(text) {
				matches = append(matches, FailureMatch{Kind: f.name, Severity: f.severity})
				if f.severity > maxSev {
					maxSev = f.severity
				}
				break
			}
		}
	}
	return matches, maxSev
}

func (c *Classifier) mergeTopics(custom map[string][]string) error {
	for _, name := range sortedKeys(custom) {
		compiled, err := compileAll(name, custom[name])
		if err != nil {
			return err
		}
		if i := indexTopic(c.topics, name); i >= 0 {
			c.topics[i].patterns = append(c.topics[i].patterns, compiled...)
		} else {
			c.topics = append(c.topics, topicCategory{name: name, patterns: compiled})
		}
	}
	return nil
}

func (c *Classifier) mergeSentiments(custom map[string][]string) error {
	for _, name := range sortedKeys(custom) {
		compiled, err := compileAll(name, custom[name])
		if err != nil {
			return err
		}
		merged := false
		for i := range c.sentiments {
			if string(c.sentiments[i].name) == name {
				c.sentiments[i].patterns = append(c.sentiments[i].patterns, compiled...)
				merged = true
				break
			}
		}
		if !merged {
			// New sentiment categories rank below the built-in cascade
			// but above the Neutral fallback.
			c.sentiments = append(c.sentiments, sentimentCategory{name: Sentiment(name), patterns: compiled})
		}
	}
	return nil
}

func (c *Classifier) mergeFailures(custom map[string]config.FailurePatterns) error {
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fp := custom[name]
		compiled, err := compileAll(name, fp.Patterns)
		if err != nil {
			return err
		}
		merged := false
		for i := range c.failures {
			if c.failures[i].name == name {
				c.failures[i].patterns = append(c.failures[i].patterns, compiled...)
				merged = true
				break
			}
		}
		if !merged {
			c.failures = append(c.failures, failureKind{
				name:     name,
				severity: ParseSeverity(fp.Severity),
				patterns: compiled,
			})
		}
	}
	return nil
}

func indexTopic(topics []topicCategory, name string) int {
	for i, t := range topics {
		if t.name == name {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func compileAll(kind string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &config.InvalidPatternError{Kind: kind, Pattern: p, Err: err}
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func mustCompileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}
