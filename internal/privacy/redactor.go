package privacy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kestrelworks/chatsift/internal/config"
)

// rule is one (kind, matcher) pair. The rule table is an ordered list,
// not a map: registration order is the tie-break for exact-length
// overlaps.
type rule struct {
	kind string
	re   *regexp.Regexp
}

// builtinRules are the fixed-category PII kinds, in registration order.
// Patterns are written so that placeholder tokens they emit are never
// re-matched (redaction is idempotent).
var builtinRules = []struct {
	kind    string
	pattern string
}{
	{"email", `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`},
	{"phone", `\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`},
	{"ssn", `\b\d{3}-\d{2}-\d{4}\b`},
	{"credit_card", `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`},
	{"address", `(?i)\b\d+\s+[a-z0-9 .]+?\b(?:street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|court|ct|lane|ln)\b`},
	{"ip", `\b(?:\d{1,3}\.){3}\d{1,3}\b`},
	{"api_key", `\b[A-Za-z0-9]{32,}\b`},
}

// entityRule detects entities to pseudonymize rather than blank out.
type entityRule struct {
	kind   string // reported in the redaction audit
	prefix string // token prefix, e.g. PERSON
	re     *regexp.Regexp
}

var personRules = []entityRule{
	{"person_name", "PERSON", regexp.MustCompile(`\b(?:Dr|Mr|Mrs|Ms|Prof)\.\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)},
	{"person_name", "PERSON", regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)},
}

var orgRule = entityRule{"organization", "ORG", regexp.MustCompile(`\b(?:[A-Z][A-Za-z]*\s+)+(?:Inc|LLC|Corp|Ltd|Co)\b\.?`)}

// Redactor detects and neutralizes PII in message text. It is built
// once per run; the rule table is immutable after construction and the
// pseudonym table lives exactly as long as the Redactor.
type Redactor struct {
	enabled     bool
	rules       []rule
	entityRules []entityRule
	pseudonyms  *PseudonymTable
}

// NewRedactor builds a redactor from run options. Custom PII patterns
// are appended to the built-in table in sorted-kind order; an invalid
// pattern fails construction with config.InvalidPatternError.
func NewRedactor(opts config.Options) (*Redactor, error) {
	r := &Redactor{
		enabled:    opts.Privacy,
		pseudonyms: NewPseudonymTable(),
	}

	for _, b := range builtinRules {
		r.rules = append(r.rules, rule{kind: b.kind, re: regexp.MustCompile(b.pattern)})
	}

	// Map iteration order is random; sort kinds so the tie-break order
	// of custom rules is stable across runs.
	kinds := make([]string, 0, len(opts.CustomPII))
	for kind := range opts.CustomPII {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		for _, p := range opts.CustomPII[kind] {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, &config.InvalidPatternError{Kind: kind, Pattern: p, Err: err}
			}
			r.rules = append(r.rules, rule{kind: kind, re: re})
		}
	}

	r.entityRules = append(r.entityRules, personRules...)
	if opts.PseudonymizeOrgs {
		r.entityRules = append(r.entityRules, orgRule)
	}

	return r, nil
}

// Redact replaces PII spans with placeholder tokens and entity names
// with stable pseudonyms, returning the redacted text and the sorted
// distinct kinds that were redacted. Original values are discarded.
// When the redactor is disabled the text passes through unchanged.
func (r *Redactor) Redact(text string) (string, []string) {
	if !r.enabled || text == "" {
		return text, nil
	}

	kinds := make(map[string]bool)

	// Pass 1: fixed-category redaction.
	spans := collectSpans(text, len(r.rules), func(i int) *regexp.Regexp { return r.rules[i].re })
	text = replaceSpans(text, spans, func(s span, _ string) string {
		kind := r.rules[s.ruleIdx].kind
		kinds[kind] = true
		return "[" + strings.ToUpper(kind) + "_REDACTED]"
	})

	// Pass 2: entity pseudonymization, after fixed categories so a
	// redacted email is never mistaken for a name.
	spans = collectSpans(text, len(r.entityRules), func(i int) *regexp.Regexp { return r.entityRules[i].re })
	text = replaceSpans(text, spans, func(s span, matched string) string {
		er := r.entityRules[s.ruleIdx]
		kinds[er.kind] = true
		return fmt.Sprintf("[%s_%s]", er.prefix, r.pseudonyms.Token(matched))
	})

	if len(kinds) == 0 {
		return text, nil
	}
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return text, out
}

// Entities reports how many distinct entities were pseudonymized so
// far in this run.
func (r *Redactor) Entities() int { return r.pseudonyms.Len() }

// Enabled reports whether redaction is active for this run.
func (r *Redactor) Enabled() bool { return r.enabled }

type span struct {
	start, end int
	ruleIdx    int
}

// collectSpans gathers every match of every rule and resolves overlaps
// in a single left-to-right sweep: earlier start wins, then longest
// match, then earliest-registered rule.
func collectSpans(text string, n int, re func(int) *regexp.Regexp) []span {
	var spans []span
	for i := 0; i < n; i++ {
		for _, loc := range re(i).FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1], ruleIdx: i})
		}
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		li, lj := spans[i].end-spans[i].start, spans[j].end-spans[j].start
		if li != lj {
			return li > lj
		}
		return spans[i].ruleIdx < spans[j].ruleIdx
	})

	kept := spans[:0]
	lastEnd := 0
	for _, s := range spans {
		if s.start >= lastEnd {
			kept = append(kept, s)
			lastEnd = s.end
		}
	}
	return kept
}

// replaceSpans rebuilds text with each kept span replaced by the token
// the callback produces. Spans are non-overlapping and ordered.
func replaceSpans(text string, spans []span, token func(span, string) string) string {
	if len(spans) == 0 {
		return text
	}

	var sb strings.Builder
	prev := 0
	for _, s := range spans {
		sb.WriteString(text[prev:s.start])
		sb.WriteString(token(s, text[s.start:s.end]))
		prev = s.end
	}
	sb.WriteString(text[prev:])
	return sb.String()
}
