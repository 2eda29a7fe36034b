package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Redaction replaces every detected secret.
const Redaction = "[REDACTED]"

// Finding records one match. The matched text itself is never kept.
type Finding struct {
	RuleID string
	Start  int
	End    int
}

// Result is the outcome of Scrub.
type Result struct {
	Scrubbed string
	Findings []Finding
}

// HasFindings reports whether anything was redacted.
func (r Result) HasFindings() bool {
	return len(r.Findings) > 0
}

type compiledRule struct {
	id      string
	pattern *regexp.Regexp
}

// Scrubber redacts pattern matches and registered literal values.
// It is safe for concurrent use.
type Scrubber struct {
	rules []compiledRule

	mu       sync.RWMutex
	literals []string
}

// New compiles rules into a Scrubber.
func New(rules ...Rule) (*Scrubber, error) {
	s := &Scrubber{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: ID is required", i)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
		}
		s.rules = append(s.rules, compiledRule{id: r.ID, pattern: re})
	}
	return s, nil
}

// Default returns a Scrubber with DefaultRules.
func Default() *Scrubber {
	s, err := New(DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return s
}

// AddLiteral registers an exact value to redact, such as the resolved token.
// Values shorter than 8 characters are ignored to avoid mangling ordinary text.
func (s *Scrubber) AddLiteral(v string) {
	if len(v) < 8 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.literals {
		if l == v {
			return
		}
	}
	s.literals = append(s.literals, v)
}

type span struct {
	start, end int
	ruleID     string
}

// Scrub redacts content and reports what it found.
func (s *Scrubber) Scrub(content string) Result {
	if s == nil || content == "" {
		return Result{Scrubbed: content}
	}

	var spans []span
	for _, r := range s.rules {
		for _, m := range r.pattern.FindAllStringIndex(content, -1) {
			spans = append(spans, span{m[0], m[1], r.id})
		}
	}

	s.mu.RLock()
	for _, lit := range s.literals {
		for off := 0; ; {
			i := strings.Index(content[off:], lit)
			if i < 0 {
				break
			}
			start := off + i
			spans = append(spans, span{start, start + len(lit), "literal"})
			off = start + len(lit)
		}
	}
	s.mu.RUnlock()

	if len(spans) == 0 {
		return Result{Scrubbed: content}
	}

	findings := make([]Finding, len(spans))
	for i, sp := range spans {
		findings[i] = Finding{RuleID: sp.ruleID, Start: sp.start, End: sp.end}
	}

	merged := mergeSpans(spans)
	var b strings.Builder
	prev := 0
	for _, sp := range merged {
		b.WriteString(content[prev:sp.start])
		b.WriteString(Redaction)
		prev = sp.end
	}
	b.WriteString(content[prev:])

	return Result{Scrubbed: b.String(), Findings: findings}
}

// String returns content with secrets redacted.
func (s *Scrubber) String(content string) string {
	return s.Scrub(content).Scrubbed
}

// Value redacts every string inside v, descending into maps and slices.
// Other values are returned unchanged. Inputs are never mutated.
func (s *Scrubber) Value(v any) any {
	switch t := v.(type) {
	case string:
		return s.String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = s.Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = s.Value(val)
		}
		return out
	default:
		return v
	}
}

// mergeSpans sorts spans and merges overlapping or adjacent ones.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	merged := []span{spans[0]}
	for _, cur := range spans[1:] {
		last := &merged[len(merged)-1]
		if cur.start <= last.end {
			if cur.end > last.end {
				last.end = cur.end
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}
