package ocr

import (
	"regexp"
)

// SignatureRule pairs a named failure signature with its canned response.
type SignatureRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Response string
}

// MatchResult is the outcome of scanning extracted text against the rule
// list.
type MatchResult struct {
	Matched  bool
	RuleName string
	Response string
}

// Matcher evaluates an ordered, immutable rule list. Declaration order is
// the evaluation order; the first rule whose pattern matches wins.
type Matcher struct {
	rules []SignatureRule
}

// NewMatcher wraps a rule list. The slice is owned by the matcher afterwards.
func NewMatcher(rules []SignatureRule) *Matcher {
	return &Matcher{rules: rules}
}

// Len returns the number of loaded rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match scans the text in rule order and stops at the first hit. When no
// rule matches, the response is the raw text itself: the fallback policy is
// to surface unrecognized extractions rather than suppress them.
func (m *Matcher) Match(text string) MatchResult {
	for _, rule := range m.rules {
		if rule.Pattern.MatchString(text) {
			return MatchResult{Matched: true, RuleName: rule.Name, Response: rule.Response}
		}
	}
	return MatchResult{Matched: false, Response: text}
}
