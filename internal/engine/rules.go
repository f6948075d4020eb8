package engine

import (
	"regexp"
	"strings"
)

// Fixed reason strings returned by the rule matcher. The transport layer
// surfaces these verbatim, so they must stay stable.
const (
	ReasonKeyword      = "Blocked due to prohibited keyword."
	ReasonSQLInjection = "SQL injection attempt detected."
)

// defaultBlocklist is the built-in set of prohibited terms, matched as
// case-insensitive substrings.
var defaultBlocklist = []string{
	"hack",
	"exploit",
	"malicious",
	"inject",
	"root",
}

// Pre-compiled once at startup, never during a request.
var sqlInjectionPattern = regexp.MustCompile(`(?i)\b(DROP\s+TABLE|UNION\s+SELECT|INSERT\s+INTO|DELETE\s+FROM)\b`)

// RuleMatcher runs the deterministic checks that precede classification:
// a keyword blocklist scan and a SQL-injection pattern search. It is pure,
// has no failure mode, and must never panic for well-formed string input.
type RuleMatcher struct {
	blocklist []string
}

// NewRuleMatcher creates a matcher with the built-in blocklist plus any
// deployment-specific extra terms (lowercased; blank terms are dropped).
func NewRuleMatcher(extraTerms []string) *RuleMatcher {
	terms := make([]string, 0, len(defaultBlocklist)+len(extraTerms))
	terms = append(terms, defaultBlocklist...)
	for _, t := range extraTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return &RuleMatcher{blocklist: terms}
}

// Match returns a fixed reason string and true if the text trips any rule.
// The keyword scan runs first; any single matching term is sufficient and no
// ordering among matching terms is guaranteed.
func (m *RuleMatcher) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, term := range m.blocklist {
		if strings.Contains(lower, term) {
			return ReasonKeyword, true
		}
	}
	if sqlInjectionPattern.MatchString(text) {
		return ReasonSQLInjection, true
	}
	return "", false
}
