package vocabulary

import (
	"regexp"
	"sort"
	"strings"
)

// wordBoundary is a Unicode-aware replacement for \b, which only knows ASCII.
const wordBoundary = `[^\p{L}\p{N}_]`

// WordMatcher finds whole-word, case-insensitive occurrences of a word list.
type WordMatcher struct {
	re *regexp.Regexp
}

// NewWordMatcher compiles a matcher for words. Multi-word entries match with
// any run of whitespace between the words.
func NewWordMatcher(words []string) *WordMatcher {
	alts := make([]string, 0, len(words))

	for _, w := range normalize(words) {
		parts := strings.Fields(w)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}

		alts = append(alts, strings.Join(parts, `\s+`))
	}

	if len(alts) == 0 {
		return &WordMatcher{}
	}

	// Longest first so "base de datos" wins over a shorter overlapping entry.
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })

	pattern := `(?i)(?:^|` + wordBoundary + `)(` + strings.Join(alts, "|") + `)(?:$|` + wordBoundary + `)`

	return &WordMatcher{re: regexp.MustCompile(pattern)}
}

// Match reports whether text contains any of the words.
func (m *WordMatcher) Match(text string) bool {
	_, ok := m.First(text)

	return ok
}

// First returns the first word found in text, lowercased.
func (m *WordMatcher) First(text string) (string, bool) {
	if m.re == nil {
		return "", false
	}

	sub := m.re.FindStringSubmatch(text)
	if sub == nil {
		return "", false
	}

	return canonical(sub[1]), true
}

// Distinct returns the distinct words found in text, lowercased and sorted.
func (m *WordMatcher) Distinct(text string) []string {
	if m.re == nil {
		return nil
	}

	seen := make(map[string]bool)

	// Boundaries are consumed by each match, so adjacent words separated by a
	// single character would be skipped; rescan from the end of each word.
	for rest := text; rest != ""; {
		loc := m.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}

		seen[canonical(rest[loc[2]:loc[3]])] = true
		rest = rest[loc[3]:]
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}

	sort.Strings(out)

	return out
}

func canonical(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ContainsPhrase reports whether text contains any phrase as a case-insensitive
// substring and returns the first phrase found.
func ContainsPhrase(text string, phrases []string) (string, bool) {
	lower := strings.ToLower(text)

	for _, p := range phrases {
		if p == "" {
			continue
		}

		if strings.Contains(lower, strings.ToLower(p)) {
			return p, true
		}
	}

	return "", false
}
