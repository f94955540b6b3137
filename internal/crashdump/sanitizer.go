package crashdump

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

const (
	// minSecretLength is the minimum length for a value to be considered a potential secret.
	minSecretLength = 16

	// maxTextLength bounds free text (prompts, commands) kept in a dump.
	maxTextLength = 512

	redactedValue = "[REDACTED]"
)

// sensitivePatterns match config keys whose values are redacted.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)token`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)credential`),
	regexp.MustCompile(`(?i)api[-_]?key`),
}

// secretTokens match secret-looking substrings inside free text.
var secretTokens = regexp.MustCompile(
	`\b(?:sk-[A-Za-z0-9_-]{12,}|gh[pousr]_[A-Za-z0-9]{12,}|AKIA[A-Z0-9]{12,}|xox[bp]-[A-Za-z0-9-]{10,})`,
)

// secretPrefixes are prefixes of values that look like credentials.
var secretPrefixes = []string{
	"sk-",
	"ghp_",
	"gho_",
	"ghs_",
	"ghr_",
	"AKIA",
	"xoxb-",
	"xoxp-",
	"Bearer ",
}

// Sanitizer removes sensitive values from crash dump content.
type Sanitizer struct{}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeConfig converts config to a map and removes sensitive values.
func (s *Sanitizer) SanitizeConfig(cfg *config.Config) map[string]any {
	if cfg == nil {
		return nil
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return map[string]any{"error": "failed to serialize config"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to deserialize config"}
	}

	s.sanitizeMap(result)

	return result
}

// SanitizeText redacts secret-looking tokens and truncates long text.
func (*Sanitizer) SanitizeText(text string) string {
	text = secretTokens.ReplaceAllString(text, redactedValue)

	if len(text) > maxTextLength {
		return text[:maxTextLength] + "..."
	}

	return text
}

func (s *Sanitizer) sanitizeMap(m map[string]any) {
	for key, value := range m {
		if s.isSensitiveKey(key) {
			m[key] = redactedValue

			continue
		}

		switch v := value.(type) {
		case map[string]any:
			s.sanitizeMap(v)
		case []any:
			s.sanitizeSlice(v)
		case string:
			if s.isSensitiveValue(v) {
				m[key] = redactedValue
			}
		}
	}
}

func (s *Sanitizer) sanitizeSlice(slice []any) {
	for i, value := range slice {
		switch v := value.(type) {
		case map[string]any:
			s.sanitizeMap(v)
		case []any:
			s.sanitizeSlice(v)
		case string:
			if s.isSensitiveValue(v) {
				slice[i] = redactedValue
			}
		}
	}
}

func (*Sanitizer) isSensitiveKey(key string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(key) {
			return true
		}
	}

	return false
}

func (*Sanitizer) isSensitiveValue(value string) bool {
	if len(value) < minSecretLength {
		return false
	}

	for _, prefix := range secretPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}

	return false
}
