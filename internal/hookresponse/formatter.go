package hookresponse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smykla-skalski/enforcer/internal/decision"
)

// maxReasonChars caps each block reason written to stderr.
const maxReasonChars = 500

// FormatBlockMessage renders block reasons for stderr, which the agent
// runtime feeds back to the agent.
func FormatBlockMessage(v *decision.Verdict) string {
	if !v.IsBlocked() {
		return ""
	}

	var b strings.Builder

	b.WriteString("Blocked by enforcer:\n")

	for i, reason := range v.BlockReasons {
		name := ""
		if i < len(v.BlockedBy) {
			name = "[" + v.BlockedBy[i] + "] "
		}

		fmt.Fprintf(&b, "  - %s%s\n", name, truncate(reason))
	}

	b.WriteString(FormatDisableHint(v.BlockedBy))

	return b.String()
}

// FormatFaults renders evaluator faults for stderr.
func FormatFaults(faults []error) string {
	if len(faults) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("enforcer: policy evaluation failed:\n")

	for _, f := range faults {
		fmt.Fprintf(&b, "  - %v\n", f)
	}

	return b.String()
}

// FormatDisableHint renders how to turn off the given policies.
func FormatDisableHint(policies []string) string {
	if len(policies) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(policies))
	for _, p := range policies {
		quoted = append(quoted, fmt.Sprintf("%q", p))
	}

	return fmt.Sprintf(
		"Wrong for your workflow? Set global.disabled_policies = [%s] in .enforcer/config.toml\n",
		strings.Join(quoted, ", "),
	)
}

// truncate cuts s to maxReasonChars bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxReasonChars {
		return s
	}

	cut := maxReasonChars - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "..."
}
