package report

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// indent re-encodes JSON with two-space indentation so diffs are line based.
// Input that is not valid JSON is returned unchanged.
func indent(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return string(data)
	}

	buf.WriteByte('\n')

	return buf.String()
}

// JSONDiff returns a unified diff between two JSON payloads. Identical
// payloads yield an empty string.
func JSONDiff(before, after []byte, fromName, toName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(indent(before)),
		B:        difflib.SplitLines(indent(after)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}

	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.Wrap(err, "failed to compute diff")
	}

	return out, nil
}
