package config

import (
	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON Schema for the Duration type.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Go duration string",
		Examples:    []any{"720h", "30m"},
	}
}

// JSONSchema returns the JSON Schema for the Severity type.
func (Severity) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        []any{SeverityError.String(), SeverityWarning.String()},
		Description: "error blocks the event, warning annotates it",
	}
}
