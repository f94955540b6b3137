// Package schema generates JSON Schema from the enforcer config types.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

const (
	schemaURI   = "https://json-schema.org/draft/2020-12/schema"
	title       = "enforcer configuration"
	description = "Policies applied by the enforcer hook to prompts and tool calls."
	baseURL     = "https://raw.githubusercontent.com/smykla-skalski/enforcer/main/schema/"

	dirPerm  = 0o755
	filePerm = 0o644
)

// definitionDocs documents the policy sections. Reflection only sees field
// names, so section level descriptions are attached here.
var definitionDocs = map[string]string{
	"ImplementationPolicyConfig": "Annotates prompts that ask for implementation work with the agent delegation phrase.",
	"TodoTrackingPolicyConfig":   "Annotates multi-capability writes that do not show task tracking.",
	"BypassPolicyConfig":         "Blocks file writes that are not backed by research evidence.",
	"AuditConfig":                "Opt-in JSONL log of every decision.",
	"CrashDumpConfig":            "Diagnostic dumps written when the hook panics.",
}

// Filename returns the versioned schema file name.
func Filename() string {
	return fmt.Sprintf("config.v%d.schema.json", config.CurrentConfigVersion)
}

// URL returns the published location of the schema.
func URL() string {
	return baseURL + Filename()
}

// SchemaDirective returns the Taplo schema comment placed at the top of
// generated config files.
func SchemaDirective() string {
	return "#:schema " + URL()
}

// Generate reflects config.Config into a JSON Schema. Property names follow the
// toml tags and nothing is required, matching how config files are decoded.
func Generate() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		FieldNameTag:               "toml",
		RequiredFromJSONSchemaTags: true,
	}

	s := r.Reflect(&config.Config{})
	s.Version = schemaURI
	s.ID = jsonschema.ID(URL())
	s.Title = title
	s.Description = description

	for name, doc := range definitionDocs {
		if def, ok := s.Definitions[name]; ok && def.Description == "" {
			def.Description = doc
		}
	}

	return s
}

// GenerateJSON produces a JSON Schema as bytes terminated by a newline.
// When indent is true, the output is pretty-printed.
func GenerateJSON(indent bool) ([]byte, error) {
	s := Generate()

	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}

	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema to JSON")
	}

	return append(data, '\n'), nil
}

// WriteFile writes the indented schema into dir under Filename and returns
// the written path.
func WriteFile(dir string) (string, error) {
	data, err := GenerateJSON(true)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}

	path := filepath.Clean(filepath.Join(dir, Filename()))

	if err := os.WriteFile(path, data, filePerm); err != nil { //nolint:gosec // schema is public
		return "", errors.Wrapf(err, "failed to write %s", path)
	}

	return path, nil
}
