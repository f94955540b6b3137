// Package main rewrites enumer output to build errors with cockroachdb/errors.
//
// Usage: enumerfix <file>...
package main

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

const errorsImport = `"github.com/cockroachdb/errors"`

// ErrUsage indicates incorrect usage of the tool.
var ErrUsage = errors.New("usage: enumerfix <file>...")

var (
	importBlock  = regexp.MustCompile(`import \(\n([\s\S]*?)\n\)`)
	singleImport = regexp.MustCompile(`import "fmt"\n`)
)

// fmtUses are the fmt identifiers that keep the fmt import alive.
var fmtUses = []string{"fmt.Sprintf", "fmt.Sprint(", "fmt.Stringer", "fmt.Fprintf", "fmt.Printf"}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "enumerfix: %v\n", err)
		os.Exit(1)
	}
}

// run fixes every named file in place. Files that need no change are not
// written.
func run(files []string) error {
	if len(files) == 0 {
		return ErrUsage
	}

	for _, name := range files {
		if err := fixFile(name); err != nil {
			return errors.Wrapf(err, "%s", name)
		}
	}

	return nil
}

func fixFile(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return errors.Wrap(err, "stat")
	}

	//nolint:gosec // path comes from go:generate
	content, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "reading file")
	}

	fixed := fix(content)
	if bytes.Equal(fixed, content) {
		return nil
	}

	if err := os.WriteFile(name, fixed, info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// fix replaces fmt.Errorf with errors.Newf and adjusts imports. It is
// idempotent.
func fix(content []byte) []byte {
	src := string(content)
	if !strings.Contains(src, "fmt.Errorf") {
		return content
	}

	src = strings.ReplaceAll(src, "fmt.Errorf", "errors.Newf")

	if needsFmt(src) {
		return []byte(addImport(src, errorsImport))
	}

	return []byte(swapFmtImport(src))
}

func needsFmt(src string) bool {
	for _, use := range fmtUses {
		if strings.Contains(src, use) {
			return true
		}
	}

	return false
}

// addImport appends imp to the first import block unless already present.
func addImport(src, imp string) string {
	loc := importBlock.FindStringSubmatchIndex(src)
	if loc == nil {
		return src
	}

	body := src[loc[2]:loc[3]]
	if strings.Contains(body, imp) {
		return src
	}

	return src[:loc[3]] + "\n\t" + imp + src[loc[3]:]
}

// swapFmtImport replaces the fmt import with the errors import.
func swapFmtImport(src string) string {
	if singleImport.MatchString(src) {
		return singleImport.ReplaceAllString(src, "import "+errorsImport+"\n")
	}

	if strings.Contains(src, "\t"+errorsImport) {
		return strings.Replace(src, "\t\"fmt\"\n", "", 1)
	}

	return strings.Replace(src, "\t\"fmt\"", "\t"+errorsImport, 1)
}
