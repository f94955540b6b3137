package parser

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrEmptyCommand is returned when trying to parse an empty command.
	ErrEmptyCommand = errors.New("empty command")
	// ErrParseFailed is returned when parsing fails.
	ErrParseFailed = errors.New("failed to parse command")
)

// ParseResult contains the results of parsing a Bash command.
type ParseResult struct {
	Commands   []Command   // All commands found
	FileWrites []FileWrite // All file write operations
}

// BashParser parses Bash commands using mvdan.cc/sh. It holds no state and
// is safe for concurrent use.
type BashParser struct {
	variant syntax.LangVariant
}

// NewBashParser creates a BashParser for the Bash dialect.
func NewBashParser() *BashParser {
	return &BashParser{variant: syntax.LangBash}
}

// Parse parses a Bash command string and extracts all commands and file writes.
func (p *BashParser) Parse(command string) (*ParseResult, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, ErrEmptyCommand
	}

	// syntax.Parser keeps state between calls, so each parse gets its own.
	file, err := syntax.NewParser(syntax.Variant(p.variant)).Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, errors.Wrapf(ErrParseFailed, "%v", err)
	}

	walker := &astWalker{
		commands:   make([]Command, 0),
		fileWrites: make([]FileWrite, 0),
	}

	syntax.Walk(file, walker.visit)

	return &ParseResult{
		Commands:   walker.commands,
		FileWrites: walker.fileWrites,
	}, nil
}

// HasCommand checks if the parse result contains a command with the given name.
func (r *ParseResult) HasCommand(name string) bool {
	return slices.ContainsFunc(r.Commands, func(c Command) bool { return c.Name == name })
}

// WrittenPaths returns the distinct file paths written, in order of appearance.
func (r *ParseResult) WrittenPaths() []string {
	seen := make(map[string]bool, len(r.FileWrites))
	paths := make([]string, 0, len(r.FileWrites))

	for _, fw := range r.FileWrites {
		if seen[fw.Path] {
			continue
		}

		seen[fw.Path] = true

		paths = append(paths, fw.Path)
	}

	return paths
}

// FileWrites parses command and returns its file writes. Commands that fail
// to parse yield no writes.
func FileWrites(command string) []FileWrite {
	result, err := NewBashParser().Parse(command)
	if err != nil {
		return nil
	}

	return result.FileWrites
}
