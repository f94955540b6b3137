package parser

import (
	"fmt"
	"strings"
)

// WriteOp represents the type of file write operation.
type WriteOp int

const (
	// WriteOpNone indicates no file write operation.
	WriteOpNone WriteOp = iota
	// WriteOpRedirect indicates output redirection (>, &>).
	WriteOpRedirect
	// WriteOpAppend indicates append redirection (>>, &>>).
	WriteOpAppend
	// WriteOpTee indicates tee command.
	WriteOpTee
	// WriteOpCopy indicates cp/install command.
	WriteOpCopy
	// WriteOpMove indicates mv command.
	WriteOpMove
	// WriteOpHeredoc indicates a heredoc redirected into a file.
	WriteOpHeredoc
	// WriteOpInPlace indicates an in-place edit (sed -i, perl -i).
	WriteOpInPlace
	// WriteOpDD indicates dd of=FILE.
	WriteOpDD
)

func (w WriteOp) String() string {
	switch w {
	case WriteOpNone:
		return "None"
	case WriteOpRedirect:
		return "Redirect"
	case WriteOpAppend:
		return "Append"
	case WriteOpTee:
		return "Tee"
	case WriteOpCopy:
		return "Copy"
	case WriteOpMove:
		return "Move"
	case WriteOpHeredoc:
		return "Heredoc"
	case WriteOpInPlace:
		return "InPlace"
	case WriteOpDD:
		return "DD"
	default:
		return "Unknown"
	}
}

// FileWrite represents a file write operation detected in the command.
type FileWrite struct {
	Path      string   // Target file path
	Operation WriteOp  // Type of write operation
	Source    string   // Source command (for cp, mv, tee, sed, dd)
	Content   string   // Content for heredoc operations
	Pos       Position // Position in source
}

func (f *FileWrite) String() string {
	if f.Source == "" {
		return fmt.Sprintf("%s -> %s", f.Operation, f.Path)
	}

	return fmt.Sprintf("%s %s -> %s", f.Operation, f.Source, f.Path)
}

// Describe returns the write with its position, for diagnostics.
func (f *FileWrite) Describe() string {
	return f.Pos.String() + ": " + f.String()
}

// IsDevicePath reports whether path is a device such as /dev/null, which
// never counts as a file write.
func IsDevicePath(path string) bool {
	return strings.HasPrefix(path, "/dev/")
}
