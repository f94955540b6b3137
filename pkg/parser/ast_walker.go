package parser

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// minCopyArgs is source + destination.
const minCopyArgs = 2

// astWalker walks the AST and extracts commands and file operations.
type astWalker struct {
	commands   []Command
	fileWrites []FileWrite
}

func (w *astWalker) visit(node syntax.Node) bool {
	switch n := node.(type) {
	case *syntax.CallExpr:
		w.extractCommand(n)
	case *syntax.Stmt:
		w.extractRedirect(n)
	}

	return true
}

func (w *astWalker) extractCommand(call *syntax.CallExpr) {
	if len(call.Args) == 0 {
		return
	}

	name := literal(call.Args[0])
	if name == "" {
		return
	}

	cmd := Command{
		Name: name,
		Args: literals(call.Args[1:]),
		Pos:  positionOf(call),
	}

	w.commands = append(w.commands, cmd)

	op, targets := fileWriteTargets(cmd)
	for _, target := range targets {
		w.addWrite(FileWrite{
			Path:      target,
			Operation: op,
			Source:    cmd.Name,
			Pos:       cmd.Pos,
		})
	}
}

// extractRedirect records output redirections. A heredoc on the same
// statement turns the redirection into a heredoc write carrying the body.
func (w *astWalker) extractRedirect(stmt *syntax.Stmt) {
	var (
		out     *FileWrite
		heredoc *string
	)

	for _, redir := range stmt.Redirs {
		switch redir.Op {
		case syntax.RdrOut, syntax.RdrAll:
			out = redirectWrite(redir, WriteOpRedirect)
		case syntax.AppOut, syntax.AppAll:
			out = redirectWrite(redir, WriteOpAppend)
		case syntax.Hdoc, syntax.DashHdoc:
			body := literal(redir.Hdoc)
			heredoc = &body
		}
	}

	if out == nil {
		return
	}

	if heredoc != nil {
		out.Operation = WriteOpHeredoc
		out.Content = *heredoc
	}

	w.addWrite(*out)
}

func redirectWrite(redir *syntax.Redirect, op WriteOp) *FileWrite {
	path := literal(redir.Word)
	if path == "" {
		return nil
	}

	return &FileWrite{
		Path:      path,
		Operation: op,
		Pos:       positionOf(redir),
	}
}

func (w *astWalker) addWrite(fw FileWrite) {
	if fw.Path == "" || IsDevicePath(fw.Path) {
		return
	}

	w.fileWrites = append(w.fileWrites, fw)
}

// fileWriteTargets determines if a command writes to files and returns the targets.
func fileWriteTargets(cmd Command) (WriteOp, []string) {
	switch cmd.Name {
	case "tee":
		return WriteOpTee, nonFlags(cmd.Args)

	case "cp", "install":
		if len(cmd.Args) >= minCopyArgs {
			return WriteOpCopy, []string{cmd.Args[len(cmd.Args)-1]}
		}

	case "mv":
		if len(cmd.Args) >= minCopyArgs {
			return WriteOpMove, []string{cmd.Args[len(cmd.Args)-1]}
		}

	case "sed", "perl":
		if hasInPlaceFlag(cmd.Args) {
			return WriteOpInPlace, inPlaceTargets(cmd.Args)
		}

	case "dd":
		for _, arg := range cmd.Args {
			if target, ok := strings.CutPrefix(arg, "of="); ok {
				return WriteOpDD, []string{target}
			}
		}
	}

	return WriteOpNone, nil
}

func nonFlags(args []string) []string {
	targets := make([]string, 0, len(args))

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			targets = append(targets, arg)
		}
	}

	return targets
}

func hasInPlaceFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--in-place" || strings.HasPrefix(arg, "--in-place=") {
			return true
		}

		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") && strings.Contains(arg, "i") {
			return true
		}
	}

	return false
}

// inPlaceTargets returns the file operands of sed -i / perl -i: every
// non-flag argument after the script.
func inPlaceTargets(args []string) []string {
	operands := nonFlags(args)
	if len(operands) < minCopyArgs {
		return nil
	}

	return operands[1:]
}
