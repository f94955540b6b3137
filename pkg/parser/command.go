// Package parser extracts commands and file writes from Bash command strings
// using mvdan.cc/sh.
package parser

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Position is a 1-based line and column in the parsed command.
type Position struct {
	Line   uint
	Column uint
}

func positionOf(node syntax.Node) Position {
	return Position{Line: node.Pos().Line(), Column: node.Pos().Col()}
}

// String formats the position as line:column.
func (p Position) String() string {
	return strconv.FormatUint(uint64(p.Line), 10) + ":" + strconv.FormatUint(uint64(p.Column), 10)
}

// Command is one simple command found in a Bash string.
type Command struct {
	Name string
	Args []string
	Pos  Position
}

// String returns the command with its arguments, quoting arguments that
// contain whitespace.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)

	for _, arg := range c.Args {
		if strings.ContainsAny(arg, " \t\n") {
			arg = strconv.Quote(arg)
		}

		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// literal renders a word as it would appear after quote removal. Parameter
// expansions are kept as $NAME so written paths such as $HOME/x stay
// recognizable. The body of "$(cat <<EOF ... EOF)" is inlined; other command
// substitutions are dropped.
func literal(word *syntax.Word) string {
	if word == nil {
		return ""
	}

	var b strings.Builder

	for _, part := range word.Parts {
		writePart(&b, part)
	}

	return b.String()
}

func writePart(b *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		b.WriteString(p.Value)
	case *syntax.SglQuoted:
		b.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			writePart(b, inner)
		}
	case *syntax.ParamExp:
		if p.Param != nil {
			b.WriteString("$" + p.Param.Value)
		}
	case *syntax.CmdSubst:
		b.WriteString(heredocBody(p))
	}
}

// heredocBody returns the heredoc body of "$(cat <<'EOF' ... EOF)".
func heredocBody(subst *syntax.CmdSubst) string {
	for _, stmt := range subst.Stmts {
		for _, redir := range stmt.Redirs {
			if (redir.Op == syntax.Hdoc || redir.Op == syntax.DashHdoc) && redir.Hdoc != nil {
				return literal(redir.Hdoc)
			}
		}
	}

	return ""
}

func literals(words []*syntax.Word) []string {
	result := make([]string, 0, len(words))

	for _, word := range words {
		if s := literal(word); s != "" {
			result = append(result, s)
		}
	}

	return result
}
