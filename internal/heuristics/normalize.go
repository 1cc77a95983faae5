package heuristics

import (
	"path/filepath"
	"regexp"
	"strings"
)

// CommentSyntax selects which comment markers Normalize strips
type CommentSyntax int

const (
	// HashComments strips "# ..." and treats triple quotes as multi-line strings.
	HashComments CommentSyntax = iota
	// SlashComments strips "// ..." and "/* ... */" and treats backticks as raw strings.
	SlashComments
)

const tabWidth = 4

var slashExtensions = map[string]struct{}{
	"go": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {}, "java": {}, "kt": {},
	"c": {}, "h": {}, "cc": {}, "cpp": {}, "hpp": {}, "cs": {}, "rs": {},
	"php": {}, "swift": {}, "scala": {},
}

var lineSuffix = regexp.MustCompile(`:\d+$`)

// SyntaxFor picks the comment syntax for a file name or snippet id ("path:line").
// Unknown extensions default to hash comments.
func SyntaxFor(name string) CommentSyntax {
	name = lineSuffix.ReplaceAllString(name, "")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := slashExtensions[ext]; ok {
		return SlashComments
	}
	return HashComments
}

// Normalize produces the single view of a snippet every matcher sees.
// Comments and statement-level docstrings are removed, interior whitespace runs
// collapse to one space, leading tabs expand to spaces and blank lines are
// dropped. Case and line structure are preserved.
func Normalize(src string, syntax CommentSyntax) string {
	if src == "" {
		return ""
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	stripped := stripComments(src, syntax)

	var b strings.Builder
	b.Grow(len(stripped))
	for _, line := range strings.Split(stripped, "\n") {
		line = normalizeLine(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func normalizeLine(line string) string {
	line = strings.TrimRight(line, " \t\f\v")
	indent, i := 0, 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		if line[i] == '\t' {
			indent += tabWidth
		} else {
			indent++
		}
		i++
	}
	rest := line[i:]
	if rest == "" {
		return ""
	}
	return strings.Repeat(" ", indent) + strings.Join(strings.Fields(rest), " ")
}

// stripComments walks src once, tracking string literals so comment markers
// inside strings survive.
func stripComments(src string, syntax CommentSyntax) string {
	var out strings.Builder
	out.Grow(len(src))

	lineStart := true // only whitespace emitted since the last newline
	var last byte     // last non-space byte emitted
	i := 0
	for i < len(src) {
		c := src[i]

		switch {
		case c == '\n':
			out.WriteByte(c)
			lineStart = true
			i++
			continue

		case syntax == HashComments && c == '#':
			i = skipToNewline(src, i)
			continue

		case syntax == SlashComments && strings.HasPrefix(src[i:], "//"):
			i = skipToNewline(src, i)
			continue

		case syntax == SlashComments && strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return out.String()
			}
			// keep line structure intact
			out.WriteString(strings.Repeat("\n", strings.Count(src[i:i+2+end], "\n")))
			i += end + 4
			continue

		case c == '"' || c == '\'' || (syntax == SlashComments && c == '`'):
			end := stringEnd(src, i, syntax)
			literal := src[i:end]
			if syntax == HashComments && lineStart && isTripleQuote(src[i:]) && !continuesExpression(last) {
				// statement-level docstring
				out.WriteString(strings.Repeat("\n", strings.Count(literal, "\n")))
			} else {
				out.WriteString(literal)
				lineStart = false
				last = literal[len(literal)-1]
			}
			i = end
			continue
		}

		if c != ' ' && c != '\t' {
			lineStart = false
			last = c
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

func skipToNewline(src string, i int) int {
	if n := strings.IndexByte(src[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(src)
}

func isTripleQuote(s string) bool {
	return strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, `'''`)
}

// continuesExpression reports whether a string starting a line is an argument
// or operand of the previous line rather than a docstring.
func continuesExpression(last byte) bool {
	return last != 0 && strings.IndexByte("(,=+[{%", last) >= 0
}

// stringEnd returns the index just past the literal opening at src[start].
// Unterminated single-line literals end at the newline.
func stringEnd(src string, start int, syntax CommentSyntax) int {
	q := src[start]
	if syntax == HashComments && isTripleQuote(src[start:]) {
		delim := src[start : start+3]
		if end := strings.Index(src[start+3:], delim); end >= 0 {
			return start + 3 + end + 3
		}
		return len(src)
	}

	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\' && q != '`':
			i += 2
			continue
		case c == q:
			return i + 1
		case c == '\n' && q != '`':
			return i
		}
		i++
	}
	return len(src)
}
