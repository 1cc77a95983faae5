package heuristics

import (
	"regexp"
	"strings"
)

// srcLine is one normalized line split into indentation width and content.
type srcLine struct {
	indent int
	text   string
}

func splitLines(src string) []srcLine {
	if src == "" {
		return nil
	}
	raw := strings.Split(src, "\n")
	lines := make([]srcLine, 0, len(raw))
	for _, l := range raw {
		trimmed := strings.TrimLeft(l, " ")
		lines = append(lines, srcLine{indent: len(l) - len(trimmed), text: trimmed})
	}
	return lines
}

// block is an indentation-delimited compound statement: a header line ending
// in ':' and every following line indented deeper than it.
type block struct {
	at     int // index of the header in the line slice
	header srcLine
	groups []string // submatches of the header pattern
	body   []srcLine
}

func (b block) bodyText() string {
	parts := make([]string, len(b.body))
	for i, l := range b.body {
		parts[i] = l.text
	}
	return strings.Join(parts, "\n")
}

// findBlocks returns every block whose header text matches header. Only
// indentation-structured code has blocks; brace languages yield empty bodies.
func findBlocks(lines []srcLine, header *regexp.Regexp) []block {
	var out []block
	for i, l := range lines {
		m := header.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}
		b := block{at: i, header: l, groups: m}
		for j := i + 1; j < len(lines) && lines[j].indent > l.indent; j++ {
			b.body = append(b.body, lines[j])
		}
		out = append(out, b)
	}
	return out
}

// callArgs returns the text between the parenthesis at src[open] and its
// balancing partner. Quoted text is skipped while counting. If the call is
// never closed the remainder of src is returned with ok=false.
func callArgs(src string, open int) (args string, ok bool) {
	if open >= len(src) || src[open] != '(' {
		return "", false
	}
	depth := 0
	var quote byte
	for i := open; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return src[open+1 : i], true
			}
		}
	}
	return src[open+1:], false
}

// splitTopLevel splits s on commas that are not nested in brackets or quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

var controlHeader = regexp.MustCompile(`^(?:if|elif|else|for|async for|while|with|async with|try|except|finally|match|case)\b.*:$`)

// maxNesting returns the deepest control-flow nesting and the header line at
// which it is first reached. Sibling branches (elif/else/except) share a level.
func maxNesting(lines []srcLine) (depth int, at string) {
	var stack []int // indents of open control headers
	for _, l := range lines {
		for len(stack) > 0 && l.indent <= stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
		}
		if !controlHeader.MatchString(l.text) {
			continue
		}
		stack = append(stack, l.indent)
		if len(stack) > depth {
			depth = len(stack)
			at = l.text
		}
	}
	return depth, at
}

// hasWord reports whether word occurs in s delimited by non-identifier bytes.
func hasWord(s, word string) bool {
	for off := 0; ; {
		i := strings.Index(s[off:], word)
		if i < 0 {
			return false
		}
		i += off
		end := i + len(word)
		if (i == 0 || !isIdentByte(s[i-1])) && (end == len(s) || !isIdentByte(s[end])) {
			return true
		}
		off = i + 1
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
