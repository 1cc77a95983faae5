package heuristics

import (
	"regexp"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func performanceMatchers() []model.Matcher {
	return []model.Matcher{
		Func{ID: catalog.StringConcatInLoop, Fn: matchStringConcatInLoop},
		Func{ID: catalog.RegexCompileInLoop, Fn: matchRegexCompileInLoop},
		Func{ID: catalog.QuadraticNestedLoop, Fn: matchQuadraticNestedLoop},
		Func{ID: catalog.ListMembershipScan, Fn: matchListMembershipScan},
		// Any insert at index 0 counts, including on short fixed-size lists.
		mustPattern(catalog.ListInsertFront, `\.insert\(\s?0\s?,`),
		Func{ID: catalog.UnmemoizedRecursion, Fn: matchUnmemoizedRecursion},
	}
}

var loopHeader = regexp.MustCompile(`^(?:async\s+)?(?:for|while)\b.*:$`)

// loopBodies returns the body text of every loop in src. Nested loops appear
// both on their own and inside their parent's body.
func loopBodies(src string) []string {
	var out []string
	for _, b := range findBlocks(splitLines(src), loopHeader) {
		out = append(out, b.bodyText())
	}
	return out
}

var stringAppend = regexp.MustCompile(`(?m)^[\w.\[\]'"]+\s?\+=\s?(?:[rbfu]{0,2}["']|str\()|^[\w.\[\]'"]+\s?\+=[^\n]*\+\s?[rbfu]{0,2}["']`)

// matchStringConcatInLoop needs "+=" with a string literal or str() on the
// right inside a loop. Accumulating a variable that happens to hold a string
// (s += part) is missed; += on a list with a string element is reported.
func matchStringConcatInLoop(src string) (model.Match, error) {
	for _, body := range loopBodies(src) {
		if m := stringAppend.FindString(body); m != "" {
			return matched(m), nil
		}
	}
	return model.Match{}, nil
}

var regexCompile = regexp.MustCompile(`\bre\.compile\s?\(`)

// matchRegexCompileInLoop flags re.compile inside a loop body. The re module
// caches recent patterns, so this is reported even when the cost is small.
func matchRegexCompileInLoop(src string) (model.Match, error) {
	for _, body := range loopBodies(src) {
		if loc := regexCompile.FindStringIndex(body); loc != nil {
			args, _ := callArgs(body, loc[1]-1)
			return matched(body[loc[0]:loc[1]] + args + ")"), nil
		}
	}
	return model.Match{}, nil
}

var forIn = regexp.MustCompile(`^(?:async\s+)?for\s+.+?\s+in\s+(.+):$`)

// matchQuadraticNestedLoop flags a for loop nested in another when both walk
// the same iterable, or the inner one ranges over len(...). Nested loops over
// two unrelated collections are legitimately O(n*m) and pass.
func matchQuadraticNestedLoop(src string) (model.Match, error) {
	lines := splitLines(src)
	for _, outer := range findBlocks(lines, forIn) {
		outerIter := strings.TrimSpace(outer.groups[1])
		for _, inner := range findBlocks(outer.body, forIn) {
			innerIter := strings.TrimSpace(inner.groups[1])
			if innerIter == outerIter || strings.Contains(innerIter, "len(") {
				return matched(outer.header.text + " ... " + inner.header.text), nil
			}
		}
	}
	return model.Match{}, nil
}

var listInit = regexp.MustCompile(`^([A-Za-z_][\w.]*)\s?=\s?(?:\[\]|list\(\))$`)

// matchListMembershipScan wants a name initialised to an empty list, appended
// to, and tested with "in" inside a loop, all within the block that holds the
// initialisation. Lists that stay small are reported all the same.
func matchListMembershipScan(src string) (model.Match, error) {
	lines := splitLines(src)
	for i, l := range lines {
		m := listInit.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}
		name := m[1]
		scope := enclosingRest(lines, i)
		if !callsOn(linesText(scope), name, ".append(") {
			continue
		}
		for _, b := range findBlocks(scope, loopHeader) {
			if hit := membershipTest(b.body, name); hit != "" {
				return matched(hit), nil
			}
		}
	}
	return model.Match{}, nil
}

// enclosingRest returns the lines after lines[i] up to the end of the block
// lines[i] belongs to.
func enclosingRest(lines []srcLine, i int) []srcLine {
	end := i + 1
	for end < len(lines) && lines[end].indent >= lines[i].indent {
		end++
	}
	return lines[i+1 : end]
}

func linesText(lines []srcLine) string {
	return block{body: lines}.bodyText()
}

// membershipTest returns the first line that tests "not in name", or an
// if/elif/while condition testing "in name".
func membershipTest(body []srcLine, name string) string {
	for _, l := range body {
		if hasWord(l.text, "not in "+name) {
			return l.text
		}
		if (strings.HasPrefix(l.text, "if ") || strings.HasPrefix(l.text, "elif ") || strings.HasPrefix(l.text, "while ")) &&
			hasWord(l.text, "in "+name) {
			return l.text
		}
	}
	return ""
}

var (
	funcHeader = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)\s?\(`)
	cacheHint  = regexp.MustCompile(`(?i)cache|memo`)
)

// matchUnmemoizedRecursion flags a function that calls itself at least twice
// in its body, directly or through self/cls, with no cache decorator and no
// memo table in sight. Recursion on disjoint halves (merge sort) is reported
// too.
func matchUnmemoizedRecursion(src string) (model.Match, error) {
	lines := splitLines(src)
	for _, b := range findBlocks(lines, funcHeader) {
		body := b.bodyText()
		if selfCalls(body, b.groups[1]) < 2 || cacheHint.MatchString(body) {
			continue
		}
		if decoratedWithCache(lines, b) {
			continue
		}
		return matched(b.header.text), nil
	}
	return model.Match{}, nil
}

// selfCalls counts calls of name in body that are either unqualified or made
// on self or cls. obj.name(...) on any other receiver is a different function.
func selfCalls(body, name string) int {
	n := 0
	for off := 0; ; {
		i := strings.Index(body[off:], name)
		if i < 0 {
			return n
		}
		i += off
		off = i + len(name)
		if i > 0 && isIdentByte(body[i-1]) {
			continue
		}
		if i > 0 && body[i-1] == '.' && !onReceiver(body, i-1, "self") && !onReceiver(body, i-1, "cls") {
			continue
		}
		if j := skipSpaces(body, off); j < len(body) && body[j] == '(' {
			n++
		}
	}
}

// onReceiver reports whether recv ends right before body[dot] and is a whole word.
func onReceiver(body string, dot int, recv string) bool {
	start := dot - len(recv)
	if start < 0 || body[start:dot] != recv {
		return false
	}
	return start == 0 || !isIdentByte(body[start-1]) && body[start-1] != '.'
}
func decoratedWithCache(lines []srcLine, b block) bool {
	for j := b.at - 1; j >= 0; j-- {
		l := lines[j]
		if l.indent != b.header.indent || !strings.HasPrefix(l.text, "@") {
			return false
		}
		if cacheHint.MatchString(l.text) {
			return true
		}
	}
	return false
}
