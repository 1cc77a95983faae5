package heuristics

import (
	"regexp"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func logicMatchers() []model.Matcher {
	return []model.Matcher{
		Func{ID: catalog.MutableDefaultArgument, Fn: matchMutableDefault},
		Func{ID: catalog.InfiniteLoop, Fn: matchInfiniteLoop},
		Func{ID: catalog.LoopVariableShadowing, Fn: matchLoopShadowing},
		Func{ID: catalog.ModifyDuringIteration, Fn: matchModifyDuringIteration},
		// Indented only: a module-level "global x" is a no-op and not reported.
		mustPattern(catalog.GlobalMutableState, `(?m)^\s+global\s+\w+(?:\s?,\s?\w+)*`),
		// Empty argument lists only; now(tz) and now(timezone.utc) are aware.
		mustPattern(catalog.NaiveDatetime, `\bdatetime\.(?:datetime\.)?(?:now|utcnow|today)\(\)|\bdate\.today\(\)`),
		Func{ID: catalog.IncompleteLeapYear, Fn: matchIncompleteLeapYear},
	}
}

var (
	pyDefHeader    = regexp.MustCompile(`\bdef\s+\w+\s?\(`)
	mutableDefault = regexp.MustCompile(`=\s?(?:\[|\{|(?:set|list|dict|defaultdict|bytearray)\()`)
)

// matchMutableDefault inspects each parameter list for a default built from a
// mutable literal or constructor. Immutable defaults (None, tuples) pass.
// Python only: JavaScript evaluates defaults per call.
func matchMutableDefault(src string) (model.Match, error) {
	for _, loc := range pyDefHeader.FindAllStringIndex(src, -1) {
		args, _ := callArgs(src, loc[1]-1)
		for _, param := range splitTopLevel(args) {
			if mutableDefault.MatchString(param) {
				return matched(param), nil
			}
		}
	}
	return model.Match{}, nil
}

var (
	whileHeader   = regexp.MustCompile(`^while\s?(.+):$`)
	identifier    = regexp.MustCompile(`[A-Za-z_][\w.]*`)
	loopExit      = regexp.MustCompile(`(?m)^(?:break|return|raise|yield)\b|\b(?:sys\.exit|os\._exit|exit)\(`)
	condKeywords  = map[string]struct{}{"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "None": {}, "True": {}, "False": {}}
	mutatingCalls = []string{".append(", ".pop(", ".popleft(", ".remove(", ".clear(", ".extend(", ".insert(", ".add(", ".discard(", ".update(", ".get("}
)

// matchInfiniteLoop reports while loops that can never stop: no exit statement
// in the body and no assignment to anything the condition reads. Conditions
// that call functions are skipped since the call may change state.
func matchInfiniteLoop(src string) (model.Match, error) {
	for _, b := range findBlocks(splitLines(src), whileHeader) {
		cond := b.groups[1]
		body := b.bodyText()
		if loopExit.MatchString(body) || strings.Contains(cond, "(") {
			continue
		}
		var names []string
		for _, name := range identifier.FindAllString(cond, -1) {
			if _, kw := condKeywords[name]; !kw {
				names = append(names, name)
			}
		}
		if !anyUpdated(body, names) {
			return matched(b.header.text), nil
		}
	}
	return model.Match{}, nil
}

func anyUpdated(body string, names []string) bool {
	for _, name := range names {
		if assigns(body, name) || hasWord(body, "for "+name) || hasWord(body, "del "+name) {
			return true
		}
		for _, call := range mutatingCalls {
			if strings.Contains(body, name+call) {
				return true
			}
		}
	}
	return false
}

// augmentedOps lists two-byte operators first.
var augmentedOps = []string{"**", "//", "+", "-", "*", "/", "%", "|", "&", "^"}

// assigns reports whether body assigns to name, to a subscript of it, or
// updates it with an augmented operator.
func assigns(body, name string) bool {
	for off := 0; ; {
		i := strings.Index(body[off:], name)
		if i < 0 {
			return false
		}
		i += off
		off = i + 1
		if i > 0 && (isIdentByte(body[i-1]) || body[i-1] == '.') {
			continue
		}
		j := i + len(name)
		if j < len(body) && isIdentByte(body[j]) {
			continue
		}
		if j < len(body) && body[j] == '[' {
			k := strings.IndexByte(body[j:], ']')
			if k < 0 {
				continue
			}
			j += k + 1
		}
		if isAssignOp(body[skipSpaces(body, j):]) {
			return true
		}
	}
}

// isAssignOp reports whether rest starts with "=" or an augmented assignment,
// but not "==".
func isAssignOp(rest string) bool {
	for _, op := range augmentedOps {
		if strings.HasPrefix(rest, op+"=") {
			rest = rest[len(op):]
			break
		}
	}
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}

var forHeader = regexp.MustCompile(`^for\s+([A-Za-z_]\w*)\s+in\s`)

// matchLoopShadowing flags "for x in ..." when x was assigned earlier in the
// same block. Deliberate reuse of a scratch variable is reported too.
func matchLoopShadowing(src string) (model.Match, error) {
	lines := splitLines(src)
	for _, b := range findBlocks(lines, forHeader) {
		name := b.groups[1]
		for j := b.at - 1; j >= 0 && lines[j].indent >= b.header.indent; j-- {
			l := lines[j]
			if l.indent == b.header.indent && strings.HasPrefix(l.text, name) && isPlainAssign(l.text[len(name):]) {
				return matched(b.header.text), nil
			}
		}
	}
	return model.Match{}, nil
}

func isPlainAssign(rest string) bool {
	rest = strings.TrimPrefix(rest, " ")
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}

var iterHeader = regexp.MustCompile(`^for\s+[\w, ()]+\s+in\s+([A-Za-z_][\w.]*)\s?:$`)

// matchModifyDuringIteration flags a loop over a name whose body mutates that
// same name. Iterating a copy (items[:], list(items)) is not matched.
func matchModifyDuringIteration(src string) (model.Match, error) {
	for _, b := range findBlocks(splitLines(src), iterHeader) {
		coll := b.groups[1]
		body := b.bodyText()
		for _, op := range []string{".remove(", ".append(", ".insert(", ".pop(", ".extend(", ".clear("} {
			if callsOn(body, coll, op) {
				return matched(b.header.text + " ... " + coll + op), nil
			}
		}
		if strings.Contains(body, "del "+coll+"[") {
			return matched(b.header.text + " ... del " + coll + "["), nil
		}
	}
	return model.Match{}, nil
}

var (
	divisibleBy4   = regexp.MustCompile(`%\s?4\s?==\s?0`)
	divisibleBy100 = regexp.MustCompile(`%\s?(?:100|400)\b`)
	yearWords      = regexp.MustCompile(`(?i)leap|year`)
)

// matchIncompleteLeapYear wants a "% 4 == 0" test near year-related names with
// no century rule anywhere in the snippet.
func matchIncompleteLeapYear(src string) (model.Match, error) {
	m := divisibleBy4.FindString(src)
	if m == "" || divisibleBy100.MatchString(src) || !yearWords.MatchString(src) {
		return model.Match{}, nil
	}
	return matched(m), nil
}

// callsOn reports whether body invokes op directly on recv, so "numbers.remove("
// matches but "self.numbers.remove(" does not when recv is "numbers".
func callsOn(body, recv, op string) bool {
	needle := recv + op
	for off := 0; ; {
		i := strings.Index(body[off:], needle)
		if i < 0 {
			return false
		}
		i += off
		if i == 0 || !isIdentByte(body[i-1]) && body[i-1] != '.' {
			return true
		}
		off = i + 1
	}
}
