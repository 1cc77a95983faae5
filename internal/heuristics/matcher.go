package heuristics

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

// maxMatchedText caps the diagnostic substring kept per match.
const maxMatchedText = 120

// Pattern matches when Re finds anything in the snippet. Group selects the
// submatch reported as matched text; 0 means the whole match.
type Pattern struct {
	ID    string
	Re    *regexp.Regexp
	Group int
}

func (p Pattern) DefectID() string { return p.ID }

func (p Pattern) Match(src string) (model.Match, error) {
	if p.Re == nil {
		return model.Match{}, &model.MatcherError{MatcherID: p.ID, Err: errors.New("pattern not compiled")}
	}
	loc := p.Re.FindStringSubmatchIndex(src)
	if loc == nil {
		return model.Match{}, nil
	}
	g := p.Group
	if 2*g+1 >= len(loc) || loc[2*g] < 0 {
		g = 0
	}
	return matched(src[loc[2*g]:loc[2*g+1]]), nil
}

// Contains matches when any needle occurs verbatim.
type Contains struct {
	ID      string
	Needles []string
}

func (c Contains) DefectID() string { return c.ID }

func (c Contains) Match(src string) (model.Match, error) {
	for _, n := range c.Needles {
		if n != "" && strings.Contains(src, n) {
			return matched(n), nil
		}
	}
	return model.Match{}, nil
}

// Func adapts a plain predicate into a Matcher.
type Func struct {
	ID string
	Fn func(src string) (model.Match, error)
}

func (f Func) DefectID() string { return f.ID }

func (f Func) Match(src string) (model.Match, error) {
	if f.Fn == nil {
		return model.Match{}, &model.MatcherError{MatcherID: f.ID, Err: errors.New("nil predicate")}
	}
	return f.Fn(src)
}

// NewPattern compiles expr into a Pattern for id.
func NewPattern(id, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern for %q: %w", id, err)
	}
	return Pattern{ID: id, Re: re}, nil
}

func mustPattern(id, expr string) Pattern {
	return Pattern{ID: id, Re: regexp.MustCompile(expr)}
}

func matched(text string) model.Match {
	text = strings.TrimSpace(text)
	if len(text) > maxMatchedText {
		text = text[:maxMatchedText] + "..."
	}
	return model.Match{Matched: true, Text: text}
}

// Builtin returns one matcher per builtin catalog entry.
func Builtin() []model.Matcher {
	var out []model.Matcher
	out = append(out, securityMatchers()...)
	out = append(out, dependencyMatchers()...)
	out = append(out, runtimeMatchers()...)
	out = append(out, logicMatchers()...)
	out = append(out, performanceMatchers()...)
	out = append(out, sqlMatchers()...)
	out = append(out, styleMatchers()...)
	return out
}
