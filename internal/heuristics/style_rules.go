package heuristics

import (
	"regexp"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

const (
	// MaxParameters is the largest parameter count not reported.
	MaxParameters = 5
	// NestingLimit is the control-flow depth at which nesting is reported.
	NestingLimit = 4
)

func styleMatchers() []model.Matcher {
	return []model.Matcher{
		mustPattern(catalog.WildcardImport,
			`(?m)^\s*from\s+[\w.]+\s+import\s+\*|^\s*import\s+(?:static\s+)?[\w.]+\.\*\s?;`),
		// "from x import a, b" is allowed by PEP 8 and does not match.
		mustPattern(catalog.MultipleImportsPerLine,
			`(?m)^\s*import\s+[\w.]+(?:\s+as\s+\w+)?(?:\s?,\s?[\w.]+(?:\s+as\s+\w+)?)+$`),
		Func{ID: catalog.NonConventionalNaming, Fn: matchNonConventionalNaming},
		Func{ID: catalog.TooManyParameters, Fn: matchTooManyParameters},
		Func{ID: catalog.DeepNesting, Fn: matchDeepNesting},
	}
}

var (
	lowerClass = regexp.MustCompile(`(?m)^\s*class\s+[a-z]\w*\s?[(:]`)
	camelDef   = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([a-z]+[A-Z]\w*)\s?\(`)
)

// unittest hooks are camelCase by contract.
var camelAllowed = map[string]struct{}{
	"setUp": {}, "tearDown": {}, "setUpClass": {}, "tearDownClass": {},
	"setUpModule": {}, "tearDownModule": {}, "asyncSetUp": {}, "asyncTearDown": {},
}

// matchNonConventionalNaming checks Python class and function names only.
// Overrides that must mirror a camelCase base API (beyond unittest hooks)
// are reported.
func matchNonConventionalNaming(src string) (model.Match, error) {
	if m := lowerClass.FindString(src); m != "" {
		return matched(m), nil
	}
	for _, m := range camelDef.FindAllStringSubmatch(src, -1) {
		if _, ok := camelAllowed[m[1]]; !ok {
			return matched(m[0]), nil
		}
	}
	return model.Match{}, nil
}

var defHeader = regexp.MustCompile(`\b(?:def|function)\s+\w+\s?\(`)

// matchTooManyParameters counts declared parameters of Python and JavaScript
// functions, excluding self, cls and the bare "*" and "/" markers. Methods
// and lambdas declared other ways are missed.
func matchTooManyParameters(src string) (model.Match, error) {
	for _, loc := range defHeader.FindAllStringIndex(src, -1) {
		args, _ := callArgs(src, loc[1]-1)
		n := 0
		for _, p := range splitTopLevel(args) {
			switch p {
			case "self", "cls", "*", "/", "":
				continue
			}
			n++
		}
		if n > MaxParameters {
			return matched(src[loc[0]:loc[1]] + args + ")"), nil
		}
	}
	return model.Match{}, nil
}

// matchDeepNesting reports indentation-structured control flow nested
// NestingLimit or more levels. Brace languages have no indent blocks here and
// never match.
func matchDeepNesting(src string) (model.Match, error) {
	if depth, at := maxNesting(splitLines(src)); depth >= NestingLimit {
		return matched(at), nil
	}
	return model.Match{}, nil
}
