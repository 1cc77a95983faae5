package heuristics

import (
	"regexp"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func runtimeMatchers() []model.Matcher {
	return []model.Matcher{
		// "except ValueError:" and "except (A, B):" name a class and do not match.
		mustPattern(catalog.BareExcept, `(?m)^\s*except\s?:`),
		// Literal zero only: "a / b" with b == 0 at runtime is out of reach, and a
		// path segment such as "data/0" inside a string is a false positive.
		mustPattern(catalog.DivisionByZero, `(?m)[\w)\]]\s?(?:/{1,2}|%)\s?0(?:\.0+)?(?:[^.\w]|$)`),
		Func{ID: catalog.MissingRequestTimeout, Fn: matchMissingTimeout},
		// Handles later closed in a finally block are still reported.
		mustPattern(catalog.UnclosedResource, `(?m)^\s*[\w.]+\s?=\s?open\s?\(`),
	}
}

var httpCall = regexp.MustCompile(`\b(?:requests\.(?:get|post|put|patch|delete|head|options|request)|urllib\.request\.urlopen|urlopen)\s?\(`)

// matchMissingTimeout flags HTTP calls whose argument list never mentions a
// timeout. Sessions configured with a default timeout elsewhere are reported.
func matchMissingTimeout(src string) (model.Match, error) {
	for _, loc := range httpCall.FindAllStringIndex(src, -1) {
		args, _ := callArgs(src, loc[1]-1)
		if strings.Contains(args, "timeout") {
			continue
		}
		return matched(src[loc[0]:loc[1]] + args + ")"), nil
	}
	return model.Match{}, nil
}
