package heuristics

import (
	"regexp"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func securityMatchers() []model.Matcher {
	return []model.Matcher{
		Func{ID: catalog.EvalInjection, Fn: matchEvalInjection},
		// shell=True with a literal command and os.system("ls") are still
		// flagged; commands built without a shell are not.
		mustPattern(catalog.CommandInjection,
			`\bshell\s?=\s?True\b|\bos\.(?:system|popen)\s?\(|\b(?:commands|subprocess)\.getoutput\s?\(`),
		// Any load from these modules counts; the source of the bytes is unknown.
		mustPattern(catalog.InsecureDeserialization,
			`\b(?:c?[Pp]ickle|marshal|dill|jsonpickle)\.(?:loads?|Unpickler|decode)\s?\(|\bshelve\.open\s?\(`),
		Func{ID: catalog.HardcodedCredentials, Fn: matchHardcodedCredentials},
		mustPattern(catalog.WeakCryptography,
			`\bhashlib\.(?:md5|sha1)\s?\(|\bhashlib\.new\(\s?["'](?:md5|sha1)["']|\bMD5\.new\s?\(|\b(?:md5|sha1)\.(?:New|Sum)\s?\(`),
		Func{ID: catalog.InsecureRandomness, Fn: matchInsecureRandomness},
		Func{ID: catalog.PathTraversal, Fn: matchPathTraversal},
		Func{ID: catalog.XMLExternalEntity, Fn: matchXMLExternalEntity},
		// Placeholders such as {DB_PASSWORD} are excluded; only literal pairs match.
		mustPattern(catalog.CredentialsInURL,
			`\b[a-zA-Z][a-zA-Z0-9+.-]*://[^\s/:@"'{}]+:[^\s/@"'{}]+@`),
		// Keyword based: an assert on "user.role" matches, one on "is_valid" does not.
		mustPattern(catalog.AssertAccessControl,
			`(?m)^\s*assert\s[^\n]*\b(?:role|roles|admin|is_admin|is_staff|is_superuser|permission|permissions|authorized|authenticated|auth)\b`),
	}
}

var (
	evalCall    = regexp.MustCompile(`(?:^|[^\w.])((?:eval|exec)\s?\(\s?([^\s)]))`)
	literalOnly = regexp.MustCompile(`^[rRbBuU]{0,2}(?:"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*')$`)
)

// matchEvalInjection flags eval/exec unless the first argument is one plain
// string literal. Concatenated, %-formatted, .format and f-string arguments
// are flagged. Method calls (obj.eval) and definitions (def eval) are skipped;
// a literal built elsewhere and passed by name is still flagged.
func matchEvalInjection(src string) (model.Match, error) {
	for _, loc := range evalCall.FindAllStringSubmatchIndex(src, -1) {
		start := loc[2]
		if strings.HasSuffix(strings.TrimRight(src[:start], " "), "def") {
			continue
		}
		open := start + strings.IndexByte(src[start:], '(')
		args, ok := callArgs(src, open)
		if !ok {
			return matched(src[start:]), nil
		}
		if parts := splitTopLevel(args); len(parts) > 0 && literalOnly.MatchString(parts[0]) {
			continue
		}
		return matched(src[start : open+len(args)+2]), nil
	}
	return model.Match{}, nil
}

var (
	secretAssignment = regexp.MustCompile(`(?i)\b\w*(?:password|passwd|pwd|secret|api_?key|access_?key|auth_?token|token)\w*["']?\s?[:=]\s?(?:b|r|u)?["'][^"'\s{}]{3,}["']`)
	secretToken      = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9]{16,}|AKIA[0-9A-Z]{16}|gh[pousr]_[A-Za-z0-9]{36}|xox[baprs]-[A-Za-z0-9-]{10,})\b`)
)

// matchHardcodedCredentials looks for secret-sounding names assigned a string
// literal, plus well-known key formats. Test fixtures and obvious placeholders
// ("changeme") are indistinguishable from real secrets and are reported.
func matchHardcodedCredentials(src string) (model.Match, error) {
	if m := secretAssignment.FindString(src); m != "" {
		return matched(m), nil
	}
	if m := secretToken.FindString(src); m != "" {
		return matched(m), nil
	}
	return model.Match{}, nil
}

var (
	randomCall     = regexp.MustCompile(`\brandom\.(?:randint|random|choice|choices|randrange|getrandbits|sample|shuffle)\s?\(`)
	secretPurposes = regexp.MustCompile(`(?i)token|password|passwd|secret|session|nonce|otp|salt|api_?key`)
)

// matchInsecureRandomness needs both a random-module call and a secret-related
// word in the same snippet. Scanning per function keeps this local; whole-file
// scans of unrelated code can pair the two by accident.
func matchInsecureRandomness(src string) (model.Match, error) {
	call := randomCall.FindString(src)
	if call == "" || !secretPurposes.MatchString(src) {
		return model.Match{}, nil
	}
	return matched(call), nil
}

var (
	interpolatedPath = regexp.MustCompile(`\bf["'](?:/|\./|\.\./|[A-Za-z]:\\\\)[^"'\n]*\{[^}"'\n]+\}[^"'\n]*["']`)
	concatenatedPath = regexp.MustCompile(`["'](?:/|\./|\.\./)[\w./-]*/["']\s?\+\s?[A-Za-z_]\w*`)
	fileSink         = regexp.MustCompile(`\b(?:open|send_file|send_from_directory|os\.remove|os\.unlink|shutil\.rmtree|Path)\s?\(`)
)

// matchPathTraversal flags a directory prefix joined with an interpolated name
// when the snippet also touches the filesystem. Validation done elsewhere
// (os.path.basename, realpath checks) is not detected.
func matchPathTraversal(src string) (model.Match, error) {
	if !fileSink.MatchString(src) {
		return model.Match{}, nil
	}
	if m := interpolatedPath.FindString(src); m != "" {
		return matched(m), nil
	}
	if m := concatenatedPath.FindString(src); m != "" {
		return matched(m), nil
	}
	return model.Match{}, nil
}

var xmlParse = regexp.MustCompile(`\b(?:ET|ElementTree|etree|cElementTree|minidom|pulldom|expatbuilder|sax)\.(?:fromstring|parse|XML|parseString|iterparse|make_parser)\s?\(`)

// matchXMLExternalEntity flags stdlib XML parsing unless defusedxml is in use.
// Trusted, locally generated XML is flagged too.
func matchXMLExternalEntity(src string) (model.Match, error) {
	if strings.Contains(src, "defusedxml") {
		return model.Match{}, nil
	}
	if m := xmlParse.FindString(src); m != "" {
		return matched(m), nil
	}
	return model.Match{}, nil
}
