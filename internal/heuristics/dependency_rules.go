package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

// deprecatedModules are standard modules deprecated by PEP 594 or removed earlier.
var deprecatedModules = []string{
	"imp", "cgi", "cgitb", "asyncore", "asynchat", "smtpd", "telnetlib", "pipes",
	"distutils", "nntplib", "crypt", "imghdr", "sndhdr", "uu", "xdrlib", "msilib",
	"audioop", "chunk", "mailcap", "nis", "ossaudiodev", "spwd", "sunau",
}

func dependencyMatchers() []model.Matcher {
	modules := strings.Join(deprecatedModules, "|")
	return []model.Matcher{
		Func{ID: catalog.UnsafeYAMLLoad, Fn: matchUnsafeYAMLLoad},
		mustPattern(catalog.TLSVerificationDisabled,
			`\bverify\s?=\s?False\b|\bCERT_NONE\b|\b_create_unverified_context\s?\(|\bcheck_hostname\s?=\s?False\b|\bInsecureSkipVerify:\s?true\b`),
		Func{ID: catalog.VulnerablePinnedVersion, Fn: matchVulnerablePin},
		// Framework-agnostic: any .run(debug=True) or a DEBUG = True setting.
		mustPattern(catalog.DebugModeEnabled,
			`(?m)\.run\([^)\n]*\bdebug\s?=\s?True\b|^\s*DEBUG\s?=\s?True\b`),
		mustPattern(catalog.TemplateAutoescapeDisabled,
			`\bautoescape\s?=\s?False\b|\bmark_safe\s?\(`),
		// Only import statements count; a variable named "imp" does not.
		mustPattern(catalog.DeprecatedModule,
			`(?m)^\s*(?:import\s+(?:`+modules+`)\b|from\s+(?:`+modules+`)(?:\.\w+)*\s+import\b)`),
	}
}

var yamlLoad = regexp.MustCompile(`\b(?:py)?yaml\.(load|load_all|unsafe_load|unsafe_load_all)\s?\(`)

// matchUnsafeYAMLLoad flags yaml.load calls that do not name a safe loader.
// A safe loader passed through a variable is not recognised.
func matchUnsafeYAMLLoad(src string) (model.Match, error) {
	for _, loc := range yamlLoad.FindAllStringSubmatchIndex(src, -1) {
		fn := src[loc[2]:loc[3]]
		args, _ := callArgs(src, loc[1]-1)
		if strings.HasPrefix(fn, "unsafe") || !strings.Contains(args, "SafeLoader") && !strings.Contains(args, "BaseLoader") {
			return matched(src[loc[0]:loc[1]] + args + ")"), nil
		}
	}
	return model.Match{}, nil
}

// vulnerablePin records the first release fixing a published advisory.
type vulnerablePin struct {
	fixed    string
	advisory string
}

// Keys are lower-case distribution names.
var vulnerablePins = map[string]vulnerablePin{
	"requests":     {fixed: "2.31.0", advisory: "CVE-2023-32681"},
	"flask":        {fixed: "0.12.3", advisory: "CVE-2018-1000656"},
	"pyyaml":       {fixed: "5.4", advisory: "CVE-2020-14343"},
	"jinja2":       {fixed: "2.10.1", advisory: "CVE-2019-10906"},
	"urllib3":      {fixed: "1.24.2", advisory: "CVE-2019-11324"},
	"django":       {fixed: "2.0.2", advisory: "CVE-2018-6188"},
	"pillow":       {fixed: "6.2.0", advisory: "CVE-2019-16865"},
	"lxml":         {fixed: "4.2.5", advisory: "CVE-2018-19787"},
	"cryptography": {fixed: "2.3", advisory: "CVE-2018-10903"},
	"paramiko":     {fixed: "2.4.2", advisory: "CVE-2018-1000805"},
}

var pinnedRequirement = regexp.MustCompile(`(?:^|[\s"',\[])([A-Za-z][A-Za-z0-9_.-]*)\s?==\s?([0-9]+(?:\.[0-9]+)*)`)

// matchVulnerablePin checks exact "name==version" pins against a small fixed
// advisory table. Range specifiers (>=, ~=) and unlisted packages are ignored.
func matchVulnerablePin(src string) (model.Match, error) {
	for _, m := range pinnedRequirement.FindAllStringSubmatch(src, -1) {
		pin, ok := vulnerablePins[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		if compareVersions(m[2], pin.fixed) < 0 {
			return matched(m[1] + "==" + m[2] + " (" + pin.advisory + ")"), nil
		}
	}
	return model.Match{}, nil
}

// compareVersions compares dotted numeric versions, treating missing
// components as zero.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
