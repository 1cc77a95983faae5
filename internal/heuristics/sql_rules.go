package heuristics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
	"github.com/monishjocata/Vendor-Check/internal/parser"
)

// DeepPaginationThreshold is the largest literal OFFSET not reported.
const DeepPaginationThreshold = 5000

func sqlMatchers() []model.Matcher {
	return []model.Matcher{
		Func{ID: catalog.SQLInjection, Fn: matchSQLInjection},
		Func{ID: catalog.SQLUnboundedWrite, Fn: matchSQLUnboundedWrite},
		Func{ID: catalog.SQLSelectStar, Fn: matchSQLSelectStar},
		Func{ID: catalog.SQLLeadingWildcard, Fn: matchSQLLeadingWildcard},
		Func{ID: catalog.SQLDeepPagination, Fn: matchSQLDeepPagination},
	}
}

var sqlParser = parser.NewSQLParser()

const sqlKeyword = `(?i:SELECT|INSERT|UPDATE|DELETE|REPLACE|WITH)\b`

// Go regexp has no backreferences, so each quote style gets its own pattern.
// Triple quotes come first; shorter quotes inside them are skipped as overlaps.
var sqlLiteralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)(?:^|[^\w])([A-Za-z]{0,2})"""\s*(` + sqlKeyword + `.*?)"""`),
	regexp.MustCompile(`(?s)(?:^|[^\w])([A-Za-z]{0,2})'''\s*(` + sqlKeyword + `.*?)'''`),
	regexp.MustCompile(`(?:^|[^\w"])([A-Za-z]{0,2})"(` + sqlKeyword + `(?:[^"\\\n]|\\.)*)"`),
	regexp.MustCompile(`(?:^|[^\w'])([A-Za-z]{0,2})'(` + sqlKeyword + `(?:[^'\\\n]|\\.)*)'`),
	regexp.MustCompile("(?s)(?:^|[^\\w`])()`(" + sqlKeyword + "[^`]*)`"),
}

var (
	formatField      = regexp.MustCompile(`\{[^{}\n]*\}`)
	templateField    = regexp.MustCompile(`\$\{[^}\n]*\}`)
	percentVerb      = regexp.MustCompile(`%\(\w+\)[sdrf]|%[-+0-9.]*[sdrfivqx]`)
	boundPlaceholder = regexp.MustCompile(`%\(\w+\)s|%[sd]\b|\$\d+`)
	namedPlaceholder = regexp.MustCompile(`([\s=(,]):[A-Za-z_]\w*`)
	concatOperand    = regexp.MustCompile(`^[\w.]+(?:\([^()\n]*\)|\[[^\[\]\n]*\])*`)
	plainString      = regexp.MustCompile(`^([A-Za-z]{0,2})(?:"((?:[^"\\\n]|\\.)*)"|'((?:[^'\\\n]|\\.)*)')`)
)

// sqlLiteral is an embedded SQL string and whatever is spliced into it.
type sqlLiteral struct {
	text         string // source text of the literal and its interpolation
	sql          string // statement with interpolated values replaced by 1
	interpolated bool
}

type literalSpan struct {
	start, quote, end int
	prefix, body      string
}

// sqlLiterals finds string literals that start with a SQL keyword and
// rebuilds each as a parseable statement.
func sqlLiterals(src string) []sqlLiteral {
	var spans []literalSpan
	for _, re := range sqlLiteralPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(src, -1) {
			spans = append(spans, literalSpan{
				start:  loc[2],
				quote:  loc[3],
				end:    loc[1],
				prefix: src[loc[2]:loc[3]],
				body:   src[loc[4]:loc[5]],
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out []sqlLiteral
	covered := -1
	for _, s := range spans {
		if s.start < covered {
			continue
		}
		covered = s.end
		out = append(out, buildLiteral(src, s))
	}
	return out
}

func buildLiteral(src string, s literalSpan) sqlLiteral {
	lit := sqlLiteral{sql: s.body}
	end := s.end
	after := strings.TrimLeft(src[s.end:], " ")
	before := strings.TrimRight(src[:s.start], " ")

	switch {
	case strings.ContainsAny(s.prefix, "fF") && formatField.MatchString(s.body):
		lit.sql = formatField.ReplaceAllString(s.body, "1")
		lit.interpolated = true
	case strings.Contains(s.body, "${"):
		lit.sql = templateField.ReplaceAllString(s.body, "1")
		lit.interpolated = true
	case strings.HasPrefix(after, ".format("):
		lit.sql = formatField.ReplaceAllString(s.body, "1")
		lit.interpolated = true
		if args, ok := callArgs(after, len(".format")); ok {
			end = len(src) - len(after) + len(".format") + len(args) + 2
		}
	case strings.HasPrefix(after, "%") && !strings.HasPrefix(after, "%="),
		strings.HasSuffix(before, "Sprintf(") && percentVerb.MatchString(s.body):
		lit.sql = strings.ReplaceAll(percentVerb.ReplaceAllString(s.body, "1"), "%%", "%")
		lit.interpolated = true
		if strings.HasPrefix(after, "%") {
			end = percentOperandEnd(src, skipSpaces(src, s.end)+1)
		}
	case strings.HasPrefix(after, "+") && !strings.HasPrefix(after, "+="):
		tail, tailEnd := concatTail(src, s.end)
		lit.sql = s.body + tail
		lit.interpolated = true
		end = tailEnd
	}

	lit.sql = boundPlaceholder.ReplaceAllString(lit.sql, "?")
	lit.sql = namedPlaceholder.ReplaceAllString(lit.sql, "$1?")
	lit.text = src[s.start:end]
	return lit
}

// concatTail follows a chain of "+ operand" after pos. String operands add
// their contents; any other operand stands for an unknown value.
func concatTail(src string, pos int) (string, int) {
	var b strings.Builder
	i := pos
	for {
		j := skipSpaces(src, i)
		if j >= len(src) || src[j] != '+' || j+1 < len(src) && src[j+1] == '=' {
			return b.String(), i
		}
		j = skipSpaces(src, j+1)
		rest := src[j:]
		if m := plainString.FindStringSubmatch(rest); m != nil {
			part := m[2] + m[3]
			if strings.ContainsAny(m[1], "fF") {
				part = formatField.ReplaceAllString(part, "1")
			}
			b.WriteString(part)
			i = j + len(m[0])
			continue
		}
		op := concatOperand.FindString(rest)
		if op == "" {
			return b.String(), i
		}
		b.WriteString("1")
		i = j + len(op)
	}
}

// percentOperandEnd returns where the right operand of "%" starting near i
// ends: a parenthesised tuple or a single name or call.
func percentOperandEnd(src string, i int) int {
	i = skipSpaces(src, i)
	if i < len(src) && src[i] == '(' {
		if args, ok := callArgs(src, i); ok {
			return i + len(args) + 2
		}
		return len(src)
	}
	return i + len(concatOperand.FindString(src[i:]))
}

func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

// sqlFacts is everything the SQL matchers ask about one rebuilt statement.
type sqlFacts struct {
	valid          bool
	unboundedWrite bool
	selectStar     bool
	wildcard       string
	hasWildcard    bool
	offset         uint64
	hasOffset      bool
}

func analyzeSQL(sql string) sqlFacts {
	stmt, err := sqlParser.Parse(sql)
	if err != nil {
		return sqlFacts{}
	}
	f := sqlFacts{
		valid:          true,
		unboundedWrite: parser.IsUnboundedWrite(stmt),
		selectStar:     parser.SelectsStar(stmt) && len(parser.ExtractTableNames(stmt)) > 0,
	}
	f.wildcard, f.hasWildcard = parser.LeadingWildcard(stmt)
	f.offset, f.hasOffset = parser.MaxOffset(stmt)
	return f
}

// factCache keeps the facts of recently parsed statements so the SQL matchers
// share one parse per statement. The oldest entry is evicted at limit.
type factCache struct {
	mu    sync.Mutex
	limit int
	order []string
	facts map[string]sqlFacts
}

func newFactCache(limit int) *factCache {
	return &factCache{limit: limit, facts: make(map[string]sqlFacts, limit)}
}

func (c *factCache) get(sql string) sqlFacts {
	c.mu.Lock()
	f, ok := c.facts[sql]
	c.mu.Unlock()
	if ok {
		return f
	}

	f = analyzeSQL(sql)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.facts[sql]; ok {
		return f
	}
	if len(c.order) >= c.limit {
		delete(c.facts, c.order[0])
		c.order = c.order[1:]
	}
	key := strings.Clone(sql)
	c.order = append(c.order, key)
	c.facts[key] = f
	return f
}

func (c *factCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.facts)
}

var sqlFactCache = newFactCache(1024)

type parsedSQL struct {
	lit   sqlLiteral
	facts sqlFacts
}

// parsedLiterals keeps only the literals the SQL parser accepts. Strings that
// merely start with "select" or "update" in prose fail to parse and drop out.
func parsedLiterals(src string) []parsedSQL {
	var out []parsedSQL
	for _, lit := range sqlLiterals(src) {
		f := sqlFactCache.get(lit.sql)
		if !f.valid {
			continue
		}
		out = append(out, parsedSQL{lit: lit, facts: f})
	}
	return out
}
// matchSQLInjection flags SQL assembled by f-strings, %-formatting, .format,
// template literals, Sprintf or concatenation. Interpolating a value that was
// validated or whitelisted beforehand is still reported; SQL the parser
// rejects after substitution is not.
func matchSQLInjection(src string) (model.Match, error) {
	for _, p := range parsedLiterals(src) {
		if p.lit.interpolated {
			return matched(p.lit.text), nil
		}
	}
	return model.Match{}, nil
}

// matchSQLUnboundedWrite reports UPDATE or DELETE statements with no WHERE.
// Statements whose WHERE clause is appended later by concatenation are
// reported as written.
func matchSQLUnboundedWrite(src string) (model.Match, error) {
	for _, p := range parsedLiterals(src) {
		if p.facts.unboundedWrite {
			return matched(p.lit.text), nil
		}
	}
	return model.Match{}, nil
}

// matchSQLSelectStar needs a top-level SELECT * that reads from a table;
// "SELECT *" from a derived table without a named source does not count.
func matchSQLSelectStar(src string) (model.Match, error) {
	for _, p := range parsedLiterals(src) {
		if p.facts.selectStar {
			return matched(p.lit.text), nil
		}
	}
	return model.Match{}, nil
}

// matchSQLLeadingWildcard reports LIKE '%...' with a literal pattern. A
// wildcard passed in as a bound parameter is invisible here.
func matchSQLLeadingWildcard(src string) (model.Match, error) {
	for _, p := range parsedLiterals(src) {
		if p.facts.hasWildcard {
			return matched("LIKE '" + p.facts.wildcard + "'"), nil
		}
	}
	return model.Match{}, nil
}

// matchSQLDeepPagination reports a literal LIMIT offset above
// DeepPaginationThreshold. Offsets computed at runtime are not seen.
func matchSQLDeepPagination(src string) (model.Match, error) {
	for _, p := range parsedLiterals(src) {
		if p.facts.hasOffset && p.facts.offset > DeepPaginationThreshold {
			return matched("OFFSET " + strconv.FormatUint(p.facts.offset, 10)), nil
		}
	}
	return model.Match{}, nil
}
