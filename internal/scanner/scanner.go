package scanner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/heuristics"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

// Scanner runs registered matchers over snippets. Register everything before
// the first Scan; after that a Scanner is safe for concurrent use.
type Scanner struct {
	catalog  *catalog.Catalog
	matchers []model.Matcher // catalog order
	logger   *zap.SugaredLogger
}

type Option func(*Scanner)

// WithLogger sets the logger matcher failures are reported to.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(cat *catalog.Catalog, opts ...Option) *Scanner {
	s := &Scanner{
		catalog:  cat,
		matchers: make([]model.Matcher, 0, cat.Len()),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefault returns a scanner over the builtin catalog with every builtin
// matcher registered.
func NewDefault(opts ...Option) (*Scanner, error) {
	cat, err := catalog.Builtin()
	if err != nil {
		return nil, err
	}
	s := New(cat, opts...)
	for _, m := range heuristics.Builtin() {
		if err := s.Register(m); err != nil {
			return nil, fmt.Errorf("register builtin matcher: %w", err)
		}
	}
	return s, nil
}

func (s *Scanner) Catalog() *catalog.Catalog { return s.catalog }

// Register binds m to its catalog entry. The id must exist in the catalog
// and may be bound only once.
func (s *Scanner) Register(m model.Matcher) error {
	id := m.DefectID()
	pos, ok := s.catalog.Index(id)
	if !ok {
		return &model.NotFoundError{ID: id}
	}
	at := sort.Search(len(s.matchers), func(i int) bool {
		p, _ := s.catalog.Index(s.matchers[i].DefectID())
		return p >= pos
	})
	if at < len(s.matchers) && s.matchers[at].DefectID() == id {
		return &model.DuplicateIDError{ID: id}
	}
	s.matchers = append(s.matchers, nil)
	copy(s.matchers[at+1:], s.matchers[at:])
	s.matchers[at] = m
	return nil
}

// Matchers returns the registered defect ids in catalog order.
func (s *Scanner) Matchers() []string {
	ids := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		ids[i] = m.DefectID()
	}
	return ids
}

// Scan classifies source. Comment syntax is picked from the snippet id's
// extension. The only error is *model.InputError; a matcher that fails is
// reported as a warning on the result.
func (s *Scanner) Scan(snippetID, source string) (model.ScanResult, error) {
	return s.scan(snippetID, source, heuristics.SyntaxFor(snippetID))
}

// ScanSnippet is Scan with the snippet's declared language taking precedence
// over its id.
func (s *Scanner) ScanSnippet(sn model.Snippet) (model.ScanResult, error) {
	syntax := heuristics.SyntaxFor(sn.ID)
	if sn.Language != "" {
		syntax = heuristics.SyntaxFor("." + sn.Language)
	}
	return s.scan(sn.ID, sn.Source, syntax)
}

func (s *Scanner) scan(snippetID, source string, syntax heuristics.CommentSyntax) (model.ScanResult, error) {
	if err := checkText(snippetID, source); err != nil {
		return model.ScanResult{}, err
	}

	result := model.ScanResult{SnippetID: snippetID, Triggered: []string{}}
	src := heuristics.Normalize(source, syntax)
	if src == "" {
		return result, nil
	}

	for _, m := range s.matchers {
		match, err := runMatcher(m, src)
		if err != nil {
			s.logger.Warnw("matcher failed", "snippet", snippetID, "matcher", m.DefectID(), "error", err)
			result.Warnings = append(result.Warnings, model.Warning{MatcherID: m.DefectID(), Message: err.Error()})
			continue
		}
		if !match.Matched {
			continue
		}
		result.Triggered = append(result.Triggered, m.DefectID())
		if result.MatchedText == nil {
			result.MatchedText = make(map[string]string)
		}
		result.MatchedText[m.DefectID()] = match.Text
	}
	return result, nil
}

// runMatcher turns both returned errors and panics into *model.MatcherError.
func runMatcher(m model.Matcher, src string) (match model.Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			match, err = model.Match{}, &model.MatcherError{MatcherID: m.DefectID(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	match, err = m.Match(src)
	if err != nil {
		var me *model.MatcherError
		if !errors.As(err, &me) {
			err = &model.MatcherError{MatcherID: m.DefectID(), Err: err}
		}
		return model.Match{}, err
	}
	return match, nil
}

func checkText(snippetID, source string) error {
	if !utf8.ValidString(source) {
		return &model.InputError{SnippetID: snippetID, Reason: "source is not valid UTF-8"}
	}
	if strings.IndexByte(source, 0) >= 0 {
		return &model.InputError{SnippetID: snippetID, Reason: "source contains NUL bytes"}
	}
	return nil
}
