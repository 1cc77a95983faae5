package scanner

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/heuristics"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func newDefault(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault() error = %v", err)
	}
	return s
}

func TestScan_ExactTriggers(t *testing.T) {
	s := newDefault(t)

	tests := []struct {
		name string
		id   string
		src  string
		want []string
	}{
		{"eval", "app.py", "eval(expression)", []string{catalog.EvalInjection}},
		{"md5", "app.py", "import hashlib\nhashlib.md5(data)", []string{catalog.WeakCryptography}},
		{"bare except", "app.py", "try:\n    risky()\nexcept:\n    pass", []string{catalog.BareExcept}},
		{"named except", "app.py", "try:\n    risky()\nexcept ValueError:\n    pass", []string{}},
		{"comment only", "app.py", "# eval(expression)", []string{}},
		{"slash comment", "main.go", "// hashlib.md5(data)\nx := 1", []string{}},
		{"empty", "app.py", "", []string{}},
		{
			name: "catalog order",
			id:   "app.py",
			src:  "def run(cmd, opts=[]):\n    os.system(cmd)\n    return eval(cmd)",
			want: []string{catalog.EvalInjection, catalog.CommandInjection, catalog.MutableDefaultArgument},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Scan(tt.id, tt.src)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if got.SnippetID != tt.id {
				t.Errorf("SnippetID = %q, want %q", got.SnippetID, tt.id)
			}
			if !reflect.DeepEqual(got.Triggered, tt.want) {
				t.Errorf("Triggered = %v, want %v", got.Triggered, tt.want)
			}
			for _, id := range got.Triggered {
				if got.MatchedText[id] == "" {
					t.Errorf("no matched text for %q", id)
				}
			}
			if len(got.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", got.Warnings)
			}
		})
	}
}

func TestScan_Deterministic(t *testing.T) {
	s := newDefault(t)
	src := "import os, sys\nfrom x import *\ndef getData(a, b=[]):\n    return eval(a)"
	first, err := s.Scan("mod.py", src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.Scan("mod.py", src)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Scan() not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestScan_TriggeredFollowsCatalogOrder(t *testing.T) {
	s := newDefault(t)
	src := "password = \"hunter22\"\nimport os, sys\nwhile True:\n    requests.get(url, verify=False)\n    data = pickle.loads(blob)"
	got, err := s.Scan("svc.py", src)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Triggered) < 2 {
		t.Fatalf("expected several triggers, got %v", got.Triggered)
	}
	last := -1
	for _, id := range got.Triggered {
		pos, ok := s.Catalog().Index(id)
		if !ok {
			t.Fatalf("triggered id %q not in catalog", id)
		}
		if pos <= last {
			t.Errorf("Triggered %v is not in catalog order", got.Triggered)
		}
		last = pos
	}
}

func TestScan_InputError(t *testing.T) {
	s := newDefault(t)

	for name, src := range map[string]string{
		"invalid utf8": "x = \xff\xfe",
		"nul byte":     "x = 1\x00",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Scan("bin.py", src)
			var ie *model.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("Scan() error = %v, want *model.InputError", err)
			}
			if ie.SnippetID != "bin.py" {
				t.Errorf("SnippetID = %q", ie.SnippetID)
			}
		})
	}
}

type stubMatcher struct {
	id  string
	fn  func(string) (model.Match, error)
	hit bool
}

func (m stubMatcher) DefectID() string { return m.id }

func (m stubMatcher) Match(src string) (model.Match, error) {
	if m.fn != nil {
		return m.fn(src)
	}
	return model.Match{Matched: m.hit, Text: "stub"}, nil
}

func TestScan_FailingMatchersBecomeWarnings(t *testing.T) {
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.WarnLevel)
	s := New(cat, WithLogger(zap.New(core).Sugar()))

	mustRegister(t, s, stubMatcher{id: catalog.EvalInjection, fn: func(string) (model.Match, error) {
		return model.Match{}, errors.New("cannot evaluate")
	}})
	mustRegister(t, s, stubMatcher{id: catalog.SQLInjection, fn: func(string) (model.Match, error) {
		panic("boom")
	}})
	mustRegister(t, s, stubMatcher{id: catalog.BareExcept, hit: true})

	got, err := s.Scan("x.py", "x = 1")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(got.Triggered, []string{catalog.BareExcept}) {
		t.Errorf("Triggered = %v", got.Triggered)
	}
	if len(got.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2", got.Warnings)
	}
	if got.Warnings[0].MatcherID != catalog.EvalInjection || got.Warnings[1].MatcherID != catalog.SQLInjection {
		t.Errorf("Warnings in wrong order: %v", got.Warnings)
	}
	if logs.Len() != 2 {
		t.Errorf("logged %d warnings, want 2", logs.Len())
	}
}

func TestScan_NoMatchersRegistered(t *testing.T) {
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	got, err := New(cat).Scan("x.py", "eval(expression)")
	if err != nil {
		t.Fatal(err)
	}
	if got.Triggered == nil || len(got.Triggered) != 0 {
		t.Errorf("Triggered = %#v, want empty non-nil", got.Triggered)
	}
}

func TestRegister(t *testing.T) {
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	s := New(cat)

	mustRegister(t, s, stubMatcher{id: catalog.DeepNesting})
	mustRegister(t, s, stubMatcher{id: catalog.EvalInjection})
	mustRegister(t, s, stubMatcher{id: catalog.BareExcept})

	var dup *model.DuplicateIDError
	if err := s.Register(stubMatcher{id: catalog.BareExcept}); !errors.As(err, &dup) {
		t.Errorf("second Register() error = %v, want *model.DuplicateIDError", err)
	}
	var nf *model.NotFoundError
	if err := s.Register(stubMatcher{id: "no-such-defect"}); !errors.As(err, &nf) {
		t.Errorf("Register(unknown) error = %v, want *model.NotFoundError", err)
	}

	want := []string{catalog.EvalInjection, catalog.BareExcept, catalog.DeepNesting}
	if got := s.Matchers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Matchers() = %v, want %v", got, want)
	}
}

func TestScanSnippet_LanguageSelectsComments(t *testing.T) {
	s := newDefault(t)

	got, err := s.ScanSnippet(model.Snippet{ID: "snippet-1", Source: "// eval(expression)\nx = 1", Language: "js"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Triggered) != 0 {
		t.Errorf("comment was scanned: %v", got.Triggered)
	}

	got, err = s.ScanSnippet(model.Snippet{ID: "snippet-2", Source: "x = 1 # fine\neval(expression)", Language: "py"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Triggered, []string{catalog.EvalInjection}) {
		t.Errorf("Triggered = %v", got.Triggered)
	}
}

func TestScan_Concurrent(t *testing.T) {
	s := newDefault(t)
	want, err := s.Scan("c.py", "eval(expression)")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Scan("c.py", "eval(expression)")
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- fmt.Errorf("got %+v, want %+v", got, want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewDefault_RegistersEveryBuiltin(t *testing.T) {
	s := newDefault(t)
	if got, want := len(s.Matchers()), len(heuristics.Builtin()); got != want {
		t.Errorf("registered %d matchers, want %d", got, want)
	}
	if got, want := len(s.Matchers()), s.Catalog().Len(); got != want {
		t.Errorf("registered %d matchers, catalog has %d", got, want)
	}
}

func mustRegister(t *testing.T, s *Scanner, m model.Matcher) {
	t.Helper()
	if err := s.Register(m); err != nil {
		t.Fatalf("Register(%s) error = %v", m.DefectID(), err)
	}
}
