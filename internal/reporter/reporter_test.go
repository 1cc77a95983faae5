package reporter

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

func builtinCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("catalog.Builtin() error = %v", err)
	}
	return cat
}

func sampleResults() []model.ScanResult {
	return []model.ScanResult{
		{
			SnippetID:   "app.py:12",
			Triggered:   []string{catalog.EvalInjection, catalog.NaiveDatetime},
			MatchedText: map[string]string{catalog.EvalInjection: "eval(expr)", catalog.NaiveDatetime: "datetime.now()"},
		},
		{
			SnippetID: "util.py",
			Triggered: []string{},
			Warnings:  []model.Warning{{MatcherID: catalog.InfiniteLoop, Message: "matcher infinite-loop: boom"}},
		},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	if err := NewConsoleReporter(builtinCatalog(t), &buf).Report(sampleResults()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"app.py:12",
		"[critical] eval-injection: Code injection via eval/exec",
		"Code: eval(expr)",
		"[info] naive-datetime",
		"! infinite-loop: matcher infinite-loop: boom",
		"found 2 defects in 2 snippets.",
		"1 matcher warnings.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_Clean(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := NewConsoleReporter(builtinCatalog(t), &buf).Report([]model.ScanResult{{SnippetID: "a.py", Triggered: []string{}}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No defects found in 1 snippets.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestJSONReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(builtinCatalog(t), &buf).Report(sampleResults()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(doc.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(doc.Results))
	}
	first := doc.Results[0]
	var ids []string
	for _, d := range first.Defects {
		ids = append(ids, d.ID)
	}
	if !reflect.DeepEqual(ids, []string{catalog.EvalInjection, catalog.NaiveDatetime}) {
		t.Errorf("defect order = %v", ids)
	}
	if first.Defects[0].Severity != model.SeverityCritical || first.Defects[0].MatchedText != "eval(expr)" {
		t.Errorf("first defect = %+v", first.Defects[0])
	}
	if doc.Results[1].Defects == nil || len(doc.Results[1].Defects) != 0 {
		t.Errorf("clean snippet defects = %#v, want empty list", doc.Results[1].Defects)
	}
	if doc.Summary.Defects != 2 || doc.Summary.Warnings != 1 || doc.Summary.BySev[model.SeverityInfo] != 1 {
		t.Errorf("summary = %+v", doc.Summary)
	}
}

func TestSARIFReporter_Build(t *testing.T) {
	cat := builtinCatalog(t)
	log := NewSARIFReporter(cat, nil).build(sampleResults())

	if log.Version != "2.1.0" {
		t.Fatalf("expected version 2.1.0, got %s", log.Version)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != ToolName {
		t.Errorf("tool name = %s", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != cat.Len() {
		t.Errorf("rules = %d, want %d", len(run.Tool.Driver.Rules), cat.Len())
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(run.Results))
	}

	r0 := run.Results[0]
	if r0.RuleID != catalog.EvalInjection || r0.Level != "error" || r0.RuleIndex != 0 {
		t.Errorf("first result = %+v", r0)
	}
	phys := r0.Locations[0].PhysicalLocation
	if phys.ArtifactLocation.URI != "app.py" || phys.Region == nil || phys.Region.StartLine != 12 {
		t.Errorf("location = %+v", phys)
	}
	if run.Results[1].Level != "note" {
		t.Errorf("info severity level = %s, want note", run.Results[1].Level)
	}
}

func TestSARIFReporter_ReportIsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSARIFReporter(builtinCatalog(t), &buf).Report(nil); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if raw["$schema"] == nil {
		t.Error("missing $schema")
	}
}

func TestSnippetLocation(t *testing.T) {
	tests := []struct {
		id   string
		uri  string
		line int
	}{
		{"src/app.py:40", "src/app.py", 40},
		{"src/app.py", "src/app.py", 0},
		{"C:/x/app.py", "C:/x/app.py", 0},
		{"snippet-7", "snippet-7", 0},
	}
	for _, tt := range tests {
		loc := snippetLocation(tt.id).PhysicalLocation
		line := 0
		if loc.Region != nil {
			line = loc.Region.StartLine
		}
		if loc.ArtifactLocation.URI != tt.uri || line != tt.line {
			t.Errorf("snippetLocation(%q) = %s:%d, want %s:%d", tt.id, loc.ArtifactLocation.URI, line, tt.uri, tt.line)
		}
	}
}

func TestFilterBySeverity(t *testing.T) {
	cat := builtinCatalog(t)
	results := sampleResults()

	got := FilterBySeverity(results, cat, model.SeverityWarning)
	if !reflect.DeepEqual(got[0].Triggered, []string{catalog.EvalInjection}) {
		t.Errorf("Triggered = %v", got[0].Triggered)
	}
	if _, ok := got[0].MatchedText[catalog.NaiveDatetime]; ok {
		t.Error("matched text kept for filtered id")
	}
	if len(got[1].Warnings) != 1 {
		t.Error("warnings dropped by filter")
	}
	if len(results[0].Triggered) != 2 {
		t.Error("FilterBySeverity mutated its input")
	}

	all := FilterBySeverity(results, cat, model.SeverityInfo)
	if !reflect.DeepEqual(all[0].Triggered, results[0].Triggered) {
		t.Errorf("info filter dropped ids: %v", all[0].Triggered)
	}
}

func TestMaxSeverity(t *testing.T) {
	cat := builtinCatalog(t)
	if got := MaxSeverity(sampleResults(), cat); got != model.SeverityCritical {
		t.Errorf("MaxSeverity() = %q, want critical", got)
	}
	if got := MaxSeverity(nil, cat); got != "" {
		t.Errorf("MaxSeverity(nil) = %q, want empty", got)
	}
}

func TestNew(t *testing.T) {
	cat := builtinCatalog(t)
	for _, format := range []string{"", "console", "JSON", "sarif"} {
		if _, err := New(format, cat, nil); err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
	}
	if _, err := New("html", cat, nil); err == nil {
		t.Error("New(html) returned no error")
	}
}

func TestCatalogPrinter_Print(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	cat := builtinCatalog(t)
	NewCatalogPrinter(&buf).Print(cat.All())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], catalog.EvalInjection) {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasSuffix(buf.String(), "43 defects.\n") {
		t.Errorf("missing count line: %q", lines[len(lines)-1])
	}
}
