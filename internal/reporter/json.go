package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

type jsonDocument struct {
	Results []jsonResult `json:"results"`
	Summary jsonSummary  `json:"summary"`
}

type jsonResult struct {
	SnippetID string          `json:"snippet_id"`
	Defects   []jsonDefect    `json:"defects"`
	Warnings  []model.Warning `json:"warnings,omitempty"`
}

type jsonDefect struct {
	ID          string         `json:"id"`
	Category    model.Category `json:"category,omitempty"`
	Title       string         `json:"title,omitempty"`
	Severity    model.Severity `json:"severity,omitempty"`
	MatchedText string         `json:"matched_text,omitempty"`
}

type jsonSummary struct {
	Snippets int                    `json:"snippets"`
	Defects  int                    `json:"defects"`
	Warnings int                    `json:"warnings"`
	BySev    map[model.Severity]int `json:"by_severity"`
}

// JSONReporter writes one indented document. Defects keep their catalog
// order within each snippet.
type JSONReporter struct {
	out     io.Writer
	catalog *catalog.Catalog
}

func NewJSONReporter(cat *catalog.Catalog, out io.Writer) *JSONReporter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONReporter{out: out, catalog: cat}
}

func (r *JSONReporter) Report(results []model.ScanResult) error {
	doc := jsonDocument{
		Results: make([]jsonResult, 0, len(results)),
		Summary: jsonSummary{Snippets: len(results), BySev: map[model.Severity]int{}},
	}
	for _, res := range results {
		jr := jsonResult{SnippetID: res.SnippetID, Defects: make([]jsonDefect, 0, len(res.Triggered)), Warnings: res.Warnings}
		for _, id := range res.Triggered {
			d := jsonDefect{ID: id, MatchedText: res.MatchedText[id]}
			if def, err := r.catalog.Get(id); err == nil {
				d.Category, d.Title, d.Severity = def.Category, def.Title, def.Severity
				doc.Summary.BySev[def.Severity]++
			}
			jr.Defects = append(jr.Defects, d)
		}
		doc.Summary.Defects += len(res.Triggered)
		doc.Summary.Warnings += len(res.Warnings)
		doc.Results = append(doc.Results, jr)
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
