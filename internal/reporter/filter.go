package reporter

import (
	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

// FilterBySeverity returns copies of results keeping only triggered ids whose
// catalog severity is at least minSev. Ids missing from the catalog are dropped.
func FilterBySeverity(results []model.ScanResult, cat *catalog.Catalog, minSev model.Severity) []model.ScanResult {
	out := make([]model.ScanResult, 0, len(results))
	for _, res := range results {
		kept := model.ScanResult{SnippetID: res.SnippetID, Triggered: []string{}, Warnings: res.Warnings}
		for _, id := range res.Triggered {
			def, err := cat.Get(id)
			if err != nil || def.Severity.Rank() < minSev.Rank() {
				continue
			}
			kept.Triggered = append(kept.Triggered, id)
			if text, ok := res.MatchedText[id]; ok {
				if kept.MatchedText == nil {
					kept.MatchedText = make(map[string]string)
				}
				kept.MatchedText[id] = text
			}
		}
		out = append(out, kept)
	}
	return out
}

// MaxSeverity returns the highest catalog severity among all triggered ids,
// or "" when nothing triggered.
func MaxSeverity(results []model.ScanResult, cat *catalog.Catalog) model.Severity {
	var top model.Severity
	for _, res := range results {
		for _, id := range res.Triggered {
			if def, err := cat.Get(id); err == nil && def.Severity.Rank() > top.Rank() {
				top = def.Severity
			}
		}
	}
	return top
}
