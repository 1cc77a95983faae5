package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

type ConsoleReporter struct {
	out     io.Writer
	catalog *catalog.Catalog
}

// NewConsoleReporter writes to out, or stdout when out is nil.
func NewConsoleReporter(cat *catalog.Catalog, out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out, catalog: cat}
}

func (r *ConsoleReporter) Report(results []model.ScanResult) error {
	defects, warnings := 0, 0
	for _, res := range results {
		if len(res.Triggered) == 0 && len(res.Warnings) == 0 {
			continue
		}
		fmt.Fprintln(r.out, color.New(color.Bold).Sprint(res.SnippetID))

		for _, id := range res.Triggered {
			defects++
			def, err := r.catalog.Get(id)
			if err != nil {
				fmt.Fprintf(r.out, "  [%s] %s\n", color.WhiteString("unknown"), id)
				continue
			}
			fmt.Fprintf(r.out, "  [%s] %s: %s\n", severityColor(def.Severity).Sprint(def.Severity), id, def.Title)
			if text := res.MatchedText[id]; text != "" {
				fmt.Fprintf(r.out, "\tCode: %s\n", color.CyanString(truncate(text, 80)))
			}
		}
		for _, w := range res.Warnings {
			warnings++
			fmt.Fprintf(r.out, "  %s %s: %s\n", color.YellowString("!"), w.MatcherID, w.Message)
		}
		fmt.Fprintln(r.out)
	}

	if defects == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ No defects found in %d snippets.", len(results)))
	} else {
		fmt.Fprintf(r.out, "%s found %d defects in %d snippets.\n", color.RedString("✘"), defects, len(results))
	}
	if warnings > 0 {
		fmt.Fprintf(r.out, "%s %d matcher warnings.\n", color.YellowString("!"), warnings)
	}
	return nil
}

func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case model.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case model.SeverityInfo:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// CatalogPrinter lists catalog definitions for the catalog command.
type CatalogPrinter struct {
	out io.Writer
}

func NewCatalogPrinter(out io.Writer) *CatalogPrinter {
	if out == nil {
		out = os.Stdout
	}
	return &CatalogPrinter{out: out}
}

func (p *CatalogPrinter) Print(defs []model.DefectDefinition) {
	for _, def := range defs {
		fmt.Fprintf(p.out, "%-30s %s %-22s %s\n",
			def.ID, severityColor(def.Severity).Sprintf("%-8s", def.Severity), def.Category, def.Title)
	}
	fmt.Fprintf(p.out, "\n%d defects.\n", len(defs))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
