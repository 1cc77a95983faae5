package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

// ToolName and ToolVersion identify the scanner in SARIF output.
const (
	ToolName    = "vendor-check"
	ToolVersion = "0.1.0"
)

// SARIF v2.1.0 types, the subset code-scanning services read.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name,omitempty"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	FullDescription  sarifMessage        `json:"fullDescription"`
	DefaultConfig    *sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
	Properties       *sarifRuleProps     `json:"properties,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProps struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// SARIFReporter emits every catalog entry as a rule and every triggered
// defect as a result located at its snippet.
type SARIFReporter struct {
	out     io.Writer
	catalog *catalog.Catalog
}

func NewSARIFReporter(cat *catalog.Catalog, out io.Writer) *SARIFReporter {
	if out == nil {
		out = os.Stdout
	}
	return &SARIFReporter{out: out, catalog: cat}
}

func (r *SARIFReporter) Report(results []model.ScanResult) error {
	b, err := json.MarshalIndent(r.build(results), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif report: %w", err)
	}
	b = append(b, '\n')
	if _, err := r.out.Write(b); err != nil {
		return fmt.Errorf("write sarif report: %w", err)
	}
	return nil
}

func (r *SARIFReporter) build(results []model.ScanResult) sarifLog {
	defs := r.catalog.All()
	rules := make([]sarifRule, 0, len(defs))
	for _, def := range defs {
		rules = append(rules, sarifRule{
			ID:               def.ID,
			Name:             def.Title,
			ShortDescription: sarifMessage{Text: def.Title},
			FullDescription:  sarifMessage{Text: def.Description},
			DefaultConfig:    &sarifDefaultConfig{Level: sarifLevel(def.Severity)},
			Properties:       &sarifRuleProps{Category: string(def.Category), Tags: []string{string(def.Category)}},
		})
	}

	out := make([]sarifResult, 0)
	for _, res := range results {
		loc := snippetLocation(res.SnippetID)
		for _, id := range res.Triggered {
			idx, ok := r.catalog.Index(id)
			if !ok {
				continue
			}
			def := defs[idx]
			msg := def.Title
			if text := res.MatchedText[id]; text != "" {
				msg += ": " + text
			}
			out = append(out, sarifResult{
				RuleID:    id,
				RuleIndex: idx,
				Level:     sarifLevel(def.Severity),
				Message:   sarifMessage{Text: msg},
				Locations: []sarifLocation{loc},
			})
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    ToolName,
					Version: ToolVersion,
					Rules:   rules,
				},
			},
			Results: out,
		}},
	}
}

// snippetLocation splits "path:line" ids; other ids are used as the URI.
func snippetLocation(id string) sarifLocation {
	loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: id}}}
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return loc
	}
	line, err := strconv.Atoi(id[i+1:])
	if err != nil || line < 1 {
		return loc
	}
	loc.PhysicalLocation.ArtifactLocation.URI = id[:i]
	loc.PhysicalLocation.Region = &sarifRegion{StartLine: line}
	return loc
}

func sarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "error"
	case model.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
