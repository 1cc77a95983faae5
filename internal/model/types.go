package model

import "fmt"

// Location represents the physical location of a code segment
type Location struct {
	FilePath string
	Line     int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.FilePath, l.Line)
}

// Snippet is a caller-supplied unit of source text to be scanned
type Snippet struct {
	ID       string
	Source   string
	Location Location
	Language string // file extension without the dot, e.g. "py", "go"
}

// Category groups defects by the kind of problem they describe
type Category string

const (
	CategoryLogicError            Category = "logic-error"
	CategoryStyleIssue            Category = "style-issue"
	CategoryRuntimeException      Category = "runtime-exception"
	CategoryVulnerableDependency  Category = "vulnerable-dependency"
	CategoryPerformanceIssue      Category = "performance-issue"
	CategorySecurityVulnerability Category = "security-vulnerability"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLogicError, CategoryStyleIssue, CategoryRuntimeException,
		CategoryVulnerableDependency, CategoryPerformanceIssue, CategorySecurityVulnerability:
		return true
	}
	return false
}

// Severity defines how serious a catalogued defect is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: info < warning < critical. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	}
	return 0
}

func (s Severity) Valid() bool { return s.Rank() > 0 }

// ParseSeverity converts a config/flag value into a Severity.
func ParseSeverity(v string) (Severity, error) {
	s := Severity(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q (want info, warning or critical)", v)
	}
	return s, nil
}

// DefectDefinition is one catalogued class of code problem. Never mutated after load.
type DefectDefinition struct {
	ID          string   `json:"id" yaml:"id"`
	Category    Category `json:"category" yaml:"category"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// Match is the outcome of one heuristic against one normalized snippet
type Match struct {
	Matched bool
	Text    string // substring responsible for the match, may be empty
}

// Warning records a matcher that failed to evaluate during a scan
type Warning struct {
	MatcherID string `json:"matcher_id"`
	Message   string `json:"message"`
}

// ScanResult is the per-scan outcome. Triggered is in catalog order.
type ScanResult struct {
	SnippetID   string            `json:"snippet_id"`
	Triggered   []string          `json:"triggered"`
	Warnings    []Warning         `json:"warnings,omitempty"`
	MatchedText map[string]string `json:"matched_text,omitempty"`
}

// Has reports whether id was triggered.
func (r ScanResult) Has(id string) bool {
	for _, t := range r.Triggered {
		if t == id {
			return true
		}
	}
	return false
}
