package model

// Extractor is responsible for splitting a file into scannable snippets
type Extractor interface {
	// Extract splits the given file content into snippets
	Extract(filePath string, content []byte) ([]Snippet, error)
}

// Matcher is a single heuristic bound to exactly one catalog entry
type Matcher interface {
	// DefectID returns the catalog id this matcher reports
	DefectID() string
	// Match inspects a normalized snippet. It must not mutate or retain src.
	Match(src string) (Match, error)
}

// Reporter defines how to output results
type Reporter interface {
	Report(results []ScanResult) error
}
