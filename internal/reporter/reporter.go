package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/model"
)

// New builds the reporter for format: console, json or sarif.
func New(format string, cat *catalog.Catalog, out io.Writer) (model.Reporter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleReporter(cat, out), nil
	case "json":
		return NewJSONReporter(cat, out), nil
	case "sarif":
		return NewSARIFReporter(cat, out), nil
	}
	return nil, fmt.Errorf("unknown report format %q (want console, json or sarif)", format)
}
