package catalog

import (
	"fmt"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

// Catalog is an append-only, ordered registry of defect definitions.
// Registration is not synchronized; finish it before sharing the catalog.
type Catalog struct {
	defs  []model.DefectDefinition
	index map[string]int
}

func New() *Catalog {
	return &Catalog{
		defs:  make([]model.DefectDefinition, 0, len(builtinDefects)),
		index: make(map[string]int),
	}
}

// Register appends def to the catalog. Declaration order is catalog order.
func (c *Catalog) Register(def model.DefectDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("defect id cannot be empty")
	}
	if _, exists := c.index[def.ID]; exists {
		return &model.DuplicateIDError{ID: def.ID}
	}
	if strings.TrimSpace(def.Title) == "" {
		return fmt.Errorf("defect %q: title cannot be empty", def.ID)
	}
	if !def.Category.Valid() {
		return fmt.Errorf("defect %q: unknown category %q", def.ID, def.Category)
	}
	if !def.Severity.Valid() {
		return fmt.Errorf("defect %q: unknown severity %q", def.ID, def.Severity)
	}

	c.index[def.ID] = len(c.defs)
	c.defs = append(c.defs, def)
	return nil
}

// Get returns the definition for id or a *model.NotFoundError.
func (c *Catalog) Get(id string) (model.DefectDefinition, error) {
	i, ok := c.index[id]
	if !ok {
		return model.DefectDefinition{}, &model.NotFoundError{ID: id}
	}
	return c.defs[i], nil
}

// All returns every definition in declaration order.
func (c *Catalog) All() []model.DefectDefinition {
	out := make([]model.DefectDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Index returns the catalog position of id.
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

func (c *Catalog) Len() int { return len(c.defs) }

// Builtin returns a catalog populated from the fixed defect table.
func Builtin() (*Catalog, error) {
	c := New()
	for _, def := range builtinDefects {
		if err := c.Register(def); err != nil {
			return nil, fmt.Errorf("builtin catalog: %w", err)
		}
	}
	return c, nil
}
