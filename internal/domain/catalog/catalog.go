package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var definition []byte

var (
	ErrEmptyCatalog  = errors.New("catalog has no categories")
	ErrMissingID     = errors.New("category id is empty")
	ErrDuplicateID   = errors.New("duplicate category id")
	ErrDuplicateTool = errors.New("duplicate tool in category")
)

// Category is one fixed grouping of the IT tool landscape
type Category struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tools       []string `yaml:"tools" json:"tools"`
}

// HasTool reports whether name is one of the category's catalog tools
func (c Category) HasTool(name string) bool {
	for _, t := range c.Tools {
		if t == name {
			return true
		}
	}
	return false
}

func (c Category) clone() Category {
	c.Tools = append([]string(nil), c.Tools...)
	return c
}

// Catalog is an ordered, immutable set of categories
type Catalog struct {
	categories []Category
	index      map[string]int
}

type document struct {
	Categories []Category `yaml:"categories"`
}

// New builds a catalog, preserving declaration order of categories and tools.
func New(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}

	for i, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("category %d: %w", i, ErrMissingID)
		}
		if _, exists := c.index[cat.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, cat.ID)
		}

		seen := make(map[string]struct{}, len(cat.Tools))
		for _, tool := range cat.Tools {
			if _, dup := seen[tool]; dup {
				return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateTool, cat.ID, tool)
			}
			seen[tool] = struct{}{}
		}

		c.index[cat.ID] = len(c.categories)
		c.categories = append(c.categories, cat.clone())
	}

	return c, nil
}

// Parse builds a catalog from a YAML document with a top-level categories list
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Categories)
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the embedded catalog. It panics if the embedded definition
// is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(definition)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Get looks up a category by id
func (c *Catalog) Get(id string) (Category, bool) {
	i, ok := c.index[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i].clone(), true
}

// At returns the category at a wizard step index
func (c *Catalog) At(i int) (Category, bool) {
	if i < 0 || i >= len(c.categories) {
		return Category{}, false
	}
	return c.categories[i].clone(), true
}

// IndexOf returns the position of a category id, or -1
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of categories
func (c *Catalog) Len() int {
	return len(c.categories)
}

// List returns all categories in declaration order
func (c *Catalog) List() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.clone()
	}
	return out
}
