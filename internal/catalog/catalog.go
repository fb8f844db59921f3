/*
Package catalog holds the static tool directory and the combined search corpus.

The catalog is defined at build time (catalog.json is embedded into the binary)
and is immutable at runtime. Articles are merged in from the content loader to
form the corpus the search index is built from.
*/
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Category is one of the fixed tool categories.
type Category string

const (
	CategoryText       Category = "Text Tools"
	CategoryImage      Category = "Image Tools"
	CategoryDeveloper  Category = "Developer Tools"
	CategoryConverters Category = "Converters"
	CategoryGenerators Category = "Generators"
	CategoryAI         Category = "AI Tools"
	CategoryPDF        Category = "PDF Tools"
	CategorySEO        Category = "SEO Tools"
)

// AllCategories lists the closed category set in display order.
var AllCategories = []Category{
	CategoryText,
	CategoryImage,
	CategoryDeveloper,
	CategoryConverters,
	CategoryGenerators,
	CategoryAI,
	CategoryPDF,
	CategorySEO,
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// ToolRecord describes a single tool page.
type ToolRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Href        string   `json:"href"`
	Category    Category `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Popular     bool     `json:"popular,omitempty"`
	New         bool     `json:"new,omitempty"`
	UsageCount  int      `json:"usageCount,omitempty"`
	Description string   `json:"description"`
	Features    []string `json:"features,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// HasTag reports whether the tool carries tag (case-insensitive).
func (t ToolRecord) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Catalog is an ordered, read-only list of tools.
type Catalog struct {
	tools []ToolRecord
	byID  map[string]int
}

// document is the on-disk shape of catalog.json.
type document struct {
	Version string       `json:"version"`
	Tools   []ToolRecord `json:"tools"`
}

// New builds a catalog from records, validating them.
func New(tools []ToolRecord) (*Catalog, error) {
	c := &Catalog{
		tools: make([]ToolRecord, 0, len(tools)),
		byID:  make(map[string]int, len(tools)),
	}

	for i, t := range tools {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("tool %d: empty id", i)
		}
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("tool %s: empty name", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("tool %s: duplicate id", t.ID)
		}
		cat, ok := ParseCategory(string(t.Category))
		if !ok {
			return nil, fmt.Errorf("tool %s: unknown category %q", t.ID, t.Category)
		}
		if t.UsageCount < 0 {
			return nil, fmt.Errorf("tool %s: negative usageCount", t.ID)
		}
		t.Category = cat
		c.byID[t.ID] = len(c.tools)
		c.tools = append(c.tools, t)
	}

	return c, nil
}

// Parse reads a catalog document.
func Parse(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(doc.Tools)
}

//go:embed catalog.json
var embeddedCatalog string

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(strings.NewReader(embeddedCatalog))
	})
	return defaultCatalog, defaultErr
}

// Tools returns a copy of the tools in catalog order.
func (c *Catalog) Tools() []ToolRecord {
	if c == nil {
		return nil
	}
	out := make([]ToolRecord, len(c.tools))
	copy(out, c.tools)
	return out
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tools)
}

// Lookup finds a tool by id.
func (c *Catalog) Lookup(id string) (ToolRecord, bool) {
	if c == nil {
		return ToolRecord{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return ToolRecord{}, false
	}
	return c.tools[i], true
}

// Categories returns the categories in use, in first-seen order.
func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	seen := make(map[Category]bool)
	var out []Category
	for _, t := range c.tools {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// Features returns every feature tag used by the catalog, lowercased, in
// first-seen order.
func (c *Catalog) Features() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.tools {
		for _, tag := range t.Tags {
			key := strings.ToLower(tag)
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}
