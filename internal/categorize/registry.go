// Package categorize assigns a category, subcategory and confidence to each
// transaction by running an ordered list of matching strategies.
package categorize

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
	"gopkg.in/yaml.v3"
)

// Pattern is a compiled category pattern. Subcategory is empty for patterns
// from the category table and set for custom rules.
type Pattern struct {
	Regex       *regexp.Regexp
	Subcategory string
}

// Definition is a category with lowercased keywords and compiled patterns.
type Definition struct {
	Name          string
	Keywords      []string
	Patterns      []Pattern
	Subcategories []string
}

// Primary returns the subcategory reported for hits on this category.
func (d Definition) Primary() string {
	if len(d.Subcategories) == 0 {
		return "General"
	}
	return d.Subcategories[0]
}

// Registry is the ordered, mutable category table. Insertion order is
// significant: the pattern stage reports the first category that matches.
type Registry struct {
	index       map[string]int
	definitions []Definition
	mu          sync.RWMutex
}

// NewRegistry compiles categories into a registry, preserving their order.
func NewRegistry(categories []model.Category) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(categories))}
	for _, c := range categories {
		if err := r.add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding the built-in category table.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCategories())
	if err != nil {
		panic(fmt.Sprintf("built-in category table: %v", err))
	}
	return r
}

type categoryFile struct {
	Categories []model.Category `yaml:"categories"`
}

// LoadYAML reads a category table of the form
//
//	categories:
//	  - name: Groceries
//	    keywords: [grocery, market]
//	    patterns: ['.*grocer.*']
//	    subcategories: [Supermarkets]
//
// and returns a registry with the categories in file order.
func LoadYAML(rd io.Reader) (*Registry, error) {
	var file categoryFile
	if err := yaml.NewDecoder(rd).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode category table: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("%w: category table is empty", common.ErrInvalidConfig)
	}
	return NewRegistry(file.Categories)
}

func (r *Registry) add(c model.Category) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("%w: category without a name", common.ErrInvalidConfig)
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
	}

	def := Definition{
		Name:          name,
		Subcategories: slices.Clone(c.Subcategories),
	}
	for _, kw := range c.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			def.Keywords = append(def.Keywords, kw)
		}
	}
	for _, p := range c.Patterns {
		re, err := common.CompileFold(p)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		def.Patterns = append(def.Patterns, Pattern{Regex: re})
	}

	r.index[name] = len(r.definitions)
	r.definitions = append(r.definitions, def)
	return nil
}

// AddRule appends a custom pattern to a category's pattern list, creating the
// category at the end of the table when it does not exist. An invalid pattern
// returns ErrInvalidRule and leaves the registry unchanged.
func (r *Registry) AddRule(rule model.CategoryRule) error {
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: category is required", common.ErrInvalidRule)
	}
	re, err := common.CompileFold(rule.Pattern)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[rule.Category]
	if !ok {
		i = len(r.definitions)
		r.index[rule.Category] = i
		r.definitions = append(r.definitions, Definition{Name: rule.Category})
	}

	// Copy before appending so snapshots already handed out never change.
	def := r.definitions[i]
	def.Patterns = append(slices.Clone(def.Patterns), Pattern{Regex: re, Subcategory: rule.Subcategory})
	if rule.Subcategory != "" && !slices.Contains(def.Subcategories, rule.Subcategory) {
		def.Subcategories = append(slices.Clone(def.Subcategories), rule.Subcategory)
	}
	r.definitions[i] = def
	return nil
}

// Snapshot returns the current table. The result is safe to read while rules are added.
func (r *Registry) Snapshot() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.definitions)
}

// Categories returns the table in its declarative form.
func (r *Registry) Categories() []model.Category {
	defs := r.Snapshot()
	out := make([]model.Category, 0, len(defs))
	for _, d := range defs {
		c := model.Category{
			Name:          d.Name,
			Keywords:      slices.Clone(d.Keywords),
			Subcategories: slices.Clone(d.Subcategories),
		}
		for _, p := range d.Patterns {
			c.Patterns = append(c.Patterns, p.Regex.String())
		}
		out = append(out, c)
	}
	return out
}

// Lookup returns the definition for a category name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.definitions[i], true
}
