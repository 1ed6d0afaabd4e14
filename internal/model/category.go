package model

import "time"

// Category is one entry of the ordered category table used by the categorizer.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Keywords      []string `yaml:"keywords" json:"keywords"`
	Patterns      []string `yaml:"patterns" json:"patterns"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// PrimarySubcategory returns the subcategory reported for stage hits on this category.
func (c Category) PrimarySubcategory() string {
	if len(c.Subcategories) == 0 {
		return "General"
	}
	return c.Subcategories[0]
}

// CategoryRule is a custom pattern registered at runtime against a category.
type CategoryRule struct {
	CreatedAt   time.Time `json:"created_at"`
	Pattern     string    `json:"pattern"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	ID          int       `json:"id"`
	Confidence  float64   `json:"confidence"`
}

// CategoryStats aggregates spending for one category.
type CategoryStats struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Average  float64 `json:"average"`
}
