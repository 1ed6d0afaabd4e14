// Package model defines the core domain models used throughout the application.
package model

// Stage identifies the categorizer stage that produced a classification.
type Stage string

// Categorizer stages, in the order they are attempted.
const (
	StageKeyword    Stage = "keyword"
	StagePattern    Stage = "pattern"
	StageEntity     Stage = "entity"
	StageSimilarity Stage = "similarity"
	StageFallback   Stage = "fallback"
)

// Fallback classification used when no stage clears its threshold.
const (
	FallbackCategory    = "Other"
	FallbackSubcategory = "Miscellaneous"
	FallbackConfidence  = 0.3
)

// CategorizedTransaction is a transaction with exactly one category/subcategory pair.
type CategorizedTransaction struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Stage       Stage  `json:"stage"`
	Transaction
	Confidence  float64 `json:"confidence"`
	IsRecurring bool    `json:"is_recurring"`
}
