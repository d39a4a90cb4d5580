// Package filter provides arbitrary field comparisons for list queries.
package filter

// ComparisonType defines the supported comparison kinds.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	Greater        ComparisonType = "gt"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item represents one filter condition.
type Item struct {
	Field    string         `json:"field"`    // column name (snake_case)
	Operator ComparisonType `json:"operator"` // comparison kind
	Value    any            `json:"value"`    // scalar or list of values
}
