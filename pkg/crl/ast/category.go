package ast

import "strings"

// Category classifies a rule by the compliance regime it enforces.
type Category string

const (
	CategoryUCP600        Category = "UCP600"         // ICC Uniform Customs and Practice for Documentary Credits
	CategoryISBP          Category = "ISBP"           // International Standard Banking Practice
	CategoryCrossDocument Category = "CROSS_DOCUMENT" // Consistency checks spanning multiple documents
	CategoryExtraction    Category = "EXTRACTION"     // Mandatory-field presence checks on extracted data
	CategorySanctions     Category = "SANCTIONS"      // Sanctions and restricted-party screening
	CategoryCustom        Category = "CUSTOM"         // Institution-specific rules
)

// Categories lists every valid category value.
func Categories() []Category {
	return []Category{
		CategoryUCP600,
		CategoryISBP,
		CategoryCrossDocument,
		CategoryExtraction,
		CategorySanctions,
		CategoryCustom,
	}
}

// ParseCategory maps a free-text category string to a Category.
// Matching is case-insensitive and tolerant of space/hyphen separators.
// A malformed or unknown value coerces to CategoryCustom; rulebook parsing
// never rejects a rule over its category.
func ParseCategory(s string) Category {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch Category(norm) {
	case CategoryUCP600, CategoryISBP, CategoryCrossDocument, CategoryExtraction, CategorySanctions, CategoryCustom:
		return Category(norm)
	}
	return CategoryCustom
}

// IsValid returns true if c is one of the closed category values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryUCP600, CategoryISBP, CategoryCrossDocument, CategoryExtraction, CategorySanctions, CategoryCustom:
		return true
	}
	return false
}

// String returns the wire form of the category.
func (c Category) String() string {
	return string(c)
}
