package domain

import (
	"slices"
	"strings"
)

// Industry tags offered in the create/edit form.
const (
	IndustryPoultry      = "Poultry"
	IndustryConstruction = "Construction"
	IndustryFinance      = "Finance"
	IndustryFood         = "Food"
	IndustryTourism      = "Tourism"
	IndustryOther        = "Other"
)

var standardIndustries = []string{
	IndustryPoultry,
	IndustryConstruction,
	IndustryFinance,
	IndustryFood,
	IndustryTourism,
}

// IsIndustryTag reports whether tag is selectable in the form, Other included.
func IsIndustryTag(tag string) bool {
	return tag == IndustryOther || slices.Contains(standardIndustries, tag)
}

// ResolveIndustry returns the value to persist. Other resolves to the trimmed
// custom text; every other tag is stored as-is.
func ResolveIndustry(tag, custom string) string {
	if tag == IndustryOther {
		return strings.TrimSpace(custom)
	}
	return tag
}

// SplitIndustry recovers the form selection from a stored value. Values outside
// the standard set come back as Other with the stored text as custom industry.
func SplitIndustry(stored string) (tag, custom string) {
	if slices.Contains(standardIndustries, stored) {
		return stored, ""
	}
	return IndustryOther, stored
}
