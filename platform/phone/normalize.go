// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "ZW"

// countryRegions maps the board's country labels to ISO 3166 region codes.
var countryRegions = map[string]string{
	"zimbabwe":       "ZW",
	"canada":         "CA",
	"south africa":   "ZA",
	"zambia":         "ZM",
	"botswana":       "BW",
	"united states":  "US",
	"united kingdom": "GB",
}

// RegionForCountry resolves a country label to a region code used for parsing
// national-format numbers. Unknown countries fall back to the default region.
func RegionForCountry(country string) string {
	if region, ok := countryRegions[strings.ToLower(strings.TrimSpace(country))]; ok {
		return region
	}
	return defaultRegion
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = defaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Digits strips everything except ASCII digits, the form wa.me links expect.
func Digits(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
