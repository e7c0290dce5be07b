// Package board derives the list view from a lead collection: ordering,
// country and search filtering, status counters and row indicators.
// Functions are pure and never mutate their input.
package board

import (
	"slices"
	"strings"

	"leadboard_backend/internal/leads/domain"
)

// Query describes the active filters of the board.
type Query struct {
	Country string
	Search  string
	// Status is optional; empty matches every status.
	Status domain.Status
}

// Stats are the counters shown above the list.
type Stats struct {
	Total     int `json:"total"`
	Contacted int `json:"contacted"`
	Closed    int `json:"closed"`
}

// View is the derived list plus counters.
type View struct {
	Items []domain.Lead
	Stats Stats
}

// Indicators are the small badges rendered on each row.
type Indicators struct {
	HasNotes    bool `json:"hasNotes"`
	HasEvidence bool `json:"hasEvidence"`
	HasRevamp   bool `json:"hasRevamp"`
}

// Sort returns a copy ordered with revamped leads first, then newest first.
// Ties keep their input order.
func Sort(leads []domain.Lead) []domain.Lead {
	sorted := slices.Clone(leads)
	slices.SortStableFunc(sorted, func(a, b domain.Lead) int {
		ar, br := a.Status == domain.StatusRevamped, b.Status == domain.StatusRevamped
		if ar != br {
			if ar {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

// MatchesCountry is an exact match; an empty country matches everything.
func MatchesCountry(lead domain.Lead, country string) bool {
	return country == "" || lead.Country == country
}

// MatchesSearch is a case-insensitive substring match on business name or industry.
func MatchesSearch(lead domain.Lead, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(lead.BusinessName), q) ||
		strings.Contains(strings.ToLower(lead.Industry), q)
}

// MatchesStatus matches every lead when status is empty.
func MatchesStatus(lead domain.Lead, status domain.Status) bool {
	return status == "" || lead.Status == status
}

// FilterCountry keeps leads of the given country.
func FilterCountry(leads []domain.Lead, country string) []domain.Lead {
	return keep(leads, func(l domain.Lead) bool { return MatchesCountry(l, country) })
}

// FilterSearch keeps leads matching the search text.
func FilterSearch(leads []domain.Lead, query string) []domain.Lead {
	return keep(leads, func(l domain.Lead) bool { return MatchesSearch(l, query) })
}

// Filter is the intersection of the country and search predicates.
func Filter(leads []domain.Lead, country, search string) []domain.Lead {
	return keep(leads, func(l domain.Lead) bool {
		return MatchesCountry(l, country) && MatchesSearch(l, search)
	})
}

// ComputeStats counts over the country-filtered set. Search never affects it.
// Closed includes revamped leads.
func ComputeStats(leads []domain.Lead, country string) Stats {
	var stats Stats
	for _, l := range leads {
		if !MatchesCountry(l, country) {
			continue
		}
		stats.Total++
		switch l.Status {
		case domain.StatusContacted:
			stats.Contacted++
		case domain.StatusClosed, domain.StatusRevamped:
			stats.Closed++
		}
	}
	return stats
}

// Build sorts, filters and counts in one pass over the query.
func Build(leads []domain.Lead, q Query) View {
	items := keep(Sort(leads), func(l domain.Lead) bool {
		return MatchesCountry(l, q.Country) && MatchesSearch(l, q.Search) && MatchesStatus(l, q.Status)
	})
	return View{Items: items, Stats: ComputeStats(leads, q.Country)}
}

// Flags derives row indicators.
func Flags(lead domain.Lead) Indicators {
	return Indicators{
		HasNotes:    strings.TrimSpace(lead.Notes) != "",
		HasEvidence: len(lead.Evidence) > 0,
		HasRevamp:   len(lead.RevampImages) > 0,
	}
}

func keep(leads []domain.Lead, pred func(domain.Lead) bool) []domain.Lead {
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out
}
