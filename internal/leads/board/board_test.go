package board

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"leadboard_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func lead(name string, status domain.Status, country string, ageHours int) domain.Lead {
	return domain.Lead{
		ID:           uuid.New(),
		BusinessName: name,
		Industry:     domain.IndustryPoultry,
		Status:       status,
		Country:      country,
		CreatedAt:    base.Add(-time.Duration(ageHours) * time.Hour),
	}
}

func randomLeads(r *rand.Rand, n int) []domain.Lead {
	statuses := domain.AllStatuses()
	countries := []string{"Zimbabwe", "Canada"}
	industries := []string{"Poultry", "Food", "Bakery", "Finance"}
	out := make([]domain.Lead, n)
	for i := range out {
		out[i] = domain.Lead{
			ID:           uuid.New(),
			BusinessName: fmt.Sprintf("Biz %c%d", 'A'+r.Intn(26), r.Intn(100)),
			Industry:     industries[r.Intn(len(industries))],
			Status:       statuses[r.Intn(len(statuses))],
			Country:      countries[r.Intn(len(countries))],
			// Coarse timestamps force ties.
			CreatedAt: base.Add(-time.Duration(r.Intn(5)) * time.Hour),
		}
	}
	return out
}

func TestSortRevampedFirstThenNewest(t *testing.T) {
	leads := []domain.Lead{
		lead("old-new", domain.StatusNew, "Zimbabwe", 10),
		lead("young-warm", domain.StatusWarm, "Zimbabwe", 1),
		lead("old-revamped", domain.StatusRevamped, "Zimbabwe", 20),
		lead("young-revamped", domain.StatusRevamped, "Zimbabwe", 2),
	}

	sorted := Sort(leads)

	names := make([]string, len(sorted))
	for i, l := range sorted {
		names[i] = l.BusinessName
	}
	assert.Equal(t, []string{"young-revamped", "old-revamped", "young-warm", "old-new"}, names)
	assert.Equal(t, "old-new", leads[0].BusinessName, "input must not be mutated")
}

func TestSortProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		sorted := Sort(randomLeads(r, 30))
		for i := 0; i+1 < len(sorted); i++ {
			a, b := sorted[i], sorted[i+1]
			ar, br := a.Status == domain.StatusRevamped, b.Status == domain.StatusRevamped
			require.False(t, !ar && br, "non-revamped before revamped at %d", i)
			if ar == br {
				require.False(t, a.CreatedAt.Before(b.CreatedAt), "older before newer at %d", i)
			}
		}
	}
}

func TestSortIsStable(t *testing.T) {
	a := lead("a", domain.StatusNew, "Zimbabwe", 1)
	b := lead("b", domain.StatusNew, "Zimbabwe", 1)
	c := lead("c", domain.StatusNew, "Zimbabwe", 1)

	sorted := Sort([]domain.Lead{a, b, c})
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestFilterIntersectionCommutes(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for iter := 0; iter < 50; iter++ {
		leads := randomLeads(r, 40)
		search := []string{"", "biz a", "BAKERY", "food", "zz"}[r.Intn(5)]
		country := []string{"", "Zimbabwe", "Canada"}[r.Intn(3)]

		direct := Filter(leads, country, search)
		countryFirst := FilterSearch(FilterCountry(leads, country), search)
		searchFirst := FilterCountry(FilterSearch(leads, search), country)

		require.Equal(t, direct, countryFirst)
		require.Equal(t, direct, searchFirst)
	}
}

func TestMatchesSearchCaseInsensitive(t *testing.T) {
	l := domain.Lead{BusinessName: "Acme Farms", Industry: "Bakery"}

	for _, q := range []string{"acme", "ACME", "fArMs", "bak", "BAKERY", ""} {
		assert.True(t, MatchesSearch(l, q), q)
	}
	assert.False(t, MatchesSearch(l, "tourism"))
}

func TestComputeStatsClosedIncludesRevamped(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.StatusClosed, "Zimbabwe", 1),
		lead("b", domain.StatusRevamped, "Zimbabwe", 2),
		lead("c", domain.StatusContacted, "Zimbabwe", 3),
		lead("d", domain.StatusNew, "Zimbabwe", 4),
		lead("e", domain.StatusClosed, "Canada", 5),
	}

	stats := ComputeStats(leads, "Zimbabwe")
	assert.Equal(t, Stats{Total: 4, Contacted: 1, Closed: 2}, stats)
}

func TestBuildStatsIgnoreSearch(t *testing.T) {
	leads := []domain.Lead{
		lead("Acme", domain.StatusClosed, "Zimbabwe", 1),
		lead("Zeta", domain.StatusContacted, "Zimbabwe", 2),
		lead("Maple", domain.StatusNew, "Canada", 3),
	}

	view := Build(leads, Query{Country: "Zimbabwe", Search: "acme"})

	require.Len(t, view.Items, 1)
	assert.Equal(t, "Acme", view.Items[0].BusinessName)
	assert.Equal(t, Stats{Total: 2, Contacted: 1, Closed: 1}, view.Stats)
}

func TestBuildStatusFilter(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.StatusWarm, "Zimbabwe", 1),
		lead("b", domain.StatusNew, "Zimbabwe", 2),
	}

	view := Build(leads, Query{Country: "Zimbabwe", Status: domain.StatusWarm})
	require.Len(t, view.Items, 1)
	assert.Equal(t, domain.StatusWarm, view.Items[0].Status)
	assert.Equal(t, 2, view.Stats.Total)
}

func TestFlags(t *testing.T) {
	got := Flags(domain.Lead{Notes: "  ", Evidence: []string{"x"}})
	assert.Equal(t, Indicators{HasEvidence: true}, got)
}
