package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"leadboard_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// MemoryStore is an in-process LeadsRepository with the same semantics as the
// Postgres store. It backs unit tests.
type MemoryStore struct {
	mu      sync.RWMutex
	leads   map[uuid.UUID]domain.Lead
	history map[uuid.UUID][]StatusChange
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:   make(map[uuid.UUID]domain.Lead),
		history: make(map[uuid.UUID][]StatusChange),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Used by tests that need ordered timestamps.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Create(_ context.Context, params CreateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	lead := domain.Lead{
		ID:           uuid.New(),
		BusinessName: params.BusinessName,
		Industry:     params.Industry,
		Website:      params.Website,
		Contacts:     slices.Clone(nonNilContacts(params.Contacts)),
		Phone:        params.Phone,
		Evidence:     slices.Clone(nonNilStrings(params.Evidence)),
		RevampImages: slices.Clone(nonNilStrings(params.RevampImages)),
		Notes:        params.Notes,
		Status:       params.Status,
		Country:      params.Country,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	m.leads[lead.ID] = lead
	return lead.Clone(), nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	return lead.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, params ListParams) ([]domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		if params.Country != "" && lead.Country != params.Country {
			continue
		}
		items = append(items, lead.Clone())
	}
	slices.SortStableFunc(items, func(a, b domain.Lead) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

func (m *MemoryStore) Update(_ context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	if params.IsEmpty() {
		return lead.Clone(), nil
	}

	if params.BusinessName != nil {
		lead.BusinessName = *params.BusinessName
	}
	if params.Industry != nil {
		lead.Industry = *params.Industry
	}
	if params.Website != nil {
		lead.Website = *params.Website
	}
	if params.Contacts != nil {
		lead.Contacts = slices.Clone(nonNilContacts(*params.Contacts))
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	if params.Evidence != nil {
		lead.Evidence = slices.Clone(nonNilStrings(*params.Evidence))
	}
	if params.RevampImages != nil {
		lead.RevampImages = slices.Clone(nonNilStrings(*params.RevampImages))
	}
	if params.Notes != nil {
		lead.Notes = *params.Notes
	}
	if params.Status != nil {
		lead.Status = *params.Status
	}
	lead.UpdatedAt = m.now()

	m.leads[id] = lead
	return lead.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	delete(m.leads, id)
	delete(m.history, id)
	return lead, nil
}

func (m *MemoryStore) AddStatusChange(_ context.Context, change StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leads[change.LeadID]; !ok {
		return ErrNotFound
	}
	change.ID = uuid.New()
	change.CreatedAt = m.now()
	m.history[change.LeadID] = append(m.history[change.LeadID], change)
	return nil
}

func (m *MemoryStore) ListStatusHistory(_ context.Context, leadID uuid.UUID) ([]StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.history[leadID]
	items := make([]StatusChange, len(entries))
	for i, entry := range entries {
		items[len(entries)-1-i] = entry
	}
	return items, nil
}

func (m *MemoryStore) ListImageURLs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	urls := make([]string, 0)
	for _, lead := range m.leads {
		for _, url := range append(slices.Clone(lead.Evidence), lead.RevampImages...) {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls, nil
}

var _ LeadsRepository = (*MemoryStore)(nil)
