package repository

import (
	"context"
	"errors"
	"time"

	"leadboard_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("lead not found")

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error)
	// Delete removes the row and returns it so callers can clean up its images.
	Delete(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// StatusHistory records pipeline moves.
type StatusHistory interface {
	AddStatusChange(ctx context.Context, change StatusChange) error
	ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusChange, error)
}

// ImageReferences lists every image URL still attached to a lead.
type ImageReferences interface {
	ListImageURLs(ctx context.Context) ([]string, error)
}

// LeadsRepository is the full store used by the leads module.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	StatusHistory
	ImageReferences
}

// ListParams filters the list query. An empty country lists every lead.
type ListParams struct {
	Country string
}

// CreateLeadParams holds already-resolved values; no normalization happens here.
type CreateLeadParams struct {
	BusinessName string
	Industry     string
	Website      string
	Contacts     []domain.Contact
	Phone        string
	Evidence     []string
	RevampImages []string
	Notes        string
	Status       domain.Status
	Country      string
}

// UpdateLeadParams is a partial update: nil fields are left untouched.
// Country and created_at are not updatable.
type UpdateLeadParams struct {
	BusinessName *string
	Industry     *string
	Website      *string
	Contacts     *[]domain.Contact
	Phone        *string
	Evidence     *[]string
	RevampImages *[]string
	Notes        *string
	Status       *domain.Status
}

// IsEmpty reports whether no field is set.
func (p UpdateLeadParams) IsEmpty() bool {
	return p.BusinessName == nil && p.Industry == nil && p.Website == nil &&
		p.Contacts == nil && p.Phone == nil && p.Evidence == nil &&
		p.RevampImages == nil && p.Notes == nil && p.Status == nil
}

// StatusChange is one row of a lead's status timeline.
type StatusChange struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	OldStatus domain.Status
	NewStatus domain.Status
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilContacts(values []domain.Contact) []domain.Contact {
	if values == nil {
		return []domain.Contact{}
	}
	return values
}
