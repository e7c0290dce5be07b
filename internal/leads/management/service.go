// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, and deleting leads, plus image uploads
// and change subscriptions.
package management

import (
	"context"
	"errors"
	"strings"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/board"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"
	"leadboard_backend/platform/phone"
	"leadboard_backend/platform/sanitize"
	"leadboard_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound       = "lead not found"
	msgBackendUnavailable = "the lead store is unavailable, try again"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]repository.StatusChange, error)
}

// ChangeHub is the in-process side of the change feed.
type ChangeHub interface {
	Notify()
	SubscribeFunc(fn func()) func()
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo           Repository
	bus            events.Bus
	hub            ChangeHub
	val            *validator.Validator
	log            *logger.Logger
	defaultCountry string

	storage storage.StorageService
	bucket  string
	metrics *metrics.Metrics
}

// New creates a new lead management service.
func New(repo Repository, bus events.Bus, hub ChangeHub, val *validator.Validator, log *logger.Logger, defaultCountry string) *Service {
	return &Service{
		repo:           repo,
		bus:            bus,
		hub:            hub,
		val:            val,
		log:            log,
		defaultCountry: defaultCountry,
	}
}

// SetStorage enables image uploads.
func (s *Service) SetStorage(store storage.StorageService, bucket string) {
	s.storage = store
	s.bucket = bucket
}

// SetMetrics enables upload counters.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// List fetches leads for a country (all countries when empty) in board order.
func (s *Service) List(ctx context.Context, country string) ([]domain.Lead, error) {
	leads, err := s.repo.List(ctx, repository.ListParams{Country: country})
	if err != nil {
		return nil, s.unavailable("list", err)
	}
	return board.Sort(leads), nil
}

// Board builds the list view for the given filters. Stats are computed over
// the whole country set, so the search never changes them.
func (s *Service) Board(ctx context.Context, q board.Query) (board.View, error) {
	leads, err := s.repo.List(ctx, repository.ListParams{Country: q.Country})
	if err != nil {
		return board.View{}, s.unavailable("list", err)
	}
	return board.Build(leads, q), nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, s.mapRepoError("get", err)
	}
	return lead, nil
}

// StatusHistory lists the status timeline of a lead, newest first.
func (s *Service) StatusHistory(ctx context.Context, id uuid.UUID) ([]repository.StatusChange, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, s.unavailable("history", err)
	}
	return items, nil
}

// Create stores a new lead with status new.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (domain.Lead, error) {
	if strings.TrimSpace(req.Country) == "" {
		req.Country = s.defaultCountry
	}
	if err := s.validate(req); err != nil {
		return domain.Lead{}, err
	}

	name := sanitize.Text(req.BusinessName)
	if name == "" {
		return domain.Lead{}, apperr.Validation("business name is required")
	}
	industry := domain.ResolveIndustry(req.Industry, sanitize.Text(req.CustomIndustry))
	if industry == "" {
		return domain.Lead{}, apperr.Validation("custom industry is required when industry is Other")
	}
	country := strings.TrimSpace(req.Country)
	contacts := normalizeContacts(transport.ToContacts(req.Contacts), country)

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		BusinessName: name,
		Industry:     industry,
		Website:      domain.NormalizeWebsite(req.Website),
		Contacts:     contacts,
		Phone:        domain.PrimaryPhone(contacts),
		Evidence:     req.Evidence,
		RevampImages: req.RevampImages,
		Notes:        sanitize.Notes(req.Notes),
		Status:       domain.StatusNew,
		Country:      country,
	})
	if err != nil {
		return domain.Lead{}, s.unavailable("create", err)
	}

	s.changed()
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		BusinessName: lead.BusinessName,
		Country:      lead.Country,
	})
	return lead, nil
}

// Update applies a partial edit. Only fields present in the request are
// written; country, status and createdAt never are.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (domain.Lead, error) {
	if err := s.validate(req); err != nil {
		return domain.Lead{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, s.mapRepoError("update", err)
	}
	if req.IsEmpty() {
		return current, nil
	}

	params, fields, err := buildUpdateParams(current, req)
	if err != nil {
		return domain.Lead{}, err
	}
	if params.IsEmpty() {
		return current, nil
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return domain.Lead{}, s.mapRepoError("update", err)
	}

	s.changed()
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Fields:    fields,
	})
	return lead, nil
}

// Delete hard-deletes a lead. A missing id is reported as NotFound; callers
// that want idempotent deletes treat that as success.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	lead, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.mapRepoError("delete", err)
	}

	images := make([]string, 0, len(lead.Evidence)+len(lead.RevampImages))
	images = append(images, lead.Evidence...)
	images = append(images, lead.RevampImages...)

	s.changed()
	s.bus.Publish(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		ImageURLs: images,
	})
	return nil
}

// SubscribeToChanges registers fn to be called after any lead change. The
// callback carries no payload; subscribers re-list. Unsubscribe is idempotent.
func (s *Service) SubscribeToChanges(fn func()) func() {
	return s.hub.SubscribeFunc(fn)
}

func buildUpdateParams(current domain.Lead, req transport.UpdateLeadRequest) (repository.UpdateLeadParams, []string, error) {
	var params repository.UpdateLeadParams
	var fields []string

	if req.BusinessName != nil {
		name := sanitize.Text(*req.BusinessName)
		if name == "" {
			return params, nil, apperr.Validation("business name is required")
		}
		params.BusinessName = &name
		fields = append(fields, "businessName")
	}

	if req.Industry != nil || req.CustomIndustry != nil {
		tag, custom := domain.SplitIndustry(current.Industry)
		if req.Industry != nil {
			tag = *req.Industry
			custom = ""
		} else if tag != domain.IndustryOther {
			return params, nil, apperr.Validation("custom industry requires industry Other")
		}
		if req.CustomIndustry != nil {
			custom = *req.CustomIndustry
		}
		if tag == domain.IndustryOther || req.Industry != nil {
			industry := domain.ResolveIndustry(tag, sanitize.Text(custom))
			if industry == "" {
				return params, nil, apperr.Validation("custom industry is required when industry is Other")
			}
			params.Industry = &industry
			fields = append(fields, "industry")
		}
	}

	if req.Website != nil {
		website := domain.NormalizeWebsite(*req.Website)
		params.Website = &website
		fields = append(fields, "website")
	}

	if req.Contacts != nil {
		contacts := normalizeContacts(transport.ToContacts(*req.Contacts), current.Country)
		primary := domain.PrimaryPhone(contacts)
		params.Contacts = &contacts
		params.Phone = &primary
		fields = append(fields, "contacts")
	}

	if req.Evidence != nil {
		evidence := append([]string{}, (*req.Evidence)...)
		params.Evidence = &evidence
		fields = append(fields, "evidence")
	}

	if req.RevampImages != nil {
		if err := domain.CheckRevampImagesKept(current.Status, *req.RevampImages); err != nil {
			return params, nil, err
		}
		revamp := append([]string{}, (*req.RevampImages)...)
		params.RevampImages = &revamp
		fields = append(fields, "revampImages")
	}

	if req.Notes != nil {
		notes := sanitize.Notes(*req.Notes)
		params.Notes = &notes
		fields = append(fields, "notes")
	}

	return params, fields, nil
}

// normalizeContacts trims values and formats dialable numbers as E.164 for the
// lead's country. Unparseable numbers are kept as typed.
func normalizeContacts(contacts []domain.Contact, country string) []domain.Contact {
	region := phone.RegionForCountry(country)
	out := make([]domain.Contact, len(contacts))
	for i, c := range contacts {
		value := strings.TrimSpace(c.Value)
		if c.IsDialable() {
			value = phone.NormalizeE164(value, region)
		}
		out[i] = domain.Contact{Type: c.Type, Value: value}
	}
	return out
}

func (s *Service) validate(req interface{}) error {
	if err := s.val.Struct(req); err != nil {
		if details, ok := validator.FieldErrors(err); ok {
			return apperr.Validation("validation failed").WithDetails(details)
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

func (s *Service) changed() {
	if s.hub != nil {
		s.hub.Notify()
	}
}

func (s *Service) mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound).WithOp(op)
	}
	return s.unavailable(op, err)
}

func (s *Service) unavailable(op string, err error) error {
	s.log.DatabaseError("leads."+op, err)
	return apperr.Wrap(apperr.KindUnavailable, msgBackendUnavailable, err).WithOp(op)
}
