package transport

import (
	"leadboard_backend/internal/leads/board"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/repository"
)

func ToLeadResponse(lead domain.Lead) LeadResponse {
	tag, custom := domain.SplitIndustry(lead.Industry)

	contacts := make([]ContactDTO, len(lead.Contacts))
	for i, c := range lead.Contacts {
		contacts[i] = ContactDTO{Type: c.Type, Value: c.Value}
	}

	return LeadResponse{
		ID:             lead.ID,
		BusinessName:   lead.BusinessName,
		Industry:       lead.Industry,
		IndustryTag:    tag,
		CustomIndustry: custom,
		Website:        lead.Website,
		Contacts:       contacts,
		Phone:          lead.Phone,
		Evidence:       nonNil(lead.Evidence),
		RevampImages:   nonNil(lead.RevampImages),
		Notes:          lead.Notes,
		Status:         string(lead.Status),
		Country:        lead.Country,
		CanRevamp:      domain.CanTransition(lead, domain.StatusRevamped),
		WhatsAppLink:   domain.WhatsAppLink(lead.Phone),
		Indicators:     board.Flags(lead),
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func ToLeadListResponse(view board.View) LeadListResponse {
	items := make([]LeadResponse, len(view.Items))
	for i, lead := range view.Items {
		items[i] = ToLeadResponse(lead)
	}
	return LeadListResponse{Items: items, Stats: view.Stats}
}

func ToStatusHistoryResponse(changes []repository.StatusChange) StatusHistoryResponse {
	items := make([]StatusChangeResponse, len(changes))
	for i, c := range changes {
		items[i] = StatusChangeResponse{
			ID:        c.ID,
			OldStatus: string(c.OldStatus),
			NewStatus: string(c.NewStatus),
			ActorID:   c.ActorID,
			CreatedAt: c.CreatedAt,
		}
	}
	return StatusHistoryResponse{Items: items}
}

func ToContacts(dtos []ContactDTO) []domain.Contact {
	contacts := make([]domain.Contact, len(dtos))
	for i, d := range dtos {
		contacts[i] = domain.Contact{Type: d.Type, Value: d.Value}
	}
	return contacts
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
