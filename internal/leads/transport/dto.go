package transport

import (
	"time"

	"leadboard_backend/internal/leads/board"

	"github.com/google/uuid"
)

// Request DTOs

type ContactDTO struct {
	Type  string `json:"type" validate:"required,oneof=WhatsApp Phone Email Other"`
	Value string `json:"value" validate:"max=200"`
}

type CreateLeadRequest struct {
	BusinessName   string       `json:"businessName" validate:"required,max=200"`
	Industry       string       `json:"industry" validate:"required,industry"`
	CustomIndustry string       `json:"customIndustry" validate:"required_if=Industry Other,max=100"`
	Website        string       `json:"website" validate:"max=500"`
	Contacts       []ContactDTO `json:"contacts" validate:"max=10,dive"`
	Evidence       []string     `json:"evidence" validate:"max=50,dive,url"`
	RevampImages   []string     `json:"revampImages" validate:"max=50,dive,url"`
	Notes          string       `json:"notes" validate:"max=5000"`
	// Country comes from the board's active filter when omitted.
	Country string `json:"country" validate:"max=100"`
}

// UpdateLeadRequest is a partial update. Country, status and createdAt are
// deliberately absent.
type UpdateLeadRequest struct {
	BusinessName   *string       `json:"businessName,omitempty" validate:"omitempty,max=200"`
	Industry       *string       `json:"industry,omitempty" validate:"omitempty,industry"`
	CustomIndustry *string       `json:"customIndustry,omitempty" validate:"omitempty,max=100"`
	Website        *string       `json:"website,omitempty" validate:"omitempty,max=500"`
	Contacts       *[]ContactDTO `json:"contacts,omitempty" validate:"omitempty,max=10,dive"`
	Evidence       *[]string     `json:"evidence,omitempty" validate:"omitempty,max=50,dive,url"`
	RevampImages   *[]string     `json:"revampImages,omitempty" validate:"omitempty,max=50,dive,url"`
	Notes          *string       `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateLeadRequest) IsEmpty() bool {
	return r.BusinessName == nil && r.Industry == nil && r.CustomIndustry == nil && r.Website == nil &&
		r.Contacts == nil && r.Evidence == nil && r.RevampImages == nil && r.Notes == nil
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,leadstatus"`
}

type ListLeadsRequest struct {
	Country string `form:"country" validate:"max=100"`
	Search  string `form:"search" validate:"max=200"`
	Status  string `form:"status" validate:"omitempty,leadstatus"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID        `json:"id"`
	BusinessName   string           `json:"businessName"`
	Industry       string           `json:"industry"`
	IndustryTag    string           `json:"industryTag"`
	CustomIndustry string           `json:"customIndustry,omitempty"`
	Website        string           `json:"website"`
	Contacts       []ContactDTO     `json:"contacts"`
	Phone          string           `json:"phone"`
	Evidence       []string         `json:"evidence"`
	RevampImages   []string         `json:"revampImages"`
	Notes          string           `json:"notes"`
	Status         string           `json:"status"`
	Country        string           `json:"country"`
	CanRevamp      bool             `json:"canRevamp"`
	WhatsAppLink   string           `json:"whatsappLink,omitempty"`
	Indicators     board.Indicators `json:"indicators"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Stats board.Stats    `json:"stats"`
}

type ContactResponse struct {
	Lead LeadResponse `json:"lead"`
	// Link is empty when the lead has no phone number.
	Link string `json:"link"`
}

type StatusChangeResponse struct {
	ID        uuid.UUID  `json:"id"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type StatusHistoryResponse struct {
	Items []StatusChangeResponse `json:"items"`
}

type UploadResult struct {
	FileName string `json:"fileName"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

type UploadImagesResponse struct {
	Results []UploadResult `json:"results"`
}
