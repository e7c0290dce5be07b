// Package domain holds the lead entity and its lifecycle rules.
// Everything here is pure and has no I/O.
package domain

import (
	"slices"
	"strings"
	"time"

	"leadboard_backend/platform/phone"

	"github.com/google/uuid"
)

// Contact types offered by the board.
const (
	ContactWhatsApp = "WhatsApp"
	ContactPhone    = "Phone"
	ContactEmail    = "Email"
	ContactOther    = "Other"
)

// Contact is one way of reaching a lead.
type Contact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IsDialable reports whether the contact value is a phone number.
func (c Contact) IsDialable() bool {
	return c.Type == ContactWhatsApp || c.Type == ContactPhone
}

// Lead is a prospective customer record.
type Lead struct {
	ID           uuid.UUID
	BusinessName string
	Industry     string
	Website      string
	Contacts     []Contact
	Phone        string
	Evidence     []string
	RevampImages []string
	Notes        string
	Status       Status
	Country      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy so callers can't alias slices.
func (l Lead) Clone() Lead {
	l.Contacts = slices.Clone(l.Contacts)
	l.Evidence = slices.Clone(l.Evidence)
	l.RevampImages = slices.Clone(l.RevampImages)
	return l
}

// PrimaryPhone mirrors the first contact value into the legacy phone column.
func PrimaryPhone(contacts []Contact) string {
	if len(contacts) == 0 {
		return ""
	}
	return contacts[0].Value
}

// NormalizeWebsite trims the input and prefixes https:// unless it already
// starts with "http".
func NormalizeWebsite(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "http") {
		return trimmed
	}
	return "https://" + trimmed
}

// WhatsAppLink builds the wa.me deep link for a phone number. Only digits are
// kept. Returns "" when there are none.
func WhatsAppLink(phoneNumber string) string {
	digits := phone.Digits(phoneNumber)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}
