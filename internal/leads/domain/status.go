package domain

import (
	"strings"

	"leadboard_backend/platform/apperr"
)

// Status is a lead's position in the outreach pipeline.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusWarm      Status = "warm"
	StatusClosed    Status = "closed"
	StatusRevamped  Status = "revamped"
)

// MsgRevampNeedsImages is shown when a revamped transition is attempted
// without after-images.
const MsgRevampNeedsImages = "You cannot mark a lead as 'revamped' until you upload 'after' screenshots: edit the lead, add revamp images, save."

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusWarm:      {},
	StatusClosed:    {},
	StatusRevamped:  {},
}

// AllStatuses lists statuses in pipeline order.
func AllStatuses() []Status {
	return []Status{StatusNew, StatusContacted, StatusWarm, StatusClosed, StatusRevamped}
}

// IsKnownStatus reports whether s is one of the five pipeline statuses.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// ParseStatus accepts a status in any letter case.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, IsKnownStatus(s)
}

// CanTransition reports whether lead may move to target. Transitions are fully
// connected; the only gate is that revamped requires at least one after-image.
func CanTransition(lead Lead, target Status) bool {
	if !IsKnownStatus(target) {
		return false
	}
	if target == StatusRevamped {
		return len(lead.RevampImages) > 0
	}
	return true
}

// CheckTransition is CanTransition with a user-facing error.
func CheckTransition(lead Lead, target Status) error {
	if !IsKnownStatus(target) {
		return apperr.Validation("unknown status " + string(target))
	}
	if !CanTransition(lead, target) {
		return apperr.GuardViolation(MsgRevampNeedsImages)
	}
	return nil
}

// CheckRevampImagesKept rejects edits that would leave a revamped lead without
// after-images.
func CheckRevampImagesKept(current Status, revampImages []string) error {
	if current == StatusRevamped && len(revampImages) == 0 {
		return apperr.GuardViolation("A revamped lead must keep at least one 'after' screenshot. Move it to another status before removing them.")
	}
	return nil
}
