// Package lifecycle moves leads through the outreach pipeline. It enforces the
// transition guard before any write, serializes concurrent changes per lead and
// records a status timeline.
package lifecycle

import (
	"context"
	"errors"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"

	"github.com/google/uuid"
)

const msgTransitionInFlight = "a status change for this lead is already in progress"

// Repository is the subset of the lead store the engine needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (domain.Lead, error)
	AddStatusChange(ctx context.Context, change repository.StatusChange) error
}

// ChangeNotifier signals subscribers that the lead table changed.
type ChangeNotifier interface {
	Notify()
}

// Engine applies status transitions.
type Engine struct {
	repo     Repository
	guard    InFlightGuard
	bus      events.Bus
	notifier ChangeNotifier
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates an engine. A nil guard falls back to a process-local one.
func New(repo Repository, guard InFlightGuard, bus events.Bus, notifier ChangeNotifier, log *logger.Logger) *Engine {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &Engine{repo: repo, guard: guard, bus: bus, notifier: notifier, log: log}
}

// SetMetrics enables transition counters.
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Transition moves a lead to target. The guard is evaluated against the
// stored lead before any write; a rejected transition leaves the lead
// untouched. Moving to the current status is a no-op.
func (e *Engine) Transition(ctx context.Context, id uuid.UUID, target domain.Status, actorID *uuid.UUID) (domain.Lead, error) {
	if !domain.IsKnownStatus(target) {
		return domain.Lead{}, apperr.Validation("unknown status " + string(target))
	}

	release, ok, err := e.guard.Acquire(ctx, id)
	if err != nil {
		return domain.Lead{}, apperr.Unavailable("could not lock lead for status change", err)
	}
	if !ok {
		return domain.Lead{}, apperr.Conflict(msgTransitionInFlight)
	}
	defer release()

	lead, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, mapRepoError(err)
	}

	if err := domain.CheckTransition(lead, target); err != nil {
		e.log.WithContext(ctx).LeadTransition(id.String(), string(lead.Status), string(target), err)
		if e.metrics != nil && apperr.Is(err, apperr.KindGuardViolation) {
			e.metrics.GuardViolations.Inc()
		}
		return domain.Lead{}, err
	}

	if lead.Status == target {
		return lead, nil
	}

	updated, err := e.repo.Update(ctx, id, repository.UpdateLeadParams{Status: &target})
	if err != nil {
		return domain.Lead{}, mapRepoError(err)
	}

	if err := e.repo.AddStatusChange(ctx, repository.StatusChange{
		LeadID:    id,
		OldStatus: lead.Status,
		NewStatus: target,
		ActorID:   actorID,
	}); err != nil {
		e.log.Error("failed to record status history", "leadId", id, "error", err)
	}

	e.log.WithContext(ctx).LeadTransition(id.String(), string(lead.Status), string(target), nil)
	if e.metrics != nil {
		e.metrics.StatusTransitions.WithLabelValues(string(target)).Inc()
	}
	if e.notifier != nil {
		e.notifier.Notify()
	}
	e.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		OldStatus: string(lead.Status),
		NewStatus: string(target),
		ActorID:   actorID,
	})

	return updated, nil
}

// MarkContactedAndOpenExternalLink is the explicit "reach out" action: it
// moves the lead to contacted and returns the WhatsApp link for its phone.
// The link is empty when the lead has no phone number.
func (e *Engine) MarkContactedAndOpenExternalLink(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (domain.Lead, string, error) {
	lead, err := e.Transition(ctx, id, domain.StatusContacted, actorID)
	if err != nil {
		return domain.Lead{}, "", err
	}
	return lead, domain.WhatsAppLink(lead.Phone), nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return apperr.Unavailable("the lead store is unavailable, try again", err)
}
