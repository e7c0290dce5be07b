package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRepo struct {
	*repository.MemoryStore
	updates atomic.Int32
	getHook func()
	getErr  error
}

func (s *spyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	if s.getHook != nil {
		s.getHook()
	}
	if s.getErr != nil {
		return domain.Lead{}, s.getErr
	}
	return s.MemoryStore.GetByID(ctx, id)
}

func (s *spyRepo) Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (domain.Lead, error) {
	s.updates.Add(1)
	return s.MemoryStore.Update(ctx, id, params)
}

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) Notify() { c.n.Add(1) }

func seed(t *testing.T, store *repository.MemoryStore, status domain.Status, revamp []string) domain.Lead {
	t.Helper()
	lead, err := store.Create(context.Background(), repository.CreateLeadParams{
		BusinessName: "Acme",
		Industry:     domain.IndustryFood,
		Contacts:     []domain.Contact{{Type: domain.ContactWhatsApp, Value: "+263 77 123 4567"}},
		Phone:        "+263 77 123 4567",
		RevampImages: revamp,
		Status:       status,
		Country:      "Zimbabwe",
	})
	require.NoError(t, err)
	return lead
}

func newEngine(repo Repository, guard InFlightGuard) (*Engine, *countingNotifier) {
	notifier := &countingNotifier{}
	return New(repo, guard, events.NewInMemoryBus(logger.NewDiscard()), notifier, logger.NewDiscard()), notifier
}

func TestRevampWithoutImagesIsBlockedBeforeAnyWrite(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	lead := seed(t, repo.MemoryStore, domain.StatusClosed, nil)
	engine, notifier := newEngine(repo, nil)
	m := metrics.New(prometheus.NewRegistry())
	engine.SetMetrics(m)

	_, err := engine.Transition(context.Background(), lead.ID, domain.StatusRevamped, nil)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindGuardViolation))
	assert.Equal(t, domain.MsgRevampNeedsImages, err.Error())
	assert.Equal(t, int32(0), repo.updates.Load(), "no update call may be made")
	assert.Equal(t, int32(0), notifier.n.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GuardViolations))

	stored, err := repo.MemoryStore.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, stored.Status)
}

func TestRevampWithImagesSucceedsAndRecordsHistory(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	lead := seed(t, repo.MemoryStore, domain.StatusClosed, []string{"https://cdn.example.com/evidence/after.png"})
	engine, notifier := newEngine(repo, nil)
	actor := uuid.New()

	updated, err := engine.Transition(context.Background(), lead.ID, domain.StatusRevamped, &actor)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRevamped, updated.Status)
	assert.Equal(t, lead.BusinessName, updated.BusinessName)
	assert.Equal(t, int32(1), repo.updates.Load())
	assert.Equal(t, int32(1), notifier.n.Load())

	history, err := repo.ListStatusHistory(context.Background(), lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusClosed, history[0].OldStatus)
	assert.Equal(t, domain.StatusRevamped, history[0].NewStatus)
	assert.Equal(t, &actor, history[0].ActorID)
}

func TestTransitionToSameStatusIsNoop(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	lead := seed(t, repo.MemoryStore, domain.StatusWarm, nil)
	engine, _ := newEngine(repo, nil)

	got, err := engine.Transition(context.Background(), lead.ID, domain.StatusWarm, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWarm, got.Status)
	assert.Equal(t, int32(0), repo.updates.Load())
}

func TestTransitionErrors(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	engine, _ := newEngine(repo, nil)
	ctx := context.Background()

	_, err := engine.Transition(ctx, uuid.New(), domain.StatusWarm, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = engine.Transition(ctx, uuid.New(), domain.Status("lost"), nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	repo.getErr = errors.New("connection reset")
	_, err = engine.Transition(ctx, uuid.New(), domain.StatusWarm, nil)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestConcurrentTransitionOnSameLeadConflicts(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	lead := seed(t, repo.MemoryStore, domain.StatusNew, nil)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	var first atomic.Bool
	repo.getHook = func() {
		if first.CompareAndSwap(false, true) {
			close(entered)
			<-proceed
		}
	}
	engine, _ := newEngine(repo, NewMemoryGuard())

	done := make(chan error, 1)
	go func() {
		_, err := engine.Transition(context.Background(), lead.ID, domain.StatusContacted, nil)
		done <- err
	}()

	<-entered
	_, err := engine.Transition(context.Background(), lead.ID, domain.StatusWarm, nil)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	close(proceed)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first transition did not finish")
	}

	// The guard is released afterwards.
	_, err = engine.Transition(context.Background(), lead.ID, domain.StatusWarm, nil)
	require.NoError(t, err)
}

func TestMarkContactedReturnsWhatsAppLink(t *testing.T) {
	repo := &spyRepo{MemoryStore: repository.NewMemoryStore()}
	lead := seed(t, repo.MemoryStore, domain.StatusNew, nil)
	engine, _ := newEngine(repo, nil)

	updated, link, err := engine.MarkContactedAndOpenExternalLink(context.Background(), lead.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContacted, updated.Status)
	assert.Equal(t, "https://wa.me/263771234567", link)
}

func TestMarkContactedWithoutPhoneHasNoLink(t *testing.T) {
	store := repository.NewMemoryStore()
	lead, err := store.Create(context.Background(), repository.CreateLeadParams{BusinessName: "Quiet", Status: domain.StatusNew, Country: "Canada"})
	require.NoError(t, err)
	engine, _ := newEngine(store, nil)

	_, link, err := engine.MarkContactedAndOpenExternalLink(context.Background(), lead.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, link)
}
