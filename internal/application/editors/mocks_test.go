package editors

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type MockQueueRepository struct{ mock.Mock }

func (m *MockQueueRepository) List(ctx context.Context, queue editors.QueueType, search editors.QueueSearch, sort editors.QueueSort, page shared.PageRequest) ([]editors.QueueRow, error) {
	args := m.Called(ctx, queue, search, sort, page)
	return args.Get(0).([]editors.QueueRow), args.Error(1)
}

func (m *MockQueueRepository) Count(ctx context.Context, queue editors.QueueType, search editors.QueueSearch) (int64, error) {
	args := m.Called(ctx, queue, search)
	return args.Get(0).(int64), args.Error(1)
}

type MockAddonRepository struct{ mock.Mock }

func (m *MockAddonRepository) FindAddon(ctx context.Context, id uuid.UUID) (*editors.Addon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*editors.Addon), args.Error(1)
}

func (m *MockAddonRepository) FindVersion(ctx context.Context, id uuid.UUID) (*editors.Version, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*editors.Version), args.Error(1)
}

func (m *MockAddonRepository) IsAuthor(ctx context.Context, addonID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, addonID, userID)
	return args.Bool(0), args.Error(1)
}

type MockActivityLogRepository struct{ mock.Mock }

func (m *MockActivityLogRepository) List(ctx context.Context, filter editors.ActivityFilter, page shared.PageRequest) ([]editors.ActivityLog, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]editors.ActivityLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityLogRepository) FindByID(ctx context.Context, id uuid.UUID, actions []editors.LogAction) (*editors.ActivityLog, error) {
	args := m.Called(ctx, id, actions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*editors.ActivityLog), args.Error(1)
}

func (m *MockActivityLogRepository) Latest(ctx context.Context, actions []editors.LogAction, limit int) ([]editors.ActivityLog, error) {
	args := m.Called(ctx, actions, limit)
	return args.Get(0).([]editors.ActivityLog), args.Error(1)
}

type MockApprovalRepository struct{ mock.Mock }

func (m *MockApprovalRepository) TopReviewers(ctx context.Context, since *time.Time, limit int) ([]editors.ReviewerStat, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]editors.ReviewerStat), args.Error(1)
}

type MockEventLogRepository struct{ mock.Mock }

func (m *MockEventLogRepository) NewEditors(ctx context.Context, limit int) ([]editors.EventLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]editors.EventLog), args.Error(1)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) ListModerated(ctx context.Context, page shared.PageRequest) ([]editors.Review, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]editors.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) CountModerated(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) ListFlaggedForAddon(ctx context.Context, addonID uuid.UUID) ([]editors.Review, error) {
	args := m.Called(ctx, addonID)
	return args.Get(0).([]editors.Review), args.Error(1)
}

type MockCannedResponseRepository struct{ mock.Mock }

func (m *MockCannedResponseRepository) FindAll(ctx context.Context) ([]editors.CannedResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]editors.CannedResponse), args.Error(1)
}

type MockSiteConfigRepository struct{ mock.Mock }

func (m *MockSiteConfigRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSiteConfigRepository) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

type MockAppVersionRepository struct{ mock.Mock }

func (m *MockAppVersionRepository) ListForApplication(ctx context.Context, applicationID int) ([]editors.AppVersion, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).([]editors.AppVersion), args.Error(1)
}

type MockReviewWriter struct{ mock.Mock }

func (m *MockReviewWriter) ApplyReview(ctx context.Context, change editors.ReviewChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockReviewWriter) ApplyModeration(ctx context.Context, change editors.ModerationChange) error {
	return m.Called(ctx, change).Error(0)
}

// recordingPublisher keeps published events in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type serviceFixture struct {
	svc        *Service
	queue      *MockQueueRepository
	addons     *MockAddonRepository
	activity   *MockActivityLogRepository
	approvals  *MockApprovalRepository
	eventLog   *MockEventLogRepository
	reviews    *MockReviewRepository
	canned     *MockCannedResponseRepository
	siteConfig *MockSiteConfigRepository
	appVers    *MockAppVersionRepository
	writer     *MockReviewWriter
	flashes    *session.FlashStore
	publisher  *recordingPublisher
	actor      Actor
	now        time.Time
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	f := &serviceFixture{
		queue:      new(MockQueueRepository),
		addons:     new(MockAddonRepository),
		activity:   new(MockActivityLogRepository),
		approvals:  new(MockApprovalRepository),
		eventLog:   new(MockEventLogRepository),
		reviews:    new(MockReviewRepository),
		canned:     new(MockCannedResponseRepository),
		siteConfig: new(MockSiteConfigRepository),
		appVers:    new(MockAppVersionRepository),
		writer:     new(MockReviewWriter),
		flashes:    session.NewFlashStore(store, time.Hour),
		publisher:  &recordingPublisher{},
		actor:      Actor{Editor: editors.Editor{ID: uuid.New(), Name: "editor"}, Lang: language.English},
		now:        time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(Repositories{
		Queue:       f.queue,
		Addons:      f.addons,
		Activity:    f.activity,
		Approvals:   f.approvals,
		EventLog:    f.eventLog,
		Reviews:     f.reviews,
		Canned:      f.canned,
		SiteConfig:  f.siteConfig,
		AppVersions: f.appVers,
		Writer:      f.writer,
	}, f.flashes, f.publisher, i18n.NewTranslator(), zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

// expectCounts stubs the unfiltered queue counts
func (f *serviceFixture) expectCounts(pending, nominated, prelim, moderated int64) {
	f.queue.On("Count", mock.Anything, editors.QueuePending, editors.QueueSearch{}).Return(pending, nil)
	f.queue.On("Count", mock.Anything, editors.QueueNominated, editors.QueueSearch{}).Return(nominated, nil)
	f.queue.On("Count", mock.Anything, editors.QueuePrelim, editors.QueueSearch{}).Return(prelim, nil)
	f.reviews.On("CountModerated", mock.Anything).Return(moderated, nil)
}
