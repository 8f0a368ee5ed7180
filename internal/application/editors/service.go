// Package editors implements the editorial review queues: dashboards,
// version queues, the review form and user review moderation.
package editors

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	homeReviewerLimit = 5
	homeEditorLimit   = 5
	homeEventLimit    = 6
	logPageSize       = 50
	queuePageSize     = 100
	moderatedPageSize = 20
	historyPageSize   = 100
)

// FlashStore keeps one-time messages for editors
type FlashStore interface {
	Add(ctx context.Context, userID, level, message string) error
	Drain(ctx context.Context, userID string) ([]session.Flash, error)
}

// Translator localizes labels and messages
type Translator interface {
	T(tag language.Tag, key string, args ...any) string
	Map(tag language.Tag, labels map[int]string) map[int]string
}

// Repositories groups the stores the editor tools read and write
type Repositories struct {
	Queue       editors.QueueRepository
	Addons      editors.AddonRepository
	Activity    editors.ActivityLogRepository
	Approvals   editors.ApprovalRepository
	EventLog    editors.EventLogRepository
	Reviews     editors.ReviewRepository
	Canned      editors.CannedResponseRepository
	SiteConfig  editors.SiteConfigRepository
	AppVersions editors.AppVersionRepository
	Writer      editors.ReviewWriter
}

// Service handles the editor tools
type Service struct {
	repos      Repositories
	flashes    FlashStore
	publisher  shared.EventPublisher
	translator Translator
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates the editors service
func NewService(repos Repositories, flashes FlashStore, publisher shared.EventPublisher, translator Translator, logger *zap.Logger) *Service {
	return &Service{
		repos:      repos,
		flashes:    flashes,
		publisher:  publisher,
		translator: translator,
		logger:     logger.Named("editors"),
		now:        time.Now,
	}
}

// Home builds the editors dashboard
func (s *Service) Home(ctx context.Context, actor Actor) (view *HomeView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "Home")
	defer func() { telemetry.EndSpan(span, err) }()

	total, err := s.repos.Approvals.TopReviewers(ctx, nil, homeReviewerLimit)
	if err != nil {
		return nil, err
	}
	monthStart := firstOfMonth(s.now())
	monthly, err := s.repos.Approvals.TopReviewers(ctx, &monthStart, homeReviewerLimit)
	if err != nil {
		return nil, err
	}
	added, err := s.repos.EventLog.NewEditors(ctx, homeEditorLimit)
	if err != nil {
		return nil, err
	}
	motd, err := s.repos.SiteConfig.Get(ctx, editors.MotdConfigKey)
	if err != nil {
		return nil, err
	}
	events, err := s.repos.Activity.Latest(ctx, editors.EditorEventActions, homeEventLimit)
	if err != nil {
		return nil, err
	}

	return &HomeView{
		ReviewsTotal:   total,
		ReviewsMonthly: monthly,
		NewEditors: lo.Map(added, func(e editors.EventLog, _ int) NewEditorRow {
			return NewEditorRow{UserID: e.ChangedUserID, UserName: e.ChangedUserName, CreatedAt: e.CreatedAt}
		}),
		Motd:     motd,
		EventLog: lo.Map(events, func(l editors.ActivityLog, _ int) ActivityRow { return toActivityRow(l) }),
		Flashes:  s.drainFlashes(ctx, actor),
	}, nil
}

// Motd returns the editors' message of the day
func (s *Service) Motd(ctx context.Context) (string, error) {
	return s.repos.SiteConfig.Get(ctx, editors.MotdConfigKey)
}

// SetMotd stores the editors' message of the day
func (s *Service) SetMotd(ctx context.Context, actor Actor, motd string) error {
	if err := s.repos.SiteConfig.Set(ctx, editors.MotdConfigKey, motd); err != nil {
		return err
	}
	s.logger.Info("editors motd updated", zap.String("user_id", actor.Editor.ID.String()))
	return nil
}

// QueueCounts returns the size of every queue tab
func (s *Service) QueueCounts(ctx context.Context) (editors.QueueCounts, error) {
	counts := editors.QueueCounts{}
	for _, q := range editors.VersionQueues {
		n, err := s.repos.Queue.Count(ctx, q, editors.QueueSearch{})
		if err != nil {
			return nil, err
		}
		counts[q] = n
	}
	moderated, err := s.repos.Reviews.CountModerated(ctx)
	if err != nil {
		return nil, err
	}
	counts[editors.QueueModerated] = moderated
	return counts, nil
}

func (s *Service) flash(ctx context.Context, actor Actor, level, key string) {
	msg := s.translator.T(actor.Lang, key)
	if err := s.flashes.Add(ctx, actor.Editor.ID.String(), level, msg); err != nil {
		s.logger.Warn("failed to store flash message", zap.Error(err))
	}
}

// drainFlashes never fails the page; a broken store just shows no messages.
func (s *Service) drainFlashes(ctx context.Context, actor Actor) []session.Flash {
	msgs, err := s.flashes.Drain(ctx, actor.Editor.ID.String())
	if err != nil {
		s.logger.Warn("failed to read flash messages", zap.Error(err))
		return []session.Flash{}
	}
	return msgs
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
