package editors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// QueueRepository reads the version review queues.
type QueueRepository interface {
	// List returns one page of the queue in the given order.
	List(ctx context.Context, queue QueueType, search QueueSearch, sort QueueSort, page shared.PageRequest) ([]QueueRow, error)
	// Count returns the number of rows matching the search.
	Count(ctx context.Context, queue QueueType, search QueueSearch) (int64, error)
}

// AddonRepository loads add-ons and versions for reviewing.
type AddonRepository interface {
	FindAddon(ctx context.Context, id uuid.UUID) (*Addon, error)
	// FindVersion loads a version with its files and application support.
	FindVersion(ctx context.Context, id uuid.UUID) (*Version, error)
	IsAuthor(ctx context.Context, addonID, userID uuid.UUID) (bool, error)
}

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	Actions []LogAction
	Start   *time.Time
	End     *time.Time
	AddonID *uuid.UUID
}

// ActivityLogRepository stores the add-on activity log.
type ActivityLogRepository interface {
	// List returns entries newest first.
	List(ctx context.Context, filter ActivityFilter, page shared.PageRequest) ([]ActivityLog, int64, error)
	// FindByID returns the entry when its action is one of actions.
	FindByID(ctx context.Context, id uuid.UUID, actions []LogAction) (*ActivityLog, error)
	Latest(ctx context.Context, actions []LogAction, limit int) ([]ActivityLog, error)
}

// ApprovalRepository aggregates review approvals.
type ApprovalRepository interface {
	// TopReviewers ranks reviewers by approvals created at or after since.
	// A nil since counts all approvals.
	TopReviewers(ctx context.Context, since *time.Time, limit int) ([]ReviewerStat, error)
}

// EventLogRepository reads administrative events.
type EventLogRepository interface {
	NewEditors(ctx context.Context, limit int) ([]EventLog, error)
}

// ReviewRepository reads user reviews awaiting moderation.
type ReviewRepository interface {
	// ListModerated returns flagged reviews of existing add-ons, oldest flag first.
	ListModerated(ctx context.Context, page shared.PageRequest) ([]Review, int64, error)
	CountModerated(ctx context.Context) (int64, error)
	// ListFlaggedForAddon returns reviews of the add-on with the flag bit set.
	ListFlaggedForAddon(ctx context.Context, addonID uuid.UUID) ([]Review, error)
}

// CannedResponseRepository lists prepared review comments.
type CannedResponseRepository interface {
	FindAll(ctx context.Context) ([]CannedResponse, error)
}

// SiteConfigRepository reads and writes site-wide settings.
type SiteConfigRepository interface {
	// Get returns an empty string for unknown keys.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// AppVersionRepository lists known application versions.
type AppVersionRepository interface {
	ListForApplication(ctx context.Context, applicationID int) ([]AppVersion, error)
}

// ReviewChange is everything a processed review writes.
type ReviewChange struct {
	AddonID  uuid.UUID
	Outcome  ReviewOutcome
	Log      *ActivityLog
	Approval *Approval
}

// ModerationChange is everything a moderation batch writes.
type ModerationChange struct {
	Decisions []ModerationDecision
	Logs      []*ActivityLog
}

// ReviewWriter applies review and moderation changes atomically.
type ReviewWriter interface {
	ApplyReview(ctx context.Context, change ReviewChange) error
	ApplyModeration(ctx context.Context, change ModerationChange) error
}
