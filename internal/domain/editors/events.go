package editors

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Event types published by the editors context.
const (
	EventTypeReviewProcessed = "editors.review.processed"
	EventTypeReviewModerated = "editors.review.moderated"
)

// AggregateTypeVersion is the aggregate type of review events.
const AggregateTypeVersion = "Version"

// ReviewProcessedEvent is published after an editor's review is committed.
type ReviewProcessedEvent struct {
	shared.BaseDomainEvent
	AddonID    uuid.UUID    `json:"addon_id"`
	AddonName  string       `json:"addon_name"`
	VersionID  uuid.UUID    `json:"version_id"`
	Version    string       `json:"version"`
	ReviewType ReviewType   `json:"review_type"`
	Action     ReviewAction `json:"action"`
	EditorID   uuid.UUID    `json:"editor_id"`
	Comments   string       `json:"comments"`
}

// NewReviewProcessedEvent creates the event for a processed review.
func NewReviewProcessedEvent(addon *Addon, version *Version, t ReviewType, d ReviewDecision, editor Editor) *ReviewProcessedEvent {
	return &ReviewProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewProcessed, AggregateTypeVersion, version.ID.String()),
		AddonID:         addon.ID,
		AddonName:       addon.Name,
		VersionID:       version.ID,
		Version:         version.Version,
		ReviewType:      t,
		Action:          d.Action,
		EditorID:        editor.ID,
		Comments:        d.Comments,
	}
}

// ReviewModeratedEvent is published after flagged reviews were moderated.
type ReviewModeratedEvent struct {
	shared.BaseDomainEvent
	Kept     int       `json:"kept"`
	Deleted  int       `json:"deleted"`
	EditorID uuid.UUID `json:"editor_id"`
}

// NewReviewModeratedEvent creates the event for a moderation batch.
func NewReviewModeratedEvent(kept, deleted int, editor Editor) *ReviewModeratedEvent {
	return &ReviewModeratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewModerated, "Review", editor.ID.String()),
		Kept:            kept,
		Deleted:         deleted,
		EditorID:        editor.ID,
	}
}
