package editors

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// FlagReason is why a user flagged a review for moderation.
type FlagReason string

const (
	FlagSpam       FlagReason = "review_flag_reason_spam"
	FlagLanguage   FlagReason = "review_flag_reason_language"
	FlagBugSupport FlagReason = "review_flag_reason_bug_support"
	FlagOther      FlagReason = "review_flag_reason_other"
)

// FlagLabels maps flag reasons to their display labels.
var FlagLabels = map[FlagReason]string{
	FlagSpam:       "Spam or otherwise non-review content",
	FlagLanguage:   "Inappropriate language/dialog",
	FlagBugSupport: "Misplaced bug report or support request",
	FlagOther:      "Other (please specify)",
}

// Review is a user review of an add-on.
type Review struct {
	shared.BaseEntity
	AddonID      *uuid.UUID
	AddonName    string
	UserID       uuid.UUID
	UserName     string
	Title        string
	Body         string
	Rating       int
	EditorReview bool
	Flag         bool
	Flags        []ReviewFlag
}

// ReviewFlag is a moderation request raised against a review.
type ReviewFlag struct {
	ID        uuid.UUID  `json:"id"`
	ReviewID  uuid.UUID  `json:"review_id"`
	UserID    uuid.UUID  `json:"user_id"`
	UserName  string     `json:"user_name"`
	Flag      FlagReason `json:"flag"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
}

// ModerationAction is the decision an editor takes on a flagged review.
type ModerationAction string

const (
	ModerationKeep   ModerationAction = "keep"
	ModerationDelete ModerationAction = "delete"
	ModerationSkip   ModerationAction = "skip"
)

// IsValid reports whether the action is known
func (a ModerationAction) IsValid() bool {
	switch a {
	case ModerationKeep, ModerationDelete, ModerationSkip:
		return true
	}
	return false
}

// ModerationDecision applies one action to one flagged review.
type ModerationDecision struct {
	ReviewID uuid.UUID
	Action   ModerationAction
}

// LogAction returns the activity log action recorded for the decision,
// and false for decisions that change nothing.
func (d ModerationDecision) LogAction() (LogAction, bool) {
	switch d.Action {
	case ModerationKeep:
		return LogApproveReview, true
	case ModerationDelete:
		return LogDeleteReview, true
	}
	return 0, false
}
