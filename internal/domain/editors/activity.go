package editors

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// LogAction identifies the kind of an activity log entry.
type LogAction int

const (
	LogApproveVersion     LogAction = 21
	LogRetainVersion      LogAction = 22
	LogEscalateVersion    LogAction = 23
	LogRequestVersion     LogAction = 24
	LogApproveReview      LogAction = 40
	LogDeleteReview       LogAction = 41
	LogPreliminaryVersion LogAction = 42
	LogRejectVersion      LogAction = 43
	LogRequestInformation LogAction = 44
	LogRequestSuperReview LogAction = 45
	LogCommentVersion     LogAction = 49
)

var logActionNames = map[LogAction]string{
	LogApproveVersion:     "Version approved",
	LogRetainVersion:      "Version retained",
	LogEscalateVersion:    "Escalated for admin review",
	LogRequestVersion:     "Version review requested",
	LogApproveReview:      "Review approved",
	LogDeleteReview:       "Review deleted",
	LogPreliminaryVersion: "Preliminary review granted",
	LogRejectVersion:      "Version rejected",
	LogRequestInformation: "More information requested",
	LogRequestSuperReview: "Super review requested",
	LogCommentVersion:     "Comment",
}

// String returns the action's display name
func (a LogAction) String() string {
	if name, ok := logActionNames[a]; ok {
		return name
	}
	return "Unknown action"
}

// EditorEventActions are the actions shown in the editors' event log.
var EditorEventActions = []LogAction{
	LogApproveVersion,
	LogRetainVersion,
	LogEscalateVersion,
	LogRequestVersion,
	LogApproveReview,
	LogDeleteReview,
	LogPreliminaryVersion,
	LogRejectVersion,
	LogRequestInformation,
	LogRequestSuperReview,
	LogCommentVersion,
}

// ReviewQueueActions are the actions listed in the review log.
var ReviewQueueActions = []LogAction{
	LogApproveVersion,
	LogPreliminaryVersion,
	LogRejectVersion,
	LogEscalateVersion,
}

// HistoryActions are the actions shown in a version's review history.
var HistoryActions = []LogAction{
	LogApproveVersion,
	LogPreliminaryVersion,
	LogRejectVersion,
	LogEscalateVersion,
	LogRequestInformation,
	LogRequestSuperReview,
	LogCommentVersion,
}

// IsEditorEvent reports whether the action belongs to the editor event log.
func (a LogAction) IsEditorEvent() bool {
	for _, e := range EditorEventActions {
		if e == a {
			return true
		}
	}
	return false
}

// ActivityDetails is the free-form payload stored with an activity entry.
type ActivityDetails struct {
	Comments    string     `json:"comments,omitempty"`
	ReviewType  ReviewType `json:"reviewtype,omitempty"`
	ReviewID    *uuid.UUID `json:"review_id,omitempty"`
	ReviewTitle string     `json:"review_title,omitempty"`
}

// ActivityLog is one entry of the add-on activity log.
type ActivityLog struct {
	ID        uuid.UUID
	Action    LogAction
	UserID    uuid.UUID
	UserName  string
	AddonID   *uuid.UUID
	AddonName string
	VersionID *uuid.UUID
	Version   string
	Details   ActivityDetails
	CreatedAt time.Time
}

// NewActivityLog creates a log entry for the given actor.
func NewActivityLog(action LogAction, actor Editor) *ActivityLog {
	return &ActivityLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    actor.ID,
		UserName:  actor.Name,
		CreatedAt: time.Now(),
	}
}

// ForVersion attaches the add-on and version the entry is about.
func (l *ActivityLog) ForVersion(addon *Addon, version *Version) *ActivityLog {
	l.AddonID = &addon.ID
	l.AddonName = addon.Name
	l.VersionID = &version.ID
	l.Version = version.Version
	return l
}

// Approval records a review decision for reviewer statistics.
type Approval struct {
	shared.BaseEntity
	UserID     uuid.UUID
	UserName   string
	AddonID    uuid.UUID
	ReviewType ReviewType
	Action     AddonStatus
	Comments   string
}

// ReviewerStat is one row of the reviewer leaderboard.
type ReviewerStat struct {
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	ApprovalCount int64     `json:"approval_count"`
}

// EventLog types and actions recorded by the admin tools.
const (
	EventTypeAdmin          = "admin"
	EventActionGroupAddUser = "group_addmember"
)

// EventLog is an administrative event, such as a user joining the editors group.
type EventLog struct {
	ID              uuid.UUID
	Type            string
	Action          string
	UserID          uuid.UUID
	ChangedUserID   uuid.UUID
	ChangedUserName string
	CreatedAt       time.Time
}

// Editor identifies the reviewer performing an action.
type Editor struct {
	ID   uuid.UUID
	Name string
}

// CannedResponse is a prepared review comment.
type CannedResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Response string    `json:"response"`
}

// MotdConfigKey is the site config key of the editors' message of the day.
const MotdConfigKey = "editors_review_motd"
