package editors

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"golang.org/x/text/language"
)

// Actor is the editor performing a request, with the language labels and
// flash messages are rendered in.
type Actor struct {
	Editor editors.Editor
	Lang   language.Tag
}

// ActivityRow is an activity log entry as listed in the event and review logs
type ActivityRow struct {
	ID         uuid.UUID          `json:"id"`
	Action     int                `json:"action"`
	ActionName string             `json:"action_name"`
	UserID     uuid.UUID          `json:"user_id"`
	UserName   string             `json:"user_name"`
	AddonID    *uuid.UUID         `json:"addon_id,omitempty"`
	AddonName  string             `json:"addon_name,omitempty"`
	VersionID  *uuid.UUID         `json:"version_id,omitempty"`
	Version    string             `json:"version,omitempty"`
	Comments   string             `json:"comments,omitempty"`
	ReviewType editors.ReviewType `json:"review_type,omitempty"`
	Label      string             `json:"label,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func toActivityRow(l editors.ActivityLog) ActivityRow {
	return ActivityRow{
		ID:         l.ID,
		Action:     int(l.Action),
		ActionName: l.Action.String(),
		UserID:     l.UserID,
		UserName:   l.UserName,
		AddonID:    l.AddonID,
		AddonName:  l.AddonName,
		VersionID:  l.VersionID,
		Version:    l.Version,
		Comments:   l.Details.Comments,
		ReviewType: l.Details.ReviewType,
		CreatedAt:  l.CreatedAt,
	}
}

// NewEditorRow is one recent addition to the editors group
type NewEditorRow struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// HomeView is the editors dashboard
type HomeView struct {
	ReviewsTotal   []editors.ReviewerStat `json:"reviews_total"`
	ReviewsMonthly []editors.ReviewerStat `json:"reviews_monthly"`
	NewEditors     []NewEditorRow         `json:"new_editors"`
	Motd           string                 `json:"motd"`
	EventLog       []ActivityRow          `json:"eventlog"`
	Flashes        []session.Flash        `json:"messages"`
}

// DateRangeForm filters the event and review logs by creation date.
// Dates use the YYYY-MM-DD form; end is exclusive.
type DateRangeForm struct {
	Start string `form:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `form:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}

// EventLogForm is the event log filter form
type EventLogForm struct {
	DateRangeForm
	Filter string `form:"filter" json:"filter" validate:"omitempty,number"`
}

// LogView is a page of the event or review log
type LogView struct {
	Form       any                           `json:"form"`
	FormErrors editors.FieldErrors           `json:"form_errors,omitempty"`
	Page       shared.Paginated[ActivityRow] `json:"pager"`
	Labels     map[string]map[int]string     `json:"labels,omitempty"`
}

// QueueSearchForm is the version queue search form
type QueueSearchForm struct {
	TextQuery       string   `form:"text_query" json:"text_query" validate:"max=100"`
	AdminReview     string   `form:"admin_review" json:"admin_review" validate:"omitempty,oneof=0 1 true false"`
	ApplicationID   string   `form:"application_id" json:"application_id" validate:"omitempty,number"`
	MaxVersion      string   `form:"max_version" json:"max_version" validate:"max=255"`
	WaitingTimeDays string   `form:"waiting_time_days" json:"waiting_time_days"`
	AddonTypeIDs    []string `form:"addon_type_ids" json:"addon_type_ids" validate:"dive,number"`
}

// QueueQuery selects a queue page. A nil Search means no search parameters were sent.
type QueueQuery struct {
	Tab    editors.QueueType
	Search *QueueSearchForm
	Num    string
	Sort   string
	Page   int
}

// QueueView is one page of a version queue. A non-nil RedirectVersionID
// asks the caller to open that version's review page instead.
type QueueView struct {
	Tab               editors.QueueType                  `json:"tab"`
	QueueCounts       editors.QueueCounts                `json:"queue_counts"`
	Search            *QueueSearchForm                   `json:"search_form,omitempty"`
	SearchErrors      editors.FieldErrors                `json:"search_errors,omitempty"`
	Sort              string                             `json:"sort"`
	Page              shared.Paginated[editors.QueueRow] `json:"pager"`
	Flashes           []session.Flash                    `json:"messages"`
	RedirectVersionID *uuid.UUID                         `json:"-"`
	RedirectNum       int                                `json:"-"`
}

// FlagRow is one moderation flag of a review
type FlagRow struct {
	UserName  string    `json:"user_name"`
	Flag      string    `json:"flag"`
	FlagLabel string    `json:"flag_label"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// ModeratedReviewRow is a flagged user review awaiting moderation
type ModeratedReviewRow struct {
	ID        uuid.UUID  `json:"id"`
	AddonID   *uuid.UUID `json:"addon_id"`
	AddonName string     `json:"addon_name"`
	UserName  string     `json:"user_name"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Rating    int        `json:"rating"`
	Flags     []FlagRow  `json:"flags"`
	CreatedAt time.Time  `json:"created_at"`
}

// ModeratedQueueView is one page of the review moderation queue
type ModeratedQueueView struct {
	Tab         editors.QueueType                    `json:"tab"`
	QueueCounts editors.QueueCounts                  `json:"queue_counts"`
	FlagLabels  map[editors.FlagReason]string        `json:"flags"`
	Page        shared.Paginated[ModeratedReviewRow] `json:"pager"`
	FormErrors  []editors.FieldErrors                `json:"formset_errors,omitempty"`
	Flashes     []session.Flash                      `json:"messages"`
}

// ModerationForm is one entry of the moderation formset
type ModerationForm struct {
	ReviewID string `json:"review_id" form:"review_id" validate:"required,uuid"`
	Action   string `json:"action" form:"action" validate:"required,oneof=keep delete skip"`
}

// ApplicationVersionsView lists the select choices for max_version
type ApplicationVersionsView struct {
	Choices [][2]string `json:"choices"`
}

// ReviewForm is the submitted review of a version
type ReviewForm struct {
	Action         string   `form:"action" json:"action"`
	Comments       string   `form:"comments" json:"comments"`
	Files          []string `form:"files" json:"files"`
	CannedResponse string   `form:"canned_response" json:"canned_response" validate:"omitempty,uuid"`
}

// Paging links the review page to its neighbours in the queue
type Paging struct {
	Current int               `json:"current"`
	Total   int64             `json:"total"`
	Prev    bool              `json:"prev"`
	Next    bool              `json:"next"`
	Queue   editors.QueueType `json:"queue"`
	PrevURL string            `json:"prev_url,omitempty"`
	NextURL string            `json:"next_url,omitempty"`
}

// FileRow is a file of the reviewed version
type FileRow struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	Platform     int       `json:"platform"`
	PlatformName string    `json:"platform_name"`
	Status       string    `json:"status"`
}

// ReviewActionChoice is one radio option of the review form
type ReviewActionChoice struct {
	Action editors.ReviewAction `json:"action"`
	Label  string               `json:"label"`
}

// ReviewView is the review page of one version
type ReviewView struct {
	AddonID         uuid.UUID                `json:"addon_id"`
	AddonName       string                   `json:"addon_name"`
	AddonStatus     string                   `json:"addon_status"`
	AdminReview     bool                     `json:"admin_review"`
	VersionID       uuid.UUID                `json:"version_id"`
	Version         string                   `json:"version"`
	ReviewType      editors.ReviewType       `json:"review_type"`
	Files           []FileRow                `json:"files"`
	Actions         []ReviewActionChoice     `json:"actions"`
	Flags           []ModeratedReviewRow     `json:"flags"`
	CannedResponses []editors.CannedResponse `json:"canned_responses"`
	History         []ActivityRow            `json:"history"`
	Paging          *Paging                  `json:"paging,omitempty"`
	Form            *ReviewForm              `json:"form,omitempty"`
	FormErrors      editors.FieldErrors      `json:"form_errors,omitempty"`
}
