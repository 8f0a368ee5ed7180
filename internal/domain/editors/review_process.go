package editors

import (
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// ReviewType is the kind of review a version receives.
type ReviewType string

const (
	ReviewNominated   ReviewType = "nominated"
	ReviewPending     ReviewType = "pending"
	ReviewPreliminary ReviewType = "preliminary"
)

// ReviewTypeFor derives the review type from the add-on status.
func ReviewTypeFor(addon *Addon) ReviewType {
	switch addon.Status {
	case StatusNominated, StatusLiteAndNominated:
		return ReviewNominated
	case StatusUnreviewed, StatusLite:
		return ReviewPreliminary
	default:
		return ReviewPending
	}
}

// Queue returns the queue tab the review type belongs to.
func (t ReviewType) Queue() QueueType {
	if t == ReviewPreliminary {
		return QueuePrelim
	}
	return QueueType(t)
}

// ReviewAction is an editor's decision on a version.
type ReviewAction string

const (
	ActionPublic  ReviewAction = "public"
	ActionPrelim  ReviewAction = "prelim"
	ActionReject  ReviewAction = "reject"
	ActionInfo    ReviewAction = "info"
	ActionSuper   ReviewAction = "super"
	ActionComment ReviewAction = "comment"
)

// ActionLabels maps review actions to button labels.
var ActionLabels = map[ReviewAction]string{
	ActionPublic:  "Push to public",
	ActionPrelim:  "Grant preliminary review",
	ActionReject:  "Reject",
	ActionInfo:    "Request more information",
	ActionSuper:   "Request super-review",
	ActionComment: "Comment",
}

var allowedActions = map[ReviewType][]ReviewAction{
	ReviewNominated:   {ActionPublic, ActionPrelim, ActionReject, ActionInfo, ActionSuper, ActionComment},
	ReviewPending:     {ActionPublic, ActionReject, ActionInfo, ActionSuper, ActionComment},
	ReviewPreliminary: {ActionPrelim, ActionReject, ActionInfo, ActionSuper, ActionComment},
}

// AllowedActions lists the actions an editor may take for a review type.
func AllowedActions(t ReviewType) []ReviewAction {
	return allowedActions[t]
}

func (t ReviewType) allows(a ReviewAction) bool {
	for _, allowed := range allowedActions[t] {
		if allowed == a {
			return true
		}
	}
	return false
}

// ReviewDecision is the submitted review form.
type ReviewDecision struct {
	Action           ReviewAction
	Comments         string
	FileIDs          []uuid.UUID
	CannedResponseID *uuid.UUID
}

// FieldErrors maps form fields to their validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Validate checks the decision against the version under review.
func (d ReviewDecision) Validate(t ReviewType, version *Version) FieldErrors {
	errs := FieldErrors{}
	if d.Action == "" {
		errs.add("action", "This field is required.")
	} else if !t.allows(d.Action) {
		errs.add("action", "Select a valid choice. "+string(d.Action)+" is not one of the available choices.")
	}
	if strings.TrimSpace(d.Comments) == "" {
		errs.add("comments", "This field is required.")
	}
	if t != ReviewNominated && d.touchesFiles() {
		if len(d.FileIDs) == 0 {
			errs.add("files", "You must select some files.")
		}
		known := make(map[uuid.UUID]bool, len(version.Files))
		for _, f := range version.Files {
			known[f.ID] = true
		}
		for _, id := range d.FileIDs {
			if !known[id] {
				errs.add("files", "Select a valid choice. "+id.String()+" is not one of the available choices.")
			}
		}
	}
	return errs
}

func (d ReviewDecision) touchesFiles() bool {
	return d.Action == ActionPublic || d.Action == ActionPrelim || d.Action == ActionReject
}

// ReviewOutcome describes every change a processed review makes.
type ReviewOutcome struct {
	AddonStatus    *AddonStatus
	FileStatus     *AddonStatus
	FileIDs        []uuid.UUID
	SetAdminReview bool
	LogAction      LogAction
	Approval       bool
}

// Outcome computes the effects of the decision on the add-on and version.
// It assumes the decision already passed Validate.
func (d ReviewDecision) Outcome(t ReviewType, addon *Addon, version *Version) (ReviewOutcome, error) {
	out := ReviewOutcome{Approval: true}
	files := d.FileIDs
	if t == ReviewNominated {
		files = version.FileIDs()
	}

	switch d.Action {
	case ActionPublic:
		out.FileStatus = statusPtr(StatusPublic)
		out.FileIDs = files
		if t == ReviewNominated {
			out.AddonStatus = statusPtr(StatusPublic)
		}
		out.LogAction = LogApproveVersion
	case ActionPrelim:
		out.FileStatus = statusPtr(StatusLite)
		out.FileIDs = files
		if t == ReviewNominated || addon.Status == StatusUnreviewed {
			out.AddonStatus = statusPtr(StatusLite)
		}
		out.LogAction = LogPreliminaryVersion
	case ActionReject:
		out.FileStatus = statusPtr(StatusDisabled)
		out.FileIDs = files
		if t == ReviewNominated {
			out.AddonStatus = statusPtr(StatusNull)
		}
		out.LogAction = LogRejectVersion
	case ActionSuper:
		out.SetAdminReview = true
		out.LogAction = LogEscalateVersion
	case ActionInfo:
		out.LogAction = LogRequestInformation
	case ActionComment:
		out.LogAction = LogCommentVersion
		out.Approval = false
	default:
		return ReviewOutcome{}, shared.NewDomainError("INVALID_ACTION", "Unknown review action: "+string(d.Action))
	}
	return out, nil
}

func statusPtr(s AddonStatus) *AddonStatus {
	return &s
}
