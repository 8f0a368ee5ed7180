package editors

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Review errors
var (
	ErrSelfReview        = shared.NewDomainError("SELF_REVIEW", i18n.MsgSelfReview)
	ErrInvalidReviewForm = shared.NewDomainError("INVALID_REVIEW_FORM", "Review form is invalid")
	ErrVersionNotFound   = shared.ErrNotFound.WithMessage("Version not found")
)

type reviewSubject struct {
	addon      *editors.Addon
	version    *editors.Version
	reviewType editors.ReviewType
}

// loadSubject loads the version under review and refuses self-reviews,
// leaving the editor a warning flash.
func (s *Service) loadSubject(ctx context.Context, actor Actor, versionID uuid.UUID) (*reviewSubject, error) {
	version, err := s.repos.Addons.FindVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	addon, err := s.repos.Addons.FindAddon(ctx, version.AddonID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	isAuthor, err := s.repos.Addons.IsAuthor(ctx, addon.ID, actor.Editor.ID)
	if err != nil {
		return nil, err
	}
	if isAuthor {
		s.flash(ctx, actor, session.LevelWarning, i18n.MsgSelfReview)
		return nil, ErrSelfReview
	}

	return &reviewSubject{addon: addon, version: version, reviewType: editors.ReviewTypeFor(addon)}, nil
}

// ReviewPage builds the review page of a version. num is the 1-based
// position of the version in its queue, used for prev/next paging.
func (s *Service) ReviewPage(ctx context.Context, actor Actor, versionID uuid.UUID, num string) (view *ReviewView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "ReviewPage",
		attribute.String("version.id", versionID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	subject, err := s.loadSubject(ctx, actor, versionID)
	if err != nil {
		return nil, err
	}
	return s.buildReviewView(ctx, subject, num)
}

func (s *Service) buildReviewView(ctx context.Context, subject *reviewSubject, num string) (*ReviewView, error) {
	addon, version, rt := subject.addon, subject.version, subject.reviewType

	flagged, err := s.repos.Reviews.ListFlaggedForAddon(ctx, addon.ID)
	if err != nil {
		return nil, err
	}
	canned, err := s.repos.Canned.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	history, _, err := s.repos.Activity.List(ctx, editors.ActivityFilter{
		Actions: editors.HistoryActions,
		AddonID: &addon.ID,
	}, shared.NewPageRequest(1, historyPageSize))
	if err != nil {
		return nil, err
	}

	view := &ReviewView{
		AddonID:     addon.ID,
		AddonName:   addon.Name,
		AddonStatus: addon.Status.String(),
		AdminReview: addon.AdminReview,
		VersionID:   version.ID,
		Version:     version.Version,
		ReviewType:  rt,
		Files: lo.Map(version.Files, func(f editors.File, _ int) FileRow {
			return FileRow{
				ID:           f.ID,
				Filename:     f.Filename,
				Platform:     int(f.Platform),
				PlatformName: editors.PlatformNames[f.Platform],
				Status:       f.Status.String(),
			}
		}),
		Actions: lo.Map(editors.AllowedActions(rt), func(a editors.ReviewAction, _ int) ReviewActionChoice {
			return ReviewActionChoice{Action: a, Label: editors.ActionLabels[a]}
		}),
		Flags:           lo.Map(flagged, func(r editors.Review, _ int) ModeratedReviewRow { return toModeratedRow(r) }),
		CannedResponses: canned,
		History:         lo.Map(history, func(l editors.ActivityLog, _ int) ActivityRow { return toActivityRow(l) }),
	}

	if n, err := strconv.Atoi(num); err == nil && n > 0 {
		counts, err := s.QueueCounts(ctx)
		if err != nil {
			return nil, err
		}
		total := counts[rt.Queue()]
		view.Paging = &Paging{
			Current: n,
			Total:   total,
			Prev:    n > 1,
			Next:    int64(n) < total,
			Queue:   rt.Queue(),
		}
	}
	return view, nil
}

// SubmitReview validates and processes a review. An invalid form returns
// the review page with its errors and ErrInvalidReviewForm.
func (s *Service) SubmitReview(ctx context.Context, actor Actor, versionID uuid.UUID, form ReviewForm, num string) (view *ReviewView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "SubmitReview",
		attribute.String("version.id", versionID.String()),
		attribute.String("review.action", form.Action))
	defer func() { telemetry.EndSpan(span, err) }()

	subject, err := s.loadSubject(ctx, actor, versionID)
	if err != nil {
		return nil, err
	}

	decision, errs := parseDecision(form)
	for field, msgs := range decision.Validate(subject.reviewType, subject.version) {
		for _, m := range msgs {
			if !lo.Contains(errs[field], m) {
				addError(errs, field, m)
			}
		}
	}
	if len(errs) > 0 {
		view, err := s.buildReviewView(ctx, subject, num)
		if err != nil {
			return nil, err
		}
		view.Form = &form
		view.FormErrors = errs
		return view, ErrInvalidReviewForm
	}

	if err := s.processReview(ctx, actor, subject, decision); err != nil {
		return nil, err
	}
	s.flash(ctx, actor, session.LevelSuccess, i18n.MsgReviewProcessed)
	return nil, nil
}

// parseDecision converts the raw form. Unparseable ids become field errors.
func parseDecision(form ReviewForm) (editors.ReviewDecision, editors.FieldErrors) {
	errs := validateForm(form)
	d := editors.ReviewDecision{
		Action:   editors.ReviewAction(form.Action),
		Comments: form.Comments,
	}
	for _, raw := range form.Files {
		id, err := uuid.Parse(raw)
		if err != nil {
			addError(errs, "files", "Select a valid choice. "+raw+" is not one of the available choices.")
			continue
		}
		d.FileIDs = append(d.FileIDs, id)
	}
	if form.CannedResponse != "" {
		if id, err := uuid.Parse(form.CannedResponse); err == nil {
			d.CannedResponseID = &id
		}
	}
	return d, errs
}

// processReview writes the outcome in one transaction, then announces it.
func (s *Service) processReview(ctx context.Context, actor Actor, subject *reviewSubject, d editors.ReviewDecision) error {
	addon, version, rt := subject.addon, subject.version, subject.reviewType

	outcome, err := d.Outcome(rt, addon, version)
	if err != nil {
		return err
	}

	entry := editors.NewActivityLog(outcome.LogAction, actor.Editor).ForVersion(addon, version)
	entry.Details = editors.ActivityDetails{Comments: d.Comments, ReviewType: rt}

	change := editors.ReviewChange{AddonID: addon.ID, Outcome: outcome, Log: entry}
	if outcome.Approval {
		status := addon.Status
		if outcome.AddonStatus != nil {
			status = *outcome.AddonStatus
		} else if outcome.FileStatus != nil {
			status = *outcome.FileStatus
		}
		change.Approval = &editors.Approval{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     actor.Editor.ID,
			UserName:   actor.Editor.Name,
			AddonID:    addon.ID,
			ReviewType: rt,
			Action:     status,
			Comments:   d.Comments,
		}
	}

	if err := s.repos.Writer.ApplyReview(ctx, change); err != nil {
		return err
	}

	s.logger.Info("review processed",
		zap.String("addon_id", addon.ID.String()),
		zap.String("version_id", version.ID.String()),
		zap.String("review_type", string(rt)),
		zap.String("action", string(d.Action)),
	)

	event := editors.NewReviewProcessedEvent(addon, version, rt, d, actor.Editor)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish review processed event", zap.Error(err))
	}
	return nil
}
