package editors

import (
	"context"
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

// ErrUnknownQueue is returned for queue tabs that do not list versions
var ErrUnknownQueue = shared.ErrNotFound.WithMessage("Unknown queue")

// ErrInvalidFormset is returned when a moderation formset does not validate
var ErrInvalidFormset = shared.NewDomainError("INVALID_FORMSET", "Moderation form is invalid")

// Queue lists one version queue. When num names an existing row the view
// carries that row's version to redirect to instead.
func (s *Service) Queue(ctx context.Context, actor Actor, q QueueQuery) (view *QueueView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "Queue",
		attribute.String("queue", string(q.Tab)))
	defer func() { telemetry.EndSpan(span, err) }()

	if !lo.Contains(editors.VersionQueues, q.Tab) {
		return nil, ErrUnknownQueue
	}

	view = &QueueView{Tab: q.Tab, Search: q.Search}
	var search editors.QueueSearch
	if q.Search != nil {
		var errs editors.FieldErrors
		search, errs = q.Search.toSearch()
		view.SearchErrors = errs
	}
	sort := editors.ParseQueueSort(q.Sort)
	view.Sort = sort.String()

	if num, convErr := strconv.Atoi(q.Num); convErr == nil && num > 0 {
		rows, err := s.repos.Queue.List(ctx, q.Tab, search, sort, shared.PageRequest{Page: num, PageSize: 1})
		if err != nil {
			return nil, err
		}
		if len(rows) == 1 {
			id := rows[0].LatestVersionID
			view.RedirectVersionID = &id
			view.RedirectNum = num
			return view, nil
		}
	}

	counts, err := s.QueueCounts(ctx)
	if err != nil {
		return nil, err
	}
	view.QueueCounts = counts

	total := counts[q.Tab]
	if !search.IsEmpty() {
		total, err = s.repos.Queue.Count(ctx, q.Tab, search)
		if err != nil {
			return nil, err
		}
	}

	pageReq := shared.NewPageRequest(q.Page, queuePageSize)
	rows, err := s.repos.Queue.List(ctx, q.Tab, search, sort, pageReq)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range rows {
		rows[i].SetWaitingTime(now)
	}
	view.Page = shared.NewPaginated(rows, total, pageReq)
	view.Flashes = s.drainFlashes(ctx, actor)
	return view, nil
}

// ApplicationVersions lists the known versions of an application, newest first,
// as select choices led by an empty choice.
func (s *Service) ApplicationVersions(ctx context.Context, applicationID string) (*ApplicationVersionsView, editors.FieldErrors, error) {
	errs := editors.FieldErrors{}
	if applicationID == "" {
		addError(errs, "application_id", "This field is required.")
		return nil, errs, nil
	}
	id, err := strconv.Atoi(applicationID)
	if err != nil {
		addError(errs, "application_id", "Enter a whole number.")
		return nil, errs, nil
	}

	versions, err := s.repos.AppVersions.ListForApplication(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	choices := [][2]string{{"", ""}}
	for _, v := range versions {
		choices = append(choices, [2]string{v.Version, v.Version})
	}
	return &ApplicationVersionsView{Choices: choices}, nil, nil
}

// ModeratedQueue lists flagged user reviews, oldest flag first
func (s *Service) ModeratedQueue(ctx context.Context, actor Actor, page int) (view *ModeratedQueueView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "ModeratedQueue")
	defer func() { telemetry.EndSpan(span, err) }()

	pageReq := shared.NewPageRequest(page, moderatedPageSize)
	reviews, total, err := s.repos.Reviews.ListModerated(ctx, pageReq)
	if err != nil {
		return nil, err
	}
	counts, err := s.QueueCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &ModeratedQueueView{
		Tab:         editors.QueueModerated,
		QueueCounts: counts,
		FlagLabels:  editors.FlagLabels,
		Page:        shared.NewPaginated(lo.Map(reviews, func(r editors.Review, _ int) ModeratedReviewRow { return toModeratedRow(r) }), total, pageReq),
		Flashes:     s.drainFlashes(ctx, actor),
	}, nil
}

// Moderate applies a moderation formset to the given page of the queue.
// Every review must be on that page. On validation failure it returns the
// page view with per-form errors and ErrInvalidFormset.
func (s *Service) Moderate(ctx context.Context, actor Actor, page int, forms []ModerationForm) (view *ModeratedQueueView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "Moderate",
		attribute.Int("forms", len(forms)))
	defer func() { telemetry.EndSpan(span, err) }()

	pageReq := shared.NewPageRequest(page, moderatedPageSize)
	reviews, _, err := s.repos.Reviews.ListModerated(ctx, pageReq)
	if err != nil {
		return nil, err
	}
	onPage := lo.SliceToMap(reviews, func(r editors.Review) (uuid.UUID, editors.Review) { return r.ID, r })

	formErrors := make([]editors.FieldErrors, len(forms))
	decisions := make([]editors.ModerationDecision, 0, len(forms))
	seen := make(map[uuid.UUID]struct{}, len(forms))
	valid := true
	for i, f := range forms {
		errs := validateForm(f)
		if len(errs) == 0 {
			id := uuid.MustParse(f.ReviewID)
			_, dup := seen[id]
			seen[id] = struct{}{}
			if _, ok := onPage[id]; !ok {
				addError(errs, "review_id", "Select a valid choice. That choice is not one of the available choices.")
			} else if dup {
				addError(errs, "review_id", "Each review can only be moderated once.")
			} else {
				decisions = append(decisions, editors.ModerationDecision{ReviewID: id, Action: editors.ModerationAction(f.Action)})
			}
		}
		if len(errs) > 0 {
			valid = false
		}
		formErrors[i] = errs
	}

	if !valid {
		view, err := s.ModeratedQueue(ctx, actor, page)
		if err != nil {
			return nil, err
		}
		view.FormErrors = formErrors
		return view, ErrInvalidFormset
	}

	change := editors.ModerationChange{Decisions: decisions}
	kept, deleted := 0, 0
	for _, d := range decisions {
		action, ok := d.LogAction()
		if !ok {
			continue
		}
		review := onPage[d.ReviewID]
		entry := editors.NewActivityLog(action, actor.Editor)
		entry.AddonID = review.AddonID
		entry.AddonName = review.AddonName
		entry.Details = editors.ActivityDetails{ReviewID: lo.ToPtr(review.ID), ReviewTitle: review.Title}
		change.Logs = append(change.Logs, entry)
		if d.Action == editors.ModerationKeep {
			kept++
		} else {
			deleted++
		}
	}

	if err := s.repos.Writer.ApplyModeration(ctx, change); err != nil {
		return nil, err
	}

	if kept+deleted > 0 {
		if err := s.publisher.Publish(ctx, editors.NewReviewModeratedEvent(kept, deleted, actor.Editor)); err != nil {
			s.logger.Warn("failed to publish review moderated event", zap.Error(err))
		}
	}
	s.flash(ctx, actor, session.LevelSuccess, i18n.MsgModerationProcessed)
	return nil, nil
}

func toModeratedRow(r editors.Review) ModeratedReviewRow {
	return ModeratedReviewRow{
		ID:        r.ID,
		AddonID:   r.AddonID,
		AddonName: r.AddonName,
		UserName:  r.UserName,
		Title:     r.Title,
		Body:      r.Body,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		Flags: lo.Map(r.Flags, func(f editors.ReviewFlag, _ int) FlagRow {
			return FlagRow{
				UserName:  f.UserName,
				Flag:      string(f.Flag),
				FlagLabel: editors.FlagLabels[f.Flag],
				Note:      f.Note,
				CreatedAt: f.CreatedAt,
			}
		}),
	}
}
