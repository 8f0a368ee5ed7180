package editors

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/samber/lo"
)

// Review log label maps, keyed by activity action. Nominations and
// pending or preliminary reviews read differently.
var (
	nominationLabels = map[int]string{
		int(editors.LogApproveVersion):     i18n.MsgNomApproved,
		int(editors.LogPreliminaryVersion): i18n.MsgNomPreliminary,
		int(editors.LogRejectVersion):      i18n.MsgNomRejected,
		int(editors.LogEscalateVersion):    i18n.MsgAdminReview,
	}
	pendingLabels = map[int]string{
		int(editors.LogApproveVersion):     i18n.MsgPenApproved,
		int(editors.LogPreliminaryVersion): i18n.MsgPenPreliminary,
		int(editors.LogRejectVersion):      i18n.MsgPenRejected,
		int(editors.LogEscalateVersion):    i18n.MsgAdminReview,
	}
)

// EventLog lists editor events. An invalid filter form is reported and ignored.
func (s *Service) EventLog(ctx context.Context, form EventLogForm, page int) (view *LogView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "EventLog")
	defer func() { telemetry.EndSpan(span, err) }()

	filter := editors.ActivityFilter{Actions: editors.EditorEventActions}
	errs := validateForm(form)
	var action editors.LogAction
	if form.Filter != "" && len(errs) == 0 {
		n, _ := strconv.Atoi(form.Filter)
		action = editors.LogAction(n)
		if !action.IsEditorEvent() {
			addError(errs, "filter", "Select a valid choice. "+form.Filter+" is not one of the available choices.")
		}
	}
	if len(errs) == 0 {
		filter.Start, filter.End = form.dateRange()
		if form.Filter != "" {
			filter.Actions = []editors.LogAction{action}
		}
	}

	pageReq := shared.NewPageRequest(page, logPageSize)
	logs, total, err := s.repos.Activity.List(ctx, filter, pageReq)
	if err != nil {
		return nil, err
	}
	rows := lo.Map(logs, func(l editors.ActivityLog, _ int) ActivityRow { return toActivityRow(l) })
	return &LogView{
		Form:       form,
		FormErrors: nilIfEmpty(errs),
		Page:       shared.NewPaginated(rows, total, pageReq),
	}, nil
}

// EventLogDetail returns one editor event
func (s *Service) EventLogDetail(ctx context.Context, id uuid.UUID) (*ActivityRow, error) {
	l, err := s.repos.Activity.FindByID(ctx, id, editors.EditorEventActions)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Event not found")
		}
		return nil, err
	}
	row := toActivityRow(*l)
	return &row, nil
}

// ReviewLog lists review queue decisions, labelled by review type.
// Without any date filter it starts at the first day of the current month.
func (s *Service) ReviewLog(ctx context.Context, actor Actor, form DateRangeForm, page int) (view *LogView, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "EditorsService", "ReviewLog")
	defer func() { telemetry.EndSpan(span, err) }()

	filter := editors.ActivityFilter{Actions: editors.ReviewQueueActions}
	errs := validateForm(form)
	if len(errs) == 0 {
		filter.Start, filter.End = form.dateRange()
		if filter.Start == nil && filter.End == nil {
			start := firstOfMonth(s.now())
			filter.Start = &start
		}
	}

	pageReq := shared.NewPageRequest(page, logPageSize)
	logs, total, err := s.repos.Activity.List(ctx, filter, pageReq)
	if err != nil {
		return nil, err
	}

	nom := s.translator.Map(actor.Lang, nominationLabels)
	pen := s.translator.Map(actor.Lang, pendingLabels)
	rows := lo.Map(logs, func(l editors.ActivityLog, _ int) ActivityRow {
		row := toActivityRow(l)
		if l.Details.ReviewType == editors.ReviewNominated {
			row.Label = nom[row.Action]
		} else {
			row.Label = pen[row.Action]
		}
		return row
	})

	return &LogView{
		Form:       form,
		FormErrors: nilIfEmpty(errs),
		Page:       shared.NewPaginated(rows, total, pageReq),
		Labels:     map[string]map[int]string{"nom": nom, "pen": pen},
	}, nil
}

func nilIfEmpty(errs editors.FieldErrors) editors.FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
