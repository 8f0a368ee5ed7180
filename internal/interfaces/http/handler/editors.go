package handler

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	editorsapp "github.com/marketplace/backend/internal/application/editors"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/samber/lo"
)

// EditorsService is the editor tools use case layer
type EditorsService interface {
	Home(ctx context.Context, actor editorsapp.Actor) (*editorsapp.HomeView, error)
	EventLog(ctx context.Context, form editorsapp.EventLogForm, page int) (*editorsapp.LogView, error)
	EventLogDetail(ctx context.Context, id uuid.UUID) (*editorsapp.ActivityRow, error)
	ReviewLog(ctx context.Context, actor editorsapp.Actor, form editorsapp.DateRangeForm, page int) (*editorsapp.LogView, error)
	Queue(ctx context.Context, actor editorsapp.Actor, q editorsapp.QueueQuery) (*editorsapp.QueueView, error)
	ApplicationVersions(ctx context.Context, applicationID string) (*editorsapp.ApplicationVersionsView, editors.FieldErrors, error)
	ModeratedQueue(ctx context.Context, actor editorsapp.Actor, page int) (*editorsapp.ModeratedQueueView, error)
	Moderate(ctx context.Context, actor editorsapp.Actor, page int, forms []editorsapp.ModerationForm) (*editorsapp.ModeratedQueueView, error)
	ReviewPage(ctx context.Context, actor editorsapp.Actor, versionID uuid.UUID, num string) (*editorsapp.ReviewView, error)
	SubmitReview(ctx context.Context, actor editorsapp.Actor, versionID uuid.UUID, form editorsapp.ReviewForm, num string) (*editorsapp.ReviewView, error)
	SetMotd(ctx context.Context, actor editorsapp.Actor, motd string) error
}

// queueSearchParams are the query keys of the queue search form
var queueSearchParams = []string{"text_query", "admin_review", "application_id", "max_version", "waiting_time_days", "addon_type_ids"}

// EditorsHandler serves the editor tools
type EditorsHandler struct {
	BaseHandler
	service EditorsService
	// basePath is where the editor routes are mounted, e.g. /api/v1/editors
	basePath string
}

// NewEditorsHandler creates a new EditorsHandler
func NewEditorsHandler(service EditorsService, basePath string) *EditorsHandler {
	return &EditorsHandler{service: service, basePath: basePath}
}

// ModerateRequest is a formset of moderation decisions
// @Description Moderation decisions for reviews on one page of the moderated queue
type ModerateRequest struct {
	Forms []editorsapp.ModerationForm `json:"forms"`
}

// MotdRequest sets the editors' message of the day
// @Description Message of the day
type MotdRequest struct {
	Motd string `json:"motd" form:"motd" example:"Please review the oldest nominations first."`
}

// actor builds the acting editor from the token claims
func (h *EditorsHandler) actor(c *gin.Context) (editorsapp.Actor, bool) {
	id, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return editorsapp.Actor{}, false
	}
	return editorsapp.Actor{
		Editor: editors.Editor{ID: id, Name: middleware.GetJWTUsername(c)},
		Lang:   middleware.GetLocale(c),
	}, true
}

func (h *EditorsHandler) queueURL(tab string, num int) string {
	u := h.basePath + "/queue/" + tab
	if num > 0 {
		u += "?" + url.Values{"num": {strconv.Itoa(num)}}.Encode()
	}
	return u
}

// Home godoc
// @ID           getEditorsHome
// @Summary      Editors dashboard
// @Description  Top reviewers, newest editors, the message of the day and recent editor events
// @Tags         editors
// @Produce      json
// @Success      200 {object} APIResponse[editorsapp.HomeView]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/ [get]
func (h *EditorsHandler) Home(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.service.Home(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// EventLog godoc
// @ID           listEditorsEventLog
// @Summary      Editor event log
// @Description  Editor events newest first. An invalid filter is reported in form_errors and ignored.
// @Tags         editors
// @Produce      json
// @Param        start  query string false "Created on or after (YYYY-MM-DD)"
// @Param        end    query string false "Created before (YYYY-MM-DD)"
// @Param        filter query int    false "Editor event action id"
// @Param        page   query int    false "Page number" default(1)
// @Success      200 {object} APIResponse[editorsapp.LogView]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/eventlog [get]
func (h *EditorsHandler) EventLog(c *gin.Context) {
	var form editorsapp.EventLogForm
	if err := c.ShouldBindQuery(&form); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}
	view, err := h.service.EventLog(c.Request.Context(), form, getPage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// EventLogDetail godoc
// @ID           getEditorsEvent
// @Summary      One editor event
// @Tags         editors
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Success      200 {object} APIResponse[editorsapp.ActivityRow]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/eventlog/{id} [get]
func (h *EditorsHandler) EventLogDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.NotFound(c, "Event not found")
		return
	}
	row, err := h.service.EventLogDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// QueueIndex godoc
// @ID           redirectEditorsQueue
// @Summary      Default queue
// @Description  Redirects to the pending queue
// @Tags         editors
// @Success      302
// @Security     BearerAuth
// @Router       /editors/queue [get]
func (h *EditorsHandler) QueueIndex(c *gin.Context) {
	h.Redirect(c, h.queueURL(string(editors.QueuePending), 0))
}

// Queue godoc
// @ID           listEditorsQueue
// @Summary      Version queue
// @Description  One page of the pending, nominated or prelim queue. num=N redirects to the review page of row N.
// @Tags         editors
// @Produce      json
// @Param        tab               path  string   true  "Queue" Enums(pending, nominated, prelim)
// @Param        text_query        query string   false "Add-on name contains"
// @Param        admin_review      query bool     false "Flagged for admin review"
// @Param        application_id    query int      false "Application id"
// @Param        max_version       query string   false "Max application version (needs application_id)"
// @Param        waiting_time_days query string   false "1 to 9, or 10+"
// @Param        addon_type_ids    query []int    false "Add-on types" collectionFormat(multi)
// @Param        sort              query string   false "Sort key, - for descending" default(-waiting_time_days)
// @Param        num               query int      false "Open the review page of this row"
// @Param        page              query int      false "Page number" default(1)
// @Success      200 {object} APIResponse[editorsapp.QueueView]
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/queue/{tab} [get]
func (h *EditorsHandler) Queue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	q := editorsapp.QueueQuery{
		Tab:  editors.QueueType(c.Param("tab")),
		Num:  c.Query("num"),
		Sort: c.Query("sort"),
		Page: getPage(c),
	}
	if hasAnyQuery(c, queueSearchParams) {
		var search editorsapp.QueueSearchForm
		if err := c.ShouldBindQuery(&search); err != nil {
			h.ValidationError(c, middleware.ValidationDetails(err))
			return
		}
		q.Search = &search
	}

	view, err := h.service.Queue(c.Request.Context(), actor, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if view.RedirectVersionID != nil {
		h.Redirect(c, h.reviewURL(*view.RedirectVersionID, view.RedirectNum))
		return
	}
	h.Success(c, view)
}

func (h *EditorsHandler) reviewURL(versionID uuid.UUID, num int) string {
	return h.basePath + "/review/" + versionID.String() + "?" + url.Values{"num": {strconv.Itoa(num)}}.Encode()
}

// fieldDetails flattens form errors, ordered by field
func fieldDetails(errs editors.FieldErrors) []dto.ValidationDetail {
	fields := lo.Keys(errs)
	slices.Sort(fields)
	var details []dto.ValidationDetail
	for _, f := range fields {
		for _, msg := range errs[f] {
			details = append(details, dto.ValidationDetail{Field: f, Message: msg})
		}
	}
	return details
}

func hasAnyQuery(c *gin.Context, keys []string) bool {
	query := c.Request.URL.Query()
	for _, k := range keys {
		if query.Has(k) {
			return true
		}
	}
	return false
}

// ModeratedQueue godoc
// @ID           listEditorsModeratedQueue
// @Summary      Moderated review queue
// @Description  Flagged user reviews, oldest flag first
// @Tags         editors
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Success      200 {object} APIResponse[editorsapp.ModeratedQueueView]
// @Security     BearerAuth
// @Router       /editors/queue/reviews [get]
func (h *EditorsHandler) ModeratedQueue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.service.ModeratedQueue(c.Request.Context(), actor, getPage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Moderate godoc
// @ID           moderateEditorsReviews
// @Summary      Moderate flagged reviews
// @Description  Keeps, deletes or skips reviews of one page of the moderated queue
// @Tags         editors
// @Accept       json
// @Produce      json
// @Param        page    query int             false "Page the reviews are on" default(1)
// @Param        request body  ModerateRequest true  "Moderation formset"
// @Success      302
// @Failure      400 {object} FormErrorResponse[editorsapp.ModeratedQueueView]
// @Security     BearerAuth
// @Router       /editors/queue/reviews [post]
func (h *EditorsHandler) Moderate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}

	page := getPage(c)
	view, err := h.service.Moderate(c.Request.Context(), actor, page, req.Forms)
	if errors.Is(err, editorsapp.ErrInvalidFormset) && view != nil {
		h.FormError(c, err, view)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Redirect(c, h.basePath+"/queue/reviews?"+url.Values{"page": {strconv.Itoa(page)}}.Encode())
}

// ApplicationVersions godoc
// @ID           listEditorsApplicationVersions
// @Summary      Versions of an application
// @Description  Select choices of the known versions of an application, highest first
// @Tags         editors
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        application_id formData int true "Application id"
// @Success      200 {object} APIResponse[editorsapp.ApplicationVersionsView]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/queue/application_versions.json [post]
func (h *EditorsHandler) ApplicationVersions(c *gin.Context) {
	view, errs, err := h.service.ApplicationVersions(c.Request.Context(), c.PostForm("application_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(errs) > 0 {
		h.ValidationError(c, fieldDetails(errs))
		return
	}
	h.Success(c, view)
}

// Review godoc
// @ID           getEditorsReview
// @Summary      Review page of a version
// @Description  Files, allowed actions, flags, canned responses and history of a version. Authors are redirected to the queue.
// @Tags         editors
// @Produce      json
// @Param        version_id path  string true  "Version ID" format(uuid)
// @Param        num        query int    false "Position in the queue, enables prev/next paging"
// @Success      200 {object} APIResponse[editorsapp.ReviewView]
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/review/{version_id} [get]
func (h *EditorsHandler) Review(c *gin.Context) {
	actor, versionID, ok := h.reviewTarget(c)
	if !ok {
		return
	}
	view, err := h.service.ReviewPage(c.Request.Context(), actor, versionID, c.Query("num"))
	if err != nil {
		h.handleReviewError(c, err)
		return
	}
	h.setPagingURLs(view)
	h.Success(c, view)
}

// SubmitReview godoc
// @ID           submitEditorsReview
// @Summary      Review a version
// @Description  Approves, rejects, escalates or comments on a version
// @Tags         editors
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      json
// @Param        version_id      path     string   true  "Version ID" format(uuid)
// @Param        num             query    int      false "Position in the queue"
// @Param        action          formData string   true  "Review action" Enums(public, prelim, reject, info, super, comment)
// @Param        comments        formData string   true  "Comments to the developer"
// @Param        files           formData []string false "File ids" collectionFormat(multi)
// @Param        canned_response formData string   false "Canned response id"
// @Success      302
// @Failure      400 {object} FormErrorResponse[editorsapp.ReviewView]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/review/{version_id} [post]
func (h *EditorsHandler) SubmitReview(c *gin.Context) {
	actor, versionID, ok := h.reviewTarget(c)
	if !ok {
		return
	}
	var form editorsapp.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}

	view, err := h.service.SubmitReview(c.Request.Context(), actor, versionID, form, c.Query("num"))
	if errors.Is(err, editorsapp.ErrInvalidReviewForm) && view != nil {
		h.setPagingURLs(view)
		h.FormError(c, err, view)
		return
	}
	if err != nil {
		h.handleReviewError(c, err)
		return
	}
	h.Redirect(c, h.basePath+"/queue")
}

func (h *EditorsHandler) reviewTarget(c *gin.Context) (editorsapp.Actor, uuid.UUID, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return actor, uuid.Nil, false
	}
	versionID, err := uuid.Parse(c.Param("version_id"))
	if err != nil {
		h.NotFound(c, editorsapp.ErrVersionNotFound.Message)
		return actor, uuid.Nil, false
	}
	return actor, versionID, true
}

// handleReviewError sends authors back to the queue, where the warning flash waits
func (h *EditorsHandler) handleReviewError(c *gin.Context, err error) {
	if errors.Is(err, editorsapp.ErrSelfReview) {
		h.Redirect(c, h.basePath+"/queue")
		return
	}
	h.HandleError(c, err)
}

func (h *EditorsHandler) setPagingURLs(view *editorsapp.ReviewView) {
	p := view.Paging
	if p == nil {
		return
	}
	if p.Prev {
		p.PrevURL = h.queueURL(string(p.Queue), p.Current-1)
	}
	if p.Next {
		p.NextURL = h.queueURL(string(p.Queue), p.Current+1)
	}
}

// ReviewLog godoc
// @ID           listEditorsReviewLog
// @Summary      Review log
// @Description  Review queue decisions newest first. Without dates it starts at the first day of the month.
// @Tags         editors
// @Produce      json
// @Param        start query string false "Created on or after (YYYY-MM-DD)"
// @Param        end   query string false "Created before (YYYY-MM-DD)"
// @Param        page  query int    false "Page number" default(1)
// @Success      200 {object} APIResponse[editorsapp.LogView]
// @Security     BearerAuth
// @Router       /editors/reviewlog [get]
func (h *EditorsHandler) ReviewLog(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var form editorsapp.DateRangeForm
	if err := c.ShouldBindQuery(&form); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}
	view, err := h.service.ReviewLog(c.Request.Context(), actor, form, getPage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SetMotd godoc
// @ID           setEditorsMotd
// @Summary      Set the message of the day
// @Tags         editors
// @Accept       json
// @Produce      json
// @Param        request body MotdRequest true "Message of the day"
// @Success      200 {object} SuccessResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /editors/motd [post]
func (h *EditorsHandler) SetMotd(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req MotdRequest
	if err := c.ShouldBind(&req); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}
	if err := h.service.SetMotd(c.Request.Context(), actor, req.Motd); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}
