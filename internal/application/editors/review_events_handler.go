package editors

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReviewEventsHandler records processed reviews and moderation batches
// in the logs and the review metrics.
type ReviewEventsHandler struct {
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

// NewReviewEventsHandler creates the handler. metrics may be nil.
func NewReviewEventsHandler(logger *zap.Logger, metrics *telemetry.AppMetrics) *ReviewEventsHandler {
	return &ReviewEventsHandler{logger: logger, metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *ReviewEventsHandler) EventTypes() []string {
	return []string{editors.EventTypeReviewProcessed, editors.EventTypeReviewModerated}
}

// Handle processes review events
func (h *ReviewEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *editors.ReviewProcessedEvent:
		h.metrics.RecordReviewProcessed(ctx, string(e.Action), string(e.ReviewType))
		h.logger.Info("version reviewed",
			zap.String("addon_id", e.AddonID.String()),
			zap.String("addon_name", e.AddonName),
			zap.String("version", e.Version),
			zap.String("review_type", string(e.ReviewType)),
			zap.String("action", string(e.Action)),
			zap.String("editor_id", e.EditorID.String()),
		)
		return nil
	case *editors.ReviewModeratedEvent:
		h.metrics.RecordModeration(ctx, string(editors.ModerationKeep), e.Kept)
		h.metrics.RecordModeration(ctx, string(editors.ModerationDelete), e.Deleted)
		h.logger.Info("reviews moderated",
			zap.Int("kept", e.Kept),
			zap.Int("deleted", e.Deleted),
			zap.String("editor_id", e.EditorID.String()),
		)
		return nil
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

var _ shared.EventHandler = (*ReviewEventsHandler)(nil)
