package estimating

import (
	"context"

	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EstimateMetricsRecorder receives business metric signals derived from
// estimate lifecycle events
type EstimateMetricsRecorder interface {
	// RecordEstimateCreated increments the created-estimates counter
	RecordEstimateCreated(ctx context.Context)
	// RecordEstimateAccepted increments the accepted counter and adds the
	// estimate total to the accepted-value counter
	RecordEstimateAccepted(ctx context.Context, total decimal.Decimal)
	// RecordStatusTransition increments the transition counter for the
	// target status
	RecordStatusTransition(ctx context.Context, toStatus string)
}

// EstimateMetricsHandler translates estimate lifecycle events into business
// metric recordings. Subscribed to the event bus alongside the other
// estimate event handlers.
type EstimateMetricsHandler struct {
	recorder EstimateMetricsRecorder
	logger   *zap.Logger
}

// NewEstimateMetricsHandler creates a new handler for estimate lifecycle events.
func NewEstimateMetricsHandler(recorder EstimateMetricsRecorder, logger *zap.Logger) *EstimateMetricsHandler {
	return &EstimateMetricsHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *EstimateMetricsHandler) EventTypes() []string {
	return []string{
		estimating.EventTypeEstimateCreated,
		estimating.EventTypeEstimateSubmitted,
		estimating.EventTypeEstimateApproved,
		estimating.EventTypeEstimateRejected,
		estimating.EventTypeEstimateSent,
		estimating.EventTypeEstimateAccepted,
		estimating.EventTypeEstimateExpired,
	}
}

// Handle records the metric matching the lifecycle event. Submitted events
// only count as PENDING_APPROVAL transitions when approvers are pending;
// auto-approved estimates raise a separate approved event.
func (h *EstimateMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *estimating.EstimateCreatedEvent:
		h.recorder.RecordEstimateCreated(ctx)
	case *estimating.EstimateSubmittedEvent:
		if len(e.PendingApprovers) > 0 {
			h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusPendingApproval.String())
		}
	case *estimating.EstimateApprovedEvent:
		h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusApproved.String())
	case *estimating.EstimateRejectedEvent:
		h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusRejected.String())
	case *estimating.EstimateSentEvent:
		h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusSent.String())
	case *estimating.EstimateAcceptedEvent:
		h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusAccepted.String())
		h.recorder.RecordEstimateAccepted(ctx, e.TotalAmount)
	case *estimating.EstimateExpiredEvent:
		h.recorder.RecordStatusTransition(ctx, estimating.EstimateStatusExpired.String())
	default:
		h.logger.Debug("ignoring event without metric mapping",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}
