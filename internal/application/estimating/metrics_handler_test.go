package estimating

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMetricsRecorder struct {
	mock.Mock
}

func (m *mockMetricsRecorder) RecordEstimateCreated(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockMetricsRecorder) RecordEstimateAccepted(ctx context.Context, total decimal.Decimal) {
	m.Called(ctx, total)
}

func (m *mockMetricsRecorder) RecordStatusTransition(ctx context.Context, toStatus string) {
	m.Called(ctx, toStatus)
}

func newMetricsHandlerEstimate(t *testing.T) *estimating.Estimate {
	t.Helper()
	estimate, err := estimating.NewEstimate(testEstimateNumber, uuid.New())
	require.NoError(t, err)
	return estimate
}

func TestEstimateMetricsHandler_EventTypes(t *testing.T) {
	handler := NewEstimateMetricsHandler(new(mockMetricsRecorder), zap.NewNop())

	types := handler.EventTypes()
	assert.Contains(t, types, estimating.EventTypeEstimateCreated)
	assert.Contains(t, types, estimating.EventTypeEstimateAccepted)
	assert.Contains(t, types, estimating.EventTypeEstimateExpired)
}

func TestEstimateMetricsHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("created event increments created counter", func(t *testing.T) {
		recorder := new(mockMetricsRecorder)
		handler := NewEstimateMetricsHandler(recorder, zap.NewNop())
		estimate := newMetricsHandlerEstimate(t)

		recorder.On("RecordEstimateCreated", ctx).Return()

		err := handler.Handle(ctx, estimating.NewEstimateCreatedEvent(estimate))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})

	t.Run("submitted event records pending transition only with approvers", func(t *testing.T) {
		recorder := new(mockMetricsRecorder)
		handler := NewEstimateMetricsHandler(recorder, zap.NewNop())
		estimate := newMetricsHandlerEstimate(t)

		recorder.On("RecordStatusTransition", ctx, "PENDING_APPROVAL").Return()

		err := handler.Handle(ctx, estimating.NewEstimateSubmittedEvent(estimate, []string{"sales_manager"}))
		require.NoError(t, err)

		// Auto-approved submissions carry no approvers; the approved event
		// accounts for them instead
		err = handler.Handle(ctx, estimating.NewEstimateSubmittedEvent(estimate, nil))
		require.NoError(t, err)

		recorder.AssertExpectations(t)
		recorder.AssertNumberOfCalls(t, "RecordStatusTransition", 1)
	})

	t.Run("accepted event records transition and value", func(t *testing.T) {
		recorder := new(mockMetricsRecorder)
		handler := NewEstimateMetricsHandler(recorder, zap.NewNop())
		estimate := newMetricsHandlerEstimate(t)
		estimate.TotalAmount = decimal.NewFromInt(1500)

		recorder.On("RecordStatusTransition", ctx, "ACCEPTED").Return()
		recorder.On("RecordEstimateAccepted", ctx, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(1500))
		})).Return()

		err := handler.Handle(ctx, estimating.NewEstimateAcceptedEvent(estimate))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})

	t.Run("expired event records transition", func(t *testing.T) {
		recorder := new(mockMetricsRecorder)
		handler := NewEstimateMetricsHandler(recorder, zap.NewNop())
		estimate := newMetricsHandlerEstimate(t)

		recorder.On("RecordStatusTransition", ctx, "EXPIRED").Return()

		err := handler.Handle(ctx, estimating.NewEstimateExpiredEvent(estimate))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})
}
