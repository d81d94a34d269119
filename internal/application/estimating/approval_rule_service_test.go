package estimating

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApprovalRuleService_Create(t *testing.T) {
	t.Run("creates a rule with default priority", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		repo.On("Save", ctx, mock.AnythingOfType("*estimating.ApprovalRule")).Return(nil)

		result, err := service.Create(ctx, CreateApprovalRuleRequest{
			Name:          "Large orders",
			ConditionType: "total_above",
			Threshold:     decimal.NewFromInt(10000),
			ApproverRole:  "director",
		})

		require.NoError(t, err)
		assert.Equal(t, "total_above", result.ConditionType)
		assert.Equal(t, 100, result.Priority)
		assert.True(t, result.Active)
		repo.AssertExpectations(t)
	})

	t.Run("honors an explicit priority", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		repo.On("Save", ctx, mock.AnythingOfType("*estimating.ApprovalRule")).Return(nil)

		priority := 10
		result, err := service.Create(ctx, CreateApprovalRuleRequest{
			Name:          "Low margin",
			ConditionType: "margin_below",
			Threshold:     decimal.RequireFromString("0.15"),
			ApproverRole:  "manager",
			Priority:      &priority,
		})

		require.NoError(t, err)
		assert.Equal(t, 10, result.Priority)
	})

	t.Run("rejects an unknown condition type", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		_, err := service.Create(ctx, CreateApprovalRuleRequest{
			Name:          "Bogus",
			ConditionType: "phase_of_moon",
			Threshold:     decimal.NewFromInt(1),
			ApproverRole:  "manager",
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestApprovalRuleService_Update(t *testing.T) {
	t.Run("updates threshold and deactivates", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		rule, err := estimating.NewApprovalRule("Low margin", estimating.ConditionMarginBelow, decimal.RequireFromString("0.15"), "manager")
		require.NoError(t, err)

		repo.On("FindByID", ctx, rule.ID).Return(rule, nil)
		repo.On("Save", ctx, rule).Return(nil)

		threshold := decimal.RequireFromString("0.20")
		inactive := false
		result, err := service.Update(ctx, rule.ID, UpdateApprovalRuleRequest{
			Threshold: &threshold,
			Active:    &inactive,
		})

		require.NoError(t, err)
		assert.True(t, threshold.Equal(result.Threshold))
		assert.False(t, result.Active)
	})

	t.Run("rejects an empty approver role", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		rule, err := estimating.NewApprovalRule("Low margin", estimating.ConditionMarginBelow, decimal.RequireFromString("0.15"), "manager")
		require.NoError(t, err)

		repo.On("FindByID", ctx, rule.ID).Return(rule, nil)

		empty := ""
		_, err = service.Update(ctx, rule.ID, UpdateApprovalRuleRequest{ApproverRole: &empty})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestApprovalRuleService_Delete(t *testing.T) {
	t.Run("deletes an existing rule", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		rule, err := estimating.NewApprovalRule("Low margin", estimating.ConditionMarginBelow, decimal.RequireFromString("0.15"), "manager")
		require.NoError(t, err)

		repo.On("FindByID", ctx, rule.ID).Return(rule, nil)
		repo.On("Delete", ctx, rule.ID).Return(nil)

		require.NoError(t, service.Delete(ctx, rule.ID))
		repo.AssertExpectations(t)
	})

	t.Run("fails for a missing rule", func(t *testing.T) {
		repo := new(MockApprovalRuleRepository)
		service := NewApprovalRuleService(repo)
		ctx := context.Background()

		ruleID := uuid.New()
		repo.On("FindByID", ctx, ruleID).Return(nil, shared.ErrNotFound)

		err := service.Delete(ctx, ruleID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
