package estimating

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRules struct {
	rules []*ApprovalRule
}

func (s *staticRules) FindActive(_ context.Context) ([]*ApprovalRule, error) {
	active := make([]*ApprovalRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

func mustRule(t *testing.T, name string, cond ApprovalConditionType, threshold string, role string, priority int) *ApprovalRule {
	t.Helper()
	rule, err := NewApprovalRule(name, cond, decimal.RequireFromString(threshold), role)
	require.NoError(t, err)
	rule.SetPriority(priority)
	return rule
}

func TestNewApprovalRule(t *testing.T) {
	t.Run("creates rule with valid inputs", func(t *testing.T) {
		rule, err := NewApprovalRule("Low margin", ConditionMarginBelow, decimal.RequireFromString("0.15"), "manager")

		require.NoError(t, err)
		assert.Equal(t, ConditionMarginBelow, rule.ConditionType)
		assert.Equal(t, "manager", rule.ApproverRole)
		assert.True(t, rule.Active)
		assert.Equal(t, 100, rule.Priority)
	})

	t.Run("rejects unknown condition type", func(t *testing.T) {
		_, err := NewApprovalRule("Bad", ApprovalConditionType("discount_above"), decimal.Zero, "manager")
		assert.Error(t, err)
	})

	t.Run("rejects empty approver role", func(t *testing.T) {
		_, err := NewApprovalRule("Bad", ConditionTotalAbove, decimal.Zero, " ")
		assert.Error(t, err)
	})
}

func TestApprovalRule_Triggers(t *testing.T) {
	t.Run("margin_below fires under threshold", func(t *testing.T) {
		rule := mustRule(t, "Low margin", ConditionMarginBelow, "0.15", "manager", 10)

		assert.True(t, rule.Triggers(ApprovalInput{MarginPercent: decimal.RequireFromString("0.10")}))
		assert.False(t, rule.Triggers(ApprovalInput{MarginPercent: decimal.RequireFromString("0.20")}))
		assert.False(t, rule.Triggers(ApprovalInput{MarginPercent: decimal.RequireFromString("0.15")}))
	})

	t.Run("total_above fires over threshold", func(t *testing.T) {
		rule := mustRule(t, "Big deal", ConditionTotalAbove, "10000", "director", 20)

		assert.True(t, rule.Triggers(ApprovalInput{TotalAmount: decimal.NewFromInt(10001)}))
		assert.False(t, rule.Triggers(ApprovalInput{TotalAmount: decimal.NewFromInt(10000)}))
	})

	t.Run("payment_terms_above is inert without customer data", func(t *testing.T) {
		rule := mustRule(t, "Long terms", ConditionPaymentTermsAbove, "60", "finance", 30)

		assert.False(t, rule.Triggers(ApprovalInput{TotalAmount: decimal.NewFromInt(99999)}))

		terms := 90
		assert.True(t, rule.Triggers(ApprovalInput{PaymentTermsDays: &terms}))
		terms = 30
		assert.False(t, rule.Triggers(ApprovalInput{PaymentTermsDays: &terms}))
	})

	t.Run("customer_new is inert without customer data", func(t *testing.T) {
		rule := mustRule(t, "First order", ConditionCustomerNew, "0", "manager", 40)

		assert.False(t, rule.Triggers(ApprovalInput{}))

		first := true
		assert.True(t, rule.Triggers(ApprovalInput{CustomerFirstOrder: &first}))
		first = false
		assert.False(t, rule.Triggers(ApprovalInput{CustomerFirstOrder: &first}))
	})

	t.Run("inactive rule never fires", func(t *testing.T) {
		rule := mustRule(t, "Retired", ConditionTotalAbove, "0", "manager", 10)
		rule.Deactivate()

		assert.False(t, rule.Triggers(ApprovalInput{TotalAmount: decimal.NewFromInt(500)}))
	})
}

func TestApprovalEvaluator_Evaluate(t *testing.T) {
	t.Run("returns triggered rules in priority order", func(t *testing.T) {
		evaluator := NewApprovalEvaluator(&staticRules{rules: []*ApprovalRule{
			mustRule(t, "Big deal", ConditionTotalAbove, "10000", "director", 20),
			mustRule(t, "Low margin", ConditionMarginBelow, "0.15", "manager", 10),
		}})

		triggered, err := evaluator.Evaluate(context.Background(), ApprovalInput{
			TotalAmount:   decimal.NewFromInt(20000),
			MarginPercent: decimal.RequireFromString("0.10"),
		})

		require.NoError(t, err)
		require.Len(t, triggered, 2)
		assert.Equal(t, "Low margin", triggered[0].Name)
		assert.Equal(t, "Big deal", triggered[1].Name)
	})

	t.Run("empty result when nothing triggers", func(t *testing.T) {
		evaluator := NewApprovalEvaluator(&staticRules{rules: []*ApprovalRule{
			mustRule(t, "Low margin", ConditionMarginBelow, "0.15", "manager", 10),
		}})

		triggered, err := evaluator.Evaluate(context.Background(), ApprovalInput{
			TotalAmount:   decimal.NewFromInt(100),
			MarginPercent: decimal.RequireFromString("0.20"),
		})

		require.NoError(t, err)
		assert.Empty(t, triggered)
	})
}

func TestApproverRoles(t *testing.T) {
	triggered := []*ApprovalRule{
		mustRule(t, "Low margin", ConditionMarginBelow, "0.15", "manager", 10),
		mustRule(t, "Big deal", ConditionTotalAbove, "10000", "director", 20),
		mustRule(t, "Very low margin", ConditionMarginBelow, "0.05", "manager", 30),
	}

	roles := ApproverRoles(triggered)

	assert.Equal(t, []string{"manager", "director"}, roles)
}
