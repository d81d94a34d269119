package estimating

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ApprovalConditionType identifies what an approval rule compares against
type ApprovalConditionType string

const (
	ConditionMarginBelow       ApprovalConditionType = "margin_below"
	ConditionTotalAbove        ApprovalConditionType = "total_above"
	ConditionPaymentTermsAbove ApprovalConditionType = "payment_terms_above"
	ConditionCustomerNew       ApprovalConditionType = "customer_new"
)

// IsValid checks if the condition type is valid
func (c ApprovalConditionType) IsValid() bool {
	switch c {
	case ConditionMarginBelow, ConditionTotalAbove, ConditionPaymentTermsAbove, ConditionCustomerNew:
		return true
	}
	return false
}

// ApprovalRule is stateless configuration evaluated fresh against every
// submitted estimate. Lower Priority values evaluate first.
type ApprovalRule struct {
	shared.BaseAggregateRoot
	Name          string                `gorm:"type:varchar(100);not null"`
	ConditionType ApprovalConditionType `gorm:"type:varchar(30);not null"`
	Threshold     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ApproverRole  string                `gorm:"type:varchar(50);not null"`
	Priority      int                   `gorm:"not null;default:100"`
	Active        bool                  `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ApprovalRule) TableName() string {
	return "approval_rules"
}

// NewApprovalRule creates a new approval rule
func NewApprovalRule(name string, conditionType ApprovalConditionType, threshold decimal.Decimal, approverRole string) (*ApprovalRule, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Rule name cannot be empty")
	}
	if !conditionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Unknown approval condition type: "+string(conditionType))
	}
	if strings.TrimSpace(approverRole) == "" {
		return nil, shared.NewDomainError("INVALID_ROLE", "Approver role cannot be empty")
	}

	return &ApprovalRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ConditionType:     conditionType,
		Threshold:         threshold,
		ApproverRole:      approverRole,
		Priority:          100,
		Active:            true,
	}, nil
}

// SetPriority sets the evaluation priority (lower evaluates first)
func (r *ApprovalRule) SetPriority(priority int) {
	r.Priority = priority
	r.UpdatedAt = time.Now()
}

// Deactivate disables the rule without deleting it
func (r *ApprovalRule) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
}

// Activate re-enables the rule
func (r *ApprovalRule) Activate() {
	r.Active = true
	r.UpdatedAt = time.Now()
}

// ApprovalInput carries the computed figures an estimate is judged on.
// PaymentTermsDays and CustomerFirstOrder are optional collaborator data:
// when absent, the rules that depend on them do not trigger.
type ApprovalInput struct {
	TotalAmount        decimal.Decimal
	MarginPercent      decimal.Decimal
	PaymentTermsDays   *int
	CustomerFirstOrder *bool
}

// Triggers reports whether the rule fires for the given input
func (r *ApprovalRule) Triggers(input ApprovalInput) bool {
	if !r.Active {
		return false
	}
	switch r.ConditionType {
	case ConditionMarginBelow:
		return input.MarginPercent.LessThan(r.Threshold)
	case ConditionTotalAbove:
		return input.TotalAmount.GreaterThan(r.Threshold)
	case ConditionPaymentTermsAbove:
		// Policy hook. Payment terms live on the customer record; the rule
		// only fires when that data is supplied.
		if input.PaymentTermsDays == nil {
			return false
		}
		return decimal.NewFromInt(int64(*input.PaymentTermsDays)).GreaterThan(r.Threshold)
	case ConditionCustomerNew:
		// Policy hook, same treatment as payment terms.
		if input.CustomerFirstOrder == nil {
			return false
		}
		return *input.CustomerFirstOrder
	}
	return false
}

// ApprovalEvaluator decides whether a submitted estimate requires human
// approval and which roles must sign off.
type ApprovalEvaluator struct {
	rules ApprovalRuleReader
}

// ApprovalRuleReader provides the active rule set
type ApprovalRuleReader interface {
	FindActive(ctx context.Context) ([]*ApprovalRule, error)
}

// NewApprovalEvaluator creates a new approval evaluator
func NewApprovalEvaluator(rules ApprovalRuleReader) *ApprovalEvaluator {
	return &ApprovalEvaluator{rules: rules}
}

// Evaluate returns the triggered rules in priority order. An empty result
// means the estimate auto-approves on submission.
func (e *ApprovalEvaluator) Evaluate(ctx context.Context, input ApprovalInput) ([]*ApprovalRule, error) {
	active, err := e.rules.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	triggered := make([]*ApprovalRule, 0)
	for _, rule := range active {
		if rule.Triggers(input) {
			triggered = append(triggered, rule)
		}
	}
	sort.SliceStable(triggered, func(i, j int) bool {
		return triggered[i].Priority < triggered[j].Priority
	})
	return triggered, nil
}

// ApproverRoles extracts the distinct approver roles from triggered rules,
// preserving first-seen (priority) order.
func ApproverRoles(triggered []*ApprovalRule) []string {
	seen := make(map[string]struct{}, len(triggered))
	roles := make([]string, 0, len(triggered))
	for _, rule := range triggered {
		if _, ok := seen[rule.ApproverRole]; ok {
			continue
		}
		seen[rule.ApproverRole] = struct{}{}
		roles = append(roles, rule.ApproverRole)
	}
	return roles
}
