package estimating

import (
	"context"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
)

// ApprovalRuleService handles approval rule configuration
type ApprovalRuleService struct {
	rules estimating.ApprovalRuleRepository
}

// NewApprovalRuleService creates a new ApprovalRuleService
func NewApprovalRuleService(rules estimating.ApprovalRuleRepository) *ApprovalRuleService {
	return &ApprovalRuleService{rules: rules}
}

// Create creates a new approval rule
func (s *ApprovalRuleService) Create(ctx context.Context, req CreateApprovalRuleRequest) (*ApprovalRuleResponse, error) {
	rule, err := estimating.NewApprovalRule(
		req.Name,
		estimating.ApprovalConditionType(req.ConditionType),
		req.Threshold,
		req.ApproverRole,
	)
	if err != nil {
		return nil, err
	}
	if req.Priority != nil {
		rule.SetPriority(*req.Priority)
	}

	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToApprovalRuleResponse(rule)
	return &response, nil
}

// GetByID retrieves an approval rule by ID
func (s *ApprovalRuleService) GetByID(ctx context.Context, id uuid.UUID) (*ApprovalRuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToApprovalRuleResponse(rule)
	return &response, nil
}

// List retrieves approval rules with filtering and pagination
func (s *ApprovalRuleService) List(ctx context.Context, filter shared.Filter) ([]ApprovalRuleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "priority"
		filter.OrderDir = "asc"
	}

	rules, err := s.rules.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rules.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToApprovalRuleResponses(rules), total, nil
}

// Update updates an approval rule
func (s *ApprovalRuleService) Update(ctx context.Context, id uuid.UUID, req UpdateApprovalRuleRequest) (*ApprovalRuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewValidationError("Rule name cannot be empty")
		}
		rule.Name = *req.Name
	}
	if req.Threshold != nil {
		rule.Threshold = *req.Threshold
	}
	if req.ApproverRole != nil {
		if *req.ApproverRole == "" {
			return nil, shared.NewValidationError("Approver role cannot be empty")
		}
		rule.ApproverRole = *req.ApproverRole
	}
	if req.Priority != nil {
		rule.SetPriority(*req.Priority)
	}
	if req.Active != nil {
		if *req.Active {
			rule.Activate()
		} else {
			rule.Deactivate()
		}
	}

	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToApprovalRuleResponse(rule)
	return &response, nil
}

// Delete deletes an approval rule
func (s *ApprovalRuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rules.FindByID(ctx, id); err != nil {
		return err
	}
	return s.rules.Delete(ctx, id)
}
