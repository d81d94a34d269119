package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name             string            `json:"name" binding:"required,min=1,max=255"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Address          string            `json:"address"`
	BillingAddress   string            `json:"billing_address"`
	Segment          string            `json:"segment"`
	CreditLimit      *decimal.Decimal  `json:"credit_limit"`
	PaymentTermsDays *int              `json:"payment_terms_days"`
	Notes            string            `json:"notes"`
	Metadata         map[string]string `json:"metadata"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name             *string           `json:"name"`
	Email            *string           `json:"email"`
	Phone            *string           `json:"phone"`
	Address          *string           `json:"address"`
	BillingAddress   *string           `json:"billing_address"`
	Segment          *string           `json:"segment"`
	CreditLimit      *decimal.Decimal  `json:"credit_limit"`
	PaymentTermsDays *int              `json:"payment_terms_days"`
	Active           *bool             `json:"active"`
	Notes            *string           `json:"notes"`
	Metadata         map[string]string `json:"metadata"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Address          string            `json:"address,omitempty"`
	BillingAddress   string            `json:"billing_address,omitempty"`
	Segment          string            `json:"segment,omitempty"`
	CreditLimit      *decimal.Decimal  `json:"credit_limit,omitempty"`
	PaymentTermsDays int               `json:"payment_terms_days"`
	Active           bool              `json:"active"`
	Notes            string            `json:"notes,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               customer.ID,
		Name:             customer.Name,
		Email:            customer.Email,
		Phone:            customer.Phone,
		Address:          customer.Address,
		BillingAddress:   customer.BillingAddress,
		Segment:          customer.Segment,
		CreditLimit:      customer.CreditLimit,
		PaymentTermsDays: customer.PaymentTermsDays,
		Active:           customer.Active,
		Notes:            customer.Notes,
		Metadata:         customer.Metadata,
		CreatedAt:        customer.CreatedAt,
		UpdatedAt:        customer.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of domain customers to response DTOs
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
