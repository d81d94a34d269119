package partner

import (
	"net/mail"
	"strings"
	"time"

	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Recognized Metadata keys. The metadata bag is a typed string map rather
// than free-form JSON; unknown keys are persisted but ignored by the engine.
const (
	MetaKeyIndustry  = "industry"
	MetaKeySource    = "source"
	MetaKeyTaxExempt = "tax_exempt"
)

// Customer represents a customer account.
// Segment feeds price-book resolution; PaymentTermsDays feeds the
// payment_terms_above approval hook.
type Customer struct {
	shared.BaseAggregateRoot
	Name             string            `gorm:"type:varchar(255);not null"`
	Email            string            `gorm:"type:varchar(255)"`
	Phone            string            `gorm:"type:varchar(50)"`
	Address          string            `gorm:"type:text"`
	BillingAddress   string            `gorm:"type:text"`
	Segment          string            `gorm:"type:varchar(50);index"`
	CreditLimit      *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	PaymentTermsDays int               `gorm:"not null;default:30"`
	Active           bool              `gorm:"not null;default:true"`
	Notes            string            `gorm:"type:text"`
	Metadata         map[string]string `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		PaymentTermsDays:  30,
		Active:            true,
		Metadata:          make(map[string]string),
	}, nil
}

// SetEmail sets the contact email after validating its format
func (c *Customer) SetEmail(email string) error {
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
		}
	}
	c.Email = email
	c.UpdatedAt = time.Now()
	return nil
}

// SetSegment tags the customer with a pricing segment (e.g. "wholesale")
func (c *Customer) SetSegment(segment string) {
	c.Segment = segment
	c.UpdatedAt = time.Now()
}

// SetPaymentTerms sets the payment terms in days
func (c *Customer) SetPaymentTerms(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	c.PaymentTermsDays = days
	c.UpdatedAt = time.Now()
	return nil
}

// SetCreditLimit sets the credit limit; nil clears it
func (c *Customer) SetCreditLimit(limit *decimal.Decimal) error {
	if limit != nil && limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	return nil
}

// SetMetadata sets a recognized metadata key
func (c *Customer) SetMetadata(key, value string) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
	c.UpdatedAt = time.Now()
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// Activate marks the customer active
func (c *Customer) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
}
