package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/partner"
	"github.com/machshop/backend/internal/domain/shared"
)

// CustomerService handles customer account management
type CustomerService struct {
	customers partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers partner.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		if err := customer.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.BillingAddress = req.BillingAddress
	if req.Segment != "" {
		customer.SetSegment(req.Segment)
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil {
		if err := customer.SetPaymentTerms(*req.PaymentTermsDays); err != nil {
			return nil, err
		}
	}
	customer.Notes = req.Notes
	for key, value := range req.Metadata {
		customer.SetMetadata(key, value)
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
	}

	customers, err := s.customers.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer. Segment changes affect price resolution for new
// lines only; existing estimates keep their snapshotted prices.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewValidationError("Customer name cannot be empty")
		}
		customer.Name = *req.Name
	}
	if req.Email != nil {
		if err := customer.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.BillingAddress != nil {
		customer.BillingAddress = *req.BillingAddress
	}
	if req.Segment != nil {
		customer.SetSegment(*req.Segment)
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil {
		if err := customer.SetPaymentTerms(*req.PaymentTermsDays); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			customer.Activate()
		} else {
			customer.Deactivate()
		}
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	for key, value := range req.Metadata {
		customer.SetMetadata(key, value)
	}
	customer.UpdatedAt = time.Now()

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer. Estimates keep their customer ID; history is not
// rewritten.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return err
	}
	return s.customers.Delete(ctx, id)
}
