package estimating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/catalog"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/partner"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/machshop/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// EstimateService orchestrates the estimate lifecycle: pricing resolution,
// ATP recomputation, totals recalculation and state transitions, all saved
// under the aggregate's optimistic lock.
type EstimateService struct {
	estimates      estimating.EstimateRepository
	items          catalog.ItemRepository
	customers      partner.CustomerRepository
	resolver       *estimating.PricingResolver
	checker        *estimating.AvailabilityChecker
	evaluator      *estimating.ApprovalEvaluator
	tax            estimating.TaxPolicy
	clock          shared.Clock
	validityDays   int
	eventPublisher shared.EventPublisher
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(
	estimates estimating.EstimateRepository,
	items catalog.ItemRepository,
	customers partner.CustomerRepository,
	resolver *estimating.PricingResolver,
	checker *estimating.AvailabilityChecker,
	evaluator *estimating.ApprovalEvaluator,
	tax estimating.TaxPolicy,
	clock shared.Clock,
	validityDays int,
) *EstimateService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if validityDays <= 0 {
		validityDays = 30
	}
	return &EstimateService{
		estimates:    estimates,
		items:        items,
		customers:    customers,
		resolver:     resolver,
		checker:      checker,
		evaluator:    evaluator,
		tax:          tax,
		clock:        clock,
		validityDays: validityDays,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *EstimateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new estimate, resolving prices and availability for any
// initial lines
func (s *EstimateService) Create(ctx context.Context, req CreateEstimateRequest) (*EstimateResponse, error) {
	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	number, err := s.estimates.NextEstimateNumber(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	estimate, err := estimating.NewEstimate(number, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if req.RequestedDeliveryDate != nil {
		if err := estimate.SetRequestedDeliveryDate(req.RequestedDeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		estimate.SetNotes(req.Notes)
	}
	for key, value := range req.Metadata {
		if err := estimate.SetMetadata(key, value); err != nil {
			return nil, err
		}
	}
	estimate.SetValidUntil(s.clock.Now().AddDate(0, 0, s.validityDays))

	for _, input := range req.Lines {
		if err := s.addResolvedLine(ctx, estimate, input); err != nil {
			return nil, err
		}
	}

	if err := s.refresh(ctx, estimate); err != nil {
		return nil, err
	}

	if err := s.saveWithFreshNumber(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// saveWithFreshNumber persists a new estimate, regenerating the number on a
// unique-index collision. Concurrent creators can both read the same max
// sequence; the loser just takes the next one.
func (s *EstimateService) saveWithFreshNumber(ctx context.Context, estimate *estimating.Estimate) error {
	const maxNumberAttempts = 3

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		if err = s.estimates.Save(ctx, estimate); !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		number, numErr := s.estimates.NextEstimateNumber(ctx, s.clock.Now())
		if numErr != nil {
			return numErr
		}
		estimate.EstimateNumber = number
	}
	return err
}

// GetByID retrieves an estimate by ID
func (s *EstimateService) GetByID(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToEstimateResponse(estimate)
	return &response, nil
}

// GetByNumber retrieves a specific revision of an estimate
func (s *EstimateService) GetByNumber(ctx context.Context, number string, revision int) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByNumber(ctx, number, revision)
	if err != nil {
		return nil, err
	}
	response := ToEstimateResponse(estimate)
	return &response, nil
}

// GetLatestByNumber retrieves the highest revision of an estimate
func (s *EstimateService) GetLatestByNumber(ctx context.Context, number string) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindLatestByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToEstimateResponse(estimate)
	return &response, nil
}

// VersionHistory retrieves all revisions sharing an estimate number
func (s *EstimateService) VersionHistory(ctx context.Context, number string) ([]EstimateListItemResponse, error) {
	revisions, err := s.estimates.FindRevisions(ctx, number)
	if err != nil {
		return nil, err
	}
	return ToEstimateListItemResponses(revisions), nil
}

// List retrieves estimates with filtering and pagination
func (s *EstimateService) List(ctx context.Context, filter EstimateListFilter) ([]EstimateListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	estimates, err := s.estimates.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.estimates.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToEstimateListItemResponses(estimates), total, nil
}

// Update updates estimate header fields (only in DRAFT status)
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, req UpdateEstimateRequest) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !estimate.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Estimate can only be modified in draft status")
	}

	if req.RequestedDeliveryDate != nil {
		if err := estimate.SetRequestedDeliveryDate(req.RequestedDeliveryDate); err != nil {
			return nil, err
		}
		// Requested date moved, feasibility must be recomputed
		if err := s.refresh(ctx, estimate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		estimate.SetNotes(*req.Notes)
	}
	if req.ValidUntil != nil {
		estimate.SetValidUntil(*req.ValidUntil)
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// AddLineItem adds a line to a draft estimate, resolves its price and
// recomputes the whole aggregate
func (s *EstimateService) AddLineItem(ctx context.Context, estimateID uuid.UUID, input LineItemInput) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	if err := s.addResolvedLine(ctx, estimate, input); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, estimate); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// UpdateLineItem updates a line on a draft estimate, re-resolving its price
// and recomputing the whole aggregate
func (s *EstimateService) UpdateLineItem(ctx context.Context, estimateID, lineID uuid.UUID, input LineItemInput) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	domainInput, err := s.resolveLineInput(ctx, estimate, input)
	if err != nil {
		return nil, err
	}
	if _, err := estimate.UpdateLine(lineID, domainInput); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, estimate); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// DeleteLineItem removes a line from a draft estimate and recomputes the
// aggregate
func (s *EstimateService) DeleteLineItem(ctx context.Context, estimateID, lineID uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	if err := estimate.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, estimate); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Submit submits a draft estimate, evaluating approval rules against the
// freshly recomputed totals
func (s *EstimateService) Submit(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "submit",
		telemetry.WithAttribute(telemetry.SpanAttrEstimateID, id))
	defer span.End()

	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Recompute pricing-dependent figures so rules judge current numbers
	if err := s.refresh(ctx, estimate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, estimate.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	input := estimating.ApprovalInput{
		TotalAmount:      estimate.TotalAmount,
		MarginPercent:    estimate.MarginPercent,
		PaymentTermsDays: &customer.PaymentTermsDays,
	}
	triggered, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := estimate.Submit(triggered); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, rule := range triggered {
		telemetry.AddEvent(span, "approval_triggered",
			telemetry.SpanAttrRuleID, rule.ID)
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEstimateNumber, estimate.EstimateNumber,
		telemetry.SpanAttrEstimateStatus, string(estimate.Status))

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Approve approves a pending estimate
func (s *EstimateService) Approve(ctx context.Context, id uuid.UUID, req ApproveEstimateRequest) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := estimate.Approve(req.ApproverID, req.Comment); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Reject rejects a pending estimate with a reason
func (s *EstimateService) Reject(ctx context.Context, id uuid.UUID, req RejectEstimateRequest) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := estimate.Reject(req.Reason); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Send marks an approved estimate as sent
func (s *EstimateService) Send(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := estimate.Send(); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Accept marks a sent estimate as accepted by the customer
func (s *EstimateService) Accept(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := estimate.Accept(); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// Expire marks an estimate expired. Used by ExpireOverdue and exposed for
// manual expiry.
func (s *EstimateService) Expire(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := estimate.MarkExpired(); err != nil {
		return nil, err
	}

	if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, estimate)

	response := ToEstimateResponse(estimate)
	return &response, nil
}

// ExpireOverdue expires every non-terminal estimate whose validity window
// has passed. Returns the number of estimates expired. Lock conflicts on
// individual estimates are skipped, not fatal.
func (s *EstimateService) ExpireOverdue(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "expire_overdue")
	defer span.End()

	overdue, err := s.estimates.FindExpirable(ctx, s.clock.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	expired := 0
	for i := range overdue {
		estimate := &overdue[i]
		if err := estimate.MarkExpired(); err != nil {
			continue
		}
		if err := s.estimates.SaveWithLock(ctx, estimate); err != nil {
			continue
		}
		s.publishEvents(ctx, estimate)
		expired++
	}
	telemetry.SetAttributes(span, "overdue", len(overdue), "expired", expired)
	return expired, nil
}

// CreateRevision creates the next revision of a sent or rejected estimate.
// The original is marked superseded in the same transaction.
func (s *EstimateService) CreateRevision(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "create_revision",
		telemetry.WithAttribute(telemetry.SpanAttrEstimateID, id))
	defer span.End()

	original, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	revision, err := original.NewRevision()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	revision.SetValidUntil(s.clock.Now().AddDate(0, 0, s.validityDays))

	// Fresh ATP for the cloned lines; prices were carried over
	if err := s.refresh(ctx, revision); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.estimates.SaveRevision(ctx, original, revision); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, revision)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEstimateNumber, revision.EstimateNumber,
		telemetry.SpanAttrRevision, revision.Revision)

	response := ToEstimateResponse(revision)
	return &response, nil
}

// Delete deletes a draft estimate and its lines
func (s *EstimateService) Delete(ctx context.Context, id uuid.UUID) error {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !estimate.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft estimates can be deleted")
	}
	return s.estimates.Delete(ctx, id)
}

// addResolvedLine resolves pricing for a line input and adds it to the
// estimate
func (s *EstimateService) addResolvedLine(ctx context.Context, estimate *estimating.Estimate, input LineItemInput) error {
	domainInput, err := s.resolveLineInput(ctx, estimate, input)
	if err != nil {
		return err
	}
	_, err = estimate.AddLine(domainInput)
	return err
}

// resolveLineInput maps a request line to a domain line input. Catalog lines
// get unit price, list price and cost resolved through the pricing
// hierarchy; free-text lines require a caller-supplied price.
func (s *EstimateService) resolveLineInput(ctx context.Context, estimate *estimating.Estimate, input LineItemInput) (estimating.LineInput, error) {
	domainInput := estimating.LineInput{
		ItemID:      input.ItemID,
		Description: input.Description,
		Quantity:    input.Quantity,
		DiscountPct: input.DiscountPct,
		SortOrder:   input.SortOrder,
	}

	if input.ItemID == nil {
		if input.UnitPrice == nil {
			return estimating.LineInput{}, shared.NewValidationError("Free-text lines require a unit price")
		}
		domainInput.UnitPrice = *input.UnitPrice
		return domainInput, nil
	}

	item, err := s.items.FindByID(ctx, *input.ItemID)
	if err != nil {
		return estimating.LineInput{}, err
	}
	if domainInput.Description == "" {
		domainInput.Description = item.Name
	}
	domainInput.UnitCost = item.CostPerUnit

	customerID := estimate.CustomerID
	resolved, err := s.resolver.ResolvePrice(ctx, *input.ItemID, &customerID, input.Quantity)
	if err != nil {
		return estimating.LineInput{}, err
	}
	domainInput.UnitPrice = resolved.UnitPrice
	domainInput.PriceSource = resolved.Source
	if resolved.PriceBookID != nil && estimate.PriceBookID == nil {
		_ = estimate.SetPriceBook(resolved.PriceBookID)
	}

	listPrice, err := s.resolver.GetListPrice(ctx, *input.ItemID)
	if err != nil {
		return estimating.LineInput{}, err
	}
	domainInput.ListPrice = listPrice

	// Explicit price overrides the resolved one (negotiated pricing)
	if input.UnitPrice != nil {
		domainInput.UnitPrice = *input.UnitPrice
		domainInput.PriceSource = ""
	}

	return domainInput, nil
}

// refresh recomputes availability, delivery and totals for the estimate
func (s *EstimateService) refresh(ctx context.Context, estimate *estimating.Estimate) error {
	lineAvail, err := s.checker.CheckLines(ctx, estimate.LineItems)
	if err != nil {
		return err
	}
	delivery := s.checker.EstimateDelivery(lineAvail, estimate.RequestedDeliveryDate)
	estimate.ApplyDelivery(delivery, lineAvail)
	estimate.Recalculate(s.tax)
	return nil
}

// publishEvents publishes pending domain events; delivery is best effort
func (s *EstimateService) publishEvents(ctx context.Context, estimate *estimating.Estimate) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range estimate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	estimate.ClearDomainEvents()
}

// Quote computes a one-off price and availability answer without persisting
// anything. Used by the REST layer for interactive quoting.
func (s *EstimateService) Quote(ctx context.Context, itemID uuid.UUID, customerID *uuid.UUID, qty decimal.Decimal) (*QuoteResponse, error) {
	resolved, err := s.resolver.ResolvePrice(ctx, itemID, customerID, qty)
	if err != nil {
		return nil, err
	}
	listPrice, err := s.resolver.GetListPrice(ctx, itemID)
	if err != nil {
		return nil, err
	}
	avail, err := s.checker.Check(ctx, itemID, qty)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		ItemID:       itemID,
		Quantity:     qty,
		UnitPrice:    resolved.UnitPrice,
		ListPrice:    listPrice,
		PriceSource:  string(resolved.Source),
		PriceBookID:  resolved.PriceBookID,
		ATPStatus:    string(avail.Status),
		AvailableQty: avail.AvailableQty,
		ShortageQty:  avail.ShortageQty,
		LeadTimeDays: avail.LeadTimeDays,
		QuotedAt:     s.clock.Now(),
	}, nil
}

// QuoteResponse is the transient answer to an interactive quote request
type QuoteResponse struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ListPrice    decimal.Decimal `json:"list_price"`
	PriceSource  string          `json:"price_source"`
	PriceBookID  *uuid.UUID      `json:"price_book_id,omitempty"`
	ATPStatus    string          `json:"atp_status"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	ShortageQty  decimal.Decimal `json:"shortage_qty"`
	LeadTimeDays int             `json:"lead_time_days"`
	QuotedAt     time.Time       `json:"quoted_at"`
}
