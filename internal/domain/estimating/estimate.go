package estimating

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/machshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EstimateStatus represents the lifecycle state of an estimate
type EstimateStatus string

const (
	EstimateStatusDraft           EstimateStatus = "DRAFT"
	EstimateStatusPendingApproval EstimateStatus = "PENDING_APPROVAL"
	EstimateStatusApproved        EstimateStatus = "APPROVED"
	EstimateStatusSent            EstimateStatus = "SENT"
	EstimateStatusAccepted        EstimateStatus = "ACCEPTED"
	EstimateStatusRejected        EstimateStatus = "REJECTED"
	EstimateStatusExpired         EstimateStatus = "EXPIRED"
)

// IsValid checks if the status is a valid EstimateStatus
func (s EstimateStatus) IsValid() bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusPendingApproval, EstimateStatusApproved,
		EstimateStatusSent, EstimateStatusAccepted, EstimateStatusRejected, EstimateStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of EstimateStatus
func (s EstimateStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// REJECTED has no outgoing transition here; a rejected estimate only moves
// forward through a new revision.
func (s EstimateStatus) CanTransitionTo(target EstimateStatus) bool {
	switch s {
	case EstimateStatusDraft:
		return target == EstimateStatusPendingApproval || target == EstimateStatusApproved ||
			target == EstimateStatusExpired
	case EstimateStatusPendingApproval:
		return target == EstimateStatusApproved || target == EstimateStatusRejected
	case EstimateStatusApproved:
		return target == EstimateStatusSent || target == EstimateStatusExpired
	case EstimateStatusSent:
		return target == EstimateStatusAccepted || target == EstimateStatusExpired
	case EstimateStatusAccepted, EstimateStatusRejected, EstimateStatusExpired:
		return false // Terminal for same-record transitions
	}
	return false
}

// EstimateLineItem represents a line on an estimate. Catalog lines reference
// an item and carry resolved pricing plus an ATP snapshot; free-text lines
// have no item reference and keep the caller-supplied price.
type EstimateLineItem struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	EstimateID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID       *uuid.UUID       `gorm:"type:uuid;index"`
	Description  string           `gorm:"type:varchar(500);not null"`
	Quantity     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ListPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountPct  decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	LineTotal    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	PriceSource  PriceSource      `gorm:"type:varchar(20)"`
	SortOrder    int              `gorm:"not null;default:0"`
	ATPStatus    *ATPStatus       `gorm:"type:varchar(20)"`
	AvailableQty *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ShortageQty  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	LeadTimeDays *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (EstimateLineItem) TableName() string {
	return "estimate_line_items"
}

// LineInput carries the caller-controlled fields of a line. Pricing fields
// (UnitPrice, ListPrice, UnitCost, PriceSource) are resolved by the
// application layer for catalog lines; free-text lines take UnitPrice as
// supplied.
type LineInput struct {
	ItemID      *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	ListPrice   decimal.Decimal
	UnitCost    decimal.Decimal
	DiscountPct decimal.Decimal
	PriceSource PriceSource
	SortOrder   int
}

func newEstimateLineItem(estimateID uuid.UUID, input LineInput) (*EstimateLineItem, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if input.DiscountPct.IsNegative() || input.DiscountPct.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount must be a fraction between 0 and 1")
	}

	now := time.Now()
	line := &EstimateLineItem{
		ID:          uuid.New(),
		EstimateID:  estimateID,
		ItemID:      input.ItemID,
		Description: input.Description,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		ListPrice:   input.ListPrice,
		UnitCost:    input.UnitCost,
		DiscountPct: input.DiscountPct,
		PriceSource: input.PriceSource,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	line.recalculate()
	return line, nil
}

// recalculate recomputes the line total from quantity, price and discount.
// DiscountPct is a fraction: 0.10 takes ten percent off the unit price.
func (l *EstimateLineItem) recalculate() {
	discountFactor := decimal.NewFromInt(1).Sub(l.DiscountPct)
	l.LineTotal = l.Quantity.Mul(l.UnitPrice).Mul(discountFactor).Round(2)
}

// ApplyAvailability stamps an ATP snapshot on the line
func (l *EstimateLineItem) ApplyAvailability(avail Availability) {
	status := avail.Status
	available := avail.AvailableQty
	shortage := avail.ShortageQty
	lead := avail.LeadTimeDays

	l.ATPStatus = &status
	l.AvailableQty = &available
	l.ShortageQty = &shortage
	l.LeadTimeDays = &lead
	l.UpdatedAt = time.Now()
}

// clearAvailability resets the ATP snapshot, used when a revision clones the
// line and when the quantity changes
func (l *EstimateLineItem) clearAvailability() {
	l.ATPStatus = nil
	l.AvailableQty = nil
	l.ShortageQty = nil
	l.LeadTimeDays = nil
}

// ExtendedCost returns unit cost times quantity
func (l *EstimateLineItem) ExtendedCost() decimal.Decimal {
	return l.UnitCost.Mul(l.Quantity)
}

// Estimate represents a quote aggregate root. It manages the quote lifecycle
// from draft through approval, sending and acceptance, and owns its line
// items. Revisions of the same quote share the estimate number and differ by
// the Revision counter.
type Estimate struct {
	shared.BaseAggregateRoot
	EstimateNumber        string               `gorm:"type:varchar(30);not null;uniqueIndex:idx_estimate_number_revision"`
	Revision              int                  `gorm:"not null;default:1;uniqueIndex:idx_estimate_number_revision"`
	CustomerID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	PriceBookID           *uuid.UUID           `gorm:"type:uuid"`
	Status                EstimateStatus       `gorm:"type:varchar(20);not null;index"`
	CurrencyCode          valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	LineItems             []EstimateLineItem   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	Subtotal              decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount             decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount           decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	MarginPercent         decimal.Decimal      `gorm:"type:decimal(7,4);not null;default:0"`
	RequestedDeliveryDate *time.Time           `gorm:"type:date"`
	EarliestDeliveryDate  *time.Time           `gorm:"type:date"`
	DeliveryFeasible      bool                 `gorm:"not null;default:true"`
	ValidUntil            *time.Time           `gorm:"type:date"`
	PendingApprovers      []string             `gorm:"type:jsonb;serializer:json"`
	ApprovedBy            *uuid.UUID           `gorm:"type:uuid"`
	ApprovedAt            *time.Time
	ApprovalComment       string     `gorm:"type:text"`
	RejectionReason       string     `gorm:"type:text"`
	SentAt                *time.Time
	AcceptedAt            *time.Time
	ExpiredAt             *time.Time
	ParentEstimateID      *uuid.UUID        `gorm:"type:uuid;index"`
	SupersededByID        *uuid.UUID        `gorm:"type:uuid"`
	Notes                 string            `gorm:"type:text"`
	Metadata              map[string]string `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Estimate) TableName() string {
	return "estimates"
}

// NewEstimate creates a new first-revision estimate. The estimate number is
// assigned by the caller from the date-scoped sequence.
func NewEstimate(estimateNumber string, customerID uuid.UUID) (*Estimate, error) {
	if estimateNumber == "" {
		return nil, shared.NewDomainError("INVALID_ESTIMATE_NUMBER", "Estimate number cannot be empty")
	}
	if len(estimateNumber) > 30 {
		return nil, shared.NewDomainError("INVALID_ESTIMATE_NUMBER", "Estimate number cannot exceed 30 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	estimate := &Estimate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EstimateNumber:    estimateNumber,
		Revision:          1,
		CustomerID:        customerID,
		Status:            EstimateStatusDraft,
		CurrencyCode:      valueobject.DefaultCurrency,
		LineItems:         make([]EstimateLineItem, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		MarginPercent:     decimal.Zero,
		DeliveryFeasible:  true,
	}

	estimate.AddDomainEvent(NewEstimateCreatedEvent(estimate))

	return estimate, nil
}

// SetRequestedDeliveryDate sets the customer's requested delivery date.
// Only allowed in DRAFT status.
func (e *Estimate) SetRequestedDeliveryDate(date *time.Time) error {
	if e.Status != EstimateStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery date on a non-draft estimate")
	}
	e.RequestedDeliveryDate = date
	e.UpdatedAt = time.Now()
	return nil
}

// SetPriceBook records which price book governed this estimate's pricing.
// Only allowed in DRAFT status.
func (e *Estimate) SetPriceBook(priceBookID *uuid.UUID) error {
	if e.Status != EstimateStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change price book on a non-draft estimate")
	}
	e.PriceBookID = priceBookID
	e.UpdatedAt = time.Now()
	return nil
}

// SetValidUntil sets the quote expiry date
func (e *Estimate) SetValidUntil(date time.Time) {
	e.ValidUntil = &date
	e.UpdatedAt = time.Now()
}

// SetNotes sets the estimate notes
func (e *Estimate) SetNotes(notes string) {
	e.Notes = notes
	e.UpdatedAt = time.Now()
}

// SetMetadata sets a metadata key, initializing the map on first use
func (e *Estimate) SetMetadata(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return shared.NewDomainError("INVALID_METADATA", "Metadata key cannot be empty")
	}
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	e.UpdatedAt = time.Now()
	return nil
}

// AddLine adds a line item. Only allowed in DRAFT status. The caller then
// runs Recalculate with refreshed availability.
func (e *Estimate) AddLine(input LineInput) (*EstimateLineItem, error) {
	if e.Status != EstimateStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft estimate")
	}

	if input.SortOrder == 0 {
		input.SortOrder = len(e.LineItems) + 1
	}
	line, err := newEstimateLineItem(e.ID, input)
	if err != nil {
		return nil, err
	}

	e.LineItems = append(e.LineItems, *line)
	e.UpdatedAt = time.Now()

	return &e.LineItems[len(e.LineItems)-1], nil
}

// UpdateLine replaces the caller-controlled fields of an existing line.
// Only allowed in DRAFT status. The ATP snapshot is cleared and must be
// recomputed by the caller.
func (e *Estimate) UpdateLine(lineID uuid.UUID, input LineInput) (*EstimateLineItem, error) {
	if e.Status != EstimateStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot update lines on a non-draft estimate")
	}

	for idx := range e.LineItems {
		if e.LineItems[idx].ID != lineID {
			continue
		}
		line := &e.LineItems[idx]

		if strings.TrimSpace(input.Description) == "" {
			return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
		}
		if input.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if input.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		if input.DiscountPct.IsNegative() || input.DiscountPct.GreaterThan(decimal.NewFromInt(1)) {
			return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount must be a fraction between 0 and 1")
		}

		line.ItemID = input.ItemID
		line.Description = input.Description
		line.Quantity = input.Quantity
		line.UnitPrice = input.UnitPrice
		line.ListPrice = input.ListPrice
		line.UnitCost = input.UnitCost
		line.DiscountPct = input.DiscountPct
		line.PriceSource = input.PriceSource
		if input.SortOrder != 0 {
			line.SortOrder = input.SortOrder
		}
		line.recalculate()
		line.clearAvailability()
		line.UpdatedAt = time.Now()
		e.UpdatedAt = time.Now()
		return line, nil
	}

	return nil, shared.NewDomainError("LINE_NOT_FOUND", "Estimate line item not found")
}

// RemoveLine removes a line item. Only allowed in DRAFT status.
func (e *Estimate) RemoveLine(lineID uuid.UUID) error {
	if e.Status != EstimateStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft estimate")
	}

	for idx, line := range e.LineItems {
		if line.ID == lineID {
			e.LineItems = append(e.LineItems[:idx], e.LineItems[idx+1:]...)
			e.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Estimate line item not found")
}

// GetLine returns a line item by its ID
func (e *Estimate) GetLine(lineID uuid.UUID) *EstimateLineItem {
	for idx := range e.LineItems {
		if e.LineItems[idx].ID == lineID {
			return &e.LineItems[idx]
		}
	}
	return nil
}

// Recalculate recomputes subtotal, tax, total and margin from the current
// line items. Margin is zero when the subtotal is zero. Idempotent: repeated
// calls without intervening mutation yield identical figures.
func (e *Estimate) Recalculate(tax TaxPolicy) {
	subtotal := decimal.Zero
	totalCost := decimal.Zero
	for idx := range e.LineItems {
		subtotal = subtotal.Add(e.LineItems[idx].LineTotal)
		totalCost = totalCost.Add(e.LineItems[idx].ExtendedCost())
	}

	e.Subtotal = subtotal
	e.TaxAmount = tax.TaxOn(subtotal)
	e.TotalAmount = subtotal.Add(e.TaxAmount)

	if subtotal.IsZero() {
		e.MarginPercent = decimal.Zero
	} else {
		e.MarginPercent = subtotal.Sub(totalCost).Div(subtotal).Round(4)
	}
	e.UpdatedAt = time.Now()
}

// ApplyDelivery stamps per-line ATP snapshots and the aggregate delivery
// answer on the estimate
func (e *Estimate) ApplyDelivery(delivery DeliveryEstimate, lineAvail []LineAvailability) {
	byLine := make(map[uuid.UUID]Availability, len(lineAvail))
	for _, la := range lineAvail {
		byLine[la.LineID] = la.Availability
	}
	for idx := range e.LineItems {
		if avail, ok := byLine[e.LineItems[idx].ID]; ok {
			e.LineItems[idx].ApplyAvailability(avail)
		}
	}

	earliest := delivery.EarliestDate
	e.EarliestDeliveryDate = &earliest
	e.DeliveryFeasible = delivery.Feasible
	e.UpdatedAt = time.Now()
}

// Submit transitions the estimate out of DRAFT. With triggered approval
// rules it moves to PENDING_APPROVAL and records the distinct approver
// roles; with none it auto-approves.
func (e *Estimate) Submit(triggered []*ApprovalRule) error {
	if e.Status != EstimateStatusDraft {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusPendingApproval.String())
	}
	if len(e.LineItems) == 0 {
		return shared.NewValidationError("Cannot submit an estimate without line items")
	}
	if !e.DeliveryFeasible {
		earliest := time.Time{}
		requested := time.Time{}
		if e.EarliestDeliveryDate != nil {
			earliest = *e.EarliestDeliveryDate
		}
		if e.RequestedDeliveryDate != nil {
			requested = *e.RequestedDeliveryDate
		}
		return shared.NewInfeasibleDeliveryError(earliest, requested)
	}

	now := time.Now()
	if len(triggered) > 0 {
		e.Status = EstimateStatusPendingApproval
		e.PendingApprovers = ApproverRoles(triggered)
		e.AddDomainEvent(NewEstimateSubmittedEvent(e, e.PendingApprovers))
	} else {
		e.Status = EstimateStatusApproved
		approvedAt := now
		e.ApprovedAt = &approvedAt
		e.AddDomainEvent(NewEstimateSubmittedEvent(e, nil))
		e.AddDomainEvent(NewEstimateApprovedEvent(e, nil, "auto-approved"))
	}
	e.UpdatedAt = now

	return nil
}

// Approve transitions a pending estimate to APPROVED, recording who approved
// it and when
func (e *Estimate) Approve(approverID uuid.UUID, comment string) error {
	if !e.Status.CanTransitionTo(EstimateStatusApproved) || e.Status != EstimateStatusPendingApproval {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusApproved.String())
	}

	now := time.Now()
	e.Status = EstimateStatusApproved
	e.ApprovedBy = &approverID
	e.ApprovedAt = &now
	e.ApprovalComment = comment
	e.PendingApprovers = nil
	e.UpdatedAt = now

	e.AddDomainEvent(NewEstimateApprovedEvent(e, &approverID, comment))

	return nil
}

// Reject transitions a pending estimate to REJECTED. A non-empty reason is
// required.
func (e *Estimate) Reject(reason string) error {
	if e.Status != EstimateStatusPendingApproval {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusRejected.String())
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("Rejection reason is required")
	}

	now := time.Now()
	e.Status = EstimateStatusRejected
	e.RejectionReason = reason
	e.PendingApprovers = nil
	e.UpdatedAt = now

	e.AddDomainEvent(NewEstimateRejectedEvent(e, reason))

	return nil
}

// Send marks an approved estimate as sent to the customer
func (e *Estimate) Send() error {
	if e.Status != EstimateStatusApproved {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusSent.String())
	}

	now := time.Now()
	e.Status = EstimateStatusSent
	e.SentAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewEstimateSentEvent(e))

	return nil
}

// Accept marks a sent estimate as accepted by the customer
func (e *Estimate) Accept() error {
	if e.Status != EstimateStatusSent {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusAccepted.String())
	}

	now := time.Now()
	e.Status = EstimateStatusAccepted
	e.AcceptedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewEstimateAcceptedEvent(e))

	return nil
}

// MarkExpired expires an estimate whose validity window has passed. Allowed
// from DRAFT, APPROVED and SENT.
func (e *Estimate) MarkExpired() error {
	if !e.Status.CanTransitionTo(EstimateStatusExpired) {
		return shared.NewInvalidTransitionError(e.Status.String(), EstimateStatusExpired.String())
	}

	now := time.Now()
	e.Status = EstimateStatusExpired
	e.ExpiredAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewEstimateExpiredEvent(e))

	return nil
}

// NewRevision creates the next revision of this estimate: same number,
// Revision+1, status DRAFT, line inputs deep-cloned with pricing kept but
// ATP snapshots cleared for fresh recomputation. Allowed from SENT and
// REJECTED. The receiver is marked superseded; its own status and lines are
// left untouched as read-only history.
func (e *Estimate) NewRevision() (*Estimate, error) {
	if e.Status != EstimateStatusSent && e.Status != EstimateStatusRejected {
		return nil, shared.NewInvalidTransitionError(e.Status.String(), "revise")
	}
	if e.SupersededByID != nil {
		return nil, shared.NewDomainError("ALREADY_SUPERSEDED", "Estimate has already been revised")
	}

	now := time.Now()
	revision := &Estimate{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		EstimateNumber:        e.EstimateNumber,
		Revision:              e.Revision + 1,
		CustomerID:            e.CustomerID,
		PriceBookID:           e.PriceBookID,
		Status:                EstimateStatusDraft,
		CurrencyCode:          e.CurrencyCode,
		RequestedDeliveryDate: e.RequestedDeliveryDate,
		DeliveryFeasible:      true,
		ValidUntil:            e.ValidUntil,
		ParentEstimateID:      &e.ID,
		Notes:                 e.Notes,
		LineItems:             make([]EstimateLineItem, 0, len(e.LineItems)),
	}
	if e.Metadata != nil {
		revision.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			revision.Metadata[k] = v
		}
	}

	for idx := range e.LineItems {
		src := &e.LineItems[idx]
		clone := EstimateLineItem{
			ID:          uuid.New(),
			EstimateID:  revision.ID,
			ItemID:      src.ItemID,
			Description: src.Description,
			Quantity:    src.Quantity,
			UnitPrice:   src.UnitPrice,
			ListPrice:   src.ListPrice,
			UnitCost:    src.UnitCost,
			DiscountPct: src.DiscountPct,
			PriceSource: src.PriceSource,
			SortOrder:   src.SortOrder,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		clone.recalculate()
		revision.LineItems = append(revision.LineItems, clone)
	}

	e.SupersededByID = &revision.ID
	e.UpdatedAt = now

	revision.AddDomainEvent(NewEstimateRevisedEvent(e, revision))

	return revision, nil
}

// LineCount returns the number of line items
func (e *Estimate) LineCount() int {
	return len(e.LineItems)
}

// IsDraft returns true if the estimate is in draft status
func (e *Estimate) IsDraft() bool {
	return e.Status == EstimateStatusDraft
}

// IsTerminal returns true if no same-record transition can leave the current
// status
func (e *Estimate) IsTerminal() bool {
	return e.Status == EstimateStatusAccepted || e.Status == EstimateStatusRejected ||
		e.Status == EstimateStatusExpired
}

// CanModify returns true if line items can still be changed
func (e *Estimate) CanModify() bool {
	return e.IsDraft()
}
