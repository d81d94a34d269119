package estimating

import (
	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeEstimate = "Estimate"

// Event type constants
const (
	EventTypeEstimateCreated   = "EstimateCreated"
	EventTypeEstimateSubmitted = "EstimateSubmitted"
	EventTypeEstimateApproved  = "EstimateApproved"
	EventTypeEstimateRejected  = "EstimateRejected"
	EventTypeEstimateSent      = "EstimateSent"
	EventTypeEstimateAccepted  = "EstimateAccepted"
	EventTypeEstimateExpired   = "EstimateExpired"
	EventTypeEstimateRevised   = "EstimateRevised"
)

// EstimateCreatedEvent is raised when a new estimate is created
type EstimateCreatedEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID `json:"estimate_id"`
	EstimateNumber string    `json:"estimate_number"`
	Revision       int       `json:"revision"`
	CustomerID     uuid.UUID `json:"customer_id"`
}

// NewEstimateCreatedEvent creates a new EstimateCreatedEvent
func NewEstimateCreatedEvent(estimate *Estimate) *EstimateCreatedEvent {
	return &EstimateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateCreated, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
		CustomerID:      estimate.CustomerID,
	}
}

// EventType returns the event type name
func (e *EstimateCreatedEvent) EventType() string {
	return EventTypeEstimateCreated
}

// EstimateSubmittedEvent is raised when an estimate leaves DRAFT.
// PendingApprovers is empty when the estimate auto-approved.
type EstimateSubmittedEvent struct {
	shared.BaseDomainEvent
	EstimateID       uuid.UUID       `json:"estimate_id"`
	EstimateNumber   string          `json:"estimate_number"`
	Revision         int             `json:"revision"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`
	PendingApprovers []string        `json:"pending_approvers,omitempty"`
}

// NewEstimateSubmittedEvent creates a new EstimateSubmittedEvent
func NewEstimateSubmittedEvent(estimate *Estimate, pendingApprovers []string) *EstimateSubmittedEvent {
	return &EstimateSubmittedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeEstimateSubmitted, AggregateTypeEstimate, estimate.ID),
		EstimateID:       estimate.ID,
		EstimateNumber:   estimate.EstimateNumber,
		Revision:         estimate.Revision,
		CustomerID:       estimate.CustomerID,
		TotalAmount:      estimate.TotalAmount,
		MarginPercent:    estimate.MarginPercent,
		PendingApprovers: pendingApprovers,
	}
}

// EventType returns the event type name
func (e *EstimateSubmittedEvent) EventType() string {
	return EventTypeEstimateSubmitted
}

// EstimateApprovedEvent is raised when an estimate is approved.
// ApprovedBy is nil for auto-approvals.
type EstimateApprovedEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID  `json:"estimate_id"`
	EstimateNumber string     `json:"estimate_number"`
	Revision       int        `json:"revision"`
	ApprovedBy     *uuid.UUID `json:"approved_by,omitempty"`
	Comment        string     `json:"comment,omitempty"`
}

// NewEstimateApprovedEvent creates a new EstimateApprovedEvent
func NewEstimateApprovedEvent(estimate *Estimate, approvedBy *uuid.UUID, comment string) *EstimateApprovedEvent {
	return &EstimateApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateApproved, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
		ApprovedBy:      approvedBy,
		Comment:         comment,
	}
}

// EventType returns the event type name
func (e *EstimateApprovedEvent) EventType() string {
	return EventTypeEstimateApproved
}

// EstimateRejectedEvent is raised when an estimate is rejected
type EstimateRejectedEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID `json:"estimate_id"`
	EstimateNumber string    `json:"estimate_number"`
	Revision       int       `json:"revision"`
	Reason         string    `json:"reason"`
}

// NewEstimateRejectedEvent creates a new EstimateRejectedEvent
func NewEstimateRejectedEvent(estimate *Estimate, reason string) *EstimateRejectedEvent {
	return &EstimateRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateRejected, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *EstimateRejectedEvent) EventType() string {
	return EventTypeEstimateRejected
}

// EstimateSentEvent is raised when an estimate is sent to the customer
type EstimateSentEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID       `json:"estimate_id"`
	EstimateNumber string          `json:"estimate_number"`
	Revision       int             `json:"revision"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// NewEstimateSentEvent creates a new EstimateSentEvent
func NewEstimateSentEvent(estimate *Estimate) *EstimateSentEvent {
	return &EstimateSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateSent, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
		CustomerID:      estimate.CustomerID,
		TotalAmount:     estimate.TotalAmount,
	}
}

// EventType returns the event type name
func (e *EstimateSentEvent) EventType() string {
	return EventTypeEstimateSent
}

// EstimateAcceptedEvent is raised when the customer accepts an estimate.
// Downstream contexts convert accepted estimates into orders.
type EstimateAcceptedEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID       `json:"estimate_id"`
	EstimateNumber string          `json:"estimate_number"`
	Revision       int             `json:"revision"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// NewEstimateAcceptedEvent creates a new EstimateAcceptedEvent
func NewEstimateAcceptedEvent(estimate *Estimate) *EstimateAcceptedEvent {
	return &EstimateAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateAccepted, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
		CustomerID:      estimate.CustomerID,
		TotalAmount:     estimate.TotalAmount,
	}
}

// EventType returns the event type name
func (e *EstimateAcceptedEvent) EventType() string {
	return EventTypeEstimateAccepted
}

// EstimateExpiredEvent is raised when an estimate passes its validity window
type EstimateExpiredEvent struct {
	shared.BaseDomainEvent
	EstimateID     uuid.UUID `json:"estimate_id"`
	EstimateNumber string    `json:"estimate_number"`
	Revision       int       `json:"revision"`
}

// NewEstimateExpiredEvent creates a new EstimateExpiredEvent
func NewEstimateExpiredEvent(estimate *Estimate) *EstimateExpiredEvent {
	return &EstimateExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateExpired, AggregateTypeEstimate, estimate.ID),
		EstimateID:      estimate.ID,
		EstimateNumber:  estimate.EstimateNumber,
		Revision:        estimate.Revision,
	}
}

// EventType returns the event type name
func (e *EstimateExpiredEvent) EventType() string {
	return EventTypeEstimateExpired
}

// EstimateRevisedEvent is raised on the new revision when an estimate is
// revised
type EstimateRevisedEvent struct {
	shared.BaseDomainEvent
	OriginalID     uuid.UUID `json:"original_id"`
	RevisionID     uuid.UUID `json:"revision_id"`
	EstimateNumber string    `json:"estimate_number"`
	FromRevision   int       `json:"from_revision"`
	ToRevision     int       `json:"to_revision"`
}

// NewEstimateRevisedEvent creates a new EstimateRevisedEvent
func NewEstimateRevisedEvent(original, revision *Estimate) *EstimateRevisedEvent {
	return &EstimateRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateRevised, AggregateTypeEstimate, revision.ID),
		OriginalID:      original.ID,
		RevisionID:      revision.ID,
		EstimateNumber:  revision.EstimateNumber,
		FromRevision:    original.Revision,
		ToRevision:      revision.Revision,
	}
}

// EventType returns the event type name
func (e *EstimateRevisedEvent) EventType() string {
	return EventTypeEstimateRevised
}
