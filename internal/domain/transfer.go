package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a pending transfer.
type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusApproved TransferStatus = "approved"
	TransferStatusRejected TransferStatus = "rejected"

	// TransferStatusProcessing marks a transfer claimed by an in-flight
	// approval. It blocks concurrent decisions and returns to pending if
	// the approval fails.
	TransferStatusProcessing TransferStatus = "processing"
)

// TransferDirection distinguishes inbound receipts held for review from
// outbound external transfers.
type TransferDirection string

const (
	DirectionInbound  TransferDirection = "inbound"
	DirectionOutbound TransferDirection = "outbound"
)

// SecurityCheck is the recorded outcome of one named approval check.
type SecurityCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// PendingTransfer is a money movement held for a manual decision. Outbound
// transfers have their amount frozen in the owner's wallet until approved or
// rejected; inbound transfers hold no funds yet.
type PendingTransfer struct {
	ID           string
	UserID       string
	Direction    TransferDirection
	Amount       decimal.Decimal
	Currency     string
	Address      string
	Network      string
	Status       TransferStatus
	Checks       []SecurityCheck
	RiskScore    int
	ManualReview bool
	RequestedAt  time.Time
	ApprovedAt   *time.Time
	RejectedAt   *time.Time
	ApprovedBy   string
	RejectedBy   string
	RejectReason string
}

// Validate validates a transfer request.
func (t *PendingTransfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// IsPending reports whether the transfer still awaits a decision.
func (t *PendingTransfer) IsPending() bool {
	return t.Status == TransferStatusPending
}

// FailedChecks returns the names of the checks that did not pass.
func (t *PendingTransfer) FailedChecks() []string {
	var failed []string
	for _, c := range t.Checks {
		if !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}
