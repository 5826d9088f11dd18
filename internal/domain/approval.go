package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalType records how a decision was made.
type ApprovalType string

const (
	ApprovalAutomatic ApprovalType = "automatic"
	ApprovalManual    ApprovalType = "manual"
)

// ApprovalDecision is the outcome of an approval step.
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// ApprovalRecord is an immutable audit row written every time a transfer is
// approved or rejected. Append-only, keyed by user.
type ApprovalRecord struct {
	ID         string
	UserID     string
	TransferID string
	Type       ApprovalType
	Decision   ApprovalDecision
	Actor      string
	Notes      string
	CreatedAt  time.Time
}

// AutoApprovalRule is a per-user policy for instant approval of external
// transfers. Absence of a rule implies the conservative platform default.
type AutoApprovalRule struct {
	UserID            string
	CeilingUSD        decimal.Decimal
	AllowedCurrencies []string
	DailyCapUSD       *decimal.Decimal
	UpdatedAt         time.Time
}

// AllowsCurrency reports whether the rule permits a currency. An empty
// allowed set permits everything.
func (r *AutoApprovalRule) AllowsCurrency(currency string) bool {
	if len(r.AllowedCurrencies) == 0 {
		return true
	}
	for _, c := range r.AllowedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// Validate validates a rule before it is stored.
func (r *AutoApprovalRule) Validate() error {
	if r.CeilingUSD.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if r.DailyCapUSD != nil && r.DailyCapUSD.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}
