package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a journal entry.
type TransactionKind string

const (
	KindCredit TransactionKind = "credit"
	KindDebit  TransactionKind = "debit"

	// Freeze and release entries record frozen-funds movements for pending
	// external transfers. They do not change the total balance.
	KindFreeze  TransactionKind = "freeze"
	KindRelease TransactionKind = "release"
)

// TransactionTag identifies where funds came from or went to.
type TransactionTag string

const (
	TagIncoming         TransactionTag = "incoming"
	TagConversion       TransactionTag = "conversion"
	TagInternalTransfer TransactionTag = "internal-transfer"
	TagExternal         TransactionTag = "external"
)

// Transaction is a single append-only journal entry. Entries are never
// mutated after creation; they are the only way to reconstruct a balance's
// history.
type Transaction struct {
	ID               string
	UserID           string
	Kind             TransactionKind
	Amount           decimal.Decimal
	Currency         string
	ResultingBalance decimal.Decimal
	Tag              TransactionTag
	Metadata         map[string]any
	CreatedAt        time.Time
}

// Completed reports whether the entry moved the total balance. Freeze and
// release entries only shuffle funds between available and frozen.
func (t *Transaction) Completed() bool {
	return t.Kind == KindCredit || t.Kind == KindDebit
}

// Validate validates a journal entry before it is appended.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}
