package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
)

// WalletRepository is the authoritative store of per-user balances. Update
// and UpdatePair run fn under the owning user's lock so multi-step
// read-modify-write sequences never interleave for one user. Operations on
// different users proceed in parallel.
type WalletRepository interface {
	// Get returns a read-only snapshot of a user's wallet, creating an
	// empty wallet if none exists.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)

	// Update runs fn with exclusive access to the user's wallet. If fn
	// returns an error the wallet is restored to its prior state.
	Update(ctx context.Context, userID string, fn func(w *domain.Wallet) error) error

	// UpdatePair runs fn with exclusive access to both wallets, acquiring
	// the locks in a deterministic order to prevent deadlocks.
	UpdatePair(ctx context.Context, userA, userB string, fn func(a, b *domain.Wallet) error) error
}

// TransactionRepository is the append-only journal of balance changes.
type TransactionRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.Transaction, error)
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
}

// TransferRepository stores pending transfers awaiting approval.
type TransferRepository interface {
	Create(ctx context.Context, transfer *domain.PendingTransfer) error
	GetByID(ctx context.Context, id string) (*domain.PendingTransfer, error)

	// Update runs fn with exclusive access to the transfer so status
	// transitions are checked and applied atomically.
	Update(ctx context.Context, id string, fn func(t *domain.PendingTransfer) error) error

	// ListPending returns pending transfers, optionally filtered by user
	// (empty userID means all users).
	ListPending(ctx context.Context, userID string) ([]*domain.PendingTransfer, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.PendingTransfer, error)
}

// ApprovalRepository stores immutable approval audit records.
type ApprovalRepository interface {
	Append(ctx context.Context, record *domain.ApprovalRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ApprovalRecord, error)
}

// ConversionRepository stores append-only conversion records.
type ConversionRepository interface {
	Append(ctx context.Context, conversion *domain.Conversion) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Conversion, error)
}

// RuleRepository stores per-user auto-approval rules.
type RuleRepository interface {
	Set(ctx context.Context, rule *domain.AutoApprovalRule) error
	// Get returns nil with no error when the user has no rule.
	Get(ctx context.Context, userID string) (*domain.AutoApprovalRule, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RateSource resolves a conversion rate between two currencies.
type RateSource interface {
	Rate(from, to string) (decimal.Decimal, error)
}

// RateStore persists the published rate table so restarts and replicas
// share one view of the market. Pairs are keyed "FROM/TO".
type RateStore interface {
	SaveRates(ctx context.Context, rates map[string]decimal.Decimal, ttl time.Duration) error
	// LoadRates returns nil with no error when no snapshot is stored.
	LoadRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Converter performs a currency conversion and records it.
type Converter interface {
	Convert(ctx context.Context, input ConvertInput) (*domain.Conversion, error)
}

// Notifier pushes human-readable events to the notification sink.
// Implementations must not block the calling operation.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// NetworkSender sends approved funds out on an external network and returns
// the external reference.
type NetworkSender interface {
	Send(ctx context.Context, network, destination string, amount decimal.Decimal, currency string) (string, error)
}

// PaymentConfirmer confirms an inbound payment reference with its provider
// before the ledger is credited.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, reference, provider string) (bool, error)
}

// GeoResolver reports whether a requester IP resolves to a disallowed
// jurisdiction.
type GeoResolver interface {
	IsBlocked(ip string) bool
}

// JournalArchiver receives every journal entry for durable archival.
// Archival is best-effort and must never block or fail a ledger operation.
type JournalArchiver interface {
	Archive(ctx context.Context, tx *domain.Transaction) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
