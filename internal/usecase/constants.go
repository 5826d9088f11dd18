package usecase

import "time"

const (
	// DefaultInstantCeilingUSD is the reference-currency ceiling above which
	// inbound receipts require manual review.
	DefaultInstantCeilingUSD = 10000

	// DefaultAutoApprovalCeilingUSD is the platform default ceiling for
	// auto-approving external transfers when the user has no rule.
	DefaultAutoApprovalCeilingUSD = 1000

	// AutoApproveRiskMax is the risk score at or above which an external
	// transfer can no longer be auto-approved.
	AutoApproveRiskMax = 50

	// DefaultPendingTransferTTL is how long a pending transfer may wait for
	// a manual decision before it is expired and its funds released.
	DefaultPendingTransferTTL = 72 * time.Hour

	// VelocityWindow is the trailing window for the transaction velocity
	// fraud rule.
	VelocityWindow = 10 * time.Minute

	// VelocityMaxTransactions is the number of completed transactions inside
	// VelocityWindow above which the velocity rule fires.
	VelocityMaxTransactions = 3

	// HistorySampleSize bounds how many journal entries the spending-pattern
	// rule averages over.
	HistorySampleSize = 200

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
