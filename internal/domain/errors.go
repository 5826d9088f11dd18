package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrFrozenExceedsTotal  = errors.New("frozen amount exceeds total balance")

	// Journal errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Transfer errors
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrTransferNotPending = errors.New("transfer is not pending")
	ErrSameUser           = errors.New("cannot transfer to the same user")
	ErrInvalidAmount      = errors.New("amount must be positive")

	// Address errors
	ErrInvalidAddress     = errors.New("invalid destination address")
	ErrScamAddress        = errors.New("destination address is scam-listed")
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// Exchange errors
	ErrUnsupportedCurrencyPair = errors.New("unsupported currency pair")
	ErrRateUnavailable         = errors.New("conversion rate unavailable")

	// Fraud errors
	ErrFraudBlocked = errors.New("transaction blocked by fraud checks")
)
