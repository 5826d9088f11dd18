package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
)

// PaymentStatus is the terminal status of a routed payment request.
type PaymentStatus string

const (
	StatusCompleted       PaymentStatus = "completed"
	StatusPendingApproval PaymentStatus = "pending_approval"
	StatusRejected        PaymentStatus = "rejected"
	StatusFailed          PaymentStatus = "failed"
)

// Result is the uniform response of every payment operation.
type Result struct {
	Status      PaymentStatus       `json:"status"`
	Reasons     []string            `json:"reasons,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Conversion  *domain.Conversion  `json:"conversion,omitempty"`
	TransferID  string              `json:"transfer_id,omitempty"`
	ExternalRef string              `json:"external_ref,omitempty"`
	RiskScore   int                 `json:"risk_score,omitempty"`
}

// PaymentUseCase routes payment requests to the ledger, the conversion
// engine and the approval pipeline. It owns no balance state of its own.
type PaymentUseCase struct {
	ledger    *LedgerUseCase
	exchange  *ExchangeUseCase
	approval  *ApprovalUseCase
	confirmer PaymentConfirmer
	notifier  Notifier
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewPaymentUseCase creates the payment router.
func NewPaymentUseCase(
	ledger *LedgerUseCase,
	exchange *ExchangeUseCase,
	approval *ApprovalUseCase,
	confirmer PaymentConfirmer,
	notifier Notifier,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		ledger:    ledger,
		exchange:  exchange,
		approval:  approval,
		confirmer: confirmer,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
	}
}

// IncomingInput is an inbound payment notification.
type IncomingInput struct {
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	Method        domain.PaymentMethod
	Reference     string
	Provider      string
	SourceAddress string
	Network       string
	IP            string
	UserAgent     string
	DeviceID      string
}

// HandleIncoming confirms an inbound payment with its provider, runs the
// inbound approval pipeline and credits the wallet when approved. A payment
// held for review is credited only after a manual approval.
func (uc *PaymentUseCase) HandleIncoming(ctx context.Context, input IncomingInput) (*Result, error) {
	start := time.Now()
	defer uc.observe("incoming", start)

	if uc.confirmer != nil && input.Reference != "" {
		ok, err := uc.confirmer.Confirm(ctx, input.Reference, input.Provider)
		if err != nil {
			return nil, fmt.Errorf("confirm payment %s: %w", input.Reference, err)
		}
		if !ok {
			uc.count("incoming", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"payment not confirmed by provider"}}, nil
		}
	}

	decision, err := uc.approval.EvaluateInbound(ctx, InboundInput{
		UserID:        input.UserID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Method:        input.Method,
		SourceAddress: input.SourceAddress,
		Network:       input.Network,
		ExternalRef:   input.Reference,
		IP:            input.IP,
		UserAgent:     input.UserAgent,
		DeviceID:      input.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	switch decision.Outcome {
	case OutcomeRejected:
		uc.count("incoming", StatusRejected)
		return &Result{Status: StatusRejected, Reasons: decision.Reasons, RiskScore: decision.Assessment.Score}, nil
	case OutcomePending:
		uc.count("incoming", StatusPendingApproval)
		return &Result{
			Status:     StatusPendingApproval,
			Reasons:    decision.Reasons,
			TransferID: decision.Transfer.ID,
			RiskScore:  decision.Assessment.Score,
		}, nil
	}

	metadata := map[string]any{"reference": input.Reference, "provider": input.Provider}
	if input.SourceAddress != "" {
		metadata["source_address"] = input.SourceAddress
	}
	entry, err := uc.ledger.Credit(ctx, CreditInput{
		UserID:   input.UserID,
		Amount:   input.Amount,
		Currency: input.Currency,
		Tag:      domain.TagIncoming,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	uc.count("incoming", StatusCompleted)
	uc.observeAmount("incoming", input.Currency, input.Amount)
	uc.notify(ctx, input.UserID, domain.EventPaymentReceived,
		fmt.Sprintf("Received %s %s", input.Amount, input.Currency))
	return &Result{Status: StatusCompleted, Transaction: entry, RiskScore: decision.Assessment.Score}, nil
}

// TransferInput is an internal wallet-to-wallet move.
type TransferInput struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Currency   string
}

// HandleInternalTransfer moves funds between two wallets atomically. No fee
// and no approval applies; insufficient available funds fail the request
// with nothing changed.
func (uc *PaymentUseCase) HandleInternalTransfer(ctx context.Context, input TransferInput) (*Result, error) {
	start := time.Now()
	defer uc.observe("transfer", start)

	err := uc.ledger.InternalTransfer(ctx, input.FromUserID, input.ToUserID, input.Amount, input.Currency, "")
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.count("transfer", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"insufficient available balance"}}, nil
		}
		return nil, err
	}

	uc.count("transfer", StatusCompleted)
	uc.observeAmount("transfer", input.Currency, input.Amount)
	uc.notify(ctx, input.ToUserID, domain.EventPaymentReceived,
		fmt.Sprintf("Received %s %s from another wallet", input.Amount, input.Currency))
	return &Result{Status: StatusCompleted}, nil
}

// ConversionInput converts between two balances of the same wallet.
type ConversionInput struct {
	UserID string
	From   string
	To     string
	Amount decimal.Decimal
}

// HandleConversion converts part of a wallet between currencies. The fee is
// taken in the source currency before the rate applies.
func (uc *PaymentUseCase) HandleConversion(ctx context.Context, input ConversionInput) (*Result, error) {
	start := time.Now()
	defer uc.observe("conversion", start)

	conversion, err := uc.ledger.ConvertInLedger(ctx, input.UserID, input.From, input.To, input.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.count("conversion", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"insufficient available balance"}}, nil
		}
		if errors.Is(err, domain.ErrRateUnavailable) || errors.Is(err, domain.ErrUnsupportedCurrencyPair) {
			uc.count("conversion", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"no rate available for pair"}}, nil
		}
		if errors.Is(err, domain.ErrUnsupportedCurrency) {
			uc.count("conversion", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"unsupported currency"}}, nil
		}
		return nil, err
	}

	uc.count("conversion", StatusCompleted)
	uc.observeAmount("conversion", input.From, input.Amount)
	uc.notify(ctx, input.UserID, domain.EventConversionDone,
		fmt.Sprintf("Converted %s %s to %s %s", conversion.FromAmount, conversion.FromCurrency, conversion.ToAmount, conversion.ToCurrency))
	return &Result{Status: StatusCompleted, Conversion: conversion}, nil
}

// WithdrawalInput is an external transfer request.
type WithdrawalInput struct {
	UserID      string
	Amount      decimal.Decimal
	Currency    string
	Method      domain.PaymentMethod
	Destination string
	Network     string
	IP          string
	UserAgent   string
	DeviceID    string
}

// HandleExternalTransfer routes a withdrawal through the outbound approval
// pipeline. An unfundable request fails before any check runs and leaves
// every balance untouched.
func (uc *PaymentUseCase) HandleExternalTransfer(ctx context.Context, input WithdrawalInput) (*Result, error) {
	start := time.Now()
	defer uc.observe("withdrawal", start)

	decision, err := uc.approval.RequestWithdrawal(ctx, WithdrawInput{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Method:      input.Method,
		Destination: input.Destination,
		Network:     input.Network,
		IP:          input.IP,
		UserAgent:   input.UserAgent,
		DeviceID:    input.DeviceID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.count("withdrawal", StatusFailed)
			return &Result{Status: StatusFailed, Reasons: []string{"insufficient available balance"}}, nil
		}
		return nil, err
	}

	result := &Result{Reasons: decision.Reasons, RiskScore: decision.RiskScore}
	if decision.Transfer != nil {
		result.TransferID = decision.Transfer.ID
	}

	switch decision.Outcome {
	case OutcomeApproved:
		result.Status = StatusCompleted
		result.ExternalRef = decision.ExternalRef
		uc.observeAmount("withdrawal", input.Currency, input.Amount)
	case OutcomePending:
		result.Status = StatusPendingApproval
	case OutcomeRejected:
		result.Status = StatusRejected
	default:
		result.Status = StatusFailed
	}

	uc.count("withdrawal", result.Status)
	return result, nil
}

// Dashboard aggregates a user's wallet state for a single overview call.
type Dashboard struct {
	UserID            string                     `json:"user_id"`
	Balances          map[string]decimal.Decimal `json:"balances"`
	Frozen            map[string]decimal.Decimal `json:"frozen"`
	Available         map[string]decimal.Decimal `json:"available"`
	TotalUSD          decimal.Decimal            `json:"total_usd"`
	PendingTransfers  int                        `json:"pending_transfers"`
	RecentActivity    []*domain.Transaction      `json:"recent_activity"`
	RecentConversions []*domain.Conversion       `json:"recent_conversions"`
	CanConvert        bool                       `json:"can_convert"`
	CanWithdraw       bool                       `json:"can_withdraw"`
}

// GetDashboard builds the overview for a user: balances with frozen and
// available breakdowns, reference valuation, pending count and recent
// activity.
func (uc *PaymentUseCase) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	wallet, err := uc.ledger.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.approval.PendingTransfers(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := uc.ledger.History(ctx, userID, 10, 0)
	if err != nil {
		return nil, err
	}

	conversions, err := uc.exchange.History(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	available := make(map[string]decimal.Decimal, len(wallet.Balances))
	hasFunds := false
	for currency := range wallet.Balances {
		avail := wallet.Available(currency)
		available[currency] = avail
		if avail.IsPositive() {
			hasFunds = true
		}
	}

	return &Dashboard{
		UserID:            userID,
		Balances:          wallet.Balances,
		Frozen:            wallet.Frozen,
		Available:         available,
		TotalUSD:          wallet.TotalUSD,
		PendingTransfers:  len(pending),
		RecentActivity:    recent,
		RecentConversions: conversions,
		CanConvert:        hasFunds,
		CanWithdraw:       hasFunds,
	}, nil
}

func (uc *PaymentUseCase) observe(operation string, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.PaymentDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (uc *PaymentUseCase) count(operation string, status PaymentStatus) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.PaymentsHandled.WithLabelValues(operation, string(status)).Inc()
}

func (uc *PaymentUseCase) observeAmount(operation, currency string, amount decimal.Decimal) {
	if uc.metrics == nil {
		return
	}
	f, _ := amount.Float64()
	uc.metrics.PaymentAmount.WithLabelValues(operation, currency).Observe(f)
}

func (uc *PaymentUseCase) notify(ctx context.Context, userID, event, message string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, domain.Notification{
		UserID:    userID,
		Event:     event,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}
