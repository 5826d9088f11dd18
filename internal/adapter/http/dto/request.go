package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
)

// IncomingPaymentRequest notifies the platform of an inbound payment.
type IncomingPaymentRequest struct {
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	SourceAddress string          `json:"source_address,omitempty"`
	Network       string          `json:"network,omitempty"`
	DeviceID      string          `json:"device_id,omitempty"`
}

// ToUseCaseInput converts to use case input. IP and user agent come from the
// request context, not the body.
func (r *IncomingPaymentRequest) ToUseCaseInput(ip, userAgent string) usecase.IncomingInput {
	return usecase.IncomingInput{
		UserID:        r.UserID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Method:        domain.PaymentMethod(r.Method),
		Reference:     r.Reference,
		Provider:      r.Provider,
		SourceAddress: r.SourceAddress,
		Network:       r.Network,
		IP:            ip,
		UserAgent:     userAgent,
		DeviceID:      r.DeviceID,
	}
}

// InternalTransferRequest moves funds between two wallets on the platform.
type InternalTransferRequest struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *InternalTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     r.Amount,
		Currency:   r.Currency,
	}
}

// ConversionRequest converts between two balances of one wallet.
type ConversionRequest struct {
	UserID string          `json:"user_id"`
	From   string          `json:"from_currency"`
	To     string          `json:"to_currency"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ConversionRequest) ToUseCaseInput() usecase.ConversionInput {
	return usecase.ConversionInput{
		UserID: r.UserID,
		From:   r.From,
		To:     r.To,
		Amount: r.Amount,
	}
}

// WithdrawalRequest sends funds to an external address.
type WithdrawalRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method,omitempty"`
	Destination string          `json:"destination"`
	Network     string          `json:"network"`
	DeviceID    string          `json:"device_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawalRequest) ToUseCaseInput(ip, userAgent string) usecase.WithdrawalInput {
	return usecase.WithdrawalInput{
		UserID:      r.UserID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Method:      domain.PaymentMethod(r.Method),
		Destination: r.Destination,
		Network:     r.Network,
		IP:          ip,
		UserAgent:   userAgent,
		DeviceID:    r.DeviceID,
	}
}

// AutoApprovalRuleRequest replaces a user's auto-approval rule.
type AutoApprovalRuleRequest struct {
	CeilingUSD        decimal.Decimal  `json:"ceiling_usd"`
	AllowedCurrencies []string         `json:"allowed_currencies,omitempty"`
	DailyCapUSD       *decimal.Decimal `json:"daily_cap_usd,omitempty"`
}

// ApprovalDecisionRequest carries a manual approve or reject.
type ApprovalDecisionRequest struct {
	Actor  string `json:"actor"`
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}
