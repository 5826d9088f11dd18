package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PaymentResultResponse represents the outcome of a payment operation.
type PaymentResultResponse struct {
	Status      string               `json:"status"`
	Reasons     []string             `json:"reasons,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Conversion  *ConversionResponse  `json:"conversion,omitempty"`
	TransferID  string               `json:"transfer_id,omitempty"`
	ExternalRef string               `json:"external_ref,omitempty"`
	RiskScore   int                  `json:"risk_score,omitempty"`
}

// ResultFromUseCase converts a payment result to a response.
func ResultFromUseCase(r *usecase.Result) *PaymentResultResponse {
	resp := &PaymentResultResponse{
		Status:      string(r.Status),
		Reasons:     r.Reasons,
		TransferID:  r.TransferID,
		ExternalRef: r.ExternalRef,
		RiskScore:   r.RiskScore,
	}
	if r.Transaction != nil {
		resp.Transaction = TransactionFromDomain(r.Transaction)
	}
	if r.Conversion != nil {
		resp.Conversion = ConversionFromDomain(r.Conversion)
	}
	return resp
}

// TransactionResponse represents a journal entry in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	Tag              string          `json:"tag"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a journal entry to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		UserID:           t.UserID,
		Kind:             string(t.Kind),
		Amount:           t.Amount,
		Currency:         t.Currency,
		ResultingBalance: t.ResultingBalance,
		Tag:              string(t.Tag),
		Metadata:         t.Metadata,
		CreatedAt:        t.CreatedAt,
	}
}

// TransactionsFromDomain converts journal entries to responses.
func TransactionsFromDomain(entries []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ConversionResponse represents a conversion in API responses.
type ConversionResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	Rate         decimal.Decimal `json:"rate"`
	Fee          decimal.Decimal `json:"fee"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ConversionFromDomain converts a conversion record to a response.
func ConversionFromDomain(c *domain.Conversion) *ConversionResponse {
	return &ConversionResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		FromCurrency: c.FromCurrency,
		ToCurrency:   c.ToCurrency,
		FromAmount:   c.FromAmount,
		ToAmount:     c.ToAmount,
		Rate:         c.Rate,
		Fee:          c.Fee,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
	}
}

// ConversionsFromDomain converts conversion records to responses.
func ConversionsFromDomain(conversions []*domain.Conversion) []*ConversionResponse {
	result := make([]*ConversionResponse, len(conversions))
	for i, c := range conversions {
		result[i] = ConversionFromDomain(c)
	}
	return result
}

// BalanceResponse represents one currency balance of a wallet.
type BalanceResponse struct {
	UserID    string          `json:"user_id"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Frozen    decimal.Decimal `json:"frozen"`
	Available decimal.Decimal `json:"available"`
}

// SecurityCheckResponse represents one approval check outcome.
type SecurityCheckResponse struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// TransferResponse represents a pending transfer in API responses.
type TransferResponse struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	Direction    string                  `json:"direction"`
	Amount       decimal.Decimal         `json:"amount"`
	Currency     string                  `json:"currency"`
	Address      string                  `json:"address,omitempty"`
	Network      string                  `json:"network,omitempty"`
	Status       string                  `json:"status"`
	Checks       []SecurityCheckResponse `json:"checks,omitempty"`
	RiskScore    int                     `json:"risk_score"`
	RequestedAt  time.Time               `json:"requested_at"`
	ApprovedAt   *time.Time              `json:"approved_at,omitempty"`
	RejectedAt   *time.Time              `json:"rejected_at,omitempty"`
	ApprovedBy   string                  `json:"approved_by,omitempty"`
	RejectedBy   string                  `json:"rejected_by,omitempty"`
	RejectReason string                  `json:"reject_reason,omitempty"`
}

// TransferFromDomain converts a pending transfer to a response.
func TransferFromDomain(t *domain.PendingTransfer) *TransferResponse {
	checks := make([]SecurityCheckResponse, len(t.Checks))
	for i, c := range t.Checks {
		checks[i] = SecurityCheckResponse{Name: c.Name, Passed: c.Passed, Detail: c.Detail}
	}
	return &TransferResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		Direction:    string(t.Direction),
		Amount:       t.Amount,
		Currency:     t.Currency,
		Address:      t.Address,
		Network:      t.Network,
		Status:       string(t.Status),
		Checks:       checks,
		RiskScore:    t.RiskScore,
		RequestedAt:  t.RequestedAt,
		ApprovedAt:   t.ApprovedAt,
		RejectedAt:   t.RejectedAt,
		ApprovedBy:   t.ApprovedBy,
		RejectedBy:   t.RejectedBy,
		RejectReason: t.RejectReason,
	}
}

// TransfersFromDomain converts pending transfers to responses.
func TransfersFromDomain(transfers []*domain.PendingTransfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// ApprovalRecordResponse represents an approval audit row.
type ApprovalRecordResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TransferID string    `json:"transfer_id,omitempty"`
	Type       string    `json:"type"`
	Decision   string    `json:"decision"`
	Actor      string    `json:"actor"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApprovalRecordsFromDomain converts approval records to responses.
func ApprovalRecordsFromDomain(records []*domain.ApprovalRecord) []*ApprovalRecordResponse {
	result := make([]*ApprovalRecordResponse, len(records))
	for i, r := range records {
		result[i] = &ApprovalRecordResponse{
			ID:         r.ID,
			UserID:     r.UserID,
			TransferID: r.TransferID,
			Type:       string(r.Type),
			Decision:   string(r.Decision),
			Actor:      r.Actor,
			Notes:      r.Notes,
			CreatedAt:  r.CreatedAt,
		}
	}
	return result
}

// RuleResponse represents an auto-approval rule.
type RuleResponse struct {
	UserID            string           `json:"user_id"`
	CeilingUSD        decimal.Decimal  `json:"ceiling_usd"`
	AllowedCurrencies []string         `json:"allowed_currencies,omitempty"`
	DailyCapUSD       *decimal.Decimal `json:"daily_cap_usd,omitempty"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// RuleFromDomain converts a rule to a response.
func RuleFromDomain(r *domain.AutoApprovalRule) *RuleResponse {
	return &RuleResponse{
		UserID:            r.UserID,
		CeilingUSD:        r.CeilingUSD,
		AllowedCurrencies: r.AllowedCurrencies,
		DailyCapUSD:       r.DailyCapUSD,
		UpdatedAt:         r.UpdatedAt,
	}
}

// RateResponse represents a resolved exchange rate.
type RateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// DashboardResponse represents the wallet overview.
type DashboardResponse struct {
	UserID            string                     `json:"user_id"`
	Balances          map[string]decimal.Decimal `json:"balances"`
	Frozen            map[string]decimal.Decimal `json:"frozen"`
	Available         map[string]decimal.Decimal `json:"available"`
	TotalUSD          decimal.Decimal            `json:"total_usd"`
	PendingTransfers  int                        `json:"pending_transfers"`
	RecentActivity    []*TransactionResponse     `json:"recent_activity"`
	RecentConversions []*ConversionResponse      `json:"recent_conversions"`
	CanConvert        bool                       `json:"can_convert"`
	CanWithdraw       bool                       `json:"can_withdraw"`
}

// DashboardFromUseCase converts the dashboard aggregate to a response.
func DashboardFromUseCase(d *usecase.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		UserID:            d.UserID,
		Balances:          d.Balances,
		Frozen:            d.Frozen,
		Available:         d.Available,
		TotalUSD:          d.TotalUSD,
		PendingTransfers:  d.PendingTransfers,
		RecentActivity:    TransactionsFromDomain(d.RecentActivity),
		RecentConversions: ConversionsFromDomain(d.RecentConversions),
		CanConvert:        d.CanConvert,
		CanWithdraw:       d.CanWithdraw,
	}
}
