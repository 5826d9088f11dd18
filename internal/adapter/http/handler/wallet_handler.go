package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletcore/internal/adapter/http/dto"
	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
)

// WalletHandler handles wallet-query HTTP requests.
type WalletHandler struct {
	ledgerUC   *usecase.LedgerUseCase
	exchangeUC *usecase.ExchangeUseCase
	approvalUC *usecase.ApprovalUseCase
	paymentUC  *usecase.PaymentUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	ledgerUC *usecase.LedgerUseCase,
	exchangeUC *usecase.ExchangeUseCase,
	approvalUC *usecase.ApprovalUseCase,
	paymentUC *usecase.PaymentUseCase,
) *WalletHandler {
	return &WalletHandler{
		ledgerUC:   ledgerUC,
		exchangeUC: exchangeUC,
		approvalUC: approvalUC,
		paymentUC:  paymentUC,
	}
}

// Balance returns one currency balance of a wallet, or all balances when no
// currency is given.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		wallet, err := h.ledgerUC.Wallet(r.Context(), userID)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
			return
		}
		responses := make([]*dto.BalanceResponse, 0, len(wallet.Balances))
		for c := range wallet.Balances {
			responses = append(responses, &dto.BalanceResponse{
				UserID:    userID,
				Currency:  c,
				Total:     wallet.Balance(c),
				Frozen:    wallet.FrozenAmount(c),
				Available: wallet.Available(c),
			})
		}
		writeJSON(w, http.StatusOK, responses)
		return
	}

	total, frozen, available, err := h.ledgerUC.Balance(r.Context(), userID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &dto.BalanceResponse{
		UserID:    userID,
		Currency:  currency,
		Total:     total,
		Frozen:    frozen,
		Available: available,
	})
}

// Transactions returns a user's journal entries, most recent first.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.History(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(entries))
}

// Conversions returns a user's conversion history.
func (h *WalletHandler) Conversions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	conversions, err := h.exchangeUC.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list conversions", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.ConversionsFromDomain(conversions))
}

// Dashboard returns the wallet overview.
func (h *WalletHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	dashboard, err := h.paymentUC.GetDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build dashboard", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.DashboardFromUseCase(dashboard))
}

// Approvals returns a user's approval history.
func (h *WalletHandler) Approvals(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	records, err := h.approvalUC.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list approvals", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.ApprovalRecordsFromDomain(records))
}

// GetRule returns a user's auto-approval rule.
func (h *WalletHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	rule, err := h.approvalUC.GetRule(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get rule", err.Error())
		return
	}
	if rule == nil {
		writeError(w, http.StatusNotFound, "no rule set", "the platform default applies")
		return
	}
	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// SetRule replaces a user's auto-approval rule.
func (h *WalletHandler) SetRule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	var req dto.AutoApprovalRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule := &domain.AutoApprovalRule{
		UserID:            userID,
		CeilingUSD:        req.CeilingUSD,
		AllowedCurrencies: req.AllowedCurrencies,
		DailyCapUSD:       req.DailyCapUSD,
	}
	if err := rule.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule", err.Error())
		return
	}
	if err := h.approvalUC.SetRule(r.Context(), rule); err != nil {
		writeError(w, mapDomainError(err), "failed to set rule", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}
