package handler

import (
	"net/http"

	"github.com/iho/walletcore/internal/adapter/http/dto"
	"github.com/iho/walletcore/internal/usecase"
)

// ExchangeHandler handles exchange-rate HTTP requests.
type ExchangeHandler struct {
	exchangeUC *usecase.ExchangeUseCase
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchangeUC *usecase.ExchangeUseCase) *ExchangeHandler {
	return &ExchangeHandler{exchangeUC: exchangeUC}
}

// Rate resolves the rate for a currency pair.
func (h *ExchangeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing currency pair", "from and to query parameters are required")
		return
	}

	rate, err := h.exchangeUC.Rate(from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve rate", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &dto.RateResponse{From: from, To: to, Rate: rate})
}

// Currencies lists the supported currencies.
func (h *ExchangeHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"currencies": h.exchangeUC.SupportedCurrencies(),
	})
}
