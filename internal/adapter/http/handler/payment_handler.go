package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/walletcore/internal/adapter/http/dto"
	"github.com/iho/walletcore/internal/usecase"
)

// PaymentHandler handles payment-routing HTTP requests.
type PaymentHandler struct {
	paymentUC *usecase.PaymentUseCase
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Incoming handles an inbound payment notification.
func (h *PaymentHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	var req dto.IncomingPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.HandleIncoming(r.Context(), req.ToUseCaseInput(r.RemoteAddr, r.UserAgent()))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to handle incoming payment", err.Error())
		return
	}

	writeJSON(w, statusForResult(result), dto.ResultFromUseCase(result))
}

// Transfer moves funds between two wallets on the platform.
func (h *PaymentHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.InternalTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.HandleInternalTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	writeJSON(w, statusForResult(result), dto.ResultFromUseCase(result))
}

// Convert converts between two balances of one wallet.
func (h *PaymentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req dto.ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.HandleConversion(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to convert", err.Error())
		return
	}

	writeJSON(w, statusForResult(result), dto.ResultFromUseCase(result))
}

// Withdraw requests an external transfer.
func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.HandleExternalTransfer(r.Context(), req.ToUseCaseInput(r.RemoteAddr, r.UserAgent()))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, statusForResult(result), dto.ResultFromUseCase(result))
}

// statusForResult maps a routed payment outcome to an HTTP status. Business
// rejections and failures are well-formed outcomes, not transport errors.
func statusForResult(result *usecase.Result) int {
	switch result.Status {
	case usecase.StatusCompleted:
		return http.StatusOK
	case usecase.StatusPendingApproval:
		return http.StatusAccepted
	case usecase.StatusRejected:
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}
