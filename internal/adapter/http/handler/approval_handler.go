package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletcore/internal/adapter/http/dto"
	"github.com/iho/walletcore/internal/usecase"
)

// ApprovalHandler handles manual-review HTTP requests.
type ApprovalHandler struct {
	approvalUC *usecase.ApprovalUseCase
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC *usecase.ApprovalUseCase) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC}
}

// ListPending lists transfers awaiting a decision. The user query parameter
// narrows the list to one user.
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.approvalUC.PendingTransfers(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list pending transfers", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// Get returns one transfer.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.approvalUC.GetTransfer(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transfer", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// Approve applies a manual approval.
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	var req dto.ApprovalDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "missing actor", "")
		return
	}

	transfer, err := h.approvalUC.Approve(r.Context(), id, req.Actor, req.Notes)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve transfer", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// Reject applies a manual rejection.
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	var req dto.ApprovalDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "missing actor", "")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "missing reason", "")
		return
	}

	transfer, err := h.approvalUC.Reject(r.Context(), id, req.Actor, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject transfer", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}
