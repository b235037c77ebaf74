package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
)

type transactionRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type reviewRequest struct {
	Status string `json:"status"`
}

type redeemRequest struct {
	Comment string `json:"comment"`
}

type redemptionStatusRequest struct {
	Status string `json:"status"`
}

type balanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (a *API) handleOwnBalance(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	balance, err := a.Service.GetBalance(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: identity.UserID, Balance: balance})
}

func (a *API) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if _, err := a.Repo.GetCompanyUser(r.Context(), userID, identity.CompanyID); err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := a.Service.GetBalance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: balance})
}

func (a *API) handleOwnLedger(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	a.writeLedger(w, r, identity.UserID)
}

func (a *API) handleUserLedger(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if _, err := a.Repo.GetCompanyUser(r.Context(), userID, identity.CompanyID); err != nil {
		writeDomainError(w, err)
		return
	}
	a.writeLedger(w, r, userID)
}

func (a *API) writeLedger(w http.ResponseWriter, r *http.Request, userID string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := a.Service.ListEntries(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "User_id and kind required")
		return
	}
	entry, err := a.Service.CreateTransaction(r.Context(), identity, req.UserID, req.Amount, req.Kind, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleReviewTransaction(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := a.Service.ReviewTransaction(r.Context(), identity, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleListPending(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	entries, err := a.Service.ListPending(r.Context(), identity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (a *API) handleZeroOut(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	entry, err := a.Service.ZeroOut(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleRedeem charges the caller's balance for a shop item. The debit is
// immediate; the redemption itself stays pending until reviewed.
func (a *API) handleRedeem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req redeemRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	redemption, err := a.Service.CreateRedemption(r.Context(), identity, chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, redemption)
}

func (a *API) handleRedemptionStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req redemptionStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Status required")
		return
	}
	redemption, err := a.Service.UpdateRedemptionStatus(r.Context(), identity, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redemption)
}

func (a *API) handleListRedemptions(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}
	redemptions, err := a.Service.ListRedemptions(r.Context(), identity, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"redemptions": redemptions})
}
