package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
)

type shopItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Active      *bool  `json:"active"`
}

type ruleRequest struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type grantRequest struct {
	UserID string `json:"user_id"`
}

func (a *API) handleListShopItems(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	items, err := a.Repo.ListShopItems(r.Context(), identity.CompanyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleCreateShopItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req shopItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title and positive price required")
		return
	}
	item, err := a.Repo.CreateShopItem(r.Context(), identity.CompanyID, req.Title, req.Description, req.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleUpdateShopItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req shopItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title and positive price required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if err := a.Repo.UpdateShopItem(r.Context(), chi.URLParam(r, "id"), identity.CompanyID, req.Title, req.Description, req.Price, active); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeleteShopItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := a.Repo.DeleteShopItem(r.Context(), chi.URLParam(r, "id"), identity.CompanyID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListRules(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	rules, err := a.Repo.ListEarningRules(r.Context(), identity.CompanyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (a *API) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title and positive amount required")
		return
	}
	rule, err := a.Repo.CreateEarningRule(r.Context(), identity.CompanyID, req.Title, req.Amount, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (a *API) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title and positive amount required")
		return
	}
	if err := a.Repo.UpdateEarningRule(r.Context(), chi.URLParam(r, "id"), identity.CompanyID, req.Title, req.Amount, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := a.Repo.DeleteEarningRule(r.Context(), chi.URLParam(r, "id"), identity.CompanyID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleGrantRule(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req grantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "User_id required")
		return
	}
	entry, err := a.Service.GrantRule(r.Context(), identity, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
