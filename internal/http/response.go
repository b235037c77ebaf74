package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid payload")
		return false
	}
	return true
}

// writeDomainError maps repository sentinels and validation failures to the
// response envelope. Unknown errors become a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", validation.Problem)
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, repo.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "INSUFFICIENT_FUNDS", "Not enough coins")
	case errors.Is(err, repo.ErrInvalidState):
		writeError(w, http.StatusConflict, "INVALID_STATE", "Illegal status transition")
	case errors.Is(err, repo.ErrAlreadyZero):
		writeError(w, http.StatusConflict, "ALREADY_ZERO", "Balance is already zero")
	case errors.Is(err, repo.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, "QUOTA_EXCEEDED", "Invite has no uses left")
	case errors.Is(err, repo.ErrInviteExpired):
		writeError(w, http.StatusConflict, "INVITE_EXPIRED", "Invite expired")
	case errors.Is(err, repo.ErrInviteInactive):
		writeError(w, http.StatusConflict, "INVITE_INACTIVE", "Invite is deactivated")
	case errors.Is(err, repo.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
