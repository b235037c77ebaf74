package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

type bootstrapRequest struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
}

type registerRequest struct {
	InviteToken string `json:"invite_token"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type inviteRequest struct {
	TeamID     *string    `json:"team_id"`
	UsageLimit int        `json:"usage_limit"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type teamRequest struct {
	Name string `json:"name"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CompanyName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Company name, email and password required")
		return
	}
	company, admin, err := a.Service.BootstrapCompany(r.Context(), req.CompanyName, req.Email, req.Password, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"company": company, "admin": admin})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.InviteToken == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invite token, email and password required")
		return
	}
	user, err := a.Service.RegisterViaInvite(r.Context(), req.InviteToken, req.Email, req.Password, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, user, err := a.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": loginResponse{AccessToken: token}, "user": user})
}

func (a *API) handleValidateInvite(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Token required")
		return
	}
	valid, teamID := a.Service.ValidateInvite(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]any{"valid": valid, "team_id": teamID})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	user, err := a.Repo.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	users, err := a.Repo.ListUsers(r.Context(), identity.CompanyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleTeamLead, models.RoleMember:
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
		return
	}
	userID := chi.URLParam(r, "id")
	if userID == identity.UserID {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot change own role")
		return
	}
	user, err := a.Repo.UpdateUserRole(r.Context(), userID, identity.CompanyID, req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req teamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	team, err := a.Repo.CreateTeam(r.Context(), identity.CompanyID, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (a *API) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UsageLimit == 0 {
		req.UsageLimit = 1
	}
	invite, err := a.Service.CreateInvite(r.Context(), identity, req.TeamID, req.UsageLimit, req.ExpiresAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

func (a *API) handleListInvites(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	invites, err := a.Service.ListInvites(r.Context(), identity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invites": invites})
}

func (a *API) handleDeactivateInvite(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := a.Service.DeactivateInvite(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
