package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/service"
)

type API struct {
	Repo    *repo.Repo
	Service *service.Service
	Auth    *auth.Manager
	Origins []string
	Timeout time.Duration
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/bootstrap", a.handleBootstrap)
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
	})
	r.Get("/invites/validate", a.handleValidateInvite)

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)

		r.Get("/me", a.handleMe)
		r.Get("/balance", a.handleOwnBalance)
		r.Get("/ledger", a.handleOwnLedger)

		r.Get("/shop/items", a.handleListShopItems)
		r.Post("/shop/items/{id}/redeem", a.handleRedeem)
		r.Get("/redemptions", a.handleListRedemptions)

		// Reviews: team leads and admins.
		r.Group(func(r chi.Router) {
			r.Use(a.requireRole(models.RoleAdmin, models.RoleTeamLead))
			r.Post("/ledger/entries", a.handleCreateTransaction)
			r.Get("/ledger/pending", a.handleListPending)
			r.Get("/users/{id}/balance", a.handleUserBalance)
			r.Get("/users/{id}/ledger", a.handleUserLedger)
			r.Post("/users/{id}/zero-out", a.handleZeroOut)
			r.Post("/redemptions/{id}/status", a.handleRedemptionStatus)
			r.Post("/rules/{id}/grant", a.handleGrantRule)
			r.Get("/rules", a.handleListRules)
		})

		// Company administration: admins only.
		r.Group(func(r chi.Router) {
			r.Use(a.requireRole(models.RoleAdmin))
			r.Post("/ledger/entries/{id}/review", a.handleReviewTransaction)
			r.Get("/users", a.handleListUsers)
			r.Put("/users/{id}/role", a.handleUpdateUserRole)
			r.Post("/teams", a.handleCreateTeam)

			r.Route("/shop/admin/items", func(r chi.Router) {
				r.Post("/", a.handleCreateShopItem)
				r.Put("/{id}", a.handleUpdateShopItem)
				r.Delete("/{id}", a.handleDeleteShopItem)
			})
			r.Route("/rules/admin", func(r chi.Router) {
				r.Post("/", a.handleCreateRule)
				r.Put("/{id}", a.handleUpdateRule)
				r.Delete("/{id}", a.handleDeleteRule)
			})
			r.Route("/invites", func(r chi.Router) {
				r.Get("/", a.handleListInvites)
				r.Post("/", a.handleCreateInvite)
				r.Delete("/{id}", a.handleDeactivateInvite)
			})
		})
	})

	return r
}
