package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/db"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/service"
)

func setupTestAPI(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("api_%d", time.Now().UnixNano())
	config, err := pgxpool.ParseConfig(databaseURL)
	require.NoError(t, err)
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations")))

	r := repo.New(pool)
	manager := auth.NewManager("test-secret")
	api := &API{Repo: r, Service: service.New(r, manager), Auth: manager}
	server := httptest.NewServer(api.Router())
	return server, func() {
		server.Close()
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// bootstrapAPI registers a company and returns the admin's bearer token.
func bootstrapAPI(t *testing.T, baseURL string) (token string, adminID string) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, baseURL+"/auth/bootstrap", "", map[string]any{
		"company_name": "Acme",
		"email":        "admin@acme.test",
		"password":     "hunter22",
		"name":         "Admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]any{
		"email": "admin@acme.test", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tokenObj := body["token"].(map[string]any)
	user := body["user"].(map[string]any)
	return tokenObj["access_token"].(string), user["id"].(string)
}

// registerMember mints a one-use invite and registers a user through it,
// returning the new member's token and id.
func registerMember(t *testing.T, baseURL, adminToken, email string) (string, string) {
	t.Helper()
	resp, invite := doJSON(t, http.MethodPost, baseURL+"/invites/", adminToken, map[string]any{"usage_limit": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]any{
		"invite_token": invite["token"], "email": email, "password": "hunter22", "name": "Member",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]any{
		"email": email, "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(map[string]any)["access_token"].(string), body["user"].(map[string]any)["id"].(string)
}

func TestHealth(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	resp, body := doJSON(t, http.MethodGet, server.URL+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	resp, body := doJSON(t, http.MethodGet, server.URL+"/balance", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "UNAUTHORIZED", errObj["code"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/balance", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMemberCannotReachAdminRoutes(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	adminToken, _ := bootstrapAPI(t, server.URL)
	memberToken, memberID := registerMember(t, server.URL, adminToken, "m@acme.test")

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/ledger/entries", memberToken, map[string]any{
		"user_id": memberID, "amount": 1000, "kind": models.KindEarn,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/users", memberToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEarnRedeemRejectCycle(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	adminToken, _ := bootstrapAPI(t, server.URL)
	memberToken, memberID := registerMember(t, server.URL, adminToken, "m@acme.test")

	resp, entry := doJSON(t, http.MethodPost, server.URL+"/ledger/entries", adminToken, map[string]any{
		"user_id": memberID, "amount": 150, "kind": models.KindEarn, "reason": "welcome",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, models.EntryApproved, entry["status"])

	resp, balance := doJSON(t, http.MethodGet, server.URL+"/balance", memberToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 150, balance["balance"])

	resp, item := doJSON(t, http.MethodPost, server.URL+"/shop/admin/items/", adminToken, map[string]any{
		"title": "Mug", "price": 150,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, redemption := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/shop/items/%s/redeem", server.URL, item["id"]), memberToken, map[string]any{"comment": "blue one"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, models.RedemptionPending, redemption["status"])

	_, balance = doJSON(t, http.MethodGet, server.URL+"/balance", memberToken, nil)
	require.EqualValues(t, 0, balance["balance"])

	// A second redemption attempt finds nothing left to spend.
	resp, body := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/shop/items/%s/redeem", server.URL, item["id"]), memberToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "INSUFFICIENT_FUNDS", body["error"].(map[string]any)["code"])

	resp, _ = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/redemptions/%s/status", server.URL, redemption["id"]), adminToken,
		map[string]any{"status": models.RedemptionRejected})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, balance = doJSON(t, http.MethodGet, server.URL+"/balance", memberToken, nil)
	require.EqualValues(t, 150, balance["balance"])

	// The member's ledger now shows the earn, the spend and the refund.
	_, ledger := doJSON(t, http.MethodGet, server.URL+"/ledger", memberToken, nil)
	require.Len(t, ledger["entries"].([]any), 3)
}

func TestPendingReviewOverHTTP(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	adminToken, _ := bootstrapAPI(t, server.URL)
	_, memberID := registerMember(t, server.URL, adminToken, "m@acme.test")
	leadToken, leadID := registerMember(t, server.URL, adminToken, "lead@acme.test")

	// Promote the second registrant; their next request carries the new role.
	resp0, promoted := doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/users/%s/role", server.URL, leadID), adminToken,
		map[string]any{"role": models.RoleTeamLead})
	require.Equal(t, http.StatusOK, resp0.StatusCode)
	require.Equal(t, models.RoleTeamLead, promoted["role"])

	resp, entry := doJSON(t, http.MethodPost, server.URL+"/ledger/entries", leadToken, map[string]any{
		"user_id": memberID, "amount": 100, "kind": models.KindEarn, "reason": "sprint",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, models.EntryPending, entry["status"])

	resp, _ = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/ledger/entries/%s/review", server.URL, entry["id"]), adminToken,
		map[string]any{"status": models.EntryApproved})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Settled entries cannot be reviewed again.
	resp, body := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/ledger/entries/%s/review", server.URL, entry["id"]), adminToken,
		map[string]any{"status": models.EntryRejected})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "INVALID_STATE", body["error"].(map[string]any)["code"])

	resp, balance := doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/users/%s/balance", server.URL, memberID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 100, balance["balance"])
}

func TestInviteValidateAndExhaust(t *testing.T) {
	server, cleanup := setupTestAPI(t)
	defer cleanup()

	adminToken, _ := bootstrapAPI(t, server.URL)
	resp, invite := doJSON(t, http.MethodPost, server.URL+"/invites/", adminToken, map[string]any{"usage_limit": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := invite["token"].(string)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/invites/validate?token="+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["valid"])

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]any{
		"invite_token": token, "email": "one@acme.test", "password": "hunter22", "name": "One",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]any{
		"invite_token": token, "email": "two@acme.test", "password": "hunter22", "name": "Two",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "QUOTA_EXCEEDED", body["error"].(map[string]any)["code"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/invites/validate?token="+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["valid"])
}
