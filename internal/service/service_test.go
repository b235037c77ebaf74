package service

import (
	"context"
	"errors"
	"fmt"
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
)

func setupTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("svc_%d", time.Now().UnixNano())
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

	svc := New(repo.New(pool), auth.NewManager("test-secret"))
	return svc, func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func identity(u models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, CompanyID: u.CompanyID, Role: u.Role}
}

func bootstrap(t *testing.T, svc *Service) (models.Company, models.User) {
	t.Helper()
	company, admin, err := svc.BootstrapCompany(context.Background(), "Acme",
		fmt.Sprintf("admin-%s@acme.test", t.Name()), "hunter22", "Admin")
	require.NoError(t, err)
	return company, admin
}

func inviteUser(t *testing.T, svc *Service, admin models.User, email string) models.User {
	t.Helper()
	ctx := context.Background()
	inv, err := svc.CreateInvite(ctx, identity(admin), nil, 1, nil)
	require.NoError(t, err)
	user, err := svc.RegisterViaInvite(ctx, inv.Token, email, "hunter22", "Member")
	require.NoError(t, err)
	return user
}

func TestBootstrapAndLogin(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	company, admin := bootstrap(t, svc)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.Equal(t, company.ID, admin.CompanyID)

	token, user, err := svc.Login(ctx, admin.Email, "hunter22")
	require.NoError(t, err)
	require.Equal(t, admin.ID, user.ID)

	claims, err := svc.Auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, admin.ID, claims.UserID)

	_, _, err = svc.Login(ctx, admin.Email, "wrong")
	require.Error(t, err)
}

func TestAdminTransactionEffectiveImmediately(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, admin := bootstrap(t, svc)
	member := inviteUser(t, svc, admin, "m1@acme.test")

	entry, err := svc.CreateTransaction(ctx, identity(admin), member.ID, 200, models.KindEarn, "welcome")
	require.NoError(t, err)
	require.Equal(t, models.EntryApproved, entry.Status)

	balance, err := svc.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, balance)
}

func TestLeadTransactionNeedsReview(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, admin := bootstrap(t, svc)
	member := inviteUser(t, svc, admin, "m2@acme.test")
	lead := inviteUser(t, svc, admin, "lead@acme.test")
	lead.Role = models.RoleTeamLead // role as the request middleware would see it

	entry, err := svc.CreateTransaction(ctx, identity(lead), member.ID, 100, models.KindEarn, "sprint bonus")
	require.NoError(t, err)
	require.Equal(t, models.EntryPending, entry.Status)

	balance, err := svc.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance)

	// Admin sees the whole queue, the lead only their own submissions.
	queue, err := svc.ListPending(ctx, identity(admin))
	require.NoError(t, err)
	require.Len(t, queue, 1)
	own, err := svc.ListPending(ctx, identity(lead))
	require.NoError(t, err)
	require.Len(t, own, 1)

	reviewed, err := svc.ReviewTransaction(ctx, identity(admin), entry.ID, models.EntryApproved)
	require.NoError(t, err)
	require.Equal(t, models.EntryApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)

	balance, err = svc.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 100, balance)
}

func TestCreateTransactionRejectsSpend(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, admin := bootstrap(t, svc)
	member := inviteUser(t, svc, admin, "m3@acme.test")

	_, err := svc.CreateTransaction(context.Background(), identity(admin), member.ID, -50, models.KindSpend, "no")
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRedemptionFlow(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, admin := bootstrap(t, svc)
	member := inviteUser(t, svc, admin, "m4@acme.test")

	_, err := svc.CreateTransaction(ctx, identity(admin), member.ID, 150, models.KindEarn, "grant")
	require.NoError(t, err)
	item, err := svc.Repo.CreateShopItem(ctx, admin.CompanyID, "Hoodie", "", 150)
	require.NoError(t, err)

	rd, err := svc.CreateRedemption(ctx, identity(member), item.ID, "size M")
	require.NoError(t, err)
	require.Equal(t, models.RedemptionPending, rd.Status)

	balance, err := svc.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance)

	rejected, err := svc.UpdateRedemptionStatus(ctx, identity(admin), rd.ID, models.RedemptionRejected)
	require.NoError(t, err)
	require.Equal(t, models.RedemptionRejected, rejected.Status)

	balance, err = svc.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 150, balance)

	_, err = svc.UpdateRedemptionStatus(ctx, identity(admin), rd.ID, "shipped")
	require.ErrorIs(t, err, repo.ErrInvalidState)
}

func TestGrantRule(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, admin := bootstrap(t, svc)
	member := inviteUser(t, svc, admin, "m5@acme.test")

	rule, err := svc.Repo.CreateEarningRule(ctx, admin.CompanyID, "Code review", 25, "reviewed a PR")
	require.NoError(t, err)

	entry, err := svc.GrantRule(ctx, identity(admin), rule.ID, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 25, entry.Amount)
	require.Equal(t, "reviewed a PR", entry.Reason)
	require.Equal(t, models.EntryApproved, entry.Status)
}

func TestValidateInvite(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, admin := bootstrap(t, svc)

	ok, _ := svc.ValidateInvite(ctx, "nope")
	require.False(t, ok)

	inv, err := svc.CreateInvite(ctx, identity(admin), nil, 1, nil)
	require.NoError(t, err)
	ok, teamID := svc.ValidateInvite(ctx, inv.Token)
	require.True(t, ok)
	require.Nil(t, teamID)

	// Validation has no side effects: the token is still good afterwards.
	_, err = svc.RegisterViaInvite(ctx, inv.Token, "v@acme.test", "hunter22", "V")
	require.NoError(t, err)

	ok, _ = svc.ValidateInvite(ctx, inv.Token)
	require.False(t, ok)
}

func TestCreateInviteValidation(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, admin := bootstrap(t, svc)
	_, err := svc.CreateInvite(context.Background(), identity(admin), nil, 0, nil)
	var validation *models.ValidationError
	require.True(t, errors.As(err, &validation))
}
