// Package repo holds all SQL. Business rules that need atomicity (balance
// check-and-debit, invite quota consumption, status transitions) live here
// as single guarded statements or explicit transactions; everything else is
// plain row access.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrAlreadyZero       = errors.New("balance already zero")
	ErrQuotaExceeded     = errors.New("invite quota exceeded")
	ErrInviteExpired     = errors.New("invite expired")
	ErrInviteInactive    = errors.New("invite inactive")
	ErrEmailTaken        = errors.New("email already registered")
)

type Repo struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const userColumns = `id, company_id, team_id, email, password_hash, name, role, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.TeamID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// CreateCompanyWithAdmin bootstraps a tenant: the company row and its first
// top-level admin are created in one transaction.
func (r *Repo) CreateCompanyWithAdmin(ctx context.Context, companyName, email, passwordHash, name string) (models.Company, models.User, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return models.Company{}, models.User{}, err
	}
	defer tx.Rollback(ctx)

	var company models.Company
	err = tx.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id, name, created_at`, companyName).
		Scan(&company.ID, &company.Name, &company.CreatedAt)
	if err != nil {
		return models.Company{}, models.User{}, err
	}

	admin, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (company_id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		company.ID, email, passwordHash, name, models.RoleAdmin))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Company{}, models.User{}, ErrEmailTaken
		}
		return models.Company{}, models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Company{}, models.User{}, err
	}
	return company, admin, nil
}

func (r *Repo) CreateTeam(ctx context.Context, companyID, name string) (models.Team, error) {
	var t models.Team
	err := r.Pool.QueryRow(ctx, `INSERT INTO teams (company_id, name) VALUES ($1, $2) RETURNING id, company_id, name, created_at`,
		companyID, name).Scan(&t.ID, &t.CompanyID, &t.Name, &t.CreatedAt)
	return t, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID))
}

// GetCompanyUser resolves a user inside a tenant; a valid id from another
// company is indistinguishable from a missing one.
func (r *Repo) GetCompanyUser(ctx context.Context, userID, companyID string) (models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 AND company_id=$2`, userID, companyID))
}

// UpdateUserRole changes a user's role. There is no session to invalidate:
// the request middleware reloads the user row every time, so the new role
// takes effect on the user's next request.
func (r *Repo) UpdateUserRole(ctx context.Context, userID, companyID, role string) (models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `
		UPDATE users SET role=$3 WHERE id=$1 AND company_id=$2
		RETURNING `+userColumns, userID, companyID, role))
}

func (r *Repo) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE company_id=$1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
