package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

const inviteColumns = `id, company_id, team_id, token, created_by, usage_limit, usage_count, active, expires_at, used_at, created_at`

func scanInvite(row pgx.Row) (models.InviteToken, error) {
	var inv models.InviteToken
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.TeamID, &inv.Token, &inv.CreatedBy,
		&inv.UsageLimit, &inv.UsageCount, &inv.Active, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.InviteToken{}, ErrNotFound
	}
	return inv, err
}

func (r *Repo) CreateInvite(ctx context.Context, companyID string, teamID *string, token, createdBy string, usageLimit int, expiresAt *time.Time) (models.InviteToken, error) {
	return scanInvite(r.Pool.QueryRow(ctx, `
		INSERT INTO invite_tokens (id, company_id, team_id, token, created_by, usage_limit, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+inviteColumns,
		uuid.NewString(), companyID, teamID, token, createdBy, usageLimit, expiresAt))
}

func (r *Repo) GetInviteByToken(ctx context.Context, token string) (models.InviteToken, error) {
	return scanInvite(r.Pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invite_tokens WHERE token=$1`, token))
}

// consumeInvite is the compare-and-increment at the heart of the quota
// guard: one conditional UPDATE, not a read-then-write, so two concurrent
// registrations against a nearly exhausted token cannot both pass. The
// same statement flips active off when the increment reaches the limit.
func consumeInvite(ctx context.Context, q rowQuerier, token string) (models.InviteToken, error) {
	inv, err := scanInvite(q.QueryRow(ctx, `
		UPDATE invite_tokens
		SET usage_count = usage_count + 1,
		    used_at = now(),
		    active = (usage_count + 1 < usage_limit)
		WHERE token=$1 AND active AND usage_count < usage_limit
		  AND (expires_at IS NULL OR expires_at > now())
		RETURNING `+inviteColumns, token))
	if !errors.Is(err, ErrNotFound) {
		return inv, err
	}

	// Zero rows: classify which guard tripped so the registrant gets a
	// specific message.
	var usageLimit, usageCount int
	var active bool
	var expiresAt *time.Time
	checkErr := q.QueryRow(ctx, `SELECT usage_limit, usage_count, active, expires_at FROM invite_tokens WHERE token=$1`, token).
		Scan(&usageLimit, &usageCount, &active, &expiresAt)
	if errors.Is(checkErr, pgx.ErrNoRows) {
		return models.InviteToken{}, ErrNotFound
	}
	if checkErr != nil {
		return models.InviteToken{}, checkErr
	}
	switch {
	case expiresAt != nil && !expiresAt.After(time.Now()):
		return models.InviteToken{}, ErrInviteExpired
	case usageCount >= usageLimit:
		return models.InviteToken{}, ErrQuotaExceeded
	case !active:
		return models.InviteToken{}, ErrInviteInactive
	default:
		return models.InviteToken{}, ErrQuotaExceeded
	}
}

// ConsumeInvite burns one use of a token outside of any larger flow.
func (r *Repo) ConsumeInvite(ctx context.Context, token string) (models.InviteToken, error) {
	return consumeInvite(ctx, r.Pool, token)
}

// RegisterViaInvite creates the user and consumes the invite in one
// transaction: if the quota guard fails, the user row does not survive.
func (r *Repo) RegisterViaInvite(ctx context.Context, token, email, passwordHash, name string) (models.User, models.InviteToken, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return models.User{}, models.InviteToken{}, err
	}
	defer tx.Rollback(ctx)

	inv, err := consumeInvite(ctx, tx, token)
	if err != nil {
		return models.User{}, models.InviteToken{}, err
	}

	user, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (company_id, team_id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		inv.CompanyID, inv.TeamID, email, passwordHash, name, models.RoleMember))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.InviteToken{}, ErrEmailTaken
		}
		return models.User{}, models.InviteToken{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, models.InviteToken{}, err
	}
	return user, inv, nil
}

// DeactivateInvite turns a token off. Idempotent.
func (r *Repo) DeactivateInvite(ctx context.Context, inviteID, companyID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE invite_tokens SET active=false WHERE id=$1 AND company_id=$2`, inviteID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListInvites(ctx context.Context, companyID string) ([]models.InviteToken, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+inviteColumns+` FROM invite_tokens WHERE company_id=$1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invites []models.InviteToken
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// DeactivateExpiredInvites is the hourly hygiene sweep. Correctness never
// depends on it: consumption re-checks expiry in its own guard.
func (r *Repo) DeactivateExpiredInvites(ctx context.Context) (int64, error) {
	cmd, err := r.Pool.Exec(ctx, `
		UPDATE invite_tokens SET active=false
		WHERE active AND expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
