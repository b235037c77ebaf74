package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

const entryColumns = `id, company_id, user_id, amount, kind, status, reason, ref_type, ref_id, created_by, reviewed_by, reviewed_at, created_at`

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.Amount, &e.Kind, &e.Status, &e.Reason,
		&e.RefType, &e.RefID, &e.CreatedBy, &e.ReviewedBy, &e.ReviewedAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.LedgerEntry{}, ErrNotFound
	}
	return e, err
}

// AppendEntry inserts one ledger row. Amount, kind and owner are immutable
// from here on; the row never gets deleted.
func (r *Repo) AppendEntry(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	if problem := models.ValidateEntry(e.Kind, e.Amount); problem != "" {
		return models.LedgerEntry{}, &models.ValidationError{Problem: problem}
	}
	return r.appendEntry(ctx, r.Pool, e)
}

// rowQuerier lets append run on the pool or inside an open transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repo) appendEntry(ctx context.Context, q rowQuerier, e models.LedgerEntry) (models.LedgerEntry, error) {
	return scanEntry(q.QueryRow(ctx, `
		INSERT INTO ledger_entries (company_id, user_id, amount, kind, status, reason, ref_type, ref_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+entryColumns,
		e.CompanyID, e.UserID, e.Amount, e.Kind, e.Status, e.Reason, e.RefType, e.RefID, e.CreatedBy))
}

// TransitionEntry performs the single legal status move of a ledger entry:
// pending -> approved or pending -> rejected. The guard is part of the
// UPDATE itself, so a concurrent second review cannot slip through.
func (r *Repo) TransitionEntry(ctx context.Context, entryID, companyID, newStatus, reviewerID string) (models.LedgerEntry, error) {
	if newStatus != models.EntryApproved && newStatus != models.EntryRejected {
		return models.LedgerEntry{}, ErrInvalidState
	}
	entry, err := scanEntry(r.Pool.QueryRow(ctx, `
		UPDATE ledger_entries
		SET status=$1, reviewed_by=$2, reviewed_at=now()
		WHERE id=$3 AND company_id=$4 AND status=$5
		RETURNING `+entryColumns,
		newStatus, reviewerID, entryID, companyID, models.EntryPending))
	if errors.Is(err, ErrNotFound) {
		// Zero rows: either the entry does not exist or it already left pending.
		var status string
		checkErr := r.Pool.QueryRow(ctx, `SELECT status FROM ledger_entries WHERE id=$1 AND company_id=$2`, entryID, companyID).Scan(&status)
		if errors.Is(checkErr, pgx.ErrNoRows) {
			return models.LedgerEntry{}, ErrNotFound
		}
		if checkErr != nil {
			return models.LedgerEntry{}, checkErr
		}
		return models.LedgerEntry{}, ErrInvalidState
	}
	return entry, err
}

// SumApproved is the balance: pending and rejected entries never count.
func (r *Repo) SumApproved(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id=$1 AND status=$2`,
		userID, models.EntryApproved).Scan(&sum)
	return sum, err
}

// ZeroOut appends an adjust entry that cancels the user's current approved
// balance. The user row is locked first so a concurrent redemption cannot
// change the balance between the read and the insert.
func (r *Repo) ZeroOut(ctx context.Context, companyID, userID, actorID, status string) (models.LedgerEntry, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id=$1 AND company_id=$2 FOR UPDATE`, userID, companyID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		return models.LedgerEntry{}, err
	}

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id=$1 AND status=$2`,
		userID, models.EntryApproved).Scan(&balance); err != nil {
		return models.LedgerEntry{}, err
	}
	if balance == 0 {
		return models.LedgerEntry{}, ErrAlreadyZero
	}

	entry, err := r.appendEntry(ctx, tx, models.LedgerEntry{
		CompanyID: companyID,
		UserID:    userID,
		Amount:    -balance,
		Kind:      models.KindAdjust,
		Status:    status,
		Reason:    "zero-out",
		CreatedBy: actorID,
	})
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.LedgerEntry{}, err
	}
	return entry, nil
}

func (r *Repo) GetEntry(ctx context.Context, entryID, companyID string) (models.LedgerEntry, error) {
	return scanEntry(r.Pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries WHERE id=$1 AND company_id=$2`, entryID, companyID))
}

func (r *Repo) ListEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListPending returns the review queue. With createdBy set, only entries
// that actor personally submitted are returned (delegated approvers see
// their own pending requests, not the whole company's).
func (r *Repo) ListPending(ctx context.Context, companyID string, createdBy *string) ([]models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE company_id=$1 AND status=$2`
	args := []any{companyID, models.EntryPending}
	if createdBy != nil {
		query += ` AND created_by=$3`
		args = append(args, *createdBy)
	}
	query += ` ORDER BY created_at`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
