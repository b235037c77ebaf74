package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

const redemptionColumns = `id, company_id, user_id, shop_item_id, price, comment, status, approved_by, approved_at, issued_by, issued_at, created_at`

func scanRedemption(row pgx.Row) (models.Redemption, error) {
	var rd models.Redemption
	err := row.Scan(&rd.ID, &rd.CompanyID, &rd.UserID, &rd.ShopItemID, &rd.Price, &rd.Comment, &rd.Status,
		&rd.ApprovedBy, &rd.ApprovedAt, &rd.IssuedBy, &rd.IssuedAt, &rd.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Redemption{}, ErrNotFound
	}
	return rd, err
}

// CreateRedemption exchanges coins for a shop item. The whole step is one
// transaction: lock the redeemer's user row (serializes concurrent
// redemptions for the same balance), re-read the approved balance under
// that lock, snapshot the item price, insert the redemption and the
// immediately-approved SPEND entry that debits the balance. The debit takes
// effect right away; the reward itself still waits for review.
func (r *Repo) CreateRedemption(ctx context.Context, companyID, userID, shopItemID, comment string) (models.Redemption, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return models.Redemption{}, err
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id=$1 AND company_id=$2 FOR UPDATE`, userID, companyID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Redemption{}, ErrNotFound
	}
	if err != nil {
		return models.Redemption{}, err
	}

	var price int64
	err = tx.QueryRow(ctx, `
		SELECT price FROM shop_items
		WHERE id=$1 AND company_id=$2 AND active AND deleted_at IS NULL`,
		shopItemID, companyID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Redemption{}, ErrNotFound
	}
	if err != nil {
		return models.Redemption{}, err
	}

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id=$1 AND status=$2`,
		userID, models.EntryApproved).Scan(&balance); err != nil {
		return models.Redemption{}, err
	}
	if balance < price {
		return models.Redemption{}, ErrInsufficientFunds
	}

	redemption, err := scanRedemption(tx.QueryRow(ctx, `
		INSERT INTO redemptions (company_id, user_id, shop_item_id, price, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+redemptionColumns,
		companyID, userID, shopItemID, price, comment))
	if err != nil {
		return models.Redemption{}, err
	}

	refType := models.RefRedemption
	if _, err := r.appendEntry(ctx, tx, models.LedgerEntry{
		CompanyID: companyID,
		UserID:    userID,
		Amount:    -price,
		Kind:      models.KindSpend,
		Status:    models.EntryApproved,
		Reason:    "shop redemption",
		RefType:   &refType,
		RefID:     &redemption.ID,
		CreatedBy: userID,
	}); err != nil {
		return models.Redemption{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Redemption{}, err
	}
	return redemption, nil
}

// ApproveRedemption moves pending -> approved and stamps the approver.
func (r *Repo) ApproveRedemption(ctx context.Context, redemptionID, companyID, actorID string) (models.Redemption, error) {
	rd, err := scanRedemption(r.Pool.QueryRow(ctx, `
		UPDATE redemptions SET status=$1, approved_by=$2, approved_at=now()
		WHERE id=$3 AND company_id=$4 AND status=$5
		RETURNING `+redemptionColumns,
		models.RedemptionApproved, actorID, redemptionID, companyID, models.RedemptionPending))
	if errors.Is(err, ErrNotFound) {
		return models.Redemption{}, r.diagnoseRedemption(ctx, redemptionID, companyID)
	}
	return rd, err
}

// IssueRedemption moves approved -> issued and stamps the issuer.
func (r *Repo) IssueRedemption(ctx context.Context, redemptionID, companyID, actorID string) (models.Redemption, error) {
	rd, err := scanRedemption(r.Pool.QueryRow(ctx, `
		UPDATE redemptions SET status=$1, issued_by=$2, issued_at=now()
		WHERE id=$3 AND company_id=$4 AND status=$5
		RETURNING `+redemptionColumns,
		models.RedemptionIssued, actorID, redemptionID, companyID, models.RedemptionApproved))
	if errors.Is(err, ErrNotFound) {
		return models.Redemption{}, r.diagnoseRedemption(ctx, redemptionID, companyID)
	}
	return rd, err
}

// RejectRedemption moves pending -> rejected and, in the same transaction,
// appends the compensating EARN that refunds the original debit. The SPEND
// row is never edited; the refund is a second entry of equal magnitude.
func (r *Repo) RejectRedemption(ctx context.Context, redemptionID, companyID, actorID string) (models.Redemption, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return models.Redemption{}, err
	}
	defer tx.Rollback(ctx)

	rd, err := scanRedemption(tx.QueryRow(ctx, `
		UPDATE redemptions SET status=$1
		WHERE id=$2 AND company_id=$3 AND status=$4
		RETURNING `+redemptionColumns,
		models.RedemptionRejected, redemptionID, companyID, models.RedemptionPending))
	if errors.Is(err, ErrNotFound) {
		return models.Redemption{}, r.diagnoseRedemption(ctx, redemptionID, companyID)
	}
	if err != nil {
		return models.Redemption{}, err
	}

	refType := models.RefRedemption
	if _, err := r.appendEntry(ctx, tx, models.LedgerEntry{
		CompanyID: companyID,
		UserID:    rd.UserID,
		Amount:    rd.Price,
		Kind:      models.KindEarn,
		Status:    models.EntryApproved,
		Reason:    "redemption refund",
		RefType:   &refType,
		RefID:     &rd.ID,
		CreatedBy: actorID,
	}); err != nil {
		return models.Redemption{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Redemption{}, err
	}
	return rd, nil
}

// diagnoseRedemption classifies a failed guarded update: missing row vs
// transition from a terminal or wrong state.
func (r *Repo) diagnoseRedemption(ctx context.Context, redemptionID, companyID string) error {
	var status string
	err := r.Pool.QueryRow(ctx, `SELECT status FROM redemptions WHERE id=$1 AND company_id=$2`, redemptionID, companyID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidState
}

func (r *Repo) GetRedemption(ctx context.Context, redemptionID, companyID string) (models.Redemption, error) {
	return scanRedemption(r.Pool.QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE id=$1 AND company_id=$2`, redemptionID, companyID))
}

// ListRedemptions returns company redemptions, optionally filtered to one
// requester and/or one status.
func (r *Repo) ListRedemptions(ctx context.Context, companyID string, userID, status *string) ([]models.Redemption, error) {
	query := `SELECT ` + redemptionColumns + ` FROM redemptions WHERE company_id=$1`
	args := []any{companyID}
	if userID != nil {
		args = append(args, *userID)
		query += ` AND user_id=$2`
	}
	if status != nil {
		args = append(args, *status)
		if userID != nil {
			query += ` AND status=$3`
		} else {
			query += ` AND status=$2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var redemptions []models.Redemption
	for rows.Next() {
		rd, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		redemptions = append(redemptions, rd)
	}
	return redemptions, rows.Err()
}
