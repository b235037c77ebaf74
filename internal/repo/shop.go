package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

const itemColumns = `id, company_id, title, description, price, active, created_at, updated_at, deleted_at`

func scanItem(row pgx.Row) (models.ShopItem, error) {
	var it models.ShopItem
	err := row.Scan(&it.ID, &it.CompanyID, &it.Title, &it.Description, &it.Price, &it.Active,
		&it.CreatedAt, &it.UpdatedAt, &it.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ShopItem{}, ErrNotFound
	}
	return it, err
}

func (r *Repo) CreateShopItem(ctx context.Context, companyID, title, description string, price int64) (models.ShopItem, error) {
	return scanItem(r.Pool.QueryRow(ctx, `
		INSERT INTO shop_items (company_id, title, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING `+itemColumns,
		companyID, title, description, price))
}

func (r *Repo) UpdateShopItem(ctx context.Context, itemID, companyID, title, description string, price int64, active bool) error {
	cmd, err := r.Pool.Exec(ctx, `
		UPDATE shop_items SET title=$1, description=$2, price=$3, active=$4, updated_at=now()
		WHERE id=$5 AND company_id=$6 AND deleted_at IS NULL`,
		title, description, price, active, itemID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteShopItem(ctx context.Context, itemID, companyID string) error {
	cmd, err := r.Pool.Exec(ctx, `
		UPDATE shop_items SET deleted_at=now(), active=false, updated_at=now()
		WHERE id=$1 AND company_id=$2 AND deleted_at IS NULL`, itemID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetShopItem(ctx context.Context, itemID, companyID string) (models.ShopItem, error) {
	return scanItem(r.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE id=$1 AND company_id=$2 AND deleted_at IS NULL`, itemID, companyID))
}

func (r *Repo) ListShopItems(ctx context.Context, companyID string) ([]models.ShopItem, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE company_id=$1 AND deleted_at IS NULL ORDER BY created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []models.ShopItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const ruleColumns = `id, company_id, title, amount, reason, created_at, updated_at`

func scanRule(row pgx.Row) (models.EarningRule, error) {
	var er models.EarningRule
	err := row.Scan(&er.ID, &er.CompanyID, &er.Title, &er.Amount, &er.Reason, &er.CreatedAt, &er.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EarningRule{}, ErrNotFound
	}
	return er, err
}

func (r *Repo) CreateEarningRule(ctx context.Context, companyID, title string, amount int64, reason string) (models.EarningRule, error) {
	return scanRule(r.Pool.QueryRow(ctx, `
		INSERT INTO earning_rules (company_id, title, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING `+ruleColumns,
		companyID, title, amount, reason))
}

func (r *Repo) UpdateEarningRule(ctx context.Context, ruleID, companyID, title string, amount int64, reason string) error {
	cmd, err := r.Pool.Exec(ctx, `
		UPDATE earning_rules SET title=$1, amount=$2, reason=$3, updated_at=now()
		WHERE id=$4 AND company_id=$5 AND deleted_at IS NULL`,
		title, amount, reason, ruleID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteEarningRule(ctx context.Context, ruleID, companyID string) error {
	cmd, err := r.Pool.Exec(ctx, `
		UPDATE earning_rules SET deleted_at=now(), updated_at=now()
		WHERE id=$1 AND company_id=$2 AND deleted_at IS NULL`, ruleID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetEarningRule(ctx context.Context, ruleID, companyID string) (models.EarningRule, error) {
	return scanRule(r.Pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM earning_rules WHERE id=$1 AND company_id=$2 AND deleted_at IS NULL`, ruleID, companyID))
}

func (r *Repo) ListEarningRules(ctx context.Context, companyID string) ([]models.EarningRule, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM earning_rules WHERE company_id=$1 AND deleted_at IS NULL ORDER BY created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []models.EarningRule
	for rows.Next() {
		er, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, er)
	}
	return rules, rows.Err()
}
