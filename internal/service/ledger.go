package service

import (
	"context"
	"fmt"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
)

// GetBalance derives the balance by summing approved entries. Recomputed on
// every read; volumes here are small enough that a cached total is not
// worth its consistency burden.
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	return s.Repo.SumApproved(ctx, userID)
}

// CreateTransaction appends a manually created EARN or ADJUST entry.
// Entries from a top-level admin take effect immediately; anyone else's
// wait as pending until an admin reviews them.
func (s *Service) CreateTransaction(ctx context.Context, actor auth.Identity, userID string, amount int64, kind, reason string) (models.LedgerEntry, error) {
	if kind == models.KindSpend {
		return models.LedgerEntry{}, &models.ValidationError{Problem: "spend entries are created by redemptions"}
	}
	if _, err := s.Repo.GetCompanyUser(ctx, userID, actor.CompanyID); err != nil {
		return models.LedgerEntry{}, err
	}
	entry, err := s.Repo.AppendEntry(ctx, models.LedgerEntry{
		CompanyID: actor.CompanyID,
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		Status:    initialStatus(actor.Role),
		Reason:    reason,
		CreatedBy: actor.UserID,
	})
	if err != nil {
		return models.LedgerEntry{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "create", "ledger_entry", entry.ID,
		fmt.Sprintf("%s %+d for %s", kind, amount, userID))
	return entry, nil
}

// GrantRule applies an admin-defined earning rule to a user. The grant goes
// through CreateTransaction and therefore through the same approval rules.
func (s *Service) GrantRule(ctx context.Context, actor auth.Identity, ruleID, userID string) (models.LedgerEntry, error) {
	rule, err := s.Repo.GetEarningRule(ctx, ruleID, actor.CompanyID)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	reason := rule.Reason
	if reason == "" {
		reason = rule.Title
	}
	return s.CreateTransaction(ctx, actor, userID, rule.Amount, models.KindEarn, reason)
}

// ZeroOut cancels a user's entire approved balance with one ADJUST entry.
func (s *Service) ZeroOut(ctx context.Context, actor auth.Identity, userID string) (models.LedgerEntry, error) {
	entry, err := s.Repo.ZeroOut(ctx, actor.CompanyID, userID, actor.UserID, initialStatus(actor.Role))
	if err != nil {
		return models.LedgerEntry{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "zero-out", "ledger_entry", entry.ID, "")
	return entry, nil
}

// ReviewTransaction settles a pending entry. Callers gate this to admins.
func (s *Service) ReviewTransaction(ctx context.Context, actor auth.Identity, entryID, newStatus string) (models.LedgerEntry, error) {
	entry, err := s.Repo.TransitionEntry(ctx, entryID, actor.CompanyID, newStatus, actor.UserID)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "review", "ledger_entry", entry.ID, newStatus)
	return entry, nil
}

// ListPending returns the review queue. Admins see everything pending in
// the company; a delegated approver sees only what they submitted.
func (s *Service) ListPending(ctx context.Context, actor auth.Identity) ([]models.LedgerEntry, error) {
	if actor.Role == models.RoleAdmin {
		return s.Repo.ListPending(ctx, actor.CompanyID, nil)
	}
	return s.Repo.ListPending(ctx, actor.CompanyID, &actor.UserID)
}

func (s *Service) ListEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Repo.ListEntries(ctx, userID, limit)
}

func initialStatus(role string) string {
	if role == models.RoleAdmin {
		return models.EntryApproved
	}
	return models.EntryPending
}
