package service

import (
	"context"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
)

// CreateRedemption spends coins on a shop item. The balance check and the
// debit happen atomically in the repository; the coins leave the balance
// immediately while the reward itself still waits for review.
func (s *Service) CreateRedemption(ctx context.Context, actor auth.Identity, shopItemID, comment string) (models.Redemption, error) {
	redemption, err := s.Repo.CreateRedemption(ctx, actor.CompanyID, actor.UserID, shopItemID, comment)
	if err != nil {
		return models.Redemption{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "create", "redemption", redemption.ID, "")
	return redemption, nil
}

// UpdateRedemptionStatus applies one of the typed transitions. There is no
// generic patch: each target status maps to a dedicated repository command,
// so illegal field combinations cannot be expressed.
func (s *Service) UpdateRedemptionStatus(ctx context.Context, actor auth.Identity, redemptionID, newStatus string) (models.Redemption, error) {
	var (
		redemption models.Redemption
		err        error
	)
	switch newStatus {
	case models.RedemptionApproved:
		redemption, err = s.Repo.ApproveRedemption(ctx, redemptionID, actor.CompanyID, actor.UserID)
	case models.RedemptionRejected:
		redemption, err = s.Repo.RejectRedemption(ctx, redemptionID, actor.CompanyID, actor.UserID)
	case models.RedemptionIssued:
		redemption, err = s.Repo.IssueRedemption(ctx, redemptionID, actor.CompanyID, actor.UserID)
	default:
		return models.Redemption{}, repo.ErrInvalidState
	}
	if err != nil {
		return models.Redemption{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "transition", "redemption", redemption.ID, newStatus)
	return redemption, nil
}

// ListRedemptions scopes the listing by role: members see their own
// history, approvers see the whole company's.
func (s *Service) ListRedemptions(ctx context.Context, actor auth.Identity, status *string) ([]models.Redemption, error) {
	if models.IsApprover(actor.Role) {
		return s.Repo.ListRedemptions(ctx, actor.CompanyID, nil, status)
	}
	return s.Repo.ListRedemptions(ctx, actor.CompanyID, &actor.UserID, status)
}
