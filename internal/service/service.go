// Package service holds the business workflows on top of the repository.
// Every operation takes an explicit auth.Identity rather than reading any
// ambient session state; role gating happens at the HTTP boundary.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/auth"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/models"
	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
)

type Service struct {
	Repo      *repo.Repo
	Auth      *auth.Manager
	TokenTTL  time.Duration
	InviteTTL time.Duration
}

func New(r *repo.Repo, authManager *auth.Manager) *Service {
	return &Service{Repo: r, Auth: authManager, TokenTTL: time.Hour, InviteTTL: 7 * 24 * time.Hour}
}

// BootstrapCompany registers a new tenant with its first admin.
func (s *Service) BootstrapCompany(ctx context.Context, companyName, email, password, name string) (models.Company, models.User, error) {
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return models.Company{}, models.User{}, err
	}
	return s.Repo.CreateCompanyWithAdmin(ctx, companyName, email, hash, name)
}

// RegisterViaInvite admits a self-registering user through an invite token.
// The user insert and the token consumption share one transaction in the
// repository, so a tripped quota guard leaves no user behind.
func (s *Service) RegisterViaInvite(ctx context.Context, token, email, password, name string) (models.User, error) {
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user, inv, err := s.Repo.RegisterViaInvite(ctx, token, email, hash, name)
	if err != nil {
		return models.User{}, err
	}
	s.audit(ctx, inv.CompanyID, user.ID, "register", "invite_token", inv.ID, "registered via invite")
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", models.User{}, err
	}
	if err := s.Auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", models.User{}, err
	}
	token, err := s.Auth.GenerateToken(user.ID, s.TokenTTL)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

// ValidateInvite is the side-effect-free pre-check used by the registration
// form. It never mutates the token and never errors on a bad one.
func (s *Service) ValidateInvite(ctx context.Context, token string) (bool, *string) {
	inv, err := s.Repo.GetInviteByToken(ctx, token)
	if err != nil {
		return false, nil
	}
	if !inv.Active || inv.UsageCount >= inv.UsageLimit {
		return false, nil
	}
	if inv.ExpiresAt != nil && !inv.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	return true, inv.TeamID
}

// CreateInvite mints an opaque single- or multi-use registration token.
func (s *Service) CreateInvite(ctx context.Context, actor auth.Identity, teamID *string, usageLimit int, expiresAt *time.Time) (models.InviteToken, error) {
	if usageLimit < 1 {
		return models.InviteToken{}, &models.ValidationError{Problem: "usage limit must be at least 1"}
	}
	token, err := randomToken()
	if err != nil {
		return models.InviteToken{}, err
	}
	if expiresAt == nil {
		t := time.Now().Add(s.InviteTTL)
		expiresAt = &t
	}
	inv, err := s.Repo.CreateInvite(ctx, actor.CompanyID, teamID, token, actor.UserID, usageLimit, expiresAt)
	if err != nil {
		return models.InviteToken{}, err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "create", "invite_token", inv.ID, "")
	return inv, nil
}

func (s *Service) DeactivateInvite(ctx context.Context, actor auth.Identity, inviteID string) error {
	if err := s.Repo.DeactivateInvite(ctx, inviteID, actor.CompanyID); err != nil {
		return err
	}
	s.audit(ctx, actor.CompanyID, actor.UserID, "deactivate", "invite_token", inviteID, "")
	return nil
}

func (s *Service) ListInvites(ctx context.Context, actor auth.Identity) ([]models.InviteToken, error) {
	return s.Repo.ListInvites(ctx, actor.CompanyID)
}

// audit writes the best-effort trail; failures are logged, never propagated.
func (s *Service) audit(ctx context.Context, companyID, actorID, action, entityType, entityID, detail string) {
	if err := s.Repo.WriteAudit(ctx, companyID, actorID, action, entityType, entityID, detail); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"action": action,
			"entity": entityType,
		}).Warn("audit write failed")
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
