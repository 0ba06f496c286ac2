package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type AuthService struct {
	store repositories.Store
	priv  *rsa.PrivateKey
	ttl   time.Duration
}

func NewAuthService(cfg *config.Config, store repositories.Store) *AuthService {
	return &AuthService{store: store, priv: cfg.RSAPrivateKey, ttl: cfg.TokenTTL}
}

// Register creates the account together with its default notification
// settings and returns a session token.
func (s *AuthService) Register(ctx context.Context, req dtos.RegisterRequest) (*dtos.TokenResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return internal_utils.ErrEmailExists
			}
			return err
		}
		return tx.ForOwner(user.ID).Settings().Upsert(ctx, models.DefaultNotificationSettings(user.ID))
	})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.TokenResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, internal_utils.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, missing(internal_utils.ErrNotFound, userID)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*dtos.TokenResponse, error) {
	token, err := middleware.IssueToken(s.priv, user.ID, s.ttl)
	if err != nil {
		return nil, err
	}
	return &dtos.TokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}
