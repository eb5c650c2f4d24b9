package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/veloraworld/velora-backend/pkg/auth"
	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/security"
)

// LoginInput is the console credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput creates a console account. Registration is disabled in prod.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=10"`
}

// LoginResult carries the minted token and its expiry.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service authenticates console admins.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*models.Admin, error)
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	app      config.AppConfig
}

// NewService builds the admin auth service.
func NewService(repo Repository, jwt config.JWTConfig, password config.PasswordConfig, app config.AppConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if jwt.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwt: jwt, password: password, app: app}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	admin, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}

	ok, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Admin, error) {
	if s.app.IsProd() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "registration disabled")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin, err := s.repo.Create(ctx, &models.Admin{
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return admin, nil
}
