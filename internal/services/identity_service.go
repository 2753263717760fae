package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// IdentityService registers operators and resolves bearer tokens to users
type IdentityService struct {
	store    repository.Store
	logger   *zap.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(store repository.Store, tokenTTL time.Duration, logger *zap.Logger) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = models.TokenLifetime
	}
	return &IdentityService{store: store, logger: logger, tokenTTL: tokenTTL, now: time.Now}
}

// RegisterRequest represents the request for creating an operator account
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *RegisterRequest) validate() error {
	switch {
	case r.Username == "":
		return apperr.Validation("username is required")
	case len(r.Username) > 150:
		return apperr.Validation("username must be at most 150 characters")
	case len(r.Password) < 6:
		return apperr.Validation("password must be at least 6 characters")
	case len(r.Phone) > 20:
		return apperr.Validation("phone must be at most 20 characters")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperr.Validation("email is not valid").WithDetail("email", r.Email)
	}
	return nil
}

// issueToken rotates the user's bearer token
func (s *IdentityService) issueToken(ctx context.Context, user *models.User) error {
	if err := user.GenerateToken(s.now()); err != nil {
		return err
	}
	exp := s.now().Add(s.tokenTTL)
	user.TokenExp = &exp
	return s.store.Users().Update(ctx, user)
}

// Register creates a user and signs them in
func (s *IdentityService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Phone:     req.Phone,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.issueToken(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a fresh token
func (s *IdentityService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		s.logger.Warn("login failed", zap.String("username", user.Username))
		return nil, apperr.Unauthorized("invalid username or password")
	}
	if err := s.issueToken(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("token is required")
	}
	user, err := s.store.Users().GetByToken(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid or expired token")
		}
		return nil, err
	}
	if !user.IsTokenValid(s.now()) {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return user, nil
}

// Logout invalidates the user's token
func (s *IdentityService) Logout(ctx context.Context, user *models.User) error {
	user.Token = ""
	user.TokenExp = nil
	return s.store.Users().Update(ctx, user)
}
