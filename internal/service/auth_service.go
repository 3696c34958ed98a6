package service

import (
	"context"
	"fmt"
	"strings"

	"smsguard/internal/auth"
	apperrors "smsguard/internal/errors"
	"smsguard/internal/model"
	"smsguard/internal/repository"
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local-credential user and returns it with a fresh token.
// Email uniqueness is enforced by the store, not by a lookup beforehand.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if len(password) > auth.MaxPasswordBytes {
		return nil, "", apperrors.ErrPasswordTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: &hash,
		AuthMethods:  model.AuthMethods{model.AuthMethodLocal},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies the password and returns the user with a fresh token. Unknown
// emails, accounts without a local password and wrong passwords all yield
// ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}

	if user == nil || !user.HasLocalCredential() {
		auth.BurnPasswordCheck(password)
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(*user.PasswordHash, password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
