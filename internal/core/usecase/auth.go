package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kirillkom/smartdocs/internal/core/domain"
	"github.com/kirillkom/smartdocs/internal/core/ports"
)

const defaultRole = "user"

type AuthUseCase struct {
	users  ports.UserRepository
	tokens ports.TokenCodec
}

func NewAuthUseCase(users ports.UserRepository, tokens ports.TokenCodec) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

func (uc *AuthUseCase) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	exists, err := uc.users.ExistsByUsernameOrEmail(ctx, reg.Username, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, domain.WrapError(domain.ErrUserExists, "register user", errors.New("username or email taken"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Organization: reg.Organization,
		Role:         defaultRole,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*domain.AuthToken, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrUserNotFound) {
			return nil, domain.WrapError(domain.ErrInvalidCredentials, "login", err)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.WrapError(domain.ErrInvalidCredentials, "login", errors.New("account disabled"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidCredentials, "login", err)
	}

	token, err := uc.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := uc.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("record last login: %w", err)
	}

	return &domain.AuthToken{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *user,
	}, nil
}

func (uc *AuthUseCase) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	username, err := uc.tokens.Verify(token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", err)
	}
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrUserNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token subject", err)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token subject", errors.New("account disabled"))
	}
	return user, nil
}

func validateRegistration(reg domain.Registration) error {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return domain.WrapError(domain.ErrInvalidInput, "register user", errors.New("username is required"))
	case strings.TrimSpace(reg.Email) == "" || !strings.Contains(reg.Email, "@"):
		return domain.WrapError(domain.ErrInvalidInput, "register user", errors.New("valid email is required"))
	case len(reg.Password) < 8:
		return domain.WrapError(domain.ErrInvalidInput, "register user", errors.New("password must be at least 8 characters"))
	}
	return nil
}
