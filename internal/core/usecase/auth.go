package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

type RegisterUserUseCase struct {
	accounts       port.AccountRepositoryPort
	tokenSvc       port.TokenServicePort
	accessTokenTTL time.Duration
}

func NewRegisterUserUseCase(accounts port.AccountRepositoryPort, tokenSvc port.TokenServicePort, accessTokenTTL time.Duration) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		accounts:       accounts,
		tokenSvc:       tokenSvc,
		accessTokenTTL: accessTokenTTL,
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, email, password, fullName string) (*domain.UserProfile, string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RegisterUser",
		"email":    email,
	})
	ucLogger.Info("Use case started: attempting to register user", nil)

	// Хэширование пароля происходит внутри NewAccount
	account, err := domain.NewAccount(email, password)
	if err != nil {
		ucLogger.Warn("Registration input rejected", port.Fields{"error": err.Error()})
		return nil, "", err
	}

	existing, err := uc.accounts.FindByEmail(ctx, account.Email)
	if err != nil {
		ucLogger.Error("Repository failed while checking for existing email", err, nil)
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		ucLogger.Warn("Registration failed: email already in use", nil)
		return nil, "", domain.ErrEmailInUse
	}

	profile := domain.NewUserProfile(account, fullName)
	ucLogger = ucLogger.WithFields(port.Fields{"user_id": account.ID})

	if err := uc.accounts.Create(ctx, account, profile); err != nil {
		ucLogger.Error("Repository failed to create account", err, nil)
		return nil, "", err
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, account, profile.Role, uc.accessTokenTTL)
	if err != nil {
		ucLogger.Error("Failed to generate token after successful registration", err, nil)
		return nil, "", err
	}

	ucLogger.Info("Use case finished: user registered successfully", nil)
	return profile, token, nil
}

type LoginUserUseCase struct {
	accounts       port.AccountRepositoryPort
	profiles       port.ProfileRepositoryPort
	tokenSvc       port.TokenServicePort
	accessTokenTTL time.Duration
}

func NewLoginUserUseCase(accounts port.AccountRepositoryPort, profiles port.ProfileRepositoryPort, tokenSvc port.TokenServicePort, accessTokenTTL time.Duration) *LoginUserUseCase {
	return &LoginUserUseCase{
		accounts:       accounts,
		profiles:       profiles,
		tokenSvc:       tokenSvc,
		accessTokenTTL: accessTokenTTL,
	}
}

func (uc *LoginUserUseCase) Execute(ctx context.Context, email, password string) (*domain.UserProfile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "LoginUser",
		"email":    email,
	})
	ucLogger.Info("Use case started: attempting to log in", nil)

	account, err := uc.accounts.FindByEmail(ctx, email)
	if err != nil {
		ucLogger.Error("Repository failed to find account", err, nil)
		return nil, "", fmt.Errorf("failed to find account: %w", err)
	}
	// Одинаковый ответ для неизвестного email и неверного пароля
	if account == nil || !account.CheckPassword(password) {
		ucLogger.Warn("Login failed: invalid credentials", nil)
		return nil, "", domain.ErrInvalidCredentials
	}

	profile, err := uc.profiles.FindByID(ctx, account.ID)
	if err != nil {
		ucLogger.Error("Failed to load profile", err, nil)
		return nil, "", fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = domain.NewUserProfile(account, "")
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, account, profile.Role, uc.accessTokenTTL)
	if err != nil {
		ucLogger.Error("Failed to generate token", err, nil)
		return nil, "", err
	}

	ucLogger.Info("Use case finished: user logged in", port.Fields{"user_id": account.ID})
	return profile, token, nil
}

type LogoutUserUseCase struct {
	tokenSvc   port.TokenServicePort
	revocation port.TokenRevocationPort
}

func NewLogoutUserUseCase(tokenSvc port.TokenServicePort, revocation port.TokenRevocationPort) *LogoutUserUseCase {
	return &LogoutUserUseCase{tokenSvc: tokenSvc, revocation: revocation}
}

// Execute отзывает токен до момента его естественного истечения.
func (uc *LogoutUserUseCase) Execute(ctx context.Context, token string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "LogoutUser"})

	claims, err := uc.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		ucLogger.Warn("Logout with invalid token", nil)
		return domain.ErrTokenInvalid
	}

	if err := uc.revocation.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		ucLogger.Error("Failed to revoke token", err, port.Fields{"user_id": claims.UserID})
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	ucLogger.Info("Token revoked", port.Fields{"user_id": claims.UserID})
	return nil
}

type AuthenticateUseCase struct {
	tokenSvc   port.TokenServicePort
	revocation port.TokenRevocationPort
}

func NewAuthenticateUseCase(tokenSvc port.TokenServicePort, revocation port.TokenRevocationPort) *AuthenticateUseCase {
	return &AuthenticateUseCase{tokenSvc: tokenSvc, revocation: revocation}
}

// Execute проверяет подпись, срок и отзыв токена.
// Если хранилище отзывов недоступно, токен не принимается.
func (uc *AuthenticateUseCase) Execute(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	revoked, err := uc.revocation.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to check token revocation", err, port.Fields{
			"use_case": "Authenticate",
			"user_id":  claims.UserID,
		})
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

type GetCurrentUserUseCase struct {
	profiles port.ProfileRepositoryPort
}

func NewGetCurrentUserUseCase(profiles port.ProfileRepositoryPort) *GetCurrentUserUseCase {
	return &GetCurrentUserUseCase{profiles: profiles}
}

func (uc *GetCurrentUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	profile, err := uc.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

type AuthorizeRoleUseCase struct {
	profiles port.ProfileRepositoryPort
}

func NewAuthorizeRoleUseCase(profiles port.ProfileRepositoryPort) *AuthorizeRoleUseCase {
	return &AuthorizeRoleUseCase{profiles: profiles}
}

func (uc *AuthorizeRoleUseCase) Execute(ctx context.Context, userID uuid.UUID, required domain.Role) error {
	profile, err := uc.profiles.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || !profile.Role.Satisfies(required) {
		contextkeys.LoggerFromContext(ctx).Warn("Role check failed", port.Fields{
			"user_id":       userID,
			"required_role": required,
		})
		return domain.ErrForbidden
	}
	return nil
}
