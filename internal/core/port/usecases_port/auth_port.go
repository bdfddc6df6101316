package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type RegisterUserUseCasePort interface {
	Execute(ctx context.Context, email, password, fullName string) (*domain.UserProfile, string, error)
}

type LoginUserUseCasePort interface {
	Execute(ctx context.Context, email, password string) (*domain.UserProfile, string, error)
}

type LogoutUserUseCasePort interface {
	Execute(ctx context.Context, token string) error
}

type AuthenticateUseCasePort interface {
	Execute(ctx context.Context, token string) (*domain.Claims, error)
}

type GetCurrentUserUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}

// AuthorizeRoleUseCasePort проверяет роль по профилю, а не по токену.
type AuthorizeRoleUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, required domain.Role) error
}
