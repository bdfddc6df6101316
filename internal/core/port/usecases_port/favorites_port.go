package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type ToggleFavoriteUseCasePort interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID) (domain.ToggleOutcome, error)
}

type ListFavoritesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Favorite, error)
}

type ListFavoriteIDsUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type RemoveFavoriteUseCasePort interface {
	Execute(ctx context.Context, userID, favoriteID uuid.UUID) error
}
