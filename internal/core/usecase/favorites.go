package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

type ToggleFavoriteUseCase struct {
	favorites  port.FavoritesRepositoryPort
	properties port.PropertyRepositoryPort
	metrics    port.MetricsPort
}

func NewToggleFavoriteUseCase(favorites port.FavoritesRepositoryPort, properties port.PropertyRepositoryPort, metrics port.MetricsPort) *ToggleFavoriteUseCase {
	return &ToggleFavoriteUseCase{favorites: favorites, properties: properties, metrics: metrics}
}

// Execute сначала удаляет пару; если удалять было нечего, вставляет ее.
// Повторная вставка поглощается уникальным индексом, дубликатов не бывает.
func (uc *ToggleFavoriteUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID) (domain.ToggleOutcome, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ToggleFavorite",
		"user_id":     userID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	removed, err := uc.favorites.Remove(ctx, userID, propertyID)
	if err != nil {
		ucLogger.Error("Failed to remove favorite", err, nil)
		return "", fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if removed {
		uc.metrics.FavoriteToggled(domain.FavoriteRemoved)
		ucLogger.Info("Use case finished: favorite removed", nil)
		return domain.FavoriteRemoved, nil
	}

	property, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return "", fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		ucLogger.Warn("Property not found", nil)
		return "", domain.ErrNotFound
	}

	if err := uc.favorites.Add(ctx, userID, propertyID); err != nil {
		ucLogger.Error("Failed to add favorite", err, nil)
		return "", fmt.Errorf("failed to toggle favorite: %w", err)
	}

	uc.metrics.FavoriteToggled(domain.FavoriteAdded)
	ucLogger.Info("Use case finished: favorite added", nil)
	return domain.FavoriteAdded, nil
}

type ListFavoritesUseCase struct {
	favorites port.FavoritesRepositoryPort
}

func NewListFavoritesUseCase(favorites port.FavoritesRepositoryPort) *ListFavoritesUseCase {
	return &ListFavoritesUseCase{favorites: favorites}
}

func (uc *ListFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Favorite, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ListFavorites",
		"user_id":  userID,
		"limit":    limit,
	})
	ucLogger.Info("Use case started", nil)

	favorites, err := uc.favorites.FindByUser(ctx, userID, limit)
	if err != nil {
		ucLogger.Error("Failed to list favorites", err, nil)
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(favorites)})
	return favorites, nil
}

type ListFavoriteIDsUseCase struct {
	favorites port.FavoritesRepositoryPort
}

func NewListFavoriteIDsUseCase(favorites port.FavoritesRepositoryPort) *ListFavoriteIDsUseCase {
	return &ListFavoriteIDsUseCase{favorites: favorites}
}

func (uc *ListFavoriteIDsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := uc.favorites.FindPropertyIDsByUser(ctx, userID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list favorite ids", err, port.Fields{
			"use_case": "ListFavoriteIDs",
			"user_id":  userID,
		})
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

type RemoveFavoriteUseCase struct {
	favorites port.FavoritesRepositoryPort
}

func NewRemoveFavoriteUseCase(favorites port.FavoritesRepositoryPort) *RemoveFavoriteUseCase {
	return &RemoveFavoriteUseCase{favorites: favorites}
}

func (uc *RemoveFavoriteUseCase) Execute(ctx context.Context, userID, favoriteID uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "RemoveFavorite",
		"user_id":     userID,
		"favorite_id": favoriteID,
	})
	ucLogger.Info("Use case started", nil)

	removed, err := uc.favorites.RemoveByID(ctx, userID, favoriteID)
	if err != nil {
		ucLogger.Error("Failed to remove favorite", err, nil)
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		ucLogger.Warn("Favorite not found or owned by another user", nil)
		return domain.ErrNotFound
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
