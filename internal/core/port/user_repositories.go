package port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

// FavoritesRepositoryPort - пары (user_id, property_id) с уникальным индексом.
type FavoritesRepositoryPort interface {
	// Add вставляет пару с ON CONFLICT DO NOTHING.
	Add(ctx context.Context, userID, propertyID uuid.UUID) error
	// Remove возвращает true, если строка была удалена.
	Remove(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	// RemoveByID удаляет запись только если она принадлежит пользователю.
	RemoveByID(ctx context.Context, userID, favoriteID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	// FindByUser возвращает избранное с объявлениями, новые первыми. limit <= 0 - без ограничения.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Favorite, error)
	FindPropertyIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type SavedSearchRepositoryPort interface {
	Create(ctx context.Context, search *domain.SavedSearch) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.SavedSearch, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

type RecentlyViewedRepositoryPort interface {
	// Touch выполняет upsert (user_id, property_id) -> viewed_at = now().
	Touch(ctx context.Context, userID, propertyID uuid.UUID) error
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecentlyViewed, error)
}
