package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type CreateSavedSearchUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, name, listingType string, filter domain.ListingFilter) (*domain.SavedSearch, error)
}

type ListSavedSearchesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error)
}

type DeleteSavedSearchUseCasePort interface {
	Execute(ctx context.Context, userID, searchID uuid.UUID) error
}

type RunSavedSearchUseCasePort interface {
	Execute(ctx context.Context, userID, searchID uuid.UUID) (domain.FetchResult[domain.Property], error)
}
