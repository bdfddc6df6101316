package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type TrackViewUseCasePort interface {
	Execute(ctx context.Context, viewerID *uuid.UUID, propertyID uuid.UUID) error
}

type GetPropertyDetailsUseCasePort interface {
	Execute(ctx context.Context, propertyID uuid.UUID, viewerID *uuid.UUID) (*domain.PropertyDetails, error)
}

type CreatePropertyUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, input domain.PropertyInput) (*domain.Property, error)
}

type UpdatePropertyUseCasePort interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID, input domain.PropertyInput) (*domain.Property, error)
}

type UpdatePropertyStatusUseCasePort interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID, status domain.PropertyStatus) error
}

type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID) error
}

type UploadPropertyImagesUseCasePort interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID, files []domain.UploadFile) (*domain.UploadReport, error)
}

type UploadLogoUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, file domain.UploadFile) (string, error)
}
