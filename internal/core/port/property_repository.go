package port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

// PropertyRepositoryPort - хранилище объявлений.
type PropertyRepositoryPort interface {
	// FindPublished возвращает опубликованные объявления типа listingType, новые первыми.
	FindPublished(ctx context.Context, listingType domain.ListingType, filter domain.ListingFilter) ([]domain.Property, error)
	// FindFeatured возвращает не более limit опубликованных объявлений buy и rent.
	FindFeatured(ctx context.Context, limit int) ([]domain.Property, error)
	// FindPublishedCities возвращает различные города опубликованных объявлений по алфавиту.
	FindPublishedCities(ctx context.Context) ([]string, error)
	// FindByID возвращает (nil, nil), если объявления нет.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	FindByOwner(ctx context.Context, owner domain.PropertyOwnerFilter) ([]domain.Property, error)
	FindAll(ctx context.Context) ([]domain.Property, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)
	Create(ctx context.Context, p *domain.Property) error
	Update(ctx context.Context, p *domain.Property) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error
	AppendImages(ctx context.Context, id uuid.UUID, urls []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementViews атомарно увеличивает счетчик просмотров на 1.
	IncrementViews(ctx context.Context, id uuid.UUID) error
}
