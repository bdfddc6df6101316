package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"
)

type FindListingsUseCasePort interface {
	Execute(ctx context.Context, listingType string, filter domain.ListingFilter) (domain.FetchResult[domain.Property], error)
}

type FeaturedListingsUseCasePort interface {
	Execute(ctx context.Context) domain.FetchResult[domain.Property]
}

type ListCitiesUseCasePort interface {
	Execute(ctx context.Context) domain.FetchResult[string]
}
