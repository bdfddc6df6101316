package rest

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthenticate struct{ mock.Mock }

func (m *mockAuthenticate) Execute(ctx context.Context, token string) (*domain.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*domain.Claims)
	return claims, args.Error(1)
}

type mockAuthorize struct{ mock.Mock }

func (m *mockAuthorize) Execute(ctx context.Context, userID uuid.UUID, required domain.Role) error {
	return m.Called(ctx, userID, required).Error(0)
}

type mockFindListings struct{ mock.Mock }

func (m *mockFindListings) Execute(ctx context.Context, listingType string, filter domain.ListingFilter) (domain.FetchResult[domain.Property], error) {
	args := m.Called(ctx, listingType, filter)
	return args.Get(0).(domain.FetchResult[domain.Property]), args.Error(1)
}

type mockListCities struct{ mock.Mock }

func (m *mockListCities) Execute(ctx context.Context) domain.FetchResult[string] {
	return m.Called(ctx).Get(0).(domain.FetchResult[string])
}

type mockFeaturedListings struct{ mock.Mock }

func (m *mockFeaturedListings) Execute(ctx context.Context) domain.FetchResult[domain.Property] {
	return m.Called(ctx).Get(0).(domain.FetchResult[domain.Property])
}

type mockPropertyDetails struct{ mock.Mock }

func (m *mockPropertyDetails) Execute(ctx context.Context, propertyID uuid.UUID, viewerID *uuid.UUID) (*domain.PropertyDetails, error) {
	args := m.Called(ctx, propertyID, viewerID)
	details, _ := args.Get(0).(*domain.PropertyDetails)
	return details, args.Error(1)
}

type mockToggleFavorite struct{ mock.Mock }

func (m *mockToggleFavorite) Execute(ctx context.Context, userID, propertyID uuid.UUID) (domain.ToggleOutcome, error) {
	args := m.Called(ctx, userID, propertyID)
	return args.Get(0).(domain.ToggleOutcome), args.Error(1)
}

type mockCreateProperty struct{ mock.Mock }

func (m *mockCreateProperty) Execute(ctx context.Context, userID uuid.UUID, input domain.PropertyInput) (*domain.Property, error) {
	args := m.Called(ctx, userID, input)
	property, _ := args.Get(0).(*domain.Property)
	return property, args.Error(1)
}

type mockUploadImages struct{ mock.Mock }

func (m *mockUploadImages) Execute(ctx context.Context, userID, propertyID uuid.UUID, files []domain.UploadFile) (*domain.UploadReport, error) {
	args := m.Called(ctx, userID, propertyID, files)
	report, _ := args.Get(0).(*domain.UploadReport)
	return report, args.Error(1)
}

type mockAdminOverview struct{ mock.Mock }

func (m *mockAdminOverview) Execute(ctx context.Context) (*domain.AdminOverview, error) {
	args := m.Called(ctx)
	overview, _ := args.Get(0).(*domain.AdminOverview)
	return overview, args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
