package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type CreateSavedSearchUseCase struct {
	repo port.SavedSearchRepositoryPort
}

func NewCreateSavedSearchUseCase(repo port.SavedSearchRepositoryPort) *CreateSavedSearchUseCase {
	return &CreateSavedSearchUseCase{repo: repo}
}

func (uc *CreateSavedSearchUseCase) Execute(ctx context.Context, userID uuid.UUID, name, listingType string, filter domain.ListingFilter) (*domain.SavedSearch, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CreateSavedSearch",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	lt, err := domain.ParseListingType(listingType)
	if err != nil {
		return nil, err
	}
	search, err := domain.NewSavedSearch(userID, name, lt, filter)
	if err != nil {
		ucLogger.Warn("Saved search rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	if err := uc.repo.Create(ctx, search); err != nil {
		ucLogger.Error("Failed to create saved search", err, nil)
		return nil, fmt.Errorf("failed to create saved search: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"saved_search_id": search.ID})
	return search, nil
}

type ListSavedSearchesUseCase struct {
	repo port.SavedSearchRepositoryPort
}

func NewListSavedSearchesUseCase(repo port.SavedSearchRepositoryPort) *ListSavedSearchesUseCase {
	return &ListSavedSearchesUseCase{repo: repo}
}

func (uc *ListSavedSearchesUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	searches, err := uc.repo.FindByUser(ctx, userID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list saved searches", err, port.Fields{
			"use_case": "ListSavedSearches",
			"user_id":  userID,
		})
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	return searches, nil
}

type DeleteSavedSearchUseCase struct {
	repo port.SavedSearchRepositoryPort
}

func NewDeleteSavedSearchUseCase(repo port.SavedSearchRepositoryPort) *DeleteSavedSearchUseCase {
	return &DeleteSavedSearchUseCase{repo: repo}
}

func (uc *DeleteSavedSearchUseCase) Execute(ctx context.Context, userID, searchID uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":        "DeleteSavedSearch",
		"user_id":         userID,
		"saved_search_id": searchID,
	})

	deleted, err := uc.repo.Delete(ctx, userID, searchID)
	if err != nil {
		ucLogger.Error("Failed to delete saved search", err, nil)
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	if !deleted {
		ucLogger.Warn("Saved search not found", nil)
		return domain.ErrNotFound
	}

	ucLogger.Info("Saved search deleted", nil)
	return nil
}

// RunSavedSearchUseCase строит живой поиск из снимка фильтра, а не воспроизводит старые результаты.
type RunSavedSearchUseCase struct {
	repo         port.SavedSearchRepositoryPort
	findListings usecases_port.FindListingsUseCasePort
}

func NewRunSavedSearchUseCase(repo port.SavedSearchRepositoryPort, findListings usecases_port.FindListingsUseCasePort) *RunSavedSearchUseCase {
	return &RunSavedSearchUseCase{repo: repo, findListings: findListings}
}

func (uc *RunSavedSearchUseCase) Execute(ctx context.Context, userID, searchID uuid.UUID) (domain.FetchResult[domain.Property], error) {
	search, err := uc.repo.FindByID(ctx, userID, searchID)
	if err != nil {
		return domain.NewFetchResult[domain.Property](nil, err), fmt.Errorf("failed to load saved search: %w", err)
	}
	if search == nil {
		return domain.NewFetchResult[domain.Property](nil, domain.ErrNotFound), domain.ErrNotFound
	}
	return uc.findListings.Execute(ctx, string(search.ListingType), search.Filter)
}
