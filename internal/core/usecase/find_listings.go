package usecase

import (
	"context"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
)

// FeaturedLimit - сколько объявлений показывается на главной странице.
const FeaturedLimit = 6

type FindListingsUseCase struct {
	repo    port.PropertyRepositoryPort
	cache   port.ListingCachePort
	metrics port.MetricsPort
}

func NewFindListingsUseCase(repo port.PropertyRepositoryPort, cache port.ListingCachePort, metrics port.MetricsPort) *FindListingsUseCase {
	return &FindListingsUseCase{repo: repo, cache: cache, metrics: metrics}
}

// Execute возвращает ошибку только для неизвестного типа сделки.
// Сбой хранилища передается через состояние FetchFailed.
func (uc *FindListingsUseCase) Execute(ctx context.Context, listingType string, filter domain.ListingFilter) (domain.FetchResult[domain.Property], error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "FindListings",
		"listing_type": listingType,
	})

	lt, err := domain.ParseListingType(listingType)
	if err != nil {
		ucLogger.Warn("Rejected unknown listing type", nil)
		return domain.NewFetchResult[domain.Property](nil, err), err
	}

	filter = filter.Normalized()
	ucLogger.Info("Use case started", port.Fields{"filter": filter.Values().Encode()})

	key := listingCacheKey(lt, filter)
	page, err := uc.cache.GetListings(ctx, key)
	if err != nil {
		ucLogger.Warn("Listing cache read failed, falling back to store", port.Fields{"error": err.Error()})
	} else if page.Hit {
		result := domain.NewFetchResult(page.Items, nil)
		uc.metrics.ListingQuery(string(lt), result.State)
		ucLogger.Info("Use case finished from cache", port.Fields{"count": len(result.Items)})
		return result, nil
	}

	properties, err := uc.repo.FindPublished(ctx, lt, filter)
	result := domain.NewFetchResult(keepMatching(ucLogger, lt, filter, properties), err)
	uc.metrics.ListingQuery(string(lt), result.State)

	if result.Failed() {
		ucLogger.Error("Listing query failed", result.Err, nil)
		return result, nil
	}

	// Запись идет по токену, полученному до запроса в БД.
	if err := uc.cache.SetListings(ctx, page.Token, result.Items); err != nil {
		ucLogger.Warn("Listing cache write failed", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"state": result.State.String(), "count": len(result.Items)})
	return result, nil
}

// keepMatching отбрасывает строки, нарушающие предикат поиска.
func keepMatching(logger port.LoggerPort, lt domain.ListingType, filter domain.ListingFilter, properties []domain.Property) []domain.Property {
	out := properties[:0:0]
	for _, p := range properties {
		if filter.Matches(lt, p) {
			out = append(out, p)
			continue
		}
		logger.Warn("Store returned a row outside of the listing predicate", port.Fields{
			"property_id": p.ID,
			"status":      p.Status,
		})
	}
	return out
}

type FeaturedListingsUseCase struct {
	repo    port.PropertyRepositoryPort
	cache   port.ListingCachePort
	metrics port.MetricsPort
}

func NewFeaturedListingsUseCase(repo port.PropertyRepositoryPort, cache port.ListingCachePort, metrics port.MetricsPort) *FeaturedListingsUseCase {
	return &FeaturedListingsUseCase{repo: repo, cache: cache, metrics: metrics}
}

func (uc *FeaturedListingsUseCase) Execute(ctx context.Context) domain.FetchResult[domain.Property] {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "FeaturedListings"})
	ucLogger.Info("Use case started", nil)

	page, err := uc.cache.GetListings(ctx, featuredCacheKey)
	if err != nil {
		ucLogger.Warn("Listing cache read failed, falling back to store", port.Fields{"error": err.Error()})
	} else if page.Hit {
		result := domain.NewFetchResult(page.Items, nil)
		uc.metrics.ListingQuery("featured", result.State)
		ucLogger.Info("Use case finished from cache", port.Fields{"count": len(result.Items)})
		return result
	}

	properties, err := uc.repo.FindFeatured(ctx, FeaturedLimit)
	if err == nil {
		properties = keepPublished(properties)
		if len(properties) > FeaturedLimit {
			properties = properties[:FeaturedLimit]
		}
	}
	result := domain.NewFetchResult(properties, err)
	uc.metrics.ListingQuery("featured", result.State)

	if result.Failed() {
		ucLogger.Error("Featured listing query failed", result.Err, nil)
		return result
	}

	if err := uc.cache.SetListings(ctx, page.Token, result.Items); err != nil {
		ucLogger.Warn("Listing cache write failed", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(result.Items)})
	return result
}

func keepPublished(properties []domain.Property) []domain.Property {
	out := properties[:0:0]
	for _, p := range properties {
		if p.Status == domain.StatusPublished && (p.ListingType == domain.ListingTypeBuy || p.ListingType == domain.ListingTypeRent) {
			out = append(out, p)
		}
	}
	return out
}

// ListCitiesUseCase отдает города с опубликованными объявлениями для фильтра поиска.
type ListCitiesUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewListCitiesUseCase(repo port.PropertyRepositoryPort) *ListCitiesUseCase {
	return &ListCitiesUseCase{repo: repo}
}

func (uc *ListCitiesUseCase) Execute(ctx context.Context) domain.FetchResult[string] {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ListCities"})

	cities, err := uc.repo.FindPublishedCities(ctx)
	result := domain.NewFetchResult(cities, err)
	if result.Failed() {
		ucLogger.Error("City query failed", result.Err, nil)
		return result
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(result.Items)})
	return result
}
