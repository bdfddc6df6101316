package rest

import (
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const listingsUnavailable = "Listings are temporarily unavailable"

type ListingHandlers struct {
	findUC     usecases_port.FindListingsUseCasePort
	featuredUC usecases_port.FeaturedListingsUseCasePort
	detailsUC  usecases_port.GetPropertyDetailsUseCasePort
	citiesUC   usecases_port.ListCitiesUseCasePort
}

func NewListingHandlers(
	findUC usecases_port.FindListingsUseCasePort,
	featuredUC usecases_port.FeaturedListingsUseCasePort,
	detailsUC usecases_port.GetPropertyDetailsUseCasePort,
	citiesUC usecases_port.ListCitiesUseCasePort,
) *ListingHandlers {
	return &ListingHandlers{findUC: findUC, featuredUC: featuredUC, detailsUC: detailsUC, citiesUC: citiesUC}
}

// respondWithFetchResult: Found и Empty -> 200 (пустой список как []), Failed -> 502.
func respondWithFetchResult(w http.ResponseWriter, logger port.LoggerPort, result domain.FetchResult[domain.Property]) {
	if result.Failed() {
		logger.Error("Listing query failed", result.Err, nil)
		WriteJSONError(w, http.StatusBadGateway, listingsUnavailable)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyList(result.Items))
}

// GetListings обрабатывает GET /api/v1/listings/{listingType}
func (h *ListingHandlers) GetListings(w http.ResponseWriter, r *http.Request) {
	listingType := chi.URLParam(r, "listingType")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":      "GetListings",
		"listing_type": listingType,
	})

	filter := domain.ParseListingFilter(r.URL.Query())
	result, err := h.findUC.Execute(r.Context(), listingType, filter)
	if err != nil {
		writeUseCaseError(w, logger, "Find listings rejected", err)
		return
	}
	respondWithFetchResult(w, logger, result)
}

// GetFeatured обрабатывает GET /api/v1/listings/featured
func (h *ListingHandlers) GetFeatured(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetFeatured"})
	respondWithFetchResult(w, logger, h.featuredUC.Execute(r.Context()))
}

// GetCities обрабатывает GET /api/v1/listings/cities
func (h *ListingHandlers) GetCities(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetCities"})

	result := h.citiesUC.Execute(r.Context())
	if result.Failed() {
		logger.Error("City query failed", result.Err, nil)
		WriteJSONError(w, http.StatusBadGateway, listingsUnavailable)
		return
	}
	RespondWithJSON(w, http.StatusOK, result.Items)
}

// GetPropertyDetails обрабатывает GET /api/v1/properties/{id}. Для вошедшего пользователя учитывается просмотр.
func (h *ListingHandlers) GetPropertyDetails(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPropertyDetails"})

	propertyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	var viewerID *uuid.UUID
	if caller, ok := contextkeys.CallerFromContext(r.Context()); ok {
		id := caller.UserID
		viewerID = &id
	}

	details, err := h.detailsUC.Execute(r.Context(), propertyID, viewerID)
	if err != nil {
		writeUseCaseError(w, logger, "Get property details failed", err)
		return
	}

	RespondWithJSON(w, http.StatusOK, PropertyDetailsResponse{
		Property:   toPropertyResponse(*details.Property),
		Agent:      toAgentResponse(details.Agent),
		IsFavorite: details.IsFavorite,
	})
}
