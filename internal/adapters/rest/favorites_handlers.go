package rest

import (
	"net/http"
	"strconv"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type FavoritesHandlers struct {
	toggleUC usecases_port.ToggleFavoriteUseCasePort
	listUC   usecases_port.ListFavoritesUseCasePort
	idsUC    usecases_port.ListFavoriteIDsUseCasePort
	removeUC usecases_port.RemoveFavoriteUseCasePort
}

func NewFavoritesHandlers(
	toggleUC usecases_port.ToggleFavoriteUseCasePort,
	listUC usecases_port.ListFavoritesUseCasePort,
	idsUC usecases_port.ListFavoriteIDsUseCasePort,
	removeUC usecases_port.RemoveFavoriteUseCasePort,
) *FavoritesHandlers {
	return &FavoritesHandlers{toggleUC: toggleUC, listUC: listUC, idsUC: idsUC, removeUC: removeUC}
}

// Toggle обрабатывает POST /api/v1/favorites/{propertyID}/toggle
func (h *FavoritesHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ToggleFavorite"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	outcome, err := h.toggleUC.Execute(r.Context(), caller.UserID, propertyID)
	if err != nil {
		writeUseCaseError(w, logger, "Toggle favorite failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ToggleFavoriteResponse{
		Status:     string(outcome),
		IsFavorite: outcome == domain.FavoriteAdded,
	})
}

// List обрабатывает GET /api/v1/favorites?limit=N
func (h *FavoritesHandlers) List(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListFavorites"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	// Некорректный или отрицательный limit означает "без ограничения"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}

	favorites, err := h.listUC.Execute(r.Context(), caller.UserID, limit)
	if err != nil {
		writeUseCaseError(w, logger, "List favorites failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toFavoriteList(favorites))
}

// IDs обрабатывает GET /api/v1/favorites/ids
func (h *FavoritesHandlers) IDs(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListFavoriteIDs"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	ids, err := h.idsUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "List favorite ids failed", err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	RespondWithJSON(w, http.StatusOK, ids)
}

// Remove обрабатывает DELETE /api/v1/favorites/{favoriteID}
func (h *FavoritesHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RemoveFavorite"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	favoriteID, err := uuidParam(r, "favoriteID")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid favorite id", err)
		return
	}

	if err := h.removeUC.Execute(r.Context(), caller.UserID, favoriteID); err != nil {
		writeUseCaseError(w, logger, "Remove favorite failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
