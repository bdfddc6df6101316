package rest

import (
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

type SavedSearchHandlers struct {
	createUC usecases_port.CreateSavedSearchUseCasePort
	listUC   usecases_port.ListSavedSearchesUseCasePort
	deleteUC usecases_port.DeleteSavedSearchUseCasePort
	runUC    usecases_port.RunSavedSearchUseCasePort
}

func NewSavedSearchHandlers(
	createUC usecases_port.CreateSavedSearchUseCasePort,
	listUC usecases_port.ListSavedSearchesUseCasePort,
	deleteUC usecases_port.DeleteSavedSearchUseCasePort,
	runUC usecases_port.RunSavedSearchUseCasePort,
) *SavedSearchHandlers {
	return &SavedSearchHandlers{createUC: createUC, listUC: listUC, deleteUC: deleteUC, runUC: runUC}
}

func (h *SavedSearchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateSavedSearch"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	var req SavedSearchRequest
	if err := decodeJSON(r, contracts.SavedSearchRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid saved search request", err)
		return
	}

	search, err := h.createUC.Execute(r.Context(), caller.UserID, req.Name, req.ListingType, req.Filter.toDomain())
	if err != nil {
		writeUseCaseError(w, logger, "Create saved search failed", err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toSavedSearchResponse(*search))
}

func (h *SavedSearchHandlers) List(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListSavedSearches"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	searches, err := h.listUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "List saved searches failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSavedSearchList(searches))
}

func (h *SavedSearchHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteSavedSearch"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	searchID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid saved search id", err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), caller.UserID, searchID); err != nil {
		writeUseCaseError(w, logger, "Delete saved search failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Results выполняет сохраненный поиск по актуальным данным.
func (h *SavedSearchHandlers) Results(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RunSavedSearch"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	searchID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid saved search id", err)
		return
	}

	result, err := h.runUC.Execute(r.Context(), caller.UserID, searchID)
	if err != nil {
		writeUseCaseError(w, logger, "Run saved search failed", err)
		return
	}
	respondWithFetchResult(w, logger, result)
}
