package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBodyBytes = 1 << 20

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithJSON - хелпер для отправки JSON ответов.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteJSONError - хелпер для отправки ошибок в формате JSON.
func WriteJSONError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// statusForError сопоставляет доменные ошибки со статусами HTTP.
// Для 5xx текст ошибки наружу не отдается.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrIneligibleIdentity):
		return http.StatusForbidden, domain.ErrIneligibleIdentity.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrEmailInUse):
		return http.StatusConflict, domain.ErrEmailInUse.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeUseCaseError пишет ответ по ошибке use case. Ошибки клиента логируются как warn.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, msg string, err error) {
	code, text := statusForError(err)
	if code >= http.StatusInternalServerError {
		logger.Error(msg, err, nil)
	} else {
		logger.Warn(msg, port.Fields{"error": err.Error(), "status_code": code})
	}
	WriteJSONError(w, code, text)
}

// decodeJSON читает тело, проверяет его по схеме запроса и раскладывает в dst.
func decodeJSON(r *http.Request, schema string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return domain.NewValidationError("failed to read request body")
	}
	if len(body) > maxJSONBodyBytes {
		return domain.NewValidationError("request body is too large")
	}
	if err := contracts.ValidateRequest(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

// uuidParam разбирает параметр пути как UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s %q", name, raw)
	}
	return id, nil
}
