package rest

import (
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

type AuthHandlers struct {
	registerUC  usecases_port.RegisterUserUseCasePort
	loginUC     usecases_port.LoginUserUseCasePort
	logoutUC    usecases_port.LogoutUserUseCasePort
	currentUser usecases_port.GetCurrentUserUseCasePort
}

func NewAuthHandlers(
	registerUC usecases_port.RegisterUserUseCasePort,
	loginUC usecases_port.LoginUserUseCasePort,
	logoutUC usecases_port.LogoutUserUseCasePort,
	currentUser usecases_port.GetCurrentUserUseCasePort,
) *AuthHandlers {
	return &AuthHandlers{
		registerUC:  registerUC,
		loginUC:     loginUC,
		logoutUC:    logoutUC,
		currentUser: currentUser,
	}
}

// Register обрабатывает POST /api/v1/auth/register
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Register"})

	var req RegisterRequest
	if err := decodeJSON(r, contracts.RegisterRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid register request", err)
		return
	}

	// Пароль в лог не попадает
	handlerLogger := logger.WithFields(port.Fields{"email": req.Email})
	handlerLogger.Info("Processing register request", nil)

	profile, token, err := h.registerUC.Execute(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeUseCaseError(w, handlerLogger, "Register use case failed", err)
		return
	}

	handlerLogger.Info("User registered successfully", port.Fields{"user_id": profile.ID})
	RespondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toProfileResponse(profile)})
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Login"})

	var req LoginRequest
	if err := decodeJSON(r, contracts.LoginRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid login request", err)
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"email": req.Email})
	profile, token, err := h.loginUC.Execute(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUseCaseError(w, handlerLogger, "Login failed", err)
		return
	}

	handlerLogger.Info("User logged in successfully", port.Fields{"user_id": profile.ID})
	RespondWithJSON(w, http.StatusOK, AuthResponse{Token: token, User: toProfileResponse(profile)})
}

// Logout отзывает токен из заголовка Authorization.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Logout"})

	token, _ := bearerToken(r)
	if err := h.logoutUC.Execute(r.Context(), token); err != nil {
		writeUseCaseError(w, logger, "Logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me обрабатывает GET /api/v1/auth/me
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Me"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	profile, err := h.currentUser.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "Get current user failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toProfileResponse(profile))
}
