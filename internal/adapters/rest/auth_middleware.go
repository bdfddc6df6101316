package rest

import (
	"net/http"
	"strings"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

// AuthMiddleware проверяет Bearer токен и роль пользователя.
type AuthMiddleware struct {
	authenticate usecases_port.AuthenticateUseCasePort
	authorize    usecases_port.AuthorizeRoleUseCasePort
}

func NewAuthMiddleware(authenticate usecases_port.AuthenticateUseCasePort, authorize usecases_port.AuthorizeRoleUseCasePort) *AuthMiddleware {
	return &AuthMiddleware{authenticate: authenticate, authorize: authorize}
}

// bearerToken возвращает токен и признак того, что заголовок вообще был передан.
func bearerToken(r *http.Request) (token string, present bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

func (am *AuthMiddleware) callerFor(r *http.Request, token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	return am.authenticate.Execute(r.Context(), token)
}

func withCaller(r *http.Request, claims *domain.Claims) *http.Request {
	ctx := contextkeys.ContextWithCaller(r.Context(), domain.Caller{UserID: claims.UserID, Email: claims.Email})
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"user_id": claims.UserID})
	ctx = contextkeys.ContextWithLogger(ctx, logger)
	return r.WithContext(ctx)
}

// RequireAuth пропускает только запросы с действующим токеном.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"middleware": "RequireAuth"})

		token, present := bearerToken(r)
		if !present {
			WriteJSONError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		claims, err := am.callerFor(r, token)
		if err != nil {
			writeUseCaseError(w, logger, "Authentication failed", err)
			return
		}
		next.ServeHTTP(w, withCaller(r, claims))
	})
}

// OptionalAuth пропускает анонимные запросы, но отклоняет переданный недействительный токен.
func (am *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := bearerToken(r)
		if !present {
			next.ServeHTTP(w, r)
			return
		}
		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"middleware": "OptionalAuth"})
		claims, err := am.callerFor(r, token)
		if err != nil {
			writeUseCaseError(w, logger, "Authentication failed", err)
			return
		}
		next.ServeHTTP(w, withCaller(r, claims))
	})
}

// RequireRole проверяет роль по профилю. Должен стоять после RequireAuth.
func (am *AuthMiddleware) RequireRole(required domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
				"middleware":    "RequireRole",
				"required_role": string(required),
			})

			caller, ok := contextkeys.CallerFromContext(r.Context())
			if !ok {
				logger.Error("RequireRole used without authentication", nil, nil)
				WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if err := am.authorize.Execute(r.Context(), caller.UserID, required); err != nil {
				writeUseCaseError(w, logger, "Authorization failed", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerOrUnauthorized достает пользователя из контекста или пишет 401.
func callerOrUnauthorized(w http.ResponseWriter, r *http.Request, logger port.LoggerPort) (domain.Caller, bool) {
	caller, ok := contextkeys.CallerFromContext(r.Context())
	if !ok {
		logger.Error("Invalid or missing caller in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
	}
	return caller, ok
}
