package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers - все обработчики API.
type Handlers struct {
	Auth          *AuthHandlers
	Listings      *ListingHandlers
	Properties    *PropertyHandlers
	Favorites     *FavoritesHandlers
	SavedSearches *SavedSearchHandlers
	Agents        *AgentHandlers
	Admin         *AdminHandlers
}

// HTTPMetrics реализуется metrics_adapter.PrometheusMetrics.
type HTTPMetrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// HealthChecker - зависимость, без которой сервис не готов (пул БД).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Handlers       Handlers
	Auth           *AuthMiddleware
	Logger         port.LoggerPort
	Metrics        HTTPMetrics   // может быть nil
	Health         HealthChecker // может быть nil
	MediaRoot      string        // пусто - /media не раздается
	AllowedOrigins []string
}

// NewRouter собирает маршруты API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", traceIDHeader},
		ExposedHeaders:   []string{traceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := cfg.Handlers
	auth := cfg.Auth

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/featured", h.Listings.GetFeatured)
			r.Get("/cities", h.Listings.GetCities)
			r.Get("/{listingType}", h.Listings.GetListings)
		})

		r.Route("/properties", func(r chi.Router) {
			r.With(auth.OptionalAuth).Get("/{id}", h.Listings.GetPropertyDetails)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				// Кто может создавать объявления, решает разрешение личности, а не роль
				r.Post("/", h.Properties.CreateProperty)
				r.Put("/{id}", h.Properties.UpdateProperty)
				r.Patch("/{id}/status", h.Properties.UpdateStatus)
				r.Delete("/{id}", h.Properties.DeleteProperty)
				r.Post("/{id}/images", h.Properties.UploadImages)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", h.Favorites.List)
			r.Get("/ids", h.Favorites.IDs)
			r.Post("/{propertyID}/toggle", h.Favorites.Toggle)
			r.Delete("/{favoriteID}", h.Favorites.Remove)
		})

		r.Route("/saved-searches", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", h.SavedSearches.List)
			r.Post("/", h.SavedSearches.Create)
			r.Delete("/{id}", h.SavedSearches.Delete)
			r.Get("/{id}/results", h.SavedSearches.Results)
		})

		r.With(auth.RequireAuth).Get("/dashboard/user", h.Agents.UserDashboard)

		r.Route("/agent", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/identity", h.Agents.Identity)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAgent))
				r.Get("/dashboard", h.Agents.Dashboard)
				r.Get("/profile", h.Agents.GetProfile)
				r.Put("/profile", h.Agents.UpsertProfile)
			})
		})
		r.Get("/agents/{id}", h.Agents.AgentPage)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireRole(domain.RoleAdmin))
			r.Get("/overview", h.Admin.Overview)
			r.Patch("/users/{id}/role", h.Admin.ChangeRole)
			r.Get("/companies", h.Admin.ListCompanies)
			r.Post("/companies", h.Admin.CreateCompany)
			r.Put("/companies/{id}", h.Admin.UpdateCompany)
			r.Delete("/companies/{id}", h.Admin.DeleteCompany)
		})

		r.With(auth.RequireAuth, auth.RequireRole(domain.RoleAgent)).Post("/uploads/logo", h.Properties.UploadLogo)
	})

	if cfg.MediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", noDirListing(http.FileServer(http.Dir(cfg.MediaRoot)))))
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/healthz", healthHandler(cfg.Health))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// noDirListing не отдает оглавления каталогов медиа.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				WriteJSONError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Server - REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(listenPort string, handler http.Handler, logger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + listenPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
