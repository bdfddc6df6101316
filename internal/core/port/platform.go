package port

import (
	"context"
	"io"
	"time"

	"marketplace-service/internal/core/domain"
)

// TokenServicePort выпускает и проверяет токены доступа.
type TokenServicePort interface {
	GenerateToken(ctx context.Context, account *domain.Account, role domain.Role, ttl time.Duration) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// TokenRevocationPort хранит отозванные идентификаторы токенов до истечения их срока.
type TokenRevocationPort interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ListingPage - результат чтения страницы из кэша. Token фиксирует поколение кэша на момент
// чтения: страница, записанная по нему после Invalidate, уже никому не видна.
type ListingPage struct {
	Items []domain.Property
	Hit   bool
	Token string
}

// ListingCachePort кэширует результаты поиска объявлений.
// Ошибки кэша не должны ломать чтение: адаптеры возвращают их, use case только логирует.
type ListingCachePort interface {
	GetListings(ctx context.Context, key string) (ListingPage, error)
	// SetListings пишет страницу по Token из GetListings. Пустой токен ничего не пишет.
	SetListings(ctx context.Context, token string, properties []domain.Property) error
	// Invalidate делает недействительными все закэшированные страницы.
	Invalidate(ctx context.Context) error
}

// EventPublisherPort публикует доменные события.
type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.Event) error
}

// ObjectStoragePort сохраняет файлы и возвращает публичный URL.
type ObjectStoragePort interface {
	Put(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// MetricsPort - доменные счетчики.
type MetricsPort interface {
	AgentProvisioned(outcome string)
	FavoriteToggled(outcome domain.ToggleOutcome)
	ViewTracked(success bool)
	ListingQuery(listingType string, state domain.FetchState)
}
