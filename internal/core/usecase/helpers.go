package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
)

const featuredCacheKey = "listings:featured"

// listingCacheKey строит ключ кэша из типа сделки и нормализованного фильтра.
func listingCacheKey(listingType domain.ListingType, filter domain.ListingFilter) string {
	payload, err := json.Marshal(filter)
	if err != nil {
		payload = []byte(filter.Values().Encode())
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("listings:%s:%s", listingType, hex.EncodeToString(sum[:16]))
}

// publishEvent отправляет событие; ошибка публикации не ломает операцию пользователя.
func publishEvent(ctx context.Context, publisher port.EventPublisherPort, logger port.LoggerPort, event domain.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish domain event", err, port.Fields{
			"event_type":   event.Type,
			"aggregate_id": event.AggregateID,
		})
	}
}

// invalidateListings сбрасывает кэш страниц объявлений после записи.
func invalidateListings(ctx context.Context, cache port.ListingCachePort, logger port.LoggerPort) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate listing cache", port.Fields{"error": err.Error()})
	}
}
