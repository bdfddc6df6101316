package usecase

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

type TrackViewUseCase struct {
	recentlyViewed port.RecentlyViewedRepositoryPort
	properties     port.PropertyRepositoryPort
	metrics        port.MetricsPort
}

func NewTrackViewUseCase(recentlyViewed port.RecentlyViewedRepositoryPort, properties port.PropertyRepositoryPort, metrics port.MetricsPort) *TrackViewUseCase {
	return &TrackViewUseCase{recentlyViewed: recentlyViewed, properties: properties, metrics: metrics}
}

// Execute обновляет "недавно просмотренные" и увеличивает счетчик просмотров.
// Анонимные просмотры не учитываются. Оба шага выполняются независимо.
func (uc *TrackViewUseCase) Execute(ctx context.Context, viewerID *uuid.UUID, propertyID uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "TrackView",
		"property_id": propertyID,
	})

	if viewerID == nil {
		ucLogger.Debug("Anonymous view is not tracked", nil)
		return nil
	}
	ucLogger = ucLogger.WithFields(port.Fields{"user_id": *viewerID})

	var errs []error
	if err := uc.recentlyViewed.Touch(ctx, *viewerID, propertyID); err != nil {
		ucLogger.Error("Failed to upsert recently viewed", err, nil)
		errs = append(errs, fmt.Errorf("failed to record recently viewed: %w", err))
	}
	if err := uc.properties.IncrementViews(ctx, propertyID); err != nil {
		ucLogger.Error("Failed to increment views", err, nil)
		errs = append(errs, fmt.Errorf("failed to increment views: %w", err))
	}

	uc.metrics.ViewTracked(len(errs) == 0)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	ucLogger.Debug("View tracked", nil)
	return nil
}
