package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type GetPropertyDetailsUseCase struct {
	properties port.PropertyRepositoryPort
	agents     port.AgentRepositoryPort
	companies  port.CompanyRepositoryPort
	profiles   port.ProfileRepositoryPort
	favorites  port.FavoritesRepositoryPort
	trackView  usecases_port.TrackViewUseCasePort
}

func NewGetPropertyDetailsUseCase(
	properties port.PropertyRepositoryPort,
	agents port.AgentRepositoryPort,
	companies port.CompanyRepositoryPort,
	profiles port.ProfileRepositoryPort,
	favorites port.FavoritesRepositoryPort,
	trackView usecases_port.TrackViewUseCasePort,
) *GetPropertyDetailsUseCase {
	return &GetPropertyDetailsUseCase{
		properties: properties,
		agents:     agents,
		companies:  companies,
		profiles:   profiles,
		favorites:  favorites,
		trackView:  trackView,
	}
}

// Execute возвращает карточку объявления с агентом.
// Неопубликованные объявления видят только владелец и администратор.
// Учет просмотра не влияет на ответ.
func (uc *GetPropertyDetailsUseCase) Execute(ctx context.Context, propertyID uuid.UUID, viewerID *uuid.UUID) (*domain.PropertyDetails, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "GetPropertyDetails",
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	property, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		ucLogger.Warn("Property not found", nil)
		return nil, domain.ErrNotFound
	}

	details := &domain.PropertyDetails{Property: property}
	if property.AgentID != nil {
		agent, err := uc.agents.FindByID(ctx, *property.AgentID)
		if err != nil {
			ucLogger.Warn("Failed to load agent card", port.Fields{"error": err.Error()})
		}
		details.Agent = agent
	}

	if property.Status != domain.StatusPublished {
		visible, err := uc.canSeeUnpublished(ctx, details, viewerID)
		if err != nil {
			ucLogger.Error("Failed to check access to unpublished property", err, nil)
			return nil, err
		}
		if !visible {
			ucLogger.Warn("Unpublished property hidden from viewer", port.Fields{"status": property.Status})
			return nil, domain.ErrNotFound
		}
	}

	if viewerID != nil {
		isFavorite, err := uc.favorites.Exists(ctx, *viewerID, propertyID)
		if err != nil {
			ucLogger.Warn("Failed to check favorite flag", port.Fields{"error": err.Error()})
		}
		details.IsFavorite = isFavorite
	}

	if err := uc.trackView.Execute(ctx, viewerID, propertyID); err != nil {
		ucLogger.Warn("View tracking failed", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Use case finished successfully", nil)
	return details, nil
}

func (uc *GetPropertyDetailsUseCase) canSeeUnpublished(ctx context.Context, details *domain.PropertyDetails, viewerID *uuid.UUID) (bool, error) {
	if viewerID == nil {
		return false, nil
	}
	if details.Agent != nil && details.Agent.UserID == *viewerID {
		return true, nil
	}
	if details.Property.CompanyID != nil {
		company, err := uc.companies.FindByID(ctx, *details.Property.CompanyID)
		if err != nil {
			return false, fmt.Errorf("failed to load company: %w", err)
		}
		if company != nil && company.UserID == *viewerID {
			return true, nil
		}
	}
	profile, err := uc.profiles.FindByID(ctx, *viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile != nil && profile.Role == domain.RoleAdmin, nil
}
