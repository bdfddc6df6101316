package usecase

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type CreatePropertyUseCase struct {
	identity   usecases_port.ResolveIdentityUseCasePort
	profiles   port.ProfileRepositoryPort
	agents     port.AgentRepositoryPort
	properties port.PropertyRepositoryPort
	cache      port.ListingCachePort
	publisher  port.EventPublisherPort
}

func NewCreatePropertyUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	agents port.AgentRepositoryPort,
	properties port.PropertyRepositoryPort,
	cache port.ListingCachePort,
	publisher port.EventPublisherPort,
) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{
		identity:   identity,
		profiles:   profiles,
		agents:     agents,
		properties: properties,
		cache:      cache,
		publisher:  publisher,
	}
}

// Execute создает объявление в статусе draft или published.
// HasAgent -> agent_id; EligibleCompanyNoAgent -> agent_id NULL и company_id компании;
// Ineligible допускается только для администратора.
// Явный agent_id может передать только администратор, агент должен существовать.
func (uc *CreatePropertyUseCase) Execute(ctx context.Context, userID uuid.UUID, input domain.PropertyInput) (*domain.Property, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CreateProperty",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	property, err := domain.NewProperty(input)
	if err != nil {
		ucLogger.Warn("Property input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	identity, err := uc.identity.Execute(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to resolve identity", err, nil)
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if !identity.CanOwnListings() || input.AgentID != nil {
		profile, err := uc.profiles.FindByID(ctx, userID)
		if err != nil {
			ucLogger.Error("Failed to load profile", err, nil)
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		if profile == nil || profile.Role != domain.RoleAdmin {
			if input.AgentID != nil {
				ucLogger.Warn("Agent assignment requires admin role", nil)
				return nil, domain.ErrForbidden
			}
			ucLogger.Warn("User cannot own listings", nil)
			return nil, domain.ErrIneligibleIdentity
		}
	}

	property.AgentID, property.CompanyID = identity.OwnerRefs()
	if input.AgentID != nil {
		agent, err := uc.agents.FindByID(ctx, *input.AgentID)
		if err != nil {
			ucLogger.Error("Failed to load assigned agent", err, nil)
			return nil, fmt.Errorf("failed to load agent: %w", err)
		}
		if agent == nil {
			ucLogger.Warn("Assigned agent does not exist", port.Fields{"agent_id": *input.AgentID})
			return nil, domain.NewValidationError("agent %s does not exist", *input.AgentID)
		}
		property.AgentID, property.CompanyID = &agent.ID, nil
	}
	ucLogger = ucLogger.WithFields(port.Fields{
		"property_id": property.ID,
		"identity":    identity.Kind.String(),
	})

	if err := uc.properties.Create(ctx, property); err != nil {
		ucLogger.Error("Failed to create property", err, nil)
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	invalidateListings(ctx, uc.cache, ucLogger)
	publishEvent(ctx, uc.publisher, ucLogger, domain.NewEvent(domain.EventPropertyCreated, property.ID, userID, map[string]string{
		"listing_type": string(property.ListingType),
		"identity":     identity.Kind.String(),
		"status":       string(property.Status),
	}))

	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}

type UpdatePropertyUseCase struct {
	access     propertyAccess
	properties port.PropertyRepositoryPort
	cache      port.ListingCachePort
}

func NewUpdatePropertyUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	companies port.CompanyRepositoryPort,
	properties port.PropertyRepositoryPort,
	cache port.ListingCachePort,
) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{
		access:     newPropertyAccess(identity, profiles, companies),
		properties: properties,
		cache:      cache,
	}
}

func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID, input domain.PropertyInput) (*domain.Property, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "UpdateProperty",
		"user_id":     userID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	property, err := loadProperty(ctx, uc.properties, propertyID)
	if err != nil {
		ucLogger.Warn("Property could not be loaded", port.Fields{"error": err.Error()})
		return nil, err
	}
	if err := uc.access.authorize(ctx, userID, property); err != nil {
		ucLogger.Warn("Update denied", port.Fields{"error": err.Error()})
		return nil, err
	}

	property.Apply(input)
	property.UpdatedAt = time.Now().UTC()
	if err := property.Validate(); err != nil {
		ucLogger.Warn("Property input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	if err := uc.properties.Update(ctx, property); err != nil {
		ucLogger.Error("Failed to update property", err, nil)
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	invalidateListings(ctx, uc.cache, ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}

type UpdatePropertyStatusUseCase struct {
	access     propertyAccess
	properties port.PropertyRepositoryPort
	cache      port.ListingCachePort
	publisher  port.EventPublisherPort
}

func NewUpdatePropertyStatusUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	companies port.CompanyRepositoryPort,
	properties port.PropertyRepositoryPort,
	cache port.ListingCachePort,
	publisher port.EventPublisherPort,
) *UpdatePropertyStatusUseCase {
	return &UpdatePropertyStatusUseCase{
		access:     newPropertyAccess(identity, profiles, companies),
		properties: properties,
		cache:      cache,
		publisher:  publisher,
	}
}

func (uc *UpdatePropertyStatusUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID, status domain.PropertyStatus) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "UpdatePropertyStatus",
		"user_id":     userID,
		"property_id": propertyID,
		"status":      status,
	})
	ucLogger.Info("Use case started", nil)

	if _, err := domain.ParsePropertyStatus(string(status)); err != nil {
		return err
	}

	property, err := loadProperty(ctx, uc.properties, propertyID)
	if err != nil {
		ucLogger.Warn("Property could not be loaded", port.Fields{"error": err.Error()})
		return err
	}
	if err := uc.access.authorize(ctx, userID, property); err != nil {
		ucLogger.Warn("Status change denied", port.Fields{"error": err.Error()})
		return err
	}
	if property.Status == status {
		ucLogger.Info("Status unchanged", nil)
		return nil
	}

	if err := uc.properties.UpdateStatus(ctx, propertyID, status); err != nil {
		ucLogger.Error("Failed to update status", err, nil)
		return fmt.Errorf("failed to update status: %w", err)
	}

	invalidateListings(ctx, uc.cache, ucLogger)
	publishEvent(ctx, uc.publisher, ucLogger, domain.NewEvent(domain.EventPropertyStatusChanged, propertyID, userID, map[string]string{
		"from": string(property.Status),
		"to":   string(status),
	}))

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type DeletePropertyUseCase struct {
	access     propertyAccess
	properties port.PropertyRepositoryPort
	storage    port.ObjectStoragePort
	cache      port.ListingCachePort
	publisher  port.EventPublisherPort
}

func NewDeletePropertyUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	companies port.CompanyRepositoryPort,
	properties port.PropertyRepositoryPort,
	storage port.ObjectStoragePort,
	cache port.ListingCachePort,
	publisher port.EventPublisherPort,
) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{
		access:     newPropertyAccess(identity, profiles, companies),
		properties: properties,
		storage:    storage,
		cache:      cache,
		publisher:  publisher,
	}
}

// Execute удаляет объявление, затем его изображения. Ошибки удаления файлов только логируются.
func (uc *DeletePropertyUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"user_id":     userID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	property, err := loadProperty(ctx, uc.properties, propertyID)
	if err != nil {
		ucLogger.Warn("Property could not be loaded", port.Fields{"error": err.Error()})
		return err
	}
	if err := uc.access.authorize(ctx, userID, property); err != nil {
		ucLogger.Warn("Delete denied", port.Fields{"error": err.Error()})
		return err
	}

	if err := uc.properties.Delete(ctx, propertyID); err != nil {
		ucLogger.Error("Failed to delete property", err, nil)
		return fmt.Errorf("failed to delete property: %w", err)
	}

	for _, url := range property.Images {
		if err := uc.storage.DeleteByURL(ctx, url); err != nil {
			ucLogger.Warn("Failed to delete property image", port.Fields{"url": url, "error": err.Error()})
		}
	}

	invalidateListings(ctx, uc.cache, ucLogger)
	publishEvent(ctx, uc.publisher, ucLogger, domain.NewEvent(domain.EventPropertyDeleted, propertyID, userID, nil))

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

func loadProperty(ctx context.Context, repo port.PropertyRepositoryPort, id uuid.UUID) (*domain.Property, error) {
	property, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	return property, nil
}
