package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// propertyAccess решает, может ли пользователь изменять объявление:
// владелец (агент или компания) либо администратор.
type propertyAccess struct {
	identity  usecases_port.ResolveIdentityUseCasePort
	profiles  port.ProfileRepositoryPort
	companies port.CompanyRepositoryPort
}

func newPropertyAccess(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	companies port.CompanyRepositoryPort,
) propertyAccess {
	return propertyAccess{identity: identity, profiles: profiles, companies: companies}
}

func (a propertyAccess) isAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := a.profiles.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile != nil && profile.Role == domain.RoleAdmin, nil
}

// authorize возвращает ErrForbidden, если пользователь не владелец и не администратор.
func (a propertyAccess) authorize(ctx context.Context, userID uuid.UUID, p *domain.Property) error {
	admin, err := a.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}

	identity, err := a.identity.Execute(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve identity: %w", err)
	}
	if p.IsOwnedBy(identity) {
		return nil
	}

	// Объявление компании могло быть создано до появления у нее агента
	if p.CompanyID != nil {
		company, err := a.companies.FindByID(ctx, *p.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to load company: %w", err)
		}
		if company != nil && company.UserID == userID {
			return nil
		}
	}
	return domain.ErrForbidden
}
