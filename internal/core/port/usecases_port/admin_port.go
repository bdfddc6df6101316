package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetAdminOverviewUseCasePort interface {
	Execute(ctx context.Context) (*domain.AdminOverview, error)
}

type ChangeUserRoleUseCasePort interface {
	Execute(ctx context.Context, adminID, userID uuid.UUID, role string) error
}

type CreateCompanyUseCasePort interface {
	Execute(ctx context.Context, reg domain.CompanyRegistration) (*domain.CompanyOnboarding, error)
}

type ListCompaniesUseCasePort interface {
	Execute(ctx context.Context) ([]domain.RealEstateCompany, error)
}

type UpdateCompanyUseCasePort interface {
	Execute(ctx context.Context, companyID uuid.UUID, input domain.CompanyContactInput) (*domain.RealEstateCompany, error)
}

type DeleteCompanyUseCasePort interface {
	Execute(ctx context.Context, companyID uuid.UUID) error
}
