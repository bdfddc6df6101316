package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

type GetAdminOverviewUseCase struct {
	properties port.PropertyRepositoryPort
	profiles   port.ProfileRepositoryPort
	agents     port.AgentRepositoryPort
	companies  port.CompanyRepositoryPort
}

func NewGetAdminOverviewUseCase(
	properties port.PropertyRepositoryPort,
	profiles port.ProfileRepositoryPort,
	agents port.AgentRepositoryPort,
	companies port.CompanyRepositoryPort,
) *GetAdminOverviewUseCase {
	return &GetAdminOverviewUseCase{
		properties: properties,
		profiles:   profiles,
		agents:     agents,
		companies:  companies,
	}
}

func (uc *GetAdminOverviewUseCase) Execute(ctx context.Context) (*domain.AdminOverview, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetAdminOverview"})
	ucLogger.Info("Use case started", nil)

	properties, err := uc.properties.FindAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to load properties", err, nil)
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	profiles, err := uc.profiles.FindAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to load profiles", err, nil)
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	agents, err := uc.agents.FindAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to load agents", err, nil)
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	companies, err := uc.companies.FindAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to load companies", err, nil)
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"properties": len(properties),
		"profiles":   len(profiles),
	})
	return &domain.AdminOverview{
		Properties: properties,
		Profiles:   profiles,
		Agents:     agents,
		Companies:  companies,
	}, nil
}

type ChangeUserRoleUseCase struct {
	profiles port.ProfileRepositoryPort
}

func NewChangeUserRoleUseCase(profiles port.ProfileRepositoryPort) *ChangeUserRoleUseCase {
	return &ChangeUserRoleUseCase{profiles: profiles}
}

func (uc *ChangeUserRoleUseCase) Execute(ctx context.Context, adminID, userID uuid.UUID, role string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ChangeUserRole",
		"admin_id": adminID,
		"user_id":  userID,
		"role":     role,
	})
	ucLogger.Info("Use case started", nil)

	newRole, err := domain.ParseRole(role)
	if err != nil {
		return err
	}
	if adminID == userID {
		ucLogger.Warn("Admin attempted to change own role", nil)
		return domain.NewValidationError("administrators cannot change their own role")
	}

	if err := uc.profiles.UpdateRole(ctx, userID, newRole); err != nil {
		ucLogger.Error("Failed to update role", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type CreateCompanyUseCase struct {
	accounts   port.AccountRepositoryPort
	onboarding port.CompanyOnboardingPort
}

func NewCreateCompanyUseCase(accounts port.AccountRepositoryPort, onboarding port.CompanyOnboardingPort) *CreateCompanyUseCase {
	return &CreateCompanyUseCase{accounts: accounts, onboarding: onboarding}
}

// Execute создает учетную запись, профиль agent, агента и компанию одной транзакцией.
func (uc *CreateCompanyUseCase) Execute(ctx context.Context, reg domain.CompanyRegistration) (*domain.CompanyOnboarding, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "CreateCompany",
		"company_name": reg.CompanyName,
	})
	ucLogger.Info("Use case started", nil)

	onboarding, err := domain.NewCompanyOnboarding(reg)
	if err != nil {
		ucLogger.Warn("Company registration rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	existing, err := uc.accounts.FindByEmail(ctx, onboarding.Account.Email)
	if err != nil {
		ucLogger.Error("Failed to check email", err, nil)
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		ucLogger.Warn("Email already in use", nil)
		return nil, domain.ErrEmailInUse
	}

	if err := uc.onboarding.Onboard(ctx, onboarding); err != nil {
		ucLogger.Error("Company onboarding transaction failed", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"company_id": onboarding.Company.ID,
		"agent_id":   onboarding.Agent.ID,
	})
	return onboarding, nil
}

type ListCompaniesUseCase struct {
	companies port.CompanyRepositoryPort
}

func NewListCompaniesUseCase(companies port.CompanyRepositoryPort) *ListCompaniesUseCase {
	return &ListCompaniesUseCase{companies: companies}
}

func (uc *ListCompaniesUseCase) Execute(ctx context.Context) ([]domain.RealEstateCompany, error) {
	companies, err := uc.companies.FindAll(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list companies", err, port.Fields{"use_case": "ListCompanies"})
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

type UpdateCompanyUseCase struct {
	companies port.CompanyRepositoryPort
}

func NewUpdateCompanyUseCase(companies port.CompanyRepositoryPort) *UpdateCompanyUseCase {
	return &UpdateCompanyUseCase{companies: companies}
}

func (uc *UpdateCompanyUseCase) Execute(ctx context.Context, companyID uuid.UUID, input domain.CompanyContactInput) (*domain.RealEstateCompany, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "UpdateCompany",
		"company_id": companyID,
	})
	ucLogger.Info("Use case started", nil)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	company, err := uc.companies.FindByID(ctx, companyID)
	if err != nil {
		ucLogger.Error("Failed to load company", err, nil)
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	company.Apply(input)
	if err := uc.companies.Update(ctx, company); err != nil {
		ucLogger.Error("Failed to update company", err, nil)
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return company, nil
}

type DeleteCompanyUseCase struct {
	companies port.CompanyRepositoryPort
	cache     port.ListingCachePort
}

func NewDeleteCompanyUseCase(companies port.CompanyRepositoryPort, cache port.ListingCachePort) *DeleteCompanyUseCase {
	return &DeleteCompanyUseCase{companies: companies, cache: cache}
}

func (uc *DeleteCompanyUseCase) Execute(ctx context.Context, companyID uuid.UUID) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "DeleteCompany",
		"company_id": companyID,
	})
	ucLogger.Info("Use case started", nil)

	if err := uc.companies.Delete(ctx, companyID); err != nil {
		ucLogger.Error("Failed to delete company", err, nil)
		return err
	}

	invalidateListings(ctx, uc.cache, ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
