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

type GetUserDashboardUseCase struct {
	savedSearches  port.SavedSearchRepositoryPort
	recentlyViewed port.RecentlyViewedRepositoryPort
	favorites      port.FavoritesRepositoryPort
}

func NewGetUserDashboardUseCase(
	savedSearches port.SavedSearchRepositoryPort,
	recentlyViewed port.RecentlyViewedRepositoryPort,
	favorites port.FavoritesRepositoryPort,
) *GetUserDashboardUseCase {
	return &GetUserDashboardUseCase{
		savedSearches:  savedSearches,
		recentlyViewed: recentlyViewed,
		favorites:      favorites,
	}
}

func (uc *GetUserDashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (*domain.UserDashboard, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetUserDashboard",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	searches, err := uc.savedSearches.FindByUser(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to load saved searches", err, nil)
		return nil, fmt.Errorf("failed to load saved searches: %w", err)
	}
	viewed, err := uc.recentlyViewed.FindByUser(ctx, userID, domain.DashboardListLimit)
	if err != nil {
		ucLogger.Error("Failed to load recently viewed", err, nil)
		return nil, fmt.Errorf("failed to load recently viewed: %w", err)
	}
	favorites, err := uc.favorites.FindByUser(ctx, userID, domain.DashboardListLimit)
	if err != nil {
		ucLogger.Error("Failed to load favorites", err, nil)
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return &domain.UserDashboard{
		SavedSearches:  searches,
		RecentlyViewed: viewed,
		Favorites:      favorites,
	}, nil
}

type GetAgentDashboardUseCase struct {
	identity   usecases_port.ResolveIdentityUseCasePort
	agents     port.AgentRepositoryPort
	companies  port.CompanyRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewGetAgentDashboardUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	agents port.AgentRepositoryPort,
	companies port.CompanyRepositoryPort,
	properties port.PropertyRepositoryPort,
) *GetAgentDashboardUseCase {
	return &GetAgentDashboardUseCase{
		identity:   identity,
		agents:     agents,
		companies:  companies,
		properties: properties,
	}
}

// Execute собирает объявления агента и его компании любого статуса со сводкой.
func (uc *GetAgentDashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (*domain.AgentDashboard, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetAgentDashboard",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	identity, err := uc.identity.Execute(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to resolve identity", err, nil)
		return nil, err
	}

	dashboard := &domain.AgentDashboard{Identity: identity, Properties: []domain.Property{}}
	if !identity.CanOwnListings() {
		ucLogger.Info("Use case finished: ineligible identity", nil)
		return dashboard, nil
	}

	company, err := uc.companies.FindByUserID(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to load company", err, nil)
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	dashboard.Company = company

	owner := domain.PropertyOwnerFilter{}
	if identity.Kind == domain.IdentityHasAgent {
		agentID := identity.AgentID
		owner.AgentID = &agentID
		agent, err := uc.agents.FindByID(ctx, agentID)
		if err != nil {
			ucLogger.Error("Failed to load agent", err, nil)
			return nil, fmt.Errorf("failed to load agent: %w", err)
		}
		dashboard.Agent = agent
	}
	if company != nil {
		companyID := company.ID
		owner.CompanyID = &companyID
	}

	properties, err := uc.properties.FindByOwner(ctx, owner)
	if err != nil {
		ucLogger.Error("Failed to load properties", err, nil)
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	if properties != nil {
		dashboard.Properties = properties
	}
	dashboard.Stats = domain.ComputeListingStats(dashboard.Properties)

	ucLogger.Info("Use case finished successfully", port.Fields{"properties": dashboard.Stats.Total})
	return dashboard, nil
}

type GetAgentProfileUseCase struct {
	agents port.AgentRepositoryPort
}

func NewGetAgentProfileUseCase(agents port.AgentRepositoryPort) *GetAgentProfileUseCase {
	return &GetAgentProfileUseCase{agents: agents}
}

func (uc *GetAgentProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*domain.Agent, error) {
	agent, err := uc.agents.FindByUserID(ctx, userID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to load agent profile", err, port.Fields{
			"use_case": "GetAgentProfile",
			"user_id":  userID,
		})
		return nil, fmt.Errorf("failed to load agent profile: %w", err)
	}
	if agent == nil {
		return nil, domain.ErrNotFound
	}
	return agent, nil
}

type UpsertAgentProfileUseCase struct {
	agents port.AgentRepositoryPort
}

func NewUpsertAgentProfileUseCase(agents port.AgentRepositoryPort) *UpsertAgentProfileUseCase {
	return &UpsertAgentProfileUseCase{agents: agents}
}

func (uc *UpsertAgentProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, input domain.AgentProfileInput) (*domain.Agent, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UpsertAgentProfile",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	agent := &domain.Agent{ID: uuid.New(), UserID: userID}
	agent.ApplyProfile(input)

	saved, err := uc.agents.Upsert(ctx, agent)
	if err != nil {
		ucLogger.Error("Failed to upsert agent profile", err, nil)
		return nil, fmt.Errorf("failed to save agent profile: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"agent_id": saved.ID})
	return saved, nil
}

type GetAgentPageUseCase struct {
	agents     port.AgentRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewGetAgentPageUseCase(agents port.AgentRepositoryPort, properties port.PropertyRepositoryPort) *GetAgentPageUseCase {
	return &GetAgentPageUseCase{agents: agents, properties: properties}
}

// Execute возвращает агента и только его опубликованные объявления.
func (uc *GetAgentPageUseCase) Execute(ctx context.Context, agentID uuid.UUID) (*domain.AgentPage, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetAgentPage",
		"agent_id": agentID,
	})

	agent, err := uc.agents.FindByID(ctx, agentID)
	if err != nil {
		ucLogger.Error("Failed to load agent", err, nil)
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	if agent == nil {
		return nil, domain.ErrNotFound
	}

	properties, err := uc.properties.FindByOwner(ctx, domain.PropertyOwnerFilter{AgentID: &agentID, PublishedOnly: true})
	if err != nil {
		ucLogger.Error("Failed to load agent properties", err, nil)
		return nil, fmt.Errorf("failed to load agent properties: %w", err)
	}
	if properties == nil {
		properties = []domain.Property{}
	}

	return &domain.AgentPage{Agent: agent, Properties: properties}, nil
}
