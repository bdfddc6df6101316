package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetUserDashboardUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (*domain.UserDashboard, error)
}

type GetAgentDashboardUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (*domain.AgentDashboard, error)
}

type GetAgentProfileUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (*domain.Agent, error)
}

type UpsertAgentProfileUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, input domain.AgentProfileInput) (*domain.Agent, error)
}

type GetAgentPageUseCasePort interface {
	Execute(ctx context.Context, agentID uuid.UUID) (*domain.AgentPage, error)
}
