package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

// Исходы автоматического создания агента для метрик.
const (
	ProvisionCreated  = "created"
	ProvisionConflict = "conflict"
	ProvisionFailed   = "failed"
)

// ResolveIdentityUseCase определяет, от чьего имени пользователь размещает объявления:
// существующий агент, компания (с созданием агента на лету) или никто.
// Путь проверки содержит запись, поэтому вызывать его стоит только перед действиями с объявлениями.
type ResolveIdentityUseCase struct {
	agents    port.AgentRepositoryPort
	companies port.CompanyRepositoryPort
	publisher port.EventPublisherPort
	metrics   port.MetricsPort
}

func NewResolveIdentityUseCase(
	agents port.AgentRepositoryPort,
	companies port.CompanyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *ResolveIdentityUseCase {
	return &ResolveIdentityUseCase{
		agents:    agents,
		companies: companies,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Execute возвращает ошибку только если не удалось прочитать агента или компанию.
// Сбой вставки агента превращается в EligibleCompanyNoAgent.
func (uc *ResolveIdentityUseCase) Execute(ctx context.Context, userID uuid.UUID) (domain.Identity, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ResolveIdentity",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	agent, err := uc.agents.FindByUserID(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to look up agent", err, nil)
		return domain.Ineligible(), fmt.Errorf("failed to look up agent: %w", err)
	}
	if agent != nil {
		ucLogger.Info("Use case finished: agent exists", port.Fields{"agent_id": agent.ID})
		return domain.HasAgent(agent.ID), nil
	}

	company, err := uc.companies.FindByUserID(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to look up real estate company", err, nil)
		return domain.Ineligible(), fmt.Errorf("failed to look up company: %w", err)
	}
	if company == nil {
		ucLogger.Info("Use case finished: user is neither agent nor company", nil)
		return domain.Ineligible(), nil
	}

	ucLogger = ucLogger.WithFields(port.Fields{"company_id": company.ID})
	candidate := domain.NewAgentFromCompany(company)

	created, err := uc.agents.CreateIfAbsent(ctx, candidate)
	if err != nil {
		uc.metrics.AgentProvisioned(ProvisionFailed)
		ucLogger.Error("Agent auto-provisioning failed, continuing without agent", err, nil)
		return domain.EligibleCompanyNoAgent(company.ID), nil
	}

	if created {
		uc.metrics.AgentProvisioned(ProvisionCreated)
		publishEvent(ctx, uc.publisher, ucLogger, domain.NewEvent(domain.EventAgentProvisioned, candidate.ID, userID, map[string]string{
			"company_id": company.ID.String(),
		}))
		ucLogger.Info("Use case finished: agent provisioned", port.Fields{"agent_id": candidate.ID})
		return domain.ProvisionedAgent(candidate.ID, company.ID), nil
	}

	// Параллельный запрос успел создать агента раньше нас
	existing, err := uc.agents.FindByUserID(ctx, userID)
	if err != nil || existing == nil {
		uc.metrics.AgentProvisioned(ProvisionFailed)
		ucLogger.Error("Agent insert conflicted but existing agent could not be loaded", err, nil)
		return domain.EligibleCompanyNoAgent(company.ID), nil
	}

	uc.metrics.AgentProvisioned(ProvisionConflict)
	ucLogger.Info("Use case finished: agent provisioned concurrently", port.Fields{"agent_id": existing.ID})
	return domain.ProvisionedAgent(existing.ID, company.ID), nil
}
