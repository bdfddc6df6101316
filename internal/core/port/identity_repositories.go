package port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

// AgentRepositoryPort - хранилище агентов. Уникальность user_id обеспечивает БД.
type AgentRepositoryPort interface {
	// FindByUserID возвращает (nil, nil), если агента нет.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Agent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	FindAll(ctx context.Context) ([]domain.Agent, error)
	// CreateIfAbsent вставляет агента с ON CONFLICT (user_id) DO NOTHING.
	// created=false означает, что агент для этого пользователя уже существует.
	CreateIfAbsent(ctx context.Context, agent *domain.Agent) (created bool, err error)
	// Upsert создает или обновляет профиль агента по user_id.
	Upsert(ctx context.Context, agent *domain.Agent) (*domain.Agent, error)
}

// CompanyRepositoryPort - хранилище компаний недвижимости.
type CompanyRepositoryPort interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.RealEstateCompany, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RealEstateCompany, error)
	FindAll(ctx context.Context) ([]domain.RealEstateCompany, error)
	Update(ctx context.Context, company *domain.RealEstateCompany) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepositoryPort - профили пользователей с ролями.
type ProfileRepositoryPort interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
	FindAll(ctx context.Context) ([]domain.UserProfile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
}

// AccountRepositoryPort - учетные записи. Create сохраняет учетную запись и профиль вместе.
type AccountRepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account, profile *domain.UserProfile) error
}

// CompanyOnboardingPort создает учетную запись, профиль, агента и компанию в одной транзакции.
type CompanyOnboardingPort interface {
	Onboard(ctx context.Context, onboarding *domain.CompanyOnboarding) error
}
