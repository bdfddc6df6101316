package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const agentColumns = `id, user_id, company_name, bio, phone, website, logo_url, created_at`

type PostgresAgentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAgentRepository(pool *pgxpool.Pool) (*PostgresAgentRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresAgentRepository{pool: pool}, nil
}

func (r *PostgresAgentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Agent, error) {
	return r.findOne(ctx, "FindByUserID", "SELECT "+agentColumns+" FROM agents WHERE user_id = $1", userID)
}

func (r *PostgresAgentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return r.findOne(ctx, "FindByID", "SELECT "+agentColumns+" FROM agents WHERE id = $1", id)
}

func (r *PostgresAgentRepository) FindAll(ctx context.Context) ([]domain.Agent, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+agentColumns+" FROM agents ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// CreateIfAbsent вставляет агента, если у пользователя его еще нет.
// При конфликте RETURNING не возвращает строк, это означает created=false.
func (r *PostgresAgentRepository) CreateIfAbsent(ctx context.Context, agent *domain.Agent) (bool, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresAgentRepository",
		"method":    "CreateIfAbsent",
		"user_id":   agent.UserID,
	})

	query := `
		INSERT INTO agents (` + agentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		agent.ID, agent.UserID, agent.CompanyName, agent.Bio, agent.Phone, agent.Website, agent.LogoURL, agent.CreatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Info("Agent already exists for user, insert skipped", nil)
			return false, nil
		}
		repoLogger.Error("Failed to insert agent", err, nil)
		return false, fmt.Errorf("failed to insert agent: %w", err)
	}

	repoLogger.Debug("Agent inserted", port.Fields{"agent_id": id})
	return true, nil
}

// Upsert создает профиль агента или обновляет существующий по user_id.
func (r *PostgresAgentRepository) Upsert(ctx context.Context, agent *domain.Agent) (*domain.Agent, error) {
	query := `
		INSERT INTO agents (id, user_id, company_name, bio, phone, website, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			bio = EXCLUDED.bio,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url
		RETURNING ` + agentColumns

	saved, err := scanAgent(r.pool.QueryRow(ctx, query,
		agent.ID, agent.UserID, agent.CompanyName, agent.Bio, agent.Phone, agent.Website, agent.LogoURL,
	))
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to upsert agent", err, port.Fields{
			"component": "PostgresAgentRepository",
			"method":    "Upsert",
			"user_id":   agent.UserID,
		})
		return nil, fmt.Errorf("failed to upsert agent: %w", err)
	}
	return &saved, nil
}

func (r *PostgresAgentRepository) findOne(ctx context.Context, method, query string, arg interface{}) (*domain.Agent, error) {
	agent, err := scanAgent(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to query agent", err, port.Fields{
			"component": "PostgresAgentRepository",
			"method":    method,
		})
		return nil, fmt.Errorf("failed to query agent: %w", err)
	}
	return &agent, nil
}

func scanAgent(row rowScanner) (domain.Agent, error) {
	var a domain.Agent
	err := row.Scan(&a.ID, &a.UserID, &a.CompanyName, &a.Bio, &a.Phone, &a.Website, &a.LogoURL, &a.CreatedAt)
	return a, err
}
