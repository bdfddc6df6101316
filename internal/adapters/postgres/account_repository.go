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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresAccountRepository хранит учетные записи и профили.
// Также реализует CompanyOnboardingPort: компания создается вместе с учетной записью.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepository(pool *pgxpool.Pool) (*PostgresAccountRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresAccountRepository{pool: pool}, nil
}

func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`

	var a domain.Account
	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &a, nil
}

// Create сохраняет учетную запись и профиль в одной транзакции.
func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account, profile *domain.UserProfile) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresAccountRepository",
		"method":    "Create",
		"user_id":   account.ID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertAccount(ctx, tx, account, profile); err != nil {
		repoLogger.Warn("Failed to insert account", port.Fields{"error": err.Error()})
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Onboard создает учетную запись, профиль agent, агента и компанию атомарно.
func (r *PostgresAccountRepository) Onboard(ctx context.Context, o *domain.CompanyOnboarding) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresAccountRepository",
		"method":     "Onboard",
		"company_id": o.Company.ID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertAccount(ctx, tx, o.Account, o.Profile); err != nil {
		return err
	}

	a := o.Agent
	_, err = tx.Exec(ctx, `
		INSERT INTO agents (id, user_id, company_name, bio, phone, website, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.CompanyName, a.Bio, a.Phone, a.Website, a.LogoURL, a.CreatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to insert agent", err, nil)
		return fmt.Errorf("failed to insert agent: %w", err)
	}

	c := o.Company
	_, err = tx.Exec(ctx, `
		INSERT INTO real_estate_companies (id, user_id, company_name, contact_person_name, phone_number, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.CompanyName, c.ContactPersonName, c.PhoneNumber, c.Email, c.CreatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to insert company", err, nil)
		return fmt.Errorf("failed to insert company: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Info("Company onboarded", port.Fields{"agent_id": a.ID, "user_id": c.UserID})
	return nil
}

func insertAccount(ctx context.Context, tx pgx.Tx, account *domain.Account, profile *domain.UserProfile) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailInUse
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, avatar_url, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		profile.ID, profile.Email, profile.FullName, profile.AvatarURL, string(profile.Role), profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) (*PostgresProfileRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresProfileRepository{pool: pool}, nil
}

const profileColumns = `id, email, full_name, avatar_url, role, created_at`

func (r *PostgresProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepository) FindAll(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PostgresProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET role = $2 WHERE id = $1`, id, string(role))
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to update role", err, port.Fields{
			"component": "PostgresProfileRepository",
			"method":    "UpdateRole",
			"user_id":   id,
		})
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (domain.UserProfile, error) {
	var (
		p     domain.UserProfile
		email *string
		role  string
	)
	if err := row.Scan(&p.ID, &email, &p.FullName, &p.AvatarURL, &role, &p.CreatedAt); err != nil {
		return domain.UserProfile{}, err
	}
	if email != nil {
		p.Email = *email
	}
	p.Role = domain.Role(role)
	return p, nil
}
