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

const companyColumns = `id, user_id, company_name, contact_person_name, phone_number, email, created_at`

type PostgresCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCompanyRepository(pool *pgxpool.Pool) (*PostgresCompanyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresCompanyRepository{pool: pool}, nil
}

func (r *PostgresCompanyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.RealEstateCompany, error) {
	return r.findOne(ctx, "FindByUserID", "SELECT "+companyColumns+" FROM real_estate_companies WHERE user_id = $1", userID)
}

func (r *PostgresCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RealEstateCompany, error) {
	return r.findOne(ctx, "FindByID", "SELECT "+companyColumns+" FROM real_estate_companies WHERE id = $1", id)
}

func (r *PostgresCompanyRepository) FindAll(ctx context.Context) ([]domain.RealEstateCompany, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+companyColumns+" FROM real_estate_companies ORDER BY company_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	companies := []domain.RealEstateCompany{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *PostgresCompanyRepository) Update(ctx context.Context, c *domain.RealEstateCompany) error {
	query := `
		UPDATE real_estate_companies
		SET company_name = $2, contact_person_name = $3, phone_number = $4, email = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.CompanyName, c.ContactPersonName, c.PhoneNumber, c.Email)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete удаляет компанию. Объявления компании остаются, company_id обнуляется внешним ключом.
func (r *PostgresCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresCompanyRepository",
		"method":     "Delete",
		"company_id": id,
	})

	tag, err := r.pool.Exec(ctx, `DELETE FROM real_estate_companies WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to delete company", err, nil)
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		repoLogger.Warn("Attempted to delete a company that did not exist.", nil)
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresCompanyRepository) findOne(ctx context.Context, method, query string, arg interface{}) (*domain.RealEstateCompany, error) {
	company, err := scanCompany(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to query company", err, port.Fields{
			"component": "PostgresCompanyRepository",
			"method":    method,
		})
		return nil, fmt.Errorf("failed to query company: %w", err)
	}
	return &company, nil
}

func scanCompany(row rowScanner) (domain.RealEstateCompany, error) {
	var c domain.RealEstateCompany
	err := row.Scan(&c.ID, &c.UserID, &c.CompanyName, &c.ContactPersonName, &c.PhoneNumber, &c.Email, &c.CreatedAt)
	return c, err
}
