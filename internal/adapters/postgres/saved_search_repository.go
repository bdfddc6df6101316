package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const savedSearchColumns = `id, user_id, name, listing_type, city, min_price, max_price, property_type,
	min_bed, max_bed, min_bath, max_bath, min_area, max_area, created_at`

type PostgresSavedSearchRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSavedSearchRepository(pool *pgxpool.Pool) (*PostgresSavedSearchRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresSavedSearchRepository{pool: pool}, nil
}

func (r *PostgresSavedSearchRepository) Create(ctx context.Context, s *domain.SavedSearch) error {
	f := s.Filter
	query := `INSERT INTO saved_searches (` + savedSearchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.Name, string(s.ListingType), nullIfEmpty(f.City), f.MinPrice, f.MaxPrice, f.PropertyTypes,
		f.MinBed, f.MaxBed, f.MinBath, f.MaxBath, f.MinArea, f.MaxArea, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert saved search: %w", err)
	}
	return nil
}

func (r *PostgresSavedSearchRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+savedSearchColumns+" FROM saved_searches WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved searches: %w", err)
	}
	defer rows.Close()

	searches := []domain.SavedSearch{}
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// FindByID возвращает поиск, только если он принадлежит пользователю.
func (r *PostgresSavedSearchRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.SavedSearch, error) {
	s, err := scanSavedSearch(r.pool.QueryRow(ctx,
		"SELECT "+savedSearchColumns+" FROM saved_searches WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query saved search: %w", err)
	}
	return &s, nil
}

func (r *PostgresSavedSearchRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete saved search: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSavedSearch(row rowScanner) (domain.SavedSearch, error) {
	var (
		s           domain.SavedSearch
		listingType string
		city        *string
	)
	f := &s.Filter
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &listingType, &city, &f.MinPrice, &f.MaxPrice, &f.PropertyTypes,
		&f.MinBed, &f.MaxBed, &f.MinBath, &f.MaxBath, &f.MinArea, &f.MaxArea, &s.CreatedAt,
	)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	s.ListingType = domain.ListingType(listingType)
	if city != nil {
		f.City = *city
	}
	if len(f.PropertyTypes) == 0 {
		f.PropertyTypes = nil
	}
	return s, nil
}
