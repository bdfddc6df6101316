package postgres_adapter

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRecentlyViewedRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRecentlyViewedRepository(pool *pgxpool.Pool) (*PostgresRecentlyViewedRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresRecentlyViewedRepository{pool: pool}, nil
}

// Touch - upsert по первичному ключу (user_id, property_id), дубликатов не бывает.
func (r *PostgresRecentlyViewedRepository) Touch(ctx context.Context, userID, propertyID uuid.UUID) error {
	query := `
		INSERT INTO recently_viewed (user_id, property_id, viewed_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id, property_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at`

	if _, err := r.pool.Exec(ctx, query, userID, propertyID); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to upsert recently viewed", err, port.Fields{
			"component":   "PostgresRecentlyViewedRepository",
			"method":      "Touch",
			"user_id":     userID,
			"property_id": propertyID,
		})
		return fmt.Errorf("failed to upsert recently viewed: %w", err)
	}
	return nil
}

func (r *PostgresRecentlyViewedRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecentlyViewed, error) {
	query := fmt.Sprintf(`SELECT rv.user_id, rv.property_id, rv.viewed_at, %s
		FROM recently_viewed rv JOIN properties p ON p.id = rv.property_id
		WHERE rv.user_id = $1
		ORDER BY rv.viewed_at DESC`, propertyColumns)
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently viewed: %w", err)
	}
	defer rows.Close()

	items := []domain.RecentlyViewed{}
	for rows.Next() {
		var rv domain.RecentlyViewed
		p, err := scanPropertyWithPrefix(rows, &rv.UserID, &rv.PropertyID, &rv.ViewedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recently viewed: %w", err)
		}
		rv.Property = &p
		items = append(items, rv)
	}
	return items, rows.Err()
}
