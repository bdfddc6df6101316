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

// PostgresFavoritesRepository - реализация порта для PostgreSQL.
type PostgresFavoritesRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFavoritesRepository - конструктор.
func NewPostgresFavoritesRepository(pool *pgxpool.Pool) (*PostgresFavoritesRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresFavoritesRepository{pool: pool}, nil
}

// Add добавляет запись в favorites. Повтор пары поглощается уникальным индексом.
func (r *PostgresFavoritesRepository) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresFavoritesRepository",
		"method":      "Add",
		"user_id":     userID,
		"property_id": propertyID,
	})

	repoLogger.Debug("Attempting to add to favorites.", nil)
	query := `INSERT INTO favorites (user_id, property_id) VALUES ($1, $2) ON CONFLICT (user_id, property_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, userID, propertyID)
	if err != nil {
		repoLogger.Error("Failed to add favorite", err, port.Fields{"query": query})
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		repoLogger.Warn("Favorite already exists, operation considered successful.", nil)
	}
	return nil
}

// Remove удаляет пару и сообщает, была ли она.
func (r *PostgresFavoritesRepository) Remove(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	query := `DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`

	tag, err := r.pool.Exec(ctx, query, userID, propertyID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to remove favorite", err, port.Fields{
			"component": "PostgresFavoritesRepository",
			"method":    "Remove",
			"query":     query,
		})
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresFavoritesRepository) RemoveByID(ctx context.Context, userID, favoriteID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1 AND user_id = $2`, favoriteID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresFavoritesRepository) Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND property_id = $2)`,
		userID, propertyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// FindByUser возвращает избранное вместе с объявлениями, новые первыми.
func (r *PostgresFavoritesRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Favorite, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresFavoritesRepository",
		"method":    "FindByUser",
		"user_id":   userID,
		"limit":     limit,
	})

	qb := newQueryBuilder()
	qb.addCondition("%s = $%d", "f.user_id", userID)
	whereClause, args := qb.build()

	query := fmt.Sprintf(`SELECT f.id, f.user_id, f.property_id, f.created_at, %s
		FROM favorites f JOIN properties p ON p.id = f.property_id
		%s
		ORDER BY f.created_at DESC, f.id DESC`, propertyColumns, whereClause)
	if limit > 0 {
		query += " LIMIT " + qb.nextArg(limit)
		args = qb.args
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query favorites", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []domain.Favorite{}
	for rows.Next() {
		var f domain.Favorite
		p, err := scanPropertyWithPrefix(rows, &f.ID, &f.UserID, &f.PropertyID, &f.CreatedAt)
		if err != nil {
			repoLogger.Error("Failed to scan favorite row", err, nil)
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.Property = &p
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during favorites iteration", err, nil)
		return nil, fmt.Errorf("error during favorites iteration: %w", err)
	}

	return favorites, nil
}

func (r *PostgresFavoritesRepository) FindPropertyIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresFavoritesRepository",
		"method":    "FindPropertyIDsByUser",
		"user_id":   userID,
	})

	dataQuery := "SELECT property_id FROM favorites WHERE user_id = $1"
	rows, err := r.pool.Query(ctx, dataQuery, userID)
	if err != nil {
		repoLogger.Error("Failed to query favorite IDs", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("failed to query favorite IDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			repoLogger.Error("Failed to scan favorite ID row", err, nil)
			return nil, fmt.Errorf("failed to scan favorite ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during favorite IDs iteration", err, nil)
		return nil, fmt.Errorf("error during favorite IDs iteration: %w", err)
	}

	return ids, nil
}

// prefixedRow добавляет к Scan колонки, идущие перед колонками объявления.
type prefixedRow struct {
	row    rowScanner
	prefix []interface{}
}

func (r prefixedRow) Scan(dest ...interface{}) error {
	return r.row.Scan(append(r.prefix, dest...)...)
}

func scanPropertyWithPrefix(row rowScanner, prefix ...interface{}) (domain.Property, error) {
	return scanProperty(prefixedRow{row: row, prefix: prefix})
}
