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

const propertyColumns = `p.id, p.title, p.description, p.property_type, p.listing_type, p.price,
	p.bed, p.bath, p.area, p.location, p.city, p.latitude, p.longitude, p.geohash, p.images,
	p.status, p.agent_id, p.company_id, p.views, p.created_at, p.updated_at`

// rowScanner - общий интерфейс pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PostgresPropertyRepository реализует PropertyRepositoryPort для PostgreSQL.
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPropertyRepository(pool *pgxpool.Pool) (*PostgresPropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyRepository{pool: pool}, nil
}

// FindPublished выполняет поиск по фильтру, новые объявления первыми.
// id DESC делает порядок детерминированным при одинаковом created_at.
func (r *PostgresPropertyRepository) FindPublished(ctx context.Context, listingType domain.ListingType, filter domain.ListingFilter) ([]domain.Property, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "PostgresPropertyRepository",
		"method":       "FindPublished",
		"listing_type": listingType,
	})

	whereClause, args := applyListingFilter(listingType, filter)
	query := fmt.Sprintf("SELECT %s FROM properties p %s ORDER BY p.created_at DESC, p.id DESC", propertyColumns, whereClause)

	repoLogger.Debug("Executing listing query", port.Fields{"where": whereClause, "args_count": len(args)})
	properties, err := r.queryProperties(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query published properties", err, port.Fields{"query": query})
		return nil, err
	}
	return properties, nil
}

func (r *PostgresPropertyRepository) FindFeatured(ctx context.Context, limit int) ([]domain.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties p
		WHERE p.status = 'published' AND p.listing_type IN ('buy', 'rent')
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1`, propertyColumns)

	properties, err := r.queryProperties(ctx, query, limit)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to query featured properties", err, port.Fields{
			"component": "PostgresPropertyRepository",
			"method":    "FindFeatured",
		})
		return nil, err
	}
	return properties, nil
}

const publishedCitiesQuery = `SELECT DISTINCT city FROM properties WHERE status = 'published' ORDER BY city`

// FindPublishedCities возвращает города, в которых есть опубликованные объявления, по алфавиту.
func (r *PostgresPropertyRepository) FindPublishedCities(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, publishedCitiesQuery)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to query published cities", err, port.Fields{
			"component": "PostgresPropertyRepository",
			"method":    "FindPublishedCities",
		})
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}

	cities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan city row: %w", err)
	}
	return cities, nil
}

// FindByID возвращает (nil, nil), если объявления нет.
func (r *PostgresPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties p WHERE p.id = $1", propertyColumns)

	property, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to query property by id", err, port.Fields{
			"component":   "PostgresPropertyRepository",
			"method":      "FindByID",
			"property_id": id,
		})
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}
	return &property, nil
}

func (r *PostgresPropertyRepository) FindByOwner(ctx context.Context, owner domain.PropertyOwnerFilter) ([]domain.Property, error) {
	whereClause, args, ok := applyOwnerFilter(owner)
	if !ok {
		return []domain.Property{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM properties p %s ORDER BY p.created_at DESC, p.id DESC", propertyColumns, whereClause)
	return r.queryProperties(ctx, query, args...)
}

func (r *PostgresPropertyRepository) FindAll(ctx context.Context) ([]domain.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties p ORDER BY p.created_at DESC, p.id DESC", propertyColumns)
	return r.queryProperties(ctx, query)
}

func (r *PostgresPropertyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	if len(ids) == 0 {
		return []domain.Property{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM properties p WHERE p.id = ANY($1) ORDER BY p.created_at DESC, p.id DESC", propertyColumns)
	return r.queryProperties(ctx, query, ids)
}

func (r *PostgresPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "Create",
		"property_id": p.ID,
	})

	query := `
		INSERT INTO properties (
			id, title, description, property_type, listing_type, price, bed, bath, area,
			location, city, latitude, longitude, geohash, images, status, agent_id, company_id,
			views, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.PropertyType), string(p.ListingType), p.Price, p.Bed, p.Bath, p.Area,
		p.Location, p.City, p.Latitude, p.Longitude, nullIfEmpty(p.Geohash), p.Images, string(p.Status), p.AgentID, p.CompanyID,
		p.Views, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to insert property", err, nil)
		return fmt.Errorf("failed to insert property: %w", err)
	}

	repoLogger.Debug("Property inserted", nil)
	return nil
}

func (r *PostgresPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	query := `
		UPDATE properties SET
			title = $2, description = $3, property_type = $4, listing_type = $5, price = $6,
			bed = $7, bath = $8, area = $9, location = $10, city = $11, latitude = $12,
			longitude = $13, geohash = $14, images = $15, updated_at = $16
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.PropertyType), string(p.ListingType), p.Price,
		p.Bed, p.Bath, p.Area, p.Location, p.City, p.Latitude,
		p.Longitude, nullIfEmpty(p.Geohash), p.Images, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresPropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendImages дописывает ссылки в конец массива одним UPDATE.
func (r *PostgresPropertyRepository) AppendImages(ctx context.Context, id uuid.UUID, urls []string) error {
	query := `UPDATE properties SET images = COALESCE(images, '{}') || $2::text[], updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, urls)
	if err != nil {
		return fmt.Errorf("failed to append images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews выполняет инкремент на стороне БД, параллельные просмотры не теряются.
func (r *PostgresPropertyRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresPropertyRepository) queryProperties(ctx context.Context, query string, args ...interface{}) ([]domain.Property, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during properties iteration: %w", err)
	}
	return properties, nil
}

func scanProperty(row rowScanner) (domain.Property, error) {
	var (
		p                                 domain.Property
		propertyType, listingType, status string
		geohash                           *string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &propertyType, &listingType, &p.Price,
		&p.Bed, &p.Bath, &p.Area, &p.Location, &p.City, &p.Latitude, &p.Longitude, &geohash, &p.Images,
		&status, &p.AgentID, &p.CompanyID, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Property{}, err
	}
	p.PropertyType = domain.PropertyType(propertyType)
	p.ListingType = domain.ListingType(listingType)
	p.Status = domain.PropertyStatus(status)
	if geohash != nil {
		p.Geohash = *geohash
	}
	return p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
