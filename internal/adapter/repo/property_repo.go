// Package repo contains the PostgreSQL adapters for the durable entities.
// The transient generation pipeline never touches these; they are plain CRUD
// collaborators.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// PropertyRepositoryPG implements domain.PropertyRepository.
type PropertyRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository creates a property repository backed by PostgreSQL.
func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepositoryPG {
	return &PropertyRepositoryPG{pool: pool}
}

// Create inserts a new property record.
func (r *PropertyRepositoryPG) Create(ctx context.Context, p *domain.Property) error {
	query := `
INSERT INTO properties (id, title, property_type, status, address, city, country, price, price_type,
                        area_sqm, rooms, bedrooms, bathrooms, floors, year_built, energy_class, features, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.PropertyType,
		p.Status,
		p.Address,
		p.City,
		p.Country,
		p.Price,
		p.PriceType,
		p.AreaSqm,
		p.Rooms,
		p.Bedrooms,
		p.Bathrooms,
		p.Floors,
		p.YearBuilt,
		p.EnergyClass,
		p.Features,
		p.Description,
	)
	return err
}

// GetByID fetches one property by its identifier.
func (r *PropertyRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	row := r.pool.QueryRow(ctx, selectProperty+` WHERE id = $1 AND deleted_at IS NULL;`, id)
	return scanProperty(row)
}

// List returns properties in creation order with offset/limit pagination.
func (r *PropertyRepositoryPG) List(ctx context.Context, offset, limit int) ([]domain.Property, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, selectProperty+` WHERE deleted_at IS NULL ORDER BY created_at OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update overwrites the mutable columns of a property.
func (r *PropertyRepositoryPG) Update(ctx context.Context, p *domain.Property) error {
	query := `
UPDATE properties
SET title = $2, property_type = $3, status = $4, address = $5, city = $6, country = $7,
    price = $8, price_type = $9, area_sqm = $10, rooms = $11, bedrooms = $12, bathrooms = $13,
    floors = $14, year_built = $15, energy_class = $16, features = $17, description = $18,
    updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.PropertyType,
		p.Status,
		p.Address,
		p.City,
		p.Country,
		p.Price,
		p.PriceType,
		p.AreaSqm,
		p.Rooms,
		p.Bedrooms,
		p.Bathrooms,
		p.Floors,
		p.YearBuilt,
		p.EnergyClass,
		p.Features,
		p.Description,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a property.
func (r *PropertyRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectProperty = `
SELECT id, title, property_type, status, address, city, country, price, price_type,
       area_sqm, rooms, bedrooms, bathrooms, floors, year_built, energy_class, features, description,
       created_at, updated_at
FROM properties`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.PropertyType,
		&p.Status,
		&p.Address,
		&p.City,
		&p.Country,
		&p.Price,
		&p.PriceType,
		&p.AreaSqm,
		&p.Rooms,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Floors,
		&p.YearBuilt,
		&p.EnergyClass,
		&p.Features,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ domain.PropertyRepository = (*PropertyRepositoryPG)(nil)
