package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mafirs/campus-reserve/internal/domain"
)

const venueColumns = `id, name, location, capacity, description, equipment, status, created_at, updated_at`
const materialColumns = `id, name, category, total_quantity, available_quantity, unit, description, status, created_at, updated_at`

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CatalogRepository) CreateVenue(ctx context.Context, v domain.Venue) error {
	const stmt = `
INSERT INTO venues (` + venueColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt, v.ID, v.Name, v.Location, v.Capacity, v.Description, v.Equipment, v.Status, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	const query = `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	return r.getVenue(ctx, query, id)
}

func (r *CatalogRepository) GetVenueForUpdate(ctx context.Context, id string) (domain.Venue, error) {
	const query = `SELECT ` + venueColumns + ` FROM venues WHERE id = $1 FOR UPDATE`
	return r.getVenue(ctx, query, id)
}

func (r *CatalogRepository) getVenue(ctx context.Context, query, id string) (domain.Venue, error) {
	v, err := scanVenue(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Venue{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Venue{}, domain.ErrVenueNotFound
		}
		return domain.Venue{}, fmt.Errorf("get venue: %w", err)
	}
	return v, nil
}

func (r *CatalogRepository) UpdateVenue(ctx context.Context, v domain.Venue) error {
	const stmt = `
UPDATE venues
SET name = $2, location = $3, capacity = $4, description = $5, equipment = $6, status = $7, updated_at = $8
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, v.ID, v.Name, v.Location, v.Capacity, v.Description, v.Equipment, v.Status, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

func (r *CatalogRepository) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	const query = `SELECT ` + venueColumns + ` FROM venues ORDER BY name, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) CreateMaterial(ctx context.Context, m domain.Material) error {
	const stmt = `
INSERT INTO materials (` + materialColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		m.ID, m.Name, m.Category, m.TotalQuantity, m.AvailableQuantity,
		m.Unit, m.Description, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	const query = `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	return r.getMaterial(ctx, query, id)
}

func (r *CatalogRepository) GetMaterialForUpdate(ctx context.Context, id string) (domain.Material, error) {
	const query = `SELECT ` + materialColumns + ` FROM materials WHERE id = $1 FOR UPDATE`
	return r.getMaterial(ctx, query, id)
}

func (r *CatalogRepository) getMaterial(ctx context.Context, query, id string) (domain.Material, error) {
	m, err := scanMaterial(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Material{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Material{}, domain.ErrMaterialNotFound
		}
		return domain.Material{}, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

func (r *CatalogRepository) UpdateMaterial(ctx context.Context, m domain.Material) error {
	const stmt = `
UPDATE materials
SET name = $2, category = $3, total_quantity = $4, available_quantity = $5, unit = $6, description = $7, status = $8, updated_at = $9
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		m.ID, m.Name, m.Category, m.TotalQuantity, m.AvailableQuantity,
		m.Unit, m.Description, m.Status, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (r *CatalogRepository) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	const query = `SELECT ` + materialColumns + ` FROM materials ORDER BY name, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []domain.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
