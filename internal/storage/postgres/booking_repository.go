package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mafirs/campus-reserve/internal/domain"
)

// activeStatuses are the application statuses that hold a venue window and
// consume inventory.
const activeStatuses = `'pending_reviewer', 'pending_admin', 'approved'`

const applicationColumns = `id, requester_id, activity_name, activity_description, venue_id,
starts_at, ends_at, status, reviewer_id, rejection_reason, created_at, reviewed_at, updated_at`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetVenueForUpdate(ctx context.Context, venueID string) (domain.Venue, error) {
	const query = `
SELECT id, name, location, capacity, description, equipment, status, created_at, updated_at
FROM venues
WHERE id = $1
FOR UPDATE`

	v, err := scanVenue(r.queryRow(ctx, query, venueID))
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

// GetMaterialsForUpdate locks the given material rows. Callers pass ids in
// ascending order so concurrent multi-material operations acquire locks in
// the same sequence; ORDER BY id keeps the lock order stable server-side.
func (r *BookingRepository) GetMaterialsForUpdate(ctx context.Context, materialIDs []string) ([]domain.Material, error) {
	const query = `
SELECT id, name, category, total_quantity, available_quantity, unit, description, status, created_at, updated_at
FROM materials
WHERE id = ANY($1::uuid[])
ORDER BY id
FOR UPDATE`

	rows, err := r.query(ctx, query, materialIDs)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("lock materials: %w", err)
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
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("lock materials: %w", err)
	}
	return out, nil
}

func (r *BookingRepository) SaveMaterialQuantity(ctx context.Context, m domain.Material) error {
	const stmt = `UPDATE materials SET available_quantity = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, m.ID, m.AvailableQuantity, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save material quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (r *BookingRepository) FindBlockingApplication(ctx context.Context, venueID string, start, end time.Time, excludeID string) (string, error) {
	const query = `
SELECT id
FROM applications
WHERE venue_id = $1
  AND status IN (` + activeStatuses + `)
  AND starts_at < $3
  AND ends_at > $2
  AND ($4::uuid IS NULL OR id <> $4::uuid)
ORDER BY created_at
LIMIT 1`

	var exclude *string
	if excludeID != "" {
		exclude = &excludeID
	}

	var blockingID string
	err := r.queryRow(ctx, query, venueID, start, end, exclude).Scan(&blockingID)
	if err != nil {
		if isInvalidUUID(err) {
			return "", domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("find blocking application: %w", err)
	}
	return blockingID, nil
}

func (r *BookingRepository) CreateApplication(ctx context.Context, a domain.Application) error {
	const stmt = `
INSERT INTO applications (` + applicationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.exec(ctx, stmt,
		a.ID,
		a.RequesterID,
		a.ActivityName,
		a.ActivityDescription,
		a.VenueID,
		a.StartsAt,
		a.EndsAt,
		a.Status,
		a.ReviewerID,
		a.RejectionReason,
		a.CreatedAt,
		a.ReviewedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err, "applications_venue_id_fkey") {
			return domain.ErrVenueNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create application: %w", err)
	}

	const itemStmt = `
INSERT INTO application_items (application_id, material_id, quantity, position)
VALUES ($1, $2, $3, $4)`

	for i, item := range a.Items {
		if _, err := r.exec(ctx, itemStmt, a.ID, item.MaterialID, item.Quantity, i); err != nil {
			if isForeignKeyViolation(err, "application_items_material_id_fkey") {
				return domain.ErrMaterialNotFound
			}
			return fmt.Errorf("create line item: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.getApplication(ctx, query, id)
}

func (r *BookingRepository) GetApplicationForUpdate(ctx context.Context, id string) (domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	return r.getApplication(ctx, query, id)
}

func (r *BookingRepository) getApplication(ctx context.Context, query, id string) (domain.Application, error) {
	a, err := scanApplication(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Application{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Application{}, domain.ErrApplicationNotFound
		}
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}

	items, err := r.loadItems(ctx, []string{a.ID})
	if err != nil {
		return domain.Application{}, err
	}
	a.Items = items[a.ID]
	return a, nil
}

func (r *BookingRepository) SaveApplicationStatus(ctx context.Context, a domain.Application) error {
	const stmt = `
UPDATE applications
SET status = $2, reviewer_id = $3, rejection_reason = $4, reviewed_at = $5, updated_at = $6
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, a.ID, a.Status, a.ReviewerID, a.RejectionReason, a.ReviewedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *BookingRepository) ListApplicationsByRequester(ctx context.Context, requesterID string, status *domain.ApplicationStatus) ([]domain.Application, error) {
	const query = `
SELECT ` + applicationColumns + `
FROM applications
WHERE requester_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC`

	return r.listApplications(ctx, query, requesterID, status)
}

func (r *BookingRepository) ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	const query = `
SELECT ` + applicationColumns + `
FROM applications
WHERE status = $1
ORDER BY created_at DESC`

	return r.listApplications(ctx, query, status)
}

func (r *BookingRepository) ListAvailableVenues(ctx context.Context, start, end time.Time) ([]domain.Venue, error) {
	const query = `
SELECT v.id, v.name, v.location, v.capacity, v.description, v.equipment, v.status, v.created_at, v.updated_at
FROM venues v
WHERE v.status = 'available'
  AND NOT EXISTS (
    SELECT 1
    FROM applications a
    WHERE a.venue_id = v.id
      AND a.status IN (` + activeStatuses + `)
      AND a.starts_at < $2
      AND a.ends_at > $1
  )
ORDER BY v.name, v.id`

	rows, err := r.query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("list available venues: %w", err)
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
		return nil, fmt.Errorf("list available venues: %w", err)
	}
	return out, nil
}

func (r *BookingRepository) listApplications(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	var ids []string
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *BookingRepository) loadItems(ctx context.Context, applicationIDs []string) (map[string][]domain.LineItem, error) {
	const query = `
SELECT application_id, material_id, quantity
FROM application_items
WHERE application_id = ANY($1::uuid[])
ORDER BY application_id, position`

	rows, err := r.query(ctx, query, applicationIDs)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.LineItem, len(applicationIDs))
	for rows.Next() {
		var appID string
		var item domain.LineItem
		if err := rows.Scan(&appID, &item.MaterialID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out[appID] = append(out[appID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	return out, nil
}

func scanVenue(row pgx.Row) (domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Description, &v.Equipment, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func scanMaterial(row pgx.Row) (domain.Material, error) {
	var m domain.Material
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.TotalQuantity, &m.AvailableQuantity, &m.Unit, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID,
		&a.RequesterID,
		&a.ActivityName,
		&a.ActivityDescription,
		&a.VenueID,
		&a.StartsAt,
		&a.EndsAt,
		&a.Status,
		&a.ReviewerID,
		&a.RejectionReason,
		&a.CreatedAt,
		&a.ReviewedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
