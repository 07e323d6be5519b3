package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/pkg/database"
	"github.com/shiftclock/shiftclock-backend/pkg/errors"
)

const eventColumns = `
	id, employee_id, event_type, occurred_at,
	to_char(event_date, 'YYYY-MM-DD') AS event_date,
	source, device_id, notes, created_at, updated_at, deleted_at, created_by, updated_by`

// TimeEventRepository stores punches in time_events
type TimeEventRepository struct {
	db *database.DB
}

// NewTimeEventRepository creates a new time event repository
func NewTimeEventRepository(db *database.DB) *TimeEventRepository {
	return &TimeEventRepository{db: db}
}

// ListForEmployeeOnDate returns the live events of one employee-day, oldest first
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) ListForEmployeeOnDate(ctx context.Context, employeeID, date string) ([]domain.TimeEvent, error) {
	query := `SELECT` + eventColumns + `
		FROM time_events
		WHERE employee_id = $1 AND event_date = $2 AND deleted_at IS NULL
		ORDER BY occurred_at, created_at`

	return r.list(ctx, query, employeeID, date)
}

// ListByDate returns the live events of every employee on date
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) ListByDate(ctx context.Context, date string) ([]domain.TimeEvent, error) {
	query := `SELECT` + eventColumns + `
		FROM time_events
		WHERE event_date = $1 AND deleted_at IS NULL
		ORDER BY employee_id, occurred_at, created_at`

	return r.list(ctx, query, date)
}

// ListForEmployeeInRange returns the live events of one employee with from <= date <= to
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) ListForEmployeeInRange(ctx context.Context, employeeID, from, to string) ([]domain.TimeEvent, error) {
	query := `SELECT` + eventColumns + `
		FROM time_events
		WHERE employee_id = $1 AND event_date BETWEEN $2 AND $3 AND deleted_at IS NULL
		ORDER BY event_date, occurred_at, created_at`

	return r.list(ctx, query, employeeID, from, to)
}

func (r *TimeEventRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.TimeEvent, error) {
	events := []domain.TimeEvent{}
	err := r.db.WithTenantRLS(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &events, query, args...)
	})
	if err != nil {
		return nil, mapError(err, "failed to list time events")
	}
	return events, nil
}

// GetByID gets a live time event by ID
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) GetByID(ctx context.Context, id string) (*domain.TimeEvent, error) {
	var event domain.TimeEvent
	err := r.db.WithTenantRLS(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT` + eventColumns + `
			FROM time_events
			WHERE id = $1 AND deleted_at IS NULL`
		return tx.GetContext(ctx, &event, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("time_event")
	}
	if err != nil {
		return nil, mapError(err, "failed to get time event")
	}
	return &event, nil
}

// Create inserts a new time event. tenant_id is filled by the column default.
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) Create(ctx context.Context, event *domain.TimeEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Source == "" {
		event.Source = domain.SourceWeb
	}

	err := r.db.WithTenantRLS(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO time_events (
				id, employee_id, event_type, occurred_at, event_date,
				source, device_id, notes, created_by
			) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9)
			RETURNING created_at, updated_at`
		return tx.QueryRowxContext(ctx, query,
			event.ID, event.EmployeeID, event.Type, event.Timestamp, event.Date,
			event.Source, event.DeviceID, event.Notes, event.CreatedBy,
		).Scan(&event.CreatedAt, &event.UpdatedAt)
	})
	if err != nil {
		return mapError(err, "failed to create time event")
	}
	return nil
}

// Update writes a corrected type, timestamp, date and notes
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) Update(ctx context.Context, event *domain.TimeEvent) error {
	err := r.db.WithTenantRLS(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE time_events SET
				event_type = $2, occurred_at = $3, event_date = $4::date,
				notes = $5, updated_by = $6
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING updated_at`
		return tx.QueryRowxContext(ctx, query,
			event.ID, event.Type, event.Timestamp, event.Date, event.Notes, event.UpdatedBy,
		).Scan(&event.UpdatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFound("time_event")
	}
	if err != nil {
		return mapError(err, "failed to update time event")
	}
	return nil
}

// SoftDelete marks a time event deleted; it stops counting toward any workday
// TENANT-ISOLATED: row level security on app.current_tenant
func (r *TimeEventRepository) SoftDelete(ctx context.Context, id string) error {
	var affected int64
	err := r.db.WithTenantRLS(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE time_events SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return mapError(err, "failed to delete time event")
	}
	if affected == 0 {
		return errors.NotFound("time_event")
	}
	return nil
}

func mapError(err error, msg string) error {
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fmt.Errorf("%s: %w", msg, err)
}
