package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medisched/internal/models"
)

type AppointmentSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewAppointmentSQLite(db *sql.DB) *AppointmentSQLite {
	return &AppointmentSQLite{db: db, now: func() time.Time { return toStoredTime(time.Now()) }}
}

var _ AppointmentRepo = (*AppointmentSQLite)(nil)

const (
	appointmentColumns = `id, patient_name, date, time, reason, user_id, created_at, updated_at`

	insertAppointmentSQL = `
		INSERT INTO appointments (patient_name, date, time, reason, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	selectAppointmentByIDSQL = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	selectAppointmentsByOwnerSQL = `SELECT ` + appointmentColumns +
		` FROM appointments WHERE user_id = ? ORDER BY id ASC`
	updateAppointmentSQL = `
		UPDATE appointments
		SET patient_name = ?, date = ?, time = ?, reason = ?, updated_at = ?
		WHERE id = ?
	`
	deleteAppointmentSQL = `DELETE FROM appointments WHERE id = ?`
)

// nullableReason stores an empty reason as NULL.
func nullableReason(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (models.Appointment, error) {
	var (
		a      models.Appointment
		reason sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.Date,
		&a.Time,
		&reason,
		&a.OwnerUserID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return models.Appointment{}, err
	}
	a.Reason = reason.String
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

// Insert persists a new appointment and returns its ID. Timestamps are set here.
func (r *AppointmentSQLite) Insert(ctx context.Context, a models.Appointment) (int, error) {
	ts := r.now()
	res, err := r.db.ExecContext(ctx, insertAppointmentSQL,
		a.PatientName,
		a.Date,
		a.Time,
		nullableReason(a.Reason),
		a.OwnerUserID,
		ts,
		ts,
	)
	if err != nil {
		return 0, fmt.Errorf("insert appointment for user %d: %w", a.OwnerUserID, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for appointment: %w", err)
	}
	return int(lastID), nil
}

// FindByID returns (nil, nil) if the appointment does not exist.
func (r *AppointmentSQLite) FindByID(ctx context.Context, id int) (*models.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx, selectAppointmentByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select appointment %d: %w", id, err)
	}
	return &a, nil
}

// ListByOwner returns the owner's appointments in insertion order.
func (r *AppointmentSQLite) ListByOwner(ctx context.Context, ownerID int) ([]models.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, selectAppointmentsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for user %d: %w", ownerID, err)
	}
	defer rows.Close()

	out := make([]models.Appointment, 0, 16)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields. The owner is never changed.
func (r *AppointmentSQLite) Update(ctx context.Context, a models.Appointment) error {
	_, err := r.db.ExecContext(ctx, updateAppointmentSQL,
		a.PatientName,
		a.Date,
		a.Time,
		nullableReason(a.Reason),
		r.now(),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update appointment %d: %w", a.ID, err)
	}
	return nil
}

func (r *AppointmentSQLite) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, deleteAppointmentSQL, id); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return nil
}
