package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medisched/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AppointmentRepo interface {
	Insert(ctx context.Context, a models.Appointment) (int, error)
	FindByID(ctx context.Context, id int) (*models.Appointment, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Appointment, error)
	Update(ctx context.Context, a models.Appointment) error
	Delete(ctx context.Context, id int) error
}

type Repository struct {
	Auth         Authorization
	Sessions     SessionRepo
	Appointments AppointmentRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:         NewUserRepository(db),
		Sessions:     NewSessionSQLite(db),
		Appointments: NewAppointmentSQLite(db),
	}
}
