package service

import (
	"context"
	"errors"

	"medisched/internal/models"
	"medisched/internal/repository"
)

// Domain errors. Handlers map each of these to a redirect or status code.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("appointment not found")
	ErrForbidden          = errors.New("appointment belongs to another user")
	ErrInvalidInput       = errors.New("invalid input")
)

type Authorization interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Appointments exposes booking CRUD. Every mutating call names its caller
// explicitly; ownership is checked after existence.
type Appointments interface {
	Book(ctx context.Context, owner models.User, in AppointmentInput) (models.Appointment, error)
	ListForOwner(ctx context.Context, owner models.User) ([]models.Appointment, error)
	Get(ctx context.Context, id int) (models.Appointment, error)
	GetOwned(ctx context.Context, id int, caller models.User) (models.Appointment, error)
	Edit(ctx context.Context, id int, caller models.User, in AppointmentInput) (models.Appointment, error)
	Delete(ctx context.Context, id int, caller models.User) error
}

type Service struct {
	Authorization
	Appointments
}

func NewService(repos *repository.Repository, cfg AuthConfig) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, repos.Sessions, NewBcryptHasher(cfg.BcryptCost), cfg),
		Appointments:  NewAppointmentService(repos.Appointments),
	}
}
