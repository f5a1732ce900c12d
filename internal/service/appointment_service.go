package service

import (
	"context"

	"medisched/internal/models"
	"medisched/internal/repository"
)

type AppointmentService struct {
	repo repository.AppointmentRepo
}

func NewAppointmentService(repo repository.AppointmentRepo) *AppointmentService {
	return &AppointmentService{repo: repo}
}

// Book persists a new appointment owned by owner.
func (s *AppointmentService) Book(ctx context.Context, owner models.User, in AppointmentInput) (models.Appointment, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Appointment{}, err
	}

	id, err := s.repo.Insert(ctx, models.Appointment{
		PatientName: in.PatientName,
		Date:        in.Date,
		Time:        in.Time,
		Reason:      in.Reason,
		OwnerUserID: owner.ID,
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return s.Get(ctx, id)
}

// ListForOwner returns every appointment of owner in insertion order.
func (s *AppointmentService) ListForOwner(ctx context.Context, owner models.User) ([]models.Appointment, error) {
	return s.repo.ListByOwner(ctx, owner.ID)
}

func (s *AppointmentService) Get(ctx context.Context, id int) (models.Appointment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if a == nil {
		return models.Appointment{}, ErrNotFound
	}
	return *a, nil
}

// GetOwned is Get followed by the ownership check.
func (s *AppointmentService) GetOwned(ctx context.Context, id int, caller models.User) (models.Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if !a.OwnedBy(caller) {
		return models.Appointment{}, ErrForbidden
	}
	return a, nil
}

// Edit overwrites the mutable fields of an appointment owned by caller.
func (s *AppointmentService) Edit(ctx context.Context, id int, caller models.User, in AppointmentInput) (models.Appointment, error) {
	a, err := s.GetOwned(ctx, id, caller)
	if err != nil {
		return models.Appointment{}, err
	}

	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Appointment{}, err
	}

	a.PatientName = in.PatientName
	a.Date = in.Date
	a.Time = in.Time
	a.Reason = in.Reason
	if err := s.repo.Update(ctx, a); err != nil {
		return models.Appointment{}, err
	}
	return s.Get(ctx, id)
}

// Delete permanently removes an appointment owned by caller.
func (s *AppointmentService) Delete(ctx context.Context, id int, caller models.User) error {
	if _, err := s.GetOwned(ctx, id, caller); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
