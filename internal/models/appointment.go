package models

import "time"

// Appointment is a booking owned by exactly one user.
// Date and Time are kept as the client sent them; they are not parsed.
type Appointment struct {
	ID          int       `json:"id"`
	PatientName string    `json:"patient_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Reason      string    `json:"reason,omitempty"`
	OwnerUserID int       `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether u is the owner of the appointment.
func (a Appointment) OwnedBy(u User) bool {
	return a.OwnerUserID == u.ID
}
