package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medisched/internal/models"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgBooked         = "Appointment booked successfully!"
	msgUpdated        = "Appointment updated successfully."
	msgCanceled       = "Appointment canceled."
	msgUnauthorized   = "Unauthorized access."
	msgNotFound       = "Appointment not found."
	msgMissingDetails = "Patient name, date and time are required."
)

func appointmentForm(c *gin.Context) service.AppointmentInput {
	return service.AppointmentInput{
		PatientName: c.PostForm("patient_name"),
		Date:        c.PostForm("date"),
		Time:        c.PostForm("time"),
		Reason:      c.PostForm("reason"),
	}
}

// pathID parses the :id segment; anything but a positive integer is treated
// as a missing appointment.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// redirectOnAppointmentError maps a service error to a dashboard redirect
// with a notice. Unexpected errors render the error page.
func (h *Handler) redirectOnAppointmentError(c *gin.Context, logKey string, err error, id int) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.setFlash(c, errorNotice(msgNotFound))
	case errors.Is(err, service.ErrForbidden):
		h.log.Infow(logKey+"_forbidden", "user_id", currentUser(c).ID, "appointment_id", id)
		h.setFlash(c, errorNotice(msgUnauthorized))
	default:
		h.log.Errorw(logKey+"_failed", "user_id", currentUser(c).ID, "appointment_id", id, "err", err)
		h.renderInternalError(c)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) dashboard(c *gin.Context) {
	user := currentUser(c)
	list, err := h.services.ListForOwner(c.Request.Context(), user)
	if err != nil {
		h.log.Errorw("appointment_list_failed", "user_id", user.ID, "err", err)
		h.renderInternalError(c)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":        "Dashboard",
		"Appointments": list,
	})
}

func (h *Handler) bookPage(c *gin.Context) {
	h.render(c, http.StatusOK, "appointment.html", gin.H{
		"Title":       "Book appointment",
		"Action":      "/book",
		"Appointment": models.Appointment{},
	})
}

func (h *Handler) book(c *gin.Context) {
	user := currentUser(c)
	a, err := h.services.Book(c.Request.Context(), user, appointmentForm(c))
	if errors.Is(err, service.ErrInvalidInput) {
		h.setFlash(c, errorNotice(msgMissingDetails))
		c.Redirect(http.StatusFound, "/book")
		return
	}
	if err != nil {
		h.log.Errorw("appointment_book_failed", "user_id", user.ID, "err", err)
		h.renderInternalError(c)
		return
	}

	h.log.Infow("appointment_booked", "user_id", user.ID, "appointment_id", a.ID)
	h.setFlash(c, successNotice(msgBooked))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) editPage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.redirectOnAppointmentError(c, "appointment_edit", service.ErrNotFound, 0)
		return
	}
	a, err := h.services.GetOwned(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.redirectOnAppointmentError(c, "appointment_edit", err, id)
		return
	}
	h.render(c, http.StatusOK, "appointment.html", gin.H{
		"Title":       "Edit appointment",
		"Action":      "/edit/" + strconv.Itoa(id),
		"Appointment": a,
	})
}

func (h *Handler) edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.redirectOnAppointmentError(c, "appointment_edit", service.ErrNotFound, 0)
		return
	}
	_, err := h.services.Edit(c.Request.Context(), id, currentUser(c), appointmentForm(c))
	if errors.Is(err, service.ErrInvalidInput) {
		h.setFlash(c, errorNotice(msgMissingDetails))
		c.Redirect(http.StatusFound, "/edit/"+strconv.Itoa(id))
		return
	}
	if err != nil {
		h.redirectOnAppointmentError(c, "appointment_edit", err, id)
		return
	}

	h.setFlash(c, successNotice(msgUpdated))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.redirectOnAppointmentError(c, "appointment_delete", service.ErrNotFound, 0)
		return
	}
	if err := h.services.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.redirectOnAppointmentError(c, "appointment_delete", err, id)
		return
	}

	h.log.Infow("appointment_deleted", "user_id", currentUser(c).ID, "appointment_id", id)
	h.setFlash(c, successNotice(msgCanceled))
	c.Redirect(http.StatusFound, "/dashboard")
}
