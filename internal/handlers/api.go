package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

// AppointmentRequest is the JSON body for creating or replacing an appointment.
type AppointmentRequest struct {
	PatientName string `json:"patient_name" binding:"required" example:"Bob"`
	Date        string `json:"date" binding:"required" example:"2024-01-01"`
	Time        string `json:"time" binding:"required" example:"10:00"`
	// Optional free-text reason
	Reason string `json:"reason,omitempty" example:"checkup"`
}

func (r AppointmentRequest) input() service.AppointmentInput {
	return service.AppointmentInput{
		PatientName: r.PatientName,
		Date:        r.Date,
		Time:        r.Time,
		Reason:      r.Reason,
	}
}

// idParamOrBadRequest writes a 400 JSON and returns false when :id is not a positive integer.
func idParamOrBadRequest(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to status codes; anything else is a logged 500.
func (h *Handler) writeServiceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}

// @Summary      List my appointments
// @Tags         appointments
// @Produce      json
// @Success      200  {array}   models.Appointment
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/appointments [get]
// @Security     BearerAuth
func (h *Handler) listAppointmentsJSON(c *gin.Context) {
	user := currentUser(c)
	list, err := h.services.ListForOwner(c.Request.Context(), user)
	if err != nil {
		h.writeServiceError(c, "api_appointment_list_failed", err, "user_id", user.ID)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body      AppointmentRequest  true  "Appointment"
// @Success      201   {object}  models.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/appointments [post]
// @Security     BearerAuth
func (h *Handler) createAppointmentJSON(c *gin.Context) {
	var req AppointmentRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	user := currentUser(c)
	a, err := h.services.Book(c.Request.Context(), user, req.input())
	if err != nil {
		h.writeServiceError(c, "api_appointment_book_failed", err, "user_id", user.ID)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary      Get one of my appointments
// @Tags         appointments
// @Produce      json
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  models.Appointment
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/appointments/{id} [get]
// @Security     BearerAuth
func (h *Handler) getAppointmentJSON(c *gin.Context) {
	id, ok := idParamOrBadRequest(c)
	if !ok {
		return
	}
	a, err := h.services.GetOwned(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.writeServiceError(c, "api_appointment_get_failed", err, "appointment_id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Replace an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Appointment ID"
// @Param        body  body      AppointmentRequest  true  "Appointment"
// @Success      200   {object}  models.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/appointments/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateAppointmentJSON(c *gin.Context) {
	id, ok := idParamOrBadRequest(c)
	if !ok {
		return
	}
	var req AppointmentRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	a, err := h.services.Edit(c.Request.Context(), id, currentUser(c), req.input())
	if err != nil {
		h.writeServiceError(c, "api_appointment_edit_failed", err, "appointment_id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Cancel an appointment
// @Tags         appointments
// @Param        id   path      int  true  "Appointment ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/appointments/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteAppointmentJSON(c *gin.Context) {
	id, ok := idParamOrBadRequest(c)
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.writeServiceError(c, "api_appointment_delete_failed", err, "appointment_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
