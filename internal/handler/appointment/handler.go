package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/middleware"
	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/internal/service/appointment"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
	"github.com/smilecare/scheduler-api/pkg/httputil"
	"github.com/smilecare/scheduler-api/pkg/metrics"
)

type Handler struct {
	service *appointment.Service
	metrics *metrics.Metrics
}

func NewHandler(service *appointment.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	appointments.Use(auth.Authenticate())
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", auth.RequireAdmin(), h.DeleteAppointment)
		appointments.POST("/bulk", auth.RequireAdmin(), h.BulkAppointments)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	apt := &model.Appointment{
		PatientID: req.PatientID,
		DentistID: req.DentistID,
		ServiceID: req.ServiceID,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Notes:     req.Notes,
	}

	created, _, err := h.service.Book(c.Request.Context(), apt)
	if err != nil {
		if apperrors.IsConflict(err) {
			h.metrics.BookingConflicts.Inc()
		}
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.BookingsCreated.Inc()
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("dentist_id"); id != "" {
		dentistID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid dentist ID"})
			return
		}
		filters.DentistID = dentistID
	}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid patient ID"})
			return
		}
		filters.PatientID = patientID
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	if date := c.Query("start_date"); date != "" {
		parsed, err := time.Parse(model.DateLayout, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid start_date"})
			return
		}
		filters.StartDate = parsed
	}

	if date := c.Query("end_date"); date != "" {
		parsed, err := time.Parse(model.DateLayout, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid end_date"})
			return
		}
		filters.EndDate = parsed
	}

	filters.Upcoming = c.Query("upcoming") == "true"
	filters.Today = c.Query("today") == "true"

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

// UpdateAppointment applies a partial update: schedule fields first, then
// the status transition, each through its lifecycle path.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if req.Status == nil && req.Date == nil && req.TimeSlot == nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "no fields to update"})
		return
	}

	var updated *model.Appointment

	if req.Date != nil || req.TimeSlot != nil {
		current, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		newDate := current.Date
		if req.Date != nil {
			parsed, err := time.Parse(model.DateLayout, *req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid date format, expected YYYY-MM-DD"})
				return
			}
			newDate = parsed
		}

		newSlot := current.TimeSlot
		if req.TimeSlot != nil {
			newSlot = *req.TimeSlot
		}

		updated, _, err = h.service.Reschedule(c.Request.Context(), id, newDate, newSlot)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	if req.Status != nil {
		var err error
		updated, _, err = h.service.Transition(c.Request.Context(), id, *req.Status, req.CancelReason)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, "appointment deleted")
}

func (h *Handler) BulkAppointments(c *gin.Context) {
	var req model.BulkAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	action, err := model.ParseBulkAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result, err := h.service.ApplyBulk(c.Request.Context(), req.AppointmentIDs, action, req.CancelReason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, result.Message())
}
