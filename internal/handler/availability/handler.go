package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/internal/service/availability"
	"github.com/smilecare/scheduler-api/pkg/httputil"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dentists := r.Group("/dentists")
	{
		dentists.GET("/:id/availability", h.GetAvailability)
	}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	dentistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid dentist ID"})
		return
	}

	date, err := time.Parse(model.DateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	var serviceID *uuid.UUID
	if raw := c.Query("service_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid service ID"})
			return
		}
		serviceID = &parsed
	}

	result, err := h.service.GetAvailability(c.Request.Context(), dentistID, date, serviceID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, result)
}
