package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

const defaultAlertLimit = 50

// AlertStore is the slice of the alert repository the handler uses
type AlertStore interface {
	List(onlyOpen bool, limit int) ([]model.Alert, error)
	ListByPatient(patientID string, limit int) ([]model.Alert, error)
	FindByID(id uuid.UUID) (*model.Alert, error)
	Acknowledge(id uuid.UUID) error
}

// AlertHandler serves the persisted alert history
type AlertHandler struct {
	alertRepo AlertStore
}

func NewAlertHandler(alertRepo AlertStore) *AlertHandler {
	return &AlertHandler{alertRepo: alertRepo}
}

// List godoc
// @Summary List alerts, most recent first
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param status query string false "all to include acknowledged alerts (default open)" Enums(open, all)
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} model.Alert
// @Failure 500 {object} model.ErrorResponse
// @Router /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	onlyOpen := openOnlyStatus(c.DefaultQuery("status", "open"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAlertLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAlertLimit
	}

	alerts, err := h.alertRepo.List(onlyOpen, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// ListByPatient godoc
// @Summary List alerts for one patient, most recent first
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} model.Alert
// @Failure 500 {object} model.ErrorResponse
// @Router /patients/{patientId}/alerts [get]
func (h *AlertHandler) ListByPatient(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAlertLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAlertLimit
	}

	alerts, err := h.alertRepo.ListByPatient(c.Param("patientId"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// Acknowledge godoc
// @Summary Acknowledge an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} model.Alert
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /alerts/{id}/ack [post]
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid alert ID"})
		return
	}

	if _, err := h.alertRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Alert not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alert"})
		return
	}

	if err := h.alertRepo.Acknowledge(id); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to acknowledge alert"})
		return
	}

	alert, err := h.alertRepo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alert"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// openOnlyStatus maps the status query value to the repository filter.
// Only an explicit "all" includes acknowledged alerts.
func openOnlyStatus(status string) bool {
	return status != "all"
}
