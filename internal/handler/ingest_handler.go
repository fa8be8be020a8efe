package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/internal/service"
)

// IngestHandler receives readings from monitoring devices and serves the
// live state derived from them
type IngestHandler struct {
	ingestService *service.IngestService
	vitalsService *service.VitalsService
}

func NewIngestHandler(ingestService *service.IngestService, vitalsService *service.VitalsService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		vitalsService: vitalsService,
	}
}

// Ingest godoc
// @Summary Ingest a vital-signs reading from a device
// @Description Accepts partially malformed payloads; missing or invalid fields are replaced with fallbacks
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body model.IngestPayload true "Device reading"
// @Success 200 {object} model.IngestResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /iot/reading [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	var payload model.IngestPayload
	// Malformed bodies are not rejected: field-level fallbacks apply instead
	_ = c.ShouldBindJSON(&payload)

	resp, err := h.ingestService.ProcessReading(c.Request.Context(), payload)
	if errors.Is(err, service.ErrInvalidDeviceKey) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid device key"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to store reading", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLive godoc
// @Summary Get the current vitals for a patient
// @Tags Vitals
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} model.LiveVitals
// @Failure 500 {object} model.ErrorResponse
// @Router /patients/{patientId}/live [get]
func (h *IngestHandler) GetLive(c *gin.Context) {
	live, err := h.vitalsService.GetLive(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load vitals"})
		return
	}

	c.JSON(http.StatusOK, live)
}

// GetPrediction godoc
// @Summary Get the current risk prediction for a patient
// @Tags Vitals
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} model.PredictionResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /patients/{patientId}/prediction [get]
func (h *IngestHandler) GetPrediction(c *gin.Context) {
	prediction, err := h.vitalsService.GetPrediction(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load prediction"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}
