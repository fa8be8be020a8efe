package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/internal/service"
	"github.com/vitalwatch/api/pkg/storage"
)

// Profile photos only
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PatientHandler handles patient profile endpoints
type PatientHandler struct {
	patientService *service.PatientService
	storage        *storage.MinIOStorage
}

func NewPatientHandler(patientService *service.PatientService, storage *storage.MinIOStorage) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		storage:        storage,
	}
}

// List godoc
// @Summary List all patients with their current risk level
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PatientSummary
// @Failure 500 {object} model.ErrorResponse
// @Router /patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	summaries, err := h.patientService.ListWithRisk(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list patients"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetDetail godoc
// @Summary Get a patient's full profile with recent readings
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} model.PatientDetail
// @Failure 500 {object} model.ErrorResponse
// @Router /patients/{patientId} [get]
func (h *PatientHandler) GetDetail(c *gin.Context) {
	detail, err := h.patientService.GetDetail(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load patient"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UploadPhoto godoc
// @Summary Upload a profile photo for a patient
// @Tags Patients
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Param photo formData file true "Photo file (jpg, png, webp)"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /patients/{patientId}/photo [post]
func (h *PatientHandler) UploadPhoto(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "File upload service unavailable"})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Photo file is required", Message: err.Error()})
		return
	}
	defer file.Close()

	if !allowedPhotoTypes[header.Header.Get("Content-Type")] {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Unsupported file type", Message: "Allowed: jpg, png, webp"})
		return
	}

	result, err := h.storage.Upload(c.Request.Context(), file, header, "patients")
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to upload photo", Message: err.Error()})
		return
	}

	if err := h.patientService.UpdatePhoto(c.Param("patientId"), result.URL); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: result.URL})
}
