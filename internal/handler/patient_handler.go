package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/easyped-service/internal/dto"
	"github.com/prperemyshlev/easyped-service/internal/service"
	"go.uber.org/zap"
)

// PatientHandler handles patient record requests
type PatientHandler struct {
	patientService service.PatientService
	logger         *zap.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
	}
}

// ownerID reads the caller identity; it aborts with 401 when the guard did not run
func (h *PatientHandler) ownerID(c *gin.Context) (string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "No token, authorization denied")
	}
	return userID, ok
}

// Create handles patient registration
// @Summary Create a patient
// @Tags patients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePatientRequest true "Patient"
// @Success 201 {object} dto.CreatePatientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	created, err := h.patientService.Create(c.Request.Context(), ownerID, &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatePatientResponse{
		Message: "Patient created successfully",
		Patient: *created,
	})
}

// List handles listing the caller's patients
// @Summary List own patients
// @Tags patients
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PatientListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	patients, err := h.patientService.ListOwned(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.PatientListResponse{Patients: patients})
}

// Get handles fetching one owned patient with its QR image
// @Summary Get own patient
// @Tags patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} dto.PatientResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	patient, err := h.patientService.GetOwned(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.PatientResponse{Patient: *patient})
}

// GetByQRCode handles the public emergency lookup
// @Summary Emergency view by QR code
// @Tags patients
// @Produce json
// @Param qrCode path string true "QR code"
// @Success 200 {object} dto.PublicPatientResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/qr/{qrCode} [get]
func (h *PatientHandler) GetByQRCode(c *gin.Context) {
	view, err := h.patientService.GetPublic(c.Request.Context(), c.Param("qrCode"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.PublicPatientResponse{Patient: view})
}

// Update handles a partial update of an owned patient
// @Summary Update own patient
// @Tags patients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body dto.UpdatePatientRequest true "Fields to change"
// @Success 200 {object} dto.UpdatePatientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req dto.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	patient, err := h.patientService.Update(c.Request.Context(), ownerID, c.Param("id"), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdatePatientResponse{
		Message: "Patient updated successfully",
		Patient: patient,
	})
}

// Delete handles soft deletion of an owned patient
// @Summary Delete own patient
// @Tags patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	if err := h.patientService.SoftDelete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Patient deleted successfully"})
}
