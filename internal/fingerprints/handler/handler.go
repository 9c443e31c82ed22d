// Package handler exposes the fingerprint and report HTTP endpoints.
package handler

import (
	"net/http"

	"lead_intake_backend/internal/fingerprints/service"
	"lead_intake_backend/internal/fingerprints/transport"
	"lead_intake_backend/platform/httpkit"
	"lead_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "Invalid request"
	msgValidationFailed = "Validation failed"
)

// Handler handles HTTP requests for fingerprints and reports.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new fingerprints handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes adds the fingerprint routes to the public v1 group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/fingerprints", h.CreateFingerprint)
	rg.POST("/reports", h.CreateReport)
}

// CreateFingerprint stores or refreshes a visitor fingerprint.
func (h *Handler) CreateFingerprint(c *gin.Context) {
	var req transport.CreateFingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.svc.RecordFingerprint(c.Request.Context(), req.VisitorID, req.Components)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.MessageResponse{Message: "Fingerprint saved successfully"})
}

// CreateReport records one page visit for a known fingerprint.
func (h *Handler) CreateReport(c *gin.Context) {
	var req transport.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.svc.RecordReport(c.Request.Context(), req.VisitorID, req.Page)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.MessageResponse{Message: "Report saved successfully"})
}
