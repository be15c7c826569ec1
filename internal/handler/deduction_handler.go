package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/response"
)

type deductionService interface {
	Preview(ctx context.Context, personID string, category models.PersonCategory, durationHours float64) (*service.DeductionPreview, error)
	PreviewTable(ctx context.Context, personID string, category models.PersonCategory) (*service.DeductionPreviewTable, error)
}

// DeductionHandler wires the preview calculator to HTTP endpoints.
type DeductionHandler struct {
	service deductionService
}

// NewDeductionHandler constructs the handler.
func NewDeductionHandler(service deductionService) *DeductionHandler {
	return &DeductionHandler{service: service}
}

// Preview godoc
// @Summary Estimate the deduction for a checkout duration
// @Tags Deductions
// @Produce json
// @Param person_id query string true "Person ID"
// @Param category query string true "Person category (resident|staff)"
// @Param duration_hours query number true "Checkout duration in hours"
// @Success 200 {object} response.Envelope
// @Router /deductions/preview [get]
func (h *DeductionHandler) Preview(c *gin.Context) {
	personID, category, ok := personScope(c)
	if !ok {
		return
	}
	raw := strings.TrimSpace(c.Query("duration_hours"))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration_hours is required"))
		return
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration_hours must be a number"))
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), personID, category, hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// PreviewTable godoc
// @Summary Canonical deduction preview over the standard durations
// @Tags Deductions
// @Produce json
// @Param person_id query string true "Person ID"
// @Param category query string true "Person category (resident|staff)"
// @Success 200 {object} response.Envelope
// @Router /deductions/preview-table [get]
func (h *DeductionHandler) PreviewTable(c *gin.Context) {
	personID, category, ok := personScope(c)
	if !ok {
		return
	}
	table, err := h.service.PreviewTable(c.Request.Context(), personID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table, nil)
}
