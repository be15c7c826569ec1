package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/response"
)

type ledgerService interface {
	Record(ctx context.Context, req service.RecordEntryRequest) (*models.CheckoutFinancial, error)
	Get(ctx context.Context, id string) (*models.CheckoutFinancial, error)
	Correct(ctx context.Context, id string, req service.CorrectEntryRequest) (*models.CheckoutFinancial, error)
	List(ctx context.Context, req service.LedgerListRequest) ([]models.CheckoutFinancial, *models.Pagination, error)
}

// LedgerHandler wires the financial ledger to HTTP endpoints.
type LedgerHandler struct {
	service ledgerService
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(service ledgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Record godoc
// @Summary Record a realized deduction for an attendance event
// @Tags Ledger
// @Accept json
// @Produce json
// @Param payload body service.RecordEntryRequest true "Ledger entry payload"
// @Success 201 {object} response.Envelope
// @Router /ledger [post]
func (h *LedgerHandler) Record(c *gin.Context) {
	var req service.RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	entry, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Get godoc
// @Summary Fetch a single ledger entry
// @Tags Ledger
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 200 {object} response.Envelope
// @Router /ledger/{id} [get]
func (h *LedgerHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Correct godoc
// @Summary Correct the mutable fields of a ledger entry
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Param payload body service.CorrectEntryRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Router /ledger/{id} [patch]
func (h *LedgerHandler) Correct(c *gin.Context) {
	var req service.CorrectEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	entry, err := h.service.Correct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// List godoc
// @Summary List ledger entries
// @Tags Ledger
// @Produce json
// @Param person_id query string false "Person ID"
// @Param category query string false "Person category (resident|staff)"
// @Param location_id query string false "Location ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	req := service.LedgerListRequest{
		PersonID:   strings.TrimSpace(c.Query("person_id")),
		LocationID: strings.TrimSpace(c.Query("location_id")),
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		lowered := strings.ToLower(category)
		req.Category = &lowered
	}
	var ok bool
	if req.DateFrom, ok = parseDateQuery(c, "date_from"); !ok {
		return
	}
	if req.DateTo, ok = parseDateQuery(c, "date_to"); !ok {
		return
	}
	req.Page = parseIntQuery(c, "page", 1)
	req.PageSize = parseIntQuery(c, "page_size", 50)

	entries, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
