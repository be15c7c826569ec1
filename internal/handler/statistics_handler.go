package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hostel-core-api/internal/middleware"
	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/export"
	"github.com/hostelworks/hostel-core-api/pkg/response"
)

type statisticsService interface {
	GetStatistics(ctx context.Context, req service.StatisticsRequest) (*models.DeductionStatistics, bool, error)
}

// StatisticsHandler wires the aggregation engine to HTTP endpoints.
type StatisticsHandler struct {
	service       statisticsService
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	exportEnabled bool
}

// NewStatisticsHandler constructs the handler.
func NewStatisticsHandler(service statisticsService, csv *export.CSVExporter, pdf *export.PDFExporter, exportEnabled bool) *StatisticsHandler {
	return &StatisticsHandler{service: service, csv: csv, pdf: pdf, exportEnabled: exportEnabled}
}

func (h *StatisticsHandler) parseRequest(c *gin.Context) (service.StatisticsRequest, bool) {
	req := service.StatisticsRequest{LocationID: strings.TrimSpace(c.Query("location_id"))}
	var ok bool
	if req.StartDate, ok = parseDateQuery(c, "start_date"); !ok {
		return req, false
	}
	if req.EndDate, ok = parseDateQuery(c, "end_date"); !ok {
		return req, false
	}
	return req, true
}

// Deductions godoc
// @Summary Deduction statistics for a date window
// @Tags Statistics
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param location_id query string false "Location ID"
// @Success 200 {object} response.Envelope
// @Router /statistics/deductions [get]
func (h *StatisticsHandler) Deductions(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.service.GetStatistics(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, stats, nil, meta)
}

// Export godoc
// @Summary Export deduction statistics as CSV or PDF
// @Tags Statistics
// @Produce octet-stream
// @Param format query string true "Export format (csv|pdf)"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param location_id query string false "Location ID"
// @Success 200 {file} binary
// @Router /statistics/deductions/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	if !h.exportEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "statistics export is disabled"))
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}
	stats, _, err := h.service.GetStatistics(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := service.ExportDataset(stats)
	filename := fmt.Sprintf("deduction-statistics-%s-%s",
		stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))

	switch format {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, "Deduction Statistics")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	}
}
