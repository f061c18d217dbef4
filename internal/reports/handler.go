package reports

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/reports/export"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/reports/:type", h.GetReport)
}

func (h *Handler) Dashboard(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), *identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard, try again"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetReport builds a report and returns it as JSON or as a CSV, Excel or PDF
// download depending on the format query parameter.
func (h *Handler) GetReport(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	reportType := ReportType(c.Param("type"))
	period := Period(c.DefaultQuery("period", string(PeriodCurrentMonth)))

	table, err := h.service.Build(c.Request.Context(), *identity, reportType, period)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownReport), errors.Is(err, ErrUnknownPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report, try again"})
		}
		return
	}

	format := c.DefaultQuery("format", "json")
	switch format {
	case "json":
		c.JSON(http.StatusOK, table)
	case "csv":
		var buf bytes.Buffer
		if err := export.NewCSVExporter(export.DefaultCSVOptions()).WriteTable(&buf, table.Columns, table.Rows); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report, try again"})
			return
		}
		h.download(c, reportType, "csv", "text/csv", buf.Bytes())
	case "excel":
		var buf bytes.Buffer
		if err := export.NewExcelExporter(export.DefaultExcelOptions()).WriteTable(&buf, table.Columns, table.Rows); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report, try again"})
			return
		}
		h.download(c, reportType, "xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	case "pdf":
		options := export.DefaultPDFOptions()
		options.Title = table.Title
		var buf bytes.Buffer
		if err := export.NewPDFGenerator(options).WriteTable(&buf, table.Columns, table.Rows); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report, try again"})
			return
		}
		h.download(c, reportType, "pdf", "application/pdf", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, csv, excel or pdf"})
	}
}

func (h *Handler) download(c *gin.Context, reportType ReportType, ext, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="relatorio-%s.%s"`, reportType, ext))
	c.Data(http.StatusOK, contentType, data)
}
