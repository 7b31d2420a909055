package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agencydesk/internal/models"
	"agencydesk/internal/pdf"
	"agencydesk/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	PDF     pdf.Generator
	now     func() time.Time
}

func NewReportHandler(service *services.ReportService, gen pdf.Generator) *ReportHandler {
	return &ReportHandler{Service: service, PDF: gen, now: time.Now}
}

// @Summary      Pipeline summary
// @Description  Per-stage totals, open value, won revenue split by deal type and win rate.
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.PipelineSummary
// @Failure      500  {object}  map[string]string
// @Router       /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Won value per month
// @Tags         Reports
// @Produce      json
// @Param        from  query     string  false  "first month, YYYY-MM"
// @Success      200   {array}   models.MonthlyWon
// @Failure      400   {object}  map[string]string
// @Router       /reports/won-monthly [get]
func (h *ReportHandler) MonthlyWon(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := models.ParseMonth(raw)
		if err != nil {
			respondError(c, &services.ValidationError{Field: "from", Message: "expected YYYY-MM"})
			return
		}
		from = t
	}
	data, err := h.Service.MonthlyWon(c.Request.Context(), from)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Monthly finance report
// @Description  Won revenue of the deals created in the month, split recurring/one-off, against that month's costs and plan.
// @Tags         Reports
// @Produce      json
// @Param        month  query     string  false  "YYYY-MM (default: current month)"
// @Success      200    {object}  models.FinanceReport
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /reports/finance [get]
func (h *ReportHandler) Finance(c *gin.Context) {
	month := c.DefaultQuery("month", models.MonthOf(h.now()))
	data, err := h.Service.Finance(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Board report as PDF
// @Tags         Reports
// @Produce      application/pdf
// @Success      200
// @Failure      500  {object}  map[string]string
// @Router       /reports/board.pdf [get]
func (h *ReportHandler) BoardPDF(c *gin.Context) {
	snap, err := h.Service.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	err = h.PDF.BoardReport(&buf, pdf.BoardReportData{
		Columns:     snap.Columns,
		Summary:     snap.Summary,
		GeneratedAt: h.now(),
		FormatMoney: services.FormatBRL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="pipeline.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
