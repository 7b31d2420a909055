package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

// Generator is the interface handlers depend on.
type Generator interface {
	BoardReport(w io.Writer, data BoardReportData) error
}

type BoardReportData struct {
	Columns     []pipeline.Column
	Summary     *models.PipelineSummary
	GeneratedAt time.Time
	// FormatMoney renders amounts; defaults to a plain two-decimal string.
	FormatMoney func(decimal.Decimal) string
}

type ReportGenerator struct {
	FontPath string // optional TTF with full Unicode coverage
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	return &ReportGenerator{FontPath: fontPath}
}

// BoardReport renders one section per stage with its deals and total.
func (g *ReportGenerator) BoardReport(w io.Writer, data BoardReportData) error {
	money := data.FormatMoney
	if money == nil {
		money = func(d decimal.Decimal) string { return d.StringFixed(2) }
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pipeline", true)
	pdf.SetAuthor("agencydesk", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := g.setupFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr("Pipeline de vendas"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr("Gerado em "+data.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	g.hr(pdf)

	if s := data.Summary; s != nil {
		g.kvLine(pdf, tr, "Em aberto", money(s.OpenValue))
		g.kvLine(pdf, tr, "Ganho (recorrente)", money(s.WonRecurring))
		g.kvLine(pdf, tr, "Ganho (avulso)", money(s.WonOneOff))
		g.kvLine(pdf, tr, "Taxa de conversão", fmt.Sprintf("%.1f%%", s.WinRate*100))
		g.hr(pdf)
	}

	for _, col := range data.Columns {
		g.sectionTitle(pdf, tr, fmt.Sprintf("%s (%d) · %s", col.Title, col.Count, money(col.Total)))
		if len(col.Deals) == 0 {
			pdf.SetFont(g.fontName, "", 10)
			pdf.CellFormat(0, 6, tr("Nenhum negócio"), "", 1, "L", false, 0, "")
		}
		for _, d := range col.Deals {
			pdf.SetFont(g.fontName, "", 10)
			pdf.CellFormat(110, 6, tr(d.Title+" · "+d.CompanyName), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(money(d.Value)), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render board report: %w", err)
	}
	return nil
}

// WriteFile renders the report into path, creating the directory.
func (g *ReportGenerator) WriteFile(path string, data BoardReportData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := g.BoardReport(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// setupFont registers the TTF when one is available; otherwise it falls back
// to the core Helvetica font, which needs text translated to cp1252.
func (g *ReportGenerator) setupFont(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			g.fontName = "DejaVu"
			pdf.AddUTF8Font(g.fontName, "", g.FontPath)
			pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
			return func(s string) string { return s }
		}
	}
	g.fontName = "Helvetica"
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, tr(s), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, tr func(string) string, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, tr(key+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
