package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

func sampleData() BoardReportData {
	b := pipeline.NewBoard(nil)
	b.LoadInitial([]models.Deal{
		{ID: "1", Title: "Gestão de redes", CompanyName: "Padaria São João", Value: decimal.NewFromInt(1200), Stage: models.StageNegotiation},
		{ID: "2", Title: "Site", CompanyName: "Loja", Value: decimal.NewFromInt(300), Stage: models.StageWon},
	})
	return BoardReportData{
		Columns:     b.Columns(),
		Summary:     &models.PipelineSummary{OpenValue: decimal.NewFromInt(1200), WonOneOff: decimal.NewFromInt(300), WinRate: 1},
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestBoardReportRendersPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator("").BoardReport(&buf, sampleData()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestBoardReportMissingFontFallsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator("/nonexistent/DejaVuSans.ttf").BoardReport(&buf, sampleData()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "board.pdf")
	require.NoError(t, NewReportGenerator("").WriteFile(path, sampleData()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}
