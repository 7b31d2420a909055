package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"agencydesk/internal/app"
	"agencydesk/internal/models"
	"agencydesk/internal/pdf"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/services"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			Width(34)
	headerStyle = lipgloss.NewStyle().Bold(true)
	wonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	lostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// newBoardCmd prints the pipeline board and optionally writes the PDF report.
func newBoardCmd(e *env) *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the pipeline board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, e.cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			snap, err := services.NewReportService(store.Deals, store.Finance, e.log).Snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBoard(snap.Columns, snap.Summary))

			if pdfPath == "" {
				return nil
			}
			err = pdf.NewReportGenerator("assets/fonts/DejaVuSans.ttf").WriteFile(pdfPath, pdf.BoardReportData{
				Columns:     snap.Columns,
				Summary:     snap.Summary,
				GeneratedAt: time.Now(),
				FormatMoney: services.FormatBRL,
			})
			if err != nil {
				return err
			}
			e.log.Info("[board][pdf] written")
			return nil
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also write the report to this PDF file")
	return cmd
}

func renderBoard(cols []pipeline.Column, summary *models.PipelineSummary) string {
	boxes := make([]string, 0, len(cols))
	for _, col := range cols {
		boxes = append(boxes, columnStyle.Render(renderColumn(col)))
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")
	if summary != nil {
		fmt.Fprintf(&b, "Em aberto: %s   Ganho: %s (recorrente %s, avulso %s)   Taxa de ganho: %.0f%%",
			services.FormatBRL(summary.OpenValue),
			services.FormatBRL(summary.WonTotal),
			services.FormatBRL(summary.WonRecurring),
			services.FormatBRL(summary.WonOneOff),
			summary.WinRate*100,
		)
	}
	return b.String()
}

func renderColumn(col pipeline.Column) string {
	title := headerStyle.Render(col.Title)
	switch col.Stage {
	case models.StageWon:
		title = wonStyle.Render(title)
	case models.StageLost:
		title = lostStyle.Render(title)
	}
	lines := []string{
		title,
		mutedStyle.Render(fmt.Sprintf("%d · %s", col.Count, services.FormatBRL(col.Total))),
		"",
	}
	for _, d := range col.Deals {
		lines = append(lines, d.Title, mutedStyle.Render(d.CompanyName+" · "+services.FormatBRL(d.Value)))
	}
	return strings.Join(lines, "\n")
}
