package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/repositories"
)

type ReportService struct {
	Repo        repositories.DealRepository
	FinanceRepo repositories.FinanceRepository
	Log         *zap.Logger
}

func NewReportService(repo repositories.DealRepository, finance repositories.FinanceRepository, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{Repo: repo, FinanceRepo: finance, Log: log}
}

// BoardSnapshot is a read-only view of the whole pipeline.
type BoardSnapshot struct {
	Columns []pipeline.Column
	Summary *models.PipelineSummary
}

// Snapshot loads every deal and lays it out in stage columns.
func (s *ReportService) Snapshot(ctx context.Context) (*BoardSnapshot, error) {
	deals, err := s.Repo.List(ctx, models.DealFilter{})
	if err != nil {
		return nil, err
	}
	board := pipeline.NewBoard(nil)
	board.LoadInitial(deals)
	cols := board.Columns()
	return &BoardSnapshot{Columns: cols, Summary: summarizeColumns(cols)}, nil
}

// Summary totals the whole pipeline per stage, plus the won revenue split by
// deal type.
func (s *ReportService) Summary(ctx context.Context) (*models.PipelineSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Summary, nil
}

// Summarize is Summary over an in-memory list.
func Summarize(deals []models.Deal) *models.PipelineSummary {
	board := pipeline.NewBoard(nil)
	board.LoadInitial(deals)
	return summarizeColumns(board.Columns())
}

func summarizeColumns(cols []pipeline.Column) *models.PipelineSummary {
	out := &models.PipelineSummary{
		OpenValue:    decimal.Zero,
		WonRecurring: decimal.Zero,
		WonOneOff:    decimal.Zero,
		WonTotal:     decimal.Zero,
	}
	var won, lost int
	for _, col := range cols {
		out.Stages = append(out.Stages, models.StageTotal{
			Stage: col.Stage,
			Title: col.Title,
			Count: col.Count,
			Total: col.Total,
		})
		switch col.Stage {
		case models.StageWon:
			won = col.Count
			out.WonTotal = col.Total
			for _, d := range col.Deals {
				if d.IsRecurring() {
					out.WonRecurring = out.WonRecurring.Add(d.Value)
				} else {
					out.WonOneOff = out.WonOneOff.Add(d.Value)
				}
			}
		case models.StageLost:
			lost = col.Count
		default:
			out.OpenValue = out.OpenValue.Add(col.Total)
		}
	}
	if won+lost > 0 {
		out.WinRate = float64(won) / float64(won+lost)
	}
	return out
}

// MonthlyWon buckets won deals by the month they were created, oldest
// first, matching the finance report. from is inclusive; a zero from means
// no lower bound.
func (s *ReportService) MonthlyWon(ctx context.Context, from time.Time) ([]models.MonthlyWon, error) {
	stage := models.StageWon
	deals, err := s.Repo.List(ctx, models.DealFilter{Stage: &stage})
	if err != nil {
		return nil, err
	}

	buckets := map[string]*models.MonthlyWon{}
	for _, d := range deals {
		if !from.IsZero() && d.CreatedAt.Before(from) {
			continue
		}
		key := models.MonthOf(d.CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = &models.MonthlyWon{Month: key, Total: decimal.Zero}
			buckets[key] = b
		}
		b.Count++
		b.Total = b.Total.Add(d.Value)
	}

	out := make([]models.MonthlyWon, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Finance builds the finance report of month ("YYYY-MM"). The deals are
// required; plans and costs that fail to load only add a warning, so the
// revenue side still renders.
func (s *ReportService) Finance(ctx context.Context, month string) (*models.FinanceReport, error) {
	start, err := models.ParseMonth(month)
	if err != nil {
		return nil, invalid("month", "expected YYYY-MM")
	}
	month = models.MonthOf(start)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var (
		deals              []models.Deal
		plans              []models.MonthlyPlan
		costs              []models.Cost
		plansErr, costsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.Repo.List(gctx, models.DealFilter{
			CreatedFrom: &start,
			CreatedTo:   &end,
			SortBy:      "created_at",
			Order:       "desc",
		})
		return err
	})
	if s.FinanceRepo != nil {
		g.Go(func() error {
			plans, plansErr = s.FinanceRepo.ListPlans(gctx, month)
			return nil
		})
		g.Go(func() error {
			costs, costsErr = s.FinanceRepo.ListCosts(gctx, month)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := buildFinanceReport(month, deals, plans, costs)
	if plansErr != nil {
		s.Log.Warn("[finance][plans] load failed", zap.String("month", month), zap.Error(plansErr))
		report.Warnings = append(report.Warnings, "Monthly plans could not be loaded.")
	}
	if costsErr != nil {
		s.Log.Warn("[finance][costs] load failed", zap.String("month", month), zap.Error(costsErr))
		report.Warnings = append(report.Warnings, "Costs could not be loaded.")
	}
	return report, nil
}

func buildFinanceReport(month string, deals []models.Deal, plans []models.MonthlyPlan, costs []models.Cost) *models.FinanceReport {
	r := &models.FinanceReport{
		Month:            month,
		Revenue:          decimal.Zero,
		RecurringRevenue: decimal.Zero,
		OneOffRevenue:    decimal.Zero,
		TotalCosts:       decimal.Zero,
		AverageCost:      decimal.Zero,
		RevenueGoal:      decimal.Zero,
		CostForecast:     decimal.Zero,
		Plans:            append([]models.MonthlyPlan{}, plans...),
		Costs:            append([]models.Cost{}, costs...),
		Deals:            make([]models.FinanceDeal, 0, len(deals)),
	}

	for _, d := range deals {
		recurring := d.IsRecurring()
		r.Deals = append(r.Deals, models.FinanceDeal{Deal: d, Recurring: recurring})
		if recurring {
			r.RecurringDeals++
		}
		if d.Stage != models.StageWon {
			continue
		}
		if recurring {
			r.RecurringWon++
			r.RecurringRevenue = r.RecurringRevenue.Add(d.Value)
		} else {
			r.OneOffWon++
			r.OneOffRevenue = r.OneOffRevenue.Add(d.Value)
		}
	}
	r.Revenue = r.RecurringRevenue.Add(r.OneOffRevenue)

	for _, c := range costs {
		r.TotalCosts = r.TotalCosts.Add(c.Amount)
	}
	r.CostCount = len(costs)
	if r.CostCount > 0 {
		r.AverageCost = r.TotalCosts.Div(decimal.NewFromInt(int64(r.CostCount))).Round(2)
	}
	r.Profit = r.Revenue.Sub(r.TotalCosts)

	for _, p := range plans {
		if p.Month == month {
			r.RevenueGoal = p.RevenueGoal
			r.CostForecast = p.CostForecast
			break
		}
	}
	if r.RevenueGoal.IsPositive() {
		r.GoalProgress = r.Revenue.Div(r.RevenueGoal).InexactFloat64()
	}
	return r
}
