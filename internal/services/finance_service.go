package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/repositories"
)

type PlanInput struct {
	RevenueGoal  MoneyInput `json:"revenue_goal"`
	CostForecast MoneyInput `json:"cost_forecast"`
}

type CostInput struct {
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Amount    MoneyInput `json:"amount"`
	CostMonth string     `json:"cost_month"`
}

// FinanceService keeps the monthly plans and costs the finance report reads.
type FinanceService struct {
	Repo repositories.FinanceRepository
	Log  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewFinanceService(repo repositories.FinanceRepository, log *zap.Logger) *FinanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FinanceService{
		Repo:  repo,
		Log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func parseMonthField(field, raw string) (string, error) {
	t, err := models.ParseMonth(raw)
	if err != nil {
		return "", invalid(field, "expected YYYY-MM")
	}
	return models.MonthOf(t), nil
}

func parseAmount(field string, raw MoneyInput) (decimal.Decimal, error) {
	v, err := ParseMoney(string(raw))
	if err != nil {
		return v, invalid(field, "%s", err.Error())
	}
	if v.IsNegative() {
		return v, invalid(field, "%s must not be negative", field)
	}
	return v, nil
}

// SavePlan sets the revenue goal and cost forecast of month, replacing any
// previous plan.
func (s *FinanceService) SavePlan(ctx context.Context, month string, in PlanInput) (*models.MonthlyPlan, error) {
	m, err := parseMonthField("month", month)
	if err != nil {
		return nil, err
	}
	goal, err := parseAmount("revenue_goal", in.RevenueGoal)
	if err != nil {
		return nil, err
	}
	forecast, err := parseAmount("cost_forecast", in.CostForecast)
	if err != nil {
		return nil, err
	}
	plan := &models.MonthlyPlan{Month: m, RevenueGoal: goal, CostForecast: forecast}
	if err := s.Repo.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.Log.Info("[finance][plan] saved",
		zap.String("month", m),
		zap.String("revenue_goal", goal.String()),
		zap.String("cost_forecast", forecast.String()))
	return plan, nil
}

// Plans lists the plans from fromMonth on. An empty fromMonth means the
// current month.
func (s *FinanceService) Plans(ctx context.Context, fromMonth string) ([]models.MonthlyPlan, error) {
	from := models.MonthOf(s.now())
	if strings.TrimSpace(fromMonth) != "" {
		m, err := parseMonthField("from", fromMonth)
		if err != nil {
			return nil, err
		}
		from = m
	}
	return s.Repo.ListPlans(ctx, from)
}

// AddCost books a cost on a month. Costs without a name get a placeholder;
// a missing month means the current one.
func (s *FinanceService) AddCost(ctx context.Context, in CostInput) (*models.Cost, error) {
	month := models.MonthOf(s.now())
	if strings.TrimSpace(in.CostMonth) != "" {
		m, err := parseMonthField("cost_month", in.CostMonth)
		if err != nil {
			return nil, err
		}
		month = m
	}
	amount, err := parseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = models.DefaultCostName
	}
	cost := &models.Cost{
		ID:        s.newID(),
		Name:      name,
		Amount:    amount,
		CostMonth: month,
		CreatedAt: s.now().UTC(),
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		cost.Category = &category
	}
	if err := s.Repo.InsertCost(ctx, cost); err != nil {
		return nil, err
	}
	s.Log.Info("[finance][cost] added",
		zap.String("cost_id", cost.ID),
		zap.String("month", month),
		zap.String("amount", amount.String()))
	return cost, nil
}

// Costs lists the costs of month. An empty month means the current one.
func (s *FinanceService) Costs(ctx context.Context, month string) ([]models.Cost, error) {
	m := models.MonthOf(s.now())
	if strings.TrimSpace(month) != "" {
		var err error
		if m, err = parseMonthField("month", month); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListCosts(ctx, m)
}
