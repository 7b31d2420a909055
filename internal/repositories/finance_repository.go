package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"agencydesk/internal/models"
)

// FinanceRepository stores the monthly plans and costs behind the finance
// report. Months are "YYYY-MM" strings.
type FinanceRepository interface {
	// ListPlans returns the plans from fromMonth on, oldest first.
	ListPlans(ctx context.Context, fromMonth string) ([]models.MonthlyPlan, error)
	// SavePlan creates or replaces the plan of plan.Month.
	SavePlan(ctx context.Context, plan *models.MonthlyPlan) error
	// ListCosts returns the costs booked on month, in entry order.
	ListCosts(ctx context.Context, month string) ([]models.Cost, error)
	InsertCost(ctx context.Context, cost *models.Cost) error
}

type financeRepository struct {
	db *sql.DB
}

func NewFinanceRepository(db *sql.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) ListPlans(ctx context.Context, fromMonth string) ([]models.MonthlyPlan, error) {
	const q = `
        SELECT month, revenue_goal, cost_forecast
        FROM finance_monthly_plans
        WHERE month >= $1
        ORDER BY month ASC`
	rows, err := r.db.QueryContext(ctx, q, fromMonth)
	if err != nil {
		return nil, fmt.Errorf("list monthly plans: %w", err)
	}
	defer rows.Close()

	plans := []models.MonthlyPlan{}
	for rows.Next() {
		var p models.MonthlyPlan
		if err := rows.Scan(&p.Month, &p.RevenueGoal, &p.CostForecast); err != nil {
			return nil, fmt.Errorf("read monthly plan row: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *financeRepository) SavePlan(ctx context.Context, plan *models.MonthlyPlan) error {
	const q = `
        INSERT INTO finance_monthly_plans (month, revenue_goal, cost_forecast)
        VALUES ($1, $2, $3)
        ON CONFLICT (month) DO UPDATE
        SET revenue_goal = EXCLUDED.revenue_goal, cost_forecast = EXCLUDED.cost_forecast`
	if _, err := r.db.ExecContext(ctx, q, plan.Month, plan.RevenueGoal, plan.CostForecast); err != nil {
		return fmt.Errorf("save monthly plan: %w", err)
	}
	return nil
}

func (r *financeRepository) ListCosts(ctx context.Context, month string) ([]models.Cost, error) {
	const q = `
        SELECT id, name, category, amount, cost_month, created_at
        FROM finance_costs
        WHERE cost_month = $1
        ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, month)
	if err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	defer rows.Close()

	costs := []models.Cost{}
	for rows.Next() {
		var (
			c        models.Cost
			category sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &category, &c.Amount, &c.CostMonth, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("read cost row: %w", err)
		}
		if category.Valid {
			c.Category = &category.String
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (r *financeRepository) InsertCost(ctx context.Context, cost *models.Cost) error {
	const q = `
        INSERT INTO finance_costs (id, name, category, amount, cost_month, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q,
		cost.ID,
		cost.Name,
		nullableString(cost.Category),
		cost.Amount,
		cost.CostMonth,
		cost.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cost: %w", err)
	}
	return nil
}
