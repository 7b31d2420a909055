package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MonthLayout is how months travel in URLs, JSON and the finance tables.
const MonthLayout = "2006-01"

// DefaultCostName is stored for costs entered without a name.
const DefaultCostName = "Custo sem nome"

var ErrInvalidMonth = errors.New("invalid month")

// ParseMonth reads "YYYY-MM" and returns the first instant of that month in UTC.
func ParseMonth(raw string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
	}
	return t, nil
}

// MonthOf formats the UTC month t falls in.
func MonthOf(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// MonthlyPlan is the revenue goal and expected costs of one month.
type MonthlyPlan struct {
	Month        string          `json:"month"`
	RevenueGoal  decimal.Decimal `json:"revenue_goal"`
	CostForecast decimal.Decimal `json:"cost_forecast"`
}

type Cost struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  *string         `json:"category,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CostMonth string          `json:"cost_month"`
	CreatedAt time.Time       `json:"created_at"`
}

var recurringKeywords = []string{"recorrente", "mensal", "assinatura", "retainer", "plano", "fee"}

// IsRecurring uses the deal type when set. Untyped deals are recurring when
// their title or company mentions a subscription-like word.
func (d Deal) IsRecurring() bool {
	if d.DealType != nil {
		switch *d.DealType {
		case DealTypeRecurring:
			return true
		case DealTypeOneOff:
			return false
		}
	}
	text := strings.ToLower(d.Title + " " + d.CompanyName)
	for _, kw := range recurringKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// FinanceDeal is a deal created in the report month, tagged with how it was
// classified.
type FinanceDeal struct {
	Deal
	Recurring bool `json:"recurring"`
}

// FinanceReport is the monthly finance view: revenue from the deals created
// in the month that are won, against that month's costs and plan.
type FinanceReport struct {
	Month            string          `json:"month"`
	Revenue          decimal.Decimal `json:"revenue"`
	RecurringRevenue decimal.Decimal `json:"recurring_revenue"`
	OneOffRevenue    decimal.Decimal `json:"one_off_revenue"`
	RecurringWon     int             `json:"recurring_won"`
	OneOffWon        int             `json:"one_off_won"`
	RecurringDeals   int             `json:"recurring_deals"`
	TotalCosts       decimal.Decimal `json:"total_costs"`
	CostCount        int             `json:"cost_count"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	Profit           decimal.Decimal `json:"profit"`
	RevenueGoal      decimal.Decimal `json:"revenue_goal"`
	CostForecast     decimal.Decimal `json:"cost_forecast"`
	GoalProgress     float64         `json:"goal_progress"`
	Plans            []MonthlyPlan   `json:"plans"`
	Costs            []Cost          `json:"costs"`
	Deals            []FinanceDeal   `json:"deals"`
	Warnings         []string        `json:"warnings,omitempty"`
}
