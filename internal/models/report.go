package models

import "github.com/shopspring/decimal"

type StageTotal struct {
	Stage Stage           `json:"stage"`
	Title string          `json:"title"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// PipelineSummary feeds the finance dashboard.
type PipelineSummary struct {
	Stages       []StageTotal    `json:"stages"`
	OpenValue    decimal.Decimal `json:"open_value"`
	WonRecurring decimal.Decimal `json:"won_recurring"`
	WonOneOff    decimal.Decimal `json:"won_one_off"`
	WonTotal     decimal.Decimal `json:"won_total"`
	WinRate      float64         `json:"win_rate"`
}

type MonthlyWon struct {
	Month string          `json:"month"` // YYYY-MM
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
