package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// Report is the calculation output. Every figure is a fixed-point string
// with 4 decimals; returns are percentages.
type Report struct {
	StartDate           date.Date `json:"start_date"`
	EndDate             date.Date `json:"end_date"`
	LastActualDate      date.Date `json:"last_actual_date"`
	Extrapolated        bool      `json:"extrapolated"`
	ExtrapolationCapped bool      `json:"extrapolation_capped,omitempty"`

	PriceReturn              Return `json:"price_return"`
	DividendReturn           Return `json:"dividend_return"`
	TotalReturn              Return `json:"total_return"`
	TotalReturnWithDividends Return `json:"total_return_with_dividends"`

	GrownTo              string `json:"grown_to"`
	GrownToWithDividends string `json:"grown_to_with_dividends"`
	TotalInvested        string `json:"total_invested"`

	MonthlyBreakdown []MonthlyRow `json:"monthly_breakdown"`
}

// Return is a nominal and annualized return pair.
type Return struct {
	Nominal    string `json:"nominal"`
	Annualized string `json:"annualized"`
}

// MonthlyRow is a domain.MonthlyRecord formatted for clients.
type MonthlyRow struct {
	Date  date.Date `json:"date"`
	Close string    `json:"close"`

	InitialInvested string `json:"initial_invested"`
	InitialValue    string `json:"initial_value"`
	InitialReturn   string `json:"initial_return"`

	MonthlyInvested string `json:"monthly_invested"`
	MonthlyValue    string `json:"monthly_value"`
	MonthlyReturn   string `json:"monthly_return"`

	DividendInvested string `json:"dividend_invested"`
	DividendValue    string `json:"dividend_value"`
	DividendReturn   string `json:"dividend_return"`

	TotalInvested string `json:"total_invested"`
	TotalValue    string `json:"total_value"`
}

func newReturn(r *domain.SimulationResult) Return {
	return Return{
		Nominal:    percent(r.NominalReturn),
		Annualized: percent(r.AnnualizedReturn),
	}
}

func newMonthlyRows(records []domain.MonthlyRecord) []MonthlyRow {
	rows := make([]MonthlyRow, 0, len(records))
	for _, m := range records {
		rows = append(rows, MonthlyRow{
			Date:             m.Date,
			Close:            fixed(m.Close),
			InitialInvested:  fixed(m.Initial.Invested),
			InitialValue:     fixed(m.Initial.Value),
			InitialReturn:    fixed(m.Initial.Return),
			MonthlyInvested:  fixed(m.Contributions.Invested),
			MonthlyValue:     fixed(m.Contributions.Value),
			MonthlyReturn:    fixed(m.Contributions.Return),
			DividendInvested: fixed(m.Dividends.Invested),
			DividendValue:    fixed(m.Dividends.Value),
			DividendReturn:   fixed(m.Dividends.Return),
			TotalInvested:    fixed(m.TotalInvested),
			TotalValue:       fixed(m.TotalValue),
		})
	}
	return rows
}

// fixed formats v with 4 decimals. Non-finite values render as zero.
func fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}

func percent(ratio float64) string { return fixed(ratio * 100) }
