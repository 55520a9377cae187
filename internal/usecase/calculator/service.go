// Package calculator answers "what if I had invested" requests: it loads the
// price history, projects it when the request outruns it, and runs the
// simulations behind each reported metric.
package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/extrapolator"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/simulator"
)

// Calculator is the use case consumed by the transports.
type Calculator interface {
	Calculate(ctx context.Context, req Request) (*Report, error)
	Prices(ctx context.Context, r date.Range) (domain.PriceSeries, error)
}

// CalculatorService implements Calculator on top of a price repository
type CalculatorService struct {
	PriceRepo domain.PriceRepository
	Log       *logrus.Logger

	// DefaultPredictedReturn is the annualized percentage used to project
	// prices when a request leaves predicted_annualized_return out.
	DefaultPredictedReturn float64
}

var _ Calculator = (*CalculatorService)(nil)

// NewCalculatorService creates a new CalculatorService instance
func NewCalculatorService(priceRepo domain.PriceRepository, log *logrus.Logger, defaultPredictedReturn float64) *CalculatorService {
	return &CalculatorService{
		PriceRepo:              priceRepo,
		Log:                    log,
		DefaultPredictedReturn: defaultPredictedReturn,
	}
}

// Calculate runs the request against the stored history.
//
// Logic:
//   - Open start/end default to the first/last stored dates
//   - A start after the last stored date projects from the last stored point only
//   - An end after the last stored date extends the history month by month
//   - Four simulations share the resulting series: unit lump sum without and
//     with dividends (price and dividend returns), and the requested strategy
//     without and with dividends (total returns, breakdown on the latter)
func (s *CalculatorService) Calculate(ctx context.Context, req Request) (*Report, error) {
	in, err := req.parse()
	if err != nil {
		return nil, err
	}

	series, start, end, err := s.load(ctx, in)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StartDate:      start,
		EndDate:        end,
		LastActualDate: series.Last().Date,
	}

	if extrapolator.Needed(series, start, end) {
		rate := s.DefaultPredictedReturn
		if in.rate != nil {
			rate = *in.rate
		}
		extended, err := extrapolator.Extend(series, start, end, rate)
		switch {
		case errors.Is(err, domain.ErrRunawayExtrapolation):
			s.Log.WithError(err).WithFields(logrus.Fields{
				"start": start,
				"end":   end,
			}).Warn("Extrapolation capped, returning partial projection")
			report.ExtrapolationCapped = true
		case err != nil:
			return nil, err
		}
		series = extended
		report.Extrapolated = true
	}

	if err := s.simulate(series, in.params, report); err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"start":        start,
		"end":          end,
		"points":       len(series),
		"extrapolated": report.Extrapolated,
	}).Debug("Calculation completed")

	return report, nil
}

// load fetches the series the request is computed on and resolves open dates.
func (s *CalculatorService) load(ctx context.Context, in *input) (domain.PriceSeries, date.Date, date.Date, error) {
	latest, err := s.PriceRepo.Latest(ctx)
	if err != nil {
		return nil, date.Date{}, date.Date{}, err
	}

	start, end := in.start, in.end
	if end.IsZero() {
		end = latest.Date
	}
	if !start.IsZero() && end.Before(start) {
		return nil, date.Date{}, date.Date{}, fmt.Errorf("%w: start_date %s is after the last available date %s", domain.ErrInvalidInput, start, end)
	}

	if !start.IsZero() && start.After(latest.Date) {
		return domain.PriceSeries{latest}, start, end, nil
	}

	series, err := s.PriceRepo.Series(ctx, date.Range{From: start, To: date.Min(end, latest.Date)})
	if err != nil {
		return nil, date.Date{}, date.Date{}, err
	}
	if len(series) == 0 {
		return nil, date.Date{}, date.Date{}, fmt.Errorf("%w: between %s and %s", domain.ErrNoData, start, end)
	}
	if start.IsZero() {
		start = series.First().Date
	}
	return series, start, end, nil
}

func (s *CalculatorService) simulate(series domain.PriceSeries, params domain.SimulationParameters, report *Report) error {
	unit := domain.SimulationParameters{InitialInvestment: 1}
	unitDividends := unit
	unitDividends.IncludeDividends = true
	paramsDividends := params
	paramsDividends.IncludeDividends = true

	priceOnly, err := simulator.Simulate(series, unit, false)
	if err != nil {
		return err
	}
	withDividends, err := simulator.Simulate(series, unitDividends, false)
	if err != nil {
		return err
	}
	total, err := simulator.Simulate(series, params, false)
	if err != nil {
		return err
	}
	totalDividends, err := simulator.Simulate(series, paramsDividends, true)
	if err != nil {
		return err
	}

	report.PriceReturn = newReturn(priceOnly)
	report.DividendReturn = newReturn(withDividends)
	report.TotalReturn = newReturn(total)
	report.TotalReturnWithDividends = newReturn(totalDividends)
	report.GrownTo = fixed(total.FinalValue)
	report.GrownToWithDividends = fixed(totalDividends.FinalValue)
	report.TotalInvested = fixed(totalDividends.TotalInvested)
	report.MonthlyBreakdown = newMonthlyRows(totalDividends.Monthly)
	return nil
}

// Prices returns the stored series within r.
// Returns domain.ErrNoData when r holds no points.
func (s *CalculatorService) Prices(ctx context.Context, r date.Range) (domain.PriceSeries, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: range %s is inverted", domain.ErrInvalidInput, r)
	}
	series, err := s.PriceRepo.Series(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: in %s", domain.ErrNoData, r)
	}
	return series, nil
}
