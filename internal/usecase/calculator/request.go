package calculator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// MaxPredictedReturn bounds predicted_annualized_return, in percent.
const MaxPredictedReturn = 999

var validate = validator.New()

// Request is the calculation input as received from a client.
// Amounts accept JSON numbers or strings.
type Request struct {
	StartDate                 string           `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate                   string           `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	InitialInvestment         decimal.Decimal  `json:"initial_investment"`
	MonthlyInvestmentDate     *int             `json:"monthly_investment_date,omitempty" validate:"omitempty,min=1,max=31"`
	MonthlyInvestmentAmount   decimal.Decimal  `json:"monthly_investment_amount"`
	PredictedAnnualizedReturn *decimal.Decimal `json:"predicted_annualized_return,omitempty"` // percent
}

// input is a validated Request converted to core types.
type input struct {
	start, end date.Date // zero when open
	params     domain.SimulationParameters
	rate       *float64
}

// Validate checks field formats and bounds. All errors wrap domain.ErrInvalidInput.
func (r *Request) Validate() error {
	_, err := r.parse()
	return err
}

func (r *Request) parse() (*input, error) {
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if r.InitialInvestment.IsNegative() {
		return nil, fmt.Errorf("%w: initial_investment must not be negative", domain.ErrInvalidInput)
	}
	if r.MonthlyInvestmentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: monthly_investment_amount must not be negative", domain.ErrInvalidInput)
	}

	in := &input{
		params: domain.SimulationParameters{
			InitialInvestment: r.InitialInvestment.InexactFloat64(),
			MonthlyDay:        r.MonthlyInvestmentDate,
			MonthlyAmount:     r.MonthlyInvestmentAmount.InexactFloat64(),
		},
	}
	if err := in.params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if r.PredictedAnnualizedReturn != nil {
		rate := *r.PredictedAnnualizedReturn
		if rate.GreaterThan(decimal.NewFromInt(MaxPredictedReturn)) {
			return nil, fmt.Errorf("%w: predicted_annualized_return must be at most %d", domain.ErrInvalidInput, MaxPredictedReturn)
		}
		if rate.LessThanOrEqual(decimal.NewFromInt(-100)) {
			return nil, fmt.Errorf("%w: predicted_annualized_return must be above -100", domain.ErrInvalidInput)
		}
		f := rate.InexactFloat64()
		in.rate = &f
	}

	var err error
	if r.StartDate != "" {
		if in.start, err = date.Parse(r.StartDate); err != nil {
			return nil, fmt.Errorf("%w: start_date: %v", domain.ErrInvalidInput, err)
		}
	}
	if r.EndDate != "" {
		if in.end, err = date.Parse(r.EndDate); err != nil {
			return nil, fmt.Errorf("%w: end_date: %v", domain.ErrInvalidInput, err)
		}
	}
	if !in.start.IsZero() && !in.end.IsZero() && !in.start.Before(in.end) {
		return nil, fmt.Errorf("%w: start_date must be before end_date", domain.ErrInvalidInput)
	}
	return in, nil
}
