package domain

import "errors"

var (
	// ErrInvalidInput marks requests or series the core cannot compute on.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoData is returned when the price store holds no points for a request.
	ErrNoData = errors.New("no price data")

	// ErrRunawayExtrapolation is returned together with a usable, truncated
	// series when extrapolation hit its iteration cap.
	ErrRunawayExtrapolation = errors.New("extrapolation stopped at iteration cap")
)
