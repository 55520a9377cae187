package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/calculator"
)

// maxBodyBytes bounds the size of a calculation request
const maxBodyBytes = 1 << 16

// Handler serves the JSON API
type Handler struct {
	Calculator calculator.Calculator
	Log        *logrus.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(calc calculator.Calculator, log *logrus.Logger) *Handler {
	return &Handler{Calculator: calc, Log: log}
}

// PricesResponse is the body of GET /api/prices
type PricesResponse struct {
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Prices    domain.PriceSeries `json:"prices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Calculate handles POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculator.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed request body: %w", domain.ErrInvalidInput, err))
		return
	}

	report, err := h.Calculator.Calculate(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// Prices handles GET /api/prices?start_date=&end_date=
func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	var rng date.Range
	for _, q := range []struct {
		name string
		dst  *date.Date
	}{
		{"start_date", &rng.From},
		{"end_date", &rng.To},
	} {
		raw := r.URL.Query().Get(q.name)
		if raw == "" {
			continue
		}
		d, err := date.Parse(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, q.name, err))
			return
		}
		*q.dst = d
	}

	series, err := h.Calculator.Prices(r.Context(), rng)
	if err == nil && len(series) == 0 {
		err = fmt.Errorf("no prices in %s: %w", rng, domain.ErrNoData)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, PricesResponse{
		StartDate: series.First().Date.String(),
		EndDate:   series.Last().Date.String(),
		Prices:    series,
	})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps use case errors to HTTP status codes
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		entry := h.Log.WithError(err)
		if id := RequestID(r.Context()); id != "" {
			entry = entry.WithField("request_id", id)
		}
		entry.Error("request failed")
		msg = http.StatusText(code)
	}
	h.writeJSON(w, code, errorResponse{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.WithError(err).Warn("failed to write response")
	}
}
