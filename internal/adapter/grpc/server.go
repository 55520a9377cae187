package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/calculator"
)

// Server implements the CalculatorService gRPC server
type Server struct {
	Calculator calculator.Calculator
}

var _ CalculatorServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(calc calculator.Calculator) *Server {
	return &Server{Calculator: calc}
}

// pricesRequest is the GetPrices request document
type pricesRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Calculate handles the Calculate RPC
func (s *Server) Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in calculator.Request
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	report, err := s.Calculator.Calculate(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}

	return encode(report)
}

// GetPrices handles the GetPrices RPC
func (s *Server) GetPrices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pricesRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	var rng date.Range
	var err error
	if in.StartDate != "" {
		if rng.From, err = date.Parse(in.StartDate); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid start_date format: %v", err)
		}
	}
	if in.EndDate != "" {
		if rng.To, err = date.Parse(in.EndDate); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid end_date format: %v", err)
		}
	}

	series, err := s.Calculator.Prices(ctx, rng)
	if err != nil {
		return nil, mapError(err)
	}
	if len(series) == 0 {
		return nil, status.Errorf(codes.NotFound, "no prices in %s", rng)
	}

	return encode(map[string]any{
		"start_date": series.First().Date,
		"end_date":   series.Last().Date,
		"prices":     series,
	})
}

// decode converts a Struct into dst through its JSON form
func decode(in *structpb.Struct, dst any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode converts v into a Struct through its JSON form
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// mapError maps use case errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s", err)
	case errors.Is(err, domain.ErrNoData):
		return status.Errorf(codes.NotFound, "%s", err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s", err)
	}
}
