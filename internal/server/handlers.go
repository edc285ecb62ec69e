package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tournevent/mondialrelay/pkg/shipper"
	"go.uber.org/zap"
)

// Operation names used in metrics.
const (
	opOptions     = "fulfillment_options"
	opPrice       = "calculate_price"
	opFulfillment = "create_fulfillment"
	opReturn      = "create_return_fulfillment"
	opCancel      = "cancel_fulfillment"
	opQuoteAll    = "quote_all"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type carrierInfo struct {
	Name         string `json:"name"`
	CanCalculate bool   `json:"can_calculate"`
	OptionsCount int    `json:"options_count"`
}

type quoteAllResponse struct {
	Quotes []*shipper.PriceResponse `json:"quotes"`
	Errors []errorDetail            `json:"errors,omitempty"`
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carriers := make([]carrierInfo, 0, s.registry.Count())
	for _, name := range s.registry.Names() {
		carrier, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		info := carrierInfo{Name: name}
		if opts, err := carrier.FulfillmentOptions(ctx); err == nil {
			info.OptionsCount = len(opts)
			if len(opts) > 0 {
				info.CanCalculate = carrier.CanCalculate(ctx, &opts[0])
			}
		}
		carriers = append(carriers, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"carriers": carriers})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r, opOptions)
	if !ok {
		return
	}
	start := time.Now()
	opts, err := carrier.FulfillmentOptions(r.Context())
	if err != nil {
		s.fail(w, r, opOptions, carrier.Name(), start, err)
		return
	}
	s.succeed(opOptions, carrier.Name(), start)
	writeJSON(w, http.StatusOK, map[string]any{"options": opts})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r, opPrice)
	if !ok {
		return
	}
	start := time.Now()

	var input priceInput
	if err := decode(r, &input); err != nil {
		s.fail(w, r, opPrice, carrier.Name(), start, err)
		return
	}
	req, err := priceInputToModel(&input)
	if err != nil {
		s.fail(w, r, opPrice, carrier.Name(), start, err)
		return
	}

	resp, err := carrier.CalculatePrice(r.Context(), req)
	if err != nil {
		s.fail(w, r, opPrice, carrier.Name(), start, err)
		return
	}
	s.succeed(opPrice, carrier.Name(), start)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFulfillment(w http.ResponseWriter, r *http.Request) {
	s.createFulfillment(w, r, opFulfillment, shipper.Shipper.CreateFulfillment)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	s.createFulfillment(w, r, opReturn, shipper.Shipper.CreateReturnFulfillment)
}

type createFunc func(shipper.Shipper, context.Context, *shipper.FulfillmentRequest) (*shipper.FulfillmentResponse, error)

func (s *Server) createFulfillment(w http.ResponseWriter, r *http.Request, op string, create createFunc) {
	carrier, ok := s.carrier(w, r, op)
	if !ok {
		return
	}
	start := time.Now()

	var input fulfillmentInput
	if err := decode(r, &input); err != nil {
		s.fail(w, r, op, carrier.Name(), start, err)
		return
	}
	req, err := fulfillmentInputToModel(&input)
	if err != nil {
		s.fail(w, r, op, carrier.Name(), start, err)
		return
	}

	resp, err := create(carrier, r.Context(), req)
	if err != nil {
		s.fail(w, r, op, carrier.Name(), start, err)
		return
	}
	s.succeed(op, carrier.Name(), start)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r, opCancel)
	if !ok {
		return
	}
	start := time.Now()

	var input cancelInput
	if err := decode(r, &input); err != nil {
		s.fail(w, r, opCancel, carrier.Name(), start, err)
		return
	}

	resp, err := carrier.CancelFulfillment(r.Context(), cancelInputToModel(&input))
	if err != nil {
		s.fail(w, r, opCancel, carrier.Name(), start, err)
		return
	}
	s.succeed(opCancel, carrier.Name(), start)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuoteAll(w http.ResponseWriter, r *http.Request) {
	const allCarriers = "all"
	start := time.Now()

	var input priceInput
	if err := decode(r, &input); err != nil {
		s.fail(w, r, opQuoteAll, allCarriers, start, err)
		return
	}
	req, err := priceInputToModel(&input)
	if err != nil {
		s.fail(w, r, opQuoteAll, allCarriers, start, err)
		return
	}

	quotes, errs := s.registry.QuoteAll(r.Context(), req)
	if len(quotes) == 0 && len(errs) > 0 {
		s.fail(w, r, opQuoteAll, allCarriers, start, errs[0])
		return
	}

	resp := quoteAllResponse{Quotes: quotes}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, errorDetail{Type: shipper.ErrorType(err), Message: err.Error()})
	}
	s.succeed(opQuoteAll, allCarriers, start)
	writeJSON(w, http.StatusOK, resp)
}

// carrier resolves the {carrier} path segment, answering 404 when unknown.
func (s *Server) carrier(w http.ResponseWriter, r *http.Request, op string) (shipper.Shipper, bool) {
	name := r.PathValue("carrier")
	carrier, err := s.registry.Get(name)
	if err != nil {
		s.fail(w, r, op, name, time.Now(), err)
		return nil, false
	}
	return carrier, true
}

func (s *Server) succeed(op, carrier string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(op, carrier, "success", time.Since(start).Seconds())
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op, carrier string, start time.Time, err error) {
	errType := shipper.ErrorType(err)
	status := statusFor(err)

	if s.metrics != nil {
		s.metrics.RecordRequest(op, carrier, "error", time.Since(start).Seconds())
		s.metrics.RecordError(carrier, errType)
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("carrier", carrier),
		zap.String("error_type", errType),
		zap.String("request_id", w.Header().Get(RequestIDHeader)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Ctx(r.Context()).Error("Request failed", fields...)
	} else {
		s.logger.Ctx(r.Context()).Warn("Request rejected", fields...)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Type: errType, Message: err.Error()}})
}

// statusFor maps an error to the HTTP status returned to callers.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shipper.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipper.ErrCarrierRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shipper.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, shipper.ErrTransport), errors.Is(err, shipper.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", shipper.ErrInvalidRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
