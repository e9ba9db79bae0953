// Package handler internal/infrastructure/handler/rate_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/damon-houk/quickrate/internal/application/service"
	"github.com/damon-houk/quickrate/internal/infrastructure/api"
	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"github.com/damon-houk/quickrate/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// searchDateParam is forwarded to the provider as-is
const searchDateParam = "searchdate"

// RateHandler serves the provider's rate table over HTTP
type RateHandler struct {
	service *service.RateService
	logger  logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(service *service.RateService, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		service: service,
		logger:  log,
	}
}

// ListRates handles GET /api/exchange/rates
func (h *RateHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	searchDate := r.URL.Query().Get(searchDateParam)

	h.logger.Debug("Handling list rates request", map[string]interface{}{
		"request_id":  requestID,
		"search_date": searchDate,
	})

	rates, err := h.service.GetRates(r.Context(), searchDate)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, rates)
}

// GetRate handles GET /api/exchange/rates/{currency}
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	currency := mux.Vars(r)["currency"]
	searchDate := r.URL.Query().Get(searchDateParam)

	h.logger.Debug("Handling get rate request", map[string]interface{}{
		"request_id":  requestID,
		"currency":    currency,
		"search_date": searchDate,
	})

	rate, err := h.service.GetRate(r.Context(), searchDate, currency)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

// handleError maps service errors onto HTTP responses
func (h *RateHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	if failure, ok := api.AsRemoteCallFailure(err); ok {
		h.logger.Error("Exchange rate provider call failed", map[string]interface{}{
			"request_id":      requestID,
			"upstream_status": failure.StatusCode,
			"error":           err.Error(),
		})
		sendErrorResponse(w, h.logger, ErrorResponse{
			Error:          "Exchange rate provider unavailable",
			Status:         http.StatusBadGateway,
			Description:    describeUpstream(failure.StatusCode),
			UpstreamStatus: failure.StatusCode,
			RequestID:      requestID,
		})
		return
	}

	if errors.Is(err, service.ErrCurrencyNotFound) {
		sendErrorResponse(w, h.logger, ErrorResponse{
			Error:       "Currency not found",
			Status:      http.StatusNotFound,
			Description: "The provider did not quote the requested currency for this date",
			RequestID:   requestID,
		})
		return
	}

	h.logger.Error("Unexpected error in rate handler", map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, ErrorResponse{
		Error:       "Internal server error",
		Status:      http.StatusInternalServerError,
		Description: "An unexpected error occurred. Please try again later.",
		RequestID:   requestID,
	})
}

func describeUpstream(status int) string {
	if status == api.StatusUnknown {
		return "The exchange rate provider could not be reached"
	}
	return fmt.Sprintf("The exchange rate provider answered with status %d", status)
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/exchange/rates", h.ListRates).Methods(http.MethodGet)
	router.HandleFunc("/api/exchange/rates/{currency}", h.GetRate).Methods(http.MethodGet)

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/exchange/rates",
			"GET /api/exchange/rates/{currency}",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendErrorResponse(w http.ResponseWriter, log logger.Logger, resp ErrorResponse) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  resp.RequestID,
		"status_code": resp.Status,
		"message":     resp.Error,
	})

	writeJSON(w, resp.Status, resp)
}
