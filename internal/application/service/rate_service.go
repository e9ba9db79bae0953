// Package service internal/application/service/rate_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/damon-houk/quickrate/internal/domain/entity"
	domain "github.com/damon-houk/quickrate/internal/domain/service"
	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"github.com/damon-houk/quickrate/internal/infrastructure/middleware"
)

// ErrCurrencyNotFound is returned when the provider's table has no quote for a currency
var ErrCurrencyNotFound = errors.New("currency not found")

// RateService exposes the provider's daily rate table to the HTTP layer
type RateService struct {
	provider domain.ExchangeRateProvider
	logger   logger.Logger
}

// NewRateService creates a new rate service
func NewRateService(provider domain.ExchangeRateProvider, log logger.Logger) *RateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateService{
		provider: provider,
		logger:   log,
	}
}

// GetRates returns every quote for searchDate in provider order
func (s *RateService) GetRates(ctx context.Context, searchDate string) ([]entity.ExchangeRate, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Debug("Fetching exchange rates", map[string]interface{}{
		"request_id":  requestID,
		"search_date": searchDate,
	})

	rates, err := s.provider.FetchRates(ctx, searchDate)
	if err != nil {
		s.logger.Error("Failed to fetch exchange rates", map[string]interface{}{
			"request_id":  requestID,
			"search_date": searchDate,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	s.logger.Info("Exchange rates retrieved", map[string]interface{}{
		"request_id":  requestID,
		"search_date": searchDate,
		"count":       len(rates),
	})

	return rates, nil
}

// GetRate returns the quote whose currency unit matches currencyUnit, ignoring case
func (s *RateService) GetRate(ctx context.Context, searchDate, currencyUnit string) (*entity.ExchangeRate, error) {
	rates, err := s.GetRates(ctx, searchDate)
	if err != nil {
		return nil, err
	}

	for _, rate := range rates {
		if strings.EqualFold(rate.CurrencyUnit, currencyUnit) {
			return &rate, nil
		}
	}

	s.logger.Warn("Currency not listed by provider", map[string]interface{}{
		"request_id":  middleware.GetRequestID(ctx),
		"search_date": searchDate,
		"currency":    currencyUnit,
	})

	return nil, fmt.Errorf("%w: %s", ErrCurrencyNotFound, currencyUnit)
}
