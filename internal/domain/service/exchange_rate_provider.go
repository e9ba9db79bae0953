package service

import (
	"context"

	"github.com/damon-houk/quickrate/internal/domain/entity"
)

// ExchangeRateProvider defines the interface for fetching the daily rate table
type ExchangeRateProvider interface {
	// FetchRates retrieves every quote published for searchDate (YYYYMMDD).
	// An empty searchDate asks the provider for its default day.
	FetchRates(ctx context.Context, searchDate string) ([]entity.ExchangeRate, error)
}
