package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/damon-houk/quickrate/internal/domain/entity"
	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
)

const (
	// DefaultBaseURL is the Korea Export-Import Bank exchange rate endpoint
	DefaultBaseURL = "https://www.koreaexim.go.kr/site/program/financial/exchangeJSON"

	// exchangeRateDataType selects the exchange rate report (AP02/AP03 are interest rates)
	exchangeRateDataType = "AP01"

	paramAuthKey    = "authkey"
	paramData       = "data"
	paramSearchDate = "searchdate"
)

// ClientConfig holds the provider settings fixed at construction
type ClientConfig struct {
	BaseURL string
	AuthKey string
	// Timeout for the whole round trip; zero keeps the transport default
	Timeout time.Duration
}

// KoreaEximClient fetches the daily rate table from the Korea Export-Import Bank.
// It keeps no mutable state and is safe for concurrent use.
type KoreaEximClient struct {
	baseURL    *url.URL
	authKey    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewKoreaEximClient creates a new provider client
func NewKoreaEximClient(cfg ClientConfig, httpClient *http.Client, log logger.Logger) (*KoreaEximClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", cfg.BaseURL)
	}

	if cfg.AuthKey == "" {
		return nil, errors.New("auth key is required")
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &KoreaEximClient{
		baseURL:    base,
		authKey:    cfg.AuthKey,
		httpClient: httpClient,
		logger:     log.WithField("component", "koreaexim_client"),
	}, nil
}

// requestURL builds the provider URL; searchdate is only sent when set
func (c *KoreaEximClient) requestURL(searchDate string) *url.URL {
	u := *c.baseURL

	query := u.Query()
	query.Set(paramAuthKey, c.authKey)
	query.Set(paramData, exchangeRateDataType)
	if searchDate != "" {
		query.Set(paramSearchDate, searchDate)
	}
	u.RawQuery = query.Encode()

	return &u
}

// redact hides the credential before a URL is logged
func redact(u *url.URL) string {
	masked := *u
	query := masked.Query()
	if query.Has(paramAuthKey) {
		query.Set(paramAuthKey, "****")
	}
	masked.RawQuery = query.Encode()
	return masked.String()
}

// FetchRates retrieves the rate table for searchDate (YYYYMMDD, provider default when empty).
// The call is made exactly once; every failure is reported as *RemoteCallFailure.
func (c *KoreaEximClient) FetchRates(ctx context.Context, searchDate string) ([]entity.ExchangeRate, error) {
	reqURL := c.requestURL(searchDate)

	c.logger.Debug("Requesting exchange rates", map[string]interface{}{
		"url":         redact(reqURL),
		"search_date": searchDate,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &RemoteCallFailure{StatusCode: StatusUnknown, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full request URL
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redact(reqURL)
		}
		c.logger.Error("Exchange rate request failed", map[string]interface{}{
			"search_date": searchDate,
			"error":       err.Error(),
		})
		return nil, &RemoteCallFailure{StatusCode: StatusUnknown, Err: fmt.Errorf("failed to execute request: %w", err)}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallFailure{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("Exchange rate response received", map[string]interface{}{
		"status":      resp.StatusCode,
		"bytes":       len(bodyBytes),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Provider returned error status", map[string]interface{}{
			"search_date": searchDate,
			"status":      resp.StatusCode,
		})
		return nil, &RemoteCallFailure{StatusCode: resp.StatusCode}
	}

	rates, err := decodeRates(bodyBytes)
	if err != nil {
		c.logger.Warn("Provider returned unusable body", map[string]interface{}{
			"search_date": searchDate,
			"status":      resp.StatusCode,
			"error":       err.Error(),
		})
		return nil, &RemoteCallFailure{StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Info("Exchange rates fetched", map[string]interface{}{
		"search_date": searchDate,
		"count":       len(rates),
	})

	return rates, nil
}

// decodeRates parses the provider's JSON array. An empty or null body counts as absent;
// an empty array is a valid, empty result.
func decodeRates(body []byte) ([]entity.ExchangeRate, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("response body is empty")
	}

	var rates []entity.ExchangeRate
	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rates == nil {
		return nil, errors.New("response body is null")
	}

	return rates, nil
}
