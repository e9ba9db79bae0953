// internal/infrastructure/api/koreaexim_client_test.go
package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAuthKey = "test-auth-key"

	usdResponse = `[{"result":1,"cur_unit":"USD","ttb":"1330.00","tts":"1356.00","deal_bas_r":"1343.00","bkpr":"1340.00","yy_efee_r":"1.5","ten_dd_efee_r":"0.5","kftc_bkpr":"1340.00","kftc_deal_bas_r":"1343.00","cur_nm":"미국 달러"}]`

	threeRatesResponse = `[
		{"result":1,"cur_unit":"AED","deal_bas_r":"363.14","cur_nm":"아랍에미리트 디르함"},
		{"result":1,"cur_unit":"JPY(100)","deal_bas_r":"889.55","cur_nm":"일본 옌"},
		{"result":1,"cur_unit":"KRW","deal_bas_r":"1","cur_nm":"한국 원"}
	]`
)

// newStubProvider starts a fake provider that records the last query it received
func newStubProvider(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()

	var lastQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/site/program/financial/exchangeJSON", r.URL.Path)
		lastQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &lastQuery
}

func newTestClient(t *testing.T, serverURL string) *KoreaEximClient {
	t.Helper()

	client, err := NewKoreaEximClient(ClientConfig{
		BaseURL: serverURL + "/site/program/financial/exchangeJSON",
		AuthKey: testAuthKey,
	}, nil, logger.NewJSONLogger(&bytes.Buffer{}, logger.DebugLevel))
	require.NoError(t, err)

	return client
}

func TestFetchRates(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip with search date", func(t *testing.T) {
		server, query := newStubProvider(t, http.StatusOK, usdResponse)
		client := newTestClient(t, server.URL)

		rates, err := client.FetchRates(ctx, "20240101")

		require.NoError(t, err)
		require.Len(t, rates, 1)

		rate := rates[0]
		assert.Equal(t, 1, rate.Result)
		assert.True(t, rate.Succeeded())
		assert.Equal(t, "USD", rate.CurrencyUnit)
		assert.Equal(t, "1330.00", rate.TTB)
		assert.Equal(t, "1356.00", rate.TTS)
		assert.Equal(t, "1343.00", rate.BaseRate)
		assert.Equal(t, "1340.00", rate.BankNoteRate)
		assert.Equal(t, "1.5", rate.YearlyFeeRate)
		assert.Equal(t, "0.5", rate.TenDayFeeRate)
		assert.Equal(t, "1340.00", rate.KFTCBankNoteRate)
		assert.Equal(t, "1343.00", rate.KFTCBaseRate)
		assert.Equal(t, "미국 달러", rate.CurrencyName)

		assert.Equal(t, testAuthKey, query.Get("authkey"))
		assert.Equal(t, "AP01", query.Get("data"))
		assert.Equal(t, "20240101", query.Get("searchdate"))
	})

	t.Run("Search date omitted when empty", func(t *testing.T) {
		server, query := newStubProvider(t, http.StatusOK, usdResponse)
		client := newTestClient(t, server.URL)

		_, err := client.FetchRates(ctx, "")

		require.NoError(t, err)
		assert.False(t, query.Has("searchdate"))
		assert.Equal(t, "AP01", query.Get("data"))
		assert.Equal(t, testAuthKey, query.Get("authkey"))
	})

	t.Run("Search date passed verbatim", func(t *testing.T) {
		server, query := newStubProvider(t, http.StatusOK, `[]`)
		client := newTestClient(t, server.URL)

		_, err := client.FetchRates(ctx, "2024-13-45")

		require.NoError(t, err)
		assert.Equal(t, "2024-13-45", query.Get("searchdate"))
	})

	t.Run("Provider order preserved", func(t *testing.T) {
		server, _ := newStubProvider(t, http.StatusOK, threeRatesResponse)
		client := newTestClient(t, server.URL)

		rates, err := client.FetchRates(ctx, "")

		require.NoError(t, err)
		require.Len(t, rates, 3)
		assert.Equal(t, "AED", rates[0].CurrencyUnit)
		assert.Equal(t, "JPY(100)", rates[1].CurrencyUnit)
		assert.Equal(t, "KRW", rates[2].CurrencyUnit)
		// Absent keys decode to empty strings
		assert.Equal(t, "", rates[0].TTB)
	})

	t.Run("Empty array is not a failure", func(t *testing.T) {
		server, _ := newStubProvider(t, http.StatusOK, `[]`)
		client := newTestClient(t, server.URL)

		rates, err := client.FetchRates(ctx, "20240106")

		require.NoError(t, err)
		assert.NotNil(t, rates)
		assert.Empty(t, rates)
	})

	t.Run("Provider error code passes through", func(t *testing.T) {
		server, _ := newStubProvider(t, http.StatusOK, `[{"result":3}]`)
		client := newTestClient(t, server.URL)

		rates, err := client.FetchRates(ctx, "")

		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, 3, rates[0].Result)
		assert.False(t, rates[0].Succeeded())
	})
}

func TestFetchRatesFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		status         int
		body           string
		expectedStatus int
	}{
		{"Server error", http.StatusInternalServerError, `{"error":"boom"}`, http.StatusInternalServerError},
		{"Not found", http.StatusNotFound, ``, http.StatusNotFound},
		{"Non-200 success code", http.StatusNoContent, ``, http.StatusNoContent},
		{"Empty body", http.StatusOK, ``, http.StatusOK},
		{"Null body", http.StatusOK, `null`, http.StatusOK},
		{"Malformed body", http.StatusOK, `<html>maintenance</html>`, http.StatusOK},
		{"Object instead of array", http.StatusOK, `{"result":1}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newStubProvider(t, tt.status, tt.body)
			client := newTestClient(t, server.URL)

			rates, err := client.FetchRates(ctx, "20240101")

			assert.Nil(t, rates)
			require.Error(t, err)

			failure, ok := AsRemoteCallFailure(err)
			require.True(t, ok, "expected RemoteCallFailure, got %T", err)
			assert.Equal(t, tt.expectedStatus, failure.StatusCode)
		})
	}

	t.Run("Network failure has unknown status", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		client := newTestClient(t, server.URL)
		server.Close()

		rates, err := client.FetchRates(ctx, "")

		assert.Nil(t, rates)
		failure, ok := AsRemoteCallFailure(err)
		require.True(t, ok)
		assert.Equal(t, StatusUnknown, failure.StatusCode)
		assert.Contains(t, failure.Error(), "status unknown")
		assert.NotContains(t, failure.Error(), testAuthKey)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server, _ := newStubProvider(t, http.StatusOK, usdResponse)
		client := newTestClient(t, server.URL)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.FetchRates(cancelled, "")

		failure, ok := AsRemoteCallFailure(err)
		require.True(t, ok)
		assert.Equal(t, StatusUnknown, failure.StatusCode)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestFetchRatesDoesNotLogAuthKey(t *testing.T) {
	server, _ := newStubProvider(t, http.StatusOK, usdResponse)

	var buf bytes.Buffer
	client, err := NewKoreaEximClient(ClientConfig{
		BaseURL: server.URL + "/site/program/financial/exchangeJSON",
		AuthKey: testAuthKey,
	}, nil, logger.NewJSONLogger(&buf, logger.DebugLevel))
	require.NoError(t, err)

	_, err = client.FetchRates(context.Background(), "20240101")
	require.NoError(t, err)

	assert.NotEmpty(t, buf.String())
	assert.NotContains(t, buf.String(), testAuthKey)
}

func TestNewKoreaEximClient(t *testing.T) {
	t.Run("Defaults base URL", func(t *testing.T) {
		client, err := NewKoreaEximClient(ClientConfig{AuthKey: testAuthKey}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL.String())
	})

	t.Run("Uses provided HTTP client", func(t *testing.T) {
		httpClient := &http.Client{}
		client, err := NewKoreaEximClient(ClientConfig{AuthKey: testAuthKey}, httpClient, nil)
		require.NoError(t, err)
		assert.Same(t, httpClient, client.httpClient)
	})

	t.Run("Missing auth key", func(t *testing.T) {
		_, err := NewKoreaEximClient(ClientConfig{BaseURL: DefaultBaseURL}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("Relative base URL", func(t *testing.T) {
		_, err := NewKoreaEximClient(ClientConfig{BaseURL: "/exchangeJSON", AuthKey: testAuthKey}, nil, nil)
		assert.Error(t, err)
	})
}

func TestRequestURL(t *testing.T) {
	client, err := NewKoreaEximClient(ClientConfig{AuthKey: "k&y"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL+"?authkey=k%26y&data=AP01", client.requestURL("").String())
	assert.Equal(t, DefaultBaseURL+"?authkey=k%26y&data=AP01&searchdate=20240101", client.requestURL("20240101").String())

	// Building a URL never mutates the configured base
	assert.Equal(t, DefaultBaseURL, client.baseURL.String())
}

func TestRemoteCallFailure(t *testing.T) {
	cause := errors.New("connection refused")
	failure := &RemoteCallFailure{StatusCode: StatusUnknown, Err: cause}

	assert.Equal(t, "remote call failed (status unknown): connection refused", failure.Error())
	assert.True(t, errors.Is(failure, cause))

	failure = &RemoteCallFailure{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "remote call failed (status 502)", failure.Error())

	wrapped := errors.Join(errors.New("outer"), failure)
	extracted, ok := AsRemoteCallFailure(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, extracted.StatusCode)

	_, ok = AsRemoteCallFailure(errors.New("plain"))
	assert.False(t, ok)
}
