package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const pin = "2468"

func newTestServer(t *testing.T, opts ...Option) (*Server, *portfolio.Book) {
	t.Helper()
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	book := portfolio.NewBook(st, portfolio.WithLogger(log))
	require.NoError(t, book.Load(ctx))
	require.NoError(t, book.SetPIN(ctx, pin))
	return New(book, append([]Option{WithLogger(log)}, opts...)...), book
}

func do(s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set(PINHeader, pin)
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRequirePIN(t *testing.T) {
	s, _ := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/rates", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], PINHeader)

	w = do(s, http.MethodGet, "/rates", "", PINHeader, "1357")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(s, http.MethodGet, "/rates", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFirstPINIsKept(t *testing.T) {
	log, _ := test.NewNullLogger()
	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	s := New(portfolio.NewBook(st, portfolio.WithLogger(log)), WithLogger(log))

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/rates", "", PINHeader, "12").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/rates", "", PINHeader, "1357").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/rates", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/rates", "", PINHeader, "1357").Code)
}

func TestTransactions(t *testing.T) {
	s, book := newTestServer(t)

	w := do(s, http.MethodPost, "/transactions", `{"type":"buy","assetType":"stock","symbol":"thyao","amount":10,"price":"250,5","date":"2024-01-02"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "THYAO", created["symbol"])
	assert.Equal(t, 250.5, created["price"])
	assert.Equal(t, "TRY", created["currency"])

	w = do(s, http.MethodPost, "/transactions", `{"type":"buy","assetType":"crypto","symbol":"BTC","amount":"0.1","price":60000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(s, http.MethodGet, "/transactions?symbol=thyao", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(s, http.MethodGet, "/holdings?q=th", "")
	require.Equal(t, http.StatusOK, w.Code)
	holdings := decode[[]map[string]any](t, w)
	require.Len(t, holdings, 1)
	assert.Equal(t, "THYAO", holdings[0]["symbol"])

	w = do(s, http.MethodPost, "/transactions", `{"type":"sell","assetType":"stock","symbol":"THYAO","amount":11,"price":260}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], portfolio.ErrInsufficientHoldings.Error())

	w = do(s, http.MethodPut, "/transactions/"+id, `{"type":"buy","assetType":"stock","symbol":"THYAO","amount":12,"price":250,"date":"2024-01-02"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, decode[map[string]any](t, w)["id"])
	p, ok := book.Snapshot().Position("THYAO")
	require.True(t, ok)
	assert.True(t, p.Amount.Equal(portfolio.Q(12)))

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodPut, "/transactions/nope", `{"type":"buy","assetType":"stock","symbol":"A","amount":1,"price":1}`).Code)

	assert.Equal(t, http.StatusOK, do(s, http.MethodDelete, "/transactions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodDelete, "/transactions/"+id, "").Code)
	assert.Len(t, book.Transactions(), 1)
}

func TestInvalidBodies(t *testing.T) {
	s, _ := newTestServer(t)
	for _, body := range []string{`{"kind":"buy"}`, `not json`, `{"amount":[1]}`} {
		w := do(s, http.MethodPost, "/transactions", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := do(s, http.MethodPost, "/transactions", `{"type":"swap","assetType":"bond","symbol":"X","amount":0,"price":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	msg := decode[map[string]string](t, w)["error"]
	for _, want := range []error{portfolio.ErrUnknownCommand, portfolio.ErrUnknownAsset} {
		assert.Contains(t, msg, want.Error())
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/transactions", `{"type":"buy","assetType":"stock_us","symbol":"AAPL","amount":2,"price":100}`).Code)

	w := do(s, http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[map[string]any](t, w)
	assert.Equal(t, 6500.0, snap["totalValue"])
	assert.Equal(t, "Net cost", snap["contributionMode"])
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = do(s, http.MethodGet, "/snapshot", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	require.Equal(t, http.StatusOK, do(s, http.MethodPut, "/prices", `{"AAPL":"120"}`).Code)
	w = do(s, http.MethodGet, "/snapshot", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))

	w = do(s, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

type rateSource struct {
	rates portfolio.RateTable
	err   error
}

func (r rateSource) Latest(context.Context) (portfolio.RateTable, error) { return r.rates, r.err }

func TestRates(t *testing.T) {
	s, book := newTestServer(t)

	w := do(s, http.MethodPut, "/rates", `{"USD":34.1,"eur":"36,5"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rates := decode[map[string]float64](t, w)
	assert.Equal(t, 34.1, rates["USD"])
	assert.Equal(t, 36.5, rates["EUR"])
	assert.Equal(t, 41.1, rates["GBP"])

	w = do(s, http.MethodPut, "/rates", `{"JPY":"1","USD":"-2"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, book.Rates().Rate(portfolio.USD).Equal(decimal.RequireFromString("34.1")))

	assert.Equal(t, http.StatusNotImplemented, do(s, http.MethodPost, "/rates/refresh", "").Code)
}

func TestRefreshRates(t *testing.T) {
	fresh, err := portfolio.NewRateTable(map[portfolio.Currency]decimal.Decimal{portfolio.USD: decimal.RequireFromString("35")})
	require.NoError(t, err)

	s, _ := newTestServer(t, WithRateSource(rateSource{rates: fresh}))
	w := do(s, http.MethodPost, "/rates/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 35.0, decode[map[string]float64](t, w)["USD"])

	s, book := newTestServer(t, WithRateSource(rateSource{err: errors.New("offline")}))
	w = do(s, http.MethodPost, "/rates/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "offline")
	assert.True(t, book.Rates().Equal(portfolio.DefaultRates()))
}

func TestPrices(t *testing.T) {
	s, book := newTestServer(t)

	w := do(s, http.MethodPut, "/prices", `{"thyao":"300","GLD":2500.5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]float64{"THYAO": 300, "GLD": 2500.5}, decode[map[string]float64](t, w))

	w = do(s, http.MethodPut, "/prices", `{"THYAO":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"GLD"}, book.Prices().Symbols())

	w = do(s, http.MethodPut, "/prices", `{"GLD":"-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(s, http.MethodGet, "/prices", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]float64{"GLD": 2500.5}, decode[map[string]float64](t, w))
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, WithLimiter(rate.NewLimiter(0, 2)))
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/rates", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/rates", "").Code)
	w := do(s, http.MethodGet, "/rates", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, http.StatusText(http.StatusTooManyRequests), decode[map[string]string](t, w)["error"])
}

func TestUnknownRoutes(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "/nowhere")

	w = do(s, http.MethodPatch, "/rates", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
