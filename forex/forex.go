// Package forex fetches current exchange rates into a portfolio.RateTable.
package forex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/portfoy/portfolio"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the free exchange rate API, no key needed.
const DefaultBaseURL = "https://open.er-api.com"

// Client is a portfolio.RateSource querying an exchange rate API whose
// quotes are expressed per unit of the domestic currency.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL changes the API location, mostly for tests.
func WithBaseURL(base string) Option { return func(c *Client) { c.base = base } }

// WithHTTPClient sets the http client, Daily by default.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLimiter sets the rate at which requests are sent.
func WithLimiter(l *rate.Limiter) Option { return func(c *Client) { c.limiter = l } }

func WithLogger(log logrus.FieldLogger) Option { return func(c *Client) { c.log = log } }

// NewClient returns a client sending at most one request per second.
func NewClient(opts ...Option) *Client {
	c := &Client{
		base:    DefaultBaseURL,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = Daily("", c.log)
	}
	return c
}

// Latest returns the rate of every supported foreign currency.
//
// The API answers the value of one domestic unit in each currency, so each
// quote is inverted and rounded to 4 decimals.
func (c *Client) Latest(ctx context.Context) (portfolio.RateTable, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return portfolio.RateTable{}, err
	}
	addr := fmt.Sprintf("%s/v6/latest/%s", c.base, portfolio.Domestic)
	var jobj any
	if err := c.jget(ctx, addr, &jobj); err != nil {
		return portfolio.RateTable{}, err
	}

	if result, err := jsonpath.Get("$.result", jobj); err != nil || result != "success" {
		return portfolio.RateTable{}, fmt.Errorf("rate API did not succeed: result=%v", result)
	}

	rates := make(map[portfolio.Currency]decimal.Decimal)
	var errs []error
	for _, cur := range portfolio.Currencies() {
		if cur.IsDomestic() {
			continue
		}
		path := "$.rates." + string(cur)
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			errs = append(errs, fmt.Errorf("error parsing %q: %w", path, err))
			continue
		}
		val, ok := jval.(float64)
		if !ok || val <= 0 {
			errs = append(errs, fmt.Errorf("error parsing %q: not a positive number %v", path, jval))
			continue
		}
		rates[cur] = decimal.NewFromInt(1).DivRound(decimal.NewFromFloat(val), 4)
	}
	if err := errors.Join(errs...); err != nil {
		return portfolio.RateTable{}, err
	}
	t, err := portfolio.NewRateTable(rates)
	if err != nil {
		return portfolio.RateTable{}, err
	}
	c.log.WithField("currencies", t.Currencies()).Debug("fetched rates")
	return t, nil
}

// jget performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) jget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

var _ portfolio.RateSource = (*Client)(nil)
