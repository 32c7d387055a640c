// Package upstream fetches raw responses from the services the API fronts:
// the erail text feeds, the live-status backend, the PNR service and the
// availability search.
package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/easyrail/easyrail_core/internal/config"
	"golang.org/x/time/rate"
	resty "gopkg.in/resty.v1"
)

const userAgent = "easyrail_core/1.0"

// StatusError is returned when an upstream answers outside 2xx
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.Code)
}

// Client talks to every upstream through one throttled HTTP client
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	cfg     config.UpstreamConfig
}

// New creates a client. A zero rate disables outbound throttling.
func New(cfg config.UpstreamConfig) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout()).
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
	}
}

// TrainsBetween fetches the raw "trains between stations" text
func (c *Client) TrainsBetween(ctx context.Context, from, to string) (string, error) {
	body, err := c.get(ctx, "between", c.cfg.ErailURL, map[string]string{
		"Station_From": from,
		"Station_To":   to,
		"DataSource":   "0",
		"Language":     "0",
		"Cache":        "true",
	}, nil)
	return string(body), err
}

// TrainByNumber fetches the raw "train by number" text
func (c *Client) TrainByNumber(ctx context.Context, number string) (string, error) {
	body, err := c.get(ctx, "train", c.cfg.ErailURL, map[string]string{
		"TrainNo":    number,
		"DataSource": "0",
		"Language":   "0",
		"Cache":      "true",
	}, nil)
	return string(body), err
}

// Route fetches the raw route listing of an internal train id
func (c *Client) Route(ctx context.Context, trainID string) (string, error) {
	body, err := c.get(ctx, "route", c.cfg.ErailRouteURL, map[string]string{
		"Action":   "TRAINROUTE",
		"Password": "2012",
		"Data1":    trainID,
		"Data2":    "0",
		"Cache":    "true",
	}, nil)
	return string(body), err
}

// LiveStatus fetches the station rows of a train run on date (YYYY-MM-DD)
func (c *Client) LiveStatus(ctx context.Context, number, date string) ([]byte, error) {
	return c.postJSON(ctx, "live-status", c.backend("fetch-train-status"), map[string]string{
		"trainNumber": number,
		"dates":       date,
	})
}

// AtStation fetches the trains calling at a station
func (c *Client) AtStation(ctx context.Context, code string) ([]byte, error) {
	return c.postJSON(ctx, "at-station", c.backend("at-station"), map[string]string{
		"stnCode": code,
	})
}

// PNR fetches the status of a PNR
func (c *Client) PNR(ctx context.Context, pnr string) ([]byte, error) {
	endpoint := strings.TrimRight(c.cfg.PNRURL, "/") + "/" + url.PathEscape(pnr)
	return c.get(ctx, "pnr", endpoint, nil, map[string]string{
		"x-rapidapi-key":  c.cfg.PNRAPIKey,
		"x-rapidapi-host": c.cfg.PNRAPIHost,
	})
}

// Availability fetches the availability search for a journey. date is
// DD-MM-YYYY.
func (c *Client) Availability(ctx context.Context, from, to, date string) ([]byte, error) {
	return c.get(ctx, "availability", c.cfg.AvailabilityURL, map[string]string{
		"sourceStationCode":            from,
		"destinationStationCode":       to,
		"addAvailabilityCache":         "true",
		"excludeMultiTicketAlternates": "false",
		"excludeBoostAlternates":       "false",
		"sortBy":                       "DEFAULT",
		"dateOfJourney":                date,
		"enableNearby":                 "true",
		"enableTG":                     "true",
		"tGPlan":                       "CTG-3",
		"showTGPrediction":             "false",
		"tgColor":                      "DEFAULT",
		"showPredictionGlobal":         "true",
	}, nil)
}

func (c *Client) backend(path string) string {
	return strings.TrimRight(c.cfg.BackendURL, "/") + "/" + path
}

func (c *Client) get(ctx context.Context, name, endpoint string, query, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeaders(headers).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", name, err)
	}
	return checkStatus(name, resp)
}

func (c *Client) postJSON(ctx context.Context, name, endpoint string, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", name, err)
	}
	return checkStatus(name, resp)
}

func checkStatus(name string, resp *resty.Response) ([]byte, error) {
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{Endpoint: name, Code: code, Body: string(resp.Body())}
	}
	return resp.Body(), nil
}
