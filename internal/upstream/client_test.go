package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/easyrail/easyrail_core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.UpstreamConfig{
		ErailURL:        srv.URL + "/rail/getTrains.aspx",
		ErailRouteURL:   srv.URL + "/data.aspx",
		BackendURL:      srv.URL + "/",
		PNRURL:          srv.URL + "/getPNRStatus",
		PNRAPIKey:       "secret",
		PNRAPIHost:      "pnr.example.com",
		AvailabilityURL: srv.URL + "/search",
		TimeoutMS:       2000,
	})
}

func TestTrainsBetweenQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rail/getTrains.aspx", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "NDLS", q.Get("Station_From"))
		assert.Equal(t, "HWH", q.Get("Station_To"))
		assert.Equal(t, "0", q.Get("DataSource"))
		assert.Equal(t, "true", q.Get("Cache"))
		w.Write([]byte("raw~^text"))
	})

	body, err := c.TrainsBetween(context.Background(), "NDLS", "HWH")
	require.NoError(t, err)
	assert.Equal(t, "raw~^text", body)
}

func TestTrainByNumberAndRouteQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/rail/getTrains.aspx":
			assert.Equal(t, "12951", q.Get("TrainNo"))
			w.Write([]byte("train"))
		case "/data.aspx":
			assert.Equal(t, "TRAINROUTE", q.Get("Action"))
			assert.Equal(t, "2012", q.Get("Password"))
			assert.Equal(t, "4711", q.Get("Data1"))
			assert.Equal(t, "0", q.Get("Data2"))
			w.Write([]byte("route"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	body, err := c.TrainByNumber(context.Background(), "12951")
	require.NoError(t, err)
	assert.Equal(t, "train", body)

	body, err = c.Route(context.Background(), "4711")
	require.NoError(t, err)
	assert.Equal(t, "route", body)
}

func TestBackendPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		switch r.URL.Path {
		case "/fetch-train-status":
			assert.Equal(t, map[string]string{"trainNumber": "12951", "dates": "2024-01-01"}, payload)
		case "/at-station":
			assert.Equal(t, map[string]string{"stnCode": "NDLS"}, payload)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("[]"))
	})

	_, err := c.LiveStatus(context.Background(), "12951", "2024-01-01")
	require.NoError(t, err)
	_, err = c.AtStation(context.Background(), "NDLS")
	require.NoError(t, err)
}

func TestPNRHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getPNRStatus/1234567890", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "pnr.example.com", r.Header.Get("x-rapidapi-host"))
		w.Write([]byte(`{"success":true}`))
	})

	_, err := c.PNR(context.Background(), "1234567890")
	require.NoError(t, err)
}

func TestAvailabilityQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "NDLS", q.Get("sourceStationCode"))
		assert.Equal(t, "BCT", q.Get("destinationStationCode"))
		assert.Equal(t, "15-08-2024", q.Get("dateOfJourney"))
		w.Write([]byte("{}"))
	})

	_, err := c.Availability(context.Background(), "NDLS", "BCT", "15-08-2024")
	require.NoError(t, err)
}

func TestNon2xxIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"backend exploded"}`))
	})

	_, err := c.LiveStatus(context.Background(), "12951", "2024-01-01")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "live-status", statusErr.Endpoint)
	assert.Equal(t, "backend exploded", statusErr.Message())
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.TrainsBetween(ctx, "NDLS", "HWH")
	assert.Error(t, err)
}

func TestOutboundThrottle(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(config.UpstreamConfig{ErailURL: srv.URL, RatePerSecond: 20, Burst: 1})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.TrainByNumber(context.Background(), "12951")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
