package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/config"
	"github.com/easyrail/easyrail_core/internal/directory"
	"github.com/easyrail/easyrail_core/internal/erail"
	"github.com/easyrail/easyrail_core/internal/livestatus"
	"github.com/easyrail/easyrail_core/internal/models"
	"github.com/easyrail/easyrail_core/internal/upstream"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	betweenFeed = "~^12951~Mumbai Rajdhani~Mumbai Central~MMCT~New Delhi~NDLS~Borivali~BVI~Kota~KOTA~17.00~08.32~15.32~1010101~" +
		erail.BlockDelimiter +
		"~^12009~Shatabdi Express~Mumbai Central~MMCT~Ahmedabad~ADI~Borivali~BVI~Vadodara~BRC~06.10~12.45~06.35~0101010~"

	trainFeed = "~12951~^12951~MUMBAI RAJDHANI~MUMBAI CENTRAL~MMCT~NEW DELHI~NDLS~a~b~c~d~17.00~08.32~15.32~1111111~" +
		erail.BlockDelimiter +
		"~1~2~3~4~5~6~7~8~9~10~11~SUPERFAST~48213~"

	routeFeed = "~^1~NDLS~NEW DELHI~Source~16.55~0~0~1~01~NR" +
		"~^2~CNB~KANPUR CENTRAL~21.30~21.35~5~440~1~01~NCR~"
)

type fakeUpstream struct {
	mu      sync.Mutex
	between string
	train   string
	route   string
	station []byte
	pnr     []byte
	avail   []byte
	err     error
	calls   map[string]int
}

func (f *fakeUpstream) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	return f.err
}

func (f *fakeUpstream) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeUpstream) TrainsBetween(ctx context.Context, from, to string) (string, error) {
	return f.between, f.record("between")
}

func (f *fakeUpstream) TrainByNumber(ctx context.Context, number string) (string, error) {
	return f.train, f.record("train")
}

func (f *fakeUpstream) Route(ctx context.Context, trainID string) (string, error) {
	return f.route, f.record("route")
}

func (f *fakeUpstream) AtStation(ctx context.Context, code string) ([]byte, error) {
	return f.station, f.record("station")
}

func (f *fakeUpstream) PNR(ctx context.Context, pnr string) ([]byte, error) {
	return f.pnr, f.record("pnr")
}

func (f *fakeUpstream) Availability(ctx context.Context, from, to, date string) ([]byte, error) {
	return f.avail, f.record("availability")
}

type fakeLive struct {
	summary livestatus.Summary
	err     error
	watched map[string]bool
}

func (f *fakeLive) Get(ctx context.Context, number, date string) (livestatus.Summary, error) {
	s := f.summary
	s.TrainNumber, s.Date = number, date
	return s, f.err
}

func (f *fakeLive) Watch(ctx context.Context, number, date string) (livestatus.Summary, error) {
	if f.err != nil {
		return livestatus.Summary{}, f.err
	}
	if f.watched == nil {
		f.watched = map[string]bool{}
	}
	f.watched[number+date] = true
	return f.Get(ctx, number, date)
}

func (f *fakeLive) Unwatch(number, date string) bool {
	was := f.watched[number+date]
	delete(f.watched, number+date)
	return was
}

func (f *fakeLive) WatchCount() int {
	return len(f.watched)
}

func newTestApp(t *testing.T, up *fakeUpstream, live *fakeLive, checks map[string]Check) *fiber.App {
	t.Helper()

	dir := directory.NewMemory(
		[]models.Station{
			{Code: "NDLS", Name: "New Delhi", City: "Delhi"},
			{Code: "DLI", Name: "Old Delhi", City: "Delhi"},
			{Code: "HWH", Name: "Howrah Jn", City: "Kolkata"},
		},
		[]models.TrainSuggestion{
			{Number: "12951", Name: "Mumbai Rajdhani"},
			{Number: "12301", Name: "Howrah Rajdhani"},
		},
	)

	h := New(Deps{
		Upstream:  up,
		Directory: dir,
		Live:      live,
		Cache:     cache.NewStore(cache.NewMemoryBackend(), 0, 0),
		TTL:       config.Default().Cache,
		Checks:    checks,
	})
	h.now = func() time.Time { return time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC) }

	app := fiber.New()
	h.Register(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, map[string]Check{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return nil },
	})

	status, body := doRequest(t, app, "GET", "/health", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])

	app = newTestApp(t, &fakeUpstream{}, &fakeLive{}, map[string]Check{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	status, body = doRequest(t, app, "GET", "/health", "")
	assert.Equal(t, 503, status)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]interface{})["redis"])
}

func TestTrainsBetween(t *testing.T) {
	up := &fakeUpstream{between: betweenFeed}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/between?from=mmct&to=ndls", "")
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	trains := body["data"].([]interface{})
	require.Len(t, trains, 2)
	assert.Equal(t, "12009", trains[0].(map[string]interface{})["train_no"])

	// second request is served from the cache
	doRequest(t, app, "GET", "/v1/trains/between?from=MMCT&to=NDLS", "")
	assert.Equal(t, 1, up.Calls("between"))
}

func TestTrainsBetweenRunningOnDate(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{between: betweenFeed}, &fakeLive{}, nil)

	// 2024-01-01 is a Monday, only the 1010101 train runs
	status, body := doRequest(t, app, "GET", "/v1/trains/between?from=MMCT&to=NDLS&date=2024-01-01", "")
	require.Equal(t, 200, status)
	trains := body["data"].([]interface{})
	require.Len(t, trains, 1)
	assert.Equal(t, "12951", trains[0].(map[string]interface{})["train_no"])
}

func TestTrainsBetweenValidation(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, nil)

	tests := []struct {
		name string
		path string
	}{
		{"Missing from", "/v1/trains/between?to=NDLS"},
		{"Digits in code", "/v1/trains/between?from=ND1&to=HWH"},
		{"Bad date", "/v1/trains/between?from=NDLS&to=HWH&date=01-01-2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, "GET", tt.path, "")
			assert.Equal(t, 400, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTrainsBetweenUpstreamAnswers(t *testing.T) {
	up := &fakeUpstream{between: "~No direct trains found between the stations~"}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/between?from=NDLS&to=HWH", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No direct trains found between the stations", body["data"])

	up = &fakeUpstream{between: "~Please try again after some time~"}
	app = newTestApp(t, up, &fakeLive{}, nil)

	status, _ = doRequest(t, app, "GET", "/v1/trains/between?from=NDLS&to=HWH", "")
	assert.Equal(t, 503, status)
	doRequest(t, app, "GET", "/v1/trains/between?from=NDLS&to=HWH", "")
	assert.Equal(t, 2, up.Calls("between"), "transient answers are not cached")
}

func TestTrainsBetweenUndecodableBodyIsNotCached(t *testing.T) {
	up := &fakeUpstream{between: ""}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/between?from=MMCT&to=NDLS", "")
	assert.Equal(t, 502, status)
	assert.Equal(t, erail.MsgSearchParseError, body["data"])

	up.between = betweenFeed
	status, body = doRequest(t, app, "GET", "/v1/trains/between?from=MMCT&to=NDLS", "")
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, 2, up.Calls("between"))
}

func TestTrainsBetweenUpstreamDown(t *testing.T) {
	up := &fakeUpstream{err: &upstream.StatusError{Endpoint: "between", Code: 500, Body: `{"error":"maintenance"}`}}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/between?from=NDLS&to=HWH", "")
	assert.Equal(t, 502, status)
	assert.Equal(t, "maintenance", body["error"])
}

func TestTrainByNumberWithRoute(t *testing.T) {
	up := &fakeUpstream{train: trainFeed, route: routeFeed}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/12951", "")
	require.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	train := data["train"].(map[string]interface{})
	assert.Equal(t, "12951", train["train_no"])
	assert.Equal(t, "48213", train["train_id"])
	assert.Len(t, data["route"], 2)
}

func TestTrainByNumberRouteFailureKeepsTrain(t *testing.T) {
	up := &fakeUpstream{train: trainFeed, route: ""}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/12951", "")
	require.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.NotNil(t, data["train"])
	assert.Nil(t, data["route"])
}

func TestTrainByNumberRefetchesUndecodableRoute(t *testing.T) {
	up := &fakeUpstream{train: trainFeed, route: "   "}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/12951", "")
	require.Equal(t, 200, status)
	assert.Nil(t, body["data"].(map[string]interface{})["route"])

	up.route = routeFeed
	status, body = doRequest(t, app, "GET", "/v1/trains/12951", "")
	require.Equal(t, 200, status)
	assert.Len(t, body["data"].(map[string]interface{})["route"], 2)
	assert.Equal(t, 1, up.Calls("train"))
	assert.Equal(t, 2, up.Calls("route"))
}

func TestTrainByNumberNotFound(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{train: "~Train not found~"}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/trains/99999", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["success"])

	status, _ = doRequest(t, app, "GET", "/v1/trains/bad-query!", "")
	assert.Equal(t, 400, status)
}

func TestRoute(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{route: routeFeed}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/routes/48213", "")
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 2)

	status, _ = doRequest(t, app, "GET", "/v1/routes/abc", "")
	assert.Equal(t, 400, status)

	app = newTestApp(t, &fakeUpstream{route: "   "}, &fakeLive{}, nil)
	status, body = doRequest(t, app, "GET", "/v1/routes/48213", "")
	assert.Equal(t, 502, status)
	assert.Equal(t, erail.MsgRouteParseError, body["error"])
}

func TestDirectorySearch(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/stations/search?q=delhi", "")
	require.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["total"])

	status, body = doRequest(t, app, "GET", "/v1/trains/suggest?q=rajdhani", "")
	require.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["total"])

	status, _ = doRequest(t, app, "GET", "/v1/stations/search?q=", "")
	assert.Equal(t, 400, status)
}

func TestAtStation(t *testing.T) {
	up := &fakeUpstream{station: []byte(`[{"trainname":"RAJDHANI","trainno":12951,"timeat":"16.35"}]`)}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/stations/ndls-1/trains", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "NDLS", body["station"])
	train := body["trains"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "16:35", train["scheduled_time"])
	assert.Equal(t, "-", train["platform"])

	status, _ = doRequest(t, app, "GET", "/v1/stations/n1/trains", "")
	assert.Equal(t, 400, status)

	app = newTestApp(t, &fakeUpstream{station: []byte(`[]`)}, &fakeLive{}, nil)
	status, _ = doRequest(t, app, "GET", "/v1/stations/HWH/trains", "")
	assert.Equal(t, 404, status)
}

func TestLiveStatus(t *testing.T) {
	live := &fakeLive{summary: livestatus.Summary{Status: livestatus.StatusRunning}}
	app := newTestApp(t, &fakeUpstream{}, live, nil)

	status, body := doRequest(t, app, "GET", "/v1/live-status/12951", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "Running", body["status"])
	assert.Equal(t, "2024-01-03", body["date"], "date defaults to today")

	status, _ = doRequest(t, app, "GET", "/v1/live-status/1295", "")
	assert.Equal(t, 400, status)

	live.err = livestatus.ErrNoDetails
	status, _ = doRequest(t, app, "GET", "/v1/live-status/12951?date=2024-01-01", "")
	assert.Equal(t, 404, status)
}

func TestLiveStatusWatch(t *testing.T) {
	live := &fakeLive{}
	app := newTestApp(t, &fakeUpstream{}, live, nil)

	status, body := doRequest(t, app, "POST", "/v1/live-status/12951/watch?date=2024-01-01", "")
	require.Equal(t, 202, status)
	assert.Equal(t, true, body["watching"])
	assert.Equal(t, 1, live.WatchCount())

	status, body = doRequest(t, app, "DELETE", "/v1/live-status/12951/watch?date=2024-01-01", "")
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["stopped"])

	live.err = livestatus.ErrTooManyWatches
	status, _ = doRequest(t, app, "POST", "/v1/live-status/12952/watch", "")
	assert.Equal(t, 503, status)
}

func TestPNRStatus(t *testing.T) {
	up := &fakeUpstream{pnr: []byte(`{"success":true,"data":{"pnrNumber":"1234567890","chartStatus":"CHART NOT PREPARED"}}`)}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/pnr/1234567890", "")
	require.Equal(t, 200, status)
	assert.Equal(t, upstream.ChartNotPrepared, body["chart"])

	status, _ = doRequest(t, app, "GET", "/v1/pnr/12345", "")
	assert.Equal(t, 400, status)

	app = newTestApp(t, &fakeUpstream{pnr: []byte(`{"success":false}`)}, &fakeLive{}, nil)
	status, _ = doRequest(t, app, "GET", "/v1/pnr/1234567890", "")
	assert.Equal(t, 404, status)
}

func TestAvailability(t *testing.T) {
	up := &fakeUpstream{avail: []byte(`{"data":{"trainList":[{"trainNumber":"12951","trainName":"Rajdhani","duration":932,
		"avlClassesSorted":["3A"],"availabilityCache":{"3A":{"fare":3120,"availabilityDisplayName":"RAC 4","prediction":"80%"}}}]}}`)}
	app := newTestApp(t, up, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/availability?from=MMCT&to=NDLS&date=2024-08-15", "")
	require.Equal(t, 200, status)
	train := body["trains"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "15h 32m", train["duration"])
	class := train["classes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "rac", class["status"])

	status, _ = doRequest(t, app, "GET", "/v1/availability?from=MMCT&to=NDLS", "")
	assert.Equal(t, 400, status)

	app = newTestApp(t, &fakeUpstream{avail: []byte(`{}`)}, &fakeLive{}, nil)
	status, _ = doRequest(t, app, "GET", "/v1/availability?from=MMCT&to=NDLS&date=2024-08-15", "")
	assert.Equal(t, 404, status)
}

func TestSeats(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/seats?train=12951&class=sl&date=2024-01-01", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "12951-SL-2024-01-01", body["seed"])
	assert.Len(t, body["booked"], 18)
	assert.Equal(t, float64(54), body["available"])

	status, _ = doRequest(t, app, "GET", "/v1/seats?total=0", "")
	assert.Equal(t, 400, status)
}

func TestPantry(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "GET", "/v1/pantry/menu", "")
	require.Equal(t, 200, status)
	assert.Len(t, body["meals"], 4)

	status, body = doRequest(t, app, "POST", "/v1/pantry/orders",
		`{"train_number":"12951","seat":"B1-23","items":[{"item_id":"tea","quantity":2},{"item_id":"samosa","quantity":1}]}`)
	require.Equal(t, 201, status)
	assert.Equal(t, float64(60), body["total"])
	assert.NotEmpty(t, body["order_id"])

	status, _ = doRequest(t, app, "POST", "/v1/pantry/orders", `{"train_number":"12951","seat":"B1-23","items":[]}`)
	assert.Equal(t, 400, status)

	status, _ = doRequest(t, app, "POST", "/v1/pantry/orders", `{"train_number":"12951","seat":"B1-23","items":[{"item_id":"caviar","quantity":1}]}`)
	assert.Equal(t, 400, status)
}

func TestAskDisha(t *testing.T) {
	app := newTestApp(t, &fakeUpstream{}, &fakeLive{}, nil)

	status, body := doRequest(t, app, "POST", "/v1/disha/messages", `{"message":"How do I get a refund?"}`)
	require.Equal(t, 200, status)
	assert.Equal(t, "refund", body["topic"])
	assert.Equal(t, "disha", body["sender"])

	status, _ = doRequest(t, app, "POST", "/v1/disha/messages", `{"message":"   "}`)
	assert.Equal(t, 400, status)
}
