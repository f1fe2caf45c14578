package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/handlers"
	"github.com/snipgo/snip/internal/middleware"
	"github.com/snipgo/snip/internal/ratelimit"
	"github.com/snipgo/snip/internal/shortener"
	"github.com/snipgo/snip/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	router   *chi.Mux
	mappings shortener.Repository
	clicks   analytics.ClickStore
	recorded chan *analytics.ClickRecord
}

// newAPIFixture wires the full HTTP surface: router, middleware, and routes.
// Click events run through the recorder synchronously and land on a channel
// so tests can wait for the detached publish to finish.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := zap.NewNop()
	mappings := store.NewMemoryStore()
	clicks := store.NewClicksMemoryStore()
	recorder := analytics.NewRecorder(clicks, mappings, logger)
	recorded := make(chan *analytics.ClickRecord, 16)

	publish := func(event *analytics.ClickEvent) error {
		record, err := recorder.Record(context.Background(), event)
		if err != nil {
			return err
		}

		recorded <- record

		return nil
	}

	gen, err := nanoid.Standard(8)
	require.NoError(t, err)

	urlHandler := handlers.NewURLHandler(
		shortener.NewService(mappings, gen),
		analytics.NewReporter(mappings, clicks),
		publish,
		"http://localhost:8888",
		logger,
	)

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

	limiter := ratelimit.NewSlidingWindowLimiter(store.NewRateLimitMemoryStore(), 1000, time.Minute)

	api.UseMiddleware(
		middleware.RequestMeta(api),
		middleware.Authenticate(api, auth.PassthroughVerifier{}),
		middleware.RateLimiter(api, limiter, store.NewRateLimitMemoryStore(), logger),
	)

	handlers.RegisterRoutes(api, urlHandler)

	return &apiFixture{
		router:   router,
		mappings: mappings,
		clicks:   clicks,
		recorded: recorded,
	}
}

func (f *apiFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	req.Header.Set("User-Agent", uaIPhoneFixture)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

const uaIPhoneFixture = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"

func waitForRecord(t *testing.T, f *apiFixture) *analytics.ClickRecord {
	t.Helper()

	select {
	case record := <-f.recorded:
		return record
	case <-time.After(time.Second):
		t.Fatal("click was never recorded")

		return nil
	}
}

func TestShortLinkLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	// Create a link with a chosen alias.
	w := f.do(http.MethodPost, "/api/urls", "user-1", `{"url":"https://example.com/landing","alias":"abc123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "http://localhost:8888/abc123", w.Header().Get("Location"))

	// Follow it.
	w = f.do(http.MethodGet, "/abc123", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/landing", w.Header().Get("Location"))

	record := waitForRecord(t, f)
	assert.Equal(t, "abc123", record.Code)
	assert.Equal(t, analytics.DeviceMobile, record.DeviceType)
	assert.Equal(t, "Safari", record.Browser)

	// The owner sees the click in analytics.
	w = f.do(http.MethodGet, "/api/analytics/abc123", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		TotalClicks int64 `json:"totalClicks"`
		Devices     []struct {
			Key   string `json:"key"`
			Count int64  `json:"count"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, int64(1), report.TotalClicks)
	require.Len(t, report.Devices, 1)
	assert.Equal(t, "mobile", report.Devices[0].Key)

	// Anyone else gets a 404, not a 403.
	w = f.do(http.MethodGet, "/api/analytics/abc123", "intruder", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unauthenticated management calls are rejected.
	w = f.do(http.MethodGet, "/api/urls", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Delete and verify the redirect goes dark.
	w = f.do(http.MethodDelete, "/api/urls/abc123", "user-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/abc123", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiredLinkAnswersGone(t *testing.T) {
	f := newAPIFixture(t)

	// Seed an already-expired mapping directly; the API refuses to create one.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.mappings.Create(context.Background(), &shortener.Mapping{
		Code:        "old",
		Destination: "https://example.com",
		Owner:       "user-1",
		CreatedAt:   time.Now().Add(-time.Hour),
		ExpiresAt:   &past,
	}))

	w := f.do(http.MethodGet, "/old", "", "")

	assert.Equal(t, http.StatusGone, w.Code)

	// No click recorded for the expired link.
	count, err := f.clicks.CountByCode(context.Background(), "old")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnknownCodeAnswersNotFound(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/nope99", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
