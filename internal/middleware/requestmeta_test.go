package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/snipgo/snip/internal/handlers"
	"github.com/snipgo/snip/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

// captureMeta serves one request through the middleware and returns the
// metadata the handler saw.
func captureMeta(t *testing.T, configure func(r *http.Request)) handlers.RequestMeta {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	metaChan := make(chan handlers.RequestMeta, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- handlers.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	configure(req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	return <-metaChan
}

func TestRequestMeta(t *testing.T) {
	t.Run("captures user-agent and referrer", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("User-Agent", testUserAgent)
			r.Header.Set("Referer", "https://referrer.example")
		})

		assert.Equal(t, testUserAgent, meta.UserAgent)
		assert.Equal(t, "https://referrer.example", meta.Referrer)
	})

	t.Run("uses X-Forwarded-For when present", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.195")
		})

		assert.Equal(t, "203.0.113.195", meta.ClientIP)
	})

	t.Run("uses the first X-Forwarded-For entry", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.195, 70.41.3.18, 150.172.238.178")
		})

		assert.Equal(t, "203.0.113.195", meta.ClientIP)
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("X-Real-IP", "203.0.113.100")
		})

		assert.Equal(t, "203.0.113.100", meta.ClientIP)
	})

	t.Run("falls back to host when no proxy headers are present", func(t *testing.T) {
		meta := captureMeta(t, func(_ *http.Request) {})

		assert.NotEmpty(t, meta.ClientIP)
	})
}
