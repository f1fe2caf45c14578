package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/handlers"
	"github.com/snipgo/snip/internal/shortener"
	"github.com/snipgo/snip/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRedirectMapping(t *testing.T, mappings shortener.Repository, code string, expiresAt *time.Time) {
	t.Helper()

	require.NoError(t, mappings.Create(context.Background(), &shortener.Mapping{
		Code:        shortener.Code(code),
		Destination: testURL,
		Owner:       "user-1",
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}))
}

// waitForEvent receives one published click event or fails the test. The
// handler publishes on a detached goroutine, so the test has to wait.
func waitForEvent(t *testing.T, events <-chan *analytics.ClickEvent) *analytics.ClickEvent {
	t.Helper()

	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("no click event published")

		return nil
	}
}

func assertNoEvent(t *testing.T, events <-chan *analytics.ClickEvent) {
	t.Helper()

	select {
	case event := <-events:
		t.Fatalf("unexpected click event for code %q", event.Code)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedirect(t *testing.T) {
	t.Run("answers 302 with the destination and publishes the click", func(t *testing.T) {
		mappings := store.NewMemoryStore()
		seedRedirectMapping(t, mappings, "abc123", nil)

		events := make(chan *analytics.ClickEvent, 1)
		handler := newTestHandler(handlerDeps{
			mappings: mappings,
			publish:  capturePublish(events),
		})

		meta := handlers.RequestMeta{
			ClientIP:  "203.0.113.7",
			UserAgent: "TestAgent/1.0",
			Referrer:  "https://referrer.example",
		}
		ctx := handlers.ContextWithRequestMeta(context.Background(), meta)

		resp, err := handler.Redirect(ctx, &handlers.RedirectRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, testURL, resp.Headers.Location)

		event := waitForEvent(t, events)
		assert.Equal(t, "abc123", event.Code)
		assert.Equal(t, "203.0.113.7", event.ClientIP)
		assert.Equal(t, "TestAgent/1.0", event.UserAgent)
		assert.Equal(t, "https://referrer.example", event.Referrer)
		assert.False(t, event.OccurredAt.IsZero())
	})

	t.Run("answers 404 for unknown code and records nothing", func(t *testing.T) {
		events := make(chan *analytics.ClickEvent, 1)
		handler := newTestHandler(handlerDeps{publish: capturePublish(events)})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "missing"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
		assertNoEvent(t, events)
	})

	t.Run("answers 410 for expired link and records nothing", func(t *testing.T) {
		mappings := store.NewMemoryStore()
		past := time.Now().Add(-time.Minute)
		seedRedirectMapping(t, mappings, "old", &past)

		events := make(chan *analytics.ClickEvent, 1)
		handler := newTestHandler(handlerDeps{
			mappings: mappings,
			publish:  capturePublish(events),
		})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "old"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusGone)
		assertNoEvent(t, events)
	})

	t.Run("answers 404 for deleted link", func(t *testing.T) {
		mappings := store.NewMemoryStore()
		seedRedirectMapping(t, mappings, "gone", nil)
		require.NoError(t, mappings.Delete(context.Background(), "gone", "user-1"))

		handler := newTestHandler(handlerDeps{mappings: mappings})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "gone"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("answers 500 on store failure", func(t *testing.T) {
		handler := newTestHandler(handlerDeps{
			mappings: &failingRepository{err: errors.New("connection refused")},
		})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("redirects before the future expiry", func(t *testing.T) {
		mappings := store.NewMemoryStore()
		future := time.Now().Add(time.Hour)
		seedRedirectMapping(t, mappings, "fresh", &future)

		handler := newTestHandler(handlerDeps{mappings: mappings})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "fresh"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
	})

	t.Run("succeeds even when publish fails", func(t *testing.T) {
		mappings := store.NewMemoryStore()
		seedRedirectMapping(t, mappings, "abc123", nil)

		published := make(chan struct{})
		handler := newTestHandler(handlerDeps{
			mappings: mappings,
			publish: func(_ *analytics.ClickEvent) error {
				close(published)

				return errors.New("broker down")
			},
		})

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)

		select {
		case <-published:
		case <-time.After(time.Second):
			t.Fatal("publish was never attempted")
		}
	})
}
