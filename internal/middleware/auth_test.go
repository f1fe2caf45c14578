package middleware_test

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/middleware"
	"github.com/snipgo/snip/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	owner shortener.OwnerID
	err   error
}

func (m *mockVerifier) Verify(_ string) (shortener.OwnerID, error) {
	return m.owner, m.err
}

func protectedOperation() *huma.Operation {
	return &huma.Operation{
		Path: "/api/urls",
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}
}

func TestAuthenticate(t *testing.T) {
	t.Run("passes through operations without auth metadata", func(t *testing.T) {
		mw := middleware.Authenticate(newTestAPI(), &mockVerifier{err: auth.ErrInvalidToken})

		// No Authorization header and a verifier that would reject it anyway.
		ctx := newMockHumaContext()
		ctx.operation = &huma.Operation{Path: "/{code}"}

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.True(t, nextCalled)
	})

	t.Run("attaches the verified owner to the context", func(t *testing.T) {
		mw := middleware.Authenticate(newTestAPI(), &mockVerifier{owner: "user-1"})

		ctx := newMockHumaContext()
		ctx.operation = protectedOperation()
		ctx.headers["Authorization"] = "Bearer token-1"

		var nextCtx huma.Context

		mw(ctx, func(c huma.Context) {
			nextCtx = c
		})

		require.NotNil(t, nextCtx)

		owner, ok := auth.OwnerFromContext(nextCtx.Context())
		assert.True(t, ok)
		assert.Equal(t, shortener.OwnerID("user-1"), owner)
	})

	t.Run("answers 401 without a bearer token", func(t *testing.T) {
		mw := middleware.Authenticate(newTestAPI(), &mockVerifier{owner: "user-1"})

		ctx := newMockHumaContext()
		ctx.operation = protectedOperation()

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled)
		assert.Equal(t, 401, ctx.statusCode)
	})

	t.Run("answers 401 for a non-bearer authorization header", func(t *testing.T) {
		mw := middleware.Authenticate(newTestAPI(), &mockVerifier{owner: "user-1"})

		ctx := newMockHumaContext()
		ctx.operation = protectedOperation()
		ctx.headers["Authorization"] = "Basic dXNlcjpwYXNz"

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled)
		assert.Equal(t, 401, ctx.statusCode)
	})

	t.Run("answers 401 when the verifier rejects the token", func(t *testing.T) {
		mw := middleware.Authenticate(newTestAPI(), &mockVerifier{err: auth.ErrInvalidToken})

		ctx := newMockHumaContext()
		ctx.operation = protectedOperation()
		ctx.headers["Authorization"] = "Bearer bad-token"

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled)
		assert.Equal(t, 401, ctx.statusCode)
		assert.Contains(t, string(ctx.written), "invalid credentials")
	})
}
