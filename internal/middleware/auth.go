package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/auth"
)

// Authenticate verifies the bearer credential on operations that ask for it
// and attaches the resulting owner identity to the context. The redirect
// path carries no such metadata and passes straight through.
func Authenticate(api huma.API, verifier auth.Verifier) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !authRequired(ctx) {
			next(ctx)

			return
		}

		token := bearerToken(ctx.Header("Authorization"))
		if token == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")

			return
		}

		owner, err := verifier.Verify(token)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid credentials")

			return
		}

		ctx = huma.WithContext(ctx, auth.ContextWithOwner(ctx.Context(), owner))

		next(ctx)
	}
}

func authRequired(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	required, ok := op.Metadata[auth.MetadataKey].(bool)

	return ok && required
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
