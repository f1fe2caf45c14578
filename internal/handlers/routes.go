package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/ratelimit"
)

// RegisterRoutes registers all short link routes with per-endpoint auth and
// rate limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// Write operations get strict limits.
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/api/urls",
		Summary:       "Create short URL",
		Description:   "Creates a short link, with a requested alias or a generated code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			auth.MetadataKey: true,
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List short URLs",
		Description: "Lists the caller's short links, newest first.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.ListShortURLs)

	huma.Register(api, huma.Operation{
		Method:        http.MethodDelete,
		Path:          "/api/urls/{code}",
		Summary:       "Delete short URL",
		Description:   "Logically deletes a short link. Its code is never reused.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.DeleteShortURL)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/analytics/{code}",
		Summary:     "Short URL analytics",
		Description: "Aggregated click report for one of the caller's short links.",
		Tags:        []string{"Analytics"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.GetAnalytics)

	// The redirect is the hot path; its limits are relaxed.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to destination URL",
		Description: "Redirects to the destination of the short link and records the click.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urlHandler.Redirect)
}
