package ratelimit

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// LimitConfig is one window/maximum pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// EndpointConfig is per-endpoint rate limit configuration, attached to Huma
// operations via the Metadata field. Endpoints without one fall back to the
// default limiter.
type EndpointConfig struct {
	// Limits replaces the default limit for this endpoint. Every listed
	// window is tracked independently and all must pass.
	Limits []LimitConfig

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
