package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/messaging"
	"github.com/snipgo/snip/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles short link management operations.
type URLHandler struct {
	service      *shortener.Service
	reporter     *analytics.Reporter
	publishClick messaging.Publish[analytics.ClickEvent]
	baseURL      string
	logger       *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service *shortener.Service,
	reporter *analytics.Reporter,
	publishClick messaging.Publish[analytics.ClickEvent],
	baseURL string,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:      service,
		reporter:     reporter,
		publishClick: publishClick,
		baseURL:      baseURL,
		logger:       logger,
	}
}

// CreateShortURL allocates a code (requested alias or generated) and creates
// the mapping for the authenticated caller.
func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	owner, ok := auth.OwnerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	mapping, err := h.service.Create(ctx, shortener.CreateParams{
		Destination: req.Body.URL,
		Alias:       req.Body.Alias,
		Owner:       owner,
		ExpiresAt:   req.Body.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("destination must be an absolute http(s) URL")
		case errors.Is(err, shortener.ErrInvalidAlias):
			return nil, huma.Error400BadRequest("alias must be 3-64 characters of A-Za-z0-9_-")
		case errors.Is(err, shortener.ErrInvalidExpiry):
			return nil, huma.Error400BadRequest("expiry must be in the future")
		case errors.Is(err, shortener.ErrAliasTaken):
			return nil, huma.Error409Conflict("alias already taken")
		default:
			h.logger.Error("failed to create mapping", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create short url")
		}
	}

	resp := &CreateShortURLResponse{Status: http.StatusCreated}
	resp.Body = h.summary(mapping)
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

// ListShortURLs returns the caller's short links, newest first.
func (h *URLHandler) ListShortURLs(ctx context.Context, _ *struct{}) (*ListShortURLsResponse, error) {
	owner, ok := auth.OwnerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	mappings, err := h.service.ListByOwner(ctx, owner)
	if err != nil {
		h.logger.Error("failed to list mappings", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list short urls")
	}

	resp := &ListShortURLsResponse{}
	resp.Body.URLs = make([]MappingSummary, 0, len(mappings))

	for _, mapping := range mappings {
		resp.Body.URLs = append(resp.Body.URLs, h.summary(mapping))
	}

	return resp, nil
}

// DeleteShortURL logically deletes one of the caller's short links. The code
// stays reserved forever so it can never point somewhere else later.
func (h *URLHandler) DeleteShortURL(ctx context.Context, req *DeleteShortURLRequest) (*struct{}, error) {
	owner, ok := auth.OwnerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	err := h.service.Delete(ctx, shortener.Code(req.Code), owner)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to delete mapping",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to delete short url")
	}

	return &struct{}{}, nil
}

func (h *URLHandler) summary(mapping *shortener.Mapping) MappingSummary {
	return MappingSummary{
		Code:        string(mapping.Code),
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, mapping.Code),
		Destination: mapping.Destination,
		CreatedAt:   mapping.CreatedAt,
		ExpiresAt:   mapping.ExpiresAt,
		ClickCount:  mapping.ClickCount,
	}
}
