package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/shortener"
	"go.uber.org/zap"
)

// Redirect resolves a code and sends the visitor to its destination.
//
// The click event is dispatched on a detached goroutine: the redirect never
// waits for recording and never fails because of it, and a visitor hanging
// up does not cancel an in-flight event. Expired links answer 410 and
// record nothing. Only a store failure during resolution produces a 500.
func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	mapping, err := h.service.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve code",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve short url")
	}

	if mapping.Deleted() {
		return nil, huma.Error404NotFound("short url not found")
	}

	if mapping.Expired(time.Now()) {
		return nil, huma.NewError(http.StatusGone, "short url expired")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ClickEvent{
		Code:       req.Code,
		OccurredAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	go func() {
		if err := h.publishClick(event); err != nil {
			h.logger.Error("failed to publish click event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}()

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = mapping.Destination

	return resp, nil
}
