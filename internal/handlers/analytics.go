package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/snipgo/snip/internal/analytics"
	"github.com/snipgo/snip/internal/auth"
	"github.com/snipgo/snip/internal/shortener"
	"go.uber.org/zap"
)

// GetAnalytics returns the aggregated click report for one of the caller's
// short links. Links owned by other callers answer 404, same as unknown
// codes, so existence cannot be probed.
func (h *URLHandler) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	owner, ok := auth.OwnerFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	report, err := h.reporter.Report(ctx, shortener.Code(req.Code), owner)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to build analytics report",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to build analytics report")
	}

	resp := &AnalyticsResponse{}
	resp.Body.URL = h.summary(report.Mapping)
	resp.Body.TotalClicks = report.TotalClicks
	resp.Body.Clicks = clickEntries(report.Recent)
	resp.Body.PerDay = dayEntries(report.PerDay)
	resp.Body.Devices = labelEntries(report.PerDevice)
	resp.Body.Browsers = labelEntries(report.PerBrowser)

	return resp, nil
}

func clickEntries(records []*analytics.ClickRecord) []ClickEntry {
	result := make([]ClickEntry, 0, len(records))

	for _, record := range records {
		result = append(result, ClickEntry{
			Timestamp: record.Timestamp,
			IPAddress: record.IPAddress,
			Device:    string(record.DeviceType),
			Browser:   record.Browser,
			Referrer:  record.Referrer,
		})
	}

	return result
}

func dayEntries(counts []analytics.DayCount) []CountEntry {
	result := make([]CountEntry, 0, len(counts))

	for _, dc := range counts {
		result = append(result, CountEntry{Key: dc.Day, Count: dc.Count})
	}

	return result
}

func labelEntries(counts []analytics.LabelCount) []CountEntry {
	result := make([]CountEntry, 0, len(counts))

	for _, lc := range counts {
		result = append(result, CountEntry{Key: lc.Label, Count: lc.Count})
	}

	return result
}
