package analytics

import (
	"context"

	"github.com/snipgo/snip/internal/shortener"
)

// RecentClickLimit bounds the recent-clicks section of a report.
const RecentClickLimit = 50

// Report is the read-side rollup for one mapping.
type Report struct {
	Mapping     *shortener.Mapping
	TotalClicks int64
	Recent      []*ClickRecord
	PerDay      []DayCount
	PerDevice   []LabelCount
	PerBrowser  []LabelCount
}

// Reporter computes analytics reports over recorded clicks.
type Reporter struct {
	mappings shortener.Repository
	clicks   ClickStore
}

// NewReporter creates a new analytics reporter.
func NewReporter(mappings shortener.Repository, clicks ClickStore) *Reporter {
	return &Reporter{
		mappings: mappings,
		clicks:   clicks,
	}
}

// Report builds the rollup for a mapping owned by the caller.
//
// A mapping owned by someone else yields the same ErrNotFound as an unknown
// code, so callers cannot probe for the existence of other people's links.
// Totals are counted from the click table, not the cached counter.
func (r *Reporter) Report(ctx context.Context, code shortener.Code, owner shortener.OwnerID) (*Report, error) {
	mapping, err := r.mappings.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if mapping.Owner != owner || mapping.Deleted() {
		return nil, shortener.ErrNotFound
	}

	report := &Report{Mapping: mapping}

	if report.TotalClicks, err = r.clicks.CountByCode(ctx, string(code)); err != nil {
		return nil, err
	}

	if report.Recent, err = r.clicks.Recent(ctx, string(code), RecentClickLimit); err != nil {
		return nil, err
	}

	if report.PerDay, err = r.clicks.ClicksPerDay(ctx, string(code)); err != nil {
		return nil, err
	}

	if report.PerDevice, err = r.clicks.ClicksPerDevice(ctx, string(code)); err != nil {
		return nil, err
	}

	if report.PerBrowser, err = r.clicks.ClicksPerBrowser(ctx, string(code)); err != nil {
		return nil, err
	}

	return report, nil
}
