package analytics

import (
	"context"
	"time"
)

// ClickRecord is one classified, persisted visit. Records are immutable
// after creation and retained indefinitely; they are the source of truth
// for all click counts.
type ClickRecord struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Timestamp  time.Time  `json:"timestamp"`
	IPAddress  string     `json:"ipAddress"`
	UserAgent  string     `json:"userAgent"`
	DeviceType DeviceType `json:"deviceType"`
	Browser    string     `json:"browser"`
	Referrer   string     `json:"referrer,omitempty"`
}

// DayCount is a per-calendar-day click rollup. Day is formatted 2006-01-02 in UTC.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// LabelCount is a per-device or per-browser click rollup.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ClickStore defines the interface for persisting and aggregating clicks.
// Insert must be atomic: a record is either fully persisted or not at all.
type ClickStore interface {
	Insert(ctx context.Context, record *ClickRecord) error
	CountByCode(ctx context.Context, code string) (int64, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, code string, limit int) ([]*ClickRecord, error)
	ClicksPerDay(ctx context.Context, code string) ([]DayCount, error)
	ClicksPerDevice(ctx context.Context, code string) ([]LabelCount, error)
	ClicksPerBrowser(ctx context.Context, code string) ([]LabelCount, error)
}
