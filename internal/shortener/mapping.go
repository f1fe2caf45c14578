package shortener

import "time"

// Code represents a short link code.
type Code string

// OwnerID is the opaque identity of the caller that created a mapping.
// The core never interprets it; it comes from the auth layer as-is.
type OwnerID string

// Mapping is the durable association between a code and its destination URL.
// Code is immutable once created and is never reassigned, even after a
// logical delete, so a dead short link can never start pointing elsewhere.
type Mapping struct {
	Code        Code
	Destination string
	Owner       OwnerID
	CreatedAt   time.Time
	ExpiresAt   *time.Time // nil means the mapping never expires
	DeletedAt   *time.Time // nil means the mapping is live
	// ClickCount is a cached counter maintained by the click recorder.
	// The click table is the source of truth; this may lag behind it.
	ClickCount int64
}

// Expired reports whether the mapping has an expiry in the past.
func (m *Mapping) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}

// Deleted reports whether the mapping has been logically deleted.
func (m *Mapping) Deleted() bool {
	return m.DeletedAt != nil
}
