package analytics

import "time"

// TopicURLClicked carries one event per successfully resolved redirect.
const TopicURLClicked = "url.clicked"

// ClickEvent is the raw visit metadata captured on the redirect path before
// any classification happens. It is published fire-and-forget; the redirect
// response never waits for it.
type ClickEvent struct {
	Code       string    `json:"code"`
	OccurredAt time.Time `json:"occurredAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}
