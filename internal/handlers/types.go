package handlers

import "time"

// MappingSummary is the API representation of one short link.
type MappingSummary struct {
	Code        string     `doc:"The short code"                 example:"abc123"                  json:"code"`
	ShortURL    string     `doc:"The full short URL"             example:"http://localhost:8888/abc123" json:"shortUrl"`
	Destination string     `doc:"The destination URL"            example:"https://example.com/very/long/path" json:"destination"`
	CreatedAt   time.Time  `doc:"Creation time"                  json:"createdAt"`
	ExpiresAt   *time.Time `doc:"Expiry time, absent if none"    json:"expiresAt,omitempty"`
	ClickCount  int64      `doc:"Cached click counter; may lag the click history" json:"clickCount"`
}

// CreateShortURLRequest is the request body for creating a short link.
type CreateShortURLRequest struct {
	Body struct {
		URL       string     `doc:"The URL to shorten"                                     example:"https://example.com/very/long/path" json:"url"`
		Alias     string     `doc:"Optional requested code (3-64 chars of A-Za-z0-9_-)"    example:"my-link"                            json:"alias,omitempty"     required:"false"`
		ExpiresAt *time.Time `doc:"Optional expiry; the link answers 410 after this point" json:"expiresAt,omitempty"                   required:"false"`
	}
}

// CreateShortURLResponse is the response for a successfully created short link.
type CreateShortURLResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body MappingSummary
}

// ListShortURLsResponse lists the caller's short links, newest first.
type ListShortURLsResponse struct {
	Body struct {
		URLs []MappingSummary `json:"urls"`
	}
}

// DeleteShortURLRequest identifies the short link to delete.
type DeleteShortURLRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects the visitor to the destination URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The destination URL" header:"Location"`
	}
}

// AnalyticsRequest identifies the short link to report on.
type AnalyticsRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// ClickEntry is one recorded click in a report.
type ClickEntry struct {
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	Device    string    `json:"deviceType"`
	Browser   string    `json:"browser"`
	Referrer  string    `json:"referrer,omitempty"`
}

// CountEntry is one bucket of a rollup (a day, a device type, or a browser).
type CountEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AnalyticsResponse is the aggregated report for one short link.
type AnalyticsResponse struct {
	Body struct {
		URL         MappingSummary `json:"url"`
		TotalClicks int64          `doc:"Count from click history, the source of truth" json:"totalClicks"`
		Clicks      []ClickEntry   `doc:"Most recent clicks, newest first"              json:"clicks"`
		PerDay      []CountEntry   `doc:"Clicks per UTC calendar day"                   json:"clicksPerDay"`
		Devices     []CountEntry   `json:"devices"`
		Browsers    []CountEntry   `json:"browsers"`
	}
}
