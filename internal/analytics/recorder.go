package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/snipgo/snip/internal/shortener"
	"go.uber.org/zap"
)

// Recorder turns raw click events into classified click records.
//
// It runs off the redirect path (fed by the url.clicked consumer), so its
// failures never reach a visitor. The counter bump on the mapping happens
// only after the click row is persisted; the counter is a cache and may lag
// the click table, never lead it.
type Recorder struct {
	clicks   ClickStore
	mappings shortener.Repository
	logger   *zap.Logger
}

// NewRecorder creates a new click recorder.
func NewRecorder(clicks ClickStore, mappings shortener.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{
		clicks:   clicks,
		mappings: mappings,
		logger:   logger,
	}
}

// Record classifies and persists a single click event.
func (r *Recorder) Record(ctx context.Context, event *ClickEvent) (*ClickRecord, error) {
	record := &ClickRecord{
		ID:         uuid.NewString(),
		Code:       event.Code,
		Timestamp:  event.OccurredAt,
		IPAddress:  event.ClientIP,
		UserAgent:  event.UserAgent,
		DeviceType: ClassifyDevice(event.UserAgent),
		Browser:    ClassifyBrowser(event.UserAgent),
		Referrer:   event.Referrer,
	}

	if err := r.clicks.Insert(ctx, record); err != nil {
		return nil, err
	}

	// Best-effort: the record is already durable, a failed bump only makes
	// the cached counter lag until the next reconciliation.
	if err := r.mappings.IncrementClicks(ctx, shortener.Code(event.Code)); err != nil {
		r.logger.Warn("failed to increment click counter",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return record, nil
}

// Handle adapts Record to the messaging handler signature.
func (r *Recorder) Handle(ctx context.Context, event *ClickEvent) error {
	_, err := r.Record(ctx, event)

	return err
}
