package store

import (
	"context"
	"sort"
	"sync"

	"github.com/snipgo/snip/internal/analytics"
)

// ClicksMemoryStore is an in-memory implementation of analytics.ClickStore.
type ClicksMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]*analytics.ClickRecord // code -> records, insertion order
}

// NewClicksMemoryStore creates a new in-memory click store.
func NewClicksMemoryStore() *ClicksMemoryStore {
	return &ClicksMemoryStore{
		records: make(map[string][]*analytics.ClickRecord),
	}
}

func (s *ClicksMemoryStore) Insert(_ context.Context, record *analytics.ClickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[record.Code] = append(s.records[record.Code], &clone)

	return nil
}

func (s *ClicksMemoryStore) CountByCode(_ context.Context, code string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records[code])), nil
}

func (s *ClicksMemoryStore) Recent(_ context.Context, code string, limit int) ([]*analytics.ClickRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records[code]

	result := make([]*analytics.ClickRecord, 0, len(records))

	for _, record := range records {
		clone := *record
		result = append(result, &clone)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (s *ClicksMemoryStore) ClicksPerDay(_ context.Context, code string) ([]analytics.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)

	for _, record := range s.records[code] {
		counts[record.Timestamp.UTC().Format("2006-01-02")]++
	}

	result := make([]analytics.DayCount, 0, len(counts))
	for day, count := range counts {
		result = append(result, analytics.DayCount{Day: day, Count: count})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })

	return result, nil
}

func (s *ClicksMemoryStore) ClicksPerDevice(_ context.Context, code string) ([]analytics.LabelCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)

	for _, record := range s.records[code] {
		counts[string(record.DeviceType)]++
	}

	return labelCounts(counts), nil
}

func (s *ClicksMemoryStore) ClicksPerBrowser(_ context.Context, code string) ([]analytics.LabelCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)

	for _, record := range s.records[code] {
		counts[record.Browser]++
	}

	return labelCounts(counts), nil
}

// labelCounts orders rollups by descending count, ties broken by label so
// output is deterministic.
func labelCounts(counts map[string]int64) []analytics.LabelCount {
	result := make([]analytics.LabelCount, 0, len(counts))

	for label, count := range counts {
		result = append(result, analytics.LabelCount{Label: label, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return result[i].Label < result[j].Label
	})

	return result
}

// Compile-time check.
var _ analytics.ClickStore = (*ClicksMemoryStore)(nil)
