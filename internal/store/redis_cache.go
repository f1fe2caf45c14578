package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snipgo/snip/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching on the resolve
// path, which is the hottest read in the system. Writes go through to the
// underlying store first; the cache is best-effort and TTL-bounded so the
// cached click counter can only be briefly stale.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "mapping:",
		ttl:    ttl,
	}
}

// Create stores the mapping in the underlying store and warms the cache.
func (r *RedisCacheRepository) Create(ctx context.Context, m *shortener.Mapping) error {
	if err := r.store.Create(ctx, m); err != nil {
		return err
	}

	r.cacheMapping(ctx, m)

	return nil
}

// GetByCode checks the cache first and falls back to the store on a miss.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	if m, err := r.getFromCache(ctx, code); err == nil {
		return m, nil
	}

	m, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

// IncrementClicks bumps the store counter and mirrors the bump into the
// cached entry so cached reads do not regress the count for a full TTL.
// The mirror only touches an entry that is actually cached: a bare HIncrBy
// would recreate the key after TTL expiry or Delete's invalidation, leaving
// a hash with nothing but a counter and no TTL.
func (r *RedisCacheRepository) IncrementClicks(ctx context.Context, code shortener.Code) error {
	if err := r.store.IncrementClicks(ctx, code); err != nil {
		return err
	}

	key := r.prefix + string(code)

	if exists, err := r.client.HExists(ctx, key, "destination").Result(); err == nil && exists {
		_ = r.client.HIncrBy(ctx, key, "click_count", 1).Err()
	}

	return nil
}

// ListByOwner is out of the hot path and always hits the store.
func (r *RedisCacheRepository) ListByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	return r.store.ListByOwner(ctx, owner)
}

// Delete removes the mapping from the store and invalidates the cache entry.
func (r *RedisCacheRepository) Delete(ctx context.Context, code shortener.Code, owner shortener.OwnerID) error {
	if err := r.store.Delete(ctx, code, owner); err != nil {
		return err
	}

	_ = r.client.Del(ctx, r.prefix+string(code)).Err()

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	// A hash without the core fields is not a cached mapping, whatever else
	// it holds; treat it as a miss so the store rewrites the entry.
	if result["code"] == "" || result["destination"] == "" {
		return nil, shortener.ErrNotFound
	}

	m := &shortener.Mapping{
		Code:        shortener.Code(result["code"]),
		Destination: result["destination"],
		Owner:       shortener.OwnerID(result["owner_id"]),
		CreatedAt:   timeFromField(result["created_at"]),
	}

	if count, err := strconv.ParseInt(result["click_count"], 10, 64); err == nil {
		m.ClickCount = count
	}

	if ts := result["expires_at"]; ts != "" {
		expiresAt := timeFromField(ts)
		m.ExpiresAt = &expiresAt
	}

	if ts := result["deleted_at"]; ts != "" {
		deletedAt := timeFromField(ts)
		m.DeletedAt = &deletedAt
	}

	return m, nil
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, m *shortener.Mapping) {
	key := r.prefix + string(m.Code)

	fields := map[string]interface{}{
		"code":        string(m.Code),
		"destination": m.Destination,
		"owner_id":    string(m.Owner),
		"created_at":  m.CreatedAt.UnixNano(),
		"click_count": m.ClickCount,
	}

	if m.ExpiresAt != nil {
		fields["expires_at"] = m.ExpiresAt.UnixNano()
	}

	if m.DeletedAt != nil {
		fields["deleted_at"] = m.DeletedAt.UnixNano()
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, fields)

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func timeFromField(field string) time.Time {
	nanos, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return time.Time{}
	}

	return time.Unix(0, nanos)
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
